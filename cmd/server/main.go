package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	attestationhandler "proofgate/internal/attestation/handler"
	attestationmetrics "proofgate/internal/attestation/metrics"
	"proofgate/internal/attestation/ports"
	kafkapublisher "proofgate/internal/attestation/publisher/kafka"
	memorypublisher "proofgate/internal/attestation/publisher/memory"
	"proofgate/internal/attestation/registry"
	attestationservice "proofgate/internal/attestation/service"
	memorystore "proofgate/internal/attestation/store/memory"
	postgresstore "proofgate/internal/attestation/store/postgres"
	redisstore "proofgate/internal/attestation/store/redis"
	sqlitestore "proofgate/internal/attestation/store/sqlite"
	jwttoken "proofgate/internal/jwt_token"
	"proofgate/internal/oracle/challenge"
	oraclehandler "proofgate/internal/oracle/handler"
	oraclemetrics "proofgate/internal/oracle/metrics"
	oracleservice "proofgate/internal/oracle/service"
	"proofgate/internal/oracle/signer"
	"proofgate/internal/platform/config"
	"proofgate/internal/platform/httpserver"
	platformkafka "proofgate/internal/platform/kafka"
	"proofgate/internal/platform/logger"
	"proofgate/internal/platform/metrics"
	"proofgate/internal/platform/postgres"
	platformredis "proofgate/internal/platform/redis"
	httptransport "proofgate/internal/transport/http"
	"proofgate/pkg/domain"
	"proofgate/pkg/platform/circuit"
)

// memoryPublisherLimit bounds retained records when no broker is configured.
const memoryPublisherLimit = 10_000

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("failed to close resource", "error", err)
			}
		}
	}()
	health := map[string]httptransport.HealthCheck{}

	store, err := buildStore(ctx, cfg, health, &closers)
	if err != nil {
		return err
	}
	publisher, err := buildPublisher(ctx, cfg, log, health, &closers)
	if err != nil {
		return err
	}

	oracleSigner, err := buildSigner(cfg, log)
	if err != nil {
		return err
	}
	oracleKey, err := trustedOracleKey(cfg, oracleSigner)
	if err != nil {
		return err
	}
	log.Info("oracle key configured",
		"oracle_identity", domain.DeriveIdentity(oracleKey).String(),
		"validity_window", cfg.ValidityWindow.String(),
		"registry_backend", cfg.Registry.Backend,
		"identity_binding", cfg.Registry.RequireIdentityBinding,
		"monotonic", cfg.Registry.RequireMonotonic,
	)

	reg, err := registry.New(cfg.ValidityWindow, store)
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	verifier, err := registry.NewVerifier(oracleKey, verifierOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}
	attestations, err := attestationservice.New(reg, verifier, publisher,
		attestationservice.WithLogger(log),
		attestationservice.WithMetrics(attestationmetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("create attestation service: %w", err)
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	modules := []httptransport.Registrar{
		attestationhandler.New(attestations, log, jwtService.AsValidator()),
	}

	if oracleSigner != nil {
		challenges, err := buildChallengeVerifier(cfg, log)
		if err != nil {
			return err
		}
		oracle, err := oracleservice.New(challenges, oracleSigner,
			oracleservice.WithLogger(log),
			oracleservice.WithMetrics(oraclemetrics.New()),
		)
		if err != nil {
			return fmt.Errorf("create oracle service: %w", err)
		}
		modules = append(modules, oraclehandler.New(oracle, log))
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:  log,
		Metrics: metrics.New(),
		Clock:   time.Now,
		Health:  health,
		Modules: modules,
	})
	srv := httpserver.New(cfg.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting proofgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func buildStore(ctx context.Context, cfg config.Server, health map[string]httptransport.HealthCheck, closers *[]func() error) (ports.Store, error) {
	switch cfg.Registry.Backend {
	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, client.Close)
		health["redis"] = client.Health
		return redisstore.New(client.Client), nil
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, db.Close)
		health["postgres"] = db.PingContext
		store := postgresstore.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case config.BackendSQLite:
		store, err := sqlitestore.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, store.Close)
		health["sqlite"] = store.Health
		return store, nil
	default:
		return memorystore.NewInMemoryStore(), nil
	}
}

func buildPublisher(ctx context.Context, cfg config.Server, log *slog.Logger, health map[string]httptransport.HealthCheck, closers *[]func() error) (ports.InteractionPublisher, error) {
	client, err := platformkafka.NewClient(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Warn("KAFKA_BROKERS not set; interaction records are kept in memory")
		return memorypublisher.NewPublisher(memoryPublisherLimit), nil
	}
	*closers = append(*closers, func() error { client.Close(); return nil })
	if err := platformkafka.EnsureTopic(ctx, client, cfg.Kafka.Topic); err != nil {
		return nil, err
	}
	health["kafka"] = func(ctx context.Context) error { return platformkafka.Health(ctx, client) }
	return kafkapublisher.NewPublisher(client, cfg.Kafka.Topic), nil
}

// buildSigner loads the oracle key. Without a seed the oracle runs with an
// ephemeral key only when the verifier key is not pinned either.
func buildSigner(cfg config.Server, log *slog.Logger) (*signer.Signer, error) {
	if cfg.Oracle.SigningSeed != "" {
		return signer.FromHexSeed(cfg.Oracle.SigningSeed)
	}
	if cfg.Oracle.PublicKey != "" {
		return nil, nil
	}
	log.Warn("ORACLE_SIGNING_SEED not set; using an ephemeral oracle key")
	return signer.Generate()
}

func trustedOracleKey(cfg config.Server, s *signer.Signer) (ed25519.PublicKey, error) {
	if cfg.Oracle.PublicKey == "" {
		return s.PublicKey(), nil
	}
	key, err := hex.DecodeString(strings.TrimPrefix(cfg.Oracle.PublicKey, "0x"))
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, errors.New("ORACLE_PUBLIC_KEY must be 32 hex-encoded bytes")
	}
	return key, nil
}

func buildChallengeVerifier(cfg config.Server, log *slog.Logger) (challenge.Verifier, error) {
	if cfg.Oracle.ChallengeSecret == "" {
		log.Warn("CHALLENGE_SECRET not set; every non-empty challenge token is accepted")
		return challenge.Static{}, nil
	}
	return challenge.NewSiteVerifyClient(cfg.Oracle.ChallengeSecret,
		challenge.WithVerifyURL(cfg.Oracle.ChallengeVerifyURL),
		challenge.WithBreaker(circuit.New("siteverify")),
	)
}

func verifierOptions(cfg config.Server) []registry.VerifierOption {
	opts := []registry.VerifierOption{registry.WithBinding(registry.BindToCaller)}
	if cfg.Registry.RequireIdentityBinding {
		opts[0] = registry.WithBinding(registry.BindToMessage)
	}
	if cfg.Registry.RequireMonotonic {
		opts = append(opts, registry.WithWritePolicy(registry.NewestWins))
	}
	return opts
}

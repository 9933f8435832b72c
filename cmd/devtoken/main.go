// Command devtoken issues a caller bearer token for local testing. Session
// management is outside proofgate; deployments mint tokens elsewhere with the
// same JWT_SIGNING_KEY, issuer and audience.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "proofgate/internal/jwt_token"
	"proofgate/internal/platform/config"
	"proofgate/pkg/domain"
)

func main() {
	identity := flag.String("identity", "", "caller identity (0x + 64 hex)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	id, err := domain.ParseIdentity(*identity)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(2)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}

	svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	token, err := svc.GenerateAccessToken(id, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

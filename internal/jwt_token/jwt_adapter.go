package jwttoken

import (
	authmw "proofgate/pkg/platform/middleware/auth"
)

// AsValidator exposes the service to the auth middleware. The middleware
// only needs the subject, which it parses as the caller identity.
func (s *JWTService) AsValidator() authmw.JWTValidator {
	return authmw.ValidatorFunc(func(tokenString string) (*authmw.JWTClaims, error) {
		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			return nil, err
		}
		return &authmw.JWTClaims{Identity: claims.Subject, JTI: claims.ID}, nil
	})
}

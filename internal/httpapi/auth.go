// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMode selects how incoming requests authenticate.
type AuthMode string

const (
	// AuthModeAPIKey checks the X-Api-Key header against a fixed secret.
	// This is the default.
	AuthModeAPIKey AuthMode = "apikey"

	// AuthModeJWT checks a bearer token's HS256 signature against a shared
	// secret.
	AuthModeJWT AuthMode = "jwt"
)

// AuthConfig configures Server's auth middleware.
type AuthConfig struct {
	Mode AuthMode

	// APIKey is the expected value of the X-Api-Key header when Mode is
	// AuthModeAPIKey.
	APIKey string

	// JWTSecret signs/verifies bearer tokens when Mode is AuthModeJWT.
	JWTSecret string

	// DevMode disables auth entirely. Never set this in a deployed server.
	DevMode bool
}

// authMiddleware builds the request-gating middleware described by the
// external interface's auth section: a shared API key by default, or HS256
// bearer tokens when configured for JWT, bypassed entirely in dev mode.
func authMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.DevMode {
				next.ServeHTTP(w, r)
				return
			}

			var err error
			switch cfg.Mode {
			case AuthModeJWT:
				err = checkBearerToken(r, cfg.JWTSecret)
			default:
				err = checkAPIKey(r, cfg.APIKey)
			}
			if err != nil {
				writeErrorWithDetails(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error(), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkAPIKey(r *http.Request, expected string) error {
	if expected == "" {
		return fmt.Errorf("server has no API key configured")
	}
	if r.Header.Get("X-Api-Key") != expected {
		return fmt.Errorf("missing or invalid API key")
	}
	return nil
}

func checkBearerToken(r *http.Request, secret string) error {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return fmt.Errorf("missing bearer token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return fmt.Errorf("invalid bearer token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid bearer token")
	}
	return nil
}

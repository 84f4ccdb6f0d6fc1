package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/idemio/idem-serverless/openapi"
	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/status"
)

const (
	authHeaderName = "authorization"
	bearerPrefix   = "bearer"
)

var (
	errMissingKid     = errors.New("jwt: missing kid")
	errNoMatchingJWK  = errors.New("jwt: no matching JWK for kid")
	errMalformedKey   = errors.New("jwt: malformed RSA key")
	errUnsupportedAlg = errors.New("jwt: unsupported JWT algorithm")
)

// Handler validates a bearer JWT: extraction, JWK lookup by kid, RS256
// signature verification, and exp/aud/iss claim checks, with optional scope
// verification against an OpenAPI document's declared security
// requirements.
type Handler struct {
	config Config

	// spec is consulted only when config.ScopeVerification is set. It is
	// loaded once at factory-build time rather than per request.
	spec *openapi.Spec
}

// New returns a JWT Handler bound to config. spec may be nil when scope
// verification is disabled.
func New(config Config, spec *openapi.Spec) *Handler {
	return &Handler{config: config, spec: spec}
}

// Exec implements serverless.Handler.
func (h *Handler) Exec(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
	if !h.config.Enabled {
		return status.DisabledStatus(), nil
	}

	req, err := ex.Input()
	if err != nil {
		return status.ServerErr("jwt handler: request not present"), nil
	}

	authHeader, found := findHeader(req.Headers, authHeaderName)
	if !found {
		return status.ClientErr("Missing JWT"), nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
		return status.ClientErr("Missing client bearer token header"), nil
	}
	token := parts[1]

	jwkSet, err := h.config.JwkProvider.JWKSet()
	if err != nil {
		return status.ServerErr("Unable to fetch JWKs"), nil
	}

	claims := jwtlib.MapClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodRSA); !ok {
			return nil, errUnsupportedAlg
		}
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errMissingKid
		}
		jwk, ok := jwkSet.Find(kid)
		if !ok {
			return nil, errNoMatchingJWK
		}
		key, err := jwk.RSAPublicKey()
		if err != nil {
			return nil, errMalformedKey
		}
		return key, nil
	}, jwtlib.WithValidMethods([]string{"RS256"}), jwtlib.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return status.ClientErr(jwtErrorMessage(err)), nil
	}

	if h.config.ScopeVerification {
		if err := h.validateScope(req.Path, req.Method, claims); err != nil {
			return status.ClientErr("Invalid scope for token"), nil
		}
	}

	if err := validateAudience(claims, h.config.Audience); err != nil {
		return status.ClientErr("Invalid audience for token"), nil
	}

	if err := validateIssuer(claims, h.config.Issuer); err != nil {
		return status.ClientErr("Invalid issuer for token"), nil
	}

	if !h.config.IgnoreJwtExpiration {
		if err := validateExpiration(claims); err != nil {
			return status.ClientErr("Expired token"), nil
		}
	}

	return status.Ok(), nil
}

// jwtErrorMessage maps a parse/verification failure to the client-facing
// message the source repository's handler returns for the equivalent
// branch.
func jwtErrorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingKid):
		return "JWT is missing kid"
	case errors.Is(err, errNoMatchingJWK):
		return "No matching JWK for kid"
	case errors.Is(err, errMalformedKey):
		return "Malformed RSA key"
	case errors.Is(err, errUnsupportedAlg):
		return "Unsupported JWT algorithm"
	case errors.Is(err, jwtlib.ErrTokenMalformed):
		return "Malformed JWT header"
	default:
		return "Invalid JWT"
	}
}

// validateScope resolves the request's operation in the OpenAPI document
// and checks that the token's space-separated scope claim satisfies at
// least one of the operation's security requirements (an Open Question
// resolved as any-of across requirement entries, all-of within one).
func (h *Handler) validateScope(path, method string, claims jwtlib.MapClaims) error {
	if h.spec == nil {
		return fmt.Errorf("jwt: no OpenAPI specification loaded for scope verification")
	}

	found, err := h.spec.FindOperation(path, method)
	if err != nil {
		return err
	}
	if len(found.Operation.Security) == 0 {
		return nil
	}

	tokenScopes := scopeSet(claims)
	for _, requirement := range found.Operation.Security {
		if securitySatisfied(requirement, tokenScopes) {
			return nil
		}
	}
	return fmt.Errorf("jwt: token scopes satisfy no declared security requirement")
}

func securitySatisfied(requirement map[string][]string, tokenScopes map[string]bool) bool {
	for _, scopes := range requirement {
		for _, scope := range scopes {
			if !tokenScopes[scope] {
				return false
			}
		}
	}
	return true
}

func scopeSet(claims jwtlib.MapClaims) map[string]bool {
	out := map[string]bool{}
	raw, ok := claims["scope"].(string)
	if !ok {
		return out
	}
	for _, s := range strings.Fields(raw) {
		out[s] = true
	}
	return out
}

// validateAudience accepts either a single string aud claim or a JSON
// array containing expected, matching the "aud as string-or-array" rule.
// An empty expected value skips the check.
func validateAudience(claims jwtlib.MapClaims, expected string) error {
	if expected == "" {
		return nil
	}
	raw, ok := claims["aud"]
	if !ok {
		return fmt.Errorf("jwt: missing aud claim")
	}
	switch v := raw.(type) {
	case string:
		if v == expected {
			return nil
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == expected {
				return nil
			}
		}
	}
	return fmt.Errorf("jwt: aud claim does not contain %q", expected)
}

// validateIssuer requires an exact match. An empty expected value skips
// the check.
func validateIssuer(claims jwtlib.MapClaims, expected string) error {
	if expected == "" {
		return nil
	}
	iss, ok := claims["iss"].(string)
	if !ok || iss != expected {
		return fmt.Errorf("jwt: iss claim mismatch")
	}
	return nil
}

// validateExpiration rejects a token whose exp claim is missing or in the
// past. The parser runs with WithoutClaimsValidation, which turns off all of
// jwtlib's own claim checks (exp, nbf, iat), so this is the only time-based
// check and IgnoreJwtExpiration skips it; nbf and iat are not checked.
func validateExpiration(claims jwtlib.MapClaims) error {
	raw, ok := claims["exp"]
	if !ok {
		return fmt.Errorf("jwt: missing exp claim")
	}

	var expUnix float64
	switch v := raw.(type) {
	case float64:
		expUnix = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("jwt: malformed exp claim: %w", err)
		}
		expUnix = f
	default:
		return fmt.Errorf("jwt: malformed exp claim")
	}

	if time.Now().Unix() > int64(expUnix) {
		return fmt.Errorf("jwt: token expired")
	}
	return nil
}

func findHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

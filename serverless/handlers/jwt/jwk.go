package jwt

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// JSONWebKey is one entry of a JWK Set, restricted to the fields an RSA
// verification key needs. The go.mod dependency set carries no JWK parsing
// library, so this is a minimal decoder rather than a port of a library
// type.
type JSONWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Set is a decoded JWK Set document.
type Set struct {
	Keys []JSONWebKey `json:"keys"`
}

// Find returns the key whose kid matches, if any.
func (s Set) Find(kid string) (JSONWebKey, bool) {
	for _, k := range s.Keys {
		if k.Kid == kid {
			return k, true
		}
	}
	return JSONWebKey{}, false
}

// ParseSet decodes a JWK Set document.
func ParseSet(raw []byte) (Set, error) {
	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		return Set{}, fmt.Errorf("jwt: malformed JWK set: %w", err)
	}
	return set, nil
}

// RSAPublicKey builds the rsa.PublicKey the JWK's n/e components describe.
// Only RSA keys are supported, matching the handler's RS256-only
// verification.
func (k JSONWebKey) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("jwt: unsupported key type %q", k.Kty)
	}

	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("jwt: malformed RSA modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("jwt: malformed RSA exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}

package jwt

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/idemio/idem-serverless/config"
)

// Provider resolves the JWK Set a token's signature is checked against.
// The source repository declares a RemoteJwkProvider variant it never
// finishes wiring ("TODO - implement remote and other types"); Provider is
// an interface instead of the source's closed enum so both variants are
// first-class here.
type Provider interface {
	JWKSet() (Set, error)
}

// LocalProvider reads a JWK Set from a file on disk through the shared
// config file cache.
type LocalProvider struct {
	FileName string
	FilePath string
}

// JWKSet implements Provider.
func (p LocalProvider) JWKSet() (Set, error) {
	raw, err := config.GetConfigFile(p.FilePath + "/" + p.FileName)
	if err != nil {
		return Set{}, fmt.Errorf("jwt: JWKs file does not exist: %w", err)
	}
	return ParseSet([]byte(raw))
}

// RemoteProvider fetches a JWK Set from an HTTP endpoint. The source
// repository declares this provider but never implements it; this
// completes it against the same config shape (jwk_server_url,
// jwk_server_path).
type RemoteProvider struct {
	ServerURL  string
	ServerPath string

	HTTPClient *http.Client
}

// JWKSet implements Provider.
func (p RemoteProvider) JWKSet() (Set, error) {
	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	resp, err := client.Get(p.ServerURL + p.ServerPath)
	if err != nil {
		return Set{}, fmt.Errorf("jwt: failed to fetch remote JWKs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Set{}, fmt.Errorf("jwt: remote JWKs endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Set{}, fmt.Errorf("jwt: failed to read remote JWKs response: %w", err)
	}

	return ParseSet(body)
}

// providerConfig is the JSON shape of the jwk_provider field: a
// discriminated union tagged by which of its two keys is present,
// mirroring the source repository's JwkProviders enum.
type providerConfig struct {
	LocalJwkProvider *struct {
		FileName string `json:"file_name"`
		FilePath string `json:"file_path"`
	} `json:"LocalJwkProvider"`
	RemoteJwkProvider *struct {
		ServerURL  string `json:"jwk_server_url"`
		ServerPath string `json:"jwk_server_path"`
	} `json:"RemoteJwkProvider"`
}

func (c providerConfig) build() (Provider, error) {
	switch {
	case c.LocalJwkProvider != nil:
		return LocalProvider{FileName: c.LocalJwkProvider.FileName, FilePath: c.LocalJwkProvider.FilePath}, nil
	case c.RemoteJwkProvider != nil:
		return RemoteProvider{ServerURL: c.RemoteJwkProvider.ServerURL, ServerPath: c.RemoteJwkProvider.ServerPath}, nil
	default:
		return LocalProvider{FileName: "jwks.json", FilePath: "./config"}, nil
	}
}

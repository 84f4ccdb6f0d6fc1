package sanitizer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/status"
)

// Sanitizer encodes disallowed characters out of a byte sequence. It is
// the seam spec.md §1 calls out as an out-of-scope external collaborator.
type Sanitizer interface {
	Sanitize(value []byte) ([]byte, error)
}

// JavaScriptSourceSanitizer is the default Sanitizer, matching the one
// encoder variant the source repository's config declared
// ("JavaScriptSource"): control characters and characters significant in
// an HTML/JS string context are escaped as \uXXXX, leaving everything
// else untouched.
type JavaScriptSourceSanitizer struct{}

// Sanitize implements Sanitizer.
func (JavaScriptSourceSanitizer) Sanitize(value []byte) ([]byte, error) {
	var buf bytes.Buffer
	for _, r := range string(value) {
		if needsEncoding(r) {
			fmt.Fprintf(&buf, `\u%04x`, r)
			continue
		}
		buf.WriteRune(r)
	}
	return buf.Bytes(), nil
}

func needsEncoding(r rune) bool {
	switch r {
	case '<', '>', '&', '\'', '"', '\\', '/':
		return true
	}
	return r < 0x20 || r == 0x7f
}

// Handler sanitizes the request body and any header whose name the
// configuration selects.
type Handler struct {
	config    Config
	sanitizer Sanitizer
}

// New returns a sanitizer Handler bound to config. A nil sanitizer
// defaults to JavaScriptSourceSanitizer{}.
func New(config Config, sanitizer Sanitizer) *Handler {
	if sanitizer == nil {
		sanitizer = JavaScriptSourceSanitizer{}
	}
	return &Handler{config: config, sanitizer: sanitizer}
}

// Exec implements serverless.Handler.
func (h *Handler) Exec(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
	if !h.config.Enabled {
		return status.DisabledStatus(), nil
	}

	req, err := ex.InputMut()
	if err != nil {
		return status.ServerErr("sanitizer handler: request not present"), nil
	}

	if h.config.BodyEnabled && len(req.Body) > 0 {
		clean, err := h.sanitizer.Sanitize(req.Body)
		if err != nil {
			return status.ServerErr("Failed to sanitize request body"), nil
		}
		req.Body = clean
	}

	for name, value := range req.Headers {
		if !attributeSelected(name, h.config.HeaderOptions) {
			continue
		}
		clean, err := h.sanitizer.Sanitize([]byte(value))
		if err != nil {
			return status.ServerErr("Failed to sanitize request header"), nil
		}
		req.Headers[name] = string(clean)
	}

	return status.Ok(), nil
}

func attributeSelected(name string, opts SectionConfig) bool {
	if containsFold(opts.AttributesToIgnore, name) {
		return false
	}
	return containsFold(opts.AttributesToEncode, name)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

package openapi

import "strings"

// JsonPointerPath is an ordered, RFC-6901-escaped sequence of segments
// locating a fragment inside the root OpenAPI document.
type JsonPointerPath struct {
	segments []string
}

// NewJsonPointerPath returns an empty pointer path.
func NewJsonPointerPath() *JsonPointerPath {
	return &JsonPointerPath{}
}

// Add appends a segment, escaping it per RFC 6901: "~" becomes "~0" first,
// then "/" becomes "~1" (spec §9, "in that order").
func (p *JsonPointerPath) Add(segment string) *JsonPointerPath {
	escaped := strings.ReplaceAll(segment, "~", "~0")
	escaped = strings.ReplaceAll(escaped, "/", "~1")
	p.segments = append(p.segments, escaped)
	return p
}

// Back removes the last segment, if any.
func (p *JsonPointerPath) Back() *JsonPointerPath {
	if len(p.segments) > 0 {
		p.segments = p.segments[:len(p.segments)-1]
	}
	return p
}

// String renders the pointer by joining segments with "/".
func (p *JsonPointerPath) String() string {
	return strings.Join(p.segments, "/")
}

// Clone returns an independent copy of p.
func (p *JsonPointerPath) Clone() *JsonPointerPath {
	segments := make([]string, len(p.segments))
	copy(segments, p.segments)
	return &JsonPointerPath{segments: segments}
}

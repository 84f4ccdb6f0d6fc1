// Package handler defines the unit of work the executor drives: a single
// step that inspects and mutates an Exchange and reports a Status.
package handler

import (
	"context"
	"fmt"

	"github.com/idemio/idem-serverless/exchange"
	"github.com/idemio/idem-serverless/status"
)

// Handler is one step of a request, response or terminator chain. Exec may
// read and write the exchange's input, output, metadata and attachments; the
// returned Status tells the executor how to proceed (spec §4.5).
type Handler[Input, Output, Metadata any] interface {
	Exec(ctx context.Context, ex *exchange.Exchange[Input, Output, Metadata]) (status.Status, error)
}

// Func adapts a plain function to the Handler interface.
type Func[Input, Output, Metadata any] func(ctx context.Context, ex *exchange.Exchange[Input, Output, Metadata]) (status.Status, error)

// Exec calls f.
func (f Func[Input, Output, Metadata]) Exec(ctx context.Context, ex *exchange.Exchange[Input, Output, Metadata]) (status.Status, error) {
	return f(ctx, ex)
}

// Registry looks up named handler instances by the name used in route
// configuration (spec §6, "handlers" array).
type Registry[Input, Output, Metadata any] struct {
	byName map[string]Handler[Input, Output, Metadata]
}

// NewRegistry returns an empty Registry.
func NewRegistry[Input, Output, Metadata any]() *Registry[Input, Output, Metadata] {
	return &Registry[Input, Output, Metadata]{byName: make(map[string]Handler[Input, Output, Metadata])}
}

// Register binds name to h, overwriting any previous binding.
func (r *Registry[Input, Output, Metadata]) Register(name string, h Handler[Input, Output, Metadata]) {
	r.byName[name] = h
}

// Lookup returns the handler bound to name, or an error if none is bound.
func (r *Registry[Input, Output, Metadata]) Lookup(name string) (Handler[Input, Output, Metadata], error) {
	h, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("handler: no handler registered under name %q", name)
	}
	return h, nil
}

// Names returns every registered handler name, in no particular order.
func (r *Registry[Input, Output, Metadata]) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

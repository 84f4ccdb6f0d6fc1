// Package executor drives an ordered set of handlers over an Exchange,
// interpreting each returned status to decide whether to continue, skip to
// the terminator, short-circuit, or fail (spec §4.5).
package executor

import (
	"context"

	"github.com/idemio/idem-serverless/exchange"
	"github.com/idemio/idem-serverless/handler"
	"github.com/idemio/idem-serverless/status"
)

// Plan is the ordered triple the router produces for one matched route:
// request handlers run first, the terminator produces output, response
// handlers observe and may rewrite it.
type Plan[Input, Output, Metadata any] struct {
	RequestHandlers  []handler.Handler[Input, Output, Metadata]
	Terminator       handler.Handler[Input, Output, Metadata]
	ResponseHandlers []handler.Handler[Input, Output, Metadata]
}

// Outcome describes how the chain ended, for observability and testing.
type Outcome int

const (
	// OutcomeCompleted means the chain ran to normal completion (including
	// a REQUEST_COMPLETED short-circuit).
	OutcomeCompleted Outcome = iota
	// OutcomeFailed means a handler returned an error-class status and the
	// error funnel produced the output.
	OutcomeFailed
)

// Result is returned by Run.
type Result struct {
	Outcome Outcome
	// FailedStatus is the status that triggered the error funnel, set only
	// when Outcome is OutcomeFailed.
	FailedStatus status.Status
}

// Run executes plan against ex, applying the spec §4.5 decision table to
// each request handler's returned status, then always running the
// finalization path (terminator if not skipped, response handlers, output
// listeners).
func Run[Input, Output, Metadata any](ctx context.Context, plan Plan[Input, Output, Metadata], ex *exchange.Exchange[Input, Output, Metadata]) (Result, error) {
	skipToTerminator := false
	requestCompleted := false

	for _, h := range plan.RequestHandlers {
		s, err := h.Exec(ctx, ex)
		if err != nil {
			return Result{}, err
		}

		switch {
		case s.Code().AnyFlagsSet(status.ErrorMask):
			return runErrorFunnel(ctx, plan, ex, s)

		case s.Code().AllFlagsSet(status.RequestCompleted):
			requestCompleted = true

		case s.Code().AnyFlagsSet(status.Continue):
			skipToTerminator = true

		case s.Code().AnyFlagsSet(status.OK | status.Disabled):
			// proceed to the next handler

		default:
			// unrecognized code: treat as proceed, matching the spec's
			// "any of OK, DISABLED" fallthrough for unflagged bits.
		}

		if requestCompleted || skipToTerminator {
			break
		}
	}

	if !requestCompleted {
		if err := runTerminator(ctx, plan, ex); err != nil {
			return Result{}, err
		}
		if _, err := ex.Output(); err != nil {
			return runErrorFunnel(ctx, plan, ex, status.ServerErr("terminator produced no output"))
		}
	}

	if err := runResponseHandlers(ctx, plan, ex); err != nil {
		return Result{}, err
	}

	ex.FlushOutputListeners()

	return Result{Outcome: OutcomeCompleted}, nil
}

func runTerminator[Input, Output, Metadata any](ctx context.Context, plan Plan[Input, Output, Metadata], ex *exchange.Exchange[Input, Output, Metadata]) error {
	if plan.Terminator == nil {
		return nil
	}
	_, err := plan.Terminator.Exec(ctx, ex)
	return err
}

func runResponseHandlers[Input, Output, Metadata any](ctx context.Context, plan Plan[Input, Output, Metadata], ex *exchange.Exchange[Input, Output, Metadata]) error {
	for _, h := range plan.ResponseHandlers {
		if _, err := h.Exec(ctx, ex); err != nil {
			return err
		}
	}
	return nil
}

// runErrorFunnel aborts the request chain on an error-class status. Per
// spec §4.5 and the "listeners always run on failure" decision (SPEC_FULL
// §11), response handlers and output listeners still run so observability
// middleware sees every request.
func runErrorFunnel[Input, Output, Metadata any](ctx context.Context, plan Plan[Input, Output, Metadata], ex *exchange.Exchange[Input, Output, Metadata], failed status.Status) (Result, error) {
	if err := runResponseHandlers(ctx, plan, ex); err != nil {
		return Result{}, err
	}
	ex.FlushOutputListeners()
	return Result{Outcome: OutcomeFailed, FailedStatus: failed}, nil
}

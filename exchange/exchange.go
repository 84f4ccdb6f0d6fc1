// Package exchange holds the request/response/metadata triple that flows
// through a handler chain, along with the listener and attachment
// side-channels handlers use to communicate without a direct reference to
// each other.
package exchange

import (
	"errors"
)

// ErrNotPresent is returned by Input/Output/InputMut/OutputMut/TakeInput/
// TakeOutput when the corresponding value has not been set, or has already
// been taken.
var ErrNotPresent = errors.New("exchange: value not present")

// ErrAlreadyConsumed is returned by SetInput once TakeInput has consumed
// the input (spec invariant I2: a consumed input is unobservable and
// cannot be reinstated).
var ErrAlreadyConsumed = errors.New("exchange: input already consumed")

// Callback mutates a value of type T and may record observations on the
// shared attachment store while doing so.
type Callback[T any] func(value *T, attachments *Attachments)

// Exchange carries one request's input, output and metadata through a
// handler chain. Input is generic Request, Output is generic Response, and
// Metadata is whatever routing/config context the chain wants attached. All
// three start unset; request handlers populate input, the terminator
// produces output, and response handlers observe and rewrite it.
type Exchange[Input, Output, Metadata any] struct {
	input    *Input
	output   *Output
	metadata *Metadata

	inputConsumed bool

	inputListeners  []Callback[Input]
	outputListeners []Callback[Output]

	attachments *Attachments
}

// New returns an Exchange with no input, output or metadata set and an
// empty attachment store.
func New[Input, Output, Metadata any]() *Exchange[Input, Output, Metadata] {
	return &Exchange[Input, Output, Metadata]{
		attachments: NewAttachments(),
	}
}

// Attachments returns the exchange's attachment store.
func (e *Exchange[Input, Output, Metadata]) Attachments() *Attachments {
	return e.attachments
}

// SetMetadata attaches metadata to the exchange, overwriting any previous
// value.
func (e *Exchange[Input, Output, Metadata]) SetMetadata(metadata Metadata) {
	e.metadata = &metadata
}

// Metadata returns the exchange's metadata, or ErrNotPresent if none was
// set.
func (e *Exchange[Input, Output, Metadata]) Metadata() (*Metadata, error) {
	if e.metadata == nil {
		return nil, ErrNotPresent
	}
	return e.metadata, nil
}

// AddInputListener registers a callback to run at most once, when TakeInput
// next drains the listeners. If no input is present at that point the
// callback is dropped without running (spec invariant I1).
func (e *Exchange[Input, Output, Metadata]) AddInputListener(cb Callback[Input]) {
	e.inputListeners = append(e.inputListeners, cb)
}

// AddOutputListener registers a callback to run at most once, when
// TakeOutput or FlushOutputListeners next drains the listeners. If no output
// is present at that point the callback is dropped without running (spec
// invariant I1).
func (e *Exchange[Input, Output, Metadata]) AddOutputListener(cb Callback[Output]) {
	e.outputListeners = append(e.outputListeners, cb)
}

// SetInput stores input, overwriting any previous value. It does not
// replace or clear registered input listeners. Returns ErrAlreadyConsumed
// once TakeInput has consumed the input (spec invariant I2); the input
// stays unobservable and is not reinstated.
func (e *Exchange[Input, Output, Metadata]) SetInput(input Input) error {
	if e.inputConsumed {
		return ErrAlreadyConsumed
	}
	e.input = &input
	return nil
}

// Input returns a read view of the stored input, or ErrNotPresent if none
// is set (including after TakeInput has consumed it — spec invariant I2).
func (e *Exchange[Input, Output, Metadata]) Input() (*Input, error) {
	if e.input == nil {
		return nil, ErrNotPresent
	}
	return e.input, nil
}

// InputMut returns a mutable view of the stored input, or ErrNotPresent if
// none is set.
func (e *Exchange[Input, Output, Metadata]) InputMut() (*Input, error) {
	if e.input == nil {
		return nil, ErrNotPresent
	}
	return e.input, nil
}

// runInputListeners drains and invokes every registered input listener
// against the current input. Each listener runs at most once across the
// lifetime of the exchange: the slice is cleared as part of the drain, even
// if input is nil, so a second TakeInput call never re-invokes them.
func (e *Exchange[Input, Output, Metadata]) runInputListeners() {
	listeners := e.inputListeners
	e.inputListeners = nil
	if e.input == nil {
		return
	}
	for _, cb := range listeners {
		cb(e.input, e.attachments)
	}
}

// TakeInput runs every registered input listener against the current input,
// then removes and returns it. A second call returns ErrNotPresent (spec
// invariant I2: take is terminal).
func (e *Exchange[Input, Output, Metadata]) TakeInput() (Input, error) {
	e.runInputListeners()
	var zero Input
	if e.input == nil {
		return zero, ErrNotPresent
	}
	input := *e.input
	e.input = nil
	e.inputConsumed = true
	return input, nil
}

// SetOutput stores output, overwriting any previous value. It does not
// replace or clear registered output listeners.
func (e *Exchange[Input, Output, Metadata]) SetOutput(output Output) {
	e.output = &output
}

// Output returns a read view of the stored output, or ErrNotPresent if none
// is set.
func (e *Exchange[Input, Output, Metadata]) Output() (*Output, error) {
	if e.output == nil {
		return nil, ErrNotPresent
	}
	return e.output, nil
}

// OutputMut returns a mutable view of the stored output, or ErrNotPresent if
// none is set.
func (e *Exchange[Input, Output, Metadata]) OutputMut() (*Output, error) {
	if e.output == nil {
		return nil, ErrNotPresent
	}
	return e.output, nil
}

// runOutputListeners drains and invokes every registered output listener
// against the current output, exactly once each.
func (e *Exchange[Input, Output, Metadata]) runOutputListeners() {
	listeners := e.outputListeners
	e.outputListeners = nil
	if e.output == nil {
		return
	}
	for _, cb := range listeners {
		cb(e.output, e.attachments)
	}
}

// TakeOutput runs every registered output listener against the current
// output, then removes and returns it. A second call returns ErrNotPresent.
func (e *Exchange[Input, Output, Metadata]) TakeOutput() (Output, error) {
	e.runOutputListeners()
	var zero Output
	if e.output == nil {
		return zero, ErrNotPresent
	}
	output := *e.output
	e.output = nil
	return output, nil
}

// FlushOutputListeners runs every registered output listener against the
// current output without consuming it. The executor's response phase uses
// this so response handlers can observe and rewrite output that the caller
// still needs to read back afterward (spec §4.5, finalization path).
func (e *Exchange[Input, Output, Metadata]) FlushOutputListeners() {
	e.runOutputListeners()
}

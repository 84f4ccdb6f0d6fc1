package exchange

import "reflect"

// attachmentKey pairs a symbolic name with a type tag so that two handlers
// sharing a name but storing different types never collide (spec §3,
// "Attachment store").
type attachmentKey struct {
	name string
	typ  reflect.Type
}

// Attachments is a heterogeneous, name-scoped side-channel store owned by an
// Exchange. Values are type-erased on write and recovered with a typed Get.
type Attachments struct {
	values map[attachmentKey]any
}

// NewAttachments returns an empty attachment store.
func NewAttachments() *Attachments {
	return &Attachments{values: make(map[attachmentKey]any)}
}

// Add inserts value under (key, typeof(value)), overwriting any prior value
// stored under the same (key, type) pair.
func Add[T any](a *Attachments, key string, value T) {
	a.values[attachmentKey{name: key, typ: reflect.TypeFor[T]()}] = value
}

// Get returns the value most recently Add-ed under (key, T), or the zero
// value and false if no such entry exists (spec invariant I3).
func Get[T any](a *Attachments, key string) (T, bool) {
	var zero T
	raw, ok := a.values[attachmentKey{name: key, typ: reflect.TypeFor[T]()}]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Remove deletes the value stored under (key, T), if any.
func Remove[T any](a *Attachments, key string) {
	delete(a.values, attachmentKey{name: key, typ: reflect.TypeFor[T]()})
}

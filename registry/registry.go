// Package registry implements the serialization hook dispatch for
// treepack: a populate-once mapping from model types to the
// extract/build capability pair the model codec needs.
//
// A Registry is built at system initialization, validated as it is
// populated, and read-only afterwards: an unregistered type is a
// configuration error surfaced at registration or lookup, never a
// silent fallback. Because the registry is immutable after population
// it is safe to share across concurrent dumps and loads.
package registry

import (
	"fmt"
	"reflect"

	"github.com/arloliu/treepack/blob"
	"github.com/arloliu/treepack/errs"
)

// Codec is the capability pair registered for one supported model type.
//
// Extract converts a model instance into the library-neutral
// ModelState; Build is its inverse. The pair must round-trip: for any
// model m, Build(Extract(m)) is indistinguishable from m.
type Codec struct {
	// Kind names the model kind on the wire, e.g. "tree/v1". Decode
	// dispatches on it.
	Kind string

	// Type is the exact Go type the codec handles. Encode dispatches on
	// it.
	Type reflect.Type

	// Extract obtains the tree states of a model instance.
	Extract func(model any) (*blob.ModelState, error)

	// Build reconstructs a model instance from decoded tree states.
	Build func(state *blob.ModelState) (any, error)
}

// Registry maps model types and kinds to their codecs.
type Registry struct {
	byType map[reflect.Type]Codec
	byKind map[string]Codec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]Codec),
		byKind: make(map[string]Codec),
	}
}

// Register adds a codec. Incomplete codecs and duplicate type or kind
// registrations are rejected, so configuration mistakes surface here
// rather than during a later encode.
func (r *Registry) Register(c Codec) error {
	if c.Kind == "" || c.Type == nil || c.Extract == nil || c.Build == nil {
		return fmt.Errorf("%w: kind, type, extract and build are all required", errs.ErrInvalidCodec)
	}
	if _, ok := r.byType[c.Type]; ok {
		return fmt.Errorf("%w: type %s", errs.ErrCodecRegistered, c.Type)
	}
	if _, ok := r.byKind[c.Kind]; ok {
		return fmt.Errorf("%w: kind %q", errs.ErrCodecRegistered, c.Kind)
	}

	r.byType[c.Type] = c
	r.byKind[c.Kind] = c

	return nil
}

// MustRegister is Register that panics on error, for static
// registration at initialization time.
func (r *Registry) MustRegister(c Codec) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// LookupModel returns the codec for a model instance, dispatching on
// its exact type.
func (r *Registry) LookupModel(model any) (Codec, error) {
	if model == nil {
		return Codec{}, fmt.Errorf("%w: nil model", errs.ErrUnsupportedModelType)
	}
	c, ok := r.byType[reflect.TypeOf(model)]
	if !ok {
		return Codec{}, fmt.Errorf("%w: %T", errs.ErrUnsupportedModelType, model)
	}

	return c, nil
}

// LookupKind returns the codec for a wire kind.
func (r *Registry) LookupKind(kind string) (Codec, error) {
	c, ok := r.byKind[kind]
	if !ok {
		return Codec{}, fmt.Errorf("%w: kind %q", errs.ErrUnsupportedModelType, kind)
	}

	return c, nil
}

// Kinds returns the registered kinds, for diagnostics.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.byKind))
	for kind := range r.byKind {
		kinds = append(kinds, kind)
	}

	return kinds
}

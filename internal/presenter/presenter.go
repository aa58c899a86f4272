// Package presenter converts domain entities into externally-shaped,
// allow-listed representations. A Spec is a static allow-list of field
// definitions built once at startup; presenting an entity through a Spec is
// a pure function and can never emit a field the Spec does not declare.
package presenter

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrCyclicPresentation is returned when a Spec graph contains a cycle
// between nested specs, which would otherwise recurse without bound.
var ErrCyclicPresentation = errors.New("cyclic presentation")

// FieldFunc extracts a field value from an entity. The entity is the value
// passed to Present; implementations typically type-assert it.
type FieldFunc func(entity any) any

// Field declares a single allow-listed output field.
type Field struct {
	// Name is the key the value is emitted under.
	Name string

	// Value extracts the field's value from the entity. Derived and
	// computed fields are expressed as ordinary FieldFuncs.
	Value FieldFunc

	// Nested, when set, presents the extracted value (or each element of an
	// extracted slice) through another Spec instead of emitting it raw.
	Nested *Spec
}

// Spec is a static allow-list of fields for one entity kind. Specs are
// constructed at startup and never mutated afterwards, so they are safe for
// concurrent use.
type Spec struct {
	// Name identifies the spec in error messages (e.g. "user").
	Name string

	Fields []Field
}

// Validate checks the spec graph reachable from s for structural problems:
// unnamed fields, fields without a value function, and cycles between
// nested specs. Call it once at startup; Present also guards against cycles
// at render time for specs assembled dynamically.
func (s *Spec) Validate() error {
	return s.validate(map[*Spec]bool{})
}

func (s *Spec) validate(inPath map[*Spec]bool) error {
	if inPath[s] {
		return fmt.Errorf("%w: spec %q nests itself", ErrCyclicPresentation, s.Name)
	}
	inPath[s] = true
	defer delete(inPath, s)

	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("spec %q: field %d has no name", s.Name, i)
		}
		if f.Value == nil {
			return fmt.Errorf("spec %q: field %q has no value function", s.Name, f.Name)
		}
		if f.Nested != nil {
			if err := f.Nested.validate(inPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// Present renders entity through the spec's allow-list. Only declared
// fields appear in the output; nested associations are presented
// recursively with the same contract. A nil entity presents as nil.
func (s *Spec) Present(entity any) (map[string]any, error) {
	return s.present(entity, map[*Spec]bool{})
}

func (s *Spec) present(entity any, inPath map[*Spec]bool) (map[string]any, error) {
	if inPath[s] {
		return nil, fmt.Errorf("%w: spec %q nests itself", ErrCyclicPresentation, s.Name)
	}
	if isNil(entity) {
		return nil, nil
	}
	inPath[s] = true
	defer delete(inPath, s)

	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		value := f.Value(entity)
		if f.Nested == nil {
			out[f.Name] = value
			continue
		}

		nested, err := f.Nested.presentNested(value, inPath)
		if err != nil {
			return nil, err
		}
		out[f.Name] = nested
	}
	return out, nil
}

// presentNested renders an extracted association value, handling both
// single entities and slices of entities.
func (s *Spec) presentNested(value any, inPath map[*Spec]bool) (any, error) {
	if isNil(value) {
		return nil, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		items := make([]map[string]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := s.present(rv.Index(i).Interface(), inPath)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	return s.present(value, inPath)
}

// PresentAll renders a slice of entities through the spec. The result is
// never nil, so an empty page serializes as [] rather than null.
func PresentAll[T any](s *Spec, entities []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		m, err := s.Present(e)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// isNil reports whether v is nil or a nil pointer/slice/map/interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

package request

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reqbricks/reqbricks/internal/reflection"
)

// Accessor reads one parameter value from a request object.
type Accessor[T any] func(T) (any, error)

// Value lifts a plain getter into an Accessor.
func Value[T, V any](fn func(T) V) Accessor[T] {
	return func(obj T) (any, error) {
		return fn(obj), nil
	}
}

// FieldOption configures a single schema field.
type FieldOption func(*fieldSpec)

type fieldSpec struct {
	required bool
	adapter  Adapter
}

// Required marks the field as required: a blank value fails translation.
func Required() FieldOption {
	return func(f *fieldSpec) {
		f.required = true
	}
}

// WithAdapter converts the field with a rather than StringAdapter.
func WithAdapter(a Adapter) FieldOption {
	return func(f *fieldSpec) {
		if a != nil {
			f.adapter = a
		}
	}
}

type schemaField[T any] struct {
	name     string
	required bool
	adapter  Adapter
	accessor Accessor[T]
}

// SchemaBuilder declares the parameters of T explicitly, without reflection.
type SchemaBuilder[T any] struct {
	fields []schemaField[T]
	opts   []Option
}

// NewSchema starts a schema for T. Options behave as for NewTranslator;
// WithRegistry and WithTagName have no effect on schemas.
func NewSchema[T any](opts ...Option) *SchemaBuilder[T] {
	return &SchemaBuilder[T]{opts: opts}
}

// Field declares a parameter read by accessor.
func (b *SchemaBuilder[T]) Field(name string, accessor Accessor[T], opts ...FieldOption) *SchemaBuilder[T] {
	spec := fieldSpec{adapter: StringAdapter}
	for _, opt := range opts {
		opt(&spec)
	}
	b.fields = append(b.fields, schemaField[T]{
		name:     name,
		required: spec.required,
		adapter:  spec.adapter,
		accessor: accessor,
	})
	return b
}

// Build validates the declarations. Empty names, nil accessors and
// duplicate names are rejected here so that translation never has to
// decide between two values for one parameter.
func (b *SchemaBuilder[T]) Build() (*Schema[T], error) {
	var errs []error
	seen := make(map[string]bool, len(b.fields))
	for i, f := range b.fields {
		switch {
		case f.name == "":
			errs = append(errs, fmt.Errorf("field %d: %w", i, ErrEmptyParameterName))
		case seen[f.name]:
			errs = append(errs, fmt.Errorf("field %d (%s): %w", i, f.name, ErrDuplicateParameter))
		}
		if f.accessor == nil {
			errs = append(errs, fmt.Errorf("field %d (%s): %w", i, f.name, ErrNilAccessor))
		}
		seen[f.name] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	fields := make([]schemaField[T], len(b.fields))
	copy(fields, b.fields)
	return &Schema[T]{
		fields:   fields,
		settings: newSettings(b.opts),
		typeName: reflection.GetTypeNameShort(reflect.TypeOf((*T)(nil)).Elem()),
	}, nil
}

// MustBuild is Build that panics on error, for package-level schema variables.
func (b *SchemaBuilder[T]) MustBuild() *Schema[T] {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Schema is an immutable, explicitly declared parameter mapping for T.
type Schema[T any] struct {
	fields   []schemaField[T]
	settings settings
	typeName string
}

// Names returns the declared parameter names in declaration order.
func (s *Schema[T]) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Translate maps obj following the same rules as Translator.Translate.
func (s *Schema[T]) Translate(obj T) (map[string]string, error) {
	bindings := make([]binding, len(s.fields))
	for i, f := range s.fields {
		bindings[i] = binding{
			name:     f.name,
			required: f.required,
			adapter:  f.adapter,
			read:     func() (any, error) { return callSchemaAccessor(f.accessor, obj) },
		}
	}
	return evaluate(s.typeName, bindings, s.settings)
}

func callSchemaAccessor[T any](accessor Accessor[T], obj T) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			value, err = nil, fmt.Errorf("accessor panicked: %v", rec)
		}
	}()
	return accessor(obj)
}

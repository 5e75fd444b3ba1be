package request

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies the stage of translation that failed.
type ErrorKind string

const (
	FieldAccessError          ErrorKind = "field_access"
	RequiredParameterMissing  ErrorKind = "required_parameter_missing"
	AdapterInstantiationError ErrorKind = "adapter_instantiation"
	AdapterConversionError    ErrorKind = "adapter_conversion"
	InvalidObjectError        ErrorKind = "invalid_object"
	InvalidDescriptorError    ErrorKind = "invalid_descriptor"
)

// Sentinel errors matched by errors.Is against any *TranslationError of the same kind.
var (
	ErrFieldAccess          = errors.New("field access failed")
	ErrRequiredParameter    = errors.New("required parameter missing")
	ErrAdapterInstantiation = errors.New("adapter instantiation failed")
	ErrAdapterConversion    = errors.New("adapter conversion failed")
	ErrInvalidObject        = errors.New("invalid request object")
	ErrInvalidDescriptor    = errors.New("invalid parameter descriptor")

	// ErrDuplicateParameter is returned by SchemaBuilder.Build when two fields share a name.
	ErrDuplicateParameter = errors.New("duplicate parameter name")
	// ErrEmptyParameterName is returned by SchemaBuilder.Build for a field without a name.
	ErrEmptyParameterName = errors.New("parameter name cannot be empty")
	// ErrNilAccessor is returned by SchemaBuilder.Build for a field without an accessor.
	ErrNilAccessor = errors.New("parameter accessor cannot be nil")
)

// TranslationError is raised while mapping a request object to parameters.
// It is never retried and always reaches the caller unchanged.
type TranslationError struct {
	Kind  ErrorKind
	Param string // declared parameter name
	Field string // Go field name, when known
	Type  string // request object type name
	Cause error
}

func (e *TranslationError) Error() string {
	var b strings.Builder
	b.WriteString("translation error: ")
	b.WriteString(e.sentinel().Error())

	var where []string
	if e.Param != "" {
		where = append(where, "param: "+e.Param)
	}
	if e.Field != "" {
		where = append(where, "field: "+e.Field)
	}
	if e.Type != "" {
		where = append(where, "type: "+e.Type)
	}
	if len(where) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(where, ", "))
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *TranslationError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *TranslationError) sentinel() error {
	switch e.Kind {
	case FieldAccessError:
		return ErrFieldAccess
	case RequiredParameterMissing:
		return ErrRequiredParameter
	case AdapterInstantiationError:
		return ErrAdapterInstantiation
	case AdapterConversionError:
		return ErrAdapterConversion
	case InvalidObjectError:
		return ErrInvalidObject
	default:
		return ErrInvalidDescriptor
	}
}

// IsKind checks whether err is a TranslationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

// MissingParameter returns the declared name carried by a RequiredParameterMissing error.
func MissingParameter(err error) (string, bool) {
	var te *TranslationError
	if errors.As(err, &te) && te.Kind == RequiredParameterMissing {
		return te.Param, true
	}
	return "", false
}

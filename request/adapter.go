package request

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Adapter converts a field value to its string wire representation.
// Convert is never called with a nil value.
type Adapter interface {
	Convert(value any) (string, error)
}

// AdapterFunc is the function form of Adapter.
type AdapterFunc func(value any) (string, error)

// Convert calls f(value).
func (f AdapterFunc) Convert(value any) (string, error) {
	return f(value)
}

// AdapterFactory produces an Adapter when a named adapter is resolved.
type AdapterFactory func() (Adapter, error)

// Built-in adapter names
const (
	AdapterString  = "string"
	AdapterYesNo   = "yes_no"
	AdapterUnix    = "unix"
	AdapterRFC3339 = "rfc3339"
	AdapterCSV     = "csv"
)

// StringAdapter is the default adapter: the value's natural string form.
var StringAdapter Adapter = AdapterFunc(toString)

// Typed adapts a function over a concrete type. Values of any other type fail
// with a conversion error.
func Typed[T any](fn func(T) (string, error)) Adapter {
	return AdapterFunc(func(value any) (string, error) {
		v, ok := value.(T)
		if !ok {
			var zero T
			return "", fmt.Errorf("adapter expects %T, got %T", zero, value)
		}
		return fn(v)
	})
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", nil
		}
		return toString(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	default:
		return fmt.Sprint(value), nil
	}
}

func yesNo(v bool) (string, error) {
	if v {
		return "yes", nil
	}
	return "no", nil
}

func unixSeconds(t time.Time) (string, error) {
	if t.IsZero() {
		return "", nil
	}
	return strconv.FormatInt(t.Unix(), 10), nil
}

func rfc3339(t time.Time) (string, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.Format(time.RFC3339), nil
}

func csv(value any) (string, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return "", fmt.Errorf("csv adapter expects a slice or array, got %T", value)
	}

	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		s, err := toString(rv.Index(i).Interface())
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ","), nil
}

// Registry resolves adapter names used in struct tags. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]AdapterFactory
}

// NewRegistry creates a registry preloaded with the built-in adapters.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]AdapterFactory)}
	builtins := map[string]Adapter{
		AdapterString:  StringAdapter,
		AdapterYesNo:   Typed(yesNo),
		AdapterUnix:    Typed(unixSeconds),
		AdapterRFC3339: Typed(rfc3339),
		AdapterCSV:     AdapterFunc(csv),
	}
	for name, a := range builtins {
		r.factories[name] = singleton(a)
	}
	return r
}

func singleton(a Adapter) AdapterFactory {
	return func() (Adapter, error) { return a, nil }
}

// Register binds name to a factory, replacing any previous binding.
func (r *Registry) Register(name string, factory AdapterFactory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("adapter name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("adapter factory for %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
	return nil
}

// RegisterAdapter binds name to a ready-made adapter.
func (r *Registry) RegisterAdapter(name string, adapter Adapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter for %q cannot be nil", name)
	}
	return r.Register(name, singleton(adapter))
}

// Resolve instantiates the adapter registered under name.
func (r *Registry) Resolve(name string) (adapter Adapter, err error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no adapter registered under %q", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			adapter, err = nil, fmt.Errorf("adapter factory %q panicked: %v", name, rec)
		}
	}()

	adapter, err = factory()
	if err != nil {
		return nil, err
	}
	if adapter == nil {
		return nil, fmt.Errorf("adapter factory %q returned nil", name)
	}
	return adapter, nil
}

// Names lists the registered adapter names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// DefaultRegistry backs the package-level Register helpers and Translate.
var DefaultRegistry = NewRegistry()

// Register binds name to a factory in DefaultRegistry.
func Register(name string, factory AdapterFactory) error {
	return DefaultRegistry.Register(name, factory)
}

// RegisterAdapter binds name to an adapter in DefaultRegistry.
func RegisterAdapter(name string, adapter Adapter) error {
	return DefaultRegistry.RegisterAdapter(name, adapter)
}

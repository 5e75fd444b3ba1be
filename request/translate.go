package request

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/reqbricks/reqbricks/internal/reflection"
)

// Filter decides whether a translated entry is kept in the final map.
type Filter func(name, value string) bool

// DropBlank keeps only entries whose value is not blank. It is the default filter.
func DropBlank(_, value string) bool {
	return !isBlank(value)
}

// KeepAll keeps every entry, including blank ones.
func KeepAll(_, _ string) bool {
	return true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

type settings struct {
	registry *Registry
	filter   Filter
	workers  int
	tagName  string
}

// Option configures a Translator or a Schema.
type Option func(*settings)

// WithRegistry sets the registry used to resolve adapter names in tags.
func WithRegistry(r *Registry) Option {
	return func(s *settings) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithFilter sets the post-translation filter. A nil filter keeps every entry.
func WithFilter(f Filter) Option {
	return func(s *settings) {
		if f == nil {
			f = KeepAll
		}
		s.filter = f
	}
}

// WithWorkers bounds how many fields are converted concurrently.
// Values below 1 select runtime.GOMAXPROCS(0); 1 means sequential.
func WithWorkers(n int) Option {
	return func(s *settings) {
		s.workers = n
	}
}

// WithTagName changes the struct tag key read by the Translator.
func WithTagName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.tagName = name
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		registry: DefaultRegistry,
		filter:   DropBlank,
		tagName:  DefaultTagName,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// binding is one parameter ready for evaluation.
type binding struct {
	name     string
	field    string
	required bool
	adapter  Adapter
	read     func() (any, error)
}

// Translator maps struct fields tagged with a parameter descriptor to a
// name to value map. A Translator holds no per-call state and is safe for
// concurrent use.
type Translator struct {
	settings settings
}

// NewTranslator creates a Translator. Without options it reads the "param"
// tag, resolves adapters from DefaultRegistry and drops blank entries.
func NewTranslator(opts ...Option) *Translator {
	return &Translator{settings: newSettings(opts)}
}

var defaultTranslator = NewTranslator()

// Translate maps obj with the default Translator.
func Translate(obj any) (map[string]string, error) {
	return defaultTranslator.Translate(obj)
}

// Translate maps the tagged fields of obj, a struct or a pointer to one.
// On any error no map is returned.
func (t *Translator) Translate(obj any) (map[string]string, error) {
	bindings, typeName, err := t.bind(obj)
	if err != nil {
		return nil, err
	}
	return evaluate(typeName, bindings, t.settings)
}

func (t *Translator) bind(obj any) ([]binding, string, error) {
	if obj == nil {
		return nil, "", &TranslationError{Kind: InvalidObjectError, Cause: fmt.Errorf("object is nil")}
	}

	v := reflect.ValueOf(obj)
	typeName := reflection.GetTypeNameShort(v.Type())
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, typeName, &TranslationError{Kind: InvalidObjectError, Type: typeName, Cause: fmt.Errorf("object is a nil pointer")}
		}
		if v.Elem().Kind() != reflect.Pointer {
			break
		}
		v = v.Elem()
	}

	// recv carries the full method set; root is the addressable struct behind it.
	var recv, root reflect.Value
	if v.Kind() == reflect.Pointer {
		recv, root = v, v.Elem()
	} else {
		recv = reflect.New(v.Type())
		recv.Elem().Set(v)
		root = recv.Elem()
	}
	if root.Kind() != reflect.Struct {
		return nil, typeName, &TranslationError{Kind: InvalidObjectError, Type: typeName, Cause: fmt.Errorf("object must be a struct, got %s", root.Kind())}
	}

	fields := DiscoverFields(root.Type())
	bindings := make([]binding, 0, len(fields))
	for _, fd := range fields {
		// An embedded struct is a parameter only when tagged; its fields follow either way.
		tag, ok := fd.Tag.Lookup(t.settings.tagName)
		if !ok || tag == "-" {
			continue
		}

		desc, err := ParseDescriptor(tag)
		if err != nil {
			return nil, typeName, &TranslationError{Kind: InvalidDescriptorError, Field: fd.Name, Type: typeName, Cause: err}
		}

		adapter := StringAdapter
		if desc.Adapter != "" {
			adapter, err = t.settings.registry.Resolve(desc.Adapter)
			if err != nil {
				return nil, typeName, &TranslationError{Kind: AdapterInstantiationError, Param: desc.Name, Field: fd.Name, Type: typeName, Cause: err}
			}
		}

		bindings = append(bindings, binding{
			name:     desc.Name,
			field:    fd.Name,
			required: desc.Required,
			adapter:  adapter,
			read:     func() (any, error) { return readField(recv, root, fd) },
		})
	}

	return bindings, typeName, nil
}

// evaluate converts every binding on a bounded pool, then reduces the
// results in binding order so that a repeated name keeps its last value and
// the reported failure is the first one in binding order.
func evaluate(typeName string, bindings []binding, s settings) (map[string]string, error) {
	values := make([]string, len(bindings))
	errs := make([]error, len(bindings))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, b := range bindings {
		g.Go(func() error {
			values[i], errs[i] = b.value(typeName)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := make(map[string]string, len(bindings))
	for i, b := range bindings {
		result[b.name] = values[i]
	}
	for name, value := range result {
		if !s.filter(name, value) {
			delete(result, name)
		}
	}
	return result, nil
}

func (b binding) value(typeName string) (string, error) {
	raw, err := b.read()
	if err != nil {
		return "", &TranslationError{Kind: FieldAccessError, Param: b.name, Field: b.field, Type: typeName, Cause: err}
	}

	var s string
	if !isNil(raw) {
		s, err = convert(b.adapter, raw)
		if err != nil {
			return "", &TranslationError{Kind: AdapterConversionError, Param: b.name, Field: b.field, Type: typeName, Cause: err}
		}
	}

	if isBlank(s) {
		if b.required {
			return "", &TranslationError{Kind: RequiredParameterMissing, Param: b.name, Field: b.field, Type: typeName}
		}
		return "", nil
	}
	return s, nil
}

func convert(a Adapter, raw any) (s string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s, err = "", fmt.Errorf("adapter panicked: %v", rec)
		}
	}()
	return a.Convert(raw)
}

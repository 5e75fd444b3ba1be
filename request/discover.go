package request

import (
	"reflect"
	"sync"

	"github.com/reqbricks/reqbricks/internal/reflection"
)

// FieldDescriptor describes one field reachable from a request object type.
type FieldDescriptor struct {
	Name     string            // Go field name
	Index    []int             // index path from the root struct, as used by reflect.Value.FieldByIndex
	Type     reflect.Type      // declared field type
	Exported bool              // whether the field name is exported
	Owner    reflect.Type      // struct type declaring the field
	Depth    int               // 0 for the root type, 1 for its embedded structs, ...
	Tag      reflect.StructTag // raw struct tag
	Embedded bool              // an embedded struct, listed ahead of its own fields
}

var discoveryCache sync.Map // reflect.Type -> []FieldDescriptor

// DiscoverFields enumerates the fields of t and of every struct it embeds.
// The type's own fields come first in declaration order, followed by each
// embedded struct in turn: the embedded field itself, then its fields,
// recursively. Pointer types are dereferenced; anything that is not a struct
// yields nil.
func DiscoverFields(t reflect.Type) []FieldDescriptor {
	t = reflection.Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	if cached, ok := discoveryCache.Load(t); ok {
		return cached.([]FieldDescriptor)
	}

	fields := discover(t, nil, 0, map[reflect.Type]bool{})
	discoveryCache.Store(t, fields)
	return fields
}

func discover(t reflect.Type, prefix []int, depth int, onPath map[reflect.Type]bool) []FieldDescriptor {
	onPath[t] = true
	defer delete(onPath, t)

	var (
		fields   []FieldDescriptor
		embedded []FieldDescriptor
	)

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fd := FieldDescriptor{
			Name:     f.Name,
			Index:    appendIndex(prefix, i),
			Type:     f.Type,
			Exported: f.IsExported(),
			Owner:    t,
			Depth:    depth,
			Tag:      f.Tag,
			Embedded: isAncestor(f),
		}
		if fd.Embedded {
			embedded = append(embedded, fd)
			continue
		}
		fields = append(fields, fd)
	}

	for _, fd := range embedded {
		fields = append(fields, fd)
		et := reflection.Indirect(fd.Type)
		if onPath[et] {
			continue
		}
		fields = append(fields, discover(et, fd.Index, depth+1, onPath)...)
	}

	return fields
}

// isAncestor reports whether f is an embedded struct whose fields should be walked.
func isAncestor(f reflect.StructField) bool {
	return f.Anonymous && reflection.IsStructType(f.Type)
}

func appendIndex(prefix []int, i int) []int {
	index := make([]int, len(prefix)+1)
	copy(index, prefix)
	index[len(prefix)] = i
	return index
}

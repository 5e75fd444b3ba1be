package request

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/reqbricks/reqbricks/internal/reflection"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// fieldByIndex walks index from v. A nil embedded pointer along the way
// reports ok=false instead of panicking.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// readField returns the runtime value of fd on the struct root. Fields that
// cannot be read directly are read through an accessor method on recv.
func readField(recv, root reflect.Value, fd FieldDescriptor) (any, error) {
	fv, ok := fieldByIndex(root, fd.Index)
	if !ok {
		return nil, nil
	}
	if fv.CanInterface() {
		return fv.Interface(), nil
	}
	return invokeAccessor(recv, fd)
}

func invokeAccessor(recv reflect.Value, fd FieldDescriptor) (value any, err error) {
	names := reflection.AccessorNames(fd.Name, fd.Type.Kind() == reflect.Bool)
	for _, name := range names {
		m := recv.MethodByName(name)
		if !m.IsValid() {
			continue
		}
		if err := checkAccessor(m.Type()); err != nil {
			return nil, fmt.Errorf("accessor %s: %w", name, err)
		}
		return callAccessor(name, m)
	}
	return nil, fmt.Errorf("field is not readable and no accessor found (tried %s)", strings.Join(names, ", "))
}

func checkAccessor(mt reflect.Type) error {
	if mt.NumIn() != 0 {
		return errors.New("accessor must take no arguments")
	}
	switch mt.NumOut() {
	case 1:
		return nil
	case 2:
		if mt.Out(1) != errorType {
			return errors.New("second accessor result must be error")
		}
		return nil
	default:
		return errors.New("accessor must return a value or (value, error)")
	}
}

func callAccessor(name string, m reflect.Value) (value any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			value, err = nil, fmt.Errorf("accessor %s panicked: %v", name, rec)
		}
	}()

	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("accessor %s: %w", name, out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}

// isNil reports whether v is nil or a typed nil pointer, interface, map, slice, chan or func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Package reflection provides internal utility functions for reflection operations in reqbricks.
package reflection

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

// GetTypeName returns the fully qualified type name
func GetTypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}

	t = Indirect(t)

	if t.PkgPath() == "" {
		return t.Name()
	}

	return t.PkgPath() + "." + t.Name()
}

// GetTypeNameShort returns just the type name without package path
func GetTypeNameShort(t reflect.Type) string {
	if t == nil {
		return ""
	}

	return Indirect(t).Name()
}

// Indirect strips every level of pointer indirection from t.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// IsStructType reports whether t is a struct or a (possibly nested) pointer to one.
func IsStructType(t reflect.Type) bool {
	t = Indirect(t)
	return t != nil && t.Kind() == reflect.Struct
}

// Capitalize upper-cases the first rune of s. Blank input returns "".
func Capitalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// AccessorNames returns the method names probed, in order, when reading a
// field that cannot be accessed directly. Boolean fields try Is<Name> before
// Get<Name>; the bare capitalized name is tried last.
func AccessorNames(field string, isBool bool) []string {
	capitalized := Capitalize(field)
	if capitalized == "" {
		return nil
	}

	names := make([]string, 0, 3)
	if isBool {
		names = append(names, "Is"+capitalized)
	}
	names = append(names, "Get"+capitalized)
	if capitalized != field {
		names = append(names, capitalized)
	}
	return names
}

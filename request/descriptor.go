package request

import (
	"fmt"
	"strings"
)

const (
	// DefaultTagName is the struct tag key read by the Translator.
	DefaultTagName = "param"

	optRequired = "required"
	optAdapter  = "adapter="
)

// Descriptor is the parameter metadata attached to a field.
//
//	UserID string `param:"api_user_key,required"`
//	Flag   bool   `param:"delete_on_error,adapter=yes_no"`
type Descriptor struct {
	Name     string
	Required bool
	Adapter  string // registered adapter name; empty means StringAdapter
}

// ParseDescriptor parses a tag value of the form "name[,required][,adapter=<name>]".
func ParseDescriptor(tag string) (Descriptor, error) {
	parts := strings.Split(tag, ",")

	d := Descriptor{Name: strings.TrimSpace(parts[0])}
	if d.Name == "" {
		return Descriptor{}, fmt.Errorf("parameter name is required in tag %q", tag)
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
			continue
		case part == optRequired:
			d.Required = true
		case strings.HasPrefix(part, optAdapter):
			d.Adapter = strings.TrimSpace(strings.TrimPrefix(part, optAdapter))
			if d.Adapter == "" {
				return Descriptor{}, fmt.Errorf("adapter name is empty in tag %q", tag)
			}
		default:
			return Descriptor{}, fmt.Errorf("unknown option %q in tag %q", part, tag)
		}
	}

	return d, nil
}

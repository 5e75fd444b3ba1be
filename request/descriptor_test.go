package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected Descriptor
	}{
		{
			name:     "name only",
			tag:      "limit",
			expected: Descriptor{Name: "limit"},
		},
		{
			name:     "required",
			tag:      "api_user_key,required",
			expected: Descriptor{Name: "api_user_key", Required: true},
		},
		{
			name:     "adapter",
			tag:      "delete_on_error,adapter=yes_no",
			expected: Descriptor{Name: "delete_on_error", Adapter: "yes_no"},
		},
		{
			name:     "all options with spaces",
			tag:      " flag , adapter= yes_no , required ",
			expected: Descriptor{Name: "flag", Required: true, Adapter: "yes_no"},
		},
		{
			name:     "empty option ignored",
			tag:      "a,,required",
			expected: Descriptor{Name: "a", Required: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestParseDescriptorErrors(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		msg  string
	}{
		{"empty", "", "parameter name is required"},
		{"blank name", "  ,required", "parameter name is required"},
		{"empty adapter", "a,adapter=", "adapter name is empty"},
		{"unknown option", "a,omitempty", `unknown option "omitempty"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor(tt.tag)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}

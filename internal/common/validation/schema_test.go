package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_FirstInvalidField(t *testing.T) {
	schema := MustSubscriptionSchema()

	tests := []struct {
		name string
		doc  map[string]interface{}
		want string
	}{
		{
			name: "valid",
			doc:  map[string]interface{}{"location": "a", "sms": "b", "lang": "en"},
			want: "",
		},
		{
			name: "everything missing reports location first",
			doc:  map[string]interface{}{},
			want: "location",
		},
		{
			name: "sms missing",
			doc:  map[string]interface{}{"location": "a", "lang": "en"},
			want: "sms",
		},
		{
			name: "lang wrong type",
			doc:  map[string]interface{}{"location": "a", "sms": "b", "lang": 12},
			want: "lang",
		},
		{
			name: "empty string counts as missing",
			doc:  map[string]interface{}{"location": "", "sms": "b", "lang": "en"},
			want: "location",
		},
		{
			name: "sms and lang both bad reports sms",
			doc:  map[string]interface{}{"location": "a", "sms": nil},
			want: "sms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schema.FirstInvalidField(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSchema_InvalidSchema(t *testing.T) {
	_, err := NewSchema(`{"type": 7}`, nil)
	assert.Error(t, err)
}

func TestValidLocationID(t *testing.T) {
	assert.True(t, ValidLocationID("2f4ab6b0-6a2a-4a43-9f6c-6a1c8d5c0a11"))
	assert.False(t, ValidLocationID("not-a-uuid"))
	assert.False(t, ValidLocationID("2f4ab6b06a2a4a439f6c6a1c8d5c0a11"))
	assert.False(t, ValidLocationID("{2f4ab6b0-6a2a-4a43-9f6c-6a1c8d5c0a11}"))
}

func TestNormalizeUSPhone(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{raw: "1234567890", want: "+11234567890", valid: true},
		{raw: "(123) 456-7890", want: "+11234567890", valid: true},
		{raw: "123-4567", want: "+11234567", valid: false},
		{raw: "+1 123 456 7890", want: "+111234567890", valid: false},
		{raw: "", want: "+1", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeUSPhone(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestValidLangID(t *testing.T) {
	assert.True(t, ValidLangID("en"))
	assert.True(t, ValidLangID("es"))
	assert.False(t, ValidLangID("e"))
	assert.False(t, ValidLangID("en-US"))
	assert.False(t, ValidLangID(""))
}

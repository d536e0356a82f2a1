package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// SubscriptionRequestSchema describes the intake request body. Only presence
// and type are enforced here; value rules live in the helpers below so each
// failure can carry its own message.
const SubscriptionRequestSchema = `{
  "type": "object",
  "properties": {
    "location": {"type": "string", "minLength": 1},
    "sms":      {"type": "string", "minLength": 1},
    "lang":     {"type": "string", "minLength": 1}
  },
  "required": ["location", "sms", "lang"]
}`

const rootContext = "(root)"

// SubscriptionFields is the order in which required fields are reported.
var SubscriptionFields = []string{"location", "sms", "lang"}

// USPhoneLength is "+1" followed by ten digits.
const USPhoneLength = 12

// Schema is a compiled JSON schema with a fixed field reporting order.
type Schema struct {
	schema *gojsonschema.Schema
	fields []string
}

// NewSchema compiles schemaJSON. fields sets the order FirstInvalidField
// reports problems in.
func NewSchema(schemaJSON string, fields []string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s, fields: fields}, nil
}

// MustSubscriptionSchema compiles SubscriptionRequestSchema.
func MustSubscriptionSchema() *Schema {
	s, err := NewSchema(SubscriptionRequestSchema, SubscriptionFields)
	if err != nil {
		panic(err)
	}
	return s
}

// FirstInvalidField returns the first field, in reporting order, that is
// missing, of the wrong type or empty. It returns "" when doc is valid.
func (s *Schema) FirstInvalidField(doc map[string]interface{}) (string, error) {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return "", fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return "", nil
	}

	bad := make(map[string]bool, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == rootContext || field == "" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		bad[field] = true
	}

	for _, f := range s.fields {
		if bad[f] {
			return f, nil
		}
	}
	return result.Errors()[0].Field(), nil
}

// ValidLocationID reports whether id is a canonical hyphenated UUID.
func ValidLocationID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// NormalizeUSPhone strips everything but digits and prefixes the "+1" country
// code. ok is false when the result is not a full US number.
func NormalizeUSPhone(raw string) (string, bool) {
	var b strings.Builder
	b.WriteString("+1")
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	return phone, len(phone) == USPhoneLength
}

// ValidLangID reports whether lang is exactly two characters, like "en".
func ValidLangID(lang string) bool {
	return utf8.RuneCountInString(lang) == 2
}

package proto

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// NewStruct builds a Struct from string fields.
func NewStruct(fields map[string]string) *structpb.Struct {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
	for k, v := range fields {
		s.Fields[k] = structpb.NewStringValue(v)
	}
	return s
}

// StringField returns the string stored under name, or "" when the field is
// absent or not a string.
func StringField(s *structpb.Struct, name string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// RequireFields returns the named string fields, failing on the first one
// that is missing or empty.
func RequireFields(s *structpb.Struct, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, n := range names {
		v := StringField(s, n)
		if v == "" {
			return nil, fmt.Errorf("field %q is required", n)
		}
		out[n] = v
	}
	return out, nil
}

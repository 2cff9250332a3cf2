// internal/app/policy/decision/changes.go
package decision

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Changes is a requested or authorized change-set keyed by field name.
// Requests describe the desired state of each field they mention; fields
// not mentioned are left alone.
type Changes map[string]any

// Has reports whether field is present.
func (c Changes) Has(field string) bool {
	_, ok := c[field]
	return ok
}

// Bool returns the value of a boolean field.
func (c Changes) Bool(field string) (bool, bool) {
	v, ok := c[field].(bool)
	return v, ok
}

// Strings returns the value of a string-list field.
func (c Changes) Strings(field string) ([]string, bool) {
	v, ok := c[field]
	if !ok {
		return nil, false
	}
	return stringList(v)
}

// Fields returns the field names in sorted order.
func (c Changes) Fields() []string {
	return c.sortedKeys()
}

// Apply merges the change-set into dst, a pointer to a model struct whose
// json tags name the fields. Fields of dst not present in c are untouched.
func (c Changes) Apply(dst any) error {
	if len(c) == 0 {
		return nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("apply changes: %w", err)
	}
	return nil
}

// Merge returns a deep copy of base with c applied. base is not modified.
func Merge[T any](base T, c Changes) (T, error) {
	var out T
	b, err := json.Marshal(base)
	if err != nil {
		return base, fmt.Errorf("copy base: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return base, fmt.Errorf("copy base: %w", err)
	}
	if err := c.Apply(&out); err != nil {
		return base, err
	}
	return out, nil
}

// String returns a string field.
func (c Changes) String(field string) (string, bool) {
	v, ok := c[field].(string)
	return v, ok
}

func (c Changes) sortedKeys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stringList accepts []string or a decoded JSON array of strings.
func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case nil:
		return []string{}, true
	}
	return nil, false
}

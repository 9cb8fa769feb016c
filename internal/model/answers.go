package model

import "sort"

// AnswerSet maps a field to its selected values.
// Answers are cumulative across the session: a field set on an earlier step
// keeps its value when navigation revisits or skips that step.
//
// The zero value is not usable; create one with NewAnswerSet.
type AnswerSet struct {
	values map[Field][]string
}

// NewAnswerSet returns an empty AnswerSet.
func NewAnswerSet() *AnswerSet {
	return &AnswerSet{values: make(map[Field][]string)}
}

// Set replaces the values of a field.
// Empty strings are dropped; setting no non-empty value removes the field.
func (a *AnswerSet) Set(field Field, values ...string) {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(a.values, field)
		return
	}
	a.values[field] = kept
}

// Get returns the first value of a field, or "" when unanswered.
func (a *AnswerSet) Get(field Field) string {
	if v := a.values[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns a copy of every value of a field.
func (a *AnswerSet) Values(field Field) []string {
	v := a.values[field]
	if len(v) == 0 {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Has reports whether the field has at least one value.
func (a *AnswerSet) Has(field Field) bool {
	return len(a.values[field]) > 0
}

// Clear removes a field.
func (a *AnswerSet) Clear(field Field) {
	delete(a.values, field)
}

// Len returns the number of answered fields.
func (a *AnswerSet) Len() int {
	return len(a.values)
}

// Fields returns the answered fields sorted by name.
func (a *AnswerSet) Fields() []Field {
	out := make([]Field, 0, len(a.values))
	for f := range a.values {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy.
func (a *AnswerSet) Clone() *AnswerSet {
	c := NewAnswerSet()
	for f, v := range a.values {
		cp := make([]string, len(v))
		copy(cp, v)
		c.values[f] = cp
	}
	return c
}

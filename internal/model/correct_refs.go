package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CorrectRefs is the correct_options column. Single and multiple questions
// store zero-based indices, select-all-that-apply questions store option ids.
// Exactly one of Indices and IDs is set.
type CorrectRefs struct {
	Indices []int
	IDs     []string
}

// IsZero lets encoding/json drop the key under omitzero.
func (r CorrectRefs) IsZero() bool {
	return len(r.Indices) == 0 && len(r.IDs) == 0
}

func (r CorrectRefs) MarshalJSON() ([]byte, error) {
	if len(r.IDs) > 0 {
		return json.Marshal(r.IDs)
	}
	if r.Indices == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Indices)
}

func (r *CorrectRefs) UnmarshalJSON(b []byte) error {
	*r = CorrectRefs{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("correct_options: %w", err)
	}
	for _, el := range raw {
		el = bytes.TrimSpace(el)
		if len(el) > 0 && el[0] == '"' {
			var id string
			if err := json.Unmarshal(el, &id); err != nil {
				return fmt.Errorf("correct_options: %w", err)
			}
			r.IDs = append(r.IDs, id)
			continue
		}
		var idx int
		if err := json.Unmarshal(el, &idx); err != nil {
			return fmt.Errorf("correct_options: %w", err)
		}
		r.Indices = append(r.Indices, idx)
	}
	if len(r.IDs) > 0 && len(r.Indices) > 0 {
		return errors.New("correct_options: cannot mix indices and ids")
	}
	return nil
}

// indices resolves the refs to option indices. Ids are looked up against the
// option ids; an id that does not resolve becomes -1 so validation rejects it.
func (r CorrectRefs) indices(opts []ChoiceOption) []int {
	if len(r.IDs) == 0 {
		return r.Indices
	}
	out := make([]int, len(r.IDs))
	for i, id := range r.IDs {
		out[i] = -1
		for j, o := range opts {
			if o.ID != "" && o.ID == id {
				out[i] = j
				break
			}
		}
	}
	return out
}

// ids resolves the refs to option ids. An index outside opts keeps a
// placeholder id that validation reports as not found.
func (r CorrectRefs) ids(opts []ChoiceOption) []string {
	if len(r.Indices) == 0 {
		return r.IDs
	}
	out := make([]string, len(r.Indices))
	for i, idx := range r.Indices {
		if idx >= 0 && idx < len(opts) {
			out[i] = opts[idx].ID
		} else {
			out[i] = fmt.Sprintf("#%d", idx)
		}
	}
	return out
}

package model

import (
	"encoding/json"
	"strings"
)

// Reasons is an append-only collection of unique messages that keeps
// insertion order so reports are stable across runs.
type Reasons struct {
	items []string
	seen  map[string]struct{}
}

// Add appends msg unless it is already present. It returns true when msg
// was added.
func (r *Reasons) Add(msg string) bool {
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, ok := r.seen[msg]; ok {
		return false
	}
	r.seen[msg] = struct{}{}
	r.items = append(r.items, msg)
	return true
}

// List returns a copy of the reasons in insertion order.
func (r *Reasons) List() []string {
	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Reasons) Len() int { return len(r.items) }

func (r *Reasons) Join(sep string) string { return strings.Join(r.items, sep) }

func (r Reasons) MarshalJSON() ([]byte, error) {
	if r.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.items)
}

func (r *Reasons) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*r = Reasons{}
	for _, it := range items {
		r.Add(it)
	}
	return nil
}

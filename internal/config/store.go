package config

import (
	"sort"
	"strings"
)

// Mask is shown in place of sensitive stored values.
const Mask = "********"

// Sensitive reports whether a stored key holds a credential: any key
// containing "key" or "secret", case-insensitively.
func Sensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "key") || strings.Contains(k, "secret")
}

// Entry is one stored key-value pair prepared for display.
type Entry struct {
	Key   string
	Value string
}

// Masked returns the stored pairs sorted by key with sensitive values hidden.
func Masked(values map[string]string) []Entry {
	out := make([]Entry, 0, len(values))
	for k, v := range values {
		if Sensitive(k) {
			v = Mask
		}
		out = append(out, Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

package report

import (
	"strings"
	"unicode"

	"tally/internal/cache"
	"tally/internal/core"
)

const (
	// MerchantKeyLength is the rune prefix kept of a normalized description.
	MerchantKeyLength = 24
	// UnknownMerchant is the key of descriptions that normalize to nothing.
	UnknownMerchant = "(unknown)"

	merchantCacheSize = 4096
)

// MerchantKey collapses a transaction description into a payee key: case
// folded, digits removed, whitespace collapsed, cut to MerchantKeyLength
// runes, trailing separators trimmed.
func MerchantKey(description string) string {
	var b strings.Builder
	for _, r := range core.Fold(description) {
		if unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
	}
	key := strings.Join(strings.Fields(b.String()), " ")
	key = strings.TrimRight(core.Clip(key, MerchantKeyLength), " #*-/.,")
	if key == "" {
		return UnknownMerchant
	}
	return key
}

// MerchantNormalizer memoizes MerchantKey for the lifetime of one report.
type MerchantNormalizer struct {
	keys *cache.LRU[string, string]
}

func NewMerchantNormalizer() *MerchantNormalizer {
	return &MerchantNormalizer{keys: cache.NewLRU[string, string](merchantCacheSize)}
}

func (n *MerchantNormalizer) Key(description string) string {
	return n.keys.GetOrCompute(description, MerchantKey)
}

// Stats reports memo hits and misses; misses equal distinct descriptions.
func (n *MerchantNormalizer) Stats() (hits, misses int) {
	return n.keys.Stats()
}

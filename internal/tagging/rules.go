// Package tagging assigns tags to records by keyword rules.
//
// Rules file format:
//
//	rules:
//	  - tag: Groceries
//	    keywords: [whole foods, trader joe]
package tagging

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tally/internal/core"
)

type Rule struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

type file struct {
	Rules []Rule `yaml:"rules"`
}

// Rules is an ordered, immutable rule set. The zero value matches nothing.
type Rules struct {
	rules []Rule
}

func New(rules []Rule) (*Rules, error) {
	out := &Rules{}
	for i, r := range rules {
		tag := strings.TrimSpace(r.Tag)
		if tag == "" {
			return nil, fmt.Errorf("rule %d: empty tag", i+1)
		}
		var kws []string
		for _, kw := range r.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, core.Fold(kw))
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("rule %q: no keywords", tag)
		}
		out.rules = append(out.rules, Rule{Tag: tag, Keywords: kws})
	}
	return out, nil
}

func Parse(data []byte) (*Rules, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode tag rules: %w", err)
	}
	return New(f.Rules)
}

// Load reads rules from path. An empty path yields an empty rule set.
func Load(path string) (*Rules, error) {
	if path == "" {
		return &Rules{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag rules: %w", err)
	}
	return Parse(data)
}

// Match returns the tags whose keywords occur in description, in rule order.
func (r *Rules) Match(description string) []string {
	if r == nil || len(r.rules) == 0 {
		return nil
	}
	folded := core.Fold(description)
	var tags []string
	seen := map[string]bool{}
	for _, rule := range r.rules {
		if seen[rule.Tag] {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(folded, kw) {
				tags = append(tags, rule.Tag)
				seen[rule.Tag] = true
				break
			}
		}
	}
	return tags
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

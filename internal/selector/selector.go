// Package selector routes a question to the collection whose keywords it mentions.
package selector

import (
	"strings"

	"github.com/hyperjump/surveyrag/internal/config"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/outcome"
)

// NoMatchMessage is returned when no routing rule matches.
const NoMatchMessage = "Unable to determine the relevant index for the provided question."

// Rule maps a set of lowercase keywords to a collection tag.
type Rule struct {
	Tag      models.IndexTag
	Keywords []string
}

// Selector evaluates rules in order; the first rule with a matching keyword wins.
type Selector struct {
	rules []Rule
}

// New returns a Selector over rules. Keywords are lowercased; empty keywords are dropped
// since they would match every question.
func New(rules []Rule) *Selector {
	s := &Selector{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		s.rules = append(s.rules, Rule{Tag: r.Tag, Keywords: kw})
	}
	return s
}

// FromConfig builds a Selector from the configured routing table.
func FromConfig(cols []config.CollectionConfig) *Selector {
	rules := make([]Rule, len(cols))
	for i, c := range cols {
		rules[i] = Rule{Tag: c.Tag, Keywords: c.Keywords}
	}
	return New(rules)
}

// Select returns the tag of the first rule that has a keyword contained in the
// lowercased question. Matching is by substring, so "greenhouse" matches "green".
func (s *Selector) Select(question models.Question) (models.IndexTag, error) {
	q := strings.ToLower(string(question))
	for _, r := range s.rules {
		for _, k := range r.Keywords {
			if strings.Contains(q, k) {
				return r.Tag, nil
			}
		}
	}
	return "", outcome.New(outcome.KindNoMatchingIndex, NoMatchMessage)
}

// Rules returns a copy of the routing table in evaluation order.
func (s *Selector) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

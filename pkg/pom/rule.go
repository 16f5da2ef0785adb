package pom

import (
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/pommapper/pkg/errors"
)

// Rule is a compiled path rule.
type Rule struct {
	raw        string
	steps      []step
	descendant bool // leading "//"
	textOnly   bool // trailing "/text()"
}

type step struct {
	name  string // local element name or "*"
	index int    // 1-based position; 0 selects all matches
}

// String returns the rule as written.
func (r *Rule) String() string { return r.raw }

// Rules is a compiled field name -> rule mapping.
type Rules map[string]*Rule

// Names returns the field names in sorted order.
func (rs Rules) Names() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseRule compiles a single path rule.
func ParseRule(raw string) (*Rule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New(errors.ErrCodeInvalidRule, "rule cannot be empty")
	}
	r := &Rule{raw: raw}

	if rest, ok := strings.CutSuffix(s, "/text()"); ok {
		r.textOnly = true
		s = rest
	}
	if rest, ok := strings.CutPrefix(s, "//"); ok {
		r.descendant = true
		s = rest
	} else {
		s = strings.TrimPrefix(s, "/")
	}
	if s == "" {
		return nil, errors.New(errors.ErrCodeInvalidRule, "rule %q selects no element", raw)
	}

	for _, part := range strings.Split(s, "/") {
		st, err := parseStep(part)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRule, err, "rule %q", raw)
		}
		r.steps = append(r.steps, st)
	}
	return r, nil
}

func parseStep(part string) (step, error) {
	if part == "" {
		return step{}, errors.New(errors.ErrCodeInvalidRule, "empty path step")
	}
	name, pred, hasPred := strings.Cut(part, "[")
	if name == "" || strings.ContainsAny(name, "]()@=") {
		return step{}, errors.New(errors.ErrCodeInvalidRule, "unsupported path step %q", part)
	}
	st := step{name: name}
	if !hasPred {
		return st, nil
	}
	pred, ok := strings.CutSuffix(pred, "]")
	if !ok {
		return step{}, errors.New(errors.ErrCodeInvalidRule, "unterminated predicate in %q", part)
	}
	n, err := strconv.Atoi(pred)
	if err != nil || n < 1 {
		return step{}, errors.New(errors.ErrCodeInvalidRule, "predicate in %q must be a positive position", part)
	}
	st.index = n
	return st, nil
}

// Compile validates and compiles every rule. A nil or empty map compiles to
// an empty Rules.
func Compile(rules map[string]string) (Rules, error) {
	out := make(Rules, len(rules))
	for name, raw := range rules {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New(errors.ErrCodeInvalidRule, "field name cannot be empty")
		}
		r, err := ParseRule(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRule, err, "field %q", name)
		}
		out[name] = r
	}
	return out, nil
}

// eval returns the first element matching r in document order.
func (r *Rule) eval(doc *element) (*element, bool) {
	var set []*element
	first := r.steps[0]
	if r.descendant {
		doc.walk(func(e *element) {
			if e != doc && first.matches(e) {
				set = append(set, e)
			}
		})
		set = first.pick(set)
	} else {
		set = first.pick(doc.childrenNamed(first.name))
	}

	for _, st := range r.steps[1:] {
		var next []*element
		for _, e := range set {
			next = append(next, st.pick(e.childrenNamed(st.name))...)
		}
		set = next
		if len(set) == 0 {
			break
		}
	}
	if len(set) == 0 {
		return nil, false
	}
	return set[0], true
}

func (s step) matches(e *element) bool {
	return s.name == "*" || s.name == e.name
}

// pick applies the positional predicate to one parent's matches.
func (s step) pick(matches []*element) []*element {
	if s.index == 0 {
		return matches
	}
	if s.index > len(matches) {
		return nil
	}
	return matches[s.index-1 : s.index]
}

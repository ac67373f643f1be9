package router

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// regexLiteral splits "/pattern/flags" into its parts
var regexLiteral = regexp2.MustCompile(`^/(.*?)/([gimy]*)$`, regexp2.ECMAScript)

// compiledPattern is a regex compiled from a rule's value2
type compiledPattern struct {
	re     *regexp2.Regexp
	sticky bool
}

// match reports whether s matches. A sticky pattern only matches at the
// start of s.
func (p *compiledPattern) match(s string) (bool, error) {
	m, err := p.re.FindStringMatch(s)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPattern, err)
	}
	if m == nil {
		return false, nil
	}
	if p.sticky {
		return m.Index == 0, nil
	}
	return true, nil
}

// splitPattern returns the pattern and flags of a rule value. Values of the
// form "/pattern/flags" are unwrapped, anything else is the pattern verbatim.
func splitPattern(value string) (string, string) {
	m, err := regexLiteral.FindStringMatch(value)
	if err != nil || m == nil {
		return value, ""
	}
	groups := m.Groups()
	return groups[1].String(), groups[2].String()
}

// compilePattern compiles value with ECMAScript semantics
func compilePattern(value string) (*compiledPattern, error) {
	source, flags := splitPattern(value)

	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	p := &compiledPattern{}
	seen := make(map[rune]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			return nil, fmt.Errorf("%w: duplicate flag %q in %q", ErrPattern, f, value)
		}
		seen[f] = true

		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 'y':
			p.sticky = true
		case 'g':
			// global has no effect on a single match
		}
	}

	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrPattern, value, err)
	}
	p.re = re
	return p, nil
}

// pattern gets a compiled pattern from cache or compiles it. Values may be
// resolved per item, so the cache only keeps the most recent patterns.
func (r *Router) pattern(value string) (*compiledPattern, error) {
	if p, ok := r.patterns.Get(value); ok {
		return p, nil
	}

	p, err := compilePattern(value)
	if err != nil {
		return nil, err
	}
	r.patterns.Add(value, p)
	return p, nil
}

// describeFlags is used in debug logs
func describeFlags(value string) string {
	_, flags := splitPattern(value)
	if flags == "" {
		return "none"
	}
	return strings.Join(strings.Split(flags, ""), ",")
}

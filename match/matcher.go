// Package match decides whether an intercepted command satisfies a fixture
// pattern. Patterns are always treated as regular expressions anchored at
// the start of the command; a plain literal is a regex with no
// metacharacters, so a single code path covers both.
package match

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Options control pattern matching.
type Options struct {
	// NormalizeWhitespace collapses runs of spaces and tabs to a single
	// space and trims both ends, on the pattern and the actual command
	// alike. Fixtures rendered from templates often carry doubled spaces
	// that are artifacts, not intent.
	NormalizeWhitespace bool
}

func DefaultOptions() Options {
	return Options{NormalizeWhitespace: true}
}

var whitespaceRegex = regexp.MustCompile(`[ \t]+`)

// Normalize collapses runs of spaces and tabs into one space and trims ends.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// Matcher matches commands against patterns, caching compiled regexes. The
// cache tolerates concurrent readers so an immutable document can be shared
// across parallel tests.
type Matcher struct {
	opts  Options
	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

func NewMatcher(opts Options) *Matcher {
	return &Matcher{opts: opts, cache: make(map[string]*regexp.Regexp)}
}

// Matches reports whether actual satisfies pattern. The pattern is anchored
// at the start only; fixture authors extend matching to the full command
// with explicit `$` anchors or wildcards.
func (m *Matcher) Matches(pattern, actual string) (bool, error) {
	re, err := m.compile(pattern)
	if err != nil {
		return false, err
	}
	if m.opts.NormalizeWhitespace {
		actual = Normalize(actual)
	}
	return re.MatchString(actual), nil
}

// Compile eagerly compiles a pattern, for load-time validation.
func (m *Matcher) Compile(pattern string) error {
	_, err := m.compile(pattern)
	return err
}

func (m *Matcher) compile(pattern string) (*regexp.Regexp, error) {
	m.mu.RLock()
	re, ok := m.cache[pattern]
	m.mu.RUnlock()
	if ok {
		return re, nil
	}

	expr := pattern
	if m.opts.NormalizeWhitespace {
		expr = Normalize(expr)
	}
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	m.mu.Lock()
	m.cache[pattern] = re
	m.mu.Unlock()
	return re, nil
}

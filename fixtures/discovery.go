package fixtures

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

// DefaultPatterns returns the fixture search patterns: the comma-separated
// UNDERSTUDY_FIXTURES environment variable when set, otherwise the fixtures/
// directory next to the test.
func DefaultPatterns() []string {
	if env := os.Getenv("UNDERSTUDY_FIXTURES"); env != "" {
		patterns := strings.Split(env, ",")
		for i := range patterns {
			patterns[i] = strings.TrimSpace(patterns[i])
		}
		return patterns
	}
	return []string{"fixtures/**/*.yaml", "fixtures/**/*.yml", "fixtures/**/*.md"}
}

// Discover expands doublestar glob patterns into a sorted, de-duplicated
// list of fixture files. Directories are skipped.
func Discover(patterns ...string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, match)
		}
	}
	files = lo.Uniq(files)
	sort.Strings(files)
	return files, nil
}

// LoadAll loads every document matched by the given patterns.
func LoadAll(patterns []string, opts ...Option) ([]*Document, error) {
	files, err := Discover(patterns...)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(files))
	for _, file := range files {
		doc, err := Load(file, opts...)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

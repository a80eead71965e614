// pattern: Functional Core

package discovery

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner discovers sample directories beneath a repository root. A sample
// directory is one that directly contains at least one file whose name ends
// with the configured test suffix.
type Scanner struct {
	testSuffix string
	blacklist  map[string]bool
}

// NewScanner creates a scanner for the given test-file suffix and blacklist.
// Blacklist entries are cleaned so "./bigtable" and "bigtable" refer to the
// same directory.
func NewScanner(testSuffix string, blacklist map[string]bool) *Scanner {
	cleaned := make(map[string]bool, len(blacklist))
	for p, ok := range blacklist {
		if ok {
			cleaned[filepath.Clean(p)] = true
		}
	}
	return &Scanner{testSuffix: testSuffix, blacklist: cleaned}
}

// Samples returns a lazy sequence of sample directory paths under root.
//
// Traversal is top-down. A directory containing a test file is yielded and
// not descended into, so no yielded path is an ancestor of another; the test
// runner finds nested tests on its own. Directories whose name does not
// start with a letter (hidden, scratch, numbered) and blacklisted
// directories are never descended into, regardless of their contents.
//
// Callers may stop consuming early; the walk stops with them. A missing or
// unreadable root yields nothing.
func (s *Scanner) Samples(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		s.walk(filepath.Clean(root), yield)
	}
}

// walk reports false once the consumer has stopped.
func (s *Scanner) walk(dir string, yield func(string) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable directories are skipped, identically on every platform
		return true
	}

	var subdirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		if strings.HasSuffix(entry.Name(), s.testSuffix) {
			// This dir has tests in it: yield it and prune
			return yield(dir)
		}
	}

	for _, name := range subdirs {
		if !startsWithLetter(name) {
			continue
		}
		sub := filepath.Join(dir, name)
		if s.blacklist[sub] {
			continue
		}
		if !s.walk(sub, yield) {
			return false
		}
	}
	return true
}

// startsWithLetter reports whether the directory name begins with a letter.
// Filters out dot directories and underscore- or digit-prefixed scratch dirs.
func startsWithLetter(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLetter(r)
}

// ListFiles returns a lazy sequence of files anywhere under root whose base
// name matches the glob pattern. Unlike Samples it recurses the full tree
// with no pruning. Used to find dependency manifests per sample directory.
func ListFiles(root, pattern string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if d.IsDir() {
				return nil
			}
			matched, err := filepath.Match(pattern, d.Name())
			if err != nil || !matched {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

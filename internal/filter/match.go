package filter

import (
	"strings"

	"vidhub/pkg/types"

	"github.com/gobwas/glob"
)

// Matcher tests a single term against a string
type Matcher interface {
	Match(s string) bool
}

type substring string

func (m substring) Match(s string) bool {
	return strings.Contains(strings.ToLower(s), string(m))
}

// Compile turns a term into a case-insensitive matcher. Terms containing glob
// meta characters are compiled with gobwas/glob and must match the whole
// string; anything else is a substring match. A pattern that fails to compile
// falls back to a literal substring.
func Compile(term string) Matcher {
	lower := strings.ToLower(term)
	if strings.ContainsAny(lower, "*?[{") {
		g, err := glob.Compile(lower)
		if err == nil {
			return globMatcher{g}
		}
	}
	return substring(lower)
}

type globMatcher struct {
	g glob.Glob
}

func (m globMatcher) Match(s string) bool {
	return m.g.Match(strings.ToLower(s))
}

// Query is a compiled snapshot of a Store, ready to run against results
type Query struct {
	folderAll []Matcher
	folderAny []Matcher
	fileAll   []Matcher
	fileAny   []Matcher
	exclude   []Matcher
}

// Compile snapshots the store's terms into a Query
func (s *Store) Compile() *Query {
	return &Query{
		folderAll: compileAll(s.channels[Folder].Terms),
		folderAny: compileAll(s.channels[FolderUnion].Terms),
		fileAll:   compileAll(s.channels[File].Terms),
		fileAny:   compileAll(s.channels[FileUnion].Terms),
		exclude:   compileAll(s.channels[Exclude].Terms),
	}
}

func compileAll(terms []string) []Matcher {
	out := make([]Matcher, 0, len(terms))
	for _, t := range terms {
		out = append(out, Compile(t))
	}
	return out
}

// Keep reports whether an entry passes every channel. Folder channels test
// the folder segment, file channels test the display name.
func (q *Query) Keep(e types.ResultEntry) bool {
	folder, name := e.Folder(), e.Display()
	return all(q.folderAll, folder) &&
		anyOrEmpty(q.folderAny, folder) &&
		all(q.fileAll, name) &&
		anyOrEmpty(q.fileAny, name) &&
		!anyMatch(q.exclude, name)
}

// Apply returns the indices of entries that pass the query, in order
func (q *Query) Apply(entries []types.ResultEntry) []int {
	out := make([]int, 0, len(entries))
	for i, e := range entries {
		if q.Keep(e) {
			out = append(out, i)
		}
	}
	return out
}

func all(ms []Matcher, s string) bool {
	for _, m := range ms {
		if !m.Match(s) {
			return false
		}
	}
	return true
}

func anyMatch(ms []Matcher, s string) bool {
	for _, m := range ms {
		if m.Match(s) {
			return true
		}
	}
	return false
}

func anyOrEmpty(ms []Matcher, s string) bool {
	return len(ms) == 0 || anyMatch(ms, s)
}

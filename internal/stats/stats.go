// Package stats aggregates the visible gallery results into the values the
// UI shows beside them: word frequencies of file names and result counts.
package stats

import (
	"sort"
	"strings"
	"unicode"

	"vidhub/internal/stream"
	"vidhub/pkg/types"
)

// WordCount is one word and how many visible files carry it
type WordCount struct {
	Word  string
	Count int
}

// Results is the "showing N of M" pair
type Results struct {
	Showing int
	Total   int
}

// minWordLen drops noise like "a" or "01" from the frequency list
const minWordLen = 3

// WordFrequency publishes the most common words in visible display names
type WordFrequency struct {
	limit  int
	stream *stream.Value[[]WordCount]
}

// NewWordFrequency keeps at most limit words; limit <= 0 keeps all
func NewWordFrequency(limit int) *WordFrequency {
	return &WordFrequency{limit: limit, stream: stream.NewValue[[]WordCount](nil)}
}

// Stream is the subscribable word list
func (w *WordFrequency) Stream() *stream.Value[[]WordCount] {
	return w.stream
}

// Update recomputes the list from the visible entries
func (w *WordFrequency) Update(entries []types.ResultEntry, visible []int) {
	counts := make(map[string]int)
	for _, i := range visible {
		seen := make(map[string]bool)
		for _, word := range Words(entries[i].Display()) {
			if !seen[word] {
				seen[word] = true
				counts[word]++
			}
		}
	}

	list := make([]WordCount, 0, len(counts))
	for word, n := range counts {
		list = append(list, WordCount{Word: word, Count: n})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Word < list[j].Word
	})
	if w.limit > 0 && len(list) > w.limit {
		list = list[:w.limit]
	}
	w.stream.Set(list)
}

// Words splits a display name into lower-case words of letters and digits
func Words(name string) []string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minWordLen {
			out = append(out, f)
		}
	}
	return out
}

// ShowLimit publishes how many results are visible out of the total
type ShowLimit struct {
	stream *stream.Value[Results]
}

// NewShowLimit creates the counter with zero results
func NewShowLimit() *ShowLimit {
	return &ShowLimit{stream: stream.NewValue(Results{})}
}

// Stream is the subscribable counter
func (s *ShowLimit) Stream() *stream.Value[Results] {
	return s.stream
}

// Update publishes new counts
func (s *ShowLimit) Update(showing, total int) {
	s.stream.Set(Results{Showing: showing, Total: total})
}

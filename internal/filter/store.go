// Package filter holds the gallery's search terms. Terms live in a fixed,
// ordered set of channels; every mutation flips the channel's Dirty toggle
// exactly once so downstream views know to recompute.
package filter

import (
	"strings"

	"vidhub/internal/errors"
)

// ChannelID identifies one filter channel. Values double as positions in
// Store.Channels().
type ChannelID int

const (
	FolderUnion ChannelID = iota
	Folder
	FileUnion
	File
	Exclude
)

var channelNames = [...]string{"folderUnion", "folder", "fileUnion", "file", "exclude"}

// ChannelIDs lists every channel in store order
var ChannelIDs = []ChannelID{FolderUnion, Folder, FileUnion, File, Exclude}

func (id ChannelID) String() string {
	if id.valid() {
		return channelNames[id]
	}
	return "unknown"
}

// ParseChannel maps a channel name back to its ID
func ParseChannel(name string) (ChannelID, bool) {
	for i, n := range channelNames {
		if n == name {
			return ChannelID(i), true
		}
	}
	return 0, false
}

func (id ChannelID) valid() bool {
	return id >= 0 && int(id) < len(channelNames)
}

// Channel is one bucket of active search terms.
type Channel struct {
	// Terms in insertion order; duplicates allowed
	Terms []string
	// Dirty flips on every mutation of Terms; its value carries no meaning
	Dirty bool
	// Input is the transient edit buffer
	Input string
}

// Store is the ordered collection of filter channels. It is not safe for
// concurrent use; the gallery controller owns it.
type Store struct {
	channels []Channel
	flips    uint64
}

// NewStore creates a store with every channel empty
func NewStore() *Store {
	return &Store{channels: make([]Channel, len(channelNames))}
}

// AddTerm trims raw and appends it to the channel. Blank input is a no-op.
func (s *Store) AddTerm(id ChannelID, raw string) bool {
	ch, ok := s.channel(id)
	if !ok {
		return false
	}
	term := strings.TrimSpace(raw)
	if term == "" {
		return false
	}
	ch.Terms = append(ch.Terms, term)
	ch.Input = ""
	s.flip(ch)
	return true
}

// RemoveLast pops the newest term, but only when current (the edit buffer
// value reported with the key press) is empty and there is a term to pop.
//
// Callers that report the buffer after the key was applied will also pop when
// the user deletes the last remaining character; pass the value from before
// the key press to avoid that.
func (s *Store) RemoveLast(id ChannelID, current string) bool {
	ch, ok := s.channel(id)
	if !ok || current != "" || len(ch.Terms) == 0 {
		return false
	}
	ch.Terms = ch.Terms[:len(ch.Terms)-1]
	s.flip(ch)
	return true
}

// RemoveAt deletes the term at index. Out of range indices are a no-op.
func (s *Store) RemoveAt(id ChannelID, index int) bool {
	return s.TryRemoveAt(id, index) == nil
}

// TryRemoveAt is RemoveAt reporting why nothing changed
func (s *Store) TryRemoveAt(id ChannelID, index int) error {
	ch, ok := s.channel(id)
	if !ok {
		return errors.NewKind("unknown filter channel", errors.InvalidIndex, nil)
	}
	if index < 0 || index >= len(ch.Terms) {
		return errors.ErrInvalidIndex
	}
	ch.Terms = append(ch.Terms[:index], ch.Terms[index+1:]...)
	s.flip(ch)
	return nil
}

// SetInput replaces the edit buffer. It is not a term mutation and does not
// flip the toggle.
func (s *Store) SetInput(id ChannelID, value string) {
	if ch, ok := s.channel(id); ok {
		ch.Input = value
	}
}

// Channel returns a copy of one channel
func (s *Store) Channel(id ChannelID) Channel {
	ch, ok := s.channel(id)
	if !ok {
		return Channel{}
	}
	return ch.clone()
}

// Channels returns copies of every channel in store order
func (s *Store) Channels() []Channel {
	out := make([]Channel, len(s.channels))
	for i := range s.channels {
		out[i] = s.channels[i].clone()
	}
	return out
}

// Version counts every toggle flip since the store was created. It changes
// exactly when some channel's Dirty flag flips.
func (s *Store) Version() uint64 {
	return s.flips
}

// Empty reports whether no channel holds a term
func (s *Store) Empty() bool {
	for _, ch := range s.channels {
		if len(ch.Terms) > 0 {
			return false
		}
	}
	return true
}

func (s *Store) channel(id ChannelID) (*Channel, bool) {
	if !id.valid() {
		return nil, false
	}
	return &s.channels[id], true
}

func (s *Store) flip(ch *Channel) {
	ch.Dirty = !ch.Dirty
	s.flips++
}

func (c *Channel) clone() Channel {
	out := *c
	out.Terms = append([]string(nil), c.Terms...)
	return out
}

package store

import (
	"sync"

	"github.com/existflow/snipvault/internal/model"
)

// Snippets owns the user's snippet collection, the public feed and the
// selected snippet. No operation fails; unknown ids are ignored.
type Snippets struct {
	mu       sync.RWMutex
	items    []model.Snippet
	public   []model.Snippet
	selected *model.Snippet

	listeners listeners[struct{}]
}

// NewSnippets creates an empty snippet store
func NewSnippets() *Snippets {
	return &Snippets{}
}

func cloneAll(in []model.Snippet) []model.Snippet {
	out := make([]model.Snippet, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func (s *Snippets) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.listeners.notify(struct{}{})
}

// ReplaceAll discards the collection and stores snippets in the given order
func (s *Snippets) ReplaceAll(snippets []model.Snippet) {
	s.mutate(func() {
		s.items = cloneAll(snippets)
	})
}

// Add appends snippet. Ids are not checked for duplicates.
func (s *Snippets) Add(snippet model.Snippet) {
	s.mutate(func() {
		s.items = append(s.items, snippet.Clone())
	})
}

// UpdateByID replaces the entry with the given id in place. The selection
// follows the update when it points at the same id.
func (s *Snippets) UpdateByID(id int64, snippet model.Snippet) {
	s.mutate(func() {
		for i := range s.items {
			if s.items[i].ID == id {
				s.items[i] = snippet.Clone()
			}
		}
		if s.selected != nil && s.selected.ID == id {
			c := snippet.Clone()
			s.selected = &c
		}
	})
}

// DeleteByID removes the entry with the given id, keeping the order of the
// rest. A selection pointing at that id is cleared.
func (s *Snippets) DeleteByID(id int64) {
	s.mutate(func() {
		kept := s.items[:0:0]
		for _, item := range s.items {
			if item.ID != id {
				kept = append(kept, item)
			}
		}
		s.items = kept
		if s.selected != nil && s.selected.ID == id {
			s.selected = nil
		}
	})
}

// SetSelected records the focused snippet; nil clears it
func (s *Snippets) SetSelected(snippet *model.Snippet) {
	s.mutate(func() {
		if snippet == nil {
			s.selected = nil
			return
		}
		c := snippet.Clone()
		s.selected = &c
	})
}

// ReplacePublic stores the public feed
func (s *Snippets) ReplacePublic(snippets []model.Snippet) {
	s.mutate(func() {
		s.public = cloneAll(snippets)
	})
}

// Reset empties every collection and the selection
func (s *Snippets) Reset() {
	s.mutate(func() {
		s.items = nil
		s.public = nil
		s.selected = nil
	})
}

// Snippets returns a copy of the collection
func (s *Snippets) Snippets() []model.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

// Public returns a copy of the public feed
func (s *Snippets) Public() []model.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.public)
}

// Len returns the collection size
func (s *Snippets) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Find returns the first entry with the given id
func (s *Snippets) Find(id int64) (model.Snippet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return model.Snippet{}, false
}

// Selected returns the focused snippet, or nil
func (s *Snippets) Selected() *model.Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	c := s.selected.Clone()
	return &c
}

// Subscribe registers fn to run after every mutation. The returned function
// removes the subscription.
func (s *Snippets) Subscribe(fn func()) (unsubscribe func()) {
	return s.listeners.add(func(struct{}) { fn() })
}

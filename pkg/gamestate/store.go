package gamestate

import (
	"sync"
)

// Store holds exactly one TableView. Writes go through apply, which runs the
// mutation under the write lock so a reader can never observe a view with
// only some fields of a reconcile applied. Only the Reconciler (same
// package) writes; everything else reads copies through View.
type Store struct {
	mu   sync.RWMutex
	view TableView
}

// NewStore creates a store for the given viewer and table with an empty,
// normalized initial view.
func NewStore(viewerID string, tableID int64) *Store {
	return &Store{
		view: TableView{
			TableID:        tableID,
			ViewerID:       viewerID,
			MySeat:         NoSeat,
			NextToActSeat:  NoSeat,
			ButtonSeat:     NoSeat,
			SmallBlindSeat: NoSeat,
			BigBlindSeat:   NoSeat,
			SmallBlind:     DefaultSmallBlind,
			BigBlind:       DefaultBigBlind,
			RecentAction:   "-",
			Verified:       true,
		},
	}
}

// View returns a deep copy of the current view.
func (s *Store) View() TableView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.clone()
}

// ViewerID returns the id the store reconciles against.
func (s *Store) ViewerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.ViewerID
}

// apply runs one atomic mutation of the view.
func (s *Store) apply(fn func(*TableView)) {
	s.mu.Lock()
	fn(&s.view)
	s.mu.Unlock()
}

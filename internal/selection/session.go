// Package selection holds the multi-select state of an add or remove flow.
//
// A Session is scoped to one flow invocation: Start returns it, the caller
// toggles ids while paging through candidates, and Confirm or Cancel ends it.
// Selection state lives only in the Session, so paging never affects it.
package selection

import (
	"errors"
	"fmt"
	"slices"

	"github.com/frederic-klein/mrm/internal/modlist"
)

var (
	// ErrNotSelectable is returned when toggling a candidate the flow disables.
	ErrNotSelectable = errors.New("mod cannot be selected in this flow")
	// ErrEmptySelection is returned by Confirm when nothing is selected.
	ErrEmptySelection = errors.New("nothing selected")
	// ErrSessionClosed is returned for any operation after Confirm or Cancel.
	ErrSessionClosed = errors.New("selection session is closed")
)

// Flow identifies what a confirmed selection does to the target list.
type Flow int

const (
	FlowAdd Flow = iota
	FlowRemove
)

func (f Flow) String() string {
	switch f {
	case FlowAdd:
		return "add"
	case FlowRemove:
		return "remove"
	default:
		return fmt.Sprintf("Flow(%d)", int(f))
	}
}

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// ListStore is the part of the list store a Session needs.
type ListStore interface {
	Get(id string) (modlist.ModList, error)
	AddMods(id string, refs []string) ([]string, error)
	RemoveMods(id string, refs []string) ([]string, error)
}

// Session is an in-memory multi-select set targeting one list.
type Session struct {
	store    ListStore
	flow     Flow
	listID   string
	members  map[string]bool   // snapshot of the list at Start
	aliases  map[string]string // catalog id -> member stored under the slug
	order    []string          // target list members, in list order
	selected []string
	index    map[string]bool
	state    State
}

// Start begins a flow against the list with the given id.
func Start(store ListStore, flow Flow, listID string) (*Session, error) {
	if flow != FlowAdd && flow != FlowRemove {
		return nil, fmt.Errorf("unknown flow %v", flow)
	}
	list, err := store.Get(listID)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(list.Mods))
	for _, m := range list.Mods {
		members[m] = true
	}
	return &Session{
		store:   store,
		flow:    flow,
		listID:  list.ID,
		members: members,
		aliases: make(map[string]string),
		order:   list.Mods,
		index:   make(map[string]bool),
		state:   StateActive,
	}, nil
}

// Flow returns the flow the session belongs to.
func (s *Session) Flow() Flow { return s.flow }

// ListID returns the id of the target list.
func (s *Session) ListID() string { return s.listID }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Selectable reports whether modID may be toggled on. In an add flow,
// members of the target list are not selectable; in a remove flow, only
// members are. A member stored under its slug blocks the project's id once
// the session has seen the catalog record linking the two.
func (s *Session) Selectable(modID string) bool {
	if s.flow == FlowAdd {
		return !s.members[modID] && s.aliases[modID] == ""
	}
	return s.members[modID]
}

// Recognize records catalog records so that members stored by slug are
// matched against their project ids.
func (s *Session) Recognize(mods ...modlist.RemoteMod) {
	for _, m := range mods {
		if m.Slug == "" || m.Slug == m.ID || s.members[m.ID] {
			continue
		}
		if s.members[m.Slug] {
			s.aliases[m.ID] = m.Slug
		}
	}
}

// IsSelected reports whether modID is in the current selection.
func (s *Session) IsSelected(modID string) bool {
	return s.index[modID]
}

// Selected returns the selection in the order ids were toggled on.
func (s *Session) Selected() []string {
	return slices.Clone(s.selected)
}

// Len returns the number of selected ids.
func (s *Session) Len() int {
	return len(s.selected)
}

// Toggle adds modID to the selection, or removes it if already selected.
func (s *Session) Toggle(modID string) error {
	if s.state != StateActive {
		return ErrSessionClosed
	}
	if s.index[modID] {
		delete(s.index, modID)
		s.selected = slices.DeleteFunc(s.selected, func(id string) bool { return id == modID })
		return nil
	}
	if modID == "" || !s.Selectable(modID) {
		return fmt.Errorf("%s %q: %w", s.flow, modID, ErrNotSelectable)
	}
	s.index[modID] = true
	s.selected = append(s.selected, modID)
	return nil
}

// Confirm applies the selection to the target list and closes the session.
// It returns the ids the store actually added or removed. An empty
// selection is rejected and leaves the session active.
func (s *Session) Confirm() ([]string, error) {
	if s.state != StateActive {
		return nil, ErrSessionClosed
	}
	if len(s.selected) == 0 {
		return nil, ErrEmptySelection
	}

	var applied []string
	var err error
	switch s.flow {
	case FlowAdd:
		applied, err = s.store.AddMods(s.listID, s.selected)
	case FlowRemove:
		applied, err = s.store.RemoveMods(s.listID, s.selected)
	}
	if err != nil {
		return nil, fmt.Errorf("%s mods: %w", s.flow, err)
	}

	s.close()
	return applied, nil
}

// Cancel discards the selection without touching the target list.
func (s *Session) Cancel() {
	s.close()
}

func (s *Session) close() {
	s.selected = nil
	s.index = make(map[string]bool)
	s.state = StateIdle
}

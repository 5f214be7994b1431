package flow

import (
	"errors"
	"fmt"
	"slices"
)

var ErrNoSelection = errors.New("no card selection in progress")
var ErrSelectionIncomplete = errors.New("card selection incomplete")

// NoExclude marks a selection where every card may be chosen.
const NoExclude = -1

// Selection is an in-progress card multiselect. Chosen keeps click order.
type Selection struct {
	Count        int
	Exclude      int
	Chosen       []int
	Label        string
	ConfirmLabel string

	onConfirm func([]int)
}

func (s *Selection) Complete() bool {
	return len(s.Chosen) == s.Count
}

func (s *Selection) IsChosen(i int) bool {
	return slices.Contains(s.Chosen, i)
}

func (s *Selection) Prompt() string {
	return fmt.Sprintf("%s (%d/%d)", s.Label, len(s.Chosen), s.Count)
}

// Labels customise the prompt and confirm button of a selection.
type Labels struct {
	Prompt  string
	Confirm string
}

func discardLabels(count int) Labels {
	return Labels{Prompt: fmt.Sprintf("Select %d card(s) to discard", count), Confirm: "Confirm Discard"}
}

// Selector holds at most one Selection. OnChange runs after every mutation.
type Selector struct {
	active   *Selection
	OnChange func()
}

func (s *Selector) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}

// Start replaces any current selection; the old callback is never called.
func (s *Selector) Start(count, exclude int, onConfirm func([]int)) {
	s.StartLabeled(discardLabels(count), count, exclude, onConfirm)
}

func (s *Selector) StartLabeled(l Labels, count, exclude int, onConfirm func([]int)) {
	s.active = &Selection{
		Count:        count,
		Exclude:      exclude,
		Chosen:       []int{},
		Label:        l.Prompt,
		ConfirmLabel: l.Confirm,
		onConfirm:    onConfirm,
	}
	s.changed()
}

// Toggle adds or removes i. Clicks on the excluded card and clicks past
// capacity are ignored. Reports whether anything changed.
func (s *Selector) Toggle(i int) bool {
	sel := s.active
	if sel == nil || i == sel.Exclude {
		return false
	}
	if idx := slices.Index(sel.Chosen, i); idx >= 0 {
		sel.Chosen = slices.Delete(sel.Chosen, idx, idx+1)
		s.changed()
		return true
	}
	if len(sel.Chosen) >= sel.Count {
		return false
	}
	sel.Chosen = append(sel.Chosen, i)
	s.changed()
	return true
}

// Confirm ends a complete selection and hands its indices, in click order, to
// the callback. The selection is gone before the callback runs.
func (s *Selector) Confirm() error {
	sel := s.active
	if sel == nil {
		return ErrNoSelection
	}
	if !sel.Complete() {
		return fmt.Errorf("%w: %d of %d chosen", ErrSelectionIncomplete, len(sel.Chosen), sel.Count)
	}

	chosen := slices.Clone(sel.Chosen)
	cb := sel.onConfirm
	s.active = nil
	s.changed()
	if cb != nil {
		cb(chosen)
	}
	return nil
}

// Cancel drops the selection without calling its callback.
func (s *Selector) Cancel() {
	if s.active == nil {
		return
	}
	s.active = nil
	s.changed()
}

// discard drops the selection without notifying; used when a new flow
// replaces the old one and will notify itself.
func (s *Selector) discard() {
	s.active = nil
}

// Active returns a copy of the current selection, or nil.
func (s *Selector) Active() *Selection {
	if s.active == nil {
		return nil
	}
	cp := *s.active
	cp.Chosen = slices.Clone(s.active.Chosen)
	cp.onConfirm = nil
	return &cp
}

package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_ToggleRespectsCapacityAndExclude(t *testing.T) {
	var got []int
	var s Selector
	s.Start(2, 1, func(indices []int) { got = indices })

	cases := []struct {
		name    string
		index   int
		changed bool
		want    []int
	}{
		{name: "excluded card ignored", index: 1, changed: false, want: []int{}},
		{name: "first pick", index: 3, changed: true, want: []int{3}},
		{name: "second pick", index: 0, changed: true, want: []int{3, 0}},
		{name: "past capacity ignored", index: 2, changed: false, want: []int{3, 0}},
		{name: "deselect", index: 3, changed: true, want: []int{0}},
		{name: "reselect keeps click order", index: 2, changed: true, want: []int{0, 2}},
	}

	for _, tc := range cases {
		if changed := s.Toggle(tc.index); changed != tc.changed {
			t.Fatalf("%s: toggle(%d) changed=%v, want %v", tc.name, tc.index, changed, tc.changed)
		}
		if chosen := s.Active().Chosen; !assert.Equal(t, tc.want, chosen, tc.name) {
			t.FailNow()
		}
	}

	require.NoError(t, s.Confirm())
	assert.Equal(t, []int{0, 2}, got)
	assert.Nil(t, s.Active())
}

func TestSelector_ConfirmIncomplete(t *testing.T) {
	called := false
	var s Selector
	s.Start(2, NoExclude, func([]int) { called = true })
	s.Toggle(4)

	err := s.Confirm()
	if !errors.Is(err, ErrSelectionIncomplete) {
		t.Fatalf("want ErrSelectionIncomplete, got %v", err)
	}
	assert.False(t, called)
	assert.NotNil(t, s.Active(), "selection should stay open")
}

func TestSelector_StartReplacesWithoutCallingOld(t *testing.T) {
	var calls []string
	var s Selector
	s.Start(1, NoExclude, func([]int) { calls = append(calls, "first") })
	s.Toggle(0)
	s.Start(1, NoExclude, func([]int) { calls = append(calls, "second") })

	assert.Empty(t, s.Active().Chosen)
	s.Toggle(2)
	require.NoError(t, s.Confirm())
	assert.Equal(t, []string{"second"}, calls)
}

func TestSelector_CancelNeverCallsBack(t *testing.T) {
	called := false
	notified := 0
	s := Selector{OnChange: func() { notified++ }}
	s.Start(1, NoExclude, func([]int) { called = true })
	s.Toggle(0)
	s.Cancel()

	assert.False(t, called)
	assert.Nil(t, s.Active())
	assert.Equal(t, 3, notified)
	require.ErrorIs(t, s.Confirm(), ErrNoSelection)
}

func TestSelector_ActiveIsACopy(t *testing.T) {
	var s Selector
	s.StartLabeled(Labels{Prompt: "Select a card to hot-wire", Confirm: "Confirm Hot-Wire"}, 1, NoExclude, nil)

	cp := s.Active()
	cp.Chosen = append(cp.Chosen, 9)

	assert.Empty(t, s.Active().Chosen)
	assert.Equal(t, "Select a card to hot-wire (0/1)", s.Active().Prompt())
	assert.Equal(t, "Confirm Hot-Wire", s.Active().ConfirmLabel)
}

func TestDiscardLabels(t *testing.T) {
	var s Selector
	s.Start(2, NoExclude, nil)
	assert.Equal(t, "Select 2 card(s) to discard (0/2)", s.Active().Prompt())
	assert.Equal(t, "Confirm Discard", s.Active().ConfirmLabel)
}

package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAction(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  Action
	}{
		{"bottom long", Event{Type: TypeEdgeSwipeEnd, Edge: EdgeBottom, Completed: true, IsLong: true}, ActionGoHome},
		{"bottom short", Event{Type: TypeEdgeSwipeEnd, Edge: EdgeBottom, Completed: true}, ActionShowKeyboard},
		{"top", Event{Type: TypeEdgeSwipeEnd, Edge: EdgeTop, Completed: true}, ActionCloseApp},
		{"top long", Event{Type: TypeEdgeSwipeEnd, Edge: EdgeTop, Completed: true, IsLong: true}, ActionCloseApp},
		{"left", Event{Type: TypeEdgeSwipeEnd, Edge: EdgeLeft, Completed: true}, ActionQuickSettings},
		{"right", Event{Type: TypeEdgeSwipeEnd, Edge: EdgeRight, Completed: true}, ActionAppSwitcher},
		{"not completed", Event{Type: TypeEdgeSwipeEnd, Edge: EdgeBottom, IsLong: true}, ActionNone},
		{"end without edge", Event{Type: TypeEdgeSwipeEnd, Completed: true}, ActionNone},
		{"tap", Event{Type: TypeTap}, ActionTap},
		{"long press", Event{Type: TypeLongPress}, ActionLongPress},
		{"start", Event{Type: TypeEdgeSwipeStart, Edge: EdgeLeft, Completed: true}, ActionNone},
		{"update", Event{Type: TypeEdgeSwipeUpdate, Edge: EdgeLeft, Progress: 2}, ActionNone},
		{"pinch", Event{Type: TypePinch}, ActionNone},
		{"pan", Event{Type: TypePan}, ActionNone},
		{"none", Event{}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToAction(tt.event))
			// pure: same input, same answer
			assert.Equal(t, ToAction(tt.event), ToAction(tt.event))
		})
	}
}

func TestParseAction_RoundTrip(t *testing.T) {
	for _, a := range []Action{ActionNone, ActionGoHome, ActionShowKeyboard, ActionCloseApp, ActionQuickSettings, ActionAppSwitcher, ActionTap, ActionLongPress} {
		parsed, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	_, err := ParseAction("launch_missiles")
	assert.Error(t, err)
}

func TestParseEdge(t *testing.T) {
	edge, err := ParseEdge("bottom")
	require.NoError(t, err)
	assert.Equal(t, EdgeBottom, edge)

	_, err = ParseEdge("diagonal")
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	for typ := TypeNone; typ <= TypePan; typ++ {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseType("swirl")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	c := DefaultConfig()
	c.SwipeThreshold = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.LongPress = -1
	assert.Error(t, c.Validate())
}

package collab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceManager(t *testing.T) {
	pm := NewPresenceManager()

	p, changed := pm.SetDrawing("alice", "s1")
	assert.True(t, changed)
	assert.Equal(t, "s1", p.Drawing)
	_, changed = pm.SetDrawing("alice", "s1")
	assert.False(t, changed)

	// A client update cannot overwrite the stroke in progress.
	got := pm.Update("alice", PresencePayload{Cursor: &CursorPos{X: 1, Y: 2}, Drawing: "forged"})
	assert.Equal(t, "s1", got.Drawing)
	assert.Equal(t, &CursorPos{X: 1, Y: 2}, got.Cursor)

	pm.Update("bob", PresencePayload{})
	msg := pm.StateMessage()
	require.NotNil(t, msg)
	assert.Equal(t, TypePresenceState, msg.Type)
	var state PresenceStatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &state))
	assert.Len(t, state.Presences, 2)
	assert.Equal(t, "s1", state.Presences["alice"].Drawing)

	pm.Remove("alice")
	assert.Equal(t, "", pm.Drawing("alice"))
	assert.Len(t, pm.GetAll(), 1)
}

package storage

import (
	"testing"
	"time"

	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnSerializationRoundTrip(t *testing.T) {
	turn := &core.Turn{
		SessionID: "session-42",
		Role:      core.RoleAssistant,
		Content:   "The Eiffel Tower is 330 meters tall.",
		Timestamp: time.Date(2025, 11, 3, 14, 30, 0, 123456000, time.UTC),
	}

	data := MarshalTurn(turn)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalTurn(data)
	require.NoError(t, err)

	assert.Equal(t, turn.SessionID, decoded.SessionID)
	assert.Equal(t, turn.Role, decoded.Role)
	assert.Equal(t, turn.Content, decoded.Content)
	assert.True(t, turn.Timestamp.Equal(decoded.Timestamp), "timestamp %v != %v", turn.Timestamp, decoded.Timestamp)
}

func TestTurnSerializationTruncated(t *testing.T) {
	turn := &core.Turn{
		SessionID: "s",
		Role:      core.RoleUser,
		Content:   "hello",
		Timestamp: time.Now().UTC(),
	}

	data := MarshalTurn(turn)
	_, err := UnmarshalTurn(data[:len(data)/2])
	assert.Error(t, err)
}

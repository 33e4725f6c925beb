package ipc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(MessageTypeUpdateResponse, "req-42", UpdateResponse{
		Success: true,
		Bio:     "новое био",
	})

	require.NoError(t, err)
	assert.Equal(t, MessageTypeUpdateResponse, msg.Type)
	assert.Equal(t, "req-42", msg.RequestID)
	assert.False(t, msg.Timestamp.IsZero())

	var payload UpdateResponse
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "новое био", payload.Bio)
}

func TestNewMessage_NilPayload(t *testing.T) {
	msg, err := NewMessage(MessageTypeStatusRequest, "req-1", nil)

	require.NoError(t, err)
	assert.Nil(t, msg.Payload)
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	msg, err := NewMessage(MessageTypeStopRequest, "req-7", StopRequest{Force: true, TimeoutSeconds: 5})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, MessageTypeStopRequest, decoded.Type)
	assert.Equal(t, "req-7", decoded.RequestID)

	var req StopRequest
	require.NoError(t, json.Unmarshal(decoded.Payload, &req))
	assert.True(t, req.Force)
	assert.Equal(t, 5, req.TimeoutSeconds)
}

// Package ipc is the local control surface of the daemon: a Unix
// socket speaking one JSON request/response pair per connection.
package ipc

import (
	"encoding/json"
	"time"

	"github.com/cehokocof/telebio/internal/domain/updater"
)

// MessageType identifies a control message.
type MessageType string

const (
	// MessageTypeStatusRequest asks for the daemon status.
	MessageTypeStatusRequest MessageType = "status_request"
	// MessageTypePauseRequest suspends scheduled updates.
	MessageTypePauseRequest MessageType = "pause_request"
	// MessageTypeResumeRequest resumes scheduled updates.
	MessageTypeResumeRequest MessageType = "resume_request"
	// MessageTypeUpdateRequest forces one update cycle.
	MessageTypeUpdateRequest MessageType = "update_request"
	// MessageTypeStopRequest shuts the daemon down.
	MessageTypeStopRequest MessageType = "stop_request"

	// MessageTypeStatusResponse carries the daemon status.
	MessageTypeStatusResponse MessageType = "status_response"
	// MessageTypePauseResponse carries the pause result.
	MessageTypePauseResponse MessageType = "pause_response"
	// MessageTypeResumeResponse carries the resume result.
	MessageTypeResumeResponse MessageType = "resume_response"
	// MessageTypeUpdateResponse carries the forced update result.
	MessageTypeUpdateResponse MessageType = "update_response"
	// MessageTypeStopResponse carries the stop result.
	MessageTypeStopResponse MessageType = "stop_response"
	// MessageTypeErrorResponse carries error details.
	MessageTypeErrorResponse MessageType = "error_response"
)

// Message is the envelope for all control messages.
type Message struct {
	Type      MessageType     `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewMessage wraps a payload in an envelope.
func NewMessage(msgType MessageType, requestID string, payload any) (*Message, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	return &Message{
		Type:      msgType,
		RequestID: requestID,
		Timestamp: time.Now(),
		Payload:   raw,
	}, nil
}

// StatusResponse is the payload for a status response.
type StatusResponse struct {
	Status     updater.Status  `json:"status"`
	History    []updater.Entry `json:"history,omitempty"`
	BotEnabled bool            `json:"bot_enabled"`
	Version    string          `json:"version,omitempty"`
	PID        int             `json:"pid"`
}

// PauseResponse is the payload for a pause response.
type PauseResponse struct {
	// Changed is false when the updater was already paused.
	Changed bool `json:"changed"`
	Paused  bool `json:"paused"`
}

// ResumeResponse is the payload for a resume response.
type ResumeResponse struct {
	// Changed is false when the updater was not paused.
	Changed bool `json:"changed"`
	Paused  bool `json:"paused"`
}

// UpdateResponse is the payload for a forced update response.
type UpdateResponse struct {
	Success bool   `json:"success"`
	Bio     string `json:"bio,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StopRequest is the payload for a stop request.
type StopRequest struct {
	// Force shortens the graceful shutdown window.
	Force bool `json:"force,omitempty"`
	// TimeoutSeconds overrides the graceful shutdown window.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// StopResponse is the payload for a stop response.
type StopResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the payload for an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes carried by ErrorResponse.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeUnknownRequest = "unknown_request"
	ErrorCodeInternalError  = "internal_error"
)

// Package protocol defines the WebSocket message types exchanged
// between a caller client and the voice agent. Caller audio and
// synthesized audio travel as binary frames; everything else is JSON.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Caller → Agent messages
	TypeInterrupt MessageType = "interrupt" // Stop the assistant mid-response

	// Agent → Caller messages
	TypeSession    MessageType = "session"    // Session established
	TypeTranscript MessageType = "transcript" // Caller speech transcript
	TypeResponse   MessageType = "response"   // Assistant text response
	TypeSpeech     MessageType = "speech"     // Caller speech start/end
	TypeMetrics    MessageType = "metrics"    // Per-turn latency metrics
	TypeError      MessageType = "error"      // Pipeline or session error

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all JSON WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Agent → Caller Message Types
// =============================================================================

// SessionData announces an established session
type SessionData struct {
	SessionID string `json:"session_id"`
	Room      string `json:"room"`

	// Audio formats for the binary frames on this connection
	InputSampleRate  int `json:"input_sample_rate"`
	OutputSampleRate int `json:"output_sample_rate"`
}

// TranscriptData carries the caller's transcribed speech
type TranscriptData struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// ResponseData carries the assistant's text response
type ResponseData struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// SpeechData signals a caller speech boundary
type SpeechData struct {
	Event string `json:"event"` // "start" or "end"
}

// MetricsData carries per-turn latency in milliseconds
type MetricsData struct {
	ASRMs   int64 `json:"asr_ms"`
	LLMMs   int64 `json:"llm_ms"`
	TTSMs   int64 `json:"tts_ms"`
	TotalMs int64 `json:"total_ms"`
}

// ErrorData carries an error surfaced to the caller
type ErrorData struct {
	Message string `json:"message"`
}

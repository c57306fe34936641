package protocol

import "time"

// =============================================================================
// Message Constructors
// =============================================================================

// NewSessionMessage creates a session-established announcement
func NewSessionMessage(sessionID, room string, inputRate, outputRate int) (*Message, error) {
	return NewMessage(TypeSession, SessionData{
		SessionID:        sessionID,
		Room:             room,
		InputSampleRate:  inputRate,
		OutputSampleRate: outputRate,
	})
}

// NewTranscriptMessage creates a caller transcript message
func NewTranscriptMessage(text string, final bool) (*Message, error) {
	return NewMessage(TypeTranscript, TranscriptData{Text: text, Final: final})
}

// NewResponseMessage creates an assistant response message
func NewResponseMessage(text string, final bool) (*Message, error) {
	return NewMessage(TypeResponse, ResponseData{Text: text, Final: final})
}

// NewSpeechMessage creates a speech boundary message
func NewSpeechMessage(event string) (*Message, error) {
	return NewMessage(TypeSpeech, SpeechData{Event: event})
}

// NewMetricsMessage creates a latency metrics message
func NewMetricsMessage(asr, llm, tts, total time.Duration) (*Message, error) {
	return NewMessage(TypeMetrics, MetricsData{
		ASRMs:   asr.Milliseconds(),
		LLMMs:   llm.Milliseconds(),
		TTSMs:   tts.Milliseconds(),
		TotalMs: total.Milliseconds(),
	})
}

// NewErrorMessage creates an error message
func NewErrorMessage(message string) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Message: message})
}

// NewPingMessage creates a ping message
func NewPingMessage() (*Message, error) {
	return NewMessage(TypePing, nil)
}

// NewPongMessage creates a pong response echoing the ping timestamp
func NewPongMessage(pingTS int64) (*Message, error) {
	return NewMessage(TypePong, map[string]int64{"ping_ts": pingTS})
}

// NewInterruptMessage creates a caller interrupt message
func NewInterruptMessage() (*Message, error) {
	return NewMessage(TypeInterrupt, nil)
}

// =============================================================================
// Data Accessors
// =============================================================================

// GetSessionData extracts SessionData from a session message
func (m *Message) GetSessionData() (*SessionData, error) {
	var data SessionData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTranscriptData extracts TranscriptData from a transcript message
func (m *Message) GetTranscriptData() (*TranscriptData, error) {
	var data TranscriptData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetResponseData extracts ResponseData from a response message
func (m *Message) GetResponseData() (*ResponseData, error) {
	var data ResponseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSpeechData extracts SpeechData from a speech message
func (m *Message) GetSpeechData() (*SpeechData, error) {
	var data SpeechData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetMetricsData extracts MetricsData from a metrics message
func (m *Message) GetMetricsData() (*MetricsData, error) {
	var data MetricsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts ErrorData from an error message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

package voice

import (
	"context"
	"sync"
)

// Mock is a mock implementation of Pipeline for testing.
type Mock struct {
	mu sync.RWMutex

	// State
	connected bool
	cfg       Config
	tools     []Tool
	metrics   *MetricsCollector

	// Callbacks
	onAudioOut    func(pcm16 []byte)
	onSpeechStart func()
	onSpeechEnd   func()
	onTranscript  func(text string, isFinal bool)
	onResponse    func(text string, isFinal bool)
	onToolCall    func(call ToolCall)
	onError       func(err error)

	// Configurable behavior
	StartFunc         func(ctx context.Context) error
	StopFunc          func() error
	SendAudioFunc     func(pcm16 []byte) error
	GenerateReplyFunc func(instructions string) error

	// Captured calls for assertions
	AudioSent   [][]byte
	Replies     []string
	ToolResults map[string]string
	Interrupted bool
}

// NewMock creates a new Mock pipeline.
func NewMock(cfg Config) *Mock {
	return &Mock{
		cfg:         cfg,
		metrics:     NewMetricsCollector(),
		ToolResults: make(map[string]string),
	}
}

// Start implements Pipeline.
func (m *Mock) Start(ctx context.Context) error {
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected {
		return ErrAlreadyStarted
	}
	m.connected = true
	return nil
}

// Stop implements Pipeline.
func (m *Mock) Stop() error {
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// IsConnected implements Pipeline.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// SendAudio implements Pipeline.
func (m *Mock) SendAudio(pcm16 []byte) error {
	if m.SendAudioFunc != nil {
		return m.SendAudioFunc(pcm16)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	m.AudioSent = append(m.AudioSent, pcm16)
	return nil
}

// OnAudioOut implements Pipeline.
func (m *Mock) OnAudioOut(fn func(pcm16 []byte)) { m.onAudioOut = fn }

// OnSpeechStart implements Pipeline.
func (m *Mock) OnSpeechStart(fn func()) { m.onSpeechStart = fn }

// OnSpeechEnd implements Pipeline.
func (m *Mock) OnSpeechEnd(fn func()) { m.onSpeechEnd = fn }

// OnTranscript implements Pipeline.
func (m *Mock) OnTranscript(fn func(text string, isFinal bool)) { m.onTranscript = fn }

// OnResponse implements Pipeline.
func (m *Mock) OnResponse(fn func(text string, isFinal bool)) { m.onResponse = fn }

// OnError implements Pipeline.
func (m *Mock) OnError(fn func(err error)) { m.onError = fn }

// RegisterTool implements Pipeline.
func (m *Mock) RegisterTool(tool Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = append(m.tools, tool)
}

// OnToolCall implements Pipeline.
func (m *Mock) OnToolCall(fn func(call ToolCall)) { m.onToolCall = fn }

// SubmitToolResult implements Pipeline.
func (m *Mock) SubmitToolResult(callID string, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolResults[callID] = result
	return nil
}

// GenerateReply implements Pipeline.
func (m *Mock) GenerateReply(instructions string) error {
	if m.GenerateReplyFunc != nil {
		return m.GenerateReplyFunc(instructions)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	m.Replies = append(m.Replies, instructions)
	return nil
}

// Interrupt implements Pipeline.
func (m *Mock) Interrupt() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Interrupted = true
	return nil
}

// Metrics implements Pipeline.
func (m *Mock) Metrics() Metrics { return m.metrics.Current() }

// Config implements Pipeline.
func (m *Mock) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Tools returns the registered tools for assertions.
func (m *Mock) Tools() []Tool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Tool(nil), m.tools...)
}

// TriggerTranscript simulates a caller transcript event.
func (m *Mock) TriggerTranscript(text string, isFinal bool) {
	if m.onTranscript != nil {
		m.onTranscript(text, isFinal)
	}
}

// TriggerToolCall simulates the model invoking a tool. The registered
// handler runs unless an external OnToolCall callback is set.
func (m *Mock) TriggerToolCall(call ToolCall) (string, error) {
	if m.onToolCall != nil {
		m.onToolCall(call)
		return "", nil
	}

	m.mu.RLock()
	tools := m.tools
	m.mu.RUnlock()

	for _, t := range tools {
		if t.Name == call.Name && t.Handler != nil {
			return t.Handler(call.Arguments)
		}
	}
	return "Function not found", nil
}

// Ensure Mock implements Pipeline at compile time.
var _ Pipeline = (*Mock)(nil)

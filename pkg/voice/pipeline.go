package voice

import (
	"context"
	"sync"
)

// Pipeline is the interface for a voice conversation pipeline.
// One pipeline serves one caller connection; implementations do not
// share state across pipelines.
type Pipeline interface {
	// Lifecycle

	// Start establishes connections and begins processing.
	// Call this after registering tools and setting up callbacks.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the pipeline.
	Stop() error

	// IsConnected returns true if the pipeline is connected and ready.
	IsConnected() bool

	// Audio I/O

	// SendAudio sends caller audio to the pipeline.
	// Audio should be mono PCM16 at the configured input sample rate.
	SendAudio(pcm16 []byte) error

	// OnAudioOut sets the callback for synthesized audio output.
	// Audio is mono PCM16 at the configured output sample rate.
	OnAudioOut(fn func(pcm16 []byte))

	// Events

	// OnSpeechStart is called when the caller starts speaking.
	OnSpeechStart(fn func())

	// OnSpeechEnd is called when the caller stops speaking.
	OnSpeechEnd(fn func())

	// OnTranscript is called with the caller's transcribed speech.
	// isFinal indicates whether this is the final transcript.
	OnTranscript(fn func(text string, isFinal bool))

	// OnResponse is called with the assistant's text response.
	// isFinal indicates whether this is the final response.
	OnResponse(fn func(text string, isFinal bool))

	// OnError is called when an error occurs.
	OnError(fn func(err error))

	// Tools

	// RegisterTool adds a tool that the model can invoke.
	// Must be called before Start().
	RegisterTool(tool Tool)

	// OnToolCall sets an external callback for tool invocations.
	// When set, registered handlers are not executed; call
	// SubmitToolResult with the call ID to return the result.
	OnToolCall(fn func(call ToolCall))

	// SubmitToolResult returns a tool call result to the model.
	SubmitToolResult(callID string, result string) error

	// Control

	// GenerateReply asks the model to speak unprompted, following the
	// given one-off instructions. Used for the scripted greeting.
	GenerateReply(instructions string) error

	// Interrupt stops the current assistant response (for barge-in).
	Interrupt() error

	// Metrics & Config

	// Metrics returns latency metrics for the current turn.
	Metrics() Metrics

	// Config returns the current configuration.
	Config() Config
}

// PipelineFactory is a function that creates a Pipeline.
type PipelineFactory func(cfg Config) (Pipeline, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[Provider]PipelineFactory)
)

// Register sets the factory for a provider.
// Bundled implementations call this from init().
func Register(p Provider, f PipelineFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[p] = f
}

// New creates a new Pipeline with the given configuration.
// Returns an error if the config is invalid or the provider is not
// registered.
func New(cfg Config) (Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	factory, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()

	if !ok {
		return nil, ErrUnknownProvider
	}

	return factory(cfg)
}

// Callbacks groups all pipeline callbacks for convenience.
// This can be used to set up all callbacks at once.
type Callbacks struct {
	OnAudioOut    func(pcm16 []byte)
	OnSpeechStart func()
	OnSpeechEnd   func()
	OnTranscript  func(text string, isFinal bool)
	OnResponse    func(text string, isFinal bool)
	OnToolCall    func(call ToolCall)
	OnError       func(err error)
}

// Apply sets all non-nil callbacks on a pipeline.
func (c *Callbacks) Apply(p Pipeline) {
	if c.OnAudioOut != nil {
		p.OnAudioOut(c.OnAudioOut)
	}
	if c.OnSpeechStart != nil {
		p.OnSpeechStart(c.OnSpeechStart)
	}
	if c.OnSpeechEnd != nil {
		p.OnSpeechEnd(c.OnSpeechEnd)
	}
	if c.OnTranscript != nil {
		p.OnTranscript(c.OnTranscript)
	}
	if c.OnResponse != nil {
		p.OnResponse(c.OnResponse)
	}
	if c.OnToolCall != nil {
		p.OnToolCall(c.OnToolCall)
	}
	if c.OnError != nil {
		p.OnError(c.OnError)
	}
}

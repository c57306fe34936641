// Package agent assembles the DineAI booking assistant: the system
// prompt, the function tools bridging to the booking backend, and the
// per-caller session wrapping a voice pipeline.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dineai/go-dineai/internal/log"
	"github.com/dineai/go-dineai/pkg/voice"
)

// Session is one caller's conversation with the assistant.
// It owns a voice pipeline with the booking tools registered.
type Session struct {
	id       string
	pipeline voice.Pipeline
	logger   *slog.Logger
	started  time.Time
}

// SessionOption configures a session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	pipeline  voice.Pipeline
	callbacks *voice.Callbacks
}

// WithPipeline supplies a pre-built pipeline instead of constructing
// one from config. Used in tests.
func WithPipeline(p voice.Pipeline) SessionOption {
	return func(o *sessionOptions) { o.pipeline = p }
}

// WithCallbacks sets the pipeline callbacks for the session.
func WithCallbacks(cb *voice.Callbacks) SessionOption {
	return func(o *sessionOptions) { o.callbacks = cb }
}

// NewSession builds a session: pipeline from config, system prompt,
// and the weather and booking tools wired to the backend.
func NewSession(cfg voice.Config, b Backend, opts ...SessionOption) (*Session, error) {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.SystemPrompt == "" {
		cfg = cfg.WithSystemPrompt(Instructions)
	}

	p := o.pipeline
	if p == nil {
		var err error
		p, err = voice.New(cfg)
		if err != nil {
			return nil, err
		}
	}

	for _, tool := range Tools(b) {
		p.RegisterTool(tool)
	}

	if o.callbacks != nil {
		o.callbacks.Apply(p)
	}

	id := uuid.NewString()
	return &Session{
		id:       id,
		pipeline: p,
		logger:   log.Component("agent.session").With("session_id", id),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start connects the pipeline and speaks the opening greeting.
func (s *Session) Start(ctx context.Context) error {
	if err := s.pipeline.Start(ctx); err != nil {
		return err
	}
	s.started = time.Now()

	s.logger.Info("session started",
		"stt_model", s.pipeline.Config().STTModel,
		"llm_model", s.pipeline.Config().LLMModel,
		"tts_model", s.pipeline.Config().TTSModel)

	if err := s.pipeline.GenerateReply(GreetingInstructions); err != nil {
		s.logger.Warn("greeting failed", "error", err)
	}

	return nil
}

// Stop shuts the session down.
func (s *Session) Stop() error {
	err := s.pipeline.Stop()
	if !s.started.IsZero() {
		s.logger.Info("session ended", "duration", time.Since(s.started).Round(time.Second))
	}
	return err
}

// SendAudio forwards caller audio into the pipeline.
func (s *Session) SendAudio(pcm16 []byte) error {
	return s.pipeline.SendAudio(pcm16)
}

// Interrupt stops the assistant mid-response.
func (s *Session) Interrupt() error {
	return s.pipeline.Interrupt()
}

// Metrics returns pipeline latency metrics for the current turn.
func (s *Session) Metrics() voice.Metrics {
	return s.pipeline.Metrics()
}

// Pipeline exposes the underlying pipeline.
func (s *Session) Pipeline() voice.Pipeline {
	return s.pipeline
}

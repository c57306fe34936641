package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/dineai/go-dineai/pkg/voice"
)

func newSessionWithMock(t *testing.T, opts ...SessionOption) (*Session, *voice.Mock) {
	t.Helper()

	cfg := voice.DefaultConfig().WithKeys("dg", "gq")
	m := voice.NewMock(cfg)

	b := newTestBackend(t, nil)
	s, err := NewSession(cfg, b, append(opts, WithPipeline(m))...)
	if err != nil {
		t.Fatal(err)
	}
	return s, m
}

func TestNewSessionRegistersTools(t *testing.T) {
	s, m := newSessionWithMock(t)

	tools := m.Tools()
	if len(tools) != 2 {
		t.Fatalf("expected 2 registered tools, got %d", len(tools))
	}

	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.Name] = true
	}
	if !names["get_weather"] || !names["create_booking"] {
		t.Errorf("unexpected tool names %v", names)
	}

	if s.ID() == "" {
		t.Error("session ID is empty")
	}
}

func TestSessionStartSpeaksGreeting(t *testing.T) {
	s, m := newSessionWithMock(t)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(m.Replies) != 1 {
		t.Fatalf("expected 1 generated reply, got %d", len(m.Replies))
	}
	if m.Replies[0] != GreetingInstructions {
		t.Errorf("unexpected greeting instructions %q", m.Replies[0])
	}
}

func TestSessionStartFailurePropagates(t *testing.T) {
	s, m := newSessionWithMock(t)

	startErr := errors.New("dial failed")
	m.StartFunc = func(ctx context.Context) error { return startErr }

	if err := s.Start(context.Background()); !errors.Is(err, startErr) {
		t.Errorf("expected start error, got %v", err)
	}
	if len(m.Replies) != 0 {
		t.Error("greeting must not fire when start fails")
	}
}

func TestSessionGreetingFailureIsNonFatal(t *testing.T) {
	s, m := newSessionWithMock(t)
	m.GenerateReplyFunc = func(instructions string) error {
		return errors.New("llm unavailable")
	}

	if err := s.Start(context.Background()); err != nil {
		t.Errorf("Start() should tolerate greeting failure, got %v", err)
	}
}

func TestSessionAudioAndLifecycle(t *testing.T) {
	s, m := newSessionWithMock(t)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.SendAudio([]byte{1, 2, 3}); err != nil {
		t.Errorf("SendAudio() error = %v", err)
	}
	if len(m.AudioSent) != 1 {
		t.Errorf("expected 1 audio chunk forwarded, got %d", len(m.AudioSent))
	}

	if err := s.Interrupt(); err != nil {
		t.Errorf("Interrupt() error = %v", err)
	}
	if !m.Interrupted {
		t.Error("interrupt not forwarded to pipeline")
	}

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if m.IsConnected() {
		t.Error("pipeline still connected after Stop")
	}
}

func TestSessionAppliesSystemPrompt(t *testing.T) {
	cfg := voice.DefaultConfig().WithKeys("dg", "gq")
	b := newTestBackend(t, nil)

	voice.Register(voice.ProviderDeepgramGroq, func(c voice.Config) (voice.Pipeline, error) {
		return voice.NewMock(c), nil
	})

	s, err := NewSession(cfg, b)
	if err != nil {
		t.Fatal(err)
	}

	if s.Pipeline().Config().SystemPrompt != Instructions {
		t.Error("default system prompt not applied")
	}
}

func TestSessionCallbacksApplied(t *testing.T) {
	var gotTranscript bool
	cb := &voice.Callbacks{
		OnTranscript: func(text string, isFinal bool) { gotTranscript = true },
	}

	_, m := newSessionWithMock(t, WithCallbacks(cb))

	m.TriggerTranscript("hello", true)
	if !gotTranscript {
		t.Error("transcript callback not applied to pipeline")
	}
}

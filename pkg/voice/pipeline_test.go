package voice

import (
	"context"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != ProviderDeepgramGroq {
		t.Errorf("expected provider deepgram-groq, got %s", cfg.Provider)
	}

	if cfg.InputSampleRate != 16000 {
		t.Errorf("expected input sample rate 16000, got %d", cfg.InputSampleRate)
	}

	if cfg.OutputSampleRate != 24000 {
		t.Errorf("expected output sample rate 24000, got %d", cfg.OutputSampleRate)
	}

	if cfg.STTModel != STTNova2 {
		t.Errorf("expected STT model nova-2, got %s", cfg.STTModel)
	}

	if cfg.LLMModel != LLMLlama33 {
		t.Errorf("expected LLM model llama-3.3-70b-versatile, got %s", cfg.LLMModel)
	}

	if cfg.TTSModel != TTSAuraAsteria {
		t.Errorf("expected TTS model aura-asteria-en, got %s", cfg.TTSModel)
	}

	if cfg.LLMBaseURL != GroqBaseURL {
		t.Errorf("expected Groq base URL, got %s", cfg.LLMBaseURL)
	}
}

func TestConfigValidation(t *testing.T) {
	valid := DefaultConfig().WithKeys("dg-key", "groq-key")

	tests := []struct {
		name    string
		mutate  func(Config) Config
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c Config) Config { return c },
			wantErr: false,
		},
		{
			name: "missing deepgram key",
			mutate: func(c Config) Config {
				c.DeepgramKey = ""
				return c
			},
			wantErr: true,
		},
		{
			name: "missing groq key",
			mutate: func(c Config) Config {
				c.GroqKey = ""
				return c
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			mutate: func(c Config) Config {
				c.Provider = "nonexistent"
				return c
			},
			wantErr: true,
		},
		{
			name: "temperature too high",
			mutate: func(c Config) Config {
				c.LLMTemperature = 3.0
				return c
			},
			wantErr: true,
		},
		{
			name: "negative silence duration",
			mutate: func(c Config) Config {
				c.VADSilenceDuration = -time.Second
				return c
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.mutate(valid)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigWithMethods(t *testing.T) {
	cfg := DefaultConfig()

	cfg = cfg.WithKeys("dg", "gq")
	if cfg.DeepgramKey != "dg" || cfg.GroqKey != "gq" {
		t.Error("WithKeys did not set keys")
	}

	cfg = cfg.WithLLM("llama-3.1-8b-instant")
	if cfg.LLMModel != "llama-3.1-8b-instant" {
		t.Errorf("WithLLM did not set model, got %s", cfg.LLMModel)
	}

	cfg = cfg.WithTTS("aura-orion-en")
	if cfg.TTSModel != "aura-orion-en" {
		t.Errorf("WithTTS did not set voice, got %s", cfg.TTSModel)
	}

	cfg = cfg.WithSystemPrompt("You are a booking assistant")
	if cfg.SystemPrompt != "You are a booking assistant" {
		t.Error("WithSystemPrompt did not set prompt")
	}

	cfg = cfg.WithVAD(300 * time.Millisecond)
	if cfg.VADSilenceDuration != 300*time.Millisecond {
		t.Error("WithVAD did not set silence duration")
	}

	cfg = cfg.WithDebug(true)
	if !cfg.Debug {
		t.Error("WithDebug did not set debug flag")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	cfg := DefaultConfig().WithKeys("dg", "gq")
	cfg.Provider = "unregistered"

	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRegisterAndNew(t *testing.T) {
	const testProvider Provider = "deepgram-groq"

	Register(testProvider, func(cfg Config) (Pipeline, error) {
		return NewMock(cfg), nil
	})

	cfg := DefaultConfig().WithKeys("dg", "gq")
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p == nil {
		t.Fatal("New() returned nil pipeline")
	}
	if p.Config().DeepgramKey != "dg" {
		t.Error("pipeline did not receive config")
	}
}

func TestMetricsCollector(t *testing.T) {
	mc := NewMetricsCollector()

	mc.MarkSpeechEnd()
	time.Sleep(10 * time.Millisecond)
	mc.MarkTranscript()
	time.Sleep(10 * time.Millisecond)
	mc.MarkFirstToken()
	time.Sleep(10 * time.Millisecond)
	mc.MarkFirstAudio()
	time.Sleep(10 * time.Millisecond)
	mc.MarkResponseDone()

	m := mc.Current()

	if m.ASRLatency <= 0 {
		t.Errorf("expected positive ASR latency, got %v", m.ASRLatency)
	}
	if m.LLMFirstToken <= m.ASRLatency {
		t.Errorf("expected LLM latency after ASR, got %v <= %v", m.LLMFirstToken, m.ASRLatency)
	}
	if m.TotalLatency < m.TTSFirstAudio {
		t.Errorf("expected total latency >= TTS latency")
	}

	avg := mc.Average()
	if avg.TotalLatency != m.TotalLatency {
		t.Errorf("single-turn average should equal the turn, got %v vs %v", avg.TotalLatency, m.TotalLatency)
	}
}

func TestMetricsFormatLatency(t *testing.T) {
	m := Metrics{
		ASRLatency:    50 * time.Millisecond,
		LLMFirstToken: 300 * time.Millisecond,
		TTSFirstAudio: 400 * time.Millisecond,
		TotalLatency:  500 * time.Millisecond,
	}

	if m.FormatLatency() == "" {
		t.Error("FormatLatency returned empty string")
	}

	empty := Metrics{}
	if empty.FormatLatency() == "" {
		t.Error("FormatLatency on zero metrics returned empty string")
	}
}

func TestToolHandler(t *testing.T) {
	tool := Tool{
		Name:        "get_weather",
		Description: "Get the weather forecast for a booking date",
		Parameters: map[string]any{
			"date": map[string]any{"type": "string"},
		},
		Required: []string{"date"},
		Handler: func(args map[string]any) (string, error) {
			return "Clear, 30 degrees", nil
		},
	}

	result, err := tool.Handler(map[string]any{"date": "2026-02-07"})
	if err != nil {
		t.Errorf("handler returned error: %v", err)
	}
	if result != "Clear, 30 degrees" {
		t.Errorf("unexpected handler result %q", result)
	}
}

func TestCallbacksApply(t *testing.T) {
	var transcriptReceived, responseReceived, toolCalled bool

	m := NewMock(DefaultConfig())
	callbacks := Callbacks{
		OnTranscript: func(text string, isFinal bool) { transcriptReceived = true },
		OnResponse:   func(text string, isFinal bool) { responseReceived = true },
		OnToolCall:   func(call ToolCall) { toolCalled = true },
	}
	callbacks.Apply(m)

	m.TriggerTranscript("book a table", true)
	if !transcriptReceived {
		t.Error("OnTranscript callback not invoked")
	}

	if m.onResponse == nil {
		t.Error("OnResponse callback not set")
	} else {
		m.onResponse("of course", true)
	}
	if !responseReceived {
		t.Error("OnResponse callback not invoked")
	}

	m.TriggerToolCall(ToolCall{ID: "1", Name: "get_weather"})
	if !toolCalled {
		t.Error("OnToolCall callback not invoked")
	}
}

func TestMockLifecycle(t *testing.T) {
	m := NewMock(DefaultConfig())

	if err := m.SendAudio([]byte{1}); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected before Start, got %v", err)
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(context.Background()); err != ErrAlreadyStarted {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	if err := m.SendAudio([]byte{1, 2}); err != nil {
		t.Errorf("SendAudio() error = %v", err)
	}
	if len(m.AudioSent) != 1 {
		t.Errorf("expected 1 audio chunk captured, got %d", len(m.AudioSent))
	}

	if err := m.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if m.IsConnected() {
		t.Error("expected disconnected after Stop")
	}
}

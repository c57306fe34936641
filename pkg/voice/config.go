package voice

import (
	"errors"
	"time"
)

// Provider identifies the voice pipeline provider.
type Provider string

const (
	// ProviderDeepgramGroq composes Deepgram streaming STT and TTS with a
	// Groq-hosted language model (OpenAI-compatible chat completions).
	ProviderDeepgramGroq Provider = "deepgram-groq"
)

// Default model identifiers.
const (
	// STTNova2 is Deepgram's general-purpose streaming STT model.
	STTNova2 = "nova-2"

	// LLMLlama33 is the Groq-hosted Llama 3.3 70B model.
	LLMLlama33 = "llama-3.3-70b-versatile"

	// TTSAuraAsteria is Deepgram's default English voice.
	TTSAuraAsteria = "aura-asteria-en"
)

// GroqBaseURL is the OpenAI-compatible endpoint for Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Config holds all tunable parameters for voice pipelines.
// Parameters are organized by stage for clarity.
type Config struct {
	// Provider selection
	Provider Provider

	// API keys
	DeepgramKey string // STT and TTS
	GroqKey     string // LLM

	// Audio settings
	InputSampleRate  int // Caller audio sample rate (default: 16000)
	OutputSampleRate int // Synthesized audio sample rate (default: 24000)

	// STT settings
	STTModel    string // Deepgram model (default: nova-2)
	STTLanguage string // Language hint (default: "en")

	// VAD settings. Turn detection rides on the STT stream's
	// voice-activity events.
	VADSilenceDuration time.Duration // Silence marking end of a turn (default: 500ms)

	// LLM settings
	LLMBaseURL     string  // OpenAI-compatible base URL (default: Groq)
	LLMModel       string  // Model name (default: llama-3.3-70b-versatile)
	LLMTemperature float64 // Response randomness 0.0-2.0 (default: 0.8)
	LLMMaxTokens   int     // Maximum response tokens (default: 1024)
	SystemPrompt   string  // System instructions for the assistant

	// TTS settings
	TTSModel string // Deepgram voice (default: aura-asteria-en)

	// Debug settings
	Debug          bool // Enable debug logging
	ProfileLatency bool // Log per-turn latency breakdown
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderDeepgramGroq,

		// Audio
		InputSampleRate:  16000,
		OutputSampleRate: 24000,

		// STT
		STTModel:    STTNova2,
		STTLanguage: "en",

		// VAD
		VADSilenceDuration: 500 * time.Millisecond,

		// LLM
		LLMBaseURL:     GroqBaseURL,
		LLMModel:       LLMLlama33,
		LLMTemperature: 0.8,
		LLMMaxTokens:   1024,

		// TTS
		TTSModel: TTSAuraAsteria,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderDeepgramGroq:
		if c.DeepgramKey == "" {
			return errors.New("voice: Deepgram API key required")
		}
		if c.GroqKey == "" {
			return errors.New("voice: Groq API key required")
		}
	default:
		return errors.New("voice: unknown provider: " + string(c.Provider))
	}

	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return errors.New("voice: LLM temperature must be between 0 and 2")
	}

	if c.VADSilenceDuration < 0 {
		return errors.New("voice: VAD silence duration must be positive")
	}

	return nil
}

// WithKeys returns a copy with API keys set.
func (c Config) WithKeys(deepgramKey, groqKey string) Config {
	c.DeepgramKey = deepgramKey
	c.GroqKey = groqKey
	return c
}

// WithSystemPrompt returns a copy with the system prompt set.
func (c Config) WithSystemPrompt(prompt string) Config {
	c.SystemPrompt = prompt
	return c
}

// WithLLM returns a copy with the LLM model set.
func (c Config) WithLLM(model string) Config {
	c.LLMModel = model
	return c
}

// WithTTS returns a copy with the TTS voice set.
func (c Config) WithTTS(model string) Config {
	c.TTSModel = model
	return c
}

// WithVAD returns a copy with the turn-end silence duration set.
func (c Config) WithVAD(silenceDuration time.Duration) Config {
	c.VADSilenceDuration = silenceDuration
	return c
}

// WithDebug returns a copy with debug enabled.
func (c Config) WithDebug(debug bool) Config {
	c.Debug = debug
	return c
}

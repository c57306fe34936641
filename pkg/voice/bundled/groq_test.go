package bundled

import (
	"testing"

	"github.com/openai/openai-go"

	"github.com/dineai/go-dineai/internal/log"
	"github.com/dineai/go-dineai/pkg/voice"
)

func newTestLLM(t *testing.T) *groqLLM {
	t.Helper()

	cfg := voice.DefaultConfig().
		WithKeys("dg", "gq").
		WithSystemPrompt("You are a booking assistant")
	return newGroqLLM(cfg, log.Component("test"))
}

func TestLLMSeedsSystemPrompt(t *testing.T) {
	l := newTestLLM(t)

	if len(l.messages) != 1 {
		t.Fatalf("expected 1 seeded message, got %d", len(l.messages))
	}
}

func TestLLMRegisterTool(t *testing.T) {
	l := newTestLLM(t)

	l.registerTool(voice.Tool{
		Name:        "get_weather",
		Description: "Get the weather forecast for a booking date",
		Parameters: map[string]any{
			"date": map[string]any{"type": "string"},
		},
		Required: []string{"date"},
	})
	l.registerTool(voice.Tool{
		Name:        "create_booking",
		Description: "Save a confirmed booking",
	})

	if len(l.tools) != 2 {
		t.Fatalf("expected 2 tool definitions, got %d", len(l.tools))
	}

	fn := l.tools[0].Function
	if fn.Name != "get_weather" {
		t.Errorf("unexpected tool name %q", fn.Name)
	}
	if fn.Parameters["type"] != "object" {
		t.Errorf("tool parameters missing object wrapper: %v", fn.Parameters)
	}
}

func TestLLMResetKeepsSystemPrompt(t *testing.T) {
	l := newTestLLM(t)

	l.mu.Lock()
	l.messages = append(l.messages,
		openai.UserMessage("table for two"),
		openai.AssistantMessage("Of course, what date?"))
	l.mu.Unlock()

	l.reset()

	l.mu.Lock()
	n := len(l.messages)
	l.mu.Unlock()
	if n != 1 {
		t.Errorf("expected only the system prompt after reset, got %d messages", n)
	}
}

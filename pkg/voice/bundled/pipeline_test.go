package bundled

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dineai/go-dineai/pkg/voice"
)

func TestNewDeepgramGroqRequiresKeys(t *testing.T) {
	cfg := voice.DefaultConfig()

	if _, err := NewDeepgramGroq(cfg); !errors.Is(err, voice.ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}

	cfg = cfg.WithKeys("dg", "gq")
	p, err := NewDeepgramGroq(cfg)
	if err != nil {
		t.Fatalf("NewDeepgramGroq() error = %v", err)
	}
	if p.IsConnected() {
		t.Error("pipeline should not be connected before Start")
	}
}

func TestFactoryRegistered(t *testing.T) {
	cfg := voice.DefaultConfig().WithKeys("dg", "gq")

	p, err := voice.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := p.(*DeepgramGroq); !ok {
		t.Errorf("expected *DeepgramGroq, got %T", p)
	}
}

func TestRunToolInternalHandler(t *testing.T) {
	p, err := NewDeepgramGroq(voice.DefaultConfig().WithKeys("dg", "gq"))
	if err != nil {
		t.Fatal(err)
	}

	p.RegisterTool(voice.Tool{
		Name: "get_weather",
		Handler: func(args map[string]any) (string, error) {
			return "Clear, 30 degrees", nil
		},
	})
	p.RegisterTool(voice.Tool{
		Name: "create_booking",
		Handler: func(args map[string]any) (string, error) {
			return "", errors.New("backend unreachable")
		},
	})

	got := p.runTool(voice.ToolCall{ID: "1", Name: "get_weather"})
	if got != "Clear, 30 degrees" {
		t.Errorf("unexpected tool result %q", got)
	}

	got = p.runTool(voice.ToolCall{ID: "2", Name: "create_booking"})
	if got != "Error: backend unreachable" {
		t.Errorf("unexpected error result %q", got)
	}

	got = p.runTool(voice.ToolCall{ID: "3", Name: "no_such_tool"})
	if got != "Function not found" {
		t.Errorf("unexpected unknown-tool result %q", got)
	}

	if m := p.Metrics(); m.ToolCalls != 3 {
		t.Errorf("expected 3 tool calls counted, got %d", m.ToolCalls)
	}
}

func TestRunToolExternalHandler(t *testing.T) {
	p, err := NewDeepgramGroq(voice.DefaultConfig().WithKeys("dg", "gq"))
	if err != nil {
		t.Fatal(err)
	}

	// External handling must work on a pipeline that was never started.
	p.OnToolCall(func(call voice.ToolCall) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			if err := p.SubmitToolResult(call.ID, "Clear, 30 degrees"); err != nil {
				t.Errorf("SubmitToolResult() error = %v", err)
			}
		}()
	})

	got := p.runTool(voice.ToolCall{ID: "ext-1", Name: "get_weather"})
	if got != "Clear, 30 degrees" {
		t.Errorf("unexpected external tool result %q", got)
	}

	p.pendingMu.Lock()
	pending := len(p.pendingCalls)
	p.pendingMu.Unlock()
	if pending != 0 {
		t.Errorf("expected no pending calls after result, got %d", pending)
	}
}

func TestRunToolExternalHandlerSessionClosed(t *testing.T) {
	p, err := NewDeepgramGroq(voice.DefaultConfig().WithKeys("dg", "gq"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	p.OnToolCall(func(call voice.ToolCall) { cancel() })

	got := p.runTool(voice.ToolCall{ID: "ext-2", Name: "get_weather"})
	if got != "Error: session closed" {
		t.Errorf("unexpected result %q", got)
	}

	p.pendingMu.Lock()
	pending := len(p.pendingCalls)
	p.pendingMu.Unlock()
	if pending != 0 {
		t.Errorf("cancellation left %d pending calls", pending)
	}
}

func TestSubmitToolResultWithoutPendingCall(t *testing.T) {
	p, err := NewDeepgramGroq(voice.DefaultConfig().WithKeys("dg", "gq"))
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SubmitToolResult("missing", "ok"); err == nil {
		t.Error("expected error for unknown call ID")
	}
}

func TestTranscriptAccumulation(t *testing.T) {
	p, err := NewDeepgramGroq(voice.DefaultConfig().WithKeys("dg", "gq"))
	if err != nil {
		t.Fatal(err)
	}

	var finals []string
	p.OnTranscript(func(text string, isFinal bool) {
		if isFinal {
			finals = append(finals, text)
		}
	})

	p.handleTranscript("book a table", true, false)
	p.handleTranscript("for two people", true, false)

	if len(finals) != 2 {
		t.Fatalf("expected 2 final transcripts, got %d", len(finals))
	}

	p.mu.Lock()
	got := p.transcript.String()
	p.mu.Unlock()
	if got != "book a table for two people" {
		t.Errorf("unexpected accumulated transcript %q", got)
	}
}

func TestEndTurnIgnoresEmptyTranscript(t *testing.T) {
	p, err := NewDeepgramGroq(voice.DefaultConfig().WithKeys("dg", "gq"))
	if err != nil {
		t.Fatal(err)
	}

	spoke := false
	p.OnSpeechEnd(func() { spoke = true })

	p.endTurn()
	if spoke {
		t.Error("endTurn should be a no-op with no transcript")
	}
}

func TestSTTMessageDecoding(t *testing.T) {
	raw := `{
		"type": "Results",
		"is_final": true,
		"speech_final": true,
		"channel": {"alternatives": [{"transcript": "table for four at seven"}]}
	}`

	var msg sttMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if msg.Type != "Results" || !msg.IsFinal || !msg.SpeechFinal {
		t.Errorf("unexpected flags in %+v", msg)
	}
	if msg.Channel.Alternatives[0].Transcript != "table for four at seven" {
		t.Errorf("unexpected transcript %q", msg.Channel.Alternatives[0].Transcript)
	}
}

package bundled

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dineai/go-dineai/internal/log"
	"github.com/dineai/go-dineai/pkg/voice"
)

func init() {
	voice.Register(voice.ProviderDeepgramGroq, func(cfg voice.Config) (voice.Pipeline, error) {
		return NewDeepgramGroq(cfg)
	})
}

// audioChunkSize is the size of PCM16 chunks emitted to OnAudioOut.
const audioChunkSize = 4096

// toolResultTimeout bounds how long a turn waits for an externally
// handled tool call before giving up.
const toolResultTimeout = 30 * time.Second

// DeepgramGroq is a composed voice pipeline: Deepgram streaming STT
// (which also provides voice activity events), Groq chat completions,
// and Deepgram TTS.
type DeepgramGroq struct {
	config voice.Config
	logger *slog.Logger

	stt *deepgramSTT
	tts *deepgramTTS
	llm *groqLLM

	mu        sync.RWMutex
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc

	// One conversation turn runs at a time.
	turnMu      sync.Mutex
	transcript  strings.Builder
	interrupted atomic.Bool

	tools        map[string]voice.Tool
	pendingCalls map[string]chan string
	pendingMu    sync.Mutex

	metrics *voice.MetricsCollector

	onAudioOut    func(pcm16 []byte)
	onSpeechStart func()
	onSpeechEnd   func()
	onTranscript  func(text string, isFinal bool)
	onResponse    func(text string, isFinal bool)
	onToolCall    func(call voice.ToolCall)
	onError       func(err error)
}

// NewDeepgramGroq creates the composed pipeline. Connections are not
// opened until Start.
func NewDeepgramGroq(cfg voice.Config) (*DeepgramGroq, error) {
	if cfg.DeepgramKey == "" || cfg.GroqKey == "" {
		return nil, voice.ErrMissingAPIKey
	}

	return &DeepgramGroq{
		config:       cfg,
		logger:       log.Component("voice.pipeline"),
		tools:        make(map[string]voice.Tool),
		pendingCalls: make(map[string]chan string),
		metrics:      voice.NewMetricsCollector(),
	}, nil
}

// Start connects to Deepgram and prepares the LLM session.
func (p *DeepgramGroq) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.connected {
		p.mu.Unlock()
		return voice.ErrAlreadyStarted
	}
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)

	p.llm = newGroqLLM(p.config, p.logger)
	p.tts = newDeepgramTTS(p.config, p.logger)
	p.stt = newDeepgramSTT(p.config, sttEvents{
		onTranscript:   p.handleTranscript,
		onSpeechStart:  p.handleSpeechStart,
		onUtteranceEnd: p.handleUtteranceEnd,
		onError:        p.emitError,
	}, p.logger)

	if err := p.stt.connect(runCtx); err != nil {
		cancel()
		return err
	}

	p.mu.Lock()
	p.ctx = runCtx
	p.cancel = cancel
	p.connected = true
	p.mu.Unlock()

	p.logger.Info("pipeline started",
		"stt_model", p.config.STTModel,
		"llm_model", p.config.LLMModel,
		"tts_model", p.config.TTSModel)

	return nil
}

// Stop tears down connections. Safe to call more than once.
func (p *DeepgramGroq) Stop() error {
	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()
		return nil
	}
	p.connected = false
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	err := p.stt.close()

	// Conversation history does not survive a stop.
	if p.llm != nil {
		p.llm.reset()
	}

	p.logger.Info("pipeline stopped")
	return err
}

// IsConnected reports whether the pipeline is running.
func (p *DeepgramGroq) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// SendAudio forwards caller audio to the transcriber.
func (p *DeepgramGroq) SendAudio(pcm16 []byte) error {
	if !p.IsConnected() {
		return voice.ErrNotConnected
	}
	p.metrics.IncrementAudioIn()
	return p.stt.sendAudio(pcm16)
}

// OnAudioOut sets the synthesized audio callback.
func (p *DeepgramGroq) OnAudioOut(fn func(pcm16 []byte)) { p.onAudioOut = fn }

// OnSpeechStart sets the speech start callback.
func (p *DeepgramGroq) OnSpeechStart(fn func()) { p.onSpeechStart = fn }

// OnSpeechEnd sets the speech end callback.
func (p *DeepgramGroq) OnSpeechEnd(fn func()) { p.onSpeechEnd = fn }

// OnTranscript sets the caller transcript callback.
func (p *DeepgramGroq) OnTranscript(fn func(text string, isFinal bool)) { p.onTranscript = fn }

// OnResponse sets the assistant response callback.
func (p *DeepgramGroq) OnResponse(fn func(text string, isFinal bool)) { p.onResponse = fn }

// OnError sets the error callback.
func (p *DeepgramGroq) OnError(fn func(err error)) { p.onError = fn }

// RegisterTool adds a tool the model can invoke. Must be called
// before Start.
func (p *DeepgramGroq) RegisterTool(tool voice.Tool) {
	p.mu.Lock()
	p.tools[tool.Name] = tool
	p.mu.Unlock()
}

// OnToolCall sets an external tool handler. When set, registered
// handlers are bypassed and the turn waits for SubmitToolResult.
func (p *DeepgramGroq) OnToolCall(fn func(call voice.ToolCall)) { p.onToolCall = fn }

// SubmitToolResult completes an externally handled tool call.
func (p *DeepgramGroq) SubmitToolResult(callID string, result string) error {
	p.pendingMu.Lock()
	ch, ok := p.pendingCalls[callID]
	if ok {
		delete(p.pendingCalls, callID)
	}
	p.pendingMu.Unlock()

	if !ok {
		return fmt.Errorf("voice: no pending tool call %q", callID)
	}

	ch <- result
	return nil
}

// GenerateReply has the assistant speak unprompted following the
// given instructions. Used for the opening greeting.
func (p *DeepgramGroq) GenerateReply(instructions string) error {
	if !p.IsConnected() {
		return voice.ErrNotConnected
	}

	p.turnMu.Lock()
	defer p.turnMu.Unlock()

	reply, err := p.llm.reply(p.ctx, instructions)
	if err != nil {
		return err
	}

	if p.onResponse != nil {
		p.onResponse(reply, true)
	}
	return p.speak(reply)
}

// Interrupt stops the current assistant response mid-stream.
func (p *DeepgramGroq) Interrupt() error {
	p.interrupted.Store(true)
	return nil
}

// Metrics returns latency metrics for the current turn.
func (p *DeepgramGroq) Metrics() voice.Metrics { return p.metrics.Current() }

// Config returns the pipeline configuration.
func (p *DeepgramGroq) Config() voice.Config { return p.config }

func (p *DeepgramGroq) handleSpeechStart() {
	if p.onSpeechStart != nil {
		p.onSpeechStart()
	}
}

func (p *DeepgramGroq) handleTranscript(text string, isFinal, speechFinal bool) {
	if text != "" && p.onTranscript != nil {
		p.onTranscript(text, isFinal)
	}

	if isFinal && text != "" {
		p.mu.Lock()
		if p.transcript.Len() > 0 {
			p.transcript.WriteByte(' ')
		}
		p.transcript.WriteString(text)
		p.mu.Unlock()
	}

	if speechFinal {
		p.endTurn()
	}
}

func (p *DeepgramGroq) handleUtteranceEnd() {
	p.endTurn()
}

// endTurn fires when the voice activity detector decides the caller
// finished speaking. It drains the accumulated transcript and starts
// a response turn.
func (p *DeepgramGroq) endTurn() {
	p.mu.Lock()
	text := strings.TrimSpace(p.transcript.String())
	p.transcript.Reset()
	p.mu.Unlock()

	if text == "" {
		return
	}

	p.metrics.MarkSpeechEnd()
	p.metrics.MarkTranscript()

	if p.onSpeechEnd != nil {
		p.onSpeechEnd()
	}

	go p.runTurn(text)
}

// runTurn produces and speaks one assistant response.
func (p *DeepgramGroq) runTurn(text string) {
	p.turnMu.Lock()
	defer p.turnMu.Unlock()

	p.interrupted.Store(false)

	reply, err := p.llm.respond(p.ctx, text, p.runTool)
	if err != nil {
		p.emitError(err)
		return
	}

	p.metrics.MarkFirstToken()

	if p.onResponse != nil {
		p.onResponse(reply, true)
	}

	if err := p.speak(reply); err != nil {
		p.emitError(err)
	}

	if p.config.ProfileLatency {
		m := p.metrics.Current()
		p.logger.Info("turn latency", "breakdown", m.FormatLatency())
	}
}

// runTool resolves one tool call, either through the registered
// handler or the external callback.
func (p *DeepgramGroq) runTool(call voice.ToolCall) string {
	p.metrics.IncrementToolCalls()

	if p.onToolCall != nil {
		p.mu.RLock()
		ctx := p.ctx
		p.mu.RUnlock()
		if ctx == nil {
			ctx = context.Background()
		}

		ch := make(chan string, 1)
		p.pendingMu.Lock()
		p.pendingCalls[call.ID] = ch
		p.pendingMu.Unlock()

		p.onToolCall(call)

		select {
		case result := <-ch:
			return result
		case <-time.After(toolResultTimeout):
			p.dropPendingCall(call.ID)
			return "Error: tool call timed out"
		case <-ctx.Done():
			p.dropPendingCall(call.ID)
			return "Error: session closed"
		}
	}

	p.mu.RLock()
	tool, ok := p.tools[call.Name]
	p.mu.RUnlock()

	if !ok || tool.Handler == nil {
		p.logger.Warn("unknown tool requested", "tool", call.Name)
		return "Function not found"
	}

	result, err := tool.Handler(call.Arguments)
	if err != nil {
		return "Error: " + err.Error()
	}
	return result
}

func (p *DeepgramGroq) dropPendingCall(callID string) {
	p.pendingMu.Lock()
	delete(p.pendingCalls, callID)
	p.pendingMu.Unlock()
}

// speak synthesizes the reply and streams audio chunks out.
func (p *DeepgramGroq) speak(text string) error {
	if text == "" || p.onAudioOut == nil {
		p.metrics.MarkResponseDone()
		return nil
	}

	body, err := p.tts.synthesize(p.ctx, text)
	if err != nil {
		return err
	}
	defer body.Close()

	buf := make([]byte, audioChunkSize)
	for {
		if p.interrupted.Load() {
			p.logger.Debug("response interrupted")
			break
		}

		n, err := body.Read(buf)
		if n > 0 {
			p.metrics.MarkFirstAudio()
			p.metrics.IncrementAudioOut()
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			p.onAudioOut(chunk)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("voice: read TTS stream: %w", err)
		}
	}

	p.metrics.MarkResponseDone()
	return nil
}

func (p *DeepgramGroq) emitError(err error) {
	p.logger.Error("pipeline error", "error", err)
	if p.onError != nil {
		p.onError(err)
	}
}

var _ voice.Pipeline = (*DeepgramGroq)(nil)

// Package bundled provides the concrete voice pipeline implementations.
package bundled

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dineai/go-dineai/internal/httpc"
	"github.com/dineai/go-dineai/pkg/voice"
)

const (
	deepgramListenURL = "wss://api.deepgram.com/v1/listen"
	deepgramSpeakURL  = "https://api.deepgram.com/v1/speak"

	// Deepgram requires at least 1000ms for utterance_end_ms.
	minUtteranceEndMs = 1000

	keepAliveInterval = 5 * time.Second
)

// sttEvents are the callbacks fired by the streaming transcriber.
type sttEvents struct {
	onTranscript   func(text string, isFinal, speechFinal bool)
	onSpeechStart  func()
	onUtteranceEnd func()
	onError        func(err error)
}

// deepgramSTT is a streaming speech-to-text client over WebSocket.
// Deepgram's SpeechStarted and UtteranceEnd events double as the
// pipeline's voice-activity detector.
type deepgramSTT struct {
	config voice.Config
	events sttEvents
	logger *slog.Logger

	ws   *websocket.Conn
	wsMu sync.Mutex

	mu     sync.RWMutex
	closed bool

	cancel context.CancelFunc
}

func newDeepgramSTT(cfg voice.Config, events sttEvents, logger *slog.Logger) *deepgramSTT {
	return &deepgramSTT{
		config: cfg,
		events: events,
		logger: logger.With("component", "voice.deepgram.stt"),
	}
}

// connect dials the streaming endpoint and starts the read loop.
func (d *deepgramSTT) connect(ctx context.Context) error {
	endpointingMs := int(d.config.VADSilenceDuration.Milliseconds())
	if endpointingMs <= 0 {
		endpointingMs = 500
	}
	utteranceEndMs := endpointingMs * 2
	if utteranceEndMs < minUtteranceEndMs {
		utteranceEndMs = minUtteranceEndMs
	}

	q := url.Values{}
	q.Set("model", d.config.STTModel)
	q.Set("language", d.config.STTLanguage)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(d.config.InputSampleRate))
	q.Set("channels", "1")
	q.Set("punctuate", "true")
	q.Set("interim_results", "true")
	q.Set("vad_events", "true")
	q.Set("endpointing", strconv.Itoa(endpointingMs))
	q.Set("utterance_end_ms", strconv.Itoa(utteranceEndMs))

	header := http.Header{}
	header.Set("Authorization", "Token "+d.config.DeepgramKey)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	ws, _, err := dialer.DialContext(ctx, deepgramListenURL+"?"+q.Encode(), header)
	if err != nil {
		return fmt.Errorf("voice/deepgram: connect STT: %w", err)
	}

	d.ws = ws

	loopCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.readLoop()
	go d.keepAlive(loopCtx)

	return nil
}

// sendAudio forwards a PCM16 chunk to the transcriber.
func (d *deepgramSTT) sendAudio(pcm16 []byte) error {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed || d.ws == nil {
		return voice.ErrNotConnected
	}

	d.wsMu.Lock()
	defer d.wsMu.Unlock()
	return d.ws.WriteMessage(websocket.BinaryMessage, pcm16)
}

// close finalizes the stream and tears down the connection.
func (d *deepgramSTT) close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
	}

	if d.ws == nil {
		return nil
	}

	d.wsMu.Lock()
	// Best effort; the server closes the socket after CloseStream.
	_ = d.ws.WriteJSON(map[string]string{"type": "CloseStream"})
	d.wsMu.Unlock()

	return d.ws.Close()
}

// sttMessage mirrors the subset of Deepgram's live messages we consume.
type sttMessage struct {
	Type        string `json:"type"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`
	Channel     struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (d *deepgramSTT) readLoop() {
	for {
		d.mu.RLock()
		closed := d.closed
		d.mu.RUnlock()
		if closed {
			return
		}

		_, message, err := d.ws.ReadMessage()
		if err != nil {
			d.mu.RLock()
			closed := d.closed
			d.mu.RUnlock()
			if !closed && d.events.onError != nil {
				d.events.onError(fmt.Errorf("voice/deepgram: read: %w", err))
			}
			return
		}

		var msg sttMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "Results":
			if len(msg.Channel.Alternatives) == 0 {
				continue
			}
			text := msg.Channel.Alternatives[0].Transcript
			if text == "" && !msg.SpeechFinal {
				continue
			}
			if d.events.onTranscript != nil {
				d.events.onTranscript(text, msg.IsFinal, msg.SpeechFinal)
			}

		case "SpeechStarted":
			if d.events.onSpeechStart != nil {
				d.events.onSpeechStart()
			}

		case "UtteranceEnd":
			if d.events.onUtteranceEnd != nil {
				d.events.onUtteranceEnd()
			}

		case "Metadata":
			d.logger.Debug("stream metadata received")
		}
	}
}

// keepAlive pings the stream so Deepgram keeps it open through silence.
func (d *deepgramSTT) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.wsMu.Lock()
			err := d.ws.WriteJSON(map[string]string{"type": "KeepAlive"})
			d.wsMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// deepgramTTS synthesizes speech via Deepgram's REST endpoint.
type deepgramTTS struct {
	config voice.Config
	http   *http.Client
	logger *slog.Logger
}

func newDeepgramTTS(cfg voice.Config, logger *slog.Logger) *deepgramTTS {
	return &deepgramTTS{
		config: cfg,
		http:   httpc.Client,
		logger: logger.With("component", "voice.deepgram.tts"),
	}
}

// synthesize converts text to raw PCM16 audio at the output sample rate.
// The returned reader streams audio as it arrives; callers must close it.
func (t *deepgramTTS) synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	q := url.Values{}
	q.Set("model", t.config.TTSModel)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(t.config.OutputSampleRate))
	q.Set("container", "none")

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("voice/deepgram: marshal TTS payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		deepgramSpeakURL+"?"+q.Encode(), strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("voice/deepgram: build TTS request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+t.config.DeepgramKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voice/deepgram: synthesize: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("voice/deepgram: TTS status %d: %s", resp.StatusCode, string(body))
	}

	return resp.Body, nil
}

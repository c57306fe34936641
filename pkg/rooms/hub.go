// Package rooms manages WebSocket rooms where callers talk to the
// booking assistant. Each connection gets its own agent session.
package rooms

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/dineai/go-dineai/internal/log"
	"github.com/dineai/go-dineai/internal/token"
	"github.com/dineai/go-dineai/pkg/agent"
	"github.com/dineai/go-dineai/pkg/audio"
	"github.com/dineai/go-dineai/pkg/protocol"
	"github.com/dineai/go-dineai/pkg/voice"
)

// CallerConnection represents a connected caller
type CallerConnection struct {
	ID        string
	Room      string
	Conn      *websocket.Conn
	Session   *agent.Session
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a JSON protocol message to the caller
func (c *CallerConnection) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// SendAudio sends a synthesized audio chunk as a binary frame
func (c *CallerConnection) SendAudio(pcm16 []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.BinaryMessage, pcm16)
}

// SessionFactory builds an agent session for a room connection.
type SessionFactory func(room string, cb *voice.Callbacks) (*agent.Session, error)

// NewSessionFactory returns the production factory: a pipeline from
// config with the booking tools wired to the backend.
func NewSessionFactory(cfg voice.Config, b agent.Backend) SessionFactory {
	return func(room string, cb *voice.Callbacks) (*agent.Session, error) {
		return agent.NewSession(cfg, b, agent.WithCallbacks(cb))
	}
}

// Hub manages WebSocket connections from callers
type Hub struct {
	mu      sync.RWMutex
	callers map[string]*CallerConnection

	factory SessionFactory
	secret  string // room token secret; empty disables auth
	logger  *slog.Logger

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	audioChunksIn    atomic.Uint64
	audioChunksOut   atomic.Uint64
	sessionsTotal    atomic.Uint64
}

// Option configures the hub.
type Option func(*Hub)

// WithTokenSecret enables room token verification with the given secret.
func WithTokenSecret(secret string) Option {
	return func(h *Hub) { h.secret = secret }
}

// NewHub creates a new caller hub
func NewHub(factory SessionFactory, opts ...Option) *Hub {
	h := &Hub{
		callers: make(map[string]*CallerConnection),
		factory: factory,
		logger:  log.Component("rooms.hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Caller connection endpoint
	app.Get("/ws/room/:id", websocket.New(h.handleCaller))
}

// handleCaller handles a caller WebSocket connection
func (h *Hub) handleCaller(c *websocket.Conn) {
	room := c.Params("id")

	// Callers may capture at a different rate (browsers commonly 48kHz);
	// inbound audio is resampled to the pipeline's input rate.
	callerRate := 0
	if v := c.Query("rate"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			callerRate = n
		}
	}

	if h.secret != "" {
		if _, err := token.Verify(h.secret, room, c.Query("token")); err != nil {
			h.logger.Warn("rejected connection", "room", room, "error", err)
			h.sendError(c, "invalid room token")
			c.Close()
			return
		}
	}

	caller := &CallerConnection{
		ID:        uuid.NewString(),
		Room:      room,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	cb := &voice.Callbacks{
		OnAudioOut: func(pcm16 []byte) {
			h.audioChunksOut.Add(1)
			if err := caller.SendAudio(pcm16); err != nil {
				h.logger.Debug("audio write failed", "caller", caller.ID, "error", err)
			}
		},
		OnSpeechStart: func() {
			h.sendMessage(caller, mustMessage(protocol.NewSpeechMessage("start")))
		},
		OnSpeechEnd: func() {
			h.sendMessage(caller, mustMessage(protocol.NewSpeechMessage("end")))
		},
		OnTranscript: func(text string, isFinal bool) {
			h.sendMessage(caller, mustMessage(protocol.NewTranscriptMessage(text, isFinal)))
		},
		OnResponse: func(text string, isFinal bool) {
			h.sendMessage(caller, mustMessage(protocol.NewResponseMessage(text, isFinal)))
			if isFinal && caller.Session != nil {
				m := caller.Session.Metrics()
				h.sendMessage(caller, mustMessage(protocol.NewMetricsMessage(
					m.ASRLatency, m.LLMFirstToken, m.TTSFirstAudio, m.TotalLatency)))
			}
		},
		OnError: func(err error) {
			h.sendMessage(caller, mustMessage(protocol.NewErrorMessage(err.Error())))
		},
	}

	session, err := h.factory(room, cb)
	if err != nil {
		h.logger.Error("session build failed", "room", room, "error", err)
		h.sendError(c, "could not start session")
		c.Close()
		return
	}
	caller.Session = session

	// Register caller
	h.mu.Lock()
	h.callers[caller.ID] = caller
	callerCount := len(h.callers)
	h.mu.Unlock()
	h.sessionsTotal.Add(1)

	h.logger.Info("caller connected",
		"caller", caller.ID, "room", room, "total", callerCount)

	defer func() {
		session.Stop()

		h.mu.Lock()
		delete(h.callers, caller.ID)
		callerCount := len(h.callers)
		h.mu.Unlock()

		h.logger.Info("caller disconnected",
			"caller", caller.ID, "room", room, "total", callerCount)
	}()

	cfg := session.Pipeline().Config()
	h.sendMessage(caller, mustMessage(protocol.NewSessionMessage(
		session.ID(), room, cfg.InputSampleRate, cfg.OutputSampleRate)))

	if err := session.Start(context.Background()); err != nil {
		h.logger.Error("session start failed", "room", room, "error", err)
		h.sendError(c, "could not start session")
		return
	}

	// Read loop
	for {
		msgType, data, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("read error", "caller", caller.ID, "error", err)
			return
		}

		caller.mu.Lock()
		caller.LastSeen = time.Now()
		caller.mu.Unlock()

		h.messagesReceived.Add(1)

		switch msgType {
		case websocket.BinaryMessage:
			h.audioChunksIn.Add(1)
			if callerRate != 0 && callerRate != cfg.InputSampleRate {
				data = audio.ResampleBytes(data, callerRate, cfg.InputSampleRate)
			}
			if err := session.SendAudio(data); err != nil {
				h.logger.Debug("audio forward failed", "caller", caller.ID, "error", err)
			}

		case websocket.TextMessage:
			h.handleMessage(caller, data)
		}
	}
}

// handleMessage processes an incoming JSON message from a caller
func (h *Hub) handleMessage(caller *CallerConnection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.logger.Debug("parse error", "caller", caller.ID, "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeInterrupt:
		if err := caller.Session.Interrupt(); err != nil {
			h.logger.Debug("interrupt failed", "caller", caller.ID, "error", err)
		}

	case protocol.TypePing:
		h.sendMessage(caller, mustMessage(protocol.NewPongMessage(msg.Timestamp)))
	}
}

func (h *Hub) sendMessage(caller *CallerConnection, msg *protocol.Message) {
	if msg == nil {
		return
	}
	if err := caller.Send(msg); err != nil {
		h.logger.Debug("send failed", "caller", caller.ID, "error", err)
		return
	}
	h.messagesSent.Add(1)
}

func (h *Hub) sendError(c *websocket.Conn, message string) {
	if msg, err := protocol.NewErrorMessage(message); err == nil {
		if data, err := msg.Bytes(); err == nil {
			c.WriteMessage(websocket.TextMessage, data)
		}
	}
}

func mustMessage(msg *protocol.Message, err error) *protocol.Message {
	if err != nil {
		return nil
	}
	return msg
}

// CallerCount returns the number of connected callers
func (h *Hub) CallerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.callers)
}

// GetCaller returns a connected caller by ID, or nil
func (h *Hub) GetCaller(id string) *CallerConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.callers[id]
}

// CallerInfo describes a connected caller for the API
type CallerInfo struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// GetCallerInfos returns info for all connected callers
func (h *Hub) GetCallerInfos() []CallerInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]CallerInfo, 0, len(h.callers))
	for _, caller := range h.callers {
		caller.mu.Lock()
		infos = append(infos, CallerInfo{
			ID:        caller.ID,
			Room:      caller.Room,
			Connected: caller.Connected,
			LastSeen:  caller.LastSeen,
		})
		caller.mu.Unlock()
	}
	return infos
}

// Stats holds hub counters
type Stats struct {
	CallerCount      int    `json:"caller_count"`
	SessionsTotal    uint64 `json:"sessions_total"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	AudioChunksIn    uint64 `json:"audio_chunks_in"`
	AudioChunksOut   uint64 `json:"audio_chunks_out"`
}

// GetStats returns a snapshot of hub counters
func (h *Hub) GetStats() Stats {
	return Stats{
		CallerCount:      h.CallerCount(),
		SessionsTotal:    h.sessionsTotal.Load(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		AudioChunksIn:    h.audioChunksIn.Load(),
		AudioChunksOut:   h.audioChunksOut.Load(),
	}
}

// RegisterAPIRoutes registers REST endpoints for inspecting the hub
func (h *Hub) RegisterAPIRoutes(app *fiber.App) {
	api := app.Group("/api")
	roomsAPI := api.Group("/rooms")

	// List connected callers
	roomsAPI.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"callers": h.GetCallerInfos(),
			"count":   h.CallerCount(),
		})
	})

	// Get hub stats
	roomsAPI.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})
}

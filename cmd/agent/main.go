// agent: DineAI voice booking service
// Accepts WebSocket connections from callers and runs the booking
// assistant over a Deepgram/Groq voice pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dineai/go-dineai/internal/config"
	"github.com/dineai/go-dineai/internal/log"
	"github.com/dineai/go-dineai/pkg/backend"
	"github.com/dineai/go-dineai/pkg/rooms"
	"github.com/dineai/go-dineai/pkg/voice"
	_ "github.com/dineai/go-dineai/pkg/voice/bundled"
)

var (
	version = "1.0.0"
	debug   = flag.Bool("debug", false, "Enable debug logging")
	profile = flag.Bool("profile", false, "Log per-turn latency breakdown")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		cfg.LogLevel = "debug"
	}
	log.Init(cfg.LogLevel)
	logger := log.Component("main")

	fmt.Println()
	fmt.Println("🍽️  DineAI Agent v" + version)
	fmt.Println("   Voice restaurant booking service")
	fmt.Println()

	// Missing credentials are reported, not fatal; sessions will fail
	// on first use instead.
	for _, name := range cfg.MissingCredentials() {
		logger.Warn("credential missing", "name", name)
	}

	backendClient, err := backend.NewClient(cfg.BackendAPIURL)
	if err != nil {
		logger.Error("backend client", "error", err)
		os.Exit(1)
	}

	voiceCfg := voice.DefaultConfig().
		WithKeys(cfg.DeepgramAPIKey, cfg.GroqAPIKey).
		WithDebug(*debug)
	voiceCfg.ProfileLatency = *profile

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "dineai-agent",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if *debug {
		app.Use(fiberlogger.New())
	}

	// Create caller hub
	var hubOpts []rooms.Option
	if cfg.RoomAPISecret != "" {
		hubOpts = append(hubOpts, rooms.WithTokenSecret(cfg.RoomAPISecret))
	}
	hub := rooms.NewHub(rooms.NewSessionFactory(voiceCfg, backendClient), hubOpts...)

	// Register WebSocket and API routes
	hub.RegisterRoutes(app)
	hub.RegisterAPIRoutes(app)

	// Health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version,
			"callers": hub.CallerCount(),
		})
	})

	// Metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		stats := hub.GetStats()
		return c.SendString(fmt.Sprintf(`# HELP dineai_callers Connected caller count
# TYPE dineai_callers gauge
dineai_callers %d

# HELP dineai_sessions_total Total sessions started
# TYPE dineai_sessions_total counter
dineai_sessions_total %d

# HELP dineai_messages_received Total messages received
# TYPE dineai_messages_received counter
dineai_messages_received %d

# HELP dineai_messages_sent Total messages sent
# TYPE dineai_messages_sent counter
dineai_messages_sent %d

# HELP dineai_audio_chunks_in Total caller audio chunks received
# TYPE dineai_audio_chunks_in counter
dineai_audio_chunks_in %d

# HELP dineai_audio_chunks_out Total synthesized audio chunks sent
# TYPE dineai_audio_chunks_out counter
dineai_audio_chunks_out %d
`, stats.CallerCount, stats.SessionsTotal, stats.MessagesReceived,
			stats.MessagesSent, stats.AudioChunksIn, stats.AudioChunksOut))
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("starting server",
			"addr", addr,
			"websocket", fmt.Sprintf("ws://localhost:%d/ws/room/:id", cfg.Port),
			"backend", cfg.BackendAPIURL)

		if err := app.Listen(addr); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("goodbye")
}

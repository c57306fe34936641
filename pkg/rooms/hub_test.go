package rooms

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/dineai/go-dineai/pkg/agent"
	"github.com/dineai/go-dineai/pkg/voice"
)

func mockFactory(t *testing.T) SessionFactory {
	t.Helper()

	return func(room string, cb *voice.Callbacks) (*agent.Session, error) {
		cfg := voice.DefaultConfig().WithKeys("dg", "gq")
		m := voice.NewMock(cfg)
		return agent.NewSession(cfg, nil, agent.WithPipeline(m), agent.WithCallbacks(cb))
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(mockFactory(t))

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	if hub.CallerCount() != 0 {
		t.Error("CallerCount should be 0 initially")
	}
}

func TestGetStats(t *testing.T) {
	hub := NewHub(mockFactory(t))

	stats := hub.GetStats()

	if stats.CallerCount != 0 {
		t.Error("CallerCount should be 0")
	}
	if stats.MessagesReceived != 0 {
		t.Error("MessagesReceived should be 0")
	}
	if stats.SessionsTotal != 0 {
		t.Error("SessionsTotal should be 0")
	}
}

func TestGetCallerNotFound(t *testing.T) {
	hub := NewHub(mockFactory(t))

	if caller := hub.GetCaller("nonexistent"); caller != nil {
		t.Error("GetCaller should return nil for nonexistent caller")
	}
}

func TestGetCallerInfos(t *testing.T) {
	hub := NewHub(mockFactory(t))

	if infos := hub.GetCallerInfos(); len(infos) != 0 {
		t.Error("GetCallerInfos should return empty slice initially")
	}
}

func TestWebSocketUpgradeRequired(t *testing.T) {
	hub := NewHub(mockFactory(t))

	app := fiber.New()
	hub.RegisterRoutes(app)

	// Plain HTTP request without upgrade headers must be rejected
	req := httptest.NewRequest("GET", "/ws/room/test", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426 Upgrade Required, got %d", resp.StatusCode)
	}
}

func TestAPIRoutes(t *testing.T) {
	hub := NewHub(mockFactory(t))

	app := fiber.New()
	hub.RegisterAPIRoutes(app)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/rooms/", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for caller list, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/rooms/stats", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for stats, got %d", resp.StatusCode)
	}
}

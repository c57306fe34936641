// token: Mint a room access token for testing the voice agent
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dineai/go-dineai/internal/config"
	"github.com/dineai/go-dineai/internal/token"
)

var (
	room     = flag.String("room", "dineai-test-room", "Room name")
	identity = flag.String("identity", "test-user", "Participant identity")
	ttl      = flag.Duration("ttl", token.DefaultTTL, "Token lifetime")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if cfg.RoomAPIKey == "" || cfg.RoomAPISecret == "" {
		fmt.Fprintln(os.Stderr, "ROOM_API_KEY and ROOM_API_SECRET must be set")
		os.Exit(1)
	}

	signed, err := token.Mint(cfg.RoomAPIKey, cfg.RoomAPISecret, *room, *identity, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("🎤 DineAI Room Connection Details")
	fmt.Println("=================================")
	fmt.Printf("Room:     %s\n", *room)
	fmt.Printf("Identity: %s\n", *identity)
	fmt.Printf("Expires:  %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println()
	fmt.Printf("ws://localhost:%d/ws/room/%s?token=%s\n", cfg.Port, *room, signed)
	fmt.Println()
}

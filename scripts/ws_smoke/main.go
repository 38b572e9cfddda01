// Command ws_smoke connects to a running server's realtime endpoint and
// prints every event published on one channel. Useful for eyeballing the
// fan-out path during development:
//
//	go run ./scripts/ws_smoke -addr ws://localhost:8080 -conversation 1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/ashkanrb/agenthub-server/internal/realtime"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080", "server base address")
	conversation := flag.Int64("conversation", 0, "conversation id to watch")
	user := flag.Int64("user", 0, "user id to watch for new conversations (alternative to -conversation)")
	timeout := flag.Duration("timeout", time.Minute, "total timeout for the run")
	flag.Parse()

	var channel string
	switch {
	case *conversation != 0:
		channel = realtime.ConversationChannel(*conversation)
	case *user != 0:
		channel = realtime.UserConversationsChannel(*user)
	default:
		return fmt.Errorf("pass -conversation or -user")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr+"/ws/"+channel, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	log.Printf("listening on %s", channel)
	for {
		var event json.RawMessage
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Println(string(event))
	}
}

package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"codeberg.org/sketchrelay/server/internal/logger"
	ws "codeberg.org/sketchrelay/server/internal/websocket"
)

// connects to a relay, prints everything it receives and sends each stdin
// line as one event. usage: go run ./cmd/probe -url ws://localhost:8765/
func main() {
	url := flag.String("url", "ws://localhost:8765/", "relay websocket URL")
	flag.Parse()

	fmt.Printf("Connecting to %s\n", *url)

	c, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatal("failed to connect", "url", *url, "error", err)
	}
	defer c.Close() //nolint:errcheck // defer cleanup

	fmt.Println("Connected")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})

	// read frames
	go func() {
		defer close(done)

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				logger.Warn("read failed", "error", err)
				return
			}

			printFrame(message)
		}
	}()

	// send stdin lines
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}

		close(lines)
	}()

	for {
		select {
		case <-done:
			return

		case line, ok := <-lines:
			if !ok {
				closeConn(c, done)
				return
			}

			if line == "" {
				continue
			}

			if err := ws.ValidatePayload([]byte(line)); err != nil {
				fmt.Printf("skipped: %v\n", err)
				continue
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				logger.Warn("write failed", "error", err)
				return
			}

		case <-interrupt:
			fmt.Println("\nInterrupt received, closing connection...")
			closeConn(c, done)
			return
		}
	}
}

func printFrame(message []byte) {
	if gjson.GetBytes(message, "type").String() == ws.TypeHistory {
		events := gjson.GetBytes(message, "data").Array()
		fmt.Printf("history: %d events\n", len(events))

		for i, e := range events {
			fmt.Printf("  %3d %s\n", i, e.Raw)
		}

		return
	}

	fmt.Printf("event: %s\n", message)
}

// cleanly closes the connection and waits briefly for the server's reply
func closeConn(c *websocket.Conn, done <-chan struct{}) {
	err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		logger.Warn("failed to send close frame", "error", err)
		return
	}

	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

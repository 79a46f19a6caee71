package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Manual smoke check of the two live channels against a running server:
// opens a WebSocket and an SSE consumer, triggers a puzzle penalty over
// HTTP and verifies both connections observe the same remaining value.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "http://127.0.0.1:" + port

	conn, _, err := websocket.DefaultDialer.Dial("ws://127.0.0.1:"+port+"/timer/ws", nil)
	if err != nil {
		log.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	resp, err := http.Get(base + "/timer/stream")
	if err != nil {
		log.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	readWS := func() map[string]any {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("ws read: %v", err)
		}
		var obj map[string]any
		_ = json.Unmarshal(msg, &obj)
		return obj
	}

	scanner := bufio.NewScanner(resp.Body)
	readSSE := func() map[string]any {
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var obj map[string]any
			_ = json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &obj)
			return obj
		}
		log.Fatalf("sse read: %v", scanner.Err())
		return nil
	}

	log.Printf("ws initial:  %v", readWS())
	log.Printf("sse initial: %v", readSSE())

	// wrong puzzle order -> penalty broadcast
	body := strings.NewReader(`{"positions":[8,7,6,5,4,3,2,1,0]}`)
	penResp, err := http.Post(base+"/puzzle/validate", "application/json", body)
	if err != nil {
		log.Fatalf("puzzle validate: %v", err)
	}
	penResp.Body.Close()

	wsFrame := waitFor(readWS, "penalty")
	sseFrame := waitFor(readSSE, "penalty")
	log.Printf("ws penalty:  %v", wsFrame)
	log.Printf("sse penalty: %v", sseFrame)

	if fmt.Sprint(wsFrame["remaining"]) != fmt.Sprint(sseFrame["remaining"]) {
		log.Fatalf("transports disagree: ws=%v sse=%v", wsFrame["remaining"], sseFrame["remaining"])
	}

	log.Println("smoke test finished")
}

func waitFor(read func() map[string]any, frameType string) map[string]any {
	for i := 0; i < 10; i++ {
		frame := read()
		if frame["type"] == frameType {
			return frame
		}
	}
	log.Fatalf("no %s frame within 10 frames", frameType)
	return nil
}

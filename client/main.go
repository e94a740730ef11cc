// Headless bot swarm for load-testing a running server: each bot joins the
// target room and random-walks at a fixed cadence.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type moveFrame struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type serverFrame struct {
	Type string `json:"type"`
}

func main() {
	var (
		addr     string
		roomID   string
		bots     int
		interval time.Duration
	)
	flag.StringVar(&addr, "addr", "localhost:8080", "server host:port")
	flag.StringVar(&roomID, "room", "poc_world", "room to join")
	flag.IntVar(&bots, "bots", 2, "number of bot connections")
	flag.DurationVar(&interval, "interval", 100*time.Millisecond, "move send interval")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	var wg sync.WaitGroup
	for i := 0; i < bots; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			runBot(addr, roomID, n, interval, interrupt)
		}(i)
	}
	wg.Wait()
}

func runBot(addr, roomID string, n int, interval time.Duration, interrupt <-chan os.Signal) {
	name := fmt.Sprintf("Bot-%03d", n)
	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/ws",
		RawQuery: url.Values{"roomId": {roomID}, "name": {name}}.Encode(),
	}
	log.Printf("[%s] connecting to %s", name, u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Printf("[%s] dial failed: %v", name, err)
		return
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop: count frames by type so throughput problems show up fast.
	go func() {
		defer close(done)
		counts := make(map[string]int)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Printf("[%s] read error: %v (frames: %v)", name, err, counts)
				return
			}
			var f serverFrame
			if err := json.Unmarshal(message, &f); err != nil {
				continue
			}
			counts[f.Type]++
			if counts[f.Type]%100 == 1 {
				log.Printf("[%s] received %d %s frames", name, counts[f.Type], f.Type)
			}
		}
	}()

	x := rand.Float64()*300 + 50
	y := rand.Float64()*300 + 50
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		case <-ticker.C:
			// Random walk, clamped to steps the validator accepts.
			x += rand.Float64()*30 - 15
			y += rand.Float64()*30 - 15
			if x < 0 {
				x = 0
			}
			if y < 0 {
				y = 0
			}
			b, _ := json.Marshal(moveFrame{Type: "move", X: x, Y: y})
			if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Printf("[%s] write error: %v", name, err)
				return
			}
		}
	}
}

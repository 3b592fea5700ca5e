// Command feedload opens many live feed sockets against a running API, has
// each one change its search on an interval and reports how many feed
// snapshots came back.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var searches = []map[string]string{
	{"category": "job"},
	{"category": "room"},
	{"category": "job", "q": "kathmandu"},
	{"category": "job", "min_salary": "30000"},
	{"category": "job", "type": "Part-time"},
	{"category": "room", "q": "lalitpur"},
}

type stats struct {
	connected atomic.Int64
	failed    atomic.Int64
	sent      atomic.Int64
	feeds     atomic.Int64

	mu         sync.Mutex
	firstFeeds []time.Duration
}

func (s *stats) firstFeed(d time.Duration) {
	s.mu.Lock()
	s.firstFeeds = append(s.firstFeeds, d)
	s.mu.Unlock()
}

func (s *stats) report(clients int) {
	log.Printf("sockets:   %d/%d connected, %d failed", s.connected.Load(), clients, s.failed.Load())
	log.Printf("criteria:  %d sent", s.sent.Load())
	log.Printf("snapshots: %d received", s.feeds.Load())

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.firstFeeds) == 0 {
		return
	}
	sort.Slice(s.firstFeeds, func(i, j int) bool { return s.firstFeeds[i] < s.firstFeeds[j] })
	pct := func(p float64) time.Duration { return s.firstFeeds[int(p*float64(len(s.firstFeeds)-1))] }
	log.Printf("first snapshot: p50 %v  p95 %v  max %v", pct(0.5), pct(0.95), pct(1))
}

type api struct {
	host string
	http *http.Client
}

func (a api) post(ctx context.Context, path, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+a.host+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// seekerTicket signs up a throwaway seeker and trades its token for a
// websocket ticket.
func (a api) seekerTicket(ctx context.Context) (string, error) {
	var auth struct {
		Token string `json:"token"`
	}
	if err := a.post(ctx, "/api/auth/signup", "", map[string]string{
		"email":    "load-" + uuid.NewString()[:8] + "@example.com",
		"password": "password123",
	}, &auth); err != nil {
		return "", err
	}
	if err := a.post(ctx, "/api/profile", auth.Token, map[string]string{"role": "seeker"}, nil); err != nil {
		return "", err
	}
	var t struct {
		Ticket string `json:"ticket"`
	}
	if err := a.post(ctx, "/api/ws/ticket", auth.Token, nil, &t); err != nil {
		return "", err
	}
	return t.Ticket, nil
}

func feedURL(host, ticket string, search map[string]string) string {
	q := url.Values{"ticket": {ticket}}
	for k, v := range search {
		q.Set(k, v)
	}
	return (&url.URL{Scheme: "ws", Host: host, Path: "/api/ws/feed", RawQuery: q.Encode()}).String()
}

func runSocket(ctx context.Context, a api, id int, interval time.Duration, st *stats) error {
	ticket, err := a.seekerTicket(ctx)
	if err != nil {
		return fmt.Errorf("client %d: %w", id, err)
	}

	start := time.Now()
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, feedURL(a.host, ticket, searches[id%len(searches)]), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("client %d: dial: %w", id, err)
	}
	defer func() { _ = conn.Close() }()
	st.connected.Add(1)

	go func() {
		first := true
		for {
			var msg struct {
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type != "feed" {
				continue
			}
			if first {
				st.firstFeed(time.Since(start))
				first = false
			}
			st.feeds.Add(1)
		}
	}()

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for n := id + 1; ; n++ {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case <-tick.C:
			if err := conn.WriteJSON(map[string]any{"type": "criteria", "payload": searches[n%len(searches)]}); err != nil {
				return fmt.Errorf("client %d: write: %w", id, err)
			}
			st.sent.Add(1)
		}
	}
}

func main() {
	host := flag.String("host", "localhost:8080", "API host")
	clients := flag.Int("clients", 50, "Concurrent sockets, one seeker account each")
	duration := flag.Duration("duration", 30*time.Second, "How long to hold the sockets open")
	interval := flag.Duration("interval", 5*time.Second, "How often each socket changes its search")
	stagger := flag.Duration("stagger", 50*time.Millisecond, "Delay between signups")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	log.Printf("feed load: %d sockets against %s for %v", *clients, *host, *duration)

	a := api{host: *host, http: &http.Client{Timeout: 5 * time.Second}}
	st := &stats{}
	var g errgroup.Group
	for i := 0; i < *clients; i++ {
		g.Go(func() error {
			err := runSocket(ctx, a, i, *interval, st)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				st.failed.Add(1)
				log.Print(err)
			}
			return nil
		})
		select {
		case <-ctx.Done():
		case <-time.After(*stagger):
		}
	}
	_ = g.Wait()

	st.report(*clients)
}

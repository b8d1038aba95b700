package realtime

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Event names delivered over the backend's event stream. Events are
// at-least-once, unordered, content-free notifications: a trigger to
// re-fetch, never a payload to apply.
const (
	EventNewOrder           = "new_order"
	EventOrderStatusUpdated = "order_status_updated"
	EventBannersUpdated     = "banners_updated"
)

// Handler receives the name of each delivered event.
type Handler func(event string)

// ChannelClient maintains a single long-lived SSE connection to the backend
// event stream. It connects lazily on Connect, reconnects forever with
// exponential backoff, and is a freshness optimization only: when it is
// down, pull-based refresh keeps the system correct.
type ChannelClient struct {
	url     string
	token   string
	client  *http.Client
	handler Handler

	minBackoff time.Duration
	maxBackoff time.Duration

	mu        sync.Mutex
	started   bool
	connected bool
	onState   func(connected bool)
	onRetry   func()
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewChannelClient(url, token string, handler Handler) *ChannelClient {
	return &ChannelClient{
		url:        url,
		token:      token,
		client:     &http.Client{},
		handler:    handler,
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
		done:       make(chan struct{}),
	}
}

// SetBackoff overrides the reconnect window. Zero values keep the defaults.
func (c *ChannelClient) SetBackoff(min, max time.Duration) {
	if min > 0 {
		c.minBackoff = min
	}
	if max > 0 {
		c.maxBackoff = max
	}
}

// OnStateChange registers a callback for connect/disconnect transitions,
// e.g. a passive "live updates paused" indicator. Must be set before Connect.
func (c *ChannelClient) OnStateChange(fn func(connected bool)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// OnReconnect registers a callback invoked before each reconnect attempt
// after the first. Must be set before Connect.
func (c *ChannelClient) OnReconnect(fn func()) {
	c.mu.Lock()
	c.onRetry = fn
	c.mu.Unlock()
}

// Connect starts the stream goroutine. Idempotent; the connection itself is
// established lazily inside the loop and retried indefinitely.
func (c *ChannelClient) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)
}

// Connected reports the current channel state.
func (c *ChannelClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close tears the connection down and stops reconnecting.
func (c *ChannelClient) Close() {
	c.mu.Lock()
	cancel := c.cancel
	started := c.started
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if started {
		<-c.done
	}
}

func (c *ChannelClient) run(ctx context.Context) {
	defer close(c.done)

	backoff := c.minBackoff
	attempt := 0
	for {
		if attempt > 0 {
			c.mu.Lock()
			retry := c.onRetry
			c.mu.Unlock()
			if retry != nil {
				retry()
			}
		}
		attempt++

		handshake, err := c.stream(ctx)
		if ctx.Err() != nil {
			return
		}
		if handshake {
			// Clean connect: the next outage starts from the floor again.
			backoff = c.minBackoff
		}
		log.Printf("event channel disconnected, retrying in %s: %v", backoff, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}
}

// stream holds one connection open and dispatches event names until it
// drops. handshake reports whether the subscription was accepted at all.
func (c *ChannelClient) stream(ctx context.Context) (handshake bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("event stream rejected with status %s", resp.Status)
	}

	c.setConnected(true)
	defer c.setConnected(false)

	scanner := bufio.NewScanner(resp.Body)
	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank line terminates one SSE message.
			if event != "" && c.handler != nil {
				c.handler(event)
			}
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		default:
			// data:, id:, retry: and comments carry nothing we trust.
		}
	}
	if err := scanner.Err(); err != nil {
		return true, err
	}
	return true, fmt.Errorf("event stream closed by server")
}

func (c *ChannelClient) setConnected(v bool) {
	c.mu.Lock()
	changed := c.connected != v
	c.connected = v
	fn := c.onState
	c.mu.Unlock()
	if changed && fn != nil {
		fn(v)
	}
}

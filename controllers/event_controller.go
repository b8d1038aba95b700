package controllers

import (
	"io"
	"sync"

	"github.com/gin-gonic/gin"
)

// EventHub fans event names out to every connected SSE subscriber. Delivery
// is best-effort: a slow subscriber's buffer overflowing drops the signal,
// which is fine because clients re-pull on the next event or poll anyway.
type EventHub struct {
	mu      sync.Mutex
	subs    map[int]chan string
	nextSub int
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[int]chan string)}
}

func (h *EventHub) Publish(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Watch returns a subscription that is never detached, for in-process
// observers such as tests and the demo generator log.
func (h *EventHub) Watch() <-chan string {
	_, ch := h.subscribe()
	return ch
}

func (h *EventHub) subscribe() (int, chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	ch := make(chan string, 8)
	h.subs[id] = ch
	return id, ch
}

func (h *EventHub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, id)
}

type EventController struct {
	hub *EventHub
}

func NewEventController(hub *EventHub) *EventController {
	return &EventController{hub: hub}
}

// Stream holds an SSE connection open and forwards event names. Events are
// content-free by contract; the data field is a placeholder.
func (ctrl *EventController) Stream(c *gin.Context) {
	id, ch := ctrl.hub.subscribe()
	defer ctrl.hub.unsubscribe(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case event := <-ch:
			c.SSEvent(event, "{}")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

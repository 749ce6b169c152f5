// Package events provides event handling functionality
package events

import (
	"context"
	"sync"

	"github.com/celestiaorg/echo-agent/internal/logger"
)

// EventType represents the type of job event
type EventType string

const (
	// EventJobCompleted is emitted when a paid job reaches the completed state
	EventJobCompleted EventType = "job_completed"
	// EventJobFailed is emitted when a job reaches the failed state
	EventJobFailed EventType = "job_failed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a job lifecycle event
type Event struct {
	Type        EventType // The type of event
	JobID       string    // The job ID
	PaymentID   string    // The payment ID, empty for direct jobs
	RequesterID string    // The identifier of the purchaser
	Result      string    // The job result for completed jobs
	Error       string    // The failure reason for failed jobs
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

// Publisher is the part of the bus the job service depends on
type Publisher interface {
	Publish(event Event)
}

// Bus dispatches published events to subscribed handlers in the background
type Bus struct {
	handlers   map[EventType][]Handler
	handlersMu sync.RWMutex
	eventChan  chan Event
	wg         sync.WaitGroup
}

var _ Publisher = &Bus{}

// NewBus creates an event bus with a buffered event channel
func NewBus() *Bus {
	return &Bus{
		handlers:  make(map[EventType][]Handler),
		eventChan: make(chan Event, EventChannelSize),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	logger.Debugf("📝 Registered handler for event type: %s", eventType)
}

// Publish sends an event to be processed. It never blocks: when the buffer is
// full the event is dropped and logged.
func (b *Bus) Publish(event Event) {
	select {
	case b.eventChan <- event:
		logger.Debugf("📢 Published event: %s (Job: %s)", event.Type, event.JobID)
	default:
		logger.Errorf("❌ Event buffer full, dropping event %s for job %s", event.Type, event.JobID)
	}
}

// Start starts the event processing loop
func (b *Bus) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.processEvents(ctx)
	logger.Info("🎯 Started event processing loop")
}

// Wait blocks until the processing loop and all in-flight handlers have returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// processEvents handles events in the background
func (b *Bus) processEvents(ctx context.Context) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			logger.Info("🛑 Stopping event processing loop")
			return
		case event := <-b.eventChan:
			logger.Debugf("📥 Received event %s for job %s", event.Type, event.JobID)
			b.handlersMu.RLock()
			eventHandlers := b.handlers[event.Type]
			b.handlersMu.RUnlock()

			// Process event with all registered handlers
			for _, handler := range eventHandlers {
				b.wg.Add(1)
				go func(h Handler, e Event) {
					defer b.wg.Done()
					logger.Debugf("⚡ Processing event %s for job %s", e.Type, e.JobID)
					if err := h(ctx, e); err != nil {
						logger.Errorf("❌ Failed to handle event %s for job %s: %v", e.Type, e.JobID, err)
					} else {
						logger.Debugf("✅ Successfully processed event %s for job %s", e.Type, e.JobID)
					}
				}(handler, event)
			}
		}
	}
}

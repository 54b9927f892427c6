// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package event is an in-process publish/subscribe bus used to report
// application and anchoring outcomes to interested components.
package event

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	EventQueueSize      = 20
	AsyncQueueSize      = 1000
	AsyncWorkerPoolSize = 2
)

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

var errSubscriberFull = errors.New("subscriber buffer full")

type EventBus struct {
	logger      *slog.Logger
	metrics     *eventMetrics
	subscribers map[EventType]map[EventSubscriberId]*subscriber
	lastSubId   EventSubscriberId
	mu          sync.RWMutex
	asyncQueue  chan Event
	asyncWg     sync.WaitGroup
	handlerWg   sync.WaitGroup
	stopCh      chan struct{}
	stopMu      sync.RWMutex
	stopped     bool
}

// NewEventBus creates an EventBus and starts its async delivery workers. A
// nil registry disables metrics.
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		logger:      logger.With("component", "event"),
		subscribers: make(map[EventType]map[EventSubscriberId]*subscriber),
		asyncQueue:  make(chan Event, AsyncQueueSize),
		stopCh:      make(chan struct{}),
	}
	if promRegistry != nil {
		e.metrics = newEventMetrics(promRegistry)
	}
	for range AsyncWorkerPoolSize {
		e.asyncWg.Add(1)
		go e.asyncWorker()
	}
	return e
}

func (e *EventBus) asyncWorker() {
	defer e.asyncWg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		case evt := <-e.asyncQueue:
			e.Publish(evt)
		}
	}
}

// subscriber delivers to a buffered channel without blocking. Deliveries to a
// full or closed subscriber are dropped.
type subscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func (s *subscriber) deliver(evt Event) (err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deliver panic: %v", r)
		}
	}()
	select {
	case s.ch <- evt:
		return nil
	default:
		return errSubscriberFull
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Subscribe returns a channel receiving events of the given type. The channel
// is closed by Unsubscribe or Stop. Subscribing to a stopped bus returns a
// zero ID and a closed channel.
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	return e.subscribe(eventType)
}

func (e *EventBus) subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	if e.stopped {
		ch := make(chan Event)
		close(ch)
		return 0, ch
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	sub := &subscriber{ch: make(chan Event, EventQueueSize)}
	e.lastSubId++
	subId := e.lastSubId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]*subscriber)
	}
	e.subscribers[eventType][subId] = sub
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType)).Inc()
	}
	return subId, sub.ch
}

// SubscribeFunc calls handlerFunc for each event of the given type from a
// dedicated goroutine
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	subId, evtCh := e.subscribe(eventType)
	if subId == 0 {
		return 0
	}
	e.handlerWg.Add(1)
	go func() {
		defer e.handlerWg.Done()
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// Unsubscribe stops delivery to a subscriber and closes its channel
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	sub, ok := e.subscribers[eventType][subId]
	if ok {
		delete(e.subscribers[eventType], subId)
		if len(e.subscribers[eventType]) == 0 {
			delete(e.subscribers, eventType)
		}
		if e.metrics != nil {
			e.metrics.subscribers.WithLabelValues(string(eventType)).Dec()
		}
	}
	e.mu.Unlock()
	if ok {
		sub.close()
	}
}

// Publish delivers an event to every current subscriber of its type. It never
// blocks: subscribers with a full buffer miss the event.
func (e *EventBus) Publish(evt Event) {
	e.mu.RLock()
	subs := make(map[EventSubscriberId]*subscriber, len(e.subscribers[evt.Type]))
	for id, sub := range e.subscribers[evt.Type] {
		subs[id] = sub
	}
	e.mu.RUnlock()
	for id, sub := range subs {
		err := sub.deliver(evt)
		if err == nil {
			continue
		}
		reason := "full"
		if !errors.Is(err, errSubscriberFull) {
			reason = "panic"
			e.Unsubscribe(evt.Type, id)
		}
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(string(evt.Type), reason).Inc()
		}
		e.logger.Debug(
			"event delivery error",
			"type", evt.Type,
			"subscriber", id,
			"error", err,
		)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(evt.Type)).Inc()
	}
}

// PublishAsync queues an event for delivery by the worker pool. It returns
// false when the bus is stopped or the queue is full.
func (e *EventBus) PublishAsync(evt Event) bool {
	select {
	case <-e.stopCh:
		return false
	default:
	}
	select {
	case e.asyncQueue <- evt:
		return true
	default:
		e.logger.Warn(
			"async event queue full, dropping event",
			"type", evt.Type,
		)
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(string(evt.Type), "dropped").Inc()
		}
		return false
	}
}

// Stop halts the async workers, closes every subscriber channel and waits for
// SubscribeFunc handlers to return. Queued async events are discarded.
func (e *EventBus) Stop() {
	e.stopMu.Lock()
	if e.stopped {
		e.stopMu.Unlock()
		return
	}
	e.stopped = true
	e.stopMu.Unlock()
	close(e.stopCh)
	e.asyncWg.Wait()
	e.mu.Lock()
	subs := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]*subscriber)
	e.mu.Unlock()
	for _, evtTypeSubs := range subs {
		for _, sub := range evtTypeSubs {
			sub.close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
	e.handlerWg.Wait()
}

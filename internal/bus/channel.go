package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medilint/medilint/internal/domain"
)

// requestTimeout bounds Request when the caller's context carries no
// deadline.
const requestTimeout = 30 * time.Second

// ChannelBus is the Community tier event bus, built on buffered Go
// channels inside the process. Delivery is best effort: a subscriber
// whose buffer is full misses the message.
type ChannelBus struct {
	mu      sync.RWMutex
	bufSize int
	subs    map[string][]*channelSubscription
	closed  bool
}

type channelSubscription struct {
	id      string
	topic   string
	handler domain.MessageHandler
	inbox   chan *domain.Message
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewChannelBus creates an in-process bus whose subscribers each buffer
// up to bufferSize messages.
func NewChannelBus(bufferSize int) *ChannelBus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &ChannelBus{
		bufSize: bufferSize,
		subs:    make(map[string][]*channelSubscription),
	}
}

func subKey(tenantID, topic string) string {
	return tenantID + ":" + topic
}

// Publish delivers an enveloped message to every subscriber on the
// tenant's topic without blocking the publisher.
func (b *ChannelBus) Publish(ctx context.Context, tenantID string, topic string, payload []byte) error {
	if tenantID == "" {
		return fmt.Errorf("tenantID is required")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("bus is closed")
	}
	subs := b.subs[subKey(tenantID, topic)]
	b.mu.RUnlock()

	msg := newMessage(tenantID, topic, payload)
	for _, sub := range subs {
		select {
		case sub.inbox <- msg:
		default:
			// inbox full, this subscriber misses the message
		}
	}
	return nil
}

// Subscribe registers handler for the tenant's topic. The handler runs
// on a dedicated goroutine until Unsubscribe or bus Close.
func (b *ChannelBus) Subscribe(ctx context.Context, tenantID string, topic string, handler domain.MessageHandler) (domain.Subscription, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenantID is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("bus is closed")
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &channelSubscription{
		id:      uuid.New().String(),
		topic:   topic,
		handler: handler,
		inbox:   make(chan *domain.Message, b.bufSize),
		ctx:     subCtx,
		cancel:  cancel,
	}
	go sub.drain()

	key := subKey(tenantID, topic)
	b.subs[key] = append(b.subs[key], sub)
	return sub, nil
}

// drain feeds buffered messages to the handler until cancelled.
func (s *channelSubscription) drain() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.inbox:
			if msg != nil {
				_ = s.handler(s.ctx, msg)
			}
		}
	}
}

// Request publishes on topic and waits for one reply on an ephemeral
// reply topic derived from the request.
func (b *ChannelBus) Request(ctx context.Context, tenantID string, topic string, payload []byte) ([]byte, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenantID is required")
	}

	replyCh := make(chan []byte, 1)
	replyTopic := topic + ".reply." + uuid.New().String()

	sub, err := b.Subscribe(ctx, tenantID, replyTopic, func(ctx context.Context, msg *domain.Message) error {
		select {
		case replyCh <- msg.Payload:
		default:
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	if err := b.Publish(ctx, tenantID, topic, payload); err != nil {
		return nil, err
	}

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(requestTimeout):
		return nil, fmt.Errorf("request timeout")
	}
}

// Ping reports whether the bus is still open.
func (b *ChannelBus) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("bus is closed")
	}
	return nil
}

// Close cancels every subscription. Further publishes error.
func (b *ChannelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subs {
		for _, sub := range subs {
			sub.cancel()
		}
	}
	b.subs = make(map[string][]*channelSubscription)
	return nil
}

func (s *channelSubscription) Unsubscribe() error {
	s.cancel()
	return nil
}

func (s *channelSubscription) Topic() string {
	return s.topic
}

package local

import (
	"context"
	"sync"
)

// LocalMessage is one in-process pub/sub delivery.
type LocalMessage struct {
	Channel string
	Payload string
}

// subscription is one Subscribe call: a single delivery channel that may
// be registered on several logical channels at once.
type subscription struct {
	id int64
	ch chan *LocalMessage
}

// LocalPubSub is the in-process pub/sub used when no Redis address is
// configured. Delivery is best-effort: a subscriber whose buffer is full
// misses the message rather than stalling the publisher, which is the
// right trade for countdown ticks and announcements (the next tick
// supersedes the lost one).
type LocalPubSub struct {
	mu      sync.RWMutex
	nextID  int64
	byChan  map[string]map[int64]*subscription
	bufSize int
}

// NewPubSub creates a LocalPubSub whose subscribers buffer bufSize
// messages each.
func NewPubSub(bufSize int) *LocalPubSub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &LocalPubSub{
		byChan:  make(map[string]map[int64]*subscription),
		bufSize: bufSize,
	}
}

// Publish fans the message out to every live subscriber of the channel.
func (ps *LocalPubSub) Publish(_ context.Context, channel, message string) error {
	msg := &LocalMessage{Channel: channel, Payload: message}

	ps.mu.RLock()
	defer ps.mu.RUnlock()
	for _, sub := range ps.byChan[channel] {
		select {
		case sub.ch <- msg:
		default:
			// full buffer: slow subscriber misses this message
		}
	}
	return nil
}

// Subscribe registers one delivery channel on all the given channels.
// The cancel function deregisters it and closes the delivery channel;
// calling cancel more than once is safe.
func (ps *LocalPubSub) Subscribe(_ context.Context, channels ...string) (<-chan *LocalMessage, func(), error) {
	sub := &subscription{ch: make(chan *LocalMessage, ps.bufSize)}

	ps.mu.Lock()
	ps.nextID++
	sub.id = ps.nextID
	for _, name := range channels {
		if ps.byChan[name] == nil {
			ps.byChan[name] = make(map[int64]*subscription)
		}
		ps.byChan[name][sub.id] = sub
	}
	ps.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			ps.mu.Lock()
			for _, name := range channels {
				delete(ps.byChan[name], sub.id)
				if len(ps.byChan[name]) == 0 {
					delete(ps.byChan, name)
				}
			}
			ps.mu.Unlock()
			close(sub.ch)
		})
	}

	return sub.ch, cancel, nil
}

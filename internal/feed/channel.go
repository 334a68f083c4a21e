package feed

import (
	"context"

	"go.uber.org/zap"
)

type Msg interface{ isChannelMsg() }

type Subscribe struct {
	ClientID string
	Outbox   chan Frame // where this client wants to receive frames
}

func (Subscribe) isChannelMsg() {}

type Unsubscribe struct{ ClientID string }

func (Unsubscribe) isChannelMsg() {}

type Publish struct{ Event Event }

func (Publish) isChannelMsg() {}

type Shutdown struct{}

func (Shutdown) isChannelMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isChannelMsg() {}

type View struct {
	NumSubscribers int
	Delivered      int
}

// Channel is the broadcast actor for one topic. All frames for a topic pass
// through its single loop, so events are delivered to every subscriber in
// publish order. Snapshots are taken inside the loop, which pins each
// subscriber's snapshot to a point in the event stream.
type Channel struct {
	topic     Topic
	inbox     chan Msg
	clients   map[string]chan Frame
	delivered int
	provider  SnapshotProvider
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewChannel(parent context.Context, topic Topic, provider SnapshotProvider, log *zap.Logger) *Channel {
	ctx, cancel := context.WithCancel(parent)

	c := &Channel{
		topic:    topic,
		inbox:    make(chan Msg, 64),
		clients:  make(map[string]chan Frame),
		provider: provider,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}

	go c.loop()
	return c
}

// Inbox exposes the actor mailbox to the ws layer and tests.
func (c *Channel) Inbox() chan<- Msg { return c.inbox }

func (c *Channel) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case m := <-c.inbox:
			switch msg := m.(type) {
			case Subscribe:
				snap, err := c.provider.Snapshot(c.ctx, c.topic)
				if err != nil {
					c.log.Warn("snapshot failed, dropping subscriber",
						zap.String("topic", c.topic.String()),
						zap.String("client", msg.ClientID),
						zap.Error(err))
					close(msg.Outbox)
					break
				}
				c.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Frame{Snapshot: snap}

			case Unsubscribe:
				if ch, ok := c.clients[msg.ClientID]; ok {
					close(ch)
					delete(c.clients, msg.ClientID)
				}

			case Publish:
				c.broadcast(Frame{Event: &msg.Event})
				c.delivered++

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					NumSubscribers: len(c.clients),
					Delivered:      c.delivered,
				}

			case Shutdown:
				c.shutdown()
				return
			}
		}
	}
}

func (c *Channel) shutdown() {
	for id, ch := range c.clients {
		close(ch) // tell the client no more frames
		delete(c.clients, id)
	}
	c.cancel()
}

func (c *Channel) broadcast(f Frame) {
	for id, ch := range c.clients {
		select {
		case ch <- f:
			// ok
		default:
			// Client is slow/full - drop them. They resnapshot on reconnect.
			c.log.Debug("dropping slow subscriber",
				zap.String("topic", c.topic.String()),
				zap.String("client", id))
			close(ch)
			delete(c.clients, id)
		}
	}
}

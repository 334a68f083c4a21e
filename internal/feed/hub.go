package feed

import (
	"context"

	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

type EnsureChannel struct {
	Topic Topic
	Reply chan *Channel
}

type GetChannel struct {
	Topic Topic
	Reply chan *Channel
}

type RemoveChannel struct{ Topic Topic }

type ShutdownHub struct{}

func (EnsureChannel) isHubMsg() {}
func (GetChannel) isHubMsg()    {}
func (RemoveChannel) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Hub owns one Channel per live topic.
type Hub struct {
	inbox    chan HubMsg
	channels map[string]*Channel
	provider SnapshotProvider
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, provider SnapshotProvider, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		channels: make(map[string]*Channel),
		provider: provider,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Ensure returns the topic's channel, creating it if needed.
func (h *Hub) Ensure(t Topic) *Channel {
	reply := make(chan *Channel, 1)
	h.inbox <- EnsureChannel{Topic: t, Reply: reply}
	return <-reply
}

// Publish fans an event out to the topic's current subscribers.
func (h *Hub) Publish(t Topic, ev Event) {
	h.Ensure(t).Inbox() <- Publish{Event: ev}
}

// Shutdown tears down every channel and stops the hub loop.
func (h *Hub) Shutdown() {
	h.inbox <- ShutdownHub{}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureChannel:
				if c := h.channels[msg.Topic.String()]; c != nil {
					msg.Reply <- c
					break
				}
				c := NewChannel(h.ctx, msg.Topic, h.provider, h.log)
				h.channels[msg.Topic.String()] = c
				msg.Reply <- c

			case GetChannel:
				msg.Reply <- h.channels[msg.Topic.String()] // may be nil

			case RemoveChannel:
				if c := h.channels[msg.Topic.String()]; c != nil {
					c.Inbox() <- Shutdown{}
					delete(h.channels, msg.Topic.String())
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for key, c := range h.channels {
		c.Inbox() <- Shutdown{}
		delete(h.channels, key)
	}
	h.cancel()
}

// Package client implements the request/response correlator that sits on
// top of package resp: it frames outbound commands, tracks in-flight
// replies in FIFO order, routes pub/sub push frames to subscription
// handlers, and feeds inbound bytes to a resp.Parser.
package client

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/aravinth/respwire/internal/metrics"
	"github.com/aravinth/respwire/resp"
)

// ErrPoisoned is returned by SendCommand, Subscribe, and Unsubscribe once
// the client has observed a malformed frame and given up on the
// connection.
var ErrPoisoned = errors.New("respwire: client is poisoned after a malformed frame")

// ReplyHandler receives a single decoded Value: a normal reply, a
// subscription acknowledgement, or a pub/sub message payload depending on
// how it was registered.
type ReplyHandler func(resp.Value)

type replyHandler = ReplyHandler

// WriteFunc is the byte sink a Client hands framed commands to. It is
// invoked synchronously and must not block for long, since it runs under
// the client's write lock.
type WriteFunc func([]byte)

// Client is the dispatcher described by the data model: it pairs a
// resp.Parser with a PendingQueue and a SubscriptionMap under a pair of
// locks matching the single-writer/single-reader concurrency model — a
// write lock serializing send_command and handler enqueue, and a read lock
// serializing feed and dispatch. The read side briefly takes the write
// lock to pop the pending queue or consult the subscription map.
type Client struct {
	writeCb WriteFunc

	writeMu sync.Mutex
	pending *pendingQueue
	subs    *subscriptionMap

	readMu sync.Mutex
	parser *resp.Parser

	poisoned atomic.Bool

	name string
	id   uint64

	commandsSent     atomic.Uint64
	repliesReceived  atomic.Uint64
	parseErrors      atomic.Uint64
	pushFramesRouted atomic.Uint64

	collector *metrics.Collector
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithName sets a label for the client, used to derive its numeric ID
// (via xxhash), which ID returns. Neither the label nor the ID appears in
// log lines or metrics labels. Omit it to leave the client unlabelled.
func WithName(name string) Option {
	return func(c *Client) { c.name = name }
}

// WithMetrics attaches a Prometheus collector to the client. Pass nil, or
// omit the option, to disable metrics entirely.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.collector = m }
}

// NewClient constructs a Client around writeCb, the byte sink that
// receives framed outbound commands.
func NewClient(writeCb WriteFunc, opts ...Option) *Client {
	c := &Client{
		writeCb: writeCb,
		pending: newPendingQueue(),
		subs:    newSubscriptionMap(),
		parser:  resp.NewParser(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.name != "" {
		c.id = xxhash.Sum64String(c.name)
	}
	if c.collector != nil {
		c.collector.Attach(c)
	}
	return c
}

// Name returns the label passed to WithName, or "".
func (c *Client) Name() string { return c.name }

// ID returns the xxhash of the client's name, or 0 if unnamed.
func (c *Client) ID() uint64 { return c.id }

// Poisoned reports whether the client has given up after a malformed
// frame.
func (c *Client) Poisoned() bool { return c.poisoned.Load() }

// SendCommand frames args as a RESP array of bulks and hands it to the
// write callback, after registering handler at the tail of the pending
// queue. Registration happens before the write callback runs, so a reply
// can never arrive before its handler is in place.
func (c *Client) SendCommand(args [][]byte, handler ReplyHandler) error {
	if c.poisoned.Load() {
		return ErrPoisoned
	}
	frame := encodeCommand(args)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.pending.pushBack(handler)
	c.writeCb(frame)
	c.commandsSent.Add(1)
	return nil
}

// Subscribe sends a SUBSCRIBE for channel and registers handler both as
// the channel's push-frame handler and as a one-shot pending handler for
// the subscribe acknowledgement. The source this package is based on
// drops the acknowledgement silently (it only populates the subscription
// map); this client delivers it to handler like any other reply, which the
// design notes name as the recommended improvement over source-compatible
// behavior.
func (c *Client) Subscribe(channel string, handler ReplyHandler) error {
	if c.poisoned.Load() {
		return ErrPoisoned
	}
	frame := encodeCommand([][]byte{[]byte("SUBSCRIBE"), []byte(channel)})

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.subs.set(channel, handler)
	c.pending.pushBack(handler)
	c.writeCb(frame)
	c.commandsSent.Add(1)
	return nil
}

// Unsubscribe sends an UNSUBSCRIBE for channel. handler receives the
// acknowledgement, if non-nil; the channel's subscription map entry is
// removed once the acknowledgement is observed, which the design notes
// identify as a correctness fix over the source, which never removes it.
func (c *Client) Unsubscribe(channel string, handler ReplyHandler) error {
	if c.poisoned.Load() {
		return ErrPoisoned
	}
	frame := encodeCommand([][]byte{[]byte("UNSUBSCRIBE"), []byte(channel)})

	ack := func(v resp.Value) {
		c.writeMu.Lock()
		c.subs.delete(channel)
		c.writeMu.Unlock()
		if handler != nil {
			handler(v)
		}
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.pending.pushBack(ack)
	c.writeCb(frame)
	c.commandsSent.Add(1)
	return nil
}

// Feed drives the parser over data and dispatches every completed Value.
// It returns the number of bytes consumed, which is always len(data): on
// a malformed frame, remaining bytes are drained rather than re-parsed,
// matching the "do not attempt to parse further" rule for a poisoned
// connection.
func (c *Client) Feed(data []byte) int {
	if c.poisoned.Load() {
		return len(data)
	}

	c.readMu.Lock()
	defer c.readMu.Unlock()

	total := 0
	for total < len(data) {
		consumed, status := c.parser.Feed(data[total:])
		total += consumed

		switch status {
		case resp.StatusIncomplete:
			return total
		case resp.StatusComplete:
			v := c.parser.TakeResult()
			c.repliesReceived.Add(1)
			c.dispatch(v)
		case resp.StatusMalformed:
			c.parseErrors.Add(1)
			c.poisoned.Store(true)
			c.deliverParseError()
			return len(data)
		}
	}
	return total
}

// dispatch classifies a completed Value and routes it to the correct
// handler. A "message" push frame of the expected shape goes to the
// subscription map without touching the pending queue; everything else,
// including subscribe/unsubscribe acknowledgements, pops the pending
// queue's head.
func (c *Client) dispatch(v resp.Value) {
	if h, payload, ok := c.classifyPush(v); ok {
		c.pushFramesRouted.Add(1)
		if h != nil {
			h(payload)
		}
		return
	}

	c.writeMu.Lock()
	h, ok := c.pending.popFront()
	c.writeMu.Unlock()
	if ok && h != nil {
		h(v)
	}
}

// classifyPush reports whether v is a well-formed pub/sub "message" push
// frame — an Array of exactly three elements whose first is the ASCII
// text "message". This is a purely structural check: it never consults
// PendingQueue, and never falls through to it. A message frame for a
// channel with no registered handler is dropped silently, matching
// consume_message's unconditional return on cmd == "message" regardless
// of whether a handler is registered — a well-formed push frame never
// consumes a pending command handler. A "message" array of any other
// length is not classified as a push and is dispatched as a normal reply.
func (c *Client) classifyPush(v resp.Value) (handler ReplyHandler, payload resp.Value, ok bool) {
	if v.Kind() != resp.KindArray {
		return nil, resp.Value{}, false
	}
	arr := v.AsArray()
	if len(arr) != 3 {
		return nil, resp.Value{}, false
	}
	kind := arr[0].Kind()
	if kind != resp.KindStatus && kind != resp.KindBulk {
		return nil, resp.Value{}, false
	}
	if arr[0].AsString() != "message" {
		return nil, resp.Value{}, false
	}
	channel := arr[1].AsString()
	c.writeMu.Lock()
	h, _ := c.subs.get(channel)
	c.writeMu.Unlock()
	return h, arr[2], true
}

// deliverParseError synthesizes the Error value the data model requires on
// malformation and delivers it to the head of the pending queue.
func (c *Client) deliverParseError() {
	c.writeMu.Lock()
	h, ok := c.pending.popFront()
	c.writeMu.Unlock()
	if ok && h != nil {
		h(resp.NewError("redis parse error"))
	}
}

// CommandsSent, RepliesReceived, PendingDepth, SubscriptionCount,
// ParseErrors, and PushFramesRouted implement metrics.ClientStats.

func (c *Client) CommandsSent() uint64     { return c.commandsSent.Load() }
func (c *Client) RepliesReceived() uint64  { return c.repliesReceived.Load() }
func (c *Client) ParseErrors() uint64      { return c.parseErrors.Load() }
func (c *Client) PushFramesRouted() uint64 { return c.pushFramesRouted.Load() }

func (c *Client) PendingDepth() int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.pending.len()
}

func (c *Client) SubscriptionCount() int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.subs.len()
}

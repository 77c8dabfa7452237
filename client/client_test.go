package client

import (
	"bytes"
	"testing"

	"github.com/aravinth/respwire/resp"
)

func newTestClient(t *testing.T) (*Client, *bytes.Buffer) {
	t.Helper()
	var written bytes.Buffer
	c := NewClient(func(b []byte) { written.Write(b) })
	return c, &written
}

func TestClientSendCommandFramesCorrectly(t *testing.T) {
	c, written := newTestClient(t)
	if err := c.SendCommand([][]byte{[]byte("GET"), []byte("foo")}, func(resp.Value) {}); err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}
	want := "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"
	if got := written.String(); got != want {
		t.Errorf("written = %q, want %q", got, want)
	}
}

func TestClientFIFOCorrelation(t *testing.T) {
	c, _ := newTestClient(t)
	const n = 5
	results := make([]resp.Value, n)
	for i := 0; i < n; i++ {
		idx := i
		if err := c.SendCommand([][]byte{[]byte("PING")}, func(v resp.Value) {
			results[idx] = v
		}); err != nil {
			t.Fatalf("SendCommand %d: %v", i, err)
		}
	}

	for i := 0; i < n; i++ {
		wire := []byte(":" + itoa(i) + "\r\n")
		if consumed := c.Feed(wire); consumed != len(wire) {
			t.Fatalf("Feed consumed %d, want %d", consumed, len(wire))
		}
	}

	for i := 0; i < n; i++ {
		if results[i].AsInteger() != int64(i) {
			t.Errorf("results[%d] = %v, want Integer(%d)", i, results[i], i)
		}
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func TestClientPubSubIsolation(t *testing.T) {
	c, _ := newTestClient(t)

	var messages []resp.Value
	if err := c.Subscribe("news", func(v resp.Value) {
		messages = append(messages, v)
	}); err != nil {
		t.Fatal(err)
	}

	var pingResult resp.Value
	pingDelivered := false
	if err := c.SendCommand([][]byte{[]byte("PING")}, func(v resp.Value) {
		pingResult = v
		pingDelivered = true
	}); err != nil {
		t.Fatal(err)
	}

	// Ack for the SUBSCRIBE arrives first; it pops the pending queue,
	// not the subscription map.
	ack := "*3\r\n+subscribe\r\n$4\r\nnews\r\n:1\r\n"
	c.Feed([]byte(ack))

	// A push frame for "news" must not touch the pending queue: PING's
	// reply must still be delivered next.
	push := "*3\r\n$7\r\nmessage\r\n$4\r\nnews\r\n$5\r\nhello\r\n"
	c.Feed([]byte(push))

	pingReply := "+PONG\r\n"
	c.Feed([]byte(pingReply))

	if !pingDelivered {
		t.Fatal("ping handler never invoked")
	}
	if pingResult.AsString() != "PONG" {
		t.Errorf("ping result = %v, want Status(PONG)", pingResult)
	}
	if len(messages) != 2 {
		t.Fatalf("subscription handler invoked %d times, want 2 (ack + message)", len(messages))
	}
	if messages[1].AsString() != "hello" {
		t.Errorf("push payload = %v, want Bulk(hello)", messages[1])
	}
}

func TestClientUnsubscribeRemovesSubscription(t *testing.T) {
	c, _ := newTestClient(t)
	c.Subscribe("chan1", func(resp.Value) {})
	c.Feed([]byte("*3\r\n+subscribe\r\n$5\r\nchan1\r\n:1\r\n"))

	if c.SubscriptionCount() != 1 {
		t.Fatalf("SubscriptionCount() = %d, want 1", c.SubscriptionCount())
	}

	unsubAcked := false
	c.Unsubscribe("chan1", func(resp.Value) { unsubAcked = true })
	c.Feed([]byte("*3\r\n+unsubscribe\r\n$5\r\nchan1\r\n:0\r\n"))

	if !unsubAcked {
		t.Error("unsubscribe handler never invoked")
	}
	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after unsubscribe, want 0", c.SubscriptionCount())
	}

	// A structurally valid "message" frame for the now-unsubscribed
	// channel must be dropped silently: it is never allowed to consume a
	// pending command handler, even though no subscription handler
	// remains to receive it.
	var pingResult resp.Value
	pingDelivered := false
	c.SendCommand([][]byte{[]byte("PING")}, func(v resp.Value) {
		pingResult = v
		pingDelivered = true
	})
	if depthBefore := c.PendingDepth(); depthBefore != 1 {
		t.Fatalf("PendingDepth() = %d before stray push, want 1", depthBefore)
	}

	c.Feed([]byte("*3\r\n$7\r\nmessage\r\n$5\r\nchan1\r\n$3\r\nfoo\r\n"))

	if depthAfter := c.PendingDepth(); depthAfter != 1 {
		t.Fatalf("PendingDepth() = %d after stray push, want 1 (untouched)", depthAfter)
	}
	if pingDelivered {
		t.Fatal("stray push delivered PING's pending handler instead of dropping silently")
	}

	c.Feed([]byte("+PONG\r\n"))
	if !pingDelivered || pingResult.AsString() != "PONG" {
		t.Errorf("PING reply after stray push = delivered=%v value=%v, want delivered=true value=Status(PONG)", pingDelivered, pingResult)
	}
}

func TestClientMalformedPoisonsAndDeliversParseError(t *testing.T) {
	c, _ := newTestClient(t)

	var delivered resp.Value
	c.SendCommand([][]byte{[]byte("GET"), []byte("x")}, func(v resp.Value) {
		delivered = v
	})

	consumed := c.Feed([]byte("X garbage\r\n"))
	if consumed != len("X garbage\r\n") {
		t.Errorf("consumed = %d, want full drain of %d", consumed, len("X garbage\r\n"))
	}
	if !delivered.IsError() || delivered.AsString() != "redis parse error" {
		t.Errorf("delivered = %v, want Error(redis parse error)", delivered)
	}
	if !c.Poisoned() {
		t.Error("client not marked poisoned after malformed frame")
	}

	if err := c.SendCommand([][]byte{[]byte("PING")}, func(resp.Value) {}); err != ErrPoisoned {
		t.Errorf("SendCommand after poisoning returned %v, want ErrPoisoned", err)
	}

	// Further feeds must not resurrect the client.
	c.Feed([]byte("+OK\r\n"))
	if c.RepliesReceived() != 0 {
		t.Errorf("RepliesReceived() = %d after poisoning, want 0", c.RepliesReceived())
	}
}

func TestClientNameDerivesStableID(t *testing.T) {
	a := NewClient(func([]byte) {}, WithName("conn-1"))
	b := NewClient(func([]byte) {}, WithName("conn-1"))
	if a.ID() != b.ID() {
		t.Errorf("same name produced different IDs: %d vs %d", a.ID(), b.ID())
	}
	if a.ID() == 0 {
		t.Error("named client has ID() == 0")
	}
	unnamed := NewClient(func([]byte) {})
	if unnamed.ID() != 0 {
		t.Errorf("unnamed client ID() = %d, want 0", unnamed.ID())
	}
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientStats abstracts the counters a Collector needs from a client. I use
// an interface here so the metrics package doesn't import the client
// package — the client package is the one that imports metrics (to accept
// an optional *Collector in its constructor), and importing back would
// create a cycle.
type ClientStats interface {
	CommandsSent() uint64
	RepliesReceived() uint64
	PendingDepth() int
	SubscriptionCount() int
	ParseErrors() uint64
	PushFramesRouted() uint64
}

// Collector implements prometheus.Collector by pulling current values from
// an attached client on each scrape. It can be constructed before the
// client exists and attached afterward, since wiring order in cmd/resp-cli
// runs the metrics server before the transport connects.
type Collector struct {
	mu    sync.RWMutex
	stats ClientStats

	commandsSent     *prometheus.Desc
	repliesReceived  *prometheus.Desc
	pendingDepth     *prometheus.Desc
	subscriptions    *prometheus.Desc
	parseErrors      *prometheus.Desc
	pushFramesRouted *prometheus.Desc
}

// NewCollector creates a Collector with no client attached; Collect
// reports zero values until Attach is called.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "respwire"
	}
	return &Collector{
		commandsSent:     prometheus.NewDesc(namespace+"_commands_sent_total", "Total commands sent.", nil, nil),
		repliesReceived:  prometheus.NewDesc(namespace+"_replies_received_total", "Total complete replies decoded.", nil, nil),
		pendingDepth:     prometheus.NewDesc(namespace+"_pending_depth", "Current number of reply handlers awaiting a response.", nil, nil),
		subscriptions:    prometheus.NewDesc(namespace+"_subscriptions_active", "Current number of active channel subscriptions.", nil, nil),
		parseErrors:      prometheus.NewDesc(namespace+"_parse_errors_total", "Total malformed-frame events observed.", nil, nil),
		pushFramesRouted: prometheus.NewDesc(namespace+"_push_frames_routed_total", "Total pub/sub push frames routed to subscription handlers.", nil, nil),
	}
}

// Attach points the Collector at a live client. Safe to call once, before
// or after Collect starts being called from the scrape loop.
func (c *Collector) Attach(stats ClientStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
}

// Describe sends all descriptor definitions to the channel.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.commandsSent
	ch <- c.repliesReceived
	ch <- c.pendingDepth
	ch <- c.subscriptions
	ch <- c.parseErrors
	ch <- c.pushFramesRouted
}

// Collect pulls current values from the attached client. Runs on every
// scrape, not on the hot read/write path.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	stats := c.stats
	c.mu.RUnlock()
	if stats == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.commandsSent, prometheus.CounterValue, float64(stats.CommandsSent()))
	ch <- prometheus.MustNewConstMetric(c.repliesReceived, prometheus.CounterValue, float64(stats.RepliesReceived()))
	ch <- prometheus.MustNewConstMetric(c.pendingDepth, prometheus.GaugeValue, float64(stats.PendingDepth()))
	ch <- prometheus.MustNewConstMetric(c.subscriptions, prometheus.GaugeValue, float64(stats.SubscriptionCount()))
	ch <- prometheus.MustNewConstMetric(c.parseErrors, prometheus.CounterValue, float64(stats.ParseErrors()))
	ch <- prometheus.MustNewConstMetric(c.pushFramesRouted, prometheus.CounterValue, float64(stats.PushFramesRouted()))
}

// Register registers the collector with Prometheus's default registry.
func Register(c *Collector) {
	prometheus.MustRegister(c)
}

// Package metrics exposes the per-session queue and reliability gauges
// over prometheus/client_golang, grounded on the Collector pattern in
// runZeroInc-conniver's pkg/exporter (there wrapping tcp_info, here
// wrapping the outbound/inbound queues and ack/nak history instead).
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "verse"

var (
	InboundDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "inbound",
		Name:      "commands",
		Help:      "Commands currently resident in a session's inbound queue.",
	}, []string{"session"})

	InboundBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "inbound",
		Name:      "bytes",
		Help:      "Aggregate payload bytes resident in a session's inbound queue.",
	}, []string{"session"})

	OutboundDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "outbound",
		Name:      "commands",
		Help:      "Commands currently resident in a session's outbound queue.",
	}, []string{"session"})

	OutboundBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "outbound",
		Name:      "bytes",
		Help:      "Aggregate payload bytes resident in a session's outbound queue.",
	}, []string{"session"})

	OutstandingBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "outstanding_bytes",
		Help:      "Bytes of commands live in sent-packet history (sent, neither acknowledged nor NAK'd), per session.",
	}, []string{"session"})

	AckListLength = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "ack_boundaries",
		Help:      "Number of boundaries currently stored in a session's ack/nak history.",
	}, []string{"session"})

	Retransmits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "retransmits_total",
		Help:      "Commands resent in response to a NAK, per session.",
	}, []string{"session"})
)

func init() {
	prometheus.MustRegister(
		InboundDepth, InboundBytes,
		OutboundDepth, OutboundBytes,
		OutstandingBytes, AckListLength, Retransmits,
	)
}

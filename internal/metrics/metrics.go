package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector exposed by the relay.
type Metrics struct {
	TriggersTotal  *prometheus.CounterVec
	MailsSent      prometheus.Counter
	MailsFailed    prometheus.Counter
	QueueEmptyHits prometheus.Counter
	NotifyFailures prometheus.Counter
	PollErrors     prometheus.Counter
}

// New creates all collectors and registers them on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TriggersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_triggers_total",
			Help: "Telegram triggers received, labelled by intake source.",
		}, []string{"source"}),
		MailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_mails_sent_total",
			Help: "Mails accepted by the SMTP server.",
		}),
		MailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_mails_failed_total",
			Help: "Mail dispatch attempts rejected or errored.",
		}),
		QueueEmptyHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_queue_empty_hits_total",
			Help: "Triggers that found no pending row in the sheet.",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_notify_failures_total",
			Help: "Telegram report messages that could not be delivered.",
		}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "relay_poll_errors_total",
			Help: "Failed getUpdates fetches in long-poll mode.",
		}),
	}

	reg.MustRegister(
		m.TriggersTotal,
		m.MailsSent,
		m.MailsFailed,
		m.QueueEmptyHits,
		m.NotifyFailures,
		m.PollErrors,
	)
	return m
}

// ProcessorHooks adapts the counters to the processor's hook signature.
func (m *Metrics) ProcessorHooks() (onSent, onFailed, onEmpty func()) {
	return m.MailsSent.Inc, m.MailsFailed.Inc, m.QueueEmptyHits.Inc
}

// TriggerHook returns a hook that counts triggers from the given source
// ("webhook" or "poll").
func (m *Metrics) TriggerHook(source string) func() {
	c := m.TriggersTotal.WithLabelValues(source)
	return c.Inc
}

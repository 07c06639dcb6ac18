package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors fed by engine hooks and the HTTP layer.
type Metrics struct {
	NodeVisits      *prometheus.CounterVec
	Choices         *prometheus.CounterVec
	Answers         *prometheus.CounterVec
	Backs           *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg, which also backs Handler.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "novella_node_visits_total",
				Help: "Total number of nodes displayed to players.",
			},
			[]string{"locale", "node_id"},
		),
		Choices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "novella_choices_total",
				Help: "Total number of choices taken.",
			},
			[]string{"locale", "from_node_id"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "novella_answers_total",
				Help: "Total number of quiz answers, by result.",
			},
			[]string{"locale", "node_id", "correct"},
		),
		Backs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "novella_back_total",
				Help: "Total number of backtracking steps.",
			},
			[]string{"locale"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "novella_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.NodeVisits, m.Choices, m.Answers, m.Backs, m.RequestDuration)
	return m
}

// Hooks returns lifecycle hooks recording engine events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.Locale, e.NodeID).Inc()
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			m.Choices.WithLabelValues(e.Locale, e.FromNodeID).Inc()
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			m.Answers.WithLabelValues(e.Locale, e.NodeID, strconv.FormatBool(e.Correct)).Inc()
		},
		OnBack: func(ctx context.Context, e *domain.BackEvent) {
			m.Backs.WithLabelValues(e.Locale).Inc()
		},
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Package metrics exposes Prometheus counters for sign-in, token issuance,
// authorization denials and HTTP responses.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exchange outcomes
const (
	OutcomeSuccess           = "success"
	OutcomeMissingCode       = "missing_code"
	OutcomeIncompleteProfile = "incomplete_profile"
	OutcomeFailed            = "failed"
)

// Recorder is what the exchange and the HTTP layer report to.
type Recorder interface {
	RecordExchange(outcome string)
	RecordTokenIssued()
	RecordGuardDenial(reason string)
	RecordHTTPStatus(statusCode int)
}

type Collector struct {
	exchanges    *prometheus.CounterVec
	tokensIssued prometheus.Counter
	guardDenials *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_auth_oauth_exchanges_total",
			Help: "OAuth code exchanges by outcome",
		}, []string{"outcome"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "posts_auth_session_tokens_issued_total",
			Help: "Session tokens issued",
		}),
		guardDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_auth_guard_denials_total",
			Help: "Requests rejected by authentication or authorization",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_auth_http_responses_total",
			Help: "HTTP responses by status code",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.exchanges,
		c.tokensIssued,
		c.guardDenials,
		c.httpStatus,
	)
	return c
}

func (c *Collector) RecordExchange(outcome string) {
	c.exchanges.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordGuardDenial takes "unauthenticated" or "forbidden"
func (c *Collector) RecordGuardDenial(reason string) {
	c.guardDenials.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything
type Nop struct{}

func (Nop) RecordExchange(string)    {}
func (Nop) RecordTokenIssued()       {}
func (Nop) RecordGuardDenial(string) {}
func (Nop) RecordHTTPStatus(int)     {}

// Package metrics counts transaction retries and like outcomes.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/likes"
)

const namespace = "thankschain"

// Collector holds the process's metrics in its own registry.
type Collector struct {
	registry  *prometheus.Registry
	attempts  *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	exhausted *prometheus.CounterVec
	likes     *prometheus.CounterVec
}

var (
	_ docstore.Observer = (*Collector)(nil)
	_ likes.Observer    = (*Collector)(nil)
)

// New creates a Collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_attempts_total",
			Help:      "Transaction attempts, including retries.",
		}, []string{"op"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_conflicts_total",
			Help:      "Transaction attempts aborted by a concurrent commit.",
		}, []string{"op"}),
		exhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_exhausted_total",
			Help:      "Transactions that ran out of retries.",
		}, []string{"op"}),
		likes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_total",
			Help:      "Like requests by outcome.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(c.attempts, c.conflicts, c.exhausted, c.likes)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveAttempt(op string)   { c.attempts.WithLabelValues(op).Inc() }
func (c *Collector) ObserveConflict(op string)  { c.conflicts.WithLabelValues(op).Inc() }
func (c *Collector) ObserveExhausted(op string) { c.exhausted.WithLabelValues(op).Inc() }

// ObserveLike records an applied like or a request capped away.
func (c *Collector) ObserveLike(applied bool) {
	result := "capped"
	if applied {
		result = "applied"
	}
	c.likes.WithLabelValues(result).Inc()
}

// Sample is one gathered counter value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// String renders the sample in exposition style.
func (s Sample) String() string {
	if s.Labels == "" {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, s.Labels, s.Value)
}

// Summary gathers every non-zero counter, sorted by name and labels.
func (c *Collector) Summary() ([]Sample, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var samples []Sample
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: formatLabels(m.GetLabel()),
				Value:  v,
			})
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return strings.Join(parts, ",")
}

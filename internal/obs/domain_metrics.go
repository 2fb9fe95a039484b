package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts checkout confirmation outcomes.
	CheckoutTotal *prometheus.CounterVec
	// HeldOrdersTotal counts orders put on hold at the terminal.
	HeldOrdersTotal prometheus.Counter
	// OutOfStockTotal counts cart mutations rejected by the stock ceiling.
	OutOfStockTotal prometheus.Counter
	// UpstreamRequestTotal counts calls to the retail backend by outcome.
	UpstreamRequestTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout confirmation outcomes.",
		}, []string{"method", "result"})
		HeldOrdersTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "held_orders_total",
			Help:      "Number of orders put on hold.",
		})
		OutOfStockTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "out_of_stock_rejections_total",
			Help:      "Cart mutations rejected because the stock ceiling was exceeded.",
		})
		UpstreamRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Count of upstream retail API calls by endpoint and outcome.",
		}, []string{"endpoint", "result"})

		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, HeldOrdersTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				HeldOrdersTotal = v
			}
		})
		mustRegisterCollector(reg, OutOfStockTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				OutOfStockTotal = v
			}
		})
		mustRegisterCollector(reg, UpstreamRequestTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				UpstreamRequestTotal = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}

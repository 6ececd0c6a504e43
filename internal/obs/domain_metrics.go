package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// FeeComputeTotal counts fee engine invocations by schedule and role.
	FeeComputeTotal *prometheus.CounterVec
	// DealsCreatedTotal counts contract deals created by cart direction.
	DealsCreatedTotal *prometheus.CounterVec
	// DealStatusTotal counts deal status transitions.
	DealStatusTotal *prometheus.CounterVec
	// NotifyEmailTotal counts deal notification email outcomes.
	NotifyEmailTotal *prometheus.CounterVec
	// CatalogCacheHits counts catalog cache lookups by result.
	CatalogCacheHits *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		FeeComputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fee_compute_total",
			Help:      "Count of fee engine computations by schedule and role.",
		}, []string{"schedule", "role"})
		DealsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_created_total",
			Help:      "Count of contract deals created by fee direction.",
		}, []string{"direction"})
		DealStatusTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_status_total",
			Help:      "Count of deal status transitions.",
		}, []string{"status"})
		NotifyEmailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_email_total",
			Help:      "Count of deal notification email outcomes.",
		}, []string{"result"})
		CatalogCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_total",
			Help:      "Count of catalog cache lookups by result.",
		}, []string{"result"})

		reg.MustRegister(FeeComputeTotal, DealsCreatedTotal, DealStatusTotal, NotifyEmailTotal, CatalogCacheHits)
	})
}

package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// productMutations counts successful catalog writes by operation.
	productMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_product_mutations_total",
			Help: "Total number of successful product mutations.",
		},
		[]string{"operation"},
	)

	// catalogSize tracks the number of products currently stored.
	catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Current number of products in the catalog.",
		},
	)
)

func init() {
	prometheus.MustRegister(productMutations, catalogSize)
}

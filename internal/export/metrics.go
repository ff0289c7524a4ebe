package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcfdump_exported_records_total",
		Help: "Reconstructed records delivered per study.",
	}, []string{"study"})

	reconstructionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcfdump_reconstruction_failures_total",
		Help: "Variant/study pairs skipped because they could not be reconstructed.",
	}, []string{"kind"})
)

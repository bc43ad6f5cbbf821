package metrics

import "github.com/prometheus/client_golang/prometheus"

// newStatsDesc builds the descriptor for one database counter. All of
// them live under the "database" subsystem.
// Used internally by NewDatabaseCollector to keep the naming uniform.
func newStatsDesc(namespace, name, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "database", name),
		help,
		nil,
		nil,
	)
}

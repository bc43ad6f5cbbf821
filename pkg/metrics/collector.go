package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// StatsSource is anything that can snapshot database counters. It is
// satisfied by *database.Manager.
type StatsSource interface {
	Stats() database.Stats
}

// DatabaseCollector exposes a manager's counters to Prometheus. The
// manager keeps the counts; the collector reads a fresh snapshot on
// every scrape and holds no state of its own.
type DatabaseCollector struct {
	source StatsSource

	statementsCompiled     *prometheus.Desc
	statementsExecuted     *prometheus.Desc
	cacheHits              *prometheus.Desc
	cachedStatements       *prometheus.Desc
	transactionsStarted    *prometheus.Desc
	transactionsCommitted  *prometheus.Desc
	transactionsRolledBack *prometheus.Desc
	collisions             *prometheus.Desc
	unavailableFailures    *prometheus.Desc
	reconnects             *prometheus.Desc
}

// NewDatabaseCollector creates a collector over the given source. The
// namespace prefixes every metric name and may be empty.
func NewDatabaseCollector(source StatsSource, namespace string) *DatabaseCollector {
	return &DatabaseCollector{
		source: source,
		statementsCompiled: newStatsDesc(namespace, "statements_compiled_total",
			"Number of SQL statements compiled after a cache miss."),
		statementsExecuted: newStatsDesc(namespace, "statements_executed_total",
			"Number of successful statement executions."),
		cacheHits: newStatsDesc(namespace, "statement_cache_hits_total",
			"Number of executions served by an already compiled statement."),
		cachedStatements: newStatsDesc(namespace, "cached_statements",
			"Current size of the prepared statement cache."),
		transactionsStarted: newStatsDesc(namespace, "transactions_started_total",
			"Number of transactions started."),
		transactionsCommitted: newStatsDesc(namespace, "transactions_committed_total",
			"Number of transactions committed."),
		transactionsRolledBack: newStatsDesc(namespace, "transactions_rolled_back_total",
			"Number of transactions rolled back."),
		collisions: newStatsDesc(namespace, "transaction_collisions_total",
			"Number of serialization failures between concurrent transactions."),
		unavailableFailures: newStatsDesc(namespace, "unavailable_failures_total",
			"Number of connection failures that closed the database connection."),
		reconnects: newStatsDesc(namespace, "reconnects_total",
			"Number of database connections opened after the first one."),
	}
}

// Describe implements prometheus.Collector.
func (c *DatabaseCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.statementsCompiled
	ch <- c.statementsExecuted
	ch <- c.cacheHits
	ch <- c.cachedStatements
	ch <- c.transactionsStarted
	ch <- c.transactionsCommitted
	ch <- c.transactionsRolledBack
	ch <- c.collisions
	ch <- c.unavailableFailures
	ch <- c.reconnects
}

// Collect implements prometheus.Collector.
func (c *DatabaseCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(c.statementsCompiled,
		prometheus.CounterValue, float64(stats.StatementsCompiled))
	ch <- prometheus.MustNewConstMetric(c.statementsExecuted,
		prometheus.CounterValue, float64(stats.StatementsExecuted))
	ch <- prometheus.MustNewConstMetric(c.cacheHits,
		prometheus.CounterValue, float64(stats.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.cachedStatements,
		prometheus.GaugeValue, float64(stats.CachedStatements))
	ch <- prometheus.MustNewConstMetric(c.transactionsStarted,
		prometheus.CounterValue, float64(stats.TransactionsStarted))
	ch <- prometheus.MustNewConstMetric(c.transactionsCommitted,
		prometheus.CounterValue, float64(stats.TransactionsCommitted))
	ch <- prometheus.MustNewConstMetric(c.transactionsRolledBack,
		prometheus.CounterValue, float64(stats.TransactionsRolledBack))
	ch <- prometheus.MustNewConstMetric(c.collisions,
		prometheus.CounterValue, float64(stats.Collisions))
	ch <- prometheus.MustNewConstMetric(c.unavailableFailures,
		prometheus.CounterValue, float64(stats.UnavailableFailures))
	ch <- prometheus.MustNewConstMetric(c.reconnects,
		prometheus.CounterValue, float64(stats.Reconnects))
}

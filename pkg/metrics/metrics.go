package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "menuserver"

	metricLabelHandler = "handler"
	metricLabelStatus  = "status"
	metricLabelSource  = "source"
	metricLabelSite    = "site"
)

// Metrics is the structure that holds all prometheus metrics
var (
	// InvalidNodeRequests counts the number of requests for nodes that do not exist
	InvalidNodeRequests = newCounterVec(
		"invalid_node_request_count",
		"Counts the number of requests for menu nodes that do not exist",
		metricLabelSite,
	)
	// UnresolvedURLCounter counts resolve requests no menu links to
	UnresolvedURLCounter = newCounterVec(
		"unresolved_url_count",
		"Counts the number of resolve requests for pages no menu links to",
		metricLabelSite,
	)
	// ServiceRequestCounter count the number of requests for each service function
	ServiceRequestCounter = newCounterVec(
		"service_request_count",
		"Count of requests for each handler",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// ServiceRequestDuration observe the duration of requests for each service function
	ServiceRequestDuration = newSummaryVec(
		"service_request_duration_seconds",
		"Seconds to unmarshal requests, execute a service function and marshal its reponses",
		metricLabelHandler, metricLabelStatus, metricLabelSource,
	)
	// UpdatesCompletedCounter count the number of successful updates
	UpdatesCompletedCounter = newCounterVec(
		"updates_completed_count",
		"Number of updates that were successfully completed",
	)
	// UpdatesFailedCounter count the number of updates that had an error
	UpdatesFailedCounter = newCounterVec(
		"updates_failed_count",
		"Number of updates that failed due to an error",
	)
	// UpdateDuration observe the duration of each repo.update() call
	UpdateDuration = newSummaryVec(
		"update_duration_seconds",
		"Duration in seconds for each successful repo.update() call",
	)
	// MenuRequestCounter count the total number of menu requests
	MenuRequestCounter = newCounterVec(
		"menu_request_count",
		"Number of requests for menus",
		metricLabelSource,
	)
	// NumSocketsGauge keep track of the total number of open sockets
	NumSocketsGauge = newGauge(
		"num_sockets_total",
		"Total number of currently open socket connections",
	)
	// HistoryPersistFailedCounter count the number of failed attempts to persist the menu history
	HistoryPersistFailedCounter = newCounterVec(
		"history_persist_failed_count",
		"Number of failures to store the menu history",
	)
	// LoadedNodesGauge number of nodes per loaded site
	LoadedNodesGauge = newGaugeVec(
		"loaded_nodes_total",
		"Number of menu nodes currently loaded per site",
		metricLabelSite,
	)
)

func newSummaryVec(name, help string, labels ...string) *prometheus.SummaryVec {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	prometheus.MustRegister(vec)
	return vec
}

func newGauge(name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	prometheus.MustRegister(gauge)
	return gauge
}

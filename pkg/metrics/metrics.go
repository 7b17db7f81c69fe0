// Package metrics 定义推荐引擎的 Prometheus 指标。
//
// 指标在包初始化时注册到默认 registry，由宿主进程负责暴露。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ArtifactLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedrec_artifact_loads_total",
			Help: "Total number of artifact loads by kind and result",
		},
		[]string{"kind", "result"}, // kind: item_embedding/user_embedding/catalog/ratings
	)

	ColdStarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedrec_cold_starts_total",
			Help: "Total number of user-similarity queries for users absent from the encode map",
		},
	)

	DroppedEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedrec_dropped_entries_total",
			Help: "Total number of recommendation entries dropped during aggregation",
		},
		[]string{"reason"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedrec_cache_hits_total",
			Help: "Total number of artifact cache hits",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedrec_cache_misses_total",
			Help: "Total number of artifact cache misses",
		},
		[]string{"kind"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "embedrec_operation_duration_seconds",
			Help:    "Duration of public recommender operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "result"},
	)
)

// RecordArtifactLoad 记录一次制品加载。
func RecordArtifactLoad(kind string, err error) {
	ArtifactLoads.WithLabelValues(kind, result(err)).Inc()
}

// RecordColdStart 记录一次用户冷启动。
func RecordColdStart() {
	ColdStarts.Inc()
}

// RecordDropped 记录聚合时丢弃的条目数。
func RecordDropped(reason string, n int) {
	if n <= 0 {
		return
	}
	DroppedEntries.WithLabelValues(reason).Add(float64(n))
}

// RecordCache 记录一次缓存命中或未命中。
func RecordCache(kind string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(kind).Inc()
		return
	}
	CacheMisses.WithLabelValues(kind).Inc()
}

// ObserveOperation 记录一次公开操作的耗时。
func ObserveOperation(operation string, start time.Time, err error) {
	OperationDuration.WithLabelValues(operation, result(err)).Observe(time.Since(start).Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

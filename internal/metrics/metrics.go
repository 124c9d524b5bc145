// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、サービス層、リポジトリから利用する。
type MetricsCollector interface {
	RecordHTTPRequest(method, route string, statusCode int, duration time.Duration)
	RecordValidationRejection(entity, operation string)
	RecordWrite(entity, operation string)
	ObserveStoreLatency(entity, operation string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	validationRejection *prometheus.CounterVec
	writes              *prometheus.CounterVec
	storeLatency        *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolrecords_http_requests_total",
			Help: "ルート・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schoolrecords_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		validationRejection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolrecords_validation_rejections_total",
			Help: "検証で拒否された作成・更新の数",
		}, []string{"entity", "operation"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolrecords_writes_total",
			Help: "エンティティ別の書き込み成功数",
		}, []string{"entity", "operation"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schoolrecords_store_latency_seconds",
			Help:    "ストア操作のレイテンシ（秒）",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"entity", "operation"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.validationRejection,
		c.writes,
		c.storeLatency,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの件数と処理時間を記録する。
// routeはパラメータ展開前のルートパターンを渡す。
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordValidationRejection は検証による拒否を記録する。
func (c *Collector) RecordValidationRejection(entity, operation string) {
	c.validationRejection.WithLabelValues(entity, operation).Inc()
}

// RecordWrite は書き込み成功を記録する。
func (c *Collector) RecordWrite(entity, operation string) {
	c.writes.WithLabelValues(entity, operation).Inc()
}

// ObserveStoreLatency はストア操作のレイテンシを記録する。
func (c *Collector) ObserveStoreLatency(entity, operation string, duration time.Duration) {
	c.storeLatency.WithLabelValues(entity, operation).Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordValidationRejection(string, string)             {}
func (Nop) RecordWrite(string, string)                           {}
func (Nop) ObserveStoreLatency(string, string, time.Duration)    {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

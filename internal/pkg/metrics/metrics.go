package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約試行の総数（status: committed, sold_out, over_limit, rejected, error）
	BookingsTotal *prometheus.CounterVec

	// キャンセルの総数（status: released, not_found, error）
	CancellationsTotal *prometheus.CounterVec

	// 1回の予約トランザクションでロックできた座席数
	SeatsLockedPerAttempt prometheus.Histogram

	// イベントごとの入場制御で待機中のリクエスト数
	AdmissionWaiting prometheus.Gauge

	// 入場制御による即時拒否の総数（reason: queue_full, timeout)
	AdmissionRejectedTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking attempts",
			},
			[]string{"status"},
		),
		CancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancellations_total",
				Help: "Total number of cancellation attempts",
			},
			[]string{"status"},
		),
		SeatsLockedPerAttempt: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "booking_seats_locked",
				Help:    "Number of seats locked per booking attempt",
				Buckets: []float64{0, 1, 2},
			},
		),
		AdmissionWaiting: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "admission_waiting",
				Help: "Current number of booking attempts waiting for admission",
			},
		),
		AdmissionRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_rejected_total",
				Help: "Total number of booking attempts rejected by admission control",
			},
			[]string{"reason"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.CancellationsTotal,
		m.SeatsLockedPerAttempt,
		m.AdmissionWaiting,
		m.AdmissionRejectedTotal,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Количество HTTP-запросов к шлюзу.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Длительность обработки HTTP-запросов шлюзом.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BackendRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_backend_refresh_total",
			Help: "Обновления пары токенов по результату.",
		},
		[]string{"result"},
	)

	BackendNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_backend_notifications_total",
			Help: "Уведомления об ошибках бэкенда по категории.",
		},
		[]string{"category"},
	)
)

// ObserveRefresh подходит как наблюдатель обновления токенов клиента API.
func ObserveRefresh(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	BackendRefreshTotal.WithLabelValues(result).Inc()
}

package monitoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var (
	bookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Total booking operations by outcome",
		},
		[]string{"status"},
	)

	signupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total account registrations",
		},
	)

	activeEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_events_total",
			Help: "Current number of bookable events",
		},
	)

	capacityHolds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "capacity_holds_total",
			Help: "Current live capacity holds per event",
		},
		[]string{"event_id"},
	)
)

// TrackBooking counts a booking outcome.
func TrackBooking(status string) {
	bookingsTotal.WithLabelValues(status).Inc()
}

// TrackSignup counts an account registration.
func TrackSignup() {
	signupsTotal.Inc()
}

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(ctx context.Context, redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	go monitor.collectMetrics(ctx)

	return monitor
}

func (m *Monitor) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.collectEventMetrics(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) collectEventMetrics(ctx context.Context) {
	eventIDs, err := m.redis.SMembers(ctx, "active_events").Result()
	if err != nil {
		return
	}

	activeEvents.Set(float64(len(eventIDs)))

	for _, eventID := range eventIDs {
		held, err := m.redis.ZCard(ctx, fmt.Sprintf("holds:%s", eventID)).Result()
		if err != nil {
			continue
		}
		capacityHolds.WithLabelValues(eventID).Set(float64(held))
	}
}

// StartMetricsServer serves the Prometheus endpoint on its own listener.
func StartMetricsServer(port string) {
	mux := echo.New()
	mux.GET("/metrics", func(c echo.Context) error {
		promhttp.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		log.Printf("Metrics server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server error: %v", err)
		}
	}()
}

package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"eventhub/config"
)

// StatsService aggregates dashboard metrics for the admin views.
type StatsService struct {
	app core.App
	cfg *config.Config
}

func NewStatsService(app core.App, cfg *config.Config) *StatsService {
	return &StatsService{app: app, cfg: cfg}
}

type DashboardStats struct {
	TotalUsers        int64         `json:"total_users"`
	TotalEvents       int64         `json:"total_events"`
	ActiveEvents      int64         `json:"active_events"`
	TotalBookings     int64         `json:"total_bookings"`
	ConfirmedBookings int64         `json:"confirmed_bookings"`
	NewFeedback       int64         `json:"new_feedback"`
	Revenue           string        `json:"revenue"`
	BookingsPerMonth  []MonthBucket `json:"bookings_per_month"`
}

type MonthBucket struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// BookingRow is one confirmed booking joined with its event price.
type BookingRow struct {
	Price   float64
	Created time.Time
}

// Dashboard collects counts, revenue and the monthly booking histogram.
func (s *StatsService) Dashboard(now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalUsers, err = s.app.CountRecords("users"); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if stats.TotalEvents, err = s.app.CountRecords("events"); err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	if stats.ActiveEvents, err = s.app.CountRecords("events", dbx.HashExp{"status": "active"}); err != nil {
		return nil, fmt.Errorf("count active events: %w", err)
	}
	if stats.TotalBookings, err = s.app.CountRecords("bookings"); err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	if stats.ConfirmedBookings, err = s.app.CountRecords("bookings", dbx.HashExp{"status": "confirmed"}); err != nil {
		return nil, fmt.Errorf("count confirmed bookings: %w", err)
	}
	if stats.NewFeedback, err = s.app.CountRecords("feedback", dbx.HashExp{"status": "new"}); err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}

	rows, err := s.confirmedBookingRows()
	if err != nil {
		return nil, err
	}

	stats.Revenue = SumRevenue(rows).StringFixed(2)
	stats.BookingsPerMonth = MonthlyBuckets(rows, s.cfg.StatsMonths, now)

	return stats, nil
}

func (s *StatsService) confirmedBookingRows() ([]BookingRow, error) {
	var raw []dbx.NullStringMap
	err := s.app.DB().
		NewQuery(`SELECT e.price AS price, b.created AS created
			FROM bookings b
			JOIN events e ON e.id = b.event
			WHERE b.status = 'confirmed'`).
		All(&raw)
	if err != nil {
		return nil, fmt.Errorf("booking rows: %w", err)
	}

	rows := make([]BookingRow, 0, len(raw))
	for _, r := range raw {
		price, _ := strconv.ParseFloat(r["price"].String, 64)

		dt, err := types.ParseDateTime(r["created"].String)
		if err != nil {
			continue
		}

		rows = append(rows, BookingRow{Price: price, Created: dt.Time()})
	}

	return rows, nil
}

// SumRevenue totals event prices across confirmed bookings.
func SumRevenue(rows []BookingRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.Price))
	}
	return total
}

// MonthlyBuckets buckets bookings per calendar month for the trailing
// window ending at now. Months with no bookings appear with a zero count.
func MonthlyBuckets(rows []BookingRow, months int, now time.Time) []MonthBucket {
	if months <= 0 {
		months = 6
	}

	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Created.Format("2006-01")]++
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	buckets := make([]MonthBucket, 0, months)
	for i := months - 1; i >= 0; i-- {
		key := firstOfMonth.AddDate(0, -i, 0).Format("2006-01")
		buckets = append(buckets, MonthBucket{Month: key, Count: counts[key]})
	}

	return buckets
}

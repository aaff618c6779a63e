package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/obralabs/sentinela/pkg/billing"
)

const mrrCacheKey = "reporting:mrr"

// SubscriptionLister is the read-only provider surface the reports need.
type SubscriptionLister interface {
	ListActiveSubscriptions(ctx context.Context) ([]billing.Subscription, error)
}

// CounterFunc returns a row count from a backing store.
type CounterFunc func(ctx context.Context) (int64, error)

// Location is a project position shown on the stats map.
type Location struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Status  string   `json:"status"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// LocationsFunc lists up to limit project locations.
type LocationsFunc func(ctx context.Context, limit int) ([]Location, error)

// MRRReport is the recurring-revenue report, amounts in major currency units.
// All figures are approximations (see MonthlyAmount and trailingHistory).
type MRRReport struct {
	MRR       float64            `json:"mrr"`
	Currency  string             `json:"currency"`
	Breakdown map[string]float64 `json:"breakdown"`
	History   map[string]float64 `json:"history"`
}

// ClientsCount reconciles registered profiles against distinct paying billing
// customers. The two counts come from different systems with no shared join
// key; NonPaying is only their subtraction.
type ClientsCount struct {
	Count     int64 `json:"count"`
	Paying    int64 `json:"paying"`
	NonPaying int64 `json:"nonPaying"`
}

// PlatformStats is the whitelabel dashboard summary.
type PlatformStats struct {
	TotalProjects    int64      `json:"totalProjects"`
	TotalAprs        int64      `json:"totalAprs"`
	TotalInspections int64      `json:"totalInspections"`
	Locations        []Location `json:"locations"`
}

// Service computes fleet-wide metrics. Every job is read-only and safe to
// run concurrently with any other component.
type Service struct {
	subs         SubscriptionLister
	profileCount CounterFunc

	projectCount    CounterFunc
	inspectionCount CounterFunc
	aprCount        CounterFunc
	locations       LocationsFunc

	cache    *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// Option configures the reporting service.
type Option func(*Service)

// WithCache caches the MRR report in redis. The report pages through every
// active subscription, so recomputing it on each request is wasteful.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(s *Service) {
		if client != nil && ttl > 0 {
			s.cache = client
			s.cacheTTL = ttl
		}
	}
}

// WithClock overrides time.Now, mainly for history tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPlatformCounters registers the sources for the whitelabel stats report.
func WithPlatformCounters(projects, inspections, aprs CounterFunc, locations LocationsFunc) Option {
	return func(s *Service) {
		s.projectCount = projects
		s.inspectionCount = inspections
		s.aprCount = aprs
		s.locations = locations
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires the reporting jobs. Panics on nil required dependencies.
func NewService(subs SubscriptionLister, profileCount CounterFunc, opts ...Option) *Service {
	if subs == nil {
		panic("reporting: SubscriptionLister is required")
	}
	if profileCount == nil {
		panic("reporting: profile CounterFunc is required")
	}
	s := &Service{
		subs:         subs,
		profileCount: profileCount,
		now:          time.Now,
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MRR computes the recurring-revenue report over all active subscriptions.
// Results are served from cache when fresh; cache failures degrade to a
// recompute, never to an error.
func (s *Service) MRR(ctx context.Context) (*MRRReport, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, mrrCacheKey).Bytes(); err == nil {
			var report MRRReport
			if err := json.Unmarshal(cached, &report); err == nil {
				return &report, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "mrr cache read failed", slog.Any("error", err))
		}
	}

	report, err := s.computeMRR(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(report); err == nil {
			if err := s.cache.Set(ctx, mrrCacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.log.WarnContext(ctx, "mrr cache write failed", slog.Any("error", err))
			}
		}
	}

	return report, nil
}

func (s *Service) computeMRR(ctx context.Context) (*MRRReport, error) {
	subs, err := s.subs.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	var (
		total     float64
		breakdown = make(map[string]float64)
		totals    = make([]subscriptionTotal, 0, len(subs))
	)

	for _, sub := range subs {
		var subTotal float64
		for _, item := range sub.Items {
			monthly := MonthlyAmount(item)
			subTotal += monthly
			total += monthly
			breakdown[item.ProductName] += monthly
		}
		totals = append(totals, subscriptionTotal{amount: subTotal, created: sub.Created})
	}

	history := trailingHistory(totals, s.now().UTC())

	// Minor units to major units on the way out only; the math above stays
	// in cents.
	report := &MRRReport{
		MRR:       total / 100,
		Currency:  "brl",
		Breakdown: make(map[string]float64, len(breakdown)),
		History:   make(map[string]float64, len(history)),
	}
	for k, v := range breakdown {
		report.Breakdown[k] = v / 100
	}
	for k, v := range history {
		report.History[k] = v / 100
	}

	return report, nil
}

// Clients counts registered profiles against distinct billing customers with
// an active subscription.
func (s *Service) Clients(ctx context.Context) (*ClientsCount, error) {
	count, err := s.profileCount(ctx)
	if err != nil {
		return nil, err
	}

	subs, err := s.subs.ListActiveSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	customers := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		if sub.CustomerID != "" {
			customers[sub.CustomerID] = struct{}{}
		}
	}

	paying := int64(len(customers))
	return &ClientsCount{
		Count:     count,
		Paying:    paying,
		NonPaying: count - paying,
	}, nil
}

// Stats builds the whitelabel dashboard summary. Sources must be registered
// via WithPlatformCounters; missing sources contribute zero values.
func (s *Service) Stats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{Locations: []Location{}}

	var err error
	if s.projectCount != nil {
		if stats.TotalProjects, err = s.projectCount(ctx); err != nil {
			return nil, err
		}
	}
	if s.aprCount != nil {
		if stats.TotalAprs, err = s.aprCount(ctx); err != nil {
			return nil, err
		}
	}
	if s.inspectionCount != nil {
		if stats.TotalInspections, err = s.inspectionCount(ctx); err != nil {
			return nil, err
		}
	}
	if s.locations != nil {
		locations, err := s.locations(ctx, 100)
		if err != nil {
			return nil, err
		}
		if locations != nil {
			stats.Locations = locations
		}
	}

	return stats, nil
}

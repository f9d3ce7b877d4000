package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"pos-service/internal/entity"
)

const (
	DashboardCacheKey = "dashboard:stats"

	dashboardRecentSales   = 5
	dashboardLowStockItems = 10
)

type StatsStore interface {
	Revenue(ctx context.Context) (decimal.Decimal, error)
	CountLowStock(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	LowStockItems(ctx context.Context, limit int) ([]entity.LowStockItem, error)
}

type RecentSalesReader interface {
	ListRecentSales(ctx context.Context, limit int) ([]entity.SaleSummary, error)
}

// DashboardService serves the aggregate figures of the home screen, cached
// in redis for cacheTTL.
type DashboardService struct {
	stats    StatsStore
	sales    RecentSalesReader
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewDashboardService(stats StatsStore, sales RecentSalesReader, rdb *redis.Client, cacheTTL time.Duration) *DashboardService {
	return &DashboardService{
		stats:    stats,
		sales:    sales,
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*entity.DashboardStats, error) {
	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading dashboard stats")
		return nil, err
	}

	s.writeCache(ctx, stats)
	return stats, nil
}

// InvalidateCache drops the cached stats so the next read goes to the database.
func (s *DashboardService) InvalidateCache(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, DashboardCacheKey).Err()
}

func (s *DashboardService) load(ctx context.Context) (*entity.DashboardStats, error) {
	var (
		stats = &entity.DashboardStats{}
		err   error
	)

	if stats.Revenue, err = s.stats.Revenue(ctx); err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.stats.CountLowStock(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.stats.CountProducts(ctx); err != nil {
		return nil, err
	}
	if stats.RecentSales, err = s.sales.ListRecentSales(ctx, dashboardRecentSales); err != nil {
		return nil, err
	}
	if stats.LowStockItems, err = s.stats.LowStockItems(ctx, dashboardLowStockItems); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *DashboardService) readCache(ctx context.Context) *entity.DashboardStats {
	if s.rdb == nil {
		return nil
	}

	data, err := s.rdb.Get(ctx, DashboardCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msg("Error getting dashboard stats from cache")
		}
		return nil
	}

	var stats entity.DashboardStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		logger.Error().Err(err).Msg("Error unmarshalling cached dashboard stats")
		return nil
	}
	return &stats
}

func (s *DashboardService) writeCache(ctx context.Context, stats *entity.DashboardStats) {
	if s.rdb == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		logger.Error().Err(err).Msg("Error marshalling dashboard stats")
		return
	}
	if err := s.rdb.Set(ctx, DashboardCacheKey, data, s.cacheTTL).Err(); err != nil {
		logger.Error().Err(err).Msg("Error setting dashboard stats in cache")
	}
}

// invalidateDashboard drops the cached stats after a write. Failures are
// logged; the cache expires on its own after the TTL.
func invalidateDashboard(ctx context.Context, dashboard CacheInvalidator) {
	if dashboard == nil {
		return
	}
	if err := dashboard.InvalidateCache(context.WithoutCancel(ctx)); err != nil {
		logger.Error().Err(err).Msg("Error invalidating dashboard cache")
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"pos-service/internal/entity"
	"pos-service/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500

	publishTimeout = 5 * time.Second
)

// SaleStore is the persistence boundary of the sale engine.
type SaleStore interface {
	WithinTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error
	ListRecentSales(ctx context.Context, limit int) ([]entity.SaleSummary, error)
	GetSaleLines(ctx context.Context, saleID int64) ([]entity.SaleLineView, error)
}

// EventPublisher is satisfied by *kafka.Writer.
type EventPublisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// CacheInvalidator drops cached read models after a write.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// SaleService records sales and reads them back.
type SaleService struct {
	store          SaleStore
	kafkaWriter    EventPublisher
	rdb            *redis.Client
	idempotencyTTL time.Duration
	dashboard      CacheInvalidator
}

// NewSaleService creates a new instance of SaleService. kafkaWriter, rdb and
// dashboard may be nil, which disables sale events, idempotency keys and
// dashboard invalidation respectively.
func NewSaleService(store SaleStore, kafkaWriter EventPublisher, rdb *redis.Client, idempotencyTTL time.Duration, dashboard CacheInvalidator) *SaleService {
	return &SaleService{
		store:          store,
		kafkaWriter:    kafkaWriter,
		rdb:            rdb,
		idempotencyTTL: idempotencyTTL,
		dashboard:      dashboard,
	}
}

// CreateSale writes the sale, its lines and the stock decrements as one
// unit of work. Either everything is committed or nothing is; lines are
// checked in request order and the first failing line aborts the rest.
func (s *SaleService) CreateSale(ctx context.Context, req entity.CreateSaleRequest) (*entity.SaleReceipt, error) {
	if len(req.Lines) == 0 {
		return nil, entity.ErrNoItems
	}

	claimed, err := s.claimIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	receipt, err := s.createSale(ctx, req)
	if err != nil {
		var unknown *entity.CommitUnknownError
		if errors.As(err, &unknown) {
			// The sale may be durable; the claim stays so a resubmission is refused.
			logger.Error().Err(err).Int("operator_id", req.OperatorID).Str("idempotency_key", req.IdempotencyKey).
				Msg("Sale commit outcome unknown")
			s.invalidateDashboard(ctx)
			return nil, err
		}

		if claimed {
			s.releaseIdempotencyKey(ctx, req.IdempotencyKey)
		}
		logger.Warn().Err(err).Int("operator_id", req.OperatorID).Int("lines", len(req.Lines)).Msg("Sale rolled back")
		return nil, err
	}

	logger.Info().
		Int64("sale_id", receipt.SaleID).
		Int("operator_id", req.OperatorID).
		Str("total", receipt.TotalAmount.StringFixed(2)).
		Msgf("Sale #%d committed", receipt.SaleID)

	s.invalidateDashboard(ctx)
	s.publishSaleCreated(ctx, req, receipt)
	return receipt, nil
}

func (s *SaleService) invalidateDashboard(ctx context.Context) {
	invalidateDashboard(ctx, s.dashboard)
}

func (s *SaleService) createSale(ctx context.Context, req entity.CreateSaleRequest) (*entity.SaleReceipt, error) {
	var receipt *entity.SaleReceipt

	err := s.store.WithinTx(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.LockProducts(ctx, distinctProductIDs(req.Lines)); err != nil {
			return err
		}

		saleID, err := uow.InsertSale(ctx, req.OperatorID, req.CustomerID)
		if err != nil {
			return err
		}

		total := decimal.Zero
		lines := make([]entity.SaleLine, 0, len(req.Lines))
		for i, item := range req.Lines {
			if item.Quantity <= 0 {
				return &entity.InvalidQuantityError{Line: i, ProductID: item.ProductID, Quantity: item.Quantity}
			}

			product, err := uow.GetProductForSale(ctx, item.ProductID)
			if errors.Is(err, entity.ErrProductNotFound) {
				return &entity.ProductNotFoundError{Line: i, ProductID: item.ProductID}
			}
			if err != nil {
				return err
			}

			if item.Quantity > product.Stock {
				return &entity.InsufficientStockError{Line: i, ProductID: item.ProductID, Available: product.Stock, Requested: item.Quantity}
			}

			line := entity.SaleLine{
				SaleID:    saleID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
				Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
			}
			line.ID, err = uow.InsertSaleLine(ctx, &line)
			if err != nil {
				return err
			}

			ok, err := uow.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &entity.InsufficientStockError{Line: i, ProductID: item.ProductID, Available: product.Stock, Requested: item.Quantity}
			}

			total = total.Add(line.Subtotal)
			lines = append(lines, line)
		}

		if err := uow.SetSaleTotal(ctx, saleID, total); err != nil {
			return err
		}

		receipt = &entity.SaleReceipt{SaleID: saleID, TotalAmount: total, Lines: lines}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// ListRecentSales returns the most recent sales, newest first.
func (s *SaleService) ListRecentSales(ctx context.Context, limit int) ([]entity.SaleSummary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	sales, err := s.store.ListRecentSales(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing recent sales")
		return nil, err
	}
	return sales, nil
}

func (s *SaleService) GetSaleLines(ctx context.Context, saleID int64) ([]entity.SaleLineView, error) {
	lines, err := s.store.GetSaleLines(ctx, saleID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting lines for sale %d", saleID)
		return nil, err
	}
	return lines, nil
}

func (s *SaleService) publishSaleCreated(ctx context.Context, req entity.CreateSaleRequest, receipt *entity.SaleReceipt) {
	if s.kafkaWriter == nil {
		return
	}

	event := entity.SaleCreatedEvent{
		EventID:     uuid.NewString(),
		SaleID:      receipt.SaleID,
		OperatorID:  req.OperatorID,
		CustomerID:  req.CustomerID,
		TotalAmount: receipt.TotalAmount,
		Lines:       receipt.Lines,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling event for sale %d", receipt.SaleID)
		return
	}

	// The sale is already committed; a caller that went away must not stop the event.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(SaleCreatedKey(receipt.SaleID)),
		Value: payload,
	}
	if err := s.kafkaWriter.WriteMessages(pubCtx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing event for sale %d", receipt.SaleID)
	}
}

// SaleCreatedKey is the message key of a sale event: sale.created.<id>.
func SaleCreatedKey(saleID int64) string {
	return fmt.Sprintf("sale.created.%d", saleID)
}

func idempotencyRedisKey(key string) string {
	return fmt.Sprintf("idempotency-key:%s", key)
}

// claimIdempotencyKey reports whether a key was claimed for this request.
func (s *SaleService) claimIdempotencyKey(ctx context.Context, key string) (bool, error) {
	if key == "" || s.rdb == nil {
		return false, nil
	}

	ok, err := s.rdb.SetNX(ctx, idempotencyRedisKey(key), "pending", s.idempotencyTTL).Result()
	if err != nil {
		logger.Error().Err(err).Msgf("Error claiming idempotency key %s", key)
		return false, fmt.Errorf("%w: idempotency store: %w", entity.ErrUnavailable, err)
	}
	if !ok {
		return false, entity.ErrDuplicateRequest
	}
	return true, nil
}

func (s *SaleService) releaseIdempotencyKey(ctx context.Context, key string) {
	err := s.rdb.Del(context.WithoutCancel(ctx), idempotencyRedisKey(key)).Err()
	if err != nil {
		logger.Error().Err(err).Msgf("Error releasing idempotency key %s", key)
	}
}

func distinctProductIDs(lines []entity.LineRequest) []int {
	seen := make(map[int]struct{}, len(lines))
	ids := make([]int, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	sort.Ints(ids)
	return ids
}

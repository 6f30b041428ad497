// Package checkout turns a cashier's cart into a confirmed remote sale.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"feedmart-pos/internal/cart"
	"feedmart-pos/internal/journal"
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/session"
	"feedmart-pos/internal/telemetry"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultLockTTL = 2 * time.Minute

// ErrAbandoned means the caller went away before the remote answer arrived.
// Whatever the remote side answered is discarded and the cart is kept.
var ErrAbandoned = errors.New("checkout abandoned")

var ErrNoReceipt = errors.New("remote api returned no receipt")

// SubmissionError is a failure of the remote sales endpoint. The cart is left
// as it was so the cashier can retry.
type SubmissionError struct {
	AttemptID string
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("sale submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

type Submitter interface {
	SubmitSale(ctx context.Context, sale models.SaleSubmission, idempotencyKey string) (*models.SaleReceipt, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context)
}

type Config struct {
	TaxRate decimal.Decimal
	LockTTL time.Duration
}

type Service struct {
	sessions  *session.Manager
	submitter Submitter
	journal   journal.Journal
	catalog   Invalidator
	cfg       Config
	logger    *zap.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time
}

func NewService(sessions *session.Manager, submitter Submitter, j journal.Journal, catalog Invalidator, cfg Config, logger *zap.Logger, metrics *telemetry.Metrics) *Service {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if j == nil {
		j = journal.NewMemory()
	}
	return &Service{
		sessions:  sessions,
		submitter: submitter,
		journal:   j,
		catalog:   catalog,
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Preview validates the cashier's cart and returns the payload a checkout
// would submit, without submitting it.
func (s *Service) Preview(ctx context.Context, cashierID int64) (models.SaleSubmission, error) {
	c, err := s.sessions.Load(ctx, cashierID)
	if err != nil {
		return models.SaleSubmission{}, err
	}
	return c.Finalize(s.cfg.TaxRate)
}

// Checkout finalizes the cashier's cart and submits it. On success the cart
// is reset and the sale journaled. Validation failures come back as
// *cart.ValidationError and remote failures as *SubmissionError; both leave
// the cart untouched.
func (s *Service) Checkout(ctx context.Context, cashierID int64) (models.CompletedSale, error) {
	attemptID := uuid.NewString()
	log := s.logger.With(zap.Int64("cashier_id", cashierID), zap.String("attempt_id", attemptID))
	s.metrics.CheckoutStarted()

	var completed models.CompletedSale
	err := s.sessions.WithCheckout(ctx, cashierID, attemptID, s.cfg.LockTTL, func(c *cart.Cart, reset func() error) error {
		payload, err := c.Finalize(s.cfg.TaxRate)
		if err != nil {
			s.metrics.CheckoutRejected(cart.ReasonCode(err))
			log.Info("checkout rejected", zap.String("reason", cart.ReasonCode(err)))
			return err
		}

		start := time.Now()
		receipt, err := s.submitter.SubmitSale(ctx, payload, attemptID)
		s.metrics.ObserveUpstream("submit_sale", time.Since(start).Seconds())

		if ctx.Err() != nil {
			s.metrics.CheckoutAbandoned()
			fields := []zap.Field{zap.Error(ctx.Err())}
			if receipt != nil {
				fields = append(fields, zap.String("sale_id", receipt.ID))
			}
			log.Warn("checkout abandoned, result discarded", fields...)
			return ErrAbandoned
		}
		if err != nil {
			s.metrics.SubmissionFailed()
			log.Error("sale submission failed", zap.Error(err))
			return &SubmissionError{AttemptID: attemptID, Err: err}
		}
		if receipt == nil {
			s.metrics.SubmissionFailed()
			log.Error("sale submission returned no receipt")
			return &SubmissionError{AttemptID: attemptID, Err: ErrNoReceipt}
		}

		if receipt.CreatedAt.IsZero() {
			receipt.CreatedAt = s.now()
		}
		completed = models.NewCompletedSale(cashierID, payload, *receipt)

		if err := reset(); err != nil {
			// the sale stands; a stale cart is the lesser problem
			log.Error("cart reset after sale failed", zap.String("sale_id", receipt.ID), zap.Error(err))
		}
		return nil
	})
	if errors.Is(err, session.ErrCheckoutInProgress) {
		s.metrics.CheckoutRejected("CHECKOUT_IN_PROGRESS")
	}
	if err != nil {
		return models.CompletedSale{}, err
	}

	// detached from the request so a client hanging up now cannot lose the record
	bg := context.Background()
	if err := s.journal.Record(bg, completed); err != nil {
		log.Error("journal write failed", zap.String("sale_id", completed.ID), zap.Error(err))
	}
	if s.catalog != nil {
		s.catalog.Invalidate(bg)
	}

	total, _ := completed.Total.Float64()
	s.metrics.SaleCompleted(completed.PaymentMethod.String(), total)
	log.Info("sale completed",
		zap.String("sale_id", completed.ID),
		zap.String("payment_method", completed.PaymentMethod.String()),
		zap.String("total", completed.Total.StringFixed(2)),
	)
	return completed, nil
}

func (s *Service) Receipt(ctx context.Context, saleID string) (models.CompletedSale, error) {
	return s.journal.Get(ctx, saleID)
}

func (s *Service) Receipts(ctx context.Context, cashierID int64, limit int) ([]models.CompletedSale, error) {
	return s.journal.ListByCashier(ctx, cashierID, limit)
}

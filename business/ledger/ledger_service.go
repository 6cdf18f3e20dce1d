package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"myFoodHub/domain"
	"myFoodHub/pkg/logger"
	"myFoodHub/pkg/metrics"
	"time"

	"github.com/google/uuid"
)

type BalanceRepository interface {
	Adjust(ctx context.Context, userID uint, delta float64, reason domain.BalanceReason) (float64, error)
	Settle(ctx context.Context, orderID uint) (domain.Order, error)
	ListDrift(ctx context.Context) ([]domain.BalanceDrift, error)
	CorrectDrift(ctx context.Context, drift domain.BalanceDrift, sweepID string) (domain.BalanceAudit, bool, error)
	ListEntries(ctx context.Context, userID uint) ([]domain.BalanceEntry, error)
}

// Locker guards the reconcile sweep across instances.
type Locker interface {
	Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, token string) error
}

const reconcileLockName = "ledger:reconcile"

type LedgerService struct {
	balanceRepo BalanceRepository
	locker      Locker
	lockTTL     time.Duration
}

func NewLedgerService(balanceRepo BalanceRepository, locker Locker, lockTTL time.Duration) *LedgerService {
	return &LedgerService{
		balanceRepo: balanceRepo,
		locker:      locker,
		lockTTL:     lockTTL,
	}
}

// AdjustUserBalance applies delta to the user's balance in the store and
// returns the new balance. For restaurant owners the restaurant balance is
// brought in line within the same transaction.
func (s *LedgerService) AdjustUserBalance(ctx context.Context, userID uint, delta float64, policy domain.AdjustPolicy) (balance float64, err error) {
	defer func(start time.Time) { metrics.Observe("adjust_balance", start, err) }(time.Now())

	if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, fmt.Errorf("%w: delta must be a non-zero amount", domain.ErrInvalidAmount)
	}

	var reason domain.BalanceReason
	switch policy {
	case domain.PolicyCredit:
		if delta < 0 {
			return 0, fmt.Errorf("%w: credits must be positive", domain.ErrInvalidAmount)
		}
		reason = domain.ReasonAdminCredit
	case domain.PolicySettlement:
		reason = domain.ReasonAdjustment
	default:
		return 0, fmt.Errorf("%w: unknown adjust policy %d", domain.ErrValidation, policy)
	}

	balance, err = s.balanceRepo.Adjust(ctx, userID, delta, reason)
	if err != nil {
		logger.Error("Failed to adjust balance", "user_id", userID, "delta", delta, "error", err)
		return 0, err
	}

	metrics.BalanceAdjustments.WithLabelValues(string(reason)).Inc()
	logger.Info("Balance adjusted", "user_id", userID, "delta", delta, "balance", balance)

	return balance, nil
}

// CreditUser is the admin top-up path.
func (s *LedgerService) CreditUser(ctx context.Context, actor domain.Actor, userID uint, amount float64) (float64, error) {
	if !actor.IsAdmin() {
		return 0, fmt.Errorf("%w: only admins credit balances", domain.ErrForbidden)
	}

	return s.AdjustUserBalance(ctx, userID, amount, domain.PolicyCredit)
}

// SettleOrder charges the customer and pays the restaurant for a delivered
// order.
func (s *LedgerService) SettleOrder(ctx context.Context, orderID uint) (order domain.Order, err error) {
	defer func(start time.Time) { metrics.Observe("settle_order", start, err) }(time.Now())

	order, err = s.balanceRepo.Settle(ctx, orderID)
	if err != nil {
		logger.Error("Failed to settle order", "order_id", orderID, "error", err)
		return domain.Order{}, err
	}

	metrics.BalanceAdjustments.WithLabelValues(string(domain.ReasonOrderDebit)).Inc()
	metrics.BalanceAdjustments.WithLabelValues(string(domain.ReasonOrderCredit)).Inc()
	logger.Info("Order settled", "order_id", orderID, "total", order.TotalPrice)

	return order, nil
}

func (s *LedgerService) Entries(ctx context.Context, actor domain.Actor, userID uint) ([]domain.BalanceEntry, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, fmt.Errorf("%w: you can only read your own ledger", domain.ErrForbidden)
	}

	return s.balanceRepo.ListEntries(ctx, userID)
}

// Reconcile overwrites every restaurant balance that drifted from its
// owner's balance and returns the ids it corrected. Each correction commits
// on its own; a failure on one restaurant does not stop the sweep.
func (s *LedgerService) Reconcile(ctx context.Context) (corrected []uint, err error) {
	defer func(start time.Time) { metrics.Observe("reconcile", start, err) }(time.Now())

	drifts, err := s.balanceRepo.ListDrift(ctx)
	if err != nil {
		logger.Error("Failed to list balance drift", "error", err)
		return nil, err
	}

	sweepID := uuid.NewString()
	corrected = []uint{}
	var errs []error

	for _, drift := range drifts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		audit, applied, err := s.balanceRepo.CorrectDrift(ctx, drift, sweepID)
		if err != nil {
			logger.Error("Failed to correct restaurant balance", "restaurant_id", drift.RestaurantID, "error", err)
			errs = append(errs, fmt.Errorf("restaurant %d: %w", drift.RestaurantID, err))
			continue
		}
		if !applied {
			continue
		}

		metrics.ReconcileCorrections.Inc()
		logger.Info("Restaurant balance corrected",
			"sweep_id", sweepID,
			"restaurant_id", audit.RestaurantID,
			"user_id", audit.UserID,
			"before", audit.Before,
			"after", audit.After,
		)
		corrected = append(corrected, drift.RestaurantID)
	}

	return corrected, errors.Join(errs...)
}

// RunReconcileLoop sweeps every interval until ctx is done. When a locker is
// configured only the instance holding the lease sweeps.
func (s *LedgerService) RunReconcileLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *LedgerService) sweepOnce(ctx context.Context) {
	if s.locker != nil {
		token := uuid.NewString()
		ok, err := s.locker.Acquire(ctx, reconcileLockName, token, s.lockTTL)
		if err != nil {
			logger.Warn("Failed to acquire reconcile lock", "error", err)
			return
		}
		if !ok {
			return
		}
		defer func() {
			if err := s.locker.Release(context.Background(), reconcileLockName, token); err != nil {
				logger.Warn("Failed to release reconcile lock", "error", err)
			}
		}()
	}

	corrected, err := s.Reconcile(ctx)
	if err != nil {
		logger.Error("Reconcile sweep finished with errors", "corrected", len(corrected), "error", err)
		return
	}
	if len(corrected) > 0 {
		logger.Info("Reconcile sweep finished", "corrected", len(corrected))
	}
}

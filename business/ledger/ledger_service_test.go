package ledger

import (
	"context"
	"errors"
	"math"
	"myFoodHub/domain"
	"myFoodHub/internal/repository/postgres"
	"myFoodHub/pkg/database/dbtest"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

var admin = domain.Actor{UserID: 999, Role: domain.RoleAdmin}

func newTestService(t *testing.T) (*LedgerService, *gorm.DB) {
	t.Helper()

	db := dbtest.New(t)
	return NewLedgerService(postgres.NewBalanceRepository(db), nil, time.Minute), db
}

func balances(t *testing.T, db *gorm.DB, userID uint) (user, restaurant float64) {
	t.Helper()

	var u domain.User
	if err := db.First(&u, userID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	var r domain.Restaurant
	if err := db.Where("user_id = ?", userID).First(&r).Error; err != nil {
		return u.Balance, math.NaN()
	}
	return u.Balance, r.Balance
}

func TestCreditUser_OwnerScenario(t *testing.T) {
	svc, db := newTestService(t)
	owner, _ := dbtest.Restaurant(t, db, "a@example.com", "A")

	u, r := balances(t, db, owner.ID)
	if u != 1000 || r != 0 {
		t.Fatalf("initial balances = %v / %v, want 1000 / 0", u, r)
	}

	got, err := svc.CreditUser(context.Background(), admin, owner.ID, 500)
	if err != nil {
		t.Fatalf("CreditUser() error = %v", err)
	}
	if got != 1500 {
		t.Errorf("CreditUser() = %v, want 1500", got)
	}

	u, r = balances(t, db, owner.ID)
	if u != 1500 || r != 1500 {
		t.Fatalf("balances = %v / %v, want 1500 / 1500", u, r)
	}
}

func TestAdjustUserBalance_RestaurantFollowsOwner(t *testing.T) {
	svc, db := newTestService(t)
	owner, _ := dbtest.Restaurant(t, db, "o@example.com", "Owner")
	ctx := context.Background()

	steps := []struct {
		delta  float64
		policy domain.AdjustPolicy
	}{
		{250, domain.PolicyCredit},
		{-100.5, domain.PolicySettlement},
		{0.5, domain.PolicySettlement},
		{-1150, domain.PolicySettlement},
		{42, domain.PolicyCredit},
	}

	for i, step := range steps {
		if _, err := svc.AdjustUserBalance(ctx, owner.ID, step.delta, step.policy); err != nil {
			t.Fatalf("step %d: AdjustUserBalance(%v) error = %v", i, step.delta, err)
		}
		u, r := balances(t, db, owner.ID)
		if u != r {
			t.Fatalf("step %d: user %v != restaurant %v", i, u, r)
		}
	}

	entries, err := svc.Entries(ctx, admin, owner.ID)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != len(steps) {
		t.Fatalf("journal entries = %d, want %d", len(entries), len(steps))
	}
}

func TestAdjustUserBalance_Rejects(t *testing.T) {
	svc, db := newTestService(t)
	customer := dbtest.Customer(t, db, "c@example.com")

	tests := []struct {
		name   string
		userID uint
		delta  float64
		policy domain.AdjustPolicy
		want   error
	}{
		{"zero delta", customer.ID, 0, domain.PolicySettlement, domain.ErrInvalidAmount},
		{"NaN delta", customer.ID, math.NaN(), domain.PolicySettlement, domain.ErrInvalidAmount},
		{"negative credit", customer.ID, -10, domain.PolicyCredit, domain.ErrInvalidAmount},
		{"overdraw", customer.ID, -1000.01, domain.PolicySettlement, domain.ErrInvalidAmount},
		{"unknown policy", customer.ID, 5, domain.AdjustPolicy(42), domain.ErrValidation},
		{"missing user", 4242, 5, domain.PolicyCredit, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdjustUserBalance(context.Background(), tt.userID, tt.delta, tt.policy)
			if !errors.Is(err, tt.want) {
				t.Fatalf("AdjustUserBalance() error = %v, want %v", err, tt.want)
			}
		})
	}

	if u, _ := balances(t, db, customer.ID); u != 1000 {
		t.Fatalf("balance after rejected adjustments = %v, want 1000", u)
	}
}

func TestCreditUser_RequiresAdmin(t *testing.T) {
	svc, db := newTestService(t)
	customer := dbtest.Customer(t, db, "c@example.com")

	_, err := svc.CreditUser(context.Background(), domain.Actor{UserID: customer.ID, Role: domain.RoleCustomer}, customer.ID, 10)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("CreditUser() error = %v, want ErrForbidden", err)
	}
}

// The SQLite pool holds one connection, so these adjustments queue behind each
// other and never race inside the store. ledger_integration_test.go runs the
// same load against Postgres.
func TestAdjustUserBalance_ConcurrentNoLostUpdates(t *testing.T) {
	svc, db := newTestService(t)
	owner, _ := dbtest.Restaurant(t, db, "busy@example.com", "Busy")
	runOffsettingAdjustments(t, svc, owner.ID)

	u, r := balances(t, db, owner.ID)
	if u != 1000 || r != 1000 {
		t.Fatalf("balances = %v / %v, want 1000 / 1000", u, r)
	}
}

// runOffsettingAdjustments fires pairs of +25 / -25 adjustments at userID
// concurrently.
func runOffsettingAdjustments(t *testing.T, svc *LedgerService, userID uint) {
	t.Helper()
	ctx := context.Background()

	const pairs = 20
	var wg sync.WaitGroup
	errs := make(chan error, pairs*2)

	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.AdjustUserBalance(ctx, userID, 25, domain.PolicySettlement); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.AdjustUserBalance(ctx, userID, -25, domain.PolicySettlement); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("AdjustUserBalance() error = %v", err)
	}
}

func TestReconcile_CorrectsDrift(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	drifted, drifting := dbtest.Restaurant(t, db, "d@example.com", "Drifted")
	synced, _ := dbtest.Restaurant(t, db, "s@example.com", "Synced")
	if err := db.Model(&domain.Restaurant{}).Where("user_id = ?", synced.ID).Update("balance", dbtest.OnboardingCredit).Error; err != nil {
		t.Fatalf("sync seed: %v", err)
	}

	corrected, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(corrected) != 1 || corrected[0] != drifting.ID {
		t.Fatalf("Reconcile() = %v, want [%d]", corrected, drifting.ID)
	}

	if u, r := balances(t, db, drifted.ID); u != r {
		t.Fatalf("after reconcile user %v != restaurant %v", u, r)
	}

	var audits []domain.BalanceAudit
	if err := db.Find(&audits).Error; err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 1 || audits[0].Before != 0 || audits[0].After != 1000 || audits[0].SweepID == "" {
		t.Fatalf("audits = %+v", audits)
	}

	again, err := svc.Reconcile(ctx)
	if err != nil || len(again) != 0 {
		t.Fatalf("second Reconcile() = %v, %v; want nothing to correct", again, err)
	}
}

type fakeLocker struct {
	grant    bool
	acquired int
	released int
}

func (f *fakeLocker) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	f.acquired++
	return f.grant, nil
}

func (f *fakeLocker) Release(ctx context.Context, name, token string) error {
	f.released++
	return nil
}

func TestSweepOnce_HonoursLock(t *testing.T) {
	db := dbtest.New(t)
	owner, _ := dbtest.Restaurant(t, db, "l@example.com", "Locked")
	repo := postgres.NewBalanceRepository(db)

	busy := &fakeLocker{grant: false}
	NewLedgerService(repo, busy, time.Minute).sweepOnce(context.Background())
	if u, r := balances(t, db, owner.ID); u == r {
		t.Fatal("sweep ran without holding the lock")
	}
	if busy.released != 0 {
		t.Errorf("released = %d, want 0", busy.released)
	}

	free := &fakeLocker{grant: true}
	NewLedgerService(repo, free, time.Minute).sweepOnce(context.Background())
	if u, r := balances(t, db, owner.ID); u != r {
		t.Fatalf("after locked sweep user %v != restaurant %v", u, r)
	}
	if free.acquired != 1 || free.released != 1 {
		t.Errorf("acquired/released = %d/%d, want 1/1", free.acquired, free.released)
	}
}

func deliveredOrder(t *testing.T, db *gorm.DB, customerID, restaurantID uint, total float64) domain.Order {
	t.Helper()

	order := domain.Order{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Status:       domain.StatusDelivered,
		TotalPrice:   total,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestSettleOrder(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	customer := dbtest.Customer(t, db, "c@example.com")
	owner, restaurant := dbtest.Restaurant(t, db, "r@example.com", "R")
	order := deliveredOrder(t, db, customer.ID, restaurant.ID, 17.5)

	settled, err := svc.SettleOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("SettleOrder() error = %v", err)
	}
	if !settled.Settled {
		t.Error("SettleOrder() returned an unsettled order")
	}

	if u, _ := balances(t, db, customer.ID); u != 982.5 {
		t.Errorf("customer balance = %v, want 982.5", u)
	}
	if u, r := balances(t, db, owner.ID); u != 1017.5 || r != 1017.5 {
		t.Errorf("owner balances = %v / %v, want 1017.5 / 1017.5", u, r)
	}

	if _, err := svc.SettleOrder(ctx, order.ID); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("second SettleOrder() error = %v, want ErrAlreadySettled", err)
	}
	if u, _ := balances(t, db, customer.ID); u != 982.5 {
		t.Errorf("customer charged twice: balance = %v", u)
	}
}

func TestSettleOrder_InsufficientFundsLeavesOrderUnsettled(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	customer := dbtest.Customer(t, db, "poor@example.com")
	owner, restaurant := dbtest.Restaurant(t, db, "r@example.com", "R")
	order := deliveredOrder(t, db, customer.ID, restaurant.ID, 5000)

	if _, err := svc.SettleOrder(ctx, order.ID); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("SettleOrder() error = %v, want ErrInvalidAmount", err)
	}

	var stored domain.Order
	db.First(&stored, order.ID)
	if stored.Settled {
		t.Fatal("order marked settled after a failed debit")
	}
	if u, r := balances(t, db, owner.ID); u != 1000 || r != 0 {
		t.Fatalf("owner balances = %v / %v, want untouched 1000 / 0", u, r)
	}
}

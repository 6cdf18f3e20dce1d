// Package dbtest opens migrated throwaway databases and seeds accounts for
// tests.
package dbtest

import (
	"myFoodHub/domain"
	"myFoodHub/pkg/database"
	"os"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// New returns a migrated in-memory SQLite database private to t. It is
// closed when the test finishes.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.InitSQLite(database.MemoryDSN(t.Name()))
	if err != nil {
		t.Fatalf("InitSQLite() error = %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// PostgresDSNEnv names the variable integration tests read their database
// from.
const PostgresDSNEnv = "TEST_POSTGRES_DSN"

// Postgres returns a migrated connection to the database in PostgresDSNEnv,
// skipping t when it is unset. Rows are not cleaned up, so callers seed with
// unique emails.
func Postgres(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	db, err := database.OpenPostgres(dsn)
	if err != nil {
		t.Fatalf("OpenPostgres() error = %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// OnboardingCredit is the user balance seeded accounts start with.
const OnboardingCredit = 1000.0

func seedUser(t testing.TB, db *gorm.DB, email string, role domain.Role) domain.User {
	t.Helper()

	user := domain.User{
		FullName: email,
		Email:    email,
		Password: "not-a-hash",
		Role:     role,
		Balance:  OnboardingCredit,
		Location: domain.Location{Street: "Jl. Sudirman 1", City: "Jakarta", PostalCode: "10220"},
	}
	if err := db.Omit(clause.Associations).Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}

	return user
}

func Customer(t testing.TB, db *gorm.DB, email string) domain.User {
	t.Helper()

	user := seedUser(t, db, email, domain.RoleCustomer)
	customer := domain.Customer{UserID: user.ID, DeliveryAddress: "Jl. Thamrin 10"}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("seed customer %s: %v", email, err)
	}
	user.Customer = &customer

	return user
}

func Admin(t testing.TB, db *gorm.DB, email string) domain.User {
	t.Helper()

	user := seedUser(t, db, email, domain.RoleAdmin)
	admin := domain.Admin{UserID: user.ID, Department: "ops"}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin %s: %v", email, err)
	}
	user.Admin = &admin

	return user
}

// Restaurant seeds an open restaurant and its owner. Like a fresh
// registration, the restaurant balance starts at zero.
func Restaurant(t testing.TB, db *gorm.DB, email, name string) (domain.User, domain.Restaurant) {
	t.Helper()

	user := seedUser(t, db, email, domain.RoleRestaurant)
	restaurant := domain.Restaurant{
		UserID: user.ID,
		Name:   name,
		City:   "Jakarta",
		IsOpen: true,
	}
	if err := db.Omit(clause.Associations).Create(&restaurant).Error; err != nil {
		t.Fatalf("seed restaurant %s: %v", name, err)
	}
	user.Restaurant = &restaurant

	return user, restaurant
}

func MenuItem(t testing.TB, db *gorm.DB, restaurantID uint, name string, price float64) domain.MenuItem {
	t.Helper()

	item := domain.MenuItem{
		RestaurantID: restaurantID,
		Name:         name,
		Category:     "mains",
		Price:        price,
		IsAvailable:  true,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item %s: %v", name, err)
	}

	return item
}

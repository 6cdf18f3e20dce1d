package account

import (
	"context"
	"errors"
	"myFoodHub/domain"
	"myFoodHub/internal/repository/postgres"
	"myFoodHub/pkg/database/dbtest"
	"testing"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*accountService, *gorm.DB) {
	t.Helper()

	db := dbtest.New(t)
	return NewAccountService(postgres.NewUserRepository(db), validator.New(), 1000), db
}

func baseInput(email string, role domain.Role) RegisterInput {
	return RegisterInput{
		FullName: "Ayu Lestari",
		Email:    email,
		Password: "secret123",
		Role:     role,
		Location: LocationInput{
			Street:     "Jl. Sudirman 1",
			City:       "Jakarta",
			PostalCode: "10220",
		},
	}
}

func TestRegister_CreatesExactlyOneExtension(t *testing.T) {
	tests := []struct {
		name  string
		input func() RegisterInput
		role  domain.Role
	}{
		{
			name: "customer",
			input: func() RegisterInput {
				in := baseInput("cust@example.com", domain.RoleCustomer)
				in.Customer = &CustomerInput{DeliveryAddress: "Jl. Thamrin 10"}
				return in
			},
			role: domain.RoleCustomer,
		},
		{
			name: "restaurant",
			input: func() RegisterInput {
				in := baseInput("resto@example.com", domain.RoleRestaurant)
				in.Restaurant = &RestaurantInput{Name: "Warung Ayu"}
				return in
			},
			role: domain.RoleRestaurant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newTestService(t)
			ctx := context.Background()

			user, err := svc.Register(ctx, tt.input())
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if user.Password != "" {
				t.Error("Register() returned the password hash")
			}

			var customers, restaurants, admins int64
			db.Model(&domain.Customer{}).Where("user_id = ?", user.ID).Count(&customers)
			db.Model(&domain.Restaurant{}).Where("user_id = ?", user.ID).Count(&restaurants)
			db.Model(&domain.Admin{}).Where("user_id = ?", user.ID).Count(&admins)

			if got := customers + restaurants + admins; got != 1 {
				t.Fatalf("extension rows = %d, want 1", got)
			}

			stored, err := svc.GetAccount(ctx, domain.Actor{UserID: user.ID, Role: tt.role}, user.ID)
			if err != nil {
				t.Fatalf("GetAccount() error = %v", err)
			}
			if stored.Role != tt.role || stored.Profile() == nil {
				t.Fatalf("GetAccount() role = %s, profile = %v", stored.Role, stored.Profile())
			}
		})
	}
}

func TestRegister_RestaurantStartsAtZero(t *testing.T) {
	svc, _ := newTestService(t)

	in := baseInput("owner@example.com", domain.RoleRestaurant)
	in.Restaurant = &RestaurantInput{Name: "Sate Pak Kumis"}

	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Balance != 1000 {
		t.Errorf("user balance = %v, want 1000", user.Balance)
	}
	if user.Restaurant == nil || user.Restaurant.Balance != 0 {
		t.Fatalf("restaurant = %+v, want balance 0", user.Restaurant)
	}
	if user.Restaurant.Street != "Jl. Sudirman 1" {
		t.Errorf("restaurant street = %q, want the owner's street", user.Restaurant.Street)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	in := baseInput("dup@example.com", domain.RoleCustomer)
	in.Customer = &CustomerInput{DeliveryAddress: "Jl. Thamrin 10"}

	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	in.Email = "  DUP@example.com "
	if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("second Register() error = %v, want ErrDuplicateIdentity", err)
	}

	var users int64
	db.Model(&domain.User{}).Count(&users)
	if users != 1 {
		t.Fatalf("users = %d, want 1", users)
	}
}

// The unique index rejects the duplicate even when the pre-check is skipped.
func TestCreateAccount_UniqueIndexIsAuthoritative(t *testing.T) {
	db := dbtest.New(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	newUser := func() domain.User {
		u, err := domain.NewAccount(domain.User{
			FullName: "Race",
			Email:    "race@example.com",
			Password: "hash",
			Location: domain.Location{Street: "s", City: "c", PostalCode: "p"},
		}, domain.RoleCustomer, &domain.Customer{DeliveryAddress: "addr"})
		if err != nil {
			t.Fatalf("NewAccount() error = %v", err)
		}
		return u
	}

	first := newUser()
	if err := repo.CreateAccount(ctx, &first); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	second := newUser()
	if err := repo.CreateAccount(ctx, &second); !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("CreateAccount() error = %v, want ErrDuplicateIdentity", err)
	}

	var customers int64
	db.Model(&domain.Customer{}).Count(&customers)
	if customers != 1 {
		t.Fatalf("customers = %d, want 1", customers)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterInput) { in.Password = "123" }},
		{"missing city", func(in *RegisterInput) { in.Location.City = "" }},
		{"unknown role", func(in *RegisterInput) { in.Role = "COURIER" }},
		{"missing customer payload", func(in *RegisterInput) { in.Customer = nil }},
		{"admin self registration", func(in *RegisterInput) { in.Role = domain.RoleAdmin }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := newTestService(t)

			in := baseInput("v@example.com", domain.RoleCustomer)
			in.Customer = &CustomerInput{DeliveryAddress: "Jl. Thamrin 10"}
			tt.mutate(&in)

			if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("Register() error = %v, want ErrValidation", err)
			}

			var users int64
			db.Model(&domain.User{}).Count(&users)
			if users != 0 {
				t.Fatalf("users = %d, want 0", users)
			}
		})
	}
}

func TestProvision_AdminOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := baseInput("admin2@example.com", domain.RoleAdmin)
	in.Admin = &AdminInput{Department: "finance"}

	if _, err := svc.Provision(ctx, domain.Actor{UserID: 7, Role: domain.RoleCustomer}, in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Provision() by customer error = %v, want ErrForbidden", err)
	}

	user, err := svc.Provision(ctx, domain.Actor{UserID: 1, Role: domain.RoleAdmin}, in)
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if user.Admin == nil || user.Admin.Department != "finance" {
		t.Fatalf("admin payload = %+v", user.Admin)
	}
}

func TestGetAccount_Access(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetAccount(ctx, domain.Actor{UserID: 1, Role: domain.RoleCustomer}, 2); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("GetAccount() other user error = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetAccount(ctx, domain.Actor{UserID: 1, Role: domain.RoleAdmin}, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetAccount() missing error = %v, want ErrNotFound", err)
	}
}

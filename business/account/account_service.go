package account

import (
	"context"
	"errors"
	"fmt"
	"myFoodHub/domain"
	"myFoodHub/pkg/logger"
	"myFoodHub/pkg/metrics"
	"myFoodHub/pkg/utils"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AccountRepository contract interface
type AccountRepository interface {
	CreateAccount(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
}

type (
	LocationInput struct {
		Street      string   `json:"street" validate:"required"`
		BlockNumber string   `json:"block_number"`
		City        string   `json:"city" validate:"required"`
		PostalCode  string   `json:"postal_code" validate:"required"`
		Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
		Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	}

	CustomerInput struct {
		DeliveryAddress string `json:"delivery_address" validate:"required"`
	}

	RestaurantInput struct {
		Name        string `json:"name" validate:"required"`
		Street      string `json:"street"`
		BlockNumber string `json:"block_number"`
		City        string `json:"city"`
		PostalCode  string `json:"postal_code"`
		Rank        int    `json:"rank" validate:"gte=0"`
	}

	AdminInput struct {
		Department string `json:"department"`
	}

	RegisterInput struct {
		FullName   string           `json:"full_name" validate:"required"`
		Email      string           `json:"email" validate:"required,email"`
		Password   string           `json:"password" validate:"required,min=6"`
		Phone      string           `json:"phone"`
		Role       domain.Role      `json:"role" validate:"required,oneof=CUSTOMER RESTAURANT ADMIN"`
		Location   LocationInput    `json:"location"`
		Customer   *CustomerInput   `json:"customer,omitempty"`
		Restaurant *RestaurantInput `json:"restaurant,omitempty"`
		Admin      *AdminInput      `json:"admin,omitempty"`
	}
)

type accountService struct {
	accountRepo      AccountRepository
	validate         *validator.Validate
	onboardingCredit float64
}

func NewAccountService(accountRepo AccountRepository, validate *validator.Validate, onboardingCredit float64) *accountService {
	return &accountService{
		accountRepo:      accountRepo,
		validate:         validate,
		onboardingCredit: onboardingCredit,
	}
}

// Register creates a customer or restaurant account. Admin accounts can only
// be provisioned by another admin.
func (s *accountService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if input.Role == domain.RoleAdmin {
		return domain.User{}, fmt.Errorf("%w: admin accounts cannot self register", domain.ErrValidation)
	}

	return s.createAccount(ctx, "register", input)
}

// Provision lets an admin create an account of any role.
func (s *accountService) Provision(ctx context.Context, actor domain.Actor, input RegisterInput) (domain.User, error) {
	if !actor.IsAdmin() {
		return domain.User{}, fmt.Errorf("%w: only admins provision accounts", domain.ErrForbidden)
	}

	return s.createAccount(ctx, "provision", input)
}

func (s *accountService) createAccount(ctx context.Context, operation string, input RegisterInput) (user domain.User, err error) {
	defer func(start time.Time) { metrics.Observe(operation, start, err) }(time.Now())

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Struct(&input); err != nil {
		logger.Error("Invalid account input", "error", err)
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	profile, err := s.buildProfile(input)
	if err != nil {
		return domain.User{}, err
	}

	// Advisory only: the unique index decides when two registrations race.
	if _, err := s.accountRepo.FindByEmail(ctx, input.Email); err == nil {
		logger.Warn("Email already exists", "email", input.Email)
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrDuplicateIdentity, input.Email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser, err := domain.NewAccount(domain.User{
		FullName: input.FullName,
		Email:    input.Email,
		Password: string(passwordHash),
		Phone:    input.Phone,
		Balance:  s.onboardingCredit,
		Location: domain.Location{
			Street:      input.Location.Street,
			BlockNumber: input.Location.BlockNumber,
			City:        input.Location.City,
			PostalCode:  input.Location.PostalCode,
			Latitude:    input.Location.Latitude,
			Longitude:   input.Location.Longitude,
		},
	}, input.Role, profile)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.accountRepo.CreateAccount(ctx, &newUser); err != nil {
		logger.Error("Failed to create account", "email", input.Email, "error", err)
		return domain.User{}, err
	}

	logger.Info("Account created", "user_id", newUser.ID, "role", newUser.Role)

	newUser.Password = ""
	return newUser, nil
}

func (s *accountService) buildProfile(input RegisterInput) (domain.Profile, error) {
	switch input.Role {
	case domain.RoleCustomer:
		if input.Customer == nil {
			return nil, fmt.Errorf("%w: customer details are required", domain.ErrValidation)
		}
		if err := s.validate.Struct(input.Customer); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
		}
		return &domain.Customer{DeliveryAddress: input.Customer.DeliveryAddress}, nil

	case domain.RoleRestaurant:
		if input.Restaurant == nil {
			return nil, fmt.Errorf("%w: restaurant details are required", domain.ErrValidation)
		}
		if err := s.validate.Struct(input.Restaurant); err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
		}
		r := input.Restaurant
		street, city, postalCode := r.Street, r.City, r.PostalCode
		if street == "" {
			street, city, postalCode = input.Location.Street, input.Location.City, input.Location.PostalCode
		}
		// Starts at zero; it only moves when the owner's balance changes.
		return &domain.Restaurant{
			Name:        r.Name,
			Street:      street,
			BlockNumber: r.BlockNumber,
			City:        city,
			PostalCode:  postalCode,
			IsOpen:      true,
			Balance:     0,
			Rank:        r.Rank,
		}, nil

	case domain.RoleAdmin:
		department := ""
		if input.Admin != nil {
			department = input.Admin.Department
		}
		return &domain.Admin{Department: department}, nil
	}

	return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
}

// GetAccount returns the account with its role payload. Callers may read
// their own account; admins may read any.
func (s *accountService) GetAccount(ctx context.Context, actor domain.Actor, id uint) (domain.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return domain.User{}, fmt.Errorf("%w: you can only access your own account", domain.ErrForbidden)
	}

	user, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get account", "user_id", id, "error", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}

func (s *accountService) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	return s.accountRepo.ListRestaurants(ctx)
}

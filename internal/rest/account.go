package rest

import (
	"context"
	"myFoodHub/business/account"
	"myFoodHub/domain"
	"myFoodHub/internal/middleware"
	"myFoodHub/pkg/logger"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type AccountService interface {
	Register(ctx context.Context, input account.RegisterInput) (domain.User, error)
	Provision(ctx context.Context, actor domain.Actor, input account.RegisterInput) (domain.User, error)
	GetAccount(ctx context.Context, actor domain.Actor, id uint) (domain.User, error)
	ListRestaurants(ctx context.Context) ([]domain.Restaurant, error)
}

type DeletionService interface {
	DeleteRestaurantAccount(ctx context.Context, actor domain.Actor, restaurantID uint) error
	DeleteUserAccount(ctx context.Context, actor domain.Actor, userID uint) error
}

type AccountHandler struct {
	accountService  AccountService
	deletionService DeletionService
	timeout         time.Duration
}

func NewAccountHandler(accountService AccountService, deletionService DeletionService) *AccountHandler {
	return &AccountHandler{
		accountService:  accountService,
		deletionService: deletionService,
		timeout:         10 * time.Second,
	}
}

// Register is the public sign-up for customers and restaurants.
func (h *AccountHandler) Register(c echo.Context) error {
	var req account.RegisterInput
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.accountService.Register(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(user))
}

func (h *AccountHandler) Provision(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	var req account.RegisterInput
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.accountService.Provision(ctx, actor, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(user))
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.accountService.GetAccount(ctx, actor, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(user))
}

func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.deletionService.DeleteUserAccount(ctx, actor, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Account deleted successfully"))
}

func (h *AccountHandler) DeleteRestaurant(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.deletionService.DeleteRestaurantAccount(ctx, actor, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Restaurant deleted successfully"))
}

func (h *AccountHandler) ListRestaurants(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	restaurants, err := h.accountService.ListRestaurants(ctx)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(restaurants))
}

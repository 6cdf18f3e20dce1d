package rest

import (
	"context"
	"myFoodHub/business/menu"
	"myFoodHub/domain"
	"myFoodHub/internal/middleware"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type MenuService interface {
	AddMenuItem(ctx context.Context, actor domain.Actor, restaurantID uint, input menu.MenuItemInput) (domain.MenuItem, error)
	UpdateMenuItemPrice(ctx context.Context, actor domain.Actor, itemID uint, price float64) (domain.MenuItem, error)
	ListMenu(ctx context.Context, restaurantID uint) ([]domain.MenuItem, error)
}

type (
	MenuHandler struct {
		menuService MenuService
		validate    *validator.Validate
		timeout     time.Duration
	}

	PriceInput struct {
		Price *float64 `json:"price" validate:"required,gte=0"`
	}
)

func NewMenuHandler(menuService MenuService) *MenuHandler {
	return &MenuHandler{
		menuService: menuService,
		validate:    validator.New(),
		timeout:     10 * time.Second,
	}
}

func (h *MenuHandler) ListMenu(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.menuService.ListMenu(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

func (h *MenuHandler) AddMenuItem(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var request menu.MenuItemInput
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.menuService.AddMenuItem(ctx, actor, id, request)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(item))
}

func (h *MenuHandler) UpdatePrice(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var request PriceInput
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.menuService.UpdateMenuItemPrice(ctx, actor, id, *request.Price)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(item))
}

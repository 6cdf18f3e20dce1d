package rest

import (
	"context"
	"errors"
	"myFoodHub/domain"
	"myFoodHub/internal/middleware"
	"myFoodHub/pkg/logger"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OrdersHandler struct {
		validate      *validator.Validate
		ordersService OrdersService
		ratingService RatingService
		timeout       time.Duration
	}

	OrdersService interface {
		PlaceOrder(ctx context.Context, customerID, restaurantID uint, lines []domain.LineItem, deliveryAddress string) (domain.Order, error)
		TransitionStatus(ctx context.Context, actor domain.Actor, orderID uint, to domain.OrderStatus) (domain.Order, error)
		Settle(ctx context.Context, actor domain.Actor, orderID uint) (domain.Order, error)
		GetOrder(ctx context.Context, actor domain.Actor, id uint) (domain.Order, error)
		ListMyOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	}

	RatingService interface {
		SubmitRating(ctx context.Context, orderID, userID uint, score int, comment string) (domain.Rating, error)
		HasRated(ctx context.Context, orderID, userID uint) (domain.Rating, bool, error)
	}

	OrdersInput struct {
		RestaurantID    uint              `json:"restaurant_id" validate:"required"`
		Items           []domain.LineItem `json:"items" validate:"dive"`
		DeliveryAddress string            `json:"delivery_address"`
	}

	StatusInput struct {
		Status domain.OrderStatus `json:"status" validate:"required,oneof=ACCEPTED PREPARING OUT_FOR_DELIVERY DELIVERED CANCELLED"`
	}

	RatingInput struct {
		Score   int    `json:"score"`
		Comment string `json:"comment" validate:"max=500"`
	}

	// TransitionResponse carries the committed order. SettlementError is set
	// when the order was delivered but could not be settled yet.
	TransitionResponse struct {
		Order           domain.Order `json:"order"`
		SettlementError string       `json:"settlement_error,omitempty"`
	}

	// RatingConflictResponse returns the stored rating to a caller whose
	// rating was rejected.
	RatingConflictResponse struct {
		Message string        `json:"message"`
		Rating  domain.Rating `json:"rating"`
	}
)

func NewOrdersHandler(ordersService OrdersService, ratingService RatingService) *OrdersHandler {
	return &OrdersHandler{
		validate:      validator.New(),
		ordersService: ordersService,
		ratingService: ratingService,
		timeout:       10 * time.Second,
	}
}

func (h *OrdersHandler) PlaceOrder(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if actor.Role != domain.RoleCustomer {
		return c.JSON(http.StatusForbidden, ResponseError{Message: "only customers can place orders"})
	}

	var request OrdersInput
	if err := c.Bind(&request); err != nil {
		logger.Warn("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.PlaceOrder(ctx, actor.UserID, request.RestaurantID, request.Items, request.DeliveryAddress)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(order))
}

func (h *OrdersHandler) ListMyOrders(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, err := h.ordersService.ListMyOrders(ctx, actor)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(orders))
}

func (h *OrdersHandler) GetOrder(c echo.Context) error {
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

	order, err := h.ordersService.GetOrder(ctx, actor, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) UpdateStatus(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var request StatusInput
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.TransitionStatus(ctx, actor, id, request.Status)
	if err != nil && order.ID == 0 {
		return writeError(c, err)
	}

	resp := TransitionResponse{Order: order}
	if err != nil {
		resp.SettlementError = err.Error()
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(resp))
}

func (h *OrdersHandler) Settle(c echo.Context) error {
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

	order, err := h.ordersService.Settle(ctx, actor, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(order))
}

func (h *OrdersHandler) SubmitRating(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var request RatingInput
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&request); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	rating, err := h.ratingService.SubmitRating(ctx, id, actor.UserID, request.Score, request.Comment)
	if errors.Is(err, domain.ErrAlreadyRated) {
		return c.JSON(http.StatusConflict, RatingConflictResponse{Message: err.Error(), Rating: rating})
	}
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(rating))
}

func (h *OrdersHandler) MyRating(c echo.Context) error {
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

	rating, found, err := h.ratingService.HasRated(ctx, id, actor.UserID)
	if err != nil {
		return writeError(c, err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "order not rated yet"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(rating))
}

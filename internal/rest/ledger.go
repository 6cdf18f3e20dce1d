package rest

import (
	"context"
	"myFoodHub/domain"
	"myFoodHub/internal/middleware"
	"myFoodHub/pkg/logger"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type LedgerService interface {
	CreditUser(ctx context.Context, actor domain.Actor, userID uint, amount float64) (float64, error)
	Entries(ctx context.Context, actor domain.Actor, userID uint) ([]domain.BalanceEntry, error)
	Reconcile(ctx context.Context) ([]uint, error)
}

type (
	LedgerHandler struct {
		ledgerService LedgerService
		validate      *validator.Validate
		timeout       time.Duration
	}

	CreditInput struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}

	BalanceResponse struct {
		UserID  uint    `json:"user_id"`
		Balance float64 `json:"balance"`
	}

	ReconcileResponse struct {
		Corrected []uint `json:"corrected_restaurant_ids"`
	}
)

func NewLedgerHandler(ledgerService LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		validate:      validator.New(),
		timeout:       10 * time.Second,
	}
}

func (h *LedgerHandler) Credit(c echo.Context) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req CreditInput
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	balance, err := h.ledgerService.CreditUser(ctx, actor, id, req.Amount)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(BalanceResponse{UserID: id, Balance: balance}))
}

func (h *LedgerHandler) Entries(c echo.Context) error {
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

	entries, err := h.ledgerService.Entries(ctx, actor, id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(entries))
}

// Reconcile runs one sweep on demand. Partial failures still report what
// was corrected.
func (h *LedgerHandler) Reconcile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	corrected, err := h.ledgerService.Reconcile(ctx)
	if err != nil && len(corrected) == 0 {
		return writeError(c, err)
	}
	if err != nil {
		logger.Warn("Reconcile finished with errors", "error", err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(ReconcileResponse{Corrected: corrected}))
}

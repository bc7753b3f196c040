package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/services/purchase"
	"github.com/mcoot/gamestore/internal/web/middleware"
	"github.com/mcoot/gamestore/internal/web/templates/pages"
)

// PurchaseHandler handles buying games and the payment service callbacks
type PurchaseHandler struct {
	purchase *purchase.Controller
	catalog  *catalog.Service
	logger   *slog.Logger
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseController *purchase.Controller, catalogService *catalog.Service, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchase: purchaseController,
		catalog:  catalogService,
		logger:   logger,
	}
}

// Buy creates an order and renders the form that hands over to the payment service
func (h *PurchaseHandler) Buy(w http.ResponseWriter, r *http.Request) {
	id, ok := gameIDVar(r)
	if !ok {
		NotFound(w, r)
		return
	}

	checkout, err := h.purchase.InitiatePurchase(r.Context(), middleware.GetAccount(r.Context()), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render(w, r, http.StatusOK, pages.Checkout(pages.CheckoutData{
		PageData:   pageData(r, "Buy "+checkout.Game.Name),
		GameName:   checkout.Game.Name,
		PID:        checkout.Order.ID,
		SID:        checkout.SID,
		Amount:     checkout.Amount,
		Checksum:   checkout.Checksum,
		PaymentURL: checkout.PaymentURL,
		SuccessURL: checkout.SuccessURL,
		CancelURL:  checkout.CancelURL,
		ErrorURL:   checkout.ErrorURL,
	}))
}

// Success verifies the callback and completes the order
func (h *PurchaseHandler) Success(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order, err := h.purchase.ConfirmPayment(r.Context(), middleware.GetAccount(r.Context()), purchase.PaymentResult{
		Result:   q.Get("result"),
		PID:      q.Get("pid"),
		Ref:      q.Get("ref"),
		Checksum: q.Get("checksum"),
	})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	game, err := h.catalog.GetGame(r.Context(), order.GameID)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render(w, r, http.StatusOK, pages.PostPayment(pages.PostPaymentData{
		PageData: pageData(r, "Payment successful"),
		Result:   purchase.ResultSuccess,
		Game:     game,
		Order:    order,
	}))
}

// Cancel acknowledges a cancelled payment
func (h *PurchaseHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	err := h.purchase.CancelPurchase(r.Context(), middleware.GetAccount(r.Context()), r.URL.Query().Get("result"))
	h.acknowledged(w, r, err, purchase.ResultCancel, "Payment cancelled")
}

// Error acknowledges a failed payment
func (h *PurchaseHandler) Error(w http.ResponseWriter, r *http.Request) {
	err := h.purchase.ErrorPurchase(r.Context(), middleware.GetAccount(r.Context()), r.URL.Query().Get("result"))
	h.acknowledged(w, r, err, purchase.ResultError, "Payment failed")
}

func (h *PurchaseHandler) acknowledged(w http.ResponseWriter, r *http.Request, err error, result, title string) {
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}
	render(w, r, http.StatusOK, pages.PostPayment(pages.PostPaymentData{
		PageData: pageData(r, title),
		Result:   result,
	}))
}

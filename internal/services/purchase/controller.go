package purchase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/mcoot/gamestore/internal/dependencies/clock"
	"github.com/mcoot/gamestore/internal/model"
	"github.com/mcoot/gamestore/internal/services/auth"
	"github.com/mcoot/gamestore/internal/services/catalog"
	"github.com/mcoot/gamestore/internal/storage"
)

// Result tags sent back by the payment service
const (
	ResultSuccess = "success"
	ResultCancel  = "cancel"
	ResultError   = "error"
)

// Config holds the payment service settings
type Config struct {
	// SID identifies this store to the payment service
	SID string
	// Secret is the shared key used in both checksums
	Secret string
	// PaymentURL is where the checkout form posts to
	PaymentURL string
	// BaseURL is used to build the success/cancel/error callback URLs
	BaseURL string
}

// DefaultConfig returns the settings of the course payment simulator
func DefaultConfig() Config {
	return Config{
		SID:        "katsonmirrinkolo",
		Secret:     "d0a292a5c6f3b7a6a081860448cf21c7",
		PaymentURL: "https://simplepayments.herokuapp.com/pay/",
		BaseURL:    "http://localhost:8080",
	}
}

// Controller runs the purchase workflow: order creation, payment confirmation and sales reporting
type Controller struct {
	storage  storage.Storage
	clock    clock.Clock
	logger   *slog.Logger
	observer Observer
	cfg      Config
}

// New creates a new purchase controller
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, observer Observer, cfg Config) *Controller {
	if observer == nil {
		observer = NopObserver{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Controller{
		storage:  storage,
		clock:    clock,
		logger:   logger,
		observer: observer,
		cfg:      cfg,
	}
}

// Checkout is everything the payment form needs
type Checkout struct {
	Order      *model.Order
	Game       *model.Game
	SID        string
	Amount     string
	Checksum   string
	PaymentURL string
	SuccessURL string
	CancelURL  string
	ErrorURL   string
}

// InitiatePurchase creates an unpaid order for the caller with the current price
func (c *Controller) InitiatePurchase(ctx context.Context, caller *model.Account, gameID model.GameID) (*Checkout, error) {
	if err := auth.Require(caller, model.RolePlayer); err != nil {
		return nil, err
	}

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	owns, err := c.storage.OwnsGame(ctx, caller.ID, gameID)
	if err != nil {
		return nil, err
	}
	if owns {
		return nil, model.ErrAlreadyOwned
	}
	if game.IsFree() {
		return nil, model.ErrNotPurchasable
	}

	order := &model.Order{
		BuyerID:   caller.ID,
		SellerID:  game.DeveloperID,
		GameID:    game.ID,
		Price:     game.Price,
		CreatedAt: c.clock.Now(),
	}
	if err := c.storage.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	c.observer.OrderCreated()
	c.logger.InfoContext(ctx, "order created",
		"order_id", order.ID,
		"game_id", game.ID,
		"buyer_id", caller.ID,
		"price", order.Price.String(),
	)

	return &Checkout{
		Order:      order,
		Game:       game,
		SID:        c.cfg.SID,
		Amount:     order.Price.String(),
		Checksum:   PaymentChecksum(order.ID, c.cfg.SID, order.Price, c.cfg.Secret),
		PaymentURL: c.cfg.PaymentURL,
		SuccessURL: c.callbackURL(ResultSuccess),
		CancelURL:  c.callbackURL(ResultCancel),
		ErrorURL:   c.callbackURL(ResultError),
	}, nil
}

func (c *Controller) callbackURL(result string) string {
	return c.cfg.BaseURL + "/payment/" + result + "/"
}

// PaymentResult is the query string of a payment callback
type PaymentResult struct {
	Result   string
	PID      string
	Ref      string
	Checksum string
}

// ConfirmPayment verifies a success callback and, exactly once per order, marks it paid
// and grants the game to the buyer. A replay returns model.ErrAlreadyProcessed.
func (c *Controller) ConfirmPayment(ctx context.Context, caller *model.Account, r PaymentResult) (*model.Order, error) {
	if err := auth.Require(caller, model.RolePlayer); err != nil {
		return nil, err
	}

	if r.Result != ResultSuccess {
		c.reject(ctx, RejectBadRequest, r)
		return nil, model.ErrBadRequest
	}
	if !checksumEqual(r.Checksum, ResultChecksum(r.PID, r.Ref, r.Result, c.cfg.Secret)) {
		c.reject(ctx, RejectIntegrity, r)
		return nil, model.ErrIntegrity
	}

	id, err := strconv.ParseUint(r.PID, 10, 64)
	if err != nil {
		c.reject(ctx, RejectBadRequest, r)
		return nil, model.ErrBadRequest
	}
	orderID := model.OrderID(id)

	order, err := c.storage.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != caller.ID {
		return nil, model.ErrForbidden
	}

	completed, err := c.storage.CompleteOrder(ctx, orderID, c.clock.Now())
	if err != nil {
		if errors.Is(err, model.ErrAlreadyProcessed) {
			c.reject(ctx, RejectAlreadyProcessed, r)
		}
		return nil, err
	}

	c.observer.PaymentCompleted(float64(completed.Price) / 100)
	c.logger.InfoContext(ctx, "payment confirmed",
		"order_id", completed.ID,
		"game_id", completed.GameID,
		"buyer_id", completed.BuyerID,
		"ref", r.Ref,
	)
	return completed, nil
}

func (c *Controller) reject(ctx context.Context, reason string, r PaymentResult) {
	c.observer.PaymentRejected(reason)
	c.logger.WarnContext(ctx, "payment callback rejected",
		"reason", reason,
		"pid", r.PID,
		"result", r.Result,
	)
}

// CancelPurchase acknowledges a cancelled payment. Nothing is stored.
func (c *Controller) CancelPurchase(ctx context.Context, caller *model.Account, result string) error {
	return c.acknowledge(caller, result, ResultCancel)
}

// ErrorPurchase acknowledges a failed payment. Nothing is stored.
func (c *Controller) ErrorPurchase(ctx context.Context, caller *model.Account, result string) error {
	return c.acknowledge(caller, result, ResultError)
}

func (c *Controller) acknowledge(caller *model.Account, result, expected string) error {
	if err := auth.Require(caller, model.RolePlayer); err != nil {
		return err
	}
	if result != expected {
		return model.ErrBadRequest
	}
	return nil
}

// Sale is an order with its references resolved to names
type Sale struct {
	Order  *model.Order
	Buyer  string
	Seller string
	Game   string
}

// Status renders the paid flag as paid or not_paid
func (s Sale) Status() string {
	return s.Order.StatusLabel()
}

// GameSales lists the paid orders of one game. Only its developer may see them.
func (c *Controller) GameSales(ctx context.Context, caller *model.Account, gameID model.GameID) (*model.Game, []Sale, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.RequireGameOwner(caller, game); err != nil {
		return nil, nil, err
	}

	paid := true
	orders, err := c.storage.ListOrders(ctx, model.OrderFilter{SellerID: caller.ID, GameID: game.ID, Paid: &paid})
	if err != nil {
		return nil, nil, err
	}
	sales, err := c.resolve(ctx, orders)
	if err != nil {
		return nil, nil, err
	}
	return game, sales, nil
}

// SalesQuery filters the developer's sales. A nil field is not applied; all given fields AND together.
type SalesQuery struct {
	OrderID *string
	Game    *string
	Buyer   *string
	Status  *string
}

// ParseSalesQuery reads the filters from URL query parameters, keeping presence
func ParseSalesQuery(values url.Values) SalesQuery {
	get := func(key string) *string {
		if !values.Has(key) {
			return nil
		}
		v := values.Get(key)
		return &v
	}
	return SalesQuery{
		OrderID: get("order"),
		Game:    get("game"),
		Buyer:   get("buyer"),
		Status:  get("status"),
	}
}

// ListSales returns the caller's sales matching q. References that resolve to nothing
// (unknown game, unknown or non-player buyer, unparseable order id, unknown status)
// give an empty result rather than an error.
func (c *Controller) ListSales(ctx context.Context, caller *model.Account, q SalesQuery) ([]Sale, error) {
	if err := auth.Require(caller, model.RoleDeveloper); err != nil {
		return nil, err
	}

	filter, ok, err := c.salesFilter(ctx, caller.ID, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Sale{}, nil
	}

	orders, err := c.storage.ListOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	return c.resolve(ctx, orders)
}

// salesFilter translates the query. ok is false when the query cannot match anything.
func (c *Controller) salesFilter(ctx context.Context, sellerID model.AccountID, q SalesQuery) (model.OrderFilter, bool, error) {
	filter := model.OrderFilter{SellerID: sellerID}

	if q.OrderID != nil {
		id, err := strconv.ParseUint(*q.OrderID, 10, 64)
		if err != nil || id == 0 {
			return filter, false, nil
		}
		filter.OrderID = model.OrderID(id)
	}

	if q.Game != nil {
		game, err := c.storage.GetGameByName(ctx, *q.Game)
		if errors.Is(err, model.ErrGameNotFound) {
			return filter, false, nil
		}
		if err != nil {
			return filter, false, err
		}
		filter.GameID = game.ID
	}

	if q.Buyer != nil {
		buyer, err := c.storage.GetAccountByUsername(ctx, *q.Buyer)
		if errors.Is(err, model.ErrAccountNotFound) {
			return filter, false, nil
		}
		if err != nil {
			return filter, false, err
		}
		if !buyer.IsPlayer() {
			return filter, false, nil
		}
		filter.BuyerID = buyer.ID
	}

	if q.Status != nil {
		var paid bool
		switch *q.Status {
		case model.OrderStatusPaid:
			paid = true
		case model.OrderStatusNotPaid:
			paid = false
		default:
			return filter, false, nil
		}
		filter.Paid = &paid
	}

	return filter, true, nil
}

func (c *Controller) resolve(ctx context.Context, orders []*model.Order) ([]Sale, error) {
	names := catalog.NewNameResolver(c.storage)
	sales := make([]Sale, 0, len(orders))
	for _, order := range orders {
		buyer, err := names.Username(ctx, order.BuyerID)
		if err != nil {
			return nil, err
		}
		seller, err := names.Username(ctx, order.SellerID)
		if err != nil {
			return nil, err
		}
		game, err := names.GameName(ctx, order.GameID)
		if err != nil {
			return nil, err
		}
		sales = append(sales, Sale{Order: order, Buyer: buyer, Seller: seller, Game: game})
	}
	return sales, nil
}

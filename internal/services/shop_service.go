package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"ayuta/internal/events"
	"ayuta/internal/metrics"
	"ayuta/internal/models"
	"ayuta/internal/payment"
	"ayuta/internal/pricing"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	checkoutCurrency = "gbp"

	msgBasketCleared    = "Basket cleared."
	msgPaymentApproved  = "Payment approved. Complete registration next."
	msgRegisterFirstPay = "Payment comes first. You can register right after checkout."
	msgEmptyBasket      = "Your basket is empty. Add a kit to continue."

	// MaxLineQuantity caps the quantity of a single basket row.
	MaxLineQuantity = 99
)

var goalLabels = map[models.Goal]string{
	models.GoalAll:         "All goals",
	models.GoalWellness:    "General wellness",
	models.GoalMetabolic:   "Metabolic health",
	models.GoalEnergy:      "Energy and fatigue",
	models.GoalPerformance: "Performance",
}

// resultTemplates are the biomarkers issued with every demo order.
var resultTemplates = []models.Biomarker{
	{Name: "Vitamin D", Value: "6.5 nmol/L", Status: "Optimal"},
	{Name: "HbA1c", Value: "1.06 mmol/L", Status: "Optimal"},
	{Name: "Lipid Panel", Value: "0.59 mmol/L", Status: "Low"},
	{Name: "Cortisol", Value: "2.81 nmol/L", Status: "Optimal"},
}

// GoalOption is one goal filter button.
type GoalOption struct {
	Goal    models.Goal `json:"goal"`
	Label   string      `json:"label"`
	Pressed bool        `json:"pressed"`
}

// ProductCard is one catalog entry as shown on the shop page.
type ProductCard struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	PriceLabel string   `json:"priceLabel"`
	Goals      []string `json:"goals"`
	Visible    bool     `json:"visible"`
	Selected   bool     `json:"selected"`
	Quantity   int      `json:"quantity"`
	Action     string   `json:"action"`
}

// CategoryView groups product cards. A category is visible iff any of its products is.
type CategoryView struct {
	Name     string        `json:"name"`
	Visible  bool          `json:"visible"`
	Products []ProductCard `json:"products"`
}

// BasketRow is one cart line.
type BasketRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	PriceLabel string  `json:"priceLabel"`
	Quantity   int     `json:"quantity"`
}

// TotalsView carries raw and formatted totals.
type TotalsView struct {
	models.Totals
	SubtotalLabel string `json:"subtotalLabel"`
	TaxesLabel    string `json:"taxesLabel"`
	ShippingLabel string `json:"shippingLabel"`
	TotalLabel    string `json:"totalLabel"`
}

// Step is a checkout progress marker.
type Step struct {
	Key      string `json:"key"`
	Complete bool   `json:"complete"`
}

// ShopView is the full render of the shop page.
type ShopView struct {
	Goal                models.Goal    `json:"goal"`
	GoalLabel           string         `json:"goalLabel"`
	Goals               []GoalOption   `json:"goals"`
	Categories          []CategoryView `json:"categories"`
	Basket              []BasketRow    `json:"basket"`
	BasketMessage       string         `json:"basketMessage,omitempty"`
	Totals              TotalsView     `json:"totals"`
	Steps               []Step         `json:"steps"`
	RegistrationMessage string         `json:"registrationMessage"`
	CheckoutEmail       string         `json:"checkoutEmail"`
}

// CheckoutRequest is the checkout form.
type CheckoutRequest struct {
	Email string `json:"email"`
}

// CartItemRequest adds a quantity of a product to the cart.
type CartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

// GoalRequest selects a goal filter.
type GoalRequest struct {
	Goal string `json:"goal"`
}

// ShopService drives the shop page: goal filter, cart and checkout.
type ShopService struct {
	tab      *Tab
	catalog  *CatalogService
	gateway  payment.Gateway
	orderIDs *pricing.OrderIDGenerator
	metrics  metrics.Recorder
	logger   *zap.Logger
	cfg      TabConfig
	validate *validator.Validate

	checkingOut atomic.Bool
	page        *page[ShopView]
}

func newShopService(t *Tab, deps Dependencies, cfg TabConfig) *ShopService {
	s := &ShopService{
		tab:      t,
		catalog:  deps.Catalog,
		gateway:  deps.Gateway,
		orderIDs: deps.OrderIDs,
		metrics:  deps.Metrics,
		logger:   t.logger,
		cfg:      cfg,
		validate: validator.New(),
	}
	s.page = newPage(t.bus, t.state, s.render, events.StateUpdated, events.AuthUpdated)
	return s
}

// View returns the last render of the shop page.
func (s *ShopService) View() ShopView {
	return s.page.view()
}

// Renders returns how many times the page has been rendered.
func (s *ShopService) Renders() int {
	return s.page.count()
}

// SetGoal selects the goal filter. A blank goal selects all.
func (s *ShopService) SetGoal(goal string) (Status, error) {
	g := models.Goal(strings.TrimSpace(goal))
	if g == "" {
		g = models.GoalAll
	}
	if !g.Valid() {
		return Status{}, NewValidationError(ErrMsgUnknownGoal)
	}
	res, err := s.tab.mutate(func(state *models.State) error {
		state.Goal = g
		return nil
	}, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	return SuccessStatus("", res), nil
}

// ToggleCartItem removes the product from the cart if present, else adds one of it.
func (s *ShopService) ToggleCartItem(productID string) (Status, error) {
	product, err := s.lookupProduct(productID)
	if err != nil {
		return Status{}, err
	}
	res, err := s.tab.mutate(func(state *models.State) error {
		for i, item := range state.Cart {
			if item.ID == product.ID {
				state.Cart = append(state.Cart[:i], state.Cart[i+1:]...)
				return nil
			}
		}
		state.Cart = append(state.Cart, newCartItem(product, 1))
		return nil
	}, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	return SuccessStatus("", res), nil
}

// AddToCart adds quantity of a product, merging into an existing row.
func (s *ShopService) AddToCart(req CartItemRequest) (Status, error) {
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := s.validate.Struct(req); err != nil {
		return Status{}, &ActionError{Kind: KindValidation, Message: cartItemMessage(err), Err: err}
	}
	product, err := s.lookupProduct(req.ProductID)
	if err != nil {
		return Status{}, err
	}
	res, err := s.tab.mutate(func(state *models.State) error {
		for i := range state.Cart {
			if state.Cart[i].ID == product.ID {
				current := min(max(state.Cart[i].Quantity, 0), MaxLineQuantity)
				state.Cart[i].Quantity = min(current+req.Quantity, MaxLineQuantity)
				return nil
			}
		}
		state.Cart = append(state.Cart, newCartItem(product, req.Quantity))
		return nil
	}, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	return SuccessStatus("", res), nil
}

// DecrementCartItem lowers a row's quantity by one and drops the row at zero.
func (s *ShopService) DecrementCartItem(productID string) (Status, error) {
	res, err := s.tab.mutate(func(state *models.State) error {
		for i := range state.Cart {
			if state.Cart[i].ID != productID {
				continue
			}
			state.Cart[i].Quantity--
			if state.Cart[i].Quantity <= 0 {
				state.Cart = append(state.Cart[:i], state.Cart[i+1:]...)
			}
			return nil
		}
		return NewLookupError(ErrMsgItemNotInBasket)
	}, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	return SuccessStatus("", res), nil
}

// RemoveCartItem drops every row for productID.
func (s *ShopService) RemoveCartItem(productID string) (Status, error) {
	res, err := s.tab.mutate(func(state *models.State) error {
		kept := state.Cart[:0]
		for _, item := range state.Cart {
			if item.ID != productID {
				kept = append(kept, item)
			}
		}
		state.Cart = kept
		return nil
	}, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	return SuccessStatus("", res), nil
}

// ClearCart empties the cart.
func (s *ShopService) ClearCart() (Status, error) {
	res, err := s.tab.mutate(func(state *models.State) error {
		state.Cart = []models.CartItem{}
		return nil
	}, events.StateUpdated)
	if err != nil {
		return Status{}, err
	}
	return SuccessStatus(msgBasketCleared, res), nil
}

// Checkout pays for the cart through the gateway and records the order.
// The tab stays unlocked while the gateway is awaited; a second checkout for
// the same tab is refused until the first one finishes.
func (s *ShopService) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, Status, error) {
	if !s.checkingOut.CompareAndSwap(false, true) {
		s.metrics.RecordCheckout(metrics.CheckoutRejected)
		return nil, Status{}, ErrCheckoutInProgress
	}
	defer s.checkingOut.Store(false)

	snapshot := s.tab.State()
	if len(snapshot.Cart) == 0 {
		s.metrics.RecordCheckout(metrics.CheckoutRejected)
		return nil, Status{}, NewValidationError(ErrMsgCartEmpty)
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		s.metrics.RecordCheckout(metrics.CheckoutRejected)
		return nil, Status{}, NewValidationError(ErrMsgReceiptEmail)
	}
	if s.gateway == nil {
		s.metrics.RecordCheckout(metrics.CheckoutFailed)
		return nil, Status{}, NewGatewayError(ErrMsgGatewayUnavailable, nil)
	}

	totals := pricing.GetTotals(snapshot.Cart, s.cfg.TaxRate, s.cfg.ShippingCost)
	intent, err := s.pay(ctx, email, totals.Total)
	if err != nil {
		s.metrics.RecordCheckout(metrics.CheckoutFailed)
		s.logger.Warn("checkout failed", zap.String("email", email), zap.Error(err))
		return nil, Status{}, NewGatewayError(ErrMsgPaymentFailed, err)
	}

	var order models.Order
	res, err := s.tab.mutate(func(state *models.State) error {
		now := s.tab.now()
		order = models.Order{
			ID:              s.orderIDs.Next(orderIDTaken(state.Orders)),
			Items:           models.CloneCart(snapshot.Cart),
			Total:           totals.Total,
			Status:          models.OrderStatusPaid,
			CreatedAt:       now,
			Email:           email,
			PaymentIntentID: intent.ID,
		}
		state.Orders = append([]models.Order{order}, state.Orders...)
		if s.cfg.IssueResults {
			state.Results = append([]models.ResultEntry{mockResults(order, now)}, state.Results...)
		}
		state.Cart = withoutPaidItems(state.Cart, snapshot.Cart)
		state.PaymentEmail = email
		return nil
	}, events.StateUpdated, events.AuthUpdated)
	if err != nil {
		return nil, Status{}, err
	}

	s.metrics.RecordCheckout(metrics.CheckoutSucceeded)
	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("payment_intent_id", order.PaymentIntentID),
		zap.Float64("total", order.Total))
	return &order, SuccessStatus(msgPaymentApproved, res), nil
}

// pay runs the two-step gateway protocol within the configured timeout.
func (s *ShopService) pay(ctx context.Context, email string, amount float64) (*payment.PaymentIntent, error) {
	if s.cfg.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GatewayTimeout)
		defer cancel()
	}

	start := time.Now()
	intent, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
		Amount:       amount,
		Currency:     checkoutCurrency,
		ReceiptEmail: email,
	})
	s.metrics.RecordGatewayLatency("create", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if intent == nil {
		return nil, fmt.Errorf("failed to create payment intent: empty response")
	}

	start = time.Now()
	confirmation, err := s.gateway.ConfirmCardPayment(ctx, intent.ClientSecret, payment.PaymentMethod{
		BillingDetails: payment.BillingDetails{Email: email},
	})
	s.metrics.RecordGatewayLatency("confirm", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment %s: %w", intent.ID, err)
	}
	if !confirmation.Succeeded() {
		status := ""
		if confirmation != nil {
			status = confirmation.Status
		}
		return nil, fmt.Errorf("payment %s not completed: status %q", intent.ID, status)
	}
	return intent, nil
}

func (s *ShopService) lookupProduct(productID string) (*models.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" || s.catalog == nil {
		return nil, NewValidationError(ErrMsgProductNotFound)
	}
	product, err := s.catalog.GetProductByID(productID)
	if err != nil {
		return nil, &ActionError{Kind: KindValidation, Message: ErrMsgProductNotFound, Err: err}
	}
	return product, nil
}

func (s *ShopService) products() []models.Product {
	if s.catalog == nil {
		return nil
	}
	products, err := s.catalog.GetAllProducts()
	if err != nil {
		s.logger.Warn("catalog unavailable", zap.Error(err))
		return nil
	}
	return products
}

func (s *ShopService) render(state models.State) ShopView {
	goal := state.Goal
	if !goal.Valid() {
		goal = models.GoalAll
	}

	view := ShopView{
		Goal:          goal,
		GoalLabel:     goalLabels[goal],
		Goals:         make([]GoalOption, 0, len(models.Goals)),
		Categories:    []CategoryView{},
		Basket:        basketRows(state.Cart),
		Totals:        totalsView(pricing.GetTotals(state.Cart, s.cfg.TaxRate, s.cfg.ShippingCost)),
		CheckoutEmail: state.PrefillEmail(),
		Steps: []Step{
			{Key: "goal", Complete: goal != models.GoalAll},
			{Key: "menu", Complete: len(state.Cart) > 0 || len(state.Orders) > 0},
			{Key: "pay", Complete: len(state.Orders) > 0},
			{Key: "register", Complete: state.User != nil && state.User.Email != ""},
		},
		RegistrationMessage: msgRegisterFirstPay,
	}
	for _, g := range models.Goals {
		view.Goals = append(view.Goals, GoalOption{Goal: g, Label: goalLabels[g], Pressed: g == goal})
	}
	if len(state.Cart) == 0 {
		view.BasketMessage = msgEmptyBasket
	}
	if len(state.Orders) > 0 {
		view.RegistrationMessage = fmt.Sprintf("Payment captured for %s. Register now to unlock orders and results.", state.Orders[0].ID)
	}

	index := map[string]int{}
	for _, p := range s.products() {
		quantity := 0
		for _, item := range state.Cart {
			if item.ID == p.ID {
				quantity += max(item.Quantity, 0)
			}
		}
		selected := state.HasCartItem(p.ID)
		card := ProductCard{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			PriceLabel: pricing.FormatCurrency(p.Price),
			Goals:      p.Goals,
			Visible:    p.MatchesGoal(goal),
			Selected:   selected,
			Quantity:   quantity,
			Action:     "Add",
		}
		if selected {
			card.Action = "Remove"
		}

		i, ok := index[p.Category]
		if !ok {
			i = len(view.Categories)
			index[p.Category] = i
			view.Categories = append(view.Categories, CategoryView{Name: p.Category, Products: []ProductCard{}})
		}
		view.Categories[i].Products = append(view.Categories[i].Products, card)
		view.Categories[i].Visible = view.Categories[i].Visible || card.Visible
	}
	return view
}

// cartItemMessage turns a CartItemRequest validation failure into a user message.
func cartItemMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() != "Quantity" {
				continue
			}
			if fe.Tag() == "lte" {
				return ErrMsgQuantityTooLarge
			}
			return ErrMsgQuantityPositive
		}
	}
	return ErrMsgProductNotFound
}

// withoutPaidItems removes the paid quantities from cart. Rows added or raised
// while the payment was in flight keep their unpaid remainder.
func withoutPaidItems(cart, paid []models.CartItem) []models.CartItem {
	owed := make(map[string]int, len(paid))
	for _, item := range paid {
		owed[item.ID] += max(item.Quantity, 0)
	}
	kept := make([]models.CartItem, 0, len(cart))
	for _, item := range cart {
		due, ok := owed[item.ID]
		if !ok {
			kept = append(kept, item)
			continue
		}
		settled := min(max(item.Quantity, 0), due)
		owed[item.ID] = due - settled
		if item.Quantity-settled > 0 {
			item.Quantity -= settled
			kept = append(kept, item)
		}
	}
	return kept
}

func newCartItem(p *models.Product, quantity int) models.CartItem {
	return models.CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: quantity}
}

func basketRows(cart []models.CartItem) []BasketRow {
	rows := make([]BasketRow, 0, len(cart))
	for _, item := range cart {
		rows = append(rows, BasketRow{
			ID:         item.ID,
			Name:       item.Name,
			Price:      item.Price,
			PriceLabel: pricing.FormatCurrency(item.Price),
			Quantity:   item.Quantity,
		})
	}
	return rows
}

func totalsView(t models.Totals) TotalsView {
	return TotalsView{
		Totals:        t,
		SubtotalLabel: pricing.FormatCurrency(t.Subtotal),
		TaxesLabel:    pricing.FormatCurrency(t.Taxes),
		ShippingLabel: pricing.FormatCurrency(t.Shipping),
		TotalLabel:    pricing.FormatCurrency(t.Total),
	}
}

func orderIDTaken(orders []models.Order) func(string) bool {
	return func(id string) bool {
		for _, o := range orders {
			if o.ID == id {
				return true
			}
		}
		return false
	}
}

func mockResults(order models.Order, createdAt string) models.ResultEntry {
	rows := make([]models.Biomarker, len(resultTemplates))
	copy(rows, resultTemplates)
	return models.ResultEntry{
		OrderID:   order.ID,
		Email:     order.Email,
		CreatedAt: createdAt,
		Status:    models.ResultStatusAvailable,
		Results:   rows,
	}
}

package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// StockProductRequest represents the stocking request payload
type StockProductRequest struct {
	ID            int     `json:"id" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required"`
	DeliveryPrice float64 `json:"delivery_price" validate:"gte=0"`
	ExpiryDate    string  `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Quantity      int     `json:"quantity" validate:"gte=0"`
	Category      string  `json:"category" validate:"required,oneof=food non_food"`
}

// RegisterCashierRequest represents the cashier registration payload
type RegisterCashierRequest struct {
	ID     int     `json:"id" validate:"required,gt=0"`
	Name   string  `json:"name" validate:"required"`
	Salary float64 `json:"salary" validate:"gte=0"`
}

// CheckoutRequest represents one transaction: a cashier and a basket.
type CheckoutRequest struct {
	CashierID int            `json:"cashier_id" validate:"required,gt=0"`
	Items     []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

// CheckoutItem is one requested basket line
type CheckoutItem struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

// ProductResponse represents a catalog entry
type ProductResponse struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	DeliveryPrice decimal.Decimal `json:"delivery_price"`
	ExpiryDate    string          `json:"expiry_date"`
	Quantity      int             `json:"quantity"`
	Category      string          `json:"category"`
}

// CashierResponse represents a roster entry
type CashierResponse struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Salary decimal.Decimal `json:"salary"`
}

// SaleItemResponse is one priced line of a receipt
type SaleItemResponse struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// ReceiptResponse represents a completed transaction
type ReceiptResponse struct {
	Number      int                `json:"number"`
	Cashier     CashierResponse    `json:"cashier"`
	Timestamp   time.Time          `json:"timestamp"`
	Items       []SaleItemResponse `json:"items"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
}

// SummaryResponse aggregates the store's reporting queries
type SummaryResponse struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	StaffPayroll     decimal.Decimal `json:"staff_payroll"`
	DeliveryCosts    decimal.Decimal `json:"delivery_costs"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	TransactionCount int             `json:"transaction_count"`
}

// StoreHandler handles HTTP requests for the retail store
type StoreHandler struct {
	store             *store.Store
	logger            *zap.Logger
	lowStockThreshold int
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(st *store.Store, logger *zap.Logger, lowStockThreshold int) *StoreHandler {
	return &StoreHandler{
		store:             st,
		logger:            logger,
		lowStockThreshold: lowStockThreshold,
	}
}

// RegisterRoutes registers all store routes
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/products", h.StockProduct)
		r.Get("/products", h.ListInventory)
		r.Get("/products/expired", h.ListExpired)
		r.Get("/products/low-stock", h.ListLowStock)

		r.Post("/cashiers", h.RegisterCashier)
		r.Get("/cashiers", h.ListCashiers)

		r.Post("/checkout", h.Checkout)

		r.Get("/receipts", h.ListReceipts)
		r.Get("/receipts/{number}", h.GetReceipt)

		r.Get("/reports/summary", h.Summary)
	})
}

// StockProduct adds a product to the catalog
func (h *StoreHandler) StockProduct(w http.ResponseWriter, r *http.Request) {
	var req StockProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondDecodeError(w, err)
		return
	}

	expiry, err := time.Parse(dateLayout, req.ExpiryDate)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "expiry_date must be formatted as YYYY-MM-DD")
		return
	}

	product := domain.NewProduct(
		req.ID,
		req.Name,
		decimal.NewFromFloat(req.DeliveryPrice),
		expiry,
		req.Quantity,
		domain.Category(req.Category),
	)
	h.store.StockProduct(product)

	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(*product))
}

// ListInventory returns a snapshot of the catalog
func (h *StoreHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(h.store.Inventory()))
}

// ListExpired returns catalog entries expired as of the as_of date (default today)
func (h *StoreHandler) ListExpired(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "as_of must be formatted as YYYY-MM-DD")
			return
		}
		asOf = parsed
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(h.store.FindExpiredItems(asOf)))
}

// ListLowStock returns catalog entries at or below the stock threshold
func (h *StoreHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	threshold := h.lowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "threshold must be a non-negative integer")
			return
		}
		threshold = parsed
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(h.store.FindItemsRunningLow(threshold)))
}

// RegisterCashier adds an employee to the roster
func (h *StoreHandler) RegisterCashier(w http.ResponseWriter, r *http.Request) {
	var req RegisterCashierRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondDecodeError(w, err)
		return
	}

	cashier := domain.Cashier{
		ID:     req.ID,
		Name:   req.Name,
		Salary: decimal.NewFromFloat(req.Salary),
	}
	h.store.RegisterCashier(cashier)

	middleware.RespondWithJSON(w, http.StatusCreated, toCashierResponse(cashier))
}

// ListCashiers returns a snapshot of the roster
func (h *StoreHandler) ListCashiers(w http.ResponseWriter, r *http.Request) {
	roster := h.store.Cashiers()
	out := make([]CashierResponse, 0, len(roster))
	for _, c := range roster {
		out = append(out, toCashierResponse(c))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// Checkout runs the transaction pipeline for one basket
func (h *StoreHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondDecodeError(w, err)
		return
	}

	cashier, err := h.store.FindCashier(req.CashierID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "cashier not found")
		return
	}

	// Fold the line array into the basket mapping, summing duplicates.
	basket := make(map[int]int, len(req.Items))
	for _, item := range req.Items {
		basket[item.ProductID] += item.Quantity
	}

	receipt, err := h.store.ProcessTransaction(&cashier, basket)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	h.logger.Info("Checkout completed",
		zap.Int("receipt_number", receipt.Number),
		zap.Int("cashier_id", cashier.ID),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toReceiptResponse(receipt))
}

// ListReceipts returns the transaction history
func (h *StoreHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	history := h.store.Transactions()
	out := make([]ReceiptResponse, 0, len(history))
	for i := range history {
		out = append(out, toReceiptResponse(&history[i]))
	}
	middleware.RespondWithJSON(w, http.StatusOK, out)
}

// GetReceipt reads a receipt record back from the archive
func (h *StoreHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		middleware.RespondWithError(w, http.StatusBadRequest, "receipt number must be a positive integer")
		return
	}

	receipt, err := h.store.LoadReceipt(number)
	if err != nil {
		if errors.Is(err, repository.ErrReceiptNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "receipt not found")
			return
		}
		h.logger.Error("Failed to load receipt", zap.Int("number", number), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load receipt")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toReceiptResponse(receipt))
}

// Summary returns the store's aggregate reporting figures
func (h *StoreHandler) Summary(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, SummaryResponse{
		TotalRevenue:     h.store.TotalRevenue(),
		StaffPayroll:     h.store.StaffPayroll(),
		DeliveryCosts:    h.store.DeliveryCosts(),
		NetProfit:        h.store.NetProfit(),
		TransactionCount: h.store.TransactionCount(),
	})
}

func (h *StoreHandler) respondDecodeError(w http.ResponseWriter, err error) {
	h.logger.Debug("Request validation failed", zap.Error(err))

	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func (h *StoreHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var unavailable *domain.ProductUnavailableError
	var outOfStock *domain.OutOfStockError
	var persistence *domain.PersistenceError

	switch {
	case errors.As(err, &unavailable):
		middleware.RespondWithError(w, http.StatusUnprocessableEntity, unavailable.Error())
	case errors.As(err, &outOfStock):
		middleware.RespondWithErrorDetails(w, http.StatusConflict, outOfStock.Error(), map[string]interface{}{
			"product_name": outOfStock.ProductName,
			"available":    outOfStock.Available,
		})
	case errors.As(err, &persistence):
		h.logger.Error("Receipt archive failed", zap.Int("receipt_number", persistence.Number), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "receipt could not be archived")
	case errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrCashierRequired):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process transaction")
	}
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		DeliveryPrice: p.DeliveryPrice,
		ExpiryDate:    p.ExpiryDate.Format(dateLayout),
		Quantity:      p.Quantity,
		Category:      string(p.Category),
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toCashierResponse(c domain.Cashier) CashierResponse {
	return CashierResponse{ID: c.ID, Name: c.Name, Salary: c.Salary}
}

func toReceiptResponse(r *domain.Receipt) ReceiptResponse {
	items := make([]SaleItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, SaleItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalCost:   item.TotalCost(),
		})
	}
	return ReceiptResponse{
		Number:      r.Number,
		Cashier:     toCashierResponse(r.Cashier),
		Timestamp:   r.Timestamp,
		Items:       items,
		TotalAmount: r.TotalAmount,
	}
}

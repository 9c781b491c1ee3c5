package store

import (
	"errors"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrCashierNotFound = errors.New("cashier not found")
)

// Config fixes a store's pricing policy at construction. DiscountRate is a
// fraction in [0,1]; NearExpiryDays is the markdown window in days. Both
// apply uniformly to every pricing decision the store makes.
type Config struct {
	DiscountRate   decimal.Decimal
	NearExpiryDays int

	// Sequence supplies receipt numbers. Leave nil to share
	// domain.SharedReceipts with every other store in the process.
	Sequence *domain.ReceiptSequence

	// Clock supplies the transaction capture time. Leave nil for time.Now.
	Clock func() time.Time
}

// Store is the aggregate root: it owns the product catalog, the cashier
// roster and the transaction history, and orchestrates the transaction
// pipeline. All methods are safe for concurrent use; accessors return
// independent copies of internal state.
type Store struct {
	mu             sync.RWMutex
	catalog        []*domain.Product
	cashiers       []domain.Cashier
	history        []domain.Receipt
	discountRate   decimal.Decimal
	nearExpiryDays int
	seq            *domain.ReceiptSequence
	receipts       repository.ReceiptRepository
	clock          func() time.Time
	logger         *zap.Logger
}

// New creates a store with the given pricing configuration and receipt
// archive.
func New(cfg Config, receipts repository.ReceiptRepository, logger *zap.Logger) *Store {
	if cfg.Sequence == nil {
		cfg.Sequence = domain.SharedReceipts
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		discountRate:   cfg.DiscountRate,
		nearExpiryDays: cfg.NearExpiryDays,
		seq:            cfg.Sequence,
		receipts:       receipts,
		clock:          cfg.Clock,
		logger:         logger,
	}
}

// StockProduct appends a product to the catalog. The catalog is append-only;
// the store keeps its own copy so the caller cannot mutate it afterwards.
func (s *Store) StockProduct(p *domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := *p
	s.catalog = append(s.catalog, &owned)
	s.logger.Info("product stocked",
		zap.Int("product_id", owned.ID),
		zap.String("name", owned.Name),
		zap.Int("quantity", owned.Quantity),
		zap.String("category", string(owned.Category)),
	)
}

// RegisterCashier adds an employee to the roster.
func (s *Store) RegisterCashier(c domain.Cashier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cashiers = append(s.cashiers, c)
	s.logger.Info("cashier registered", zap.Int("cashier_id", c.ID), zap.String("name", c.Name))
}

// FindCashier looks up a roster entry by id.
func (s *Store) FindCashier(id int) (domain.Cashier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cashiers {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Cashier{}, ErrCashierNotFound
}

type stagedLine struct {
	product   *domain.Product
	quantity  int
	unitPrice decimal.Decimal
}

// ProcessTransaction converts a basket (product id to requested quantity)
// into a validated sale. The pipeline is two-phase: every line is resolved,
// expiry-checked, stock-checked and priced before any quantity is
// decremented, so a failing line leaves the catalog untouched. The capture
// date is taken once at the start and used for every pricing and expiry
// decision in the call.
//
// The receipt is archived after the catalog commit; an archive failure is
// returned as a *domain.PersistenceError with the stock decrements already
// applied and the receipt absent from the history.
func (s *Store) ProcessTransaction(cashier *domain.Cashier, basket map[int]int) (*domain.Receipt, error) {
	if cashier == nil {
		return nil, domain.ErrCashierRequired
	}
	if len(basket) == 0 {
		return nil, domain.ErrNoItems
	}

	s.mu.Lock()
	today := domain.DateOf(s.clock())

	staged := make([]stagedLine, 0, len(basket))
	for productID, requested := range basket {
		product := s.locate(productID)
		if product == nil || product.IsExpired(today) {
			s.mu.Unlock()
			return nil, &domain.ProductUnavailableError{ProductID: productID}
		}
		if product.Quantity < requested {
			err := &domain.OutOfStockError{ProductName: product.Name, Available: product.Quantity}
			s.mu.Unlock()
			return nil, err
		}
		staged = append(staged, stagedLine{
			product:   product,
			quantity:  requested,
			unitPrice: product.PriceOnSale(today, s.nearExpiryDays, s.discountRate),
		})
	}

	items := make([]*domain.SaleItem, 0, len(staged))
	for _, line := range staged {
		if err := line.product.DecreaseQuantity(line.quantity); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		items = append(items, &domain.SaleItem{
			ProductID:   line.product.ID,
			ProductName: line.product.Name,
			Quantity:    line.quantity,
			UnitPrice:   line.unitPrice,
		})
	}

	receipt, err := domain.NewReceipt(s.seq, cashier, items)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	// The receipt is already immutable and fully formed; the archive writes
	// happen outside the mutation lock.
	if err := s.receipts.SaveText(receipt.Number, receipt.Text()); err != nil {
		return nil, &domain.PersistenceError{Number: receipt.Number, Err: err}
	}
	if err := s.receipts.SaveRecord(receipt); err != nil {
		return nil, &domain.PersistenceError{Number: receipt.Number, Err: err}
	}

	s.mu.Lock()
	s.history = append(s.history, *receipt)
	s.mu.Unlock()

	s.logger.Info("transaction processed",
		zap.Int("receipt_number", receipt.Number),
		zap.Int("cashier_id", cashier.ID),
		zap.Int("items", len(receipt.Items)),
		zap.String("total", receipt.TotalAmount.StringFixed(2)),
	)
	return receipt, nil
}

// LoadReceipt reads a receipt record back from the archive.
func (s *Store) LoadReceipt(number int) (*domain.Receipt, error) {
	return s.receipts.FindByNumber(number)
}

func (s *Store) locate(productID int) *domain.Product {
	for _, p := range s.catalog {
		if p.ID == productID {
			return p
		}
	}
	return nil
}

// TotalRevenue sums the totals of every recorded receipt.
func (s *Store) TotalRevenue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revenueLocked()
}

// StaffPayroll sums the roster's salaries.
func (s *Store) StaffPayroll() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payrollLocked()
}

// DeliveryCosts sums delivery price times current quantity over the catalog.
func (s *Store) DeliveryCosts() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deliveryCostsLocked()
}

// NetProfit is revenue minus payroll minus delivery costs, computed from one
// consistent snapshot.
func (s *Store) NetProfit() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revenueLocked().Sub(s.payrollLocked()).Sub(s.deliveryCostsLocked())
}

func (s *Store) revenueLocked() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.history {
		total = total.Add(r.TotalAmount)
	}
	return total
}

func (s *Store) payrollLocked() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.cashiers {
		total = total.Add(c.Salary)
	}
	return total
}

func (s *Store) deliveryCostsLocked() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.catalog {
		total = total.Add(p.DeliveryPrice.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total
}

// FindExpiredItems returns the catalog entries expired as of the given date.
func (s *Store) FindExpiredItems(asOf time.Time) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []domain.Product
	for _, p := range s.catalog {
		if p.IsExpired(asOf) {
			expired = append(expired, *p)
		}
	}
	return expired
}

// FindItemsRunningLow returns the catalog entries with quantity at or below
// minimumStock.
func (s *Store) FindItemsRunningLow(minimumStock int) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var low []domain.Product
	for _, p := range s.catalog {
		if p.Quantity <= minimumStock {
			low = append(low, *p)
		}
	}
	return low
}

// Inventory returns an independent copy of the catalog in stocking order.
func (s *Store) Inventory() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inventory := make([]domain.Product, 0, len(s.catalog))
	for _, p := range s.catalog {
		inventory = append(inventory, *p)
	}
	return inventory
}

// Cashiers returns an independent copy of the roster.
func (s *Store) Cashiers() []domain.Cashier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roster := make([]domain.Cashier, len(s.cashiers))
	copy(roster, s.cashiers)
	return roster
}

// Transactions returns a deep copy of the receipt history.
func (s *Store) Transactions() []domain.Receipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := make([]domain.Receipt, 0, len(s.history))
	for _, r := range s.history {
		copied := r
		copied.Items = r.ItemsCopy()
		history = append(history, copied)
	}
	return history
}

// TransactionCount reports how many transactions have been recorded.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

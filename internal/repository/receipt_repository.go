package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrReceiptNotFound = errors.New("receipt not found")
)

// ReceiptRepository is the external persistence collaborator the transaction
// pipeline calls after a receipt is constructed. Implementations round-trip a
// receipt's number, cashier name, total amount and item count.
type ReceiptRepository interface {
	SaveText(number int, text string) error
	SaveRecord(receipt *domain.Receipt) error
	FindByNumber(number int) (*domain.Receipt, error)
}

type fileReceiptRepository struct {
	dir string
}

// NewFileReceiptRepository creates a ReceiptRepository backed by flat
// per-receipt files under dir: receipt-<n>.txt for the human-readable
// rendering and receipt-<n>.json for the durable record.
func NewFileReceiptRepository(dir string) (ReceiptRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &fileReceiptRepository{dir: dir}, nil
}

// receiptRecord is the on-disk shape of a receipt.
type receiptRecord struct {
	Number      int              `json:"number"`
	Cashier     cashierRecord    `json:"cashier"`
	Timestamp   time.Time        `json:"timestamp"`
	Items       []saleItemRecord `json:"items"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

type cashierRecord struct {
	ID     int             `json:"id"`
	Name   string          `json:"name"`
	Salary decimal.Decimal `json:"salary"`
}

type saleItemRecord struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (r *fileReceiptRepository) textPath(number int) string {
	return filepath.Join(r.dir, fmt.Sprintf("receipt-%d.txt", number))
}

func (r *fileReceiptRepository) recordPath(number int) string {
	return filepath.Join(r.dir, fmt.Sprintf("receipt-%d.json", number))
}

// SaveText writes the rendered receipt to receipt-<n>.txt.
func (r *fileReceiptRepository) SaveText(number int, text string) error {
	if err := os.WriteFile(r.textPath(number), []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("write receipt text %d: %w", number, err)
	}
	return nil
}

// SaveRecord writes the durable serialized form to receipt-<n>.json.
func (r *fileReceiptRepository) SaveRecord(receipt *domain.Receipt) error {
	record := receiptRecord{
		Number: receipt.Number,
		Cashier: cashierRecord{
			ID:     receipt.Cashier.ID,
			Name:   receipt.Cashier.Name,
			Salary: receipt.Cashier.Salary,
		},
		Timestamp:   receipt.Timestamp,
		Items:       make([]saleItemRecord, 0, len(receipt.Items)),
		TotalAmount: receipt.TotalAmount,
	}
	for _, item := range receipt.Items {
		record.Items = append(record.Items, saleItemRecord{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal receipt record %d: %w", receipt.Number, err)
	}
	if err := os.WriteFile(r.recordPath(receipt.Number), data, 0o644); err != nil {
		return fmt.Errorf("write receipt record %d: %w", receipt.Number, err)
	}
	return nil
}

// FindByNumber reads back a previously written record.
func (r *fileReceiptRepository) FindByNumber(number int) (*domain.Receipt, error) {
	data, err := os.ReadFile(r.recordPath(number))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("read receipt record %d: %w", number, err)
	}

	var record receiptRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode receipt record %d: %w", number, err)
	}

	items := make([]domain.SaleItem, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, domain.SaleItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	cashier := domain.Cashier{
		ID:     record.Cashier.ID,
		Name:   record.Cashier.Name,
		Salary: record.Cashier.Salary,
	}
	return domain.RestoreReceipt(record.Number, cashier, record.Timestamp, items, record.TotalAmount), nil
}

package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptSequence issues unique, monotonically increasing receipt numbers.
// The zero value is ready to use; the first number issued is 1. A sequence is
// safe for concurrent use and may be shared between stores.
type ReceiptSequence struct {
	mu   sync.Mutex
	last int
}

// NewReceiptSequence returns a fresh sequence starting at 1.
func NewReceiptSequence() *ReceiptSequence {
	return &ReceiptSequence{}
}

func (s *ReceiptSequence) next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// SharedReceipts is the process-wide sequence stores fall back to when no
// sequence is injected, keeping receipt numbers unique across store
// instances.
var SharedReceipts = NewReceiptSequence()

// Receipt is an immutable, uniquely numbered record of a completed
// transaction. Construct it only through NewReceipt; rehydrate persisted
// records through RestoreReceipt.
type Receipt struct {
	Number      int
	Cashier     Cashier
	Timestamp   time.Time
	Items       []SaleItem
	TotalAmount decimal.Decimal
}

// NewReceipt validates its inputs and assembles a receipt. Validation runs
// before the sequence advances, so a failed construction never consumes a
// number. The item list is deep-copied; later changes to the caller's slice
// or its elements do not reach the receipt.
func NewReceipt(seq *ReceiptSequence, cashier *Cashier, items []*SaleItem) (*Receipt, error) {
	if cashier == nil {
		return nil, ErrCashierRequired
	}
	if items == nil {
		return nil, ErrItemsRequired
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	for i, item := range items {
		if item == nil {
			return nil, &NilItemError{Position: i}
		}
	}

	copied := make([]SaleItem, len(items))
	total := decimal.Zero
	for i, item := range items {
		copied[i] = *item
		total = total.Add(item.TotalCost())
	}

	return &Receipt{
		Number:      seq.next(),
		Cashier:     *cashier,
		Timestamp:   time.Now(),
		Items:       copied,
		TotalAmount: total,
	}, nil
}

// RestoreReceipt rebuilds a receipt from previously persisted data. It does
// not touch any sequence. The total is recomputed from the items when the
// stored total is zero and items are present.
func RestoreReceipt(number int, cashier Cashier, timestamp time.Time, items []SaleItem, total decimal.Decimal) *Receipt {
	copied := make([]SaleItem, len(items))
	copy(copied, items)
	if total.IsZero() && len(copied) > 0 {
		for _, item := range copied {
			total = total.Add(item.TotalCost())
		}
	}
	return &Receipt{
		Number:      number,
		Cashier:     cashier,
		Timestamp:   timestamp,
		Items:       copied,
		TotalAmount: total,
	}
}

// ItemsCopy returns an independent copy of the item list.
func (r *Receipt) ItemsCopy() []SaleItem {
	items := make([]SaleItem, len(r.Items))
	copy(items, r.Items)
	return items
}

// Text renders the receipt as the deterministic multi-line form handed to the
// archive. Monetary values are rounded to two decimals here and only here.
func (r *Receipt) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "======= Receipt №%d =======\n", r.Number)
	fmt.Fprintf(&b, "Cashier - %s\n", r.Cashier.Name)
	fmt.Fprintf(&b, "Date - %s\n", r.Timestamp.Format("2006-01-02T15:04:05"))
	b.WriteString("------------------------\n")
	b.WriteString("Bought Items: \n")
	for _, item := range r.Items {
		fmt.Fprintf(&b, "  %s\n", item)
	}
	fmt.Fprintf(&b, "Grand Total: %s лв", r.TotalAmount.StringFixed(2))
	return b.String()
}

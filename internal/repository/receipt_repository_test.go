package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() *domain.Receipt {
	return domain.RestoreReceipt(
		7,
		domain.Cashier{ID: 1, Name: "Mariya", Salary: decimal.NewFromInt(1000)},
		time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC),
		[]domain.SaleItem{
			{ProductID: 100, ProductName: "Waffle", Quantity: 2, UnitPrice: decimal.RequireFromString("1.105")},
			{ProductID: 200, ProductName: "Parfum", Quantity: 1, UnitPrice: decimal.RequireFromString("7.50")},
		},
		decimal.Zero,
	)
}

func TestSaveText(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileReceiptRepository(dir)
	require.NoError(t, err)

	receipt := sampleReceipt()
	require.NoError(t, repo.SaveText(receipt.Number, receipt.Text()))

	data, err := os.ReadFile(filepath.Join(dir, "receipt-7.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "======= Receipt №7 =======")
	assert.Contains(t, string(data), "Grand Total: 9.71 лв")
}

func TestSaveRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileReceiptRepository(dir)
	require.NoError(t, err)

	receipt := sampleReceipt()
	require.NoError(t, repo.SaveRecord(receipt))

	loaded, err := repo.FindByNumber(receipt.Number)
	require.NoError(t, err)

	assert.Equal(t, receipt.Number, loaded.Number)
	assert.True(t, loaded.TotalAmount.Equal(receipt.TotalAmount), "got %s, want %s", loaded.TotalAmount, receipt.TotalAmount)
	assert.Equal(t, receipt.Cashier.Name, loaded.Cashier.Name)
	assert.Len(t, loaded.Items, len(receipt.Items))
	assert.True(t, loaded.Items[0].UnitPrice.Equal(receipt.Items[0].UnitPrice))
	assert.True(t, loaded.Timestamp.Equal(receipt.Timestamp))
}

func TestFindByNumberMissing(t *testing.T) {
	repo, err := NewFileReceiptRepository(t.TempDir())
	require.NoError(t, err)

	_, err = repo.FindByNumber(12345)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestNewFileReceiptRepositoryCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "receipts")

	_, err := NewFileReceiptRepository(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

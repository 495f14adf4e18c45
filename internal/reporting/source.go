// Package reporting turns stored or supplied transactions into rendered report artifacts.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/odyssey-erp/finreports/internal/accounting"
)

// Source provides the transactions and accounts reports are built from.
type Source interface {
	Transactions(ctx context.Context) ([]accounting.Transaction, error)
	Accounts(ctx context.Context) ([]accounting.Account, error)
}

// Snapshotter is implemented by sources that can read both sets consistently.
type Snapshotter interface {
	Snapshot(ctx context.Context) (Dataset, error)
}

// Dataset is one consistent read of a Source.
type Dataset struct {
	Accounts     []accounting.Account
	Transactions []accounting.Transaction
}

// Load reads a dataset, preferring a consistent snapshot when the source offers one.
func Load(ctx context.Context, src Source) (Dataset, error) {
	if snap, ok := src.(Snapshotter); ok {
		return snap.Snapshot(ctx)
	}
	accounts, err := src.Accounts(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("reporting: load accounts: %w", err)
	}
	txs, err := src.Transactions(ctx)
	if err != nil {
		return Dataset{}, fmt.Errorf("reporting: load transactions: %w", err)
	}
	return Dataset{Accounts: accounts, Transactions: txs}, nil
}

// MemorySource serves a fixed dataset.
type MemorySource struct {
	Data Dataset
}

// NewMemorySource wraps accounts and transactions.
func NewMemorySource(accounts []accounting.Account, txs []accounting.Transaction) *MemorySource {
	return &MemorySource{Data: Dataset{Accounts: accounts, Transactions: txs}}
}

// Transactions implements Source.
func (m *MemorySource) Transactions(context.Context) ([]accounting.Transaction, error) {
	return m.Data.Transactions, nil
}

// Accounts implements Source.
func (m *MemorySource) Accounts(context.Context) ([]accounting.Account, error) {
	return m.Data.Accounts, nil
}

// DatasetDocument is the JSON shape of a dataset file or request body.
type DatasetDocument struct {
	Accounts     []accounting.AccountInput     `json:"accounts"`
	Transactions []accounting.TransactionInput `json:"transactions"`
}

// Parse validates the document records.
func (d DatasetDocument) Parse() (Dataset, error) {
	accounts, err := accounting.ParseAccounts(d.Accounts)
	if err != nil {
		return Dataset{}, err
	}
	txs, err := accounting.ParseTransactions(d.Transactions)
	if err != nil {
		return Dataset{}, err
	}
	return Dataset{Accounts: accounts, Transactions: txs}, nil
}

// DecodeDataset reads a JSON dataset document.
func DecodeDataset(r io.Reader) (Dataset, error) {
	var doc DatasetDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Dataset{}, fmt.Errorf("%w: decode dataset: %v", accounting.ErrInvalidInput, err)
	}
	return doc.Parse()
}

// LoadFile reads a JSON dataset document from disk into a MemorySource.
func LoadFile(path string) (*MemorySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reporting: open dataset: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	data, err := DecodeDataset(f)
	if err != nil {
		return nil, err
	}
	return &MemorySource{Data: data}, nil
}

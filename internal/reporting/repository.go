package reporting

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/platform/db"
)

const (
	selectAccounts = `SELECT id, name, type, is_default, COALESCE(balance, 0)::text
FROM accounts
ORDER BY created_at, id`

	selectTransactions = `SELECT id, type, COALESCE(category, ''), amount::text, date, COALESCE(description, ''), account_id
FROM transactions
ORDER BY date, created_at, id`
)

// PostgresSource reads accounts and transactions from PostgreSQL.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource constructs a PostgreSQL backed source.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Accounts implements Source.
func (s *PostgresSource) Accounts(ctx context.Context) ([]accounting.Account, error) {
	return queryAccounts(ctx, s.pool)
}

// Transactions implements Source.
func (s *PostgresSource) Transactions(ctx context.Context) ([]accounting.Transaction, error) {
	return queryTransactions(ctx, s.pool)
}

// Snapshot reads both tables inside one repeatable-read transaction.
func (s *PostgresSource) Snapshot(ctx context.Context) (Dataset, error) {
	var data Dataset
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		accounts, err := queryAccounts(ctx, tx)
		if err != nil {
			return err
		}
		txs, err := queryTransactions(ctx, tx)
		if err != nil {
			return err
		}
		data = Dataset{Accounts: accounts, Transactions: txs}
		return nil
	})
	return data, err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func queryAccounts(ctx context.Context, q querier) ([]accounting.Account, error) {
	rows, err := q.Query(ctx, selectAccounts)
	if err != nil {
		return nil, fmt.Errorf("reporting: query accounts: %w", err)
	}
	defer rows.Close()
	var out []accounting.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

func queryTransactions(ctx context.Context, q querier) ([]accounting.Transaction, error) {
	rows, err := q.Query(ctx, selectTransactions)
	if err != nil {
		return nil, fmt.Errorf("reporting: query transactions: %w", err)
	}
	defer rows.Close()
	var out []accounting.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanAccount(row rowScanner) (accounting.Account, error) {
	var (
		acc     accounting.Account
		typ     string
		balance string
	)
	if err := row.Scan(&acc.ID, &acc.Name, &typ, &acc.IsDefault, &balance); err != nil {
		return accounting.Account{}, fmt.Errorf("reporting: scan account: %w", err)
	}
	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return accounting.Account{}, fmt.Errorf("reporting: account %s balance: %w", acc.ID, err)
	}
	acc.Type = accounting.AccountType(strings.ToUpper(strings.TrimSpace(typ)))
	acc.Balance = parsed
	return acc, nil
}

func scanTransaction(row rowScanner) (accounting.Transaction, error) {
	var (
		tx     accounting.Transaction
		typ    string
		amount string
	)
	if err := row.Scan(&tx.ID, &typ, &tx.Category, &amount, &tx.Date, &tx.Description, &tx.AccountID); err != nil {
		return accounting.Transaction{}, fmt.Errorf("reporting: scan transaction: %w", err)
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return accounting.Transaction{}, fmt.Errorf("reporting: transaction %s amount: %w", tx.ID, err)
	}
	tx.Type = accounting.ParseTransactionType(typ)
	tx.Amount = parsed
	return tx, nil
}

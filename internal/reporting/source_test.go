package reporting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/finreports/internal/accounting"
)

const document = `{
	"accounts": [{"id":"acc-1","name":"Main Bank","type":"bank","isDefault":true}],
	"transactions": [{"id":"t1","type":"INCOME","category":"salary","amount":"8000","date":"2026-10-01","accountId":"acc-1"}]
}`

func TestDecodeDataset(t *testing.T) {
	data, err := DecodeDataset(strings.NewReader(document))
	require.NoError(t, err)
	require.Len(t, data.Accounts, 1)
	require.Len(t, data.Transactions, 1)
	assert.Equal(t, accounting.AccountTypeBank, data.Accounts[0].Type)

	_, err = DecodeDataset(strings.NewReader(`{"transactions":[{"id":"t1","type":"INCOME","amount":"x","date":"2026-10-01","accountId":"a"}]}`))
	assert.True(t, errors.Is(err, accounting.ErrInvalidInput))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))
	src, err := LoadFile(path)
	require.NoError(t, err)
	data, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "t1", data.Transactions[0].ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return errors.New("unsupported destination")
		}
	}
	return nil
}

func TestScanRows(t *testing.T) {
	day := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	tx, err := scanTransaction(fakeRow{values: []any{"t1", "expense", "rent", "1200.50", day, "October rent", "acc-1"}})
	require.NoError(t, err)
	assert.Equal(t, accounting.TransactionTypeExpense, tx.Type)
	assert.Equal(t, "1200.50", tx.Amount.StringFixed(2))
	assert.Equal(t, day, tx.Date)

	_, err = scanTransaction(fakeRow{values: []any{"t1", "expense", "rent", "abc", day, "", "acc-1"}})
	assert.Error(t, err)

	acc, err := scanAccount(fakeRow{values: []any{"acc-1", "Main Bank", " bank ", true, "10"}})
	require.NoError(t, err)
	assert.True(t, acc.IsCash())
	assert.True(t, acc.IsDefault)
}

package db

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaDeclaresSourceTables(t *testing.T) {
	ddl := Schema()
	assert.True(t, strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS accounts"))
	assert.True(t, strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS transactions"))
	assert.Contains(t, ddl, "created_at")
}

func TestNewRejectsMalformedDSN(t *testing.T) {
	_, err := New(context.Background(), "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform/db: parse config")
}

package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		title  string
	}{
		{fmt.Errorf("%w: month", ErrValidation), http.StatusBadRequest, "Validation Failed"},
		{fmt.Errorf("%w: account", ErrNotFound), http.StatusNotFound, "Not Found"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "Internal Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.title, body.Title)
		assert.Equal(t, tc.status, body.Status)
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("dsn password leaked"))
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Month string `json:"month"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"2026-10"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "2026-10", target.Month)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"month":"2026-10","extra":1}`))
	assert.Error(t, DecodeJSON(req, &target))
}

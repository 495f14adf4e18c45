package reportinghttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/finreports/internal/accounting"
	"github.com/odyssey-erp/finreports/internal/accounting/reports"
	"github.com/odyssey-erp/finreports/internal/platform/httpx"
	"github.com/odyssey-erp/finreports/internal/reporting"
	"github.com/odyssey-erp/finreports/internal/workbook"
)

// Handler exposes report generation over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *reporting.Service
	now     func() time.Time
}

// NewHandler constructs handler.
func NewHandler(logger *slog.Logger, service *reporting.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

// MountRoutes registers routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports", h.generate)
	r.Get("/accounts/{accountID}/reports", h.generate)
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(20, time.Minute))
		r.Post("/reports", h.evaluate)
		r.Post("/reports/check", h.check)
	})
}

// evaluateRequest carries a caller-supplied dataset.
type evaluateRequest struct {
	reporting.DatasetDocument
	AccountID string `json:"accountId"`
	Month     string `json:"month"`
	Format    string `json:"format"`
	Mode      string `json:"mode"`
}

type checkResponse struct {
	Account  string   `json:"account"`
	Period   string   `json:"period"`
	Balanced bool     `json:"balanced"`
	Skipped  int      `json:"skipped"`
	Issues   []string `json:"issues"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := h.request(chi.URLParam(r, "accountID"), q.Get("month"), q.Get("format"), q.Get("mode"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	art, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeArtifact(w, art)
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	var body evaluateRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", accounting.ErrInvalidInput, err))
		return
	}
	req, err := h.request(body.AccountID, body.Month, body.Format, body.Mode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := body.Parse()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	art, err := h.service.Evaluate(r.Context(), req, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeArtifact(w, art)
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	var body evaluateRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", accounting.ErrInvalidInput, err))
		return
	}
	period, err := h.period(body.Month)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := body.Parse()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.service.Check(r.Context(), body.AccountID, period, data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	issues := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, issue.String())
	}
	httpx.JSON(w, http.StatusOK, checkResponse{
		Account:  reporting.ReportTitle(result),
		Period:   period.Start.Format("2006-01"),
		Balanced: len(issues) == 0,
		Skipped:  len(result.Skipped),
		Issues:   issues,
	})
}

func (h *Handler) request(accountID, month, format, mode string) (reporting.Request, error) {
	period, err := h.period(month)
	if err != nil {
		return reporting.Request{}, err
	}
	f, err := reporting.ParseFormat(format)
	if err != nil {
		return reporting.Request{}, err
	}
	m, err := workbook.ParseMode(mode)
	if err != nil {
		return reporting.Request{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return reporting.Request{AccountID: strings.TrimSpace(accountID), Period: period, Format: f, Mode: m}, nil
}

func (h *Handler) period(month string) (reports.Period, error) {
	if strings.TrimSpace(month) == "" {
		now := h.now().UTC()
		return reports.MonthOf(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)), nil
	}
	period, err := reports.ParseMonth(month)
	if err != nil {
		return reports.Period{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return period, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, accounting.ErrInvalidInput),
		errors.Is(err, reports.ErrInvalidOptions),
		errors.Is(err, reporting.ErrUnsupportedFormat):
		err = fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	case errors.Is(err, accounting.ErrAccountNotFound):
		err = fmt.Errorf("%w: %v", httpx.ErrNotFound, err)
	}
	if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrNotFound) {
		h.logger.Error("report request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func writeArtifact(w http.ResponseWriter, art reporting.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("X-Skipped-Transactions", strconv.Itoa(len(art.Skipped)))
	w.Header().Set("X-Integrity-Issues", strconv.Itoa(len(art.Issues)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Body)
}

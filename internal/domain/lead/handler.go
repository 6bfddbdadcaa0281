package lead

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"admissions/internal/pkg/response"
	"admissions/internal/pkg/validator"
)

// Handler handles lead HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates lead handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListLeads handles GET /api/v1/leads
func (h *Handler) ListLeads(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	pageSize, err := intQuery(c, "page_size", 0)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	filters, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	result, err := h.service.ListLeads(c.Request.Context(), c.GetString("user_id"), page, pageSize, filters)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetSuggestions handles GET /api/v1/leads/suggestions
func (h *Handler) GetSuggestions(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	suggestions, err := h.service.GetLeadSuggestions(c.Request.Context(), c.GetString("user_id"), c.Query("q"), limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, suggestions)
}

// GetFilterOptions handles GET /api/v1/leads/filter-options
func (h *Handler) GetFilterOptions(c *gin.Context) {
	opts, err := h.service.GetFilterOptions(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, opts)
}

// GetStats handles GET /api/v1/leads/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// ExportLeads handles GET /api/v1/leads/export
func (h *Handler) ExportLeads(c *gin.Context) {
	filters, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}

	csv, err := h.service.ExportLeads(c.Request.Context(), c.GetString("user_id"), filters)
	if err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

// BulkOperation handles POST /api/v1/leads/bulk
func (h *Handler) BulkOperation(c *gin.Context) {
	var req BulkOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid bulk operation", errs)
		return
	}

	bulkReq, err := req.ToBulkRequest()
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.PerformBulkOperation(c.Request.Context(), c.GetString("user_id"), bulkReq)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetLead handles GET /api/v1/leads/:id
func (h *Handler) GetLead(c *gin.Context) {
	l, err := h.service.GetLead(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, l)
}

// ListActivities handles GET /api/v1/leads/:id/activities
func (h *Handler) ListActivities(c *gin.Context) {
	entries, err := h.service.ListActivities(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, entries)
}

// SetDemoAccess handles PUT /api/v1/demo-access
func (h *Handler) SetDemoAccess(c *gin.Context) {
	var req DemoAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid demo access request", errs)
		return
	}

	if err := h.service.SetDemoAccess(c.Request.Context(), c.GetString("user_id"), *req.Enabled); err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enabled": *req.Enabled})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidFilter), errors.Is(err, ErrInvalidSortField):
		response.Error(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
	case errors.Is(err, ErrInvalidOperation):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_OPERATION", err.Error())
	case errors.Is(err, ErrLeadNotFound):
		response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func filterFromQuery(c *gin.Context) (FilterSpec, error) {
	f := FilterSpec{
		Search:          c.Query("search"),
		Statuses:        listQuery[Status](c, "status"),
		Sources:         listQuery[Source](c, "source"),
		Priorities:      listQuery[Priority](c, "priority"),
		AssignedTo:      listQuery[string](c, "assigned_to"),
		ProgramInterest: listQuery[string](c, "program_interest"),
		Tags:            listQuery[string](c, "tags"),
	}

	var err error
	if f.CreatedFrom, err = timeQuery(c, "created_from", false); err != nil {
		return FilterSpec{}, err
	}
	if f.CreatedTo, err = timeQuery(c, "created_to", true); err != nil {
		return FilterSpec{}, err
	}
	if f.ScoreMin, err = optionalIntQuery(c, "score_min"); err != nil {
		return FilterSpec{}, err
	}
	if f.ScoreMax, err = optionalIntQuery(c, "score_max"); err != nil {
		return FilterSpec{}, err
	}

	if field := c.Query("sort_by"); field != "" {
		f.Sort = &SortSpec{Field: field, Direction: SortDirection(c.Query("sort_order"))}
	}
	return f, nil
}

// listQuery accepts both repeated (?tags=a&tags=b) and comma separated (?tags=a,b) values
func listQuery[T ~string](c *gin.Context, name string) []T {
	var out []T
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, T(part))
			}
		}
	}
	return out
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func optionalIntQuery(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}

// timeQuery parses RFC 3339 or a bare date. A bare end date covers the whole day.
func timeQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be RFC 3339 or YYYY-MM-DD", name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/fbaplan/backend-go/internal/domain"
	"github.com/andresuchdata/fbaplan/backend-go/internal/ingest"
	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PlanHandler struct {
	service  *service.PlanningService
	defaults planning.Params
}

func NewPlanHandler(service *service.PlanningService, defaults planning.Params) *PlanHandler {
	return &PlanHandler{service: service, defaults: defaults.WithDefaults()}
}

// GetServiceLevels lists the selectable service levels and their z values.
func (h *PlanHandler) GetServiceLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service_levels": h.service.ServiceLevels(),
		"default":        int(h.defaults.ServiceLevel),
	})
}

// CreatePlan plans the uploaded sales and inventory files and returns the report.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}

	report, err := h.service.Plan(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ExportPlan plans the uploaded files and returns the workbook. With
// publish=true the workbook is stored and its object key returned instead.
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	req, err := h.parseRequest(c)
	if err != nil {
		writeError(c, err)
		return
	}

	publish, _ := strconv.ParseBool(c.DefaultQuery("publish", c.PostForm("publish")))
	res, err := h.service.Export(c.Request.Context(), req, publish)
	if err != nil {
		writeError(c, err)
		return
	}

	if publish {
		c.JSON(http.StatusCreated, gin.H{
			"file_name":  res.FileName,
			"object_key": res.ObjectKey,
			"run_id":     res.Report.Summary.RunID,
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
	c.Data(http.StatusOK, xlsxContentType, res.Data)
}

func (h *PlanHandler) parseRequest(c *gin.Context) (service.PlanRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return service.PlanRequest{}, badRequest("invalid form data")
	}

	sales, err := readFiles(form.File["sales"])
	if err != nil {
		return service.PlanRequest{}, err
	}
	inventory, err := readFiles(form.File["inventory"])
	if err != nil {
		return service.PlanRequest{}, err
	}

	params, err := parseParams(c, h.defaults)
	if err != nil {
		return service.PlanRequest{}, err
	}

	return service.PlanRequest{Sales: sales, Inventory: inventory, Params: params}, nil
}

func readFiles(headers []*multipart.FileHeader) ([]ingest.File, error) {
	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}

// parseParams overlays form (or query) controls on the configured defaults.
// An explicit 0 for anything but window_days keeps the configured default.
func parseParams(c *gin.Context, defaults planning.Params) (planning.Params, error) {
	params := defaults

	ints := []struct {
		name          string
		dst           *int
		zeroIsDefault bool
	}{
		{"horizon_days", &params.HorizonDays, true},
		{"window_days", &params.WindowDays, false},
		{"slow_moving_days", &params.SlowMovingDays, true},
		{"inactive_days", &params.InactiveDays, true},
		{"top_cities", &params.TopCities, true},
	}
	for _, field := range ints {
		raw := strings.TrimSpace(formValue(c, field.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("%w: %s must be an integer", planning.ErrInvalidParams, field.name)
		}
		if v == 0 && field.zeroIsDefault {
			continue
		}
		*field.dst = v
	}

	if raw := strings.TrimSpace(formValue(c, "service_level")); raw != "" {
		sl, err := planning.ParseServiceLevel(raw)
		if err != nil {
			return params, err
		}
		params.ServiceLevel = sl
	}

	return params, params.Validate()
}

func formValue(c *gin.Context, name string) string {
	if v, ok := c.GetPostForm(name); ok {
		return v
	}
	return c.Query(name)
}

type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) error {
	return &requestError{message: message}
}

// writeError maps service errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var schemaErr *domain.SchemaError
	var reqErr *requestError
	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": schemaErr.Error(),
			"table": schemaErr.Table,
			"field": schemaErr.Field,
		})
	case errors.As(err, &reqErr),
		errors.Is(err, planning.ErrInvalidParams),
		errors.Is(err, ingest.ErrNoInput),
		errors.Is(err, ingest.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

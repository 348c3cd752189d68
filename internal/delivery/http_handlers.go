package delivery

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"adpulse/internal/domain"
	"adpulse/internal/infrastructure"
	"adpulse/internal/usecase"
	"adpulse/pkg/logger"
	"adpulse/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// handles HTTP requests
type HTTPHandlers struct {
	processService *usecase.ProcessService
	queryService   *usecase.QueryService
	exporter       *infrastructure.Exporter
	maxUploadBytes int64
	logger         *logger.Logger
	metrics        *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	processService *usecase.ProcessService,
	queryService *usecase.QueryService,
	exporter *infrastructure.Exporter,
	maxUploadBytes int64,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		processService: processService,
		queryService:   queryService,
		exporter:       exporter,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		metrics:        metrics,
	}
}

// UploadReports ingests a multipart batch of CSV report files and replaces
// the current dataset with the merged result. Files are processed in form
// order; a bad file shows up in its own result entry and never fails the
// batch.
func (h *HTTPHandlers) UploadReports(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	ctx := c.Request.Context()
	log := h.logger.WithContext(ctx)

	files, err := h.readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid upload",
			"message":    err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "No files uploaded",
			"message":    "attach one or more CSV files under the 'files' field",
			"request_id": c.GetString("request_id"),
		})
		return
	}

	dataset, results, err := h.processService.ProcessBatch(ctx, files)
	if err != nil {
		log.WithError(err).Error("Upload batch failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Processing failed",
			"message":    err.Error(),
			"request_id": c.GetString("request_id"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files":      results,
		"summary":    dataset.Summary,
		"date_range": dataset.DateRange,
		"request_id": c.GetString("request_id"),
	})
}

// ValidateReport inspects a single uploaded file without processing it.
func (h *HTTPHandlers) ValidateReport(c *gin.Context) {
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	files, err := h.readUpload(c)
	if err != nil || len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid upload",
			"message":    "attach exactly one CSV file under the 'files' field",
			"request_id": c.GetString("request_id"),
		})
		return
	}

	result := h.processService.ValidateFile(c.Request.Context(), files[0])
	c.JSON(http.StatusOK, gin.H{
		"filename":   files[0].Name,
		"validation": result,
		"request_id": c.GetString("request_id"),
	})
}

// GetSummary returns the dataset's top-level rollup and dimension values.
func (h *HTTPHandlers) GetSummary(c *gin.Context) {
	dataset, err := h.queryService.Summary(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":    dataset.Summary,
		"date_range": dataset.DateRange,
		"countries":  dataset.Countries,
		"apps":       dataset.AppNames,
		"exchanges":  dataset.ExchangeNames,
		"oses":       dataset.OSes,
	})
}

func (h *HTTPHandlers) GetCampaigns(c *gin.Context) {
	result, err := h.queryService.Campaigns(c.Request.Context(), parseFilter(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandlers) GetCreatives(c *gin.Context) {
	result, err := h.queryService.Creatives(c.Request.Context(), parseFilter(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandlers) GetApps(c *gin.Context) {
	result, err := h.queryService.Apps(c.Request.Context(), parseFilter(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandlers) GetExchanges(c *gin.Context) {
	result, err := h.queryService.Exchanges(c.Request.Context(), parseFilter(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandlers) GetInventory(c *gin.Context) {
	result, err := h.queryService.Inventory(c.Request.Context(), parseFilter(c))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ClearDataset drops the current dataset and its cache entry.
func (h *HTTPHandlers) ClearDataset(c *gin.Context) {
	if err := h.processService.Clear(c.Request.Context()); err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Dataset cleared",
		"request_id": c.GetString("request_id"),
	})
}

// ExportCampaignsCSV streams the campaign collection as CSV.
func (h *HTTPHandlers) ExportCampaignsCSV(c *gin.Context) {
	dataset, err := h.queryService.Summary(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	filename := "campaigns-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", h.exporter.CampaignsCSV(dataset))
}

// ExportDatasetJSON streams the full dataset as indented JSON.
func (h *HTTPHandlers) ExportDatasetJSON(c *gin.Context) {
	dataset, err := h.queryService.Summary(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	payload, err := h.exporter.DatasetJSON(dataset)
	if err != nil {
		h.serverError(c, err)
		return
	}

	filename := "dataset-" + time.Now().Format("2006-01-02") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", payload)
}

func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readUpload collects the multipart files of the request in form order.
func (h *HTTPHandlers) readUpload(c *gin.Context) ([]usecase.UploadFile, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	var files []usecase.UploadFile
	for _, header := range form.File["files"] {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, usecase.UploadFile{Name: header.Filename, Content: content})
	}
	return files, nil
}

func (h *HTTPHandlers) serverError(c *gin.Context, err error) {
	h.logger.WithContext(c.Request.Context()).WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":      "Internal server error",
		"message":    err.Error(),
		"request_id": c.GetString("request_id"),
	})
}

// parseFilter reads the query contract off the request: field predicates,
// free-text search, one sort key and the page window.
func parseFilter(c *gin.Context) domain.Filter {
	filter := domain.Filter{
		Search:   c.Query("search"),
		Exchange: c.Query("exchange"),
		Country:  c.Query("country"),
		OS:       c.Query("os"),
		App:      c.Query("app"),
		SortBy:   c.Query("sort_by"),
		SortDir:  domain.SortDirection(c.DefaultQuery("sort_dir", string(domain.SortAsc))),
	}

	if v, err := strconv.ParseFloat(c.Query("min_spend"), 64); err == nil {
		filter.MinSpend = &v
	}
	if v, err := strconv.ParseFloat(c.Query("max_spend"), 64); err == nil {
		filter.MaxSpend = &v
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil {
		filter.PageSize = v
	}

	return filter
}

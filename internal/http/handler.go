package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/basharagb/images-Plate-Recognitions/internal/config"
	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
	"github.com/basharagb/images-Plate-Recognitions/internal/export"
	"github.com/basharagb/images-Plate-Recognitions/internal/repository"
	"github.com/basharagb/images-Plate-Recognitions/internal/service"
	"github.com/basharagb/images-Plate-Recognitions/internal/storage"
)

type Handler struct {
	detections *service.DetectionService
	batch      *service.BatchProcessor
	repo       *repository.DetectionRepository
	archive    *storage.ResponseArchive
	config     *config.Config
	log        zerolog.Logger
}

func NewHandler(
	detections *service.DetectionService,
	batch *service.BatchProcessor,
	repo *repository.DetectionRepository,
	archive *storage.ResponseArchive,
	cfg *config.Config,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		detections: detections,
		batch:      batch,
		repo:       repo,
		archive:    archive,
		config:     cfg,
		log:        log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/recognitions", h.interpretResponse)
		api.POST("/recognitions/batch", h.interpretBatch)
		api.GET("/recognitions/batch/:id", h.getBatchRun)
		api.GET("/detections", h.listDetections)
		api.GET("/detections/export", h.exportDetections)
	}
}

type interpretRequest struct {
	RawResponse string `json:"raw_response" binding:"required"`
	Policy      string `json:"policy"`
}

func (h *Handler) interpretResponse(c *gin.Context) {
	var req interpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	policy, err := h.resolvePolicy(req.Policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.detections.Interpret(req.RawResponse, policy)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.repo.SaveDetections(c.Request.Context(), policy, nil, result.Detections, req.RawResponse); err != nil {
		h.log.Error().Err(err).Msg("failed to save detections")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	h.archiveResponse(c, req.RawResponse)

	h.log.Info().
		Str("policy", string(policy)).
		Bool("success", result.Success).
		Int("detections", len(result.Detections)).
		Msg("interpreted model response")

	c.JSON(http.StatusOK, successResponse(result))
}

type batchRequest struct {
	Responses []string `json:"responses" binding:"required"`
	Policy    string   `json:"policy"`
}

func (h *Handler) interpretBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	if len(req.Responses) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("responses must not be empty"))
		return
	}
	if len(req.Responses) > h.config.Recognition.MaxBatchSize {
		c.JSON(http.StatusBadRequest, errorResponse("batch exceeds maximum size"))
		return
	}

	policy, err := h.resolvePolicy(req.Policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	results, summary, err := h.batch.Process(c.Request.Context(), req.Responses, policy)
	if err != nil {
		h.handleError(c, err)
		return
	}

	batchID, err := h.repo.CreateBatchRun(c.Request.Context(), policy, summary)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create batch run")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	for i, result := range results {
		if err := h.repo.SaveDetections(c.Request.Context(), policy, &batchID, result.Detections, req.Responses[i]); err != nil {
			h.log.Error().Err(err).Int("item", i).Msg("failed to save batch item detections")
			c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
			return
		}
		h.archiveResponse(c, req.Responses[i])
	}

	h.log.Info().
		Str("batch_id", batchID.String()).
		Int("total_items", summary.TotalItems).
		Int("success_count", summary.SuccessCount).
		Int("total_detections", summary.TotalDetections).
		Msg("processed recognition batch")

	c.JSON(http.StatusOK, gin.H{
		"batch_id": batchID,
		"results":  results,
		"summary":  summary,
	})
}

func (h *Handler) listDetections(c *gin.Context) {
	plateNumber, from, to, err := h.listFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	rows, err := h.repo.FindDetections(c.Request.Context(), plateNumber, from, to, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list detections")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	c.JSON(http.StatusOK, successResponse(rows))
}

func (h *Handler) exportDetections(c *gin.Context) {
	plateNumber, from, to, err := h.listFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rows, err := h.repo.FindDetections(c.Request.Context(), plateNumber, from, to, 0, 0)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load detections for export")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	workbook, err := export.DetectionsWorkbook(rows)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to build export workbook")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	defer workbook.Close()

	filename := "detections-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		h.log.Error().Err(err).Msg("failed to write export workbook")
	}
}

func (h *Handler) listFilters(c *gin.Context) (*string, *time.Time, *time.Time, error) {
	var plateNumber *string
	if plate := strings.TrimSpace(c.Query("plate")); plate != "" {
		plateNumber = &plate
	}

	var from, to *time.Time
	if f := strings.TrimSpace(c.Query("from")); f != "" {
		t, err := time.Parse(time.RFC3339, f)
		if err != nil {
			return nil, nil, nil, errors.New("invalid from time format")
		}
		from = &t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, nil, errors.New("invalid to time format")
		}
		to = &t
	}

	return plateNumber, from, to, nil
}

func (h *Handler) resolvePolicy(raw string) (detection.ValidationPolicy, error) {
	if strings.TrimSpace(raw) == "" {
		return h.config.Recognition.DefaultPolicy, nil
	}
	return detection.ParsePolicy(raw)
}

func (h *Handler) archiveResponse(c *gin.Context, raw string) {
	if h.archive == nil {
		return
	}
	url, err := h.archive.ArchiveResponse(c.Request.Context(), raw)
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		h.log.Warn().Err(err).Msg("failed to archive raw response")
		return
	}
	if url != "" {
		h.log.Debug().Str("url", url).Msg("archived raw response")
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownPolicy), errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func (h *Handler) getBatchRun(c *gin.Context) {
	id, ok := uuidFromParam(c, "id")
	if !ok {
		return
	}

	run, err := h.repo.GetBatchRun(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", id.String()).Msg("failed to load batch run")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, errorResponse("batch run not found"))
		return
	}

	c.JSON(http.StatusOK, successResponse(run))
}

func uuidFromParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

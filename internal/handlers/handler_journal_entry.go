package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/read424/walrex-contable-sub001/internal/apperrors"
	portssvc "github.com/read424/walrex-contable-sub001/internal/core/ports/services"
	"github.com/read424/walrex-contable-sub001/internal/dto"
	"github.com/read424/walrex-contable-sub001/internal/middleware"
)

// journalEntryHandler handles HTTP requests for journal entries.
type journalEntryHandler struct {
	entryService portssvc.JournalEntrySvcFacade
}

// newJournalEntryHandler creates a new journalEntryHandler.
func newJournalEntryHandler(entryService portssvc.JournalEntrySvcFacade) *journalEntryHandler {
	return &journalEntryHandler{entryService: entryService}
}

// createJournalEntry godoc
// @Summary Create a journal entry
// @Description Creates a balanced journal entry with its lines and optional supporting documents
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateJournalEntryRequest true "Journal entry to create"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse "INVALID_ENTRY, UNBALANCED_ENTRY or BAD_REQUEST"
// @Failure 500 {object} dto.ErrorResponse "INTERNAL_ERROR"
// @Router /journal-entries [post]
func (h *journalEntryHandler) createJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind journal entry request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    dto.CodeBadRequest,
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	entry, err := h.entryService.CreateJournalEntry(c.Request.Context(), req)
	if err != nil {
		respondWithEntryError(c, err)
		return
	}

	resp := dto.ToJournalEntryResponse(entry)
	c.Header("Location", fmt.Sprintf("%s/%d", c.Request.URL.Path, resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// getJournalEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a journal entry with its lines and document metadata
// @Tags journal-entries
// @Produce  json
// @Param   entryID path int true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} dto.ErrorResponse "NOT_FOUND"
// @Failure 500 {object} dto.ErrorResponse "INTERNAL_ERROR"
// @Router /journal-entries/{entryID} [get]
func (h *journalEntryHandler) getJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	entryID, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    dto.CodeBadRequest,
			Message: "Entry ID must be an integer",
		})
		return
	}

	entry, err := h.entryService.GetJournalEntryByID(c.Request.Context(), entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Code:    dto.CodeNotFound,
				Message: fmt.Sprintf("Journal entry %d not found", entryID),
			})
			return
		}
		logger.Error("Failed to get journal entry", slog.Int64("entry_id", entryID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    dto.CodeInternalError,
			Message: "Failed to retrieve journal entry",
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Paginated listing filtered by year, month, book type and description
// @Tags journal-entries
// @Produce  json
// @Param   year query int false "Fiscal year"
// @Param   month query int false "Month (1-12)"
// @Param   bookType query string false "Book type"
// @Param   description query string false "Description substring"
// @Param   page query int false "Page number (1-based)"
// @Param   size query int false "Page size (max 100)"
// @Success 200 {object} dto.PagedJournalEntriesResponse
// @Failure 400 {object} dto.ErrorResponse "BAD_REQUEST"
// @Failure 500 {object} dto.ErrorResponse "INTERNAL_ERROR"
// @Router /journal-entries [get]
func (h *journalEntryHandler) listJournalEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    dto.CodeBadRequest,
			Message: "Invalid listing parameters",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.entryService.ListJournalEntries(c.Request.Context(), params)
	if err != nil {
		logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Code:    dto.CodeInternalError,
			Message: "Failed to list journal entries",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondWithEntryError maps creation errors to their structured responses.
func respondWithEntryError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var unbalancedErr *apperrors.UnbalancedJournalEntryError
	if errors.As(err, &unbalancedErr) {
		logger.Warn("Unbalanced journal entry rejected", slog.String("difference", unbalancedErr.Difference.String()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    dto.CodeUnbalancedEntry,
			Message: "Total debits must equal total credits",
			Details: dto.UnbalancedDetails{
				TotalDebit:  unbalancedErr.TotalDebit,
				TotalCredit: unbalancedErr.TotalCredit,
				Difference:  unbalancedErr.Difference,
			},
		})
		return
	}

	var invalidErr *apperrors.InvalidJournalEntryError
	if errors.As(err, &invalidErr) {
		logger.Warn("Invalid journal entry rejected", slog.String("field", invalidErr.Field), slog.String("reason", invalidErr.Reason))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    dto.CodeInvalidEntry,
			Message: invalidErr.Reason,
			Details: dto.InvalidEntryDetails{Field: invalidErr.Field, Reason: invalidErr.Reason},
		})
		return
	}

	logger.Error("Failed to create journal entry", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Code:    dto.CodeInternalError,
		Message: "Failed to create journal entry",
	})
}

// RegisterJournalEntryRoutes registers journal-entry specific routes.
func RegisterJournalEntryRoutes(group *gin.RouterGroup, entryService portssvc.JournalEntrySvcFacade) {
	handler := newJournalEntryHandler(entryService)

	entries := group.Group("/journal-entries")
	{
		entries.POST("", handler.createJournalEntry)
		entries.GET("", handler.listJournalEntries)
		entries.GET("/:entryID", handler.getJournalEntry)
	}
}

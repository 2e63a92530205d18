package transfer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	service       *Service
	searchTimeout time.Duration
}

func NewTransferHandler(s *Service, searchTimeout time.Duration) *TransferHandler {
	return &TransferHandler{
		service:       s,
		searchTimeout: searchTimeout,
	}
}

func (h *TransferHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/v1/transfers/search", h.SearchTransfersHandler)
	router.GET("/v1/transfers/quotes/:searchId/:code", h.GetQuoteHandler)
}

// SearchTransfersHandler godoc
// @Summary      Search airport transfers
// @Description  Resolve the route, price every eligible tariff and return options sorted by price. pickupTime is RFC 3339 and must carry a UTC offset.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body SearchRequest true "Search criteria"
// @Success      200 {object} SearchResponse
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Failure      504 {object} map[string]string
// @Router       /v1/transfers/search [post]
func (h *TransferHandler) SearchTransfersHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid JSON body",
			"code":  ErrorCodeValidation,
		})
		return
	}

	ctx := c.Request.Context()
	if h.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.searchTimeout)
		defer cancel()
	}

	response, err := h.service.Search(ctx, req)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetQuoteHandler godoc
// @Summary      Look up a quoted option
// @Description  Return the option and request a search quoted under an option code while the quote is valid
// @Tags         transfers
// @Produce      json
// @Param        searchId path string true "Search id from the search metadata"
// @Param        code path string true "Option code"
// @Success      200 {object} Quote
// @Failure      404 {object} map[string]string
// @Router       /v1/transfers/quotes/{searchId}/{code} [get]
func (h *TransferHandler) GetQuoteHandler(c *gin.Context) {
	searchID := strings.TrimSpace(c.Param("searchId"))
	code := strings.TrimSpace(c.Param("code"))
	if searchID == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "searchId and code are required",
			"code":  ErrorCodeValidation,
		})
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), searchID, code)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

func sendError(c *gin.Context, err error) {
	var appErr *AppError

	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal Server Error",
		"code":  ErrorCodeInternalFailure,
	})
}

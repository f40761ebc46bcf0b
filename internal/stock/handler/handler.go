package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/auth"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock"
	"github.com/purushotam56/hatiri-storefront-service/internal/stock/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
)

type StockHandler struct {
	uc     stock.UseCase
	logger logger.ZapLogger
}

func NewStockHandler(uc stock.UseCase, log logger.ZapLogger) *StockHandler {
	return &StockHandler{uc: uc, logger: log}
}

func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stock/movements", h.ListMovements)
}

// ListMovements returns the audit trail of applied stock deltas for the
// caller's organisation.
func (h *StockHandler) ListMovements(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := auth.OrgID(ctx)
	if orgID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "missing organisation context"})
		return
	}

	filters := &dto.MovementFilters{
		OrgID:        orgID,
		ProductID:    c.Query("product_id"),
		GroupID:      c.Query("group_id"),
		MovementType: c.Query("movement_type"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "page_size", 20),
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.EndDate = &t
		}
	}

	movements, total, err := h.uc.ListMovements(ctx, filters)
	if err != nil {
		h.logger.Error("failed to list stock movements", zap.Error(err))
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.ClientMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movements": movements,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/model"
	"github.com/purushotam56/hatiri-storefront-service/internal/order"
	"github.com/purushotam56/hatiri-storefront-service/internal/order/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: log}
}

// RegisterPublic mounts the storefront-facing checkout route.
func (h *OrderHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/orders", h.CreateOrder)
}

// RegisterSeller mounts the authenticated seller routes.
func (h *OrderHandler) RegisterSeller(rg *gin.RouterGroup) {
	rg.GET("/orders", h.ListOrders)
	rg.GET("/orders/:id", h.GetOrder)
	rg.PATCH("/orders/:id/status", h.SetStatus)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input dto.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.uc.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err, "failed to create order")
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.uc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to get order")
		return
	}
	if o == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	filters := &dto.OrderFilters{
		Status:        c.Query("status"),
		CustomerPhone: c.Query("customer_phone"),
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "page_size", 20),
	}

	orders, total, err := h.uc.ListOrders(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err, "failed to list orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":    orders,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func (h *OrderHandler) SetStatus(c *gin.Context) {
	var input dto.SetStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.SetStatus(c.Request.Context(), c.Param("id"), model.OrderStatus(input.Status))
	if err != nil {
		h.respondError(c, err, "failed to set order status")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":             result.Order,
		"stock_adjustments": result.Adjustments,
	})
}

func (h *OrderHandler) respondError(c *gin.Context, err error, msg string) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": apperrors.ClientMessage(err)})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

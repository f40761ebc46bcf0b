package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/purushotam56/hatiri-storefront-service/internal/apperrors"
	"github.com/purushotam56/hatiri-storefront-service/internal/auth"
	"github.com/purushotam56/hatiri-storefront-service/internal/product"
	"github.com/purushotam56/hatiri-storefront-service/internal/product/dto"
	"github.com/purushotam56/hatiri-storefront-service/pkg/blob"
	"github.com/purushotam56/hatiri-storefront-service/pkg/logger"
)

const maxUploadSize = 10 << 20 // 10 MiB

type ProductHandler struct {
	uc     product.UseCase
	blobs  blob.Store
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, blobs blob.Store, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{uc: uc, blobs: blobs, logger: log}
}

// RegisterPublic mounts the storefront catalogue routes.
func (h *ProductHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/product-groups/:id", h.GetVariantGroup)
}

// RegisterSeller mounts the authenticated catalogue management routes.
func (h *ProductHandler) RegisterSeller(rg *gin.RouterGroup) {
	rg.POST("/product-groups", h.CreateVariantGroup)
	rg.PUT("/product-groups/:id", h.UpdateVariantGroup)
	rg.GET("/product-groups/:id", h.GetVariantGroup)

	rg.POST("/products", h.CreateProduct)
	rg.PUT("/products/:id", h.UpdateProduct)
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.DELETE("/products/:id", h.DeleteProduct)

	rg.POST("/uploads", h.Upload)
}

func (h *ProductHandler) CreateVariantGroup(c *gin.Context) {
	var input dto.CreateVariantGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.uc.CreateVariantGroup(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err, "failed to create variant group")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProductHandler) UpdateVariantGroup(c *gin.Context) {
	var input dto.UpdateVariantGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.uc.UpdateVariantGroup(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		h.respondError(c, err, "failed to update variant group")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) GetVariantGroup(c *gin.Context) {
	resp, err := h.uc.GetVariantGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to get variant group")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input dto.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input dto.UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.ID = c.Param("id")

	p, err := h.uc.UpdateProduct(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err, "failed to update product")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to get product")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filters := &dto.ProductFilters{
		OrgID:       c.Query("org_id"),
		GroupID:     c.Query("group_id"),
		SearchQuery: c.Query("search"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}
	// Sellers always browse their own catalogue.
	if orgID := auth.OrgID(c.Request.Context()); orgID != "" {
		filters.OrgID = orgID
	}
	if v := c.Query("is_active"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			filters.IsActive = &active
		}
	}

	products, total, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err, "failed to list products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.uc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "failed to delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// Upload accepts a multipart file and hands back the blob key to reference
// from provisioning payloads.
func (h *ProductHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the 10MB upload limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err, "failed to open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, err, "failed to read uploaded file")
		return
	}

	obj, err := h.blobs.Put(c.Request.Context(), data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.respondError(c, err, "failed to store uploaded file")
		return
	}
	c.JSON(http.StatusCreated, obj)
}

func (h *ProductHandler) respondError(c *gin.Context, err error, msg string) {
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

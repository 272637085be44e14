package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/service"
)

// ProductHandler mantiene dependencias para el catálogo público.
type ProductHandler struct {
	logger      *zap.Logger
	productServ *service.ProductService
}

func NewProductHandler(logger *zap.Logger, productServ *service.ProductService) *ProductHandler {
	return &ProductHandler{
		logger:      logger,
		productServ: productServ,
	}
}

// List maneja GET /api/products.
func (h *ProductHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	products, err := h.productServ.List(c.Request.Context(), domain.ProductFilter{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		MerchantID: c.Query("merchant"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Get maneja GET /api/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productServ.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("get product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/service"
	"taic-market/internal/storage"
)

// Límite de tamaño para archivos de import masivo.
const maxImportFileSize = 10 << 20 // 10 MiB

// MerchantHandler mantiene dependencias para la gestión de productos de
// merchants.
type MerchantHandler struct {
	logger      *zap.Logger
	productServ *service.ProductService
	importServ  *service.BulkImportService
	store       storage.ObjectStore
}

func NewMerchantHandler(
	logger *zap.Logger,
	productServ *service.ProductService,
	importServ *service.BulkImportService,
	store storage.ObjectStore,
) *MerchantHandler {
	if store == nil {
		store = storage.NewDisabledStore()
	}
	return &MerchantHandler{
		logger:      logger,
		productServ: productServ,
		importServ:  importServ,
		store:       store,
	}
}

type productRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock"`
}

func (r productRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Stock:       r.Stock,
	}
}

// CreateProduct maneja POST /api/merchant/products.
func (h *MerchantHandler) CreateProduct(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	product, err := h.productServ.Create(c.Request.Context(), claims.UserID, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product"})
			return
		}
		h.logger.Error("create product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct maneja PUT /api/merchant/products/:id.
func (h *MerchantHandler) UpdateProduct(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	product, err := h.productServ.Update(c.Request.Context(), claims.UserID, c.Param("id"), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProduct):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		default:
			h.logger.Error("update product failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update product"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct maneja DELETE /api/merchant/products/:id.
func (h *MerchantHandler) DeleteProduct(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.productServ.Deactivate(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		h.logger.Error("delete product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product removed"})
}

// ListProducts maneja GET /api/merchant/products.
func (h *MerchantHandler) ListProducts(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	products, err := h.productServ.ListByMerchant(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list merchant products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// BulkUpload maneja POST /api/merchant/products/bulk.
func (h *MerchantHandler) BulkUpload(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportFileSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	summary, err := h.importServ.Import(c.Request.Context(), claims.UserID, data)
	if err != nil {
		if errors.Is(err, service.ErrEmptyImport) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "import file has no data rows"})
			return
		}
		h.logger.Error("bulk import failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ImageUploadURL maneja POST /api/merchant/products/image-upload.
func (h *MerchantHandler) ImageUploadURL(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	key := storage.ObjectKey("images/" + claims.UserID)
	url, err := h.store.PresignPut(c.Request.Context(), key, 15*time.Minute)
	if err != nil {
		if errors.Is(err, storage.ErrStorageDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
			return
		}
		h.logger.Error("presign upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create upload url"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "upload_url": url})
}

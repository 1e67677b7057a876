package api

import (
	"errors"
	"net/http"
	"strings"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"
	"PaymentsBackend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PaymentAdminHandler 付款明细管理接口
type PaymentAdminHandler struct {
	adminService   *service.PaymentAdminService
	maxUploadBytes int64
	logger         *logrus.Logger
}

// NewPaymentAdminHandler 创建 PaymentAdminHandler
func NewPaymentAdminHandler(db *gorm.DB, logger *logrus.Logger, maxUploadBytes int64) *PaymentAdminHandler {
	return &PaymentAdminHandler{
		adminService:   service.NewPaymentAdminService(repository.NewPaymentRepository(db), logger),
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListPayments 分页列表，带 searchString 时按 payee_name 模糊查询
// GET /v1/payments/admin/payments?page=1&limit=20&searchString=xxx
func (h *PaymentAdminHandler) ListPayments(c *gin.Context) {
	page, limit, ok := pageQuery(c, maxPageLimit)
	if !ok {
		return
	}
	searchString := strings.TrimSpace(c.Query("searchString"))

	result, err := h.adminService.ListPayments(c.Request.Context(), searchString, page, limit)
	if err != nil {
		h.logger.WithError(err).Error("ListPayments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPayment GET /v1/payments/admin/payments/:id
func (h *PaymentAdminHandler) GetPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	payment, found, err := h.adminService.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("GetPayment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

// CreatePayment POST /v1/payments/admin/payments
func (h *PaymentAdminHandler) CreatePayment(c *gin.Context) {
	var payment model.PaymentDetail
	if err := c.ShouldBindJSON(&payment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.adminService.CreatePayment(c.Request.Context(), &payment)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("CreatePayment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdatePayment 部分更新，只修改请求体中出现的字段
// PUT /v1/payments/admin/payments/:id
func (h *PaymentAdminHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch model.PaymentDetailPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, found, err := h.adminService.UpdatePayment(c.Request.Context(), id, &patch)
	if err != nil {
		h.logger.WithError(err).Error("UpdatePayment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, payment)
}

// DeletePayment DELETE /v1/payments/admin/payments/:id
func (h *PaymentAdminHandler) DeletePayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.adminService.DeletePayment(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("DeletePayment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// BulkUpload 请求体为 text/csv，逐行导入
// POST /v1/payments/admin/payments/bulk-upload
func (h *PaymentAdminHandler) BulkUpload(c *gin.Context) {
	if c.ContentType() != csvContentType {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"success": false, "error": "content type must be text/csv"})
		return
	}
	body := c.Request.Body
	if h.maxUploadBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxUploadBytes)
	}

	result, err := h.adminService.BulkUploadPayments(c.Request.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("BulkUpload failed")
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

// FinancialYears GET /v1/payments/admin/financial-years
func (h *PaymentAdminHandler) FinancialYears(c *gin.Context) {
	years, err := h.adminService.FinancialYears(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("FinancialYears failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, years)
}

// PurgeFinancialYear 删除某财年的明细与汇总，财年中的 / 需编码为 %2F
// DELETE /v1/payments/admin/payments/year/:financialYear
func (h *PaymentAdminHandler) PurgeFinancialYear(c *gin.Context) {
	financialYear := c.Param("financialYear")
	if financialYear == "" || len(financialYear) > 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "financialYear must be 1-8 characters"})
		return
	}

	result, err := h.adminService.PurgeFinancialYear(c.Request.Context(), financialYear)
	if err != nil {
		h.logger.WithError(err).Error("PurgeFinancialYear failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

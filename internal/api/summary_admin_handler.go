package api

import (
	"net/http"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"
	"PaymentsBackend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SummaryAdminHandler 年度汇总管理接口
type SummaryAdminHandler struct {
	summaryAdminService *service.SummaryAdminService
	logger              *logrus.Logger
}

// NewSummaryAdminHandler 创建 SummaryAdminHandler
func NewSummaryAdminHandler(db *gorm.DB, logger *logrus.Logger) *SummaryAdminHandler {
	return &SummaryAdminHandler{
		summaryAdminService: service.NewSummaryAdminService(repository.NewSummaryRepository(db), logger),
		logger:              logger,
	}
}

func (h *SummaryAdminHandler) ListSummaries(c *gin.Context) {
	list, err := h.summaryAdminService.ListSummaries(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("ListSummaries failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SummaryAdminHandler) GetSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	summary, found, err := h.summaryAdminService.GetSummary(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("GetSummary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment summary not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SummaryAdminHandler) CreateSummary(c *gin.Context) {
	var summary model.SchemePayments
	if err := c.ShouldBindJSON(&summary); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.summaryAdminService.CreateSummary(c.Request.Context(), &summary)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("CreateSummary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *SummaryAdminHandler) UpdateSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var patch model.SchemePaymentsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, found, err := h.summaryAdminService.UpdateSummary(c.Request.Context(), id, &patch)
	if err != nil {
		h.logger.WithError(err).Error("UpdateSummary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment summary not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SummaryAdminHandler) DeleteSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.summaryAdminService.DeleteSummary(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("DeleteSummary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment summary not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

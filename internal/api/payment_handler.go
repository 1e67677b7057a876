package api

import (
	"net/http"
	"strings"

	"PaymentsBackend/internal/repository"
	"PaymentsBackend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxPageLimit = 100
	flushEvery   = 1000
)

// PaymentHandler 对外公开的查询、搜索与导出接口
type PaymentHandler struct {
	searchService  *service.SearchService
	payeeService   *service.PayeeService
	summaryService *service.SummaryService
	exportService  *service.ExportService
	adminService   *service.PaymentAdminService
	logger         *logrus.Logger
}

// NewPaymentHandler 创建 PaymentHandler
func NewPaymentHandler(db *gorm.DB, logger *logrus.Logger) *PaymentHandler {
	paymentRepo := repository.NewPaymentRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	searchService := service.NewSearchService(paymentRepo, logger)
	return &PaymentHandler{
		searchService:  searchService,
		payeeService:   service.NewPayeeService(paymentRepo, logger),
		summaryService: service.NewSummaryService(summaryRepo, logger),
		exportService:  service.NewExportService(paymentRepo, searchService, logger),
		adminService:   service.NewPaymentAdminService(paymentRepo, logger),
		logger:         logger,
	}
}

type filterByBody struct {
	Schemes  []string `json:"schemes"`
	Counties []string `json:"counties"`
	Amounts  []string `json:"amounts"`
	Years    []string `json:"years"`
}

type searchBody struct {
	SearchString string       `json:"searchString" binding:"required"`
	Limit        *int         `json:"limit" binding:"required,gt=0"`
	Offset       *int         `json:"offset" binding:"omitempty,gte=0"`
	SortBy       string       `json:"sortBy"`
	FilterBy     filterByBody `json:"filterBy"`
	Action       string       `json:"action"`
}

type searchFileBody struct {
	SearchString string       `json:"searchString" binding:"required"`
	SortBy       string       `json:"sortBy"`
	FilterBy     filterByBody `json:"filterBy"`
}

// toFilterBy scheme/county 去空白并转小写，与搜索时的比较方式一致
func (f filterByBody) toFilterBy() service.FilterBy {
	normalize := func(values []string) []string {
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, strings.ToLower(strings.TrimSpace(v)))
		}
		return out
	}
	return service.FilterBy{
		Schemes:  normalize(f.Schemes),
		Counties: normalize(f.Counties),
		Amounts:  f.Amounts,
		Years:    f.Years,
	}
}

func sortByOrDefault(sortBy string) string {
	if sortBy == "" {
		return service.SortByScore
	}
	return sortBy
}

// Search 搜索付款数据
// POST /v1/payments
func (h *PaymentHandler) Search(c *gin.Context) {
	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	searchString := strings.TrimSpace(body.SearchString)
	if searchString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "searchString must not be empty"})
		return
	}

	req := service.SearchRequest{
		SearchString: searchString,
		Limit:        *body.Limit,
		SortBy:       sortByOrDefault(body.SortBy),
		FilterBy:     body.FilterBy.toFilterBy(),
		Action:       strings.TrimSpace(body.Action),
	}
	if body.Offset != nil {
		req.Offset = *body.Offset
	}

	result, err := h.searchService.GetPaymentData(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).Error("Search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchCsv 搜索结果导出（下载模式，不分页）
// POST /v1/payments/file
func (h *PaymentHandler) SearchCsv(c *gin.Context) {
	var body searchFileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	searchString := strings.TrimSpace(body.SearchString)
	if searchString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "searchString must not be empty"})
		return
	}

	data, err := h.exportService.GetPaymentsCsv(c.Request.Context(), service.SearchRequest{
		SearchString: searchString,
		SortBy:       sortByOrDefault(body.SortBy),
		FilterBy:     body.FilterBy.toFilterBy(),
	})
	if err != nil {
		h.logger.WithError(err).Error("SearchCsv failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(c, csvContentType, "ffc-payments.csv", data)
}

// AllPaymentsCsv 全量明细流式导出，边读边写，不在内存中拼接整个文件
// GET /v1/payments/file
func (h *PaymentHandler) AllPaymentsCsv(c *gin.Context) {
	c.Header("Content-Type", csvContentType)
	c.Header("Content-Disposition", "attachment;filename=ffc-all-payments.csv")
	c.Status(http.StatusOK)

	rows := 0
	for chunk, err := range h.exportService.AllPaymentsCsv(c.Request.Context()) {
		if err != nil {
			// 响应头已发送，只能中断输出
			h.logger.WithError(err).Error("AllPaymentsCsv failed")
			_ = c.Error(err)
			return
		}
		if _, err := c.Writer.Write(chunk); err != nil {
			h.logger.WithError(err).Warn("AllPaymentsCsv client write failed")
			return
		}
		if rows++; rows%flushEvery == 0 {
			c.Writer.Flush()
		}
	}
	c.Writer.Flush()
}

// PaymentDataPage 聚合视图分页
// GET /v1/payments/data?page=1&limit=20
func (h *PaymentHandler) PaymentDataPage(c *gin.Context) {
	page, limit, ok := pageQuery(c, maxPageLimit)
	if !ok {
		return
	}
	rows, err := h.adminService.ListPaymentDataPage(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.WithError(err).Error("PaymentDataPage failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Suggestions 搜索框自动补全，没有匹配时返回 404（body 仍为空结果）
// GET /v1/payments/search?searchString=xxx
func (h *PaymentHandler) Suggestions(c *gin.Context) {
	searchString := strings.TrimSpace(c.Query("searchString"))
	if searchString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "searchString is required"})
		return
	}

	result, err := h.searchService.GetSearchSuggestions(c.Request.Context(), searchString)
	if err != nil {
		h.logger.WithError(err).Error("Suggestions failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if len(result.Rows) == 0 {
		status = http.StatusNotFound
	}
	c.JSON(status, result)
}

// Summary 按财年分组的 scheme 汇总
// GET /v1/payments/summary
func (h *PaymentHandler) Summary(c *gin.Context) {
	result, err := h.summaryService.GetPaymentSummary(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Summary failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SummaryCsv GET /v1/payments/summary/file
func (h *PaymentHandler) SummaryCsv(c *gin.Context) {
	data, err := h.summaryService.GetPaymentSummaryCsv(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("SummaryCsv failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(c, csvContentType, "ffc-payments-by-year.csv", data)
}

// SummaryWorkbook GET /v1/payments/summary/workbook
func (h *PaymentHandler) SummaryWorkbook(c *gin.Context) {
	data, err := h.summaryService.GetPaymentSummaryWorkbook(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("SummaryWorkbook failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(c, xlsxContentType, "ffc-payments-by-year.xlsx", data)
}

// PayeeDetails GET /v1/payments/:payeeName/:partPostcode
func (h *PaymentHandler) PayeeDetails(c *gin.Context) {
	payeeName, partPostcode, ok := payeeParams(c)
	if !ok {
		return
	}

	details, found, err := h.payeeService.GetPayeeDetails(c.Request.Context(), payeeName, partPostcode)
	if err != nil {
		h.logger.WithError(err).Error("PayeeDetails failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payee not found"})
		return
	}
	c.JSON(http.StatusOK, details)
}

// PayeeDetailsCsv GET /v1/payments/:payeeName/:partPostcode/file
func (h *PaymentHandler) PayeeDetailsCsv(c *gin.Context) {
	payeeName, partPostcode, ok := payeeParams(c)
	if !ok {
		return
	}

	data, err := h.payeeService.GetPayeeDetailsCsv(c.Request.Context(), payeeName, partPostcode)
	if err != nil {
		h.logger.WithError(err).Error("PayeeDetailsCsv failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	attachment(c, csvContentType, "ffc-payment-details.csv", data)
}

func payeeParams(c *gin.Context) (string, string, bool) {
	payeeName := strings.TrimSpace(c.Param("payeeName"))
	partPostcode := strings.TrimSpace(c.Param("partPostcode"))
	if payeeName == "" || partPostcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payeeName and partPostcode are required"})
		return "", "", false
	}
	return payeeName, partPostcode, true
}

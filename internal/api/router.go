package api

import (
	"net/http"

	"PaymentsBackend/internal/config"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NewRouter 注册全部路由。路径参数按原始（未解码）路径匹配，财年 23%2F24 在 handler 中为 23/24
func NewRouter(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery(), CORS(cfg.Server.CORSAllowedOrigins, cfg.Tracing.Header), RequestID(cfg.Tracing.Header), RequestLogger(logger))

	// 注册ppof 方便调试和监测性能问题
	if cfg.Server.Mode == gin.DebugMode {
		pprof.Register(r)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	paymentHandler := NewPaymentHandler(db, logger)
	v1 := r.Group("/v1/payments")
	v1.POST("", paymentHandler.Search)
	v1.POST("/file", paymentHandler.SearchCsv)
	v1.GET("/file", paymentHandler.AllPaymentsCsv)
	v1.GET("/data", paymentHandler.PaymentDataPage)
	v1.GET("/search", paymentHandler.Suggestions)
	v1.GET("/summary", paymentHandler.Summary)
	v1.GET("/summary/file", paymentHandler.SummaryCsv)
	v1.GET("/summary/workbook", paymentHandler.SummaryWorkbook)
	v1.GET("/:payeeName/:partPostcode", paymentHandler.PayeeDetails)
	v1.GET("/:payeeName/:partPostcode/file", paymentHandler.PayeeDetailsCsv)

	adminHandler := NewPaymentAdminHandler(db, logger, cfg.Server.MaxUploadBytes)
	admin := v1.Group("/admin")
	admin.GET("/payments", adminHandler.ListPayments)
	admin.GET("/payments/:id", adminHandler.GetPayment)
	admin.POST("/payments", adminHandler.CreatePayment)
	admin.PUT("/payments/:id", adminHandler.UpdatePayment)
	admin.DELETE("/payments/:id", adminHandler.DeletePayment)
	admin.POST("/payments/bulk-upload", adminHandler.BulkUpload)
	admin.GET("/financial-years", adminHandler.FinancialYears)
	admin.DELETE("/payments/year/:financialYear", adminHandler.PurgeFinancialYear)

	summaryAdminHandler := NewSummaryAdminHandler(db, logger)
	admin.GET("/summary", summaryAdminHandler.ListSummaries)
	admin.GET("/summary/:id", summaryAdminHandler.GetSummary)
	admin.POST("/summary", summaryAdminHandler.CreateSummary)
	admin.PUT("/summary/:id", summaryAdminHandler.UpdateSummary)
	admin.DELETE("/summary/:id", summaryAdminHandler.DeleteSummary)

	return r
}

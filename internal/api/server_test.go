package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"PaymentsBackend/internal/config"
	"PaymentsBackend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.PaymentDetail{}, &model.SchemePayments{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode, MaxUploadBytes: 1 << 20},
		Tracing: config.TracingConfig{Header: "x-cdp-request-id"},
	}
	return &testServer{router: NewRouter(db, cfg, log), db: db}
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return s.do(t, method, path, body, "application/json")
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func strPtr(s string) *string { return &s }

func (s *testServer) seedPayment(t *testing.T, p model.PaymentDetail) *model.PaymentDetail {
	t.Helper()
	if p.PublishedDate.IsZero() {
		p.PublishedDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	require.NoError(t, s.db.Create(&p).Error)
	return &p
}

func (s *testServer) seedSearchData(t *testing.T) {
	t.Helper()
	rows := []model.PaymentDetail{
		{PayeeName: "payee name 1", PartPostcode: "PP1", Town: strPtr("Town A"), CountyCouncil: strPtr("County A"), ParliamentaryConstituency: strPtr("Const 1"), Scheme: strPtr("Scheme A"), SchemeDetail: strPtr("Detail A"), FinancialYear: "23/24", Amount: decimal.NewFromInt(100)},
		{PayeeName: "payee name 2", PartPostcode: "PP2", Town: strPtr("Town B"), CountyCouncil: strPtr("County B"), Scheme: strPtr("Scheme A"), FinancialYear: "23/24", Amount: decimal.NewFromInt(400)},
		{PayeeName: "payee name 2", PartPostcode: "PP2", Town: strPtr("Town B"), CountyCouncil: strPtr("County B"), Scheme: strPtr("Scheme B"), FinancialYear: "23/24", Amount: decimal.NewFromInt(500)},
		{PayeeName: "payee name 3", PartPostcode: "PP3", Town: strPtr("Town C"), CountyCouncil: strPtr("County A"), Scheme: strPtr("Scheme B"), FinancialYear: "22/23", Amount: decimal.NewFromInt(500)},
	}
	for _, r := range rows {
		s.seedPayment(t, r)
	}
}

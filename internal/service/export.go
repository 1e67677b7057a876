package service

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"
	"PaymentsBackend/internal/utils/csvwriter"

	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

var (
	searchCsvHeader = []string{"payee_name", "part_postcode", "town", "county_council", "scheme", "financial_year", "total_amount"}

	paymentDetailCsvHeader = []string{
		"id", "payee_name", "part_postcode", "town", "county_council", "financial_year",
		"parliamentary_constituency", "scheme", "scheme_detail", "amount", "payment_date",
		"activity_level", "published_date",
	}
)

// ExportService 搜索结果与全量明细的 CSV 导出
type ExportService struct {
	repo   repository.PaymentRepository
	search *SearchService
	logger *logrus.Logger
}

// NewExportService 创建导出服务，检索结果导出复用 search
func NewExportService(repo repository.PaymentRepository, search *SearchService, logger *logrus.Logger) *ExportService {
	return &ExportService{repo: repo, search: search, logger: logger}
}

// GetPaymentsCsv 以下载模式执行搜索并导出 CSV，多值的 scheme/财年以 ; 连接
func (s *ExportService) GetPaymentsCsv(ctx context.Context, req SearchRequest) ([]byte, error) {
	req.Action = ActionDownload
	result, err := s.search.GetPaymentData(ctx, req)
	if err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(result.Rows)+1)
	records = append(records, searchCsvHeader)
	for _, r := range result.Rows {
		records = append(records, []string{
			r.PayeeName, r.PartPostcode, r.Town, r.CountyCouncil,
			strings.Join(r.Schemes, ";"), strings.Join(r.FinancialYears, ";"), r.TotalAmount.String(),
		})
	}

	var buf bytes.Buffer
	if err := csvwriter.New(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("生成搜索结果 CSV 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// AllPaymentsCsv 全量明细按行惰性产出 CSV（第一项为表头），只能消费一次
func (s *ExportService) AllPaymentsCsv(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if !yield(csvwriter.EncodeRow(paymentDetailCsvHeader), nil) {
			return
		}
		for p, err := range s.repo.StreamAll(ctx) {
			if err != nil {
				yield(nil, fmt.Errorf("读取付款明细失败: %w", err))
				return
			}
			if !yield(csvwriter.EncodeRow(paymentDetailRecord(p)), nil) {
				return
			}
		}
	}
}

func paymentDetailRecord(p *model.PaymentDetail) []string {
	paymentDate := ""
	if p.PaymentDate != nil {
		paymentDate = time.Time(*p.PaymentDate).Format(dateLayout)
	}
	return []string{
		strconv.FormatUint(p.ID, 10),
		p.PayeeName,
		p.PartPostcode,
		deref(p.Town),
		deref(p.CountyCouncil),
		p.FinancialYear,
		deref(p.ParliamentaryConstituency),
		deref(p.Scheme),
		deref(p.SchemeDetail),
		p.Amount.String(),
		paymentDate,
		deref(p.ActivityLevel),
		p.PublishedDate.UTC().Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

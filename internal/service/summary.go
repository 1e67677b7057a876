package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"
	"PaymentsBackend/internal/utils/csvwriter"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

var summaryCsvHeader = []string{"financial_year", "scheme", "amount"}

// SummaryService 按财年汇总 scheme 付款，并导出 CSV / Excel
type SummaryService struct {
	repo   repository.SummaryRepository
	logger *logrus.Logger
}

// NewSummaryService 创建年度汇总服务
func NewSummaryService(repo repository.SummaryRepository, logger *logrus.Logger) *SummaryService {
	return &SummaryService{repo: repo, logger: logger}
}

// GetPaymentSummary 按财年分组：financial_year -> 当年各 scheme 汇总
func (s *SummaryService) GetPaymentSummary(ctx context.Context) (map[string][]*model.AnnualPayment, error) {
	payments, err := s.sortedAnnualPayments(ctx)
	if err != nil {
		return nil, err
	}
	return groupByFinancialYear(payments), nil
}

// GetPaymentSummaryCsv 汇总导出为 CSV，amount 列取 total_amount
func (s *SummaryService) GetPaymentSummaryCsv(ctx context.Context) ([]byte, error) {
	payments, err := s.sortedAnnualPayments(ctx)
	if err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(payments)+1)
	records = append(records, summaryCsvHeader)
	for _, p := range payments {
		records = append(records, []string{p.FinancialYear, p.Scheme, p.TotalAmount.String()})
	}

	var buf bytes.Buffer
	if err := csvwriter.New(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("生成汇总 CSV 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// GetPaymentSummaryWorkbook 汇总导出为 xlsx，列与 CSV 相同，金额写为数值单元格
func (s *SummaryService) GetPaymentSummaryWorkbook(ctx context.Context) ([]byte, error) {
	payments, err := s.sortedAnnualPayments(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.WithError(err).Warn("关闭汇总工作簿失败")
		}
	}()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("创建汇总工作表失败: %w", err)
	}

	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"financial_year", "scheme", "amount"}); err != nil {
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}
	for i, p := range payments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		amount, _ := p.TotalAmount.Float64()
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{p.FinancialYear, p.Scheme, amount}); err != nil {
			return nil, fmt.Errorf("写入第 %d 行失败: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("生成汇总工作簿失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *SummaryService) sortedAnnualPayments(ctx context.Context) ([]*model.AnnualPayment, error) {
	payments, err := s.repo.ListAnnual(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取年度汇总失败: %w", err)
	}
	return sortByFinancialYear(payments), nil
}

// sortByFinancialYear 财年格式为 YY/YY，按字符串升序即时间顺序；稳定排序，同一年内保持原顺序
func sortByFinancialYear(payments []*model.AnnualPayment) []*model.AnnualPayment {
	sorted := slices.Clone(payments)
	slices.SortStableFunc(sorted, func(a, b *model.AnnualPayment) int {
		return strings.Compare(a.FinancialYear, b.FinancialYear)
	})
	return sorted
}

func groupByFinancialYear(payments []*model.AnnualPayment) map[string][]*model.AnnualPayment {
	grouped := make(map[string][]*model.AnnualPayment)
	for _, p := range payments {
		grouped[p.FinancialYear] = append(grouped[p.FinancialYear], p)
	}
	return grouped
}

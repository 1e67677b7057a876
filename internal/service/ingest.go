package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"PaymentsBackend/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

var paymentDateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

// RowError 单行导入失败，Row 从 1 开始（不含表头）
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// BulkUploadResult 批量导入结果
type BulkUploadResult struct {
	Success  bool        `json:"success"`
	Imported int         `json:"imported"`
	Errors   []*RowError `json:"errors"`
}

type ingestRow struct {
	row     int
	payment *model.PaymentDetail
}

// BulkUploadPayments 逐行读取 CSV 并一次性批量写入。
// 单行映射失败（格式错误、amount 或 payment_date 无法解析）只记录错误并跳过该行；
// 整批校验失败或读取流失败时整个调用失败，不写入任何数据。
func (s *PaymentAdminService) BulkUploadPayments(ctx context.Context, r io.Reader) (*BulkUploadResult, error) {
	publishedAt := s.now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &BulkUploadResult{Success: true, Errors: []*RowError{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	columns := headerIndex(header)

	var (
		mapped  []*ingestRow
		rowErrs = make([]*RowError, 0)
	)
	for rowNum := 1; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrs = append(rowErrs, &RowError{Row: rowNum, Error: parseErr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("读取第 %d 行失败: %w", rowNum, err)
		}

		row, err := mapPaymentRow(columns, record, publishedAt)
		if err != nil {
			rowErrs = append(rowErrs, &RowError{Row: rowNum, Error: err.Error()})
			continue
		}
		row.row = rowNum
		mapped = append(mapped, row)
	}

	if len(mapped) > 0 {
		payments := make([]*model.PaymentDetail, 0, len(mapped))
		for _, row := range mapped {
			if err := s.validateIngestRow(row); err != nil {
				return nil, err
			}
			payments = append(payments, row.payment)
		}
		if err := s.repo.BulkCreate(ctx, payments); err != nil {
			return nil, fmt.Errorf("批量写入付款记录失败: %w", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"imported": len(mapped),
		"errors":   len(rowErrs),
	}).Info("bulk payment upload completed")

	return &BulkUploadResult{Success: true, Imported: len(mapped), Errors: rowErrs}, nil
}

func (s *PaymentAdminService) validateIngestRow(row *ingestRow) error {
	if err := s.validate.Struct(row.payment); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("row %d: %s", row.row, verrs.Error())
		}
		return fmt.Errorf("row %d: %w", row.row, err)
	}
	return nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[strings.ToLower(name)] = i
	}
	return index
}

func mapPaymentRow(columns map[string]int, record []string, publishedAt time.Time) (*ingestRow, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	optional := func(name string) *string {
		v := field(name)
		if v == "" {
			return nil
		}
		return &v
	}

	row := &ingestRow{
		payment: &model.PaymentDetail{
			PayeeName:                 field("payee_name"),
			PartPostcode:              field("part_postcode"),
			Town:                      optional("town"),
			CountyCouncil:             optional("county_council"),
			ParliamentaryConstituency: optional("parliamentary_constituency"),
			Scheme:                    optional("scheme"),
			SchemeDetail:              optional("scheme_detail"),
			FinancialYear:             field("financial_year"),
			ActivityLevel:             optional("activity_level"),
			PublishedDate:             publishedAt,
		},
	}

	rawAmount := field("amount")
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", rawAmount)
	}
	row.payment.Amount = amount

	if raw := field("payment_date"); raw != "" {
		date, err := parsePaymentDate(raw)
		if err != nil {
			return nil, err
		}
		row.payment.PaymentDate = &date
	}
	return row, nil
}

func parsePaymentDate(raw string) (datatypes.Date, error) {
	for _, layout := range paymentDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return datatypes.Date(t), nil
		}
	}
	return datatypes.Date{}, fmt.Errorf("invalid payment_date %q", raw)
}

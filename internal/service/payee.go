package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"
	"PaymentsBackend/internal/utils/csvwriter"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var payeeCsvHeader = []string{
	"payee_name", "part_postcode", "town", "county_council", "parliamentary_constituency",
	"financial_year", "scheme", "scheme_detail", "activity_level", "amount",
}

// PayeeScheme 单个 payee 在某个 scheme 下的汇总
type PayeeScheme struct {
	Name          string          `json:"name"`
	Detail        string          `json:"detail"`
	ActivityLevel string          `json:"activity_level"`
	FinancialYear string          `json:"financial_year"`
	Amount        decimal.Decimal `json:"amount"`
}

// PayeeDetails payee 详情页数据
type PayeeDetails struct {
	PayeeName                 string         `json:"payee_name"`
	PartPostcode              string         `json:"part_postcode"`
	Town                      string         `json:"town"`
	CountyCouncil             string         `json:"county_council"`
	ParliamentaryConstituency string         `json:"parliamentary_constituency"`
	Schemes                   []*PayeeScheme `json:"schemes"`
}

// PayeeService payee 详情查询
type PayeeService struct {
	repo   repository.PaymentRepository
	logger *logrus.Logger
}

// NewPayeeService 创建收款方明细服务
func NewPayeeService(repo repository.PaymentRepository, logger *logrus.Logger) *PayeeService {
	return &PayeeService{repo: repo, logger: logger}
}

// GetPayeeDetails 按 payee_name + part_postcode 精确查询（先去掉首尾空白），found=false 表示不存在
func (s *PayeeService) GetPayeeDetails(ctx context.Context, payeeName, partPostcode string) (*PayeeDetails, bool, error) {
	rows, err := s.payeeRows(ctx, payeeName, partPostcode)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	first := rows[0]
	details := &PayeeDetails{
		PayeeName:                 first.PayeeName,
		PartPostcode:              first.PartPostcode,
		Town:                      first.Town,
		CountyCouncil:             first.CountyCouncil,
		ParliamentaryConstituency: first.ParliamentaryConstituency,
		Schemes:                   make([]*PayeeScheme, 0, len(rows)),
	}
	for _, r := range rows {
		details.Schemes = append(details.Schemes, &PayeeScheme{
			Name:          r.Scheme,
			Detail:        r.SchemeDetail,
			ActivityLevel: r.ActivityLevel,
			FinancialYear: r.FinancialYear,
			Amount:        r.Amount,
		})
	}
	return details, true, nil
}

// GetPayeeDetailsCsv payee 详情导出 CSV；没有记录时只有表头
func (s *PayeeService) GetPayeeDetailsCsv(ctx context.Context, payeeName, partPostcode string) ([]byte, error) {
	rows, err := s.payeeRows(ctx, payeeName, partPostcode)
	if err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, payeeCsvHeader)
	for _, r := range rows {
		records = append(records, []string{
			r.PayeeName, r.PartPostcode, r.Town, r.CountyCouncil, r.ParliamentaryConstituency,
			r.FinancialYear, r.Scheme, r.SchemeDetail, r.ActivityLevel, r.Amount.String(),
		})
	}

	var buf bytes.Buffer
	if err := csvwriter.New(&buf).WriteAll(records); err != nil {
		return nil, fmt.Errorf("生成 payee CSV 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PayeeService) payeeRows(ctx context.Context, payeeName, partPostcode string) ([]*model.PayeeSchemePayment, error) {
	rows, err := s.repo.ListPayeeGrouped(ctx, strings.TrimSpace(payeeName), strings.TrimSpace(partPostcode))
	if err != nil {
		return nil, fmt.Errorf("查询 payee 付款失败: %w", err)
	}
	return rows, nil
}

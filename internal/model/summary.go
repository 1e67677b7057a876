package model

import "github.com/shopspring/decimal"

// SchemePayments 对应 aggregate_scheme_payments 表，每个 (financial_year, scheme) 一条汇总。
// 表上没有唯一约束，唯一性由上游汇总保证。
type SchemePayments struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FinancialYear string          `gorm:"column:financial_year;type:varchar(8);not null;index" json:"financial_year" validate:"required,max=8"`
	Scheme        string          `gorm:"column:scheme;type:varchar(64);not null" json:"scheme" validate:"required,max=64"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric(15,2);not null" json:"total_amount"`
}

func (SchemePayments) TableName() string { return "aggregate_scheme_payments" }

// SchemePaymentsPatch partial update for a summary row.
type SchemePaymentsPatch struct {
	FinancialYear *string          `json:"financial_year" binding:"omitempty,min=1,max=8"`
	Scheme        *string          `json:"scheme" binding:"omitempty,min=1,max=64"`
	TotalAmount   *decimal.Decimal `json:"total_amount"`
}

func (p *SchemePaymentsPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.FinancialYear != nil {
		cols["financial_year"] = *p.FinancialYear
	}
	if p.Scheme != nil {
		cols["scheme"] = *p.Scheme
	}
	if p.TotalAmount != nil {
		cols["total_amount"] = *p.TotalAmount
	}
	return cols
}

// AnnualPayment 汇总视图（不含 id），供 summary 分组与 CSV 导出
type AnnualPayment struct {
	FinancialYear string          `json:"financial_year"`
	Scheme        string          `json:"scheme"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentDetail 对应 payment_activity_data 表，一条记录即一笔付款
type PaymentDetail struct {
	ID                        uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PayeeName                 string          `gorm:"column:payee_name;type:varchar(128);not null" json:"payee_name" validate:"required,max=128"`
	PartPostcode              string          `gorm:"column:part_postcode;type:varchar(8)" json:"part_postcode" validate:"max=8"`
	Town                      *string         `gorm:"column:town;type:varchar(128)" json:"town" validate:"omitempty,max=128"`
	CountyCouncil             *string         `gorm:"column:county_council;type:varchar(128)" json:"county_council" validate:"omitempty,max=128"`
	FinancialYear             string          `gorm:"column:financial_year;type:varchar(8);not null;index" json:"financial_year" validate:"required,max=8"`
	ParliamentaryConstituency *string         `gorm:"column:parliamentary_constituency;type:varchar(64)" json:"parliamentary_constituency" validate:"omitempty,max=64"`
	Scheme                    *string         `gorm:"column:scheme;type:varchar(64)" json:"scheme" validate:"omitempty,max=64"`
	SchemeDetail              *string         `gorm:"column:scheme_detail;type:varchar(128)" json:"scheme_detail" validate:"omitempty,max=128"`
	Amount                    decimal.Decimal `gorm:"column:amount;type:numeric(15,2);not null" json:"amount"`
	PaymentDate               *datatypes.Date `gorm:"column:payment_date;type:date" json:"payment_date"`
	ActivityLevel             *string         `gorm:"column:activity_level;type:varchar(64)" json:"activity_level" validate:"omitempty,max=64"`
	PublishedDate             time.Time       `gorm:"column:published_date;type:timestamp" json:"published_date"` // 服务端写入，客户端不可提交
}

func (PaymentDetail) TableName() string { return "payment_activity_data" }

// PaymentDetailPatch partial update; nil fields are left untouched.
type PaymentDetailPatch struct {
	PayeeName                 *string          `json:"payee_name" binding:"omitempty,min=1,max=128"`
	PartPostcode              *string          `json:"part_postcode" binding:"omitempty,max=8"`
	Town                      *string          `json:"town" binding:"omitempty,max=128"`
	CountyCouncil             *string          `json:"county_council" binding:"omitempty,max=128"`
	FinancialYear             *string          `json:"financial_year" binding:"omitempty,min=1,max=8"`
	ParliamentaryConstituency *string          `json:"parliamentary_constituency" binding:"omitempty,max=64"`
	Scheme                    *string          `json:"scheme" binding:"omitempty,max=64"`
	SchemeDetail              *string          `json:"scheme_detail" binding:"omitempty,max=128"`
	Amount                    *decimal.Decimal `json:"amount"`
	PaymentDate               *datatypes.Date  `json:"payment_date"`
	ActivityLevel             *string          `json:"activity_level" binding:"omitempty,max=64"`
}

// Columns 转换为 gorm Updates 使用的列映射
func (p *PaymentDetailPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.PayeeName != nil {
		cols["payee_name"] = *p.PayeeName
	}
	if p.PartPostcode != nil {
		cols["part_postcode"] = *p.PartPostcode
	}
	if p.Town != nil {
		cols["town"] = *p.Town
	}
	if p.CountyCouncil != nil {
		cols["county_council"] = *p.CountyCouncil
	}
	if p.FinancialYear != nil {
		cols["financial_year"] = *p.FinancialYear
	}
	if p.ParliamentaryConstituency != nil {
		cols["parliamentary_constituency"] = *p.ParliamentaryConstituency
	}
	if p.Scheme != nil {
		cols["scheme"] = *p.Scheme
	}
	if p.SchemeDetail != nil {
		cols["scheme_detail"] = *p.SchemeDetail
	}
	if p.Amount != nil {
		cols["amount"] = *p.Amount
	}
	if p.PaymentDate != nil {
		cols["payment_date"] = *p.PaymentDate
	}
	if p.ActivityLevel != nil {
		cols["activity_level"] = *p.ActivityLevel
	}
	return cols
}

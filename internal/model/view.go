package model

import "github.com/shopspring/decimal"

// PaymentData 按 payee + scheme 聚合后的视图行，搜索在其上进行
type PaymentData struct {
	PayeeName     string          `gorm:"column:payee_name" json:"payee_name"`
	PartPostcode  string          `gorm:"column:part_postcode" json:"part_postcode"`
	Town          string          `gorm:"column:town" json:"town"`
	CountyCouncil string          `gorm:"column:county_council" json:"county_council"`
	Scheme        string          `gorm:"column:scheme" json:"scheme"`
	FinancialYear string          `gorm:"column:financial_year" json:"financial_year"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
}

// PaymentDataPageRow 分页视图，额外带 scheme_detail
type PaymentDataPageRow struct {
	PayeeName     string          `gorm:"column:payee_name" json:"payee_name"`
	PartPostcode  string          `gorm:"column:part_postcode" json:"part_postcode"`
	Town          string          `gorm:"column:town" json:"town"`
	CountyCouncil string          `gorm:"column:county_council" json:"county_council"`
	Scheme        string          `gorm:"column:scheme" json:"scheme"`
	FinancialYear string          `gorm:"column:financial_year" json:"financial_year"`
	SchemeDetail  string          `gorm:"column:scheme_detail" json:"scheme_detail"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount" json:"total_amount"`
}

// PayeeSchemePayment 单个 payee 按 scheme 聚合后的一行
type PayeeSchemePayment struct {
	PayeeName                 string          `gorm:"column:payee_name"`
	PartPostcode              string          `gorm:"column:part_postcode"`
	Town                      string          `gorm:"column:town"`
	CountyCouncil             string          `gorm:"column:county_council"`
	ParliamentaryConstituency string          `gorm:"column:parliamentary_constituency"`
	Scheme                    string          `gorm:"column:scheme"`
	SchemeDetail              string          `gorm:"column:scheme_detail"`
	ActivityLevel             string          `gorm:"column:activity_level"`
	FinancialYear             string          `gorm:"column:financial_year"`
	Amount                    decimal.Decimal `gorm:"column:amount"`
}

// Page 分页结果
type Page[T any] struct {
	Count      int64 `json:"count"`
	Rows       []T   `json:"rows"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// YearPurgeResult 按财年删除的结果，计数在删除前统计
type YearPurgeResult struct {
	Deleted      bool  `json:"deleted"`
	PaymentCount int64 `json:"paymentCount"`
	SchemeCount  int64 `json:"schemeCount"`
}

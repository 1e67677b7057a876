package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// SortByScore 保持匹配顺序，不重新排序
	SortByScore = "score"
	// ActionDownload 下载模式：忽略 offset/limit，返回全部结果
	ActionDownload = "download"

	suggestionLimit = 6
)

// FilterBy 搜索筛选条件，各维度之间为 AND，空切片表示不限制
type FilterBy struct {
	Schemes  []string `json:"schemes"`
	Counties []string `json:"counties"`
	Amounts  []string `json:"amounts"`
	Years    []string `json:"years"`
}

// SearchRequest 搜索参数（已在 API 层校验并设置默认值）
type SearchRequest struct {
	SearchString string
	Limit        int
	Offset       int
	SortBy       string
	FilterBy     FilterBy
	Action       string
}

// PayeeResult 搜索结果：同一 payee 的多条 scheme 记录合并为一条
type PayeeResult struct {
	PayeeName      string          `json:"payee_name"`
	PartPostcode   string          `json:"part_postcode"`
	Town           string          `json:"town"`
	CountyCouncil  string          `json:"county_council"`
	Schemes        []string        `json:"scheme"`
	FinancialYears []string        `json:"financial_year"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// FilterOptions 匹配结果中出现过的筛选项，供前端展示
type FilterOptions struct {
	Schemes  []string `json:"schemes"`
	Counties []string `json:"counties"`
	Amounts  []string `json:"amounts"`
	Years    []string `json:"years"`
}

// SearchResult 搜索返回；Count 为筛选后的总数，与分页无关
type SearchResult struct {
	Count         int            `json:"count"`
	Rows          []*PayeeResult `json:"rows"`
	FilterOptions FilterOptions  `json:"filterOptions"`
}

// Suggestion 自动补全项，不含 scheme/金额/财年
type Suggestion struct {
	PayeeName     string `json:"payee_name"`
	PartPostcode  string `json:"part_postcode"`
	Town          string `json:"town"`
	CountyCouncil string `json:"county_council"`
}

// SuggestionResult Count 为去重后的匹配总数（截断前）
type SuggestionResult struct {
	Count int           `json:"count"`
	Rows  []*Suggestion `json:"rows"`
}

// SearchService 内存搜索：每次拉取完整的聚合视图后在进程内匹配、筛选、排序、分页。
// 数据量随明细表线性增长，没有数据库侧索引。
type SearchService struct {
	repo   repository.PaymentRepository
	logger *logrus.Logger
}

// NewSearchService 创建搜索服务
func NewSearchService(repo repository.PaymentRepository, logger *logrus.Logger) *SearchService {
	return &SearchService{repo: repo, logger: logger}
}

// GetPaymentData 搜索付款数据
func (s *SearchService) GetPaymentData(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	payments, err := s.repo.ListDenormalized(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取付款数据失败: %w", err)
	}

	matched := matchPayments(payments, req.SearchString)
	options := buildFilterOptions(matched)
	filtered := applyFilters(matched, req.FilterBy)
	grouped := groupByPayee(filtered)
	sortResults(grouped, req.SortBy)

	result := &SearchResult{
		Count:         len(grouped),
		FilterOptions: options,
	}
	if req.Action == ActionDownload {
		result.Rows = grouped
	} else {
		result.Rows = paginate(grouped, req.Offset, req.Limit)
	}

	s.logger.WithFields(logrus.Fields{
		"matched": len(matched),
		"count":   result.Count,
		"action":  req.Action,
	}).Debug("payment search completed")
	return result, nil
}

// GetSearchSuggestions 自动补全：按 payee 去重，最多返回 6 条
func (s *SearchService) GetSearchSuggestions(ctx context.Context, searchString string) (*SuggestionResult, error) {
	payments, err := s.repo.ListDenormalized(ctx)
	if err != nil {
		return nil, fmt.Errorf("拉取付款数据失败: %w", err)
	}

	matched := matchPayments(payments, searchString)
	seen := make(map[payeeKey]struct{}, len(matched))
	suggestions := make([]*Suggestion, 0)
	for _, p := range matched {
		k := payeeKey{p.PayeeName, p.PartPostcode}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		suggestions = append(suggestions, &Suggestion{
			PayeeName:     p.PayeeName,
			PartPostcode:  p.PartPostcode,
			Town:          p.Town,
			CountyCouncil: p.CountyCouncil,
		})
	}

	result := &SuggestionResult{Count: len(suggestions), Rows: suggestions}
	if len(suggestions) > suggestionLimit {
		result.Rows = suggestions[:suggestionLimit]
	}
	return result, nil
}

// searchableText 参与匹配的字段拼接为一个字符串，整体做一次子串匹配
func searchableText(p *model.PaymentData) string {
	return strings.ToLower(strings.Join([]string{p.PayeeName, p.PartPostcode, p.Town, p.CountyCouncil}, " "))
}

func matchPayments(payments []*model.PaymentData, searchString string) []*model.PaymentData {
	query := strings.ToLower(strings.TrimSpace(searchString))
	matched := make([]*model.PaymentData, 0, len(payments))
	for _, p := range payments {
		if strings.Contains(searchableText(p), query) {
			matched = append(matched, p)
		}
	}
	return matched
}

func buildFilterOptions(matched []*model.PaymentData) FilterOptions {
	schemes := make(map[string]struct{})
	counties := make(map[string]struct{})
	amounts := make(map[string]struct{})
	years := make(map[string]struct{})
	for _, p := range matched {
		if p.Scheme != "" {
			schemes[p.Scheme] = struct{}{}
		}
		if p.CountyCouncil != "" {
			counties[p.CountyCouncil] = struct{}{}
		}
		if key := amountBucketKey(p.TotalAmount); key != "" {
			amounts[key] = struct{}{}
		}
		if p.FinancialYear != "" {
			years[p.FinancialYear] = struct{}{}
		}
	}

	amountKeys := keysOf(amounts)
	slices.SortFunc(amountKeys, func(a, b string) int {
		return cmp.Compare(amountBucketRank(a), amountBucketRank(b))
	})
	return FilterOptions{
		Schemes:  sortedKeys(schemes),
		Counties: sortedKeys(counties),
		Amounts:  amountKeys,
		Years:    sortedKeys(years),
	}
}

func applyFilters(matched []*model.PaymentData, filter FilterBy) []*model.PaymentData {
	schemes := lowerSet(filter.Schemes)
	counties := lowerSet(filter.Counties)
	amounts := lowerSet(filter.Amounts)
	years := lowerSet(filter.Years)

	filtered := make([]*model.PaymentData, 0, len(matched))
	for _, p := range matched {
		if !allowed(schemes, p.Scheme) ||
			!allowed(counties, p.CountyCouncil) ||
			!allowed(amounts, amountBucketKey(p.TotalAmount)) ||
			!allowed(years, p.FinancialYear) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// groupByPayee 按 payee_name + part_postcode 合并，金额求和，scheme/财年按首次出现顺序去重
// payeeKey 收款方身份：名称 + 部分邮编
type payeeKey struct{ name, postcode string }

func groupByPayee(rows []*model.PaymentData) []*PayeeResult {
	index := make(map[payeeKey]*PayeeResult)
	results := make([]*PayeeResult, 0)
	for _, p := range rows {
		k := payeeKey{p.PayeeName, p.PartPostcode}
		r, ok := index[k]
		if !ok {
			r = &PayeeResult{
				PayeeName:      p.PayeeName,
				PartPostcode:   p.PartPostcode,
				Town:           p.Town,
				CountyCouncil:  p.CountyCouncil,
				Schemes:        []string{},
				FinancialYears: []string{},
				TotalAmount:    decimal.Zero,
			}
			index[k] = r
			results = append(results, r)
		}
		r.TotalAmount = r.TotalAmount.Add(p.TotalAmount)
		if p.Scheme != "" && !slices.Contains(r.Schemes, p.Scheme) {
			r.Schemes = append(r.Schemes, p.Scheme)
		}
		if p.FinancialYear != "" && !slices.Contains(r.FinancialYears, p.FinancialYear) {
			r.FinancialYears = append(r.FinancialYears, p.FinancialYear)
		}
	}
	return results
}

var sortComparators = map[string]func(a, b *PayeeResult) int{
	"payee_name":     func(a, b *PayeeResult) int { return strings.Compare(a.PayeeName, b.PayeeName) },
	"part_postcode":  func(a, b *PayeeResult) int { return strings.Compare(a.PartPostcode, b.PartPostcode) },
	"town":           func(a, b *PayeeResult) int { return strings.Compare(a.Town, b.Town) },
	"county_council": func(a, b *PayeeResult) int { return strings.Compare(a.CountyCouncil, b.CountyCouncil) },
	"total_amount":   func(a, b *PayeeResult) int { return a.TotalAmount.Cmp(b.TotalAmount) },
}

// sortResults 已知字段升序稳定排序；score 或未知字段保持原顺序
func sortResults(results []*PayeeResult, sortBy string) {
	compare, ok := sortComparators[sortBy]
	if !ok {
		return
	}
	slices.SortStableFunc(results, compare)
}

func paginate(results []*PayeeResult, offset, limit int) []*PayeeResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []*PayeeResult{}
	}
	end := len(results)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return results[offset:end]
}

func lowerSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

// allowed set 为空表示该维度不限制
func allowed(set map[string]struct{}, value string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[strings.ToLower(value)]
	return ok
}

func keysOf(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return keys
}

func sortedKeys(set map[string]struct{}) []string {
	keys := keysOf(set)
	slices.Sort(keys)
	return keys
}

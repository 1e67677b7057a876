package service

import (
	"context"
	"fmt"
	"testing"

	"PaymentsBackend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchDataset() []*model.PaymentData {
	return []*model.PaymentData{
		{PayeeName: "payee name 1", PartPostcode: "PP1", Town: "Town B", CountyCouncil: "County A", Scheme: "Sustainable Farming Incentive Pilot", FinancialYear: "21/22", TotalAmount: dec("100")},
		{PayeeName: "payee name 2", PartPostcode: "PP2", Town: "Town A", CountyCouncil: "County B", Scheme: "Farming Equipment and Technology Fund", FinancialYear: "21/22", TotalAmount: dec("400")},
		{PayeeName: "payee name 2", PartPostcode: "PP2", Town: "Town A", CountyCouncil: "County B", Scheme: "Sustainable Farming Incentive Pilot", FinancialYear: "22/23", TotalAmount: dec("500")},
		{PayeeName: "payee name 3", PartPostcode: "PP3", Town: "Town C", CountyCouncil: "County A", Scheme: "Countryside Stewardship", FinancialYear: "22/23", TotalAmount: dec("500")},
		{PayeeName: "other farm", PartPostcode: "XX9", Town: "Elsewhere", CountyCouncil: "County C", Scheme: "Countryside Stewardship", FinancialYear: "20/21", TotalAmount: dec("120000")},
	}
}

func newSearchService(rows []*model.PaymentData) (*SearchService, *fakePaymentRepo) {
	repo := &fakePaymentRepo{denormalized: rows}
	return NewSearchService(repo, testLogger()), repo
}

func baseRequest() SearchRequest {
	return SearchRequest{SearchString: "payee name", Limit: 10, SortBy: SortByScore}
}

func totals(rows []*PayeeResult) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.TotalAmount.String())
	}
	return out
}

func names(rows []*PayeeResult) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.PayeeName)
	}
	return out
}

func TestGetPaymentData_GroupsByPayeeAndKeepsScoreOrder(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	result, err := svc.GetPaymentData(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, []string{"100", "900", "500"}, totals(result.Rows))

	payee2 := result.Rows[1]
	assert.Equal(t, []string{"Farming Equipment and Technology Fund", "Sustainable Farming Incentive Pilot"}, payee2.Schemes)
	assert.Equal(t, []string{"21/22", "22/23"}, payee2.FinancialYears)
}

func TestGetPaymentData_MatchesAcrossFieldsCaseInsensitive(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	for _, q := range []string{"  TOWN a ", "pp3", "county c", "Elsewhere"} {
		req := baseRequest()
		req.SearchString = q
		result, err := svc.GetPaymentData(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count, q)
	}
}

func TestGetPaymentData_SingleSubstringNotTokenised(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.SearchString = "name PP1"
	result, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)

	req.SearchString = "1 PP1 town"
	result, err = svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
}

func TestGetPaymentData_SortByKnownField(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.SortBy = "town"
	result, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"payee name 2", "payee name 1", "payee name 3"}, names(result.Rows))

	req.SortBy = "total_amount"
	result, err = svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "500", "900"}, totals(result.Rows))
}

func TestGetPaymentData_UnknownSortKeepsOrder(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.SortBy = "no_such_field"
	result, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"payee name 1", "payee name 2", "payee name 3"}, names(result.Rows))
}

func TestGetPaymentData_Pagination(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.Limit = 2
	req.Offset = 1
	result, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Equal(t, []string{"payee name 2", "payee name 3"}, names(result.Rows))

	req.Offset = 5
	result, err = svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Empty(t, result.Rows)
}

func TestGetPaymentData_DownloadIgnoresPaging(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.Limit = 1
	req.Offset = 2
	req.Action = ActionDownload
	result, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	assert.Len(t, result.Rows, 3)
}

func TestGetPaymentData_Filters(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	tests := []struct {
		name   string
		filter FilterBy
		want   []string
	}{
		{"scheme", FilterBy{Schemes: []string{"countryside stewardship"}}, []string{"payee name 3"}},
		{"county", FilterBy{Counties: []string{"county a"}}, []string{"payee name 1", "payee name 3"}},
		{"year", FilterBy{Years: []string{"22/23"}}, []string{"payee name 2", "payee name 3"}},
		{"amount", FilterBy{Amounts: []string{"0-500"}}, []string{"payee name 1", "payee name 2"}},
		{"combined", FilterBy{Counties: []string{"county b"}, Years: []string{"21/22"}}, []string{"payee name 2"}},
		{"no match", FilterBy{Schemes: []string{"unknown"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			req.FilterBy = tt.filter
			result, err := svc.GetPaymentData(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(result.Rows))
			assert.Equal(t, len(tt.want), result.Count)
		})
	}
}

func TestGetPaymentData_FilteredAmountSumsOnlyKeptRows(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.FilterBy = FilterBy{Years: []string{"22/23"}}
	result, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "500", result.Rows[0].TotalAmount.String())
}

func TestGetPaymentData_FilterOptionsFromMatchedRows(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.FilterBy = FilterBy{Schemes: []string{"countryside stewardship"}}
	result, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)

	opts := result.FilterOptions
	assert.Equal(t, []string{"Countryside Stewardship", "Farming Equipment and Technology Fund", "Sustainable Farming Incentive Pilot"}, opts.Schemes)
	assert.Equal(t, []string{"County A", "County B"}, opts.Counties)
	assert.Equal(t, []string{"0-500", "500-1000"}, opts.Amounts)
	assert.Equal(t, []string{"21/22", "22/23"}, opts.Years)
}

func TestGetPaymentData_Idempotent(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	req := baseRequest()
	req.SortBy = "payee_name"
	first, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.GetPaymentData(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetSearchSuggestions_CapsAtSix(t *testing.T) {
	rows := make([]*model.PaymentData, 0, 100)
	for i := 0; i < 50; i++ {
		for _, scheme := range []string{"Scheme A", "Scheme B"} {
			rows = append(rows, &model.PaymentData{
				PayeeName:     fmt.Sprintf("Farmer %02d", i),
				PartPostcode:  "AB1",
				Town:          "Town",
				CountyCouncil: "County",
				Scheme:        scheme,
				FinancialYear: "21/22",
				TotalAmount:   dec("10"),
			})
		}
	}
	svc, _ := newSearchService(rows)

	result, err := svc.GetSearchSuggestions(context.Background(), "farmer")
	require.NoError(t, err)
	assert.Equal(t, 50, result.Count)
	require.Len(t, result.Rows, 6)
	assert.Equal(t, "Farmer 00", result.Rows[0].PayeeName)
}

func TestGetSearchSuggestions_OnePerPayee(t *testing.T) {
	svc, _ := newSearchService([]*model.PaymentData{
		{PayeeName: "Farmer Giles", PartPostcode: "AB1", Town: "Ambridge", CountyCouncil: "Borsetshire", Scheme: "Scheme A", FinancialYear: "21/22", TotalAmount: dec("10")},
		{PayeeName: "Farmer Giles", PartPostcode: "AB1", Town: "Hollerton", CountyCouncil: "Borsetshire", Scheme: "Scheme B", FinancialYear: "21/22", TotalAmount: dec("20")},
		{PayeeName: "Farmer Giles", PartPostcode: "ZZ9", Town: "Ambridge", CountyCouncil: "Borsetshire", Scheme: "Scheme A", FinancialYear: "21/22", TotalAmount: dec("30")},
	})

	result, err := svc.GetSearchSuggestions(context.Background(), "giles")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "AB1", result.Rows[0].PartPostcode)
	assert.Equal(t, "Ambridge", result.Rows[0].Town)
	assert.Equal(t, "ZZ9", result.Rows[1].PartPostcode)
}

func TestGetSearchSuggestions_NoMatch(t *testing.T) {
	svc, _ := newSearchService(searchDataset())

	result, err := svc.GetSearchSuggestions(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Rows)
}

func TestAmountBucketKey(t *testing.T) {
	assert.Equal(t, "0-500", amountBucketKey(dec("0")))
	assert.Equal(t, "0-500", amountBucketKey(dec("499.99")))
	assert.Equal(t, "500-1000", amountBucketKey(dec("500")))
	assert.Equal(t, "100000+", amountBucketKey(dec("2500000")))
	assert.Equal(t, "", amountBucketKey(dec("-1")))
}

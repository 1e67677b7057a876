package service

import (
	"context"
	"io"
	"iter"
	"testing"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// fakePaymentRepo 只实现测试用到的方法，其余调用会因内嵌 nil 接口而 panic
type fakePaymentRepo struct {
	repository.PaymentRepository

	denormalized []*model.PaymentData
	payeeRows    []*model.PayeeSchemePayment
	streamed     []*model.PaymentDetail
	streamErr    error
	created      []*model.PaymentDetail
	createErr    error
	payeeArgs    [2]string
	listCalls    int
	pageCalls    []string
}

func (f *fakePaymentRepo) ListPaginated(ctx context.Context, page, limit int) (*model.Page[*model.PaymentDetail], error) {
	f.pageCalls = append(f.pageCalls, "list")
	return &model.Page[*model.PaymentDetail]{Page: page}, nil
}

func (f *fakePaymentRepo) SearchByPayeeNamePaginated(ctx context.Context, searchString string, page, limit int) (*model.Page[*model.PaymentDetail], error) {
	f.pageCalls = append(f.pageCalls, "search:"+searchString)
	return &model.Page[*model.PaymentDetail]{Page: page}, nil
}

func (f *fakePaymentRepo) ListDenormalized(ctx context.Context) ([]*model.PaymentData, error) {
	f.listCalls++
	return f.denormalized, nil
}

func (f *fakePaymentRepo) ListPayeeGrouped(ctx context.Context, payeeName, partPostcode string) ([]*model.PayeeSchemePayment, error) {
	f.payeeArgs = [2]string{payeeName, partPostcode}
	return f.payeeRows, nil
}

func (f *fakePaymentRepo) StreamAll(ctx context.Context) iter.Seq2[*model.PaymentDetail, error] {
	return func(yield func(*model.PaymentDetail, error) bool) {
		for _, p := range f.streamed {
			if !yield(p, nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield(nil, f.streamErr)
		}
	}
}

func (f *fakePaymentRepo) BulkCreate(ctx context.Context, payments []*model.PaymentDetail) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, payments...)
	return nil
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *model.PaymentDetail) error {
	if f.createErr != nil {
		return f.createErr
	}
	payment.ID = uint64(len(f.created) + 1)
	f.created = append(f.created, payment)
	return nil
}

type fakeSummaryRepo struct {
	repository.SummaryRepository

	annual []*model.AnnualPayment
}

func (f *fakeSummaryRepo) ListAnnual(ctx context.Context) ([]*model.AnnualPayment, error) {
	return f.annual, nil
}

// newGolden CSV 导出对比 testdata/golden 下的文件，go test -update 可重新生成
func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func strPtr(s string) *string { return &s }

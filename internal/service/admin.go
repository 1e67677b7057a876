package service

import (
	"context"
	"fmt"
	"time"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// PaymentAdminService 付款明细的管理端操作：CRUD、分页、按财年清理、批量导入
type PaymentAdminService struct {
	repo     repository.PaymentRepository
	validate *validator.Validate
	logger   *logrus.Logger
	now      func() time.Time
}

// NewPaymentAdminService 创建付款管理服务，时间戳取自 time.Now
func NewPaymentAdminService(repo repository.PaymentRepository, logger *logrus.Logger) *PaymentAdminService {
	return &PaymentAdminService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *PaymentAdminService) GetPayment(ctx context.Context, id uint64) (*model.PaymentDetail, bool, error) {
	return s.repo.GetByID(ctx, id)
}

// CreatePayment published_date 一律由服务端写入当前时间
func (s *PaymentAdminService) CreatePayment(ctx context.Context, payment *model.PaymentDetail) (*model.PaymentDetail, error) {
	payment.ID = 0
	payment.PublishedDate = s.now()
	if err := s.validate.Struct(payment); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("创建付款记录失败: %w", err)
	}
	return payment, nil
}

func (s *PaymentAdminService) UpdatePayment(ctx context.Context, id uint64, patch *model.PaymentDetailPatch) (*model.PaymentDetail, bool, error) {
	payment, found, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fmt.Errorf("更新付款记录 %d 失败: %w", id, err)
	}
	return payment, found, nil
}

func (s *PaymentAdminService) DeletePayment(ctx context.Context, id uint64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("删除付款记录 %d 失败: %w", id, err)
	}
	return deleted, nil
}

// ListPayments searchString 为空时按 id 倒序列出全部
func (s *PaymentAdminService) ListPayments(ctx context.Context, searchString string, page, limit int) (*model.Page[*model.PaymentDetail], error) {
	var (
		result *model.Page[*model.PaymentDetail]
		err    error
	)
	if searchString == "" {
		result, err = s.repo.ListPaginated(ctx, page, limit)
	} else {
		result, err = s.repo.SearchByPayeeNamePaginated(ctx, searchString, page, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("分页查询付款记录失败: %w", err)
	}
	return result, nil
}

func (s *PaymentAdminService) ListPaymentDataPage(ctx context.Context, page, limit int) ([]*model.PaymentDataPageRow, error) {
	rows, err := s.repo.ListDenormalizedPage(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("分页查询付款视图失败: %w", err)
	}
	return rows, nil
}

func (s *PaymentAdminService) FinancialYears(ctx context.Context) ([]string, error) {
	years, err := s.repo.DistinctFinancialYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询财年失败: %w", err)
	}
	return years, nil
}

// PurgeFinancialYear 删除某财年的全部明细与汇总
func (s *PaymentAdminService) PurgeFinancialYear(ctx context.Context, financialYear string) (*model.YearPurgeResult, error) {
	result, err := s.repo.DeleteByFinancialYear(ctx, financialYear)
	if err != nil {
		return nil, fmt.Errorf("删除财年 %s 数据失败: %w", financialYear, err)
	}
	s.logger.WithFields(logrus.Fields{
		"financial_year": financialYear,
		"payments":       result.PaymentCount,
		"schemes":        result.SchemeCount,
	}).Info("financial year purged")
	return result, nil
}

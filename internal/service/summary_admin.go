package service

import (
	"context"
	"fmt"

	"PaymentsBackend/internal/model"
	"PaymentsBackend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// SummaryAdminService 年度 scheme 汇总的管理端 CRUD
type SummaryAdminService struct {
	repo     repository.SummaryRepository
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewSummaryAdminService 创建汇总管理服务
func NewSummaryAdminService(repo repository.SummaryRepository, logger *logrus.Logger) *SummaryAdminService {
	return &SummaryAdminService{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (s *SummaryAdminService) ListSummaries(ctx context.Context) ([]*model.SchemePayments, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询汇总列表失败: %w", err)
	}
	return rows, nil
}

func (s *SummaryAdminService) GetSummary(ctx context.Context, id uint64) (*model.SchemePayments, bool, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SummaryAdminService) CreateSummary(ctx context.Context, summary *model.SchemePayments) (*model.SchemePayments, error) {
	summary.ID = 0
	if err := s.validate.Struct(summary); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, summary); err != nil {
		return nil, fmt.Errorf("创建汇总失败: %w", err)
	}
	return summary, nil
}

func (s *SummaryAdminService) UpdateSummary(ctx context.Context, id uint64, patch *model.SchemePaymentsPatch) (*model.SchemePayments, bool, error) {
	summary, found, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fmt.Errorf("更新汇总 %d 失败: %w", id, err)
	}
	return summary, found, nil
}

func (s *SummaryAdminService) DeleteSummary(ctx context.Context, id uint64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("删除汇总 %d 失败: %w", id, err)
	}
	return deleted, nil
}

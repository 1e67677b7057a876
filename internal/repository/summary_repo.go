package repository

import (
	"context"
	"errors"

	"PaymentsBackend/internal/model"

	"gorm.io/gorm"
)

// SummaryRepository 年度 scheme 汇总（aggregate_scheme_payments）仓储接口
type SummaryRepository interface {
	// ListAll 管理端列表：financial_year 倒序，scheme 正序
	ListAll(ctx context.Context) ([]*model.SchemePayments, error)
	// ListAnnual 全部汇总（不含 id），供 summary 分组与导出
	ListAnnual(ctx context.Context) ([]*model.AnnualPayment, error)
	GetByID(ctx context.Context, id uint64) (summary *model.SchemePayments, found bool, err error)
	Create(ctx context.Context, summary *model.SchemePayments) error
	Update(ctx context.Context, id uint64, patch *model.SchemePaymentsPatch) (summary *model.SchemePayments, found bool, err error)
	Delete(ctx context.Context, id uint64) (deleted bool, err error)
}

type summaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository 创建 SummaryRepository 实例
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) ListAll(ctx context.Context) ([]*model.SchemePayments, error) {
	var list []*model.SchemePayments
	if err := r.db.WithContext(ctx).
		Order("financial_year DESC").
		Order("scheme ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *summaryRepository) ListAnnual(ctx context.Context) ([]*model.AnnualPayment, error) {
	var list []*model.AnnualPayment
	if err := r.db.WithContext(ctx).Model(&model.SchemePayments{}).
		Select("financial_year, scheme, total_amount").
		Order("id ASC").
		Scan(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *summaryRepository) GetByID(ctx context.Context, id uint64) (*model.SchemePayments, bool, error) {
	var s model.SchemePayments
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &s, true, nil
}

func (r *summaryRepository) Create(ctx context.Context, summary *model.SchemePayments) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

func (r *summaryRepository) Update(ctx context.Context, id uint64, patch *model.SchemePaymentsPatch) (*model.SchemePayments, bool, error) {
	existing, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	if cols := patch.Columns(); len(cols) > 0 {
		if err := r.db.WithContext(ctx).Model(&model.SchemePayments{}).
			Where("id = ?", existing.ID).
			Updates(cols).Error; err != nil {
			return nil, true, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *summaryRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	_, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return false, err
	}
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.SchemePayments{}).Error; err != nil {
		return false, err
	}
	return true, nil
}

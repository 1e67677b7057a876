package repository

import (
	"context"
	"errors"
	"iter"
	"strings"

	"PaymentsBackend/internal/model"

	"gorm.io/gorm"
)

const (
	defaultPage      = 1
	defaultPageLimit = 20
	bulkBatchSize    = 500
)

// PaymentRepository 付款明细（payment_activity_data）仓储接口
type PaymentRepository interface {
	// GetByID 按主键查询，found=false 表示不存在（不是错误）
	GetByID(ctx context.Context, id uint64) (payment *model.PaymentDetail, found bool, err error)
	Create(ctx context.Context, payment *model.PaymentDetail) error
	// Update 把 patch 中非空字段合并到已有记录
	Update(ctx context.Context, id uint64, patch *model.PaymentDetailPatch) (payment *model.PaymentDetail, found bool, err error)
	Delete(ctx context.Context, id uint64) (deleted bool, err error)
	// ListPaginated 按 id 倒序分页
	ListPaginated(ctx context.Context, page, limit int) (*model.Page[*model.PaymentDetail], error)
	// SearchByPayeeNamePaginated 按 payee_name 模糊匹配（忽略大小写）分页；searchString 为空时等同 ListPaginated
	SearchByPayeeNamePaginated(ctx context.Context, searchString string, page, limit int) (*model.Page[*model.PaymentDetail], error)
	// DeleteByFinancialYear 删除某财年的明细与汇总，返回删除前统计的数量
	DeleteByFinancialYear(ctx context.Context, financialYear string) (*model.YearPurgeResult, error)
	// DistinctFinancialYears 所有非空财年，倒序
	DistinctFinancialYears(ctx context.Context) ([]string, error)
	BulkCreate(ctx context.Context, payments []*model.PaymentDetail) error
	// ListDenormalized 按 payee + scheme + 财年聚合后的全量视图（搜索数据源）
	ListDenormalized(ctx context.Context) ([]*model.PaymentData, error)
	// ListDenormalizedPage 聚合视图分页（带 scheme_detail），按 payee_name 排序
	ListDenormalizedPage(ctx context.Context, page, limit int) ([]*model.PaymentDataPageRow, error)
	// ListPayeeGrouped 单个 payee 按 scheme 聚合
	ListPayeeGrouped(ctx context.Context, payeeName, partPostcode string) ([]*model.PayeeSchemePayment, error)
	// StreamAll 逐行读取整张明细表，不一次性加载到内存
	StreamAll(ctx context.Context) iter.Seq2[*model.PaymentDetail, error]
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建 PaymentRepository 实例
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	return page, limit
}

func totalPages(count int64, limit int) int {
	return int((count + int64(limit) - 1) / int64(limit))
}

func (r *paymentRepository) GetByID(ctx context.Context, id uint64) (*model.PaymentDetail, bool, error) {
	var p model.PaymentDetail
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &p, true, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.PaymentDetail) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) Update(ctx context.Context, id uint64, patch *model.PaymentDetailPatch) (*model.PaymentDetail, bool, error) {
	existing, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return nil, found, err
	}
	if cols := patch.Columns(); len(cols) > 0 {
		if err := r.db.WithContext(ctx).Model(&model.PaymentDetail{}).
			Where("id = ?", existing.ID).
			Updates(cols).Error; err != nil {
			return nil, true, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *paymentRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	_, found, err := r.GetByID(ctx, id)
	if err != nil || !found {
		return false, err
	}
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.PaymentDetail{}).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *paymentRepository) ListPaginated(ctx context.Context, page, limit int) (*model.Page[*model.PaymentDetail], error) {
	return r.listPage(r.db.WithContext(ctx).Model(&model.PaymentDetail{}), page, limit)
}

func (r *paymentRepository) SearchByPayeeNamePaginated(ctx context.Context, searchString string, page, limit int) (*model.Page[*model.PaymentDetail], error) {
	db := r.db.WithContext(ctx).Model(&model.PaymentDetail{})
	if searchString != "" {
		// LOWER + LIKE 代替 ILIKE，Postgres 与 SQLite 通用
		db = db.Where("LOWER(payee_name) LIKE ?", "%"+strings.ToLower(searchString)+"%")
	}
	return r.listPage(db, page, limit)
}

func (r *paymentRepository) listPage(db *gorm.DB, page, limit int) (*model.Page[*model.PaymentDetail], error) {
	page, limit = normalizePage(page, limit)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, err
	}

	var rows []*model.PaymentDetail
	if err := db.
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	return &model.Page[*model.PaymentDetail]{
		Count:      count,
		Rows:       rows,
		Page:       page,
		TotalPages: totalPages(count, limit),
	}, nil
}

// DeleteByFinancialYear 先统计再删除，两步之间不加事务：并发写入时返回的数量可能与实际删除数不同
func (r *paymentRepository) DeleteByFinancialYear(ctx context.Context, financialYear string) (*model.YearPurgeResult, error) {
	db := r.db.WithContext(ctx)

	var paymentCount, schemeCount int64
	if err := db.Model(&model.PaymentDetail{}).Where("financial_year = ?", financialYear).Count(&paymentCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.SchemePayments{}).Where("financial_year = ?", financialYear).Count(&schemeCount).Error; err != nil {
		return nil, err
	}

	if err := db.Where("financial_year = ?", financialYear).Delete(&model.PaymentDetail{}).Error; err != nil {
		return nil, err
	}
	if err := db.Where("financial_year = ?", financialYear).Delete(&model.SchemePayments{}).Error; err != nil {
		return nil, err
	}

	return &model.YearPurgeResult{
		Deleted:      true,
		PaymentCount: paymentCount,
		SchemeCount:  schemeCount,
	}, nil
}

func (r *paymentRepository) DistinctFinancialYears(ctx context.Context) ([]string, error) {
	var years []string
	if err := r.db.WithContext(ctx).Model(&model.PaymentDetail{}).
		Where("financial_year IS NOT NULL AND financial_year <> ''").
		Distinct().
		Order("financial_year DESC").
		Pluck("financial_year", &years).Error; err != nil {
		return nil, err
	}
	return years, nil
}

func (r *paymentRepository) BulkCreate(ctx context.Context, payments []*model.PaymentDetail) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(payments, bulkBatchSize).Error
}

func (r *paymentRepository) ListDenormalized(ctx context.Context) ([]*model.PaymentData, error) {
	var rows []*model.PaymentData
	if err := r.db.WithContext(ctx).Model(&model.PaymentDetail{}).
		Select("payee_name, part_postcode, town, county_council, scheme, financial_year, SUM(amount) AS total_amount").
		Group("payee_name, part_postcode, town, county_council, scheme, financial_year").
		Order("payee_name ASC, part_postcode ASC, scheme ASC, financial_year ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *paymentRepository) ListDenormalizedPage(ctx context.Context, page, limit int) ([]*model.PaymentDataPageRow, error) {
	page, limit = normalizePage(page, limit)
	var rows []*model.PaymentDataPageRow
	if err := r.db.WithContext(ctx).Model(&model.PaymentDetail{}).
		Select("payee_name, part_postcode, town, county_council, scheme, financial_year, scheme_detail, SUM(amount) AS total_amount").
		Group("payee_name, part_postcode, town, county_council, scheme, financial_year, scheme_detail").
		Order("payee_name ASC, part_postcode ASC, scheme ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *paymentRepository) ListPayeeGrouped(ctx context.Context, payeeName, partPostcode string) ([]*model.PayeeSchemePayment, error) {
	var rows []*model.PayeeSchemePayment
	if err := r.db.WithContext(ctx).Model(&model.PaymentDetail{}).
		Select("payee_name, part_postcode, town, county_council, parliamentary_constituency, scheme, scheme_detail, activity_level, financial_year, SUM(amount) AS amount").
		Where("payee_name = ? AND part_postcode = ?", payeeName, partPostcode).
		Group("payee_name, part_postcode, town, county_council, parliamentary_constituency, scheme, scheme_detail, activity_level, financial_year").
		Order("scheme ASC, financial_year ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// StreamAll 按表内顺序逐行产出；迭代只能消费一次，消费方停止时释放游标
func (r *paymentRepository) StreamAll(ctx context.Context) iter.Seq2[*model.PaymentDetail, error] {
	return func(yield func(*model.PaymentDetail, error) bool) {
		rows, err := r.db.WithContext(ctx).Model(&model.PaymentDetail{}).Rows()
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var p model.PaymentDetail
			if err := r.db.ScanRows(rows, &p); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&p, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

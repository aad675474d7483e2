package gormrepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trezcool/studman/core/fee"
)

type feeRepository struct {
	db *gorm.DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *gorm.DB) *feeRepository {
	return &feeRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func (repo feeRepository) CreateParticulars(ctx context.Context, ps []fee.Particular) error {
	if len(ps) == 0 {
		return nil
	}
	models := make([]feeModel, 0, len(ps))
	for _, p := range ps {
		models = append(models, feeModel{
			ID:          p.ID,
			Title:       p.Title,
			Amount:      p.Amount,
			InstituteID: p.InstituteID,
			CreatedBy:   p.CreatedBy,
			CreatedAt:   p.CreatedAt.UTC(),
		})
	}
	if err := conn(ctx, repo.db).Create(&models).Error; err != nil {
		return trapDuplicate(err, fee.ErrTitleExists, "inserting fees")
	}
	return nil
}

func (repo feeRepository) ExistingTitles(ctx context.Context, instituteID string, titles []string) ([]string, error) {
	if len(titles) == 0 {
		return []string{}, nil
	}
	lowered := make([]string, 0, len(titles))
	for _, t := range titles {
		lowered = append(lowered, strings.ToLower(t))
	}
	var existing []string
	err := conn(ctx, repo.db).Model(&feeModel{}).
		Where("institute_id = ? AND LOWER(title) IN ?", instituteID, lowered).
		Order("title ASC").
		Pluck("title", &existing).Error
	if err != nil {
		return nil, errors.Wrap(err, "checking fee titles")
	}
	return existing, nil
}

func (repo feeRepository) Particulars(ctx context.Context, instituteID string, ids ...string) ([]fee.Particular, error) {
	q := conn(ctx, repo.db).Where("institute_id = ?", instituteID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	var models []feeModel
	if err := q.Order("created_at ASC").Order("title ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "listing fees")
	}
	ps := make([]fee.Particular, 0, len(models))
	for _, m := range models {
		ps = append(ps, fee.Particular{
			ID:          m.ID,
			Title:       m.Title,
			Amount:      m.Amount,
			InstituteID: m.InstituteID,
			CreatedBy:   m.CreatedBy,
			CreatedAt:   m.CreatedAt.UTC(),
		})
	}
	return ps, nil
}

func (repo feeRepository) fromClassFeeModel(m *classFeeModel) fee.ClassFee {
	items := make([]fee.ClassFeeItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, fee.ClassFeeItem{FeeID: it.FeeID, Title: it.Title, Amount: it.Amount})
	}
	return fee.ClassFee{
		ID:          m.ID,
		ClassID:     m.ClassID,
		InstituteID: m.InstituteID,
		Fees:        items,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo feeRepository) GetClassFee(ctx context.Context, classID string) (fee.ClassFee, error) {
	var m classFeeModel
	err := conn(ctx, repo.db).Preload("Items", orderedItems).Where("class_id = ?", classID).Take(&m).Error
	if err != nil {
		return fee.ClassFee{}, trapNotFound(err, fee.ErrClassFeeNotFound, "getting class fee")
	}
	return repo.fromClassFeeModel(&m), nil
}

func (repo feeRepository) SaveClassFee(ctx context.Context, cf fee.ClassFee) (fee.ClassFee, error) {
	m := &classFeeModel{
		ID:          cf.ID,
		ClassID:     cf.ClassID,
		InstituteID: cf.InstituteID,
		CreatedBy:   cf.CreatedBy,
		CreatedAt:   cf.CreatedAt.UTC(),
		UpdatedAt:   cf.UpdatedAt.UTC(),
	}
	for i, it := range cf.Fees {
		m.Items = append(m.Items, classFeeItemModel{ClassFeeID: cf.ID, FeeID: it.FeeID, Position: i, Title: it.Title, Amount: it.Amount})
	}

	err := conn(ctx, repo.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		if err := tx.Where("class_fee_id = ?", m.ID).Delete(&classFeeItemModel{}).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
	if err != nil {
		return fee.ClassFee{}, errors.Wrap(err, "saving class fee")
	}
	return repo.fromClassFeeModel(m), nil
}

func (repo feeRepository) fromStudentFeeModel(m *studentFeeModel) fee.StudentFee {
	items := make([]fee.StudentFeeItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, fee.StudentFeeItem{FeeID: it.FeeID, Title: it.Title, Amount: it.Amount, Paid: it.Paid})
	}
	return fee.StudentFee{
		ID:          m.ID,
		StudentID:   m.StudentID,
		ClassID:     m.ClassID,
		InstituteID: m.InstituteID,
		Fees:        items,
		TotalAmount: m.TotalAmount,
		Balance:     m.Balance,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo feeRepository) getStudentFee(q *gorm.DB, studentID string) (fee.StudentFee, error) {
	var m studentFeeModel
	err := q.Preload("Items", orderedItems).Where("student_id = ?", studentID).Take(&m).Error
	if err != nil {
		return fee.StudentFee{}, trapNotFound(err, fee.ErrStudentFeeNotFound, "getting student fee")
	}
	return repo.fromStudentFeeModel(&m), nil
}

func (repo feeRepository) GetStudentFee(ctx context.Context, studentID string) (fee.StudentFee, error) {
	return repo.getStudentFee(conn(ctx, repo.db), studentID)
}

// LockStudentFee takes a row lock on the student fee (SELECT ... FOR UPDATE).
// The sqlite dialect drops the locking clause; sqlite serializes writers anyway.
func (repo feeRepository) LockStudentFee(ctx context.Context, studentID string) (fee.StudentFee, error) {
	return repo.getStudentFee(conn(ctx, repo.db).Clauses(clause.Locking{Strength: "UPDATE"}), studentID)
}

func (repo feeRepository) SaveStudentFee(ctx context.Context, sf fee.StudentFee) (fee.StudentFee, error) {
	m := &studentFeeModel{
		ID:          sf.ID,
		StudentID:   sf.StudentID,
		ClassID:     sf.ClassID,
		InstituteID: sf.InstituteID,
		TotalAmount: sf.TotalAmount,
		Balance:     sf.Balance,
		Status:      sf.Status,
		CreatedAt:   sf.CreatedAt.UTC(),
		UpdatedAt:   sf.UpdatedAt.UTC(),
	}
	for i, it := range sf.Fees {
		m.Items = append(m.Items, studentFeeItemModel{
			StudentFeeID: sf.ID,
			FeeID:        it.FeeID,
			Position:     i,
			Title:        it.Title,
			Amount:       it.Amount,
			Paid:         it.Paid,
		})
	}

	err := conn(ctx, repo.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}
		if err := tx.Where("student_fee_id = ?", m.ID).Delete(&studentFeeItemModel{}).Error; err != nil {
			return err
		}
		if len(m.Items) == 0 {
			return nil
		}
		return tx.Create(&m.Items).Error
	})
	if err != nil {
		return fee.StudentFee{}, errors.Wrap(err, "saving student fee")
	}

	saved := repo.fromStudentFeeModel(m)
	saved.Payments = sf.Payments
	return saved, nil
}

func (repo feeRepository) StudentFees(ctx context.Context, instituteID string) ([]fee.StudentFee, error) {
	var models []studentFeeModel
	err := conn(ctx, repo.db).Preload("Items", orderedItems).
		Where("institute_id = ?", instituteID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing student fees")
	}
	fees := make([]fee.StudentFee, 0, len(models))
	for i := range models {
		fees = append(fees, repo.fromStudentFeeModel(&models[i]))
	}
	return fees, nil
}

func (repo feeRepository) fromPaymentModel(m *feePaymentModel) fee.Payment {
	return fee.Payment{
		ID:           m.ID,
		StudentFeeID: m.StudentFeeID,
		FeeID:        m.FeeID,
		Amount:       m.Amount,
		Reference:    m.Reference,
		RecordedBy:   m.RecordedBy,
		PaidAt:       m.PaidAt.UTC(),
	}
}

func (repo feeRepository) CreatePayment(ctx context.Context, p fee.Payment) (fee.Payment, error) {
	m := &feePaymentModel{
		ID:           p.ID,
		StudentFeeID: p.StudentFeeID,
		FeeID:        p.FeeID,
		Amount:       p.Amount,
		Reference:    p.Reference,
		RecordedBy:   p.RecordedBy,
		PaidAt:       p.PaidAt.UTC(),
	}
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return fee.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return repo.fromPaymentModel(m), nil
}

func (repo feeRepository) Payments(ctx context.Context, studentFeeID string) ([]fee.Payment, error) {
	var models []feePaymentModel
	if err := conn(ctx, repo.db).Where("student_fee_id = ?", studentFeeID).Order("paid_at ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "listing payments")
	}
	payments := make([]fee.Payment, 0, len(models))
	for i := range models {
		payments = append(payments, repo.fromPaymentModel(&models[i]))
	}
	return payments, nil
}

package fee

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrNoInstitute         = core.BadRequest("Create institute before adding fees")
	ErrNoFees              = core.BadRequest("Fees must be a non-empty array")
	ErrDuplicateTitles     = core.BadRequest("Duplicate fee titles in request")
	ErrDuplicateFees       = core.BadRequest("Duplicate fees in request")
	ErrPaymentTooLarge     = core.BadRequest("Payment exceeds outstanding amount")
	ErrTitleExists         = core.NewConflictError("Fee title already exists")
	ErrInstituteMembership = core.NewPermissionError("Admin must belong to an institute")
	ErrNotFound            = core.NewNotFoundError("Fee not found")
	ErrClassFeeNotFound    = core.NewNotFoundError("No fees assigned to student's class")
	ErrStudentFeeNotFound  = core.NewNotFoundError("Student fee not found")
)

type (
	Repository interface {
		CreateParticulars(ctx context.Context, ps []Particular) error
		// ExistingTitles returns which of titles the institute already uses, case-insensitively.
		ExistingTitles(ctx context.Context, instituteID string, titles []string) ([]string, error)
		// Particulars lists the institute's particulars, restricted to ids when given.
		Particulars(ctx context.Context, instituteID string, ids ...string) ([]Particular, error)

		GetClassFee(ctx context.Context, classID string) (ClassFee, error)
		// SaveClassFee creates or replaces the class fee and its items.
		SaveClassFee(ctx context.Context, cf ClassFee) (ClassFee, error)

		GetStudentFee(ctx context.Context, studentID string) (StudentFee, error)
		// LockStudentFee reads the student fee and locks it until the surrounding transaction ends.
		LockStudentFee(ctx context.Context, studentID string) (StudentFee, error)
		// SaveStudentFee creates or replaces the student fee and its items.
		SaveStudentFee(ctx context.Context, sf StudentFee) (StudentFee, error)
		StudentFees(ctx context.Context, instituteID string) ([]StudentFee, error)

		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		Payments(ctx context.Context, studentFeeID string) ([]Payment, error)
	}

	Service struct {
		repo    Repository
		classes *classroom.Service
		users   *user.Service
		tx      core.Transactor
	}
)

func NewService(repo Repository, classes *classroom.Service, users *user.Service, tx core.Transactor) *Service {
	return &Service{repo: repo, classes: classes, users: users, tx: tx}
}

// CreateParticulars adds fee particulars to the admin's institute. Titles are unique per institute.
func (svc *Service) CreateParticulars(ctx context.Context, admin user.User, np NewParticulars) ([]Particular, error) {
	if admin.InstituteID == "" {
		return nil, ErrNoInstitute
	}
	titles := make([]string, 0, len(np.Fees))
	for _, f := range np.Fees {
		titles = append(titles, f.Title)
	}

	now := time.Now().UTC()
	particulars := make([]Particular, 0, len(np.Fees))
	for _, f := range np.Fees {
		particulars = append(particulars, Particular{
			ID:          uuid.NewString(),
			Title:       f.Title,
			Amount:      f.Amount,
			InstituteID: admin.InstituteID,
			CreatedBy:   admin.ID,
			CreatedAt:   now,
		})
	}

	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := svc.repo.ExistingTitles(ctx, admin.InstituteID, titles)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return core.NewConflictError(ErrTitleExists.Error() + ": " + strings.Join(existing, ", "))
		}
		return svc.repo.CreateParticulars(ctx, particulars)
	})
	if err != nil {
		return nil, err
	}
	return particulars, nil
}

func (svc *Service) Particulars(ctx context.Context, instituteID string) ([]Particular, error) {
	if instituteID == "" {
		return []Particular{}, nil
	}
	return svc.repo.Particulars(ctx, instituteID)
}

// AssignToClass sets (replacing any previous list) the fees charged to a class of the admin's institute.
func (svc *Service) AssignToClass(ctx context.Context, admin user.User, cfa ClassFeeAssignment) (ClassFee, error) {
	if admin.InstituteID == "" {
		return ClassFee{}, ErrInstituteMembership
	}
	cls, err := svc.classes.Get(ctx, admin.InstituteID, cfa.ClassID)
	if err != nil {
		return ClassFee{}, err
	}

	ids := make([]string, 0, len(cfa.Fees))
	for _, f := range cfa.Fees {
		ids = append(ids, f.FeeID)
	}
	particulars, err := svc.repo.Particulars(ctx, admin.InstituteID, ids...)
	if err != nil {
		return ClassFee{}, err
	}
	byID := make(map[string]Particular, len(particulars))
	for _, p := range particulars {
		byID[p.ID] = p
	}

	items := make([]ClassFeeItem, 0, len(cfa.Fees))
	for _, f := range cfa.Fees {
		p, ok := byID[f.FeeID]
		if !ok {
			return ClassFee{}, ErrNotFound
		}
		amount := p.Amount
		if f.Amount != nil {
			amount = *f.Amount
		}
		items = append(items, ClassFeeItem{FeeID: p.ID, Title: p.Title, Amount: amount})
	}

	var cf ClassFee
	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		cf, err = svc.repo.GetClassFee(ctx, cls.ID)
		switch {
		case err == nil:
		case core.IsNotFound(err):
			cf = ClassFee{ID: uuid.NewString(), ClassID: cls.ID, InstituteID: cls.InstituteID, CreatedAt: now}
		default:
			return err
		}
		cf.Fees = items
		cf.CreatedBy = admin.ID
		cf.UpdatedAt = now
		cf, err = svc.repo.SaveClassFee(ctx, cf)
		return err
	})
	return cf, err
}

// GenerateStudentFee bills a student the fees of their class.
// Regenerating keeps amounts already paid for fees still charged, up to their new amount.
func (svc *Service) GenerateStudentFee(ctx context.Context, admin user.User, studentID string) (StudentFee, error) {
	student, err := svc.users.GetStudent(ctx, admin.InstituteID, studentID)
	if err != nil {
		return StudentFee{}, err
	}
	if student.ClassID == "" {
		return StudentFee{}, ErrClassFeeNotFound
	}

	var sf StudentFee
	err = svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		cf, err := svc.repo.GetClassFee(ctx, student.ClassID) // ErrClassFeeNotFound
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		paid := make(map[string]StudentFeeItem)
		sf, err = svc.repo.LockStudentFee(ctx, student.ID)
		switch {
		case err == nil:
			for _, it := range sf.Fees {
				paid[it.FeeID] = it
			}
		case core.IsNotFound(err):
			sf = StudentFee{ID: uuid.NewString(), StudentID: student.ID, InstituteID: student.InstituteID, CreatedAt: now}
		default:
			return err
		}

		sf.ClassID = student.ClassID
		sf.Fees = make([]StudentFeeItem, 0, len(cf.Fees))
		for _, it := range cf.Fees {
			item := StudentFeeItem{FeeID: it.FeeID, Title: it.Title, Amount: it.Amount}
			if prev, ok := paid[it.FeeID]; ok {
				item.Paid = decimal.Min(prev.Paid, item.Amount)
			}
			sf.Fees = append(sf.Fees, item)
		}
		sf.Recompute()
		sf.UpdatedAt = now
		sf, err = svc.repo.SaveStudentFee(ctx, sf)
		return err
	})
	return sf, err
}

func (svc *Service) StudentFees(ctx context.Context, instituteID string) ([]StudentFee, error) {
	if instituteID == "" {
		return []StudentFee{}, nil
	}
	return svc.repo.StudentFees(ctx, instituteID)
}

// StudentFee returns the bill of a student of the institute, with its payments.
func (svc *Service) StudentFee(ctx context.Context, instituteID, studentID string) (StudentFee, error) {
	return svc.studentFee(ctx, instituteID, studentID, svc.repo.GetStudentFee)
}

func (svc *Service) studentFee(ctx context.Context, instituteID, studentID string, get func(context.Context, string) (StudentFee, error)) (StudentFee, error) {
	sf, err := get(ctx, studentID)
	if err != nil {
		return StudentFee{}, err
	}
	if instituteID == "" || sf.InstituteID != instituteID {
		return StudentFee{}, ErrStudentFeeNotFound
	}
	if sf.Payments, err = svc.repo.Payments(ctx, sf.ID); err != nil {
		return StudentFee{}, err
	}
	return sf, nil
}

// RecordPayment credits a payment to one fee of a student's bill.
// The bill stays locked from the outstanding check until the payment is stored.
func (svc *Service) RecordPayment(ctx context.Context, admin user.User, studentID string, np NewPayment) (StudentFee, Payment, error) {
	var (
		sf  StudentFee
		pmt Payment
	)
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if sf, err = svc.studentFee(ctx, admin.InstituteID, studentID, svc.repo.LockStudentFee); err != nil {
			return err
		}

		idx := -1
		for i, it := range sf.Fees {
			if it.FeeID == np.FeeID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNotFound
		}
		if np.Amount.GreaterThan(sf.Fees[idx].Outstanding()) {
			return ErrPaymentTooLarge
		}

		now := time.Now().UTC()
		sf.Fees[idx].Paid = sf.Fees[idx].Paid.Add(np.Amount)
		sf.Recompute()
		sf.UpdatedAt = now
		payments := sf.Payments
		if sf, err = svc.repo.SaveStudentFee(ctx, sf); err != nil {
			return err
		}

		pmt, err = svc.repo.CreatePayment(ctx, Payment{
			ID:           uuid.NewString(),
			StudentFeeID: sf.ID,
			FeeID:        np.FeeID,
			Amount:       np.Amount,
			Reference:    np.Reference,
			RecordedBy:   admin.ID,
			PaidAt:       now,
		})
		sf.Payments = append(payments, pmt)
		return err
	})
	return sf, pmt, err
}

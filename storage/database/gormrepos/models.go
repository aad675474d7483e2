package gormrepos

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studman/core/feestructure"
	"github.com/trezcool/studman/core/theme"
	"github.com/trezcool/studman/core/user"
)

// Storage models. Column names follow the gorm naming strategy (snake_case),
// which matches the goose migrations.

type userModel struct {
	ID              string                `gorm:"primaryKey;size:36"`
	FullName        string                `gorm:"size:150;not null"`
	Email           string                `gorm:"size:254;not null;uniqueIndex"`
	Role            string                `gorm:"size:20;not null;index"`
	Approved        bool                  `gorm:"not null"`
	IsActive        bool                  `gorm:"not null"`
	InstituteID     null.String           `gorm:"size:36;index"`
	ClassID         null.String           `gorm:"size:36;index"`
	ProfilePhoto    string                `gorm:"not null"`
	StudentProfile  *user.StudentProfile  `gorm:"serializer:json"`
	LecturerProfile *user.LecturerProfile `gorm:"serializer:json"`
	PasswordHash    []byte                `gorm:"not null"`
	CreatedAt       time.Time             `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       time.Time             `gorm:"not null;autoUpdateTime:false"`
	LastLogin       null.Time
}

func (userModel) TableName() string { return "users" }

type instituteModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:200;not null;uniqueIndex"`
	Address     string    `gorm:"not null"`
	Website     string    `gorm:"not null"`
	Country     string    `gorm:"not null"`
	Email       string    `gorm:"not null"`
	PhoneNumber string    `gorm:"not null"`
	TargetLine  string    `gorm:"not null"`
	Logo        string    `gorm:"not null"`
	AdminID     string    `gorm:"size:36;not null;uniqueIndex"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (instituteModel) TableName() string { return "institutes" }

type classModel struct {
	ID          string      `gorm:"primaryKey;size:36"`
	Name        string      `gorm:"size:100;not null;uniqueIndex:classes_institute_name_key"`
	InstituteID string      `gorm:"size:36;not null;uniqueIndex:classes_institute_name_key"`
	LecturerID  null.String `gorm:"size:36;index"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time   `gorm:"not null;autoUpdateTime:false"`
}

func (classModel) TableName() string { return "classes" }

type subjectModel struct {
	ID          string      `gorm:"primaryKey;size:36"`
	Name        string      `gorm:"size:100;not null"`
	Code        null.String `gorm:"size:20;uniqueIndex:subjects_class_code_key"`
	ClassID     string      `gorm:"size:36;not null;uniqueIndex:subjects_class_code_key"`
	LecturerID  null.String `gorm:"size:36;index"`
	InstituteID string      `gorm:"size:36;not null;index"`
	TotalMarks  int         `gorm:"not null"`
	CreatedAt   time.Time   `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time   `gorm:"not null;autoUpdateTime:false"`
}

func (subjectModel) TableName() string { return "subjects" }

type assignmentModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"not null"`
	SubjectID   string    `gorm:"size:36;not null;index"`
	LecturerID  string    `gorm:"size:36;not null"`
	InstituteID string    `gorm:"size:36;not null;index"`
	DueDate     time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (assignmentModel) TableName() string { return "assignments" }

type submissionModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	AssignmentID string `gorm:"size:36;not null;uniqueIndex:submissions_assignment_student_key"`
	StudentID    string `gorm:"size:36;not null;uniqueIndex:submissions_assignment_student_key"`
	FileURL      string `gorm:"not null"`
	Score        null.Float64
	Feedback     string    `gorm:"not null"`
	SubmittedAt  time.Time `gorm:"not null"`
	GradedAt     null.Time
}

func (submissionModel) TableName() string { return "submissions" }

type attendanceModel struct {
	ID          string                  `gorm:"primaryKey;size:36"`
	InstituteID string                  `gorm:"size:36;not null;index"`
	ClassID     string                  `gorm:"size:36;not null;index"`
	SubjectID   null.String             `gorm:"size:36;index"`
	Date        string                  `gorm:"size:10;not null"`
	MarkedBy    string                  `gorm:"size:36;not null"`
	CreatedAt   time.Time               `gorm:"not null;autoCreateTime:false"`
	Records     []attendanceRecordModel `gorm:"foreignKey:AttendanceID"`
}

func (attendanceModel) TableName() string { return "attendances" }

type attendanceRecordModel struct {
	AttendanceID string `gorm:"primaryKey;size:36"`
	StudentID    string `gorm:"primaryKey;size:36;index"`
	Status       string `gorm:"size:10;not null"`
}

func (attendanceRecordModel) TableName() string { return "attendance_records" }

type resultModel struct {
	ID            string    `gorm:"primaryKey;size:36"`
	StudentID     string    `gorm:"size:36;not null;uniqueIndex:results_student_subject_class_key"`
	SubjectID     string    `gorm:"size:36;not null;uniqueIndex:results_student_subject_class_key"`
	ClassID       string    `gorm:"size:36;not null;uniqueIndex:results_student_subject_class_key"`
	InstituteID   string    `gorm:"size:36;not null;index"`
	MarksObtained float64   `gorm:"not null"`
	TotalMarks    int       `gorm:"not null"`
	Grade         string    `gorm:"size:2;not null"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (resultModel) TableName() string { return "results" }

type feeModel struct {
	ID          string          `gorm:"primaryKey;size:36"`
	Title       string          `gorm:"size:100;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	InstituteID string          `gorm:"size:36;not null;index"`
	CreatedBy   string          `gorm:"size:36;not null"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime:false"`
}

func (feeModel) TableName() string { return "fees" }

type classFeeModel struct {
	ID          string              `gorm:"primaryKey;size:36"`
	ClassID     string              `gorm:"size:36;not null;uniqueIndex"`
	InstituteID string              `gorm:"size:36;not null;index"`
	CreatedBy   string              `gorm:"size:36;not null"`
	CreatedAt   time.Time           `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time           `gorm:"not null;autoUpdateTime:false"`
	Items       []classFeeItemModel `gorm:"foreignKey:ClassFeeID"`
}

func (classFeeModel) TableName() string { return "class_fees" }

type classFeeItemModel struct {
	ClassFeeID string          `gorm:"primaryKey;size:36"`
	FeeID      string          `gorm:"primaryKey;size:36"`
	Position   int             `gorm:"not null"`
	Title      string          `gorm:"size:100;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (classFeeItemModel) TableName() string { return "class_fee_items" }

type studentFeeModel struct {
	ID          string                `gorm:"primaryKey;size:36"`
	StudentID   string                `gorm:"size:36;not null;uniqueIndex"`
	ClassID     string                `gorm:"size:36;not null"`
	InstituteID string                `gorm:"size:36;not null;index"`
	TotalAmount decimal.Decimal       `gorm:"type:numeric(12,2);not null"`
	Balance     decimal.Decimal       `gorm:"type:numeric(12,2);not null"`
	Status      string                `gorm:"size:10;not null"`
	CreatedAt   time.Time             `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time             `gorm:"not null;autoUpdateTime:false"`
	Items       []studentFeeItemModel `gorm:"foreignKey:StudentFeeID"`
}

func (studentFeeModel) TableName() string { return "student_fees" }

type studentFeeItemModel struct {
	StudentFeeID string          `gorm:"primaryKey;size:36"`
	FeeID        string          `gorm:"primaryKey;size:36"`
	Position     int             `gorm:"not null"`
	Title        string          `gorm:"size:100;not null"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Paid         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (studentFeeItemModel) TableName() string { return "student_fee_items" }

type feePaymentModel struct {
	ID           string          `gorm:"primaryKey;size:36"`
	StudentFeeID string          `gorm:"size:36;not null;index"`
	FeeID        string          `gorm:"size:36;not null"`
	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Reference    string          `gorm:"size:100;not null"`
	RecordedBy   string          `gorm:"size:36;not null"`
	PaidAt       time.Time       `gorm:"not null"`
}

func (feePaymentModel) TableName() string { return "fee_payments" }

type feeStructureModel struct {
	ID          string                    `gorm:"primaryKey;size:36"`
	Category    string                    `gorm:"size:10;not null"`
	ClassID     null.String               `gorm:"size:36;index"`
	StudentID   null.String               `gorm:"size:36;index"`
	Particulars []feestructure.Particular `gorm:"serializer:json;not null"`
	TotalAmount decimal.Decimal           `gorm:"type:numeric(12,2);not null"`
	InstituteID string                    `gorm:"size:36;not null;index"`
	CreatedBy   string                    `gorm:"size:36;not null"`
	CreatedAt   time.Time                 `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time                 `gorm:"not null;autoUpdateTime:false"`
}

func (feeStructureModel) TableName() string { return "fee_structures" }

type themeModel struct {
	ID              string       `gorm:"primaryKey;size:36"`
	Name            string       `gorm:"size:100;not null"`
	Description     string       `gorm:"not null"`
	InstituteID     string       `gorm:"size:36;not null;index"`
	Colors          theme.Colors `gorm:"embedded"`
	FontFamily      string       `gorm:"size:200;not null"`
	FontSize        int          `gorm:"not null"`
	Logo            string       `gorm:"not null"`
	Favicon         string       `gorm:"not null"`
	BackgroundImage string       `gorm:"not null"`
	IsActive        bool         `gorm:"not null;index"`
	CreatedBy       string       `gorm:"size:36;not null"`
	CreatedAt       time.Time    `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       time.Time    `gorm:"not null;autoUpdateTime:false"`
}

func (themeModel) TableName() string { return "themes" }

var allModels = []interface{}{
	&userModel{},
	&instituteModel{},
	&classModel{},
	&subjectModel{},
	&assignmentModel{},
	&submissionModel{},
	&attendanceModel{},
	&attendanceRecordModel{},
	&resultModel{},
	&feeModel{},
	&classFeeModel{},
	&classFeeItemModel{},
	&studentFeeModel{},
	&studentFeeItemModel{},
	&feePaymentModel{},
	&feeStructureModel{},
	&themeModel{},
}

func nullString(s string) null.String { return null.NewString(s, s != "") }

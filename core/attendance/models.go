package attendance

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studman/core"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"

	// EligibilityThreshold is the minimum attendance percentage to sit an exam.
	EligibilityThreshold = 75.0
)

type Record struct {
	StudentID string `json:"studentId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent"`
}

// Attendance is one roll call of a class, optionally for a specific subject, on a given day.
type Attendance struct {
	ID          string    `json:"id"`
	InstituteID string    `json:"instituteId"`
	ClassID     string    `json:"classId"`
	SubjectID   string    `json:"subjectId,omitempty"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Records     []Record  `json:"records"`
	MarkedBy    string    `json:"markedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAttendance contains information needed to mark attendance.
type NewAttendance struct {
	ClassID   string   `json:"classId"`
	SubjectID string   `json:"subjectId"`
	Date      string   `json:"date"`
	Records   []Record `json:"records" validate:"dive"`

	day string
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.ClassID = core.CleanString(na.ClassID)
	na.SubjectID = core.CleanString(na.SubjectID)
	if core.CleanString(na.Date) == "" || len(na.Records) == 0 || (na.ClassID == "" && na.SubjectID == "") {
		return ErrInvalidPayload
	}
	t, err := core.ParseDateTime(na.Date)
	if err != nil {
		return ErrInvalidPayload
	}
	na.day = core.Day(t)

	seen := make(map[string]bool, len(na.Records))
	for i := range na.Records {
		na.Records[i].StudentID = core.CleanString(na.Records[i].StudentID)
		na.Records[i].Status = core.CleanString(na.Records[i].Status, true /* lower */)
		if seen[na.Records[i].StudentID] {
			return ErrInvalidPayload
		}
		seen[na.Records[i].StudentID] = true
	}
	return validate.Struct(na)
}

// QueryFilter applies AND operation on the set fields.
type QueryFilter struct {
	InstituteID string
	ClassID     string
	SubjectID   string
	Date        string
}

type ClassRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentRecord is a student's own status in one session.
type StudentRecord struct {
	ID     string   `json:"id"`
	Class  ClassRef `json:"class"`
	Date   string   `json:"date"`
	Status string   `json:"status"`
}

// Totals counts the sessions a student appears in and how many of them were attended.
type Totals struct {
	ClassID string `db:"class_id"`
	Total   int    `db:"total"`
	Present int    `db:"present"`
}

type ClassSummary struct {
	ClassID      string  `json:"classId"`
	ClassName    string  `json:"className"`
	TotalClasses int     `json:"totalClasses"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Percentage   float64 `json:"percentage"`
}

type DailyCount struct {
	Date    string `json:"date" db:"date"`
	Present int    `json:"present" db:"present"`
	Absent  int    `json:"absent" db:"absent"`
}

type Eligibility struct {
	Eligible   bool    `json:"eligible"`
	Percentage float64 `json:"percentage"`
}

type StudentSummary struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Percentage float64 `json:"percentage"`
}

// percentage returns present/total as a percentage rounded to 2 decimals.
func percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*100*100) / 100
}

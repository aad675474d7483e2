package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrInvalidPayload  = core.BadRequest("Invalid payload")
	ErrTargetRequired  = core.BadRequest("classId or subjectId required")
	ErrAlreadyMarked   = core.NewConflictError("Attendance already marked for this date")
	ErrCannotMark      = core.NewPermissionError("Only admins and lecturers can mark attendance")
	ErrStudentNotFound = core.NewNotFoundError("Student not found in class")
)

type (
	Repository interface {
		// Create persists the session along with its records.
		Create(ctx context.Context, att Attendance) (Attendance, error)
		Exists(ctx context.Context, classID, subjectID, date string) (bool, error)
		// Filter returns matching sessions, by ascending date.
		Filter(ctx context.Context, filter QueryFilter) ([]Attendance, error)
	}

	// ReportRepository computes per-student and per-subject aggregates.
	ReportRepository interface {
		// StudentRecords lists the student's own records, latest first.
		StudentRecords(ctx context.Context, studentID string) ([]StudentRecordRow, error)
		// StudentClassTotals groups the student's sessions by class.
		StudentClassTotals(ctx context.Context, studentID string) ([]Totals, error)
		// StudentTotals counts the student's sessions, optionally restricted to a class.
		StudentTotals(ctx context.Context, studentID, classID string) (Totals, error)
		// ClassDailyCounts counts presences and absences of a class's sessions per day.
		ClassDailyCounts(ctx context.Context, instituteID, classID string) ([]DailyCount, error)
	}

	StudentRecordRow struct {
		AttendanceID string `db:"attendance_id"`
		ClassID      string `db:"class_id"`
		Date         string `db:"date"`
		Status       string `db:"status"`
	}

	Service struct {
		repo     Repository
		reports  ReportRepository
		classes  *classroom.Service
		subjects *subject.Service
		users    *user.Service
	}
)

func NewService(repo Repository, reports ReportRepository, classes *classroom.Service, subjects *subject.Service, users *user.Service) *Service {
	return &Service{repo: repo, reports: reports, classes: classes, subjects: subjects, users: users}
}

// Mark records a roll call. Lecturers may only mark subjects they teach;
// every listed student must belong to the class.
func (svc *Service) Mark(ctx context.Context, usr user.User, na NewAttendance) (Attendance, error) {
	if !usr.HasAnyRole(user.RoleAdmin, user.RoleLecturer) {
		return Attendance{}, ErrCannotMark
	}

	classID := na.ClassID
	if na.SubjectID != "" {
		sub, err := svc.subjects.Owned(ctx, usr, na.SubjectID)
		if err != nil {
			return Attendance{}, err
		}
		classID = sub.ClassID
	}
	cls, err := svc.classes.Get(ctx, usr.InstituteID, classID)
	if err != nil {
		return Attendance{}, err
	}

	students, err := svc.users.Students(ctx, cls.InstituteID, cls.ID)
	if err != nil {
		return Attendance{}, err
	}
	inClass := make(map[string]bool, len(students))
	for _, st := range students {
		inClass[st.ID] = true
	}
	for _, rec := range na.Records {
		if !inClass[rec.StudentID] {
			return Attendance{}, ErrStudentNotFound
		}
	}

	exists, err := svc.repo.Exists(ctx, cls.ID, na.SubjectID, na.day)
	if err != nil {
		return Attendance{}, err
	}
	if exists {
		return Attendance{}, ErrAlreadyMarked
	}

	return svc.repo.Create(ctx, Attendance{
		ID:          uuid.NewString(),
		InstituteID: cls.InstituteID,
		ClassID:     cls.ID,
		SubjectID:   na.SubjectID,
		Date:        na.day,
		Records:     na.Records,
		MarkedBy:    usr.ID,
		CreatedAt:   time.Now().UTC(),
	})
}

// Sessions lists the roll calls of a subject or class of the caller's institute, optionally on one day.
func (svc *Service) Sessions(ctx context.Context, usr user.User, subjectID, classID, date string) ([]Attendance, error) {
	subjectID, classID = core.CleanString(subjectID), core.CleanString(classID)
	if subjectID == "" && classID == "" {
		return nil, ErrTargetRequired
	}
	filter := QueryFilter{InstituteID: usr.InstituteID, ClassID: classID, SubjectID: subjectID}
	if date = core.CleanString(date); date != "" {
		t, err := core.ParseDateTime(date)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "date", Error: "must be a valid date"})
		}
		filter.Date = core.Day(t)
	}
	if usr.InstituteID == "" {
		return []Attendance{}, nil
	}
	return svc.repo.Filter(ctx, filter)
}

// StudentRecords lists the student's own status per session, latest first.
func (svc *Service) StudentRecords(ctx context.Context, student user.User) ([]StudentRecord, error) {
	rows, err := svc.reports.StudentRecords(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ClassID)
	}
	names, err := svc.classes.Names(ctx, ids...)
	if err != nil {
		return nil, err
	}

	records := make([]StudentRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, StudentRecord{
			ID:     row.AttendanceID,
			Class:  ClassRef{ID: row.ClassID, Name: names[row.ClassID]},
			Date:   row.Date,
			Status: row.Status,
		})
	}
	return records, nil
}

// Summary aggregates the student's attendance per class.
func (svc *Service) Summary(ctx context.Context, student user.User) ([]ClassSummary, error) {
	totals, err := svc.reports.StudentClassTotals(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.ClassID)
	}
	names, err := svc.classes.Names(ctx, ids...)
	if err != nil {
		return nil, err
	}

	summaries := make([]ClassSummary, 0, len(totals))
	for _, t := range totals {
		summaries = append(summaries, ClassSummary{
			ClassID:      t.ClassID,
			ClassName:    names[t.ClassID],
			TotalClasses: t.Total,
			Present:      t.Present,
			Absent:       t.Total - t.Present,
			Percentage:   percentage(t.Present, t.Total),
		})
	}
	return summaries, nil
}

// Eligibility tells whether the student attended enough sessions of a subject's class,
// whether or not a session was marked for the subject itself.
func (svc *Service) Eligibility(ctx context.Context, student user.User, subjectID string) (Eligibility, error) {
	sub, err := svc.subjects.Get(ctx, student.InstituteID, subjectID)
	if err != nil {
		if core.IsNotFound(err) {
			return Eligibility{}, nil
		}
		return Eligibility{}, err
	}
	t, err := svc.reports.StudentTotals(ctx, student.ID, sub.ClassID)
	if err != nil {
		return Eligibility{}, err
	}
	if t.Total == 0 {
		return Eligibility{}, nil
	}
	pct := percentage(t.Present, t.Total)
	return Eligibility{Eligible: pct >= EligibilityThreshold, Percentage: pct}, nil
}

// SubjectAnalytics counts presences and absences per day over every session of the subject's class.
func (svc *Service) SubjectAnalytics(ctx context.Context, usr user.User, subjectID string) ([]DailyCount, error) {
	sub, err := svc.subjects.Get(ctx, usr.InstituteID, subjectID)
	if err != nil {
		return nil, err
	}
	return svc.reports.ClassDailyCounts(ctx, usr.InstituteID, sub.ClassID)
}

// StudentSummary returns the overall attendance of a student of the caller's institute.
func (svc *Service) StudentSummary(ctx context.Context, usr user.User, studentID string) (StudentSummary, error) {
	student, err := svc.users.GetStudent(ctx, usr.InstituteID, studentID)
	if err != nil {
		return StudentSummary{}, err
	}
	t, err := svc.reports.StudentTotals(ctx, student.ID, "")
	if err != nil {
		return StudentSummary{}, err
	}
	return StudentSummary{Total: t.Total, Present: t.Present, Percentage: percentage(t.Present, t.Total)}, nil
}

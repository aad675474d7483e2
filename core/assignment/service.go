package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/user"
)

var (
	// errors
	ErrNotFound                 = core.NewNotFoundError("Assignment not found")
	ErrSubmissionNotFound       = core.NewNotFoundError("Submission not found")
	ErrAlreadySubmitted         = core.NewConflictError("Already submitted")
	ErrMissingFields            = core.BadRequest("Missing required fields")
	ErrSubmissionFieldsRequired = core.BadRequest("Assignment and file required")
	ErrOnlyLecturersCreate      = core.NewPermissionError("Only lecturers can create assignments")
	ErrOnlyStudentsSubmit       = core.NewPermissionError("Only students can submit assignments")
	ErrOnlyLecturersGrade       = core.NewPermissionError("Only lecturers can grade")
	ErrNotOwner                 = core.NewPermissionError("Unauthorized")
)

type (
	// QueryFilter applies AND operation on the set fields.
	QueryFilter struct {
		IDs         []string
		InstituteID string
		SubjectID   string
	}

	SubmissionFilter struct {
		AssignmentID string
		StudentID    string
	}

	Repository interface {
		Create(ctx context.Context, asg Assignment) (Assignment, error)
		GetByID(ctx context.Context, id string) (Assignment, error)
		// Filter returns matching assignments by ascending due date.
		Filter(ctx context.Context, filter QueryFilter) ([]Assignment, error)

		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmission(ctx context.Context, id string) (Submission, error)
		SubmissionExists(ctx context.Context, assignmentID, studentID string) (bool, error)
		// FilterSubmissions returns matching submissions, latest first.
		FilterSubmissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
	}

	Service struct {
		repo     Repository
		subjects *subject.Service
		users    *user.Service
	}
)

func NewService(repo Repository, subjects *subject.Service, users *user.Service) *Service {
	return &Service{repo: repo, subjects: subjects, users: users}
}

// Create posts an assignment for a subject the lecturer teaches.
func (svc *Service) Create(ctx context.Context, lecturer user.User, na NewAssignment) (Assignment, error) {
	if !lecturer.IsLecturer() {
		return Assignment{}, ErrOnlyLecturersCreate
	}
	sub, err := svc.subjects.Owned(ctx, lecturer, na.SubjectID)
	if err != nil {
		return Assignment{}, err
	}

	now := time.Now().UTC()
	return svc.repo.Create(ctx, Assignment{
		ID:          uuid.NewString(),
		Title:       na.Title,
		Description: na.Description,
		SubjectID:   sub.ID,
		LecturerID:  lecturer.ID,
		InstituteID: sub.InstituteID,
		DueDate:     na.due,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Get returns an assignment of the institute.
func (svc *Service) Get(ctx context.Context, instituteID, id string) (Assignment, error) {
	asg, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if instituteID == "" || asg.InstituteID != instituteID {
		return Assignment{}, ErrNotFound
	}
	return asg, nil
}

// ForSubject lists the institute's assignments of a subject, earliest due first.
func (svc *Service) ForSubject(ctx context.Context, instituteID, subjectID string) ([]Assignment, error) {
	if instituteID == "" {
		return []Assignment{}, nil
	}
	return svc.repo.Filter(ctx, QueryFilter{InstituteID: instituteID, SubjectID: subjectID})
}

func (svc *Service) List(ctx context.Context, instituteID string) ([]Assignment, error) {
	if instituteID == "" {
		return []Assignment{}, nil
	}
	return svc.repo.Filter(ctx, QueryFilter{InstituteID: instituteID})
}

// Submit hands in the student's work; each student submits an assignment once.
func (svc *Service) Submit(ctx context.Context, student user.User, ns NewSubmission) (Submission, error) {
	if !student.IsStudent() {
		return Submission{}, ErrOnlyStudentsSubmit
	}
	asg, err := svc.Get(ctx, student.InstituteID, ns.AssignmentID)
	if err != nil {
		return Submission{}, err
	}
	exists, err := svc.repo.SubmissionExists(ctx, asg.ID, student.ID)
	if err != nil {
		return Submission{}, err
	}
	if exists {
		return Submission{}, ErrAlreadySubmitted
	}

	return svc.repo.CreateSubmission(ctx, Submission{
		ID:           uuid.NewString(),
		AssignmentID: asg.ID,
		StudentID:    student.ID,
		FileURL:      ns.FileURL,
		SubmittedAt:  time.Now().UTC(),
	})
}

// Grade scores a submission of an assignment the lecturer posted.
func (svc *Service) Grade(ctx context.Context, lecturer user.User, submissionID string, g Grade) (Submission, error) {
	if !lecturer.IsLecturer() {
		return Submission{}, ErrOnlyLecturersGrade
	}
	sub, err := svc.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return Submission{}, err
	}
	asg, err := svc.repo.GetByID(ctx, sub.AssignmentID)
	if err != nil {
		if core.IsNotFound(err) {
			return Submission{}, ErrSubmissionNotFound
		}
		return Submission{}, err
	}
	if asg.LecturerID != lecturer.ID {
		return Submission{}, ErrNotOwner
	}

	gradedAt := time.Now().UTC()
	sub.Score = g.Score
	sub.Feedback = g.Feedback
	sub.GradedAt = &gradedAt
	return svc.repo.UpdateSubmission(ctx, sub)
}

// Submissions lists the submissions of an assignment of the institute with their students.
func (svc *Service) Submissions(ctx context.Context, instituteID, assignmentID string) ([]StudentSubmission, error) {
	asg, err := svc.Get(ctx, instituteID, assignmentID)
	if err != nil {
		return nil, err
	}
	subs, err := svc.repo.FilterSubmissions(ctx, SubmissionFilter{AssignmentID: asg.ID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.StudentID)
	}
	students := make(map[string]user.Summary)
	if len(ids) > 0 {
		users, err := svc.users.Filter(ctx, user.QueryFilter{IDs: ids})
		if err != nil {
			return nil, err
		}
		for _, usr := range users {
			students[usr.ID] = usr.Summary()
		}
	}

	res := make([]StudentSubmission, 0, len(subs))
	for _, sub := range subs {
		ss := StudentSubmission{Submission: sub}
		if st, ok := students[sub.StudentID]; ok {
			ss.Student = &st
		}
		res = append(res, ss)
	}
	return res, nil
}

// MySubmissions lists the student's submissions with their assignments.
func (svc *Service) MySubmissions(ctx context.Context, student user.User) ([]OwnSubmission, error) {
	subs, err := svc.repo.FilterSubmissions(ctx, SubmissionFilter{StudentID: student.ID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.AssignmentID)
	}
	refs := make(map[string]AssignmentRef)
	if len(ids) > 0 {
		asgs, err := svc.repo.Filter(ctx, QueryFilter{IDs: ids})
		if err != nil {
			return nil, err
		}
		for _, asg := range asgs {
			refs[asg.ID] = AssignmentRef{ID: asg.ID, Title: asg.Title, DueDate: asg.DueDate}
		}
	}

	res := make([]OwnSubmission, 0, len(subs))
	for _, sub := range subs {
		os := OwnSubmission{Submission: sub}
		if ref, ok := refs[sub.AssignmentID]; ok {
			os.Assignment = &ref
		}
		res = append(res, os)
	}
	return res, nil
}

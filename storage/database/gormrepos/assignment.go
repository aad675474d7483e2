package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core/assignment"
)

type assignmentRepository struct {
	db *gorm.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *gorm.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) toModel(asg assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:          asg.ID,
		Title:       asg.Title,
		Description: asg.Description,
		SubjectID:   asg.SubjectID,
		LecturerID:  asg.LecturerID,
		InstituteID: asg.InstituteID,
		DueDate:     asg.DueDate.UTC(),
		CreatedAt:   asg.CreatedAt.UTC(),
		UpdatedAt:   asg.UpdatedAt.UTC(),
	}
}

func (repo assignmentRepository) fromModel(m *assignmentModel) assignment.Assignment {
	return assignment.Assignment{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		SubjectID:   m.SubjectID,
		LecturerID:  m.LecturerID,
		InstituteID: m.InstituteID,
		DueDate:     m.DueDate.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo assignmentRepository) toSubmissionModel(sub assignment.Submission) *submissionModel {
	return &submissionModel{
		ID:           sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		FileURL:      sub.FileURL,
		Score:        null.Float64FromPtr(sub.Score),
		Feedback:     sub.Feedback,
		SubmittedAt:  sub.SubmittedAt.UTC(),
		GradedAt:     null.TimeFromPtr(sub.GradedAt),
	}
}

func (repo assignmentRepository) fromSubmissionModel(m *submissionModel) assignment.Submission {
	sub := assignment.Submission{
		ID:           m.ID,
		AssignmentID: m.AssignmentID,
		StudentID:    m.StudentID,
		FileURL:      m.FileURL,
		Score:        m.Score.Ptr(),
		Feedback:     m.Feedback,
		SubmittedAt:  m.SubmittedAt.UTC(),
	}
	if m.GradedAt.Valid {
		t := m.GradedAt.Time.UTC()
		sub.GradedAt = &t
	}
	return sub
}

func (repo assignmentRepository) Create(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	m := repo.toModel(asg)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return repo.fromModel(m), nil
}

func (repo assignmentRepository) GetByID(ctx context.Context, id string) (assignment.Assignment, error) {
	var m assignmentModel
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&m).Error; err != nil {
		return assignment.Assignment{}, trapNotFound(err, assignment.ErrNotFound, "getting assignment")
	}
	return repo.fromModel(&m), nil
}

func (repo assignmentRepository) Filter(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	q := conn(ctx, repo.db).Model(&assignmentModel{})
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if filter.InstituteID != "" {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}

	var models []assignmentModel
	if err := q.Order("due_date ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(models))
	for i := range models {
		asgs = append(asgs, repo.fromModel(&models[i]))
	}
	return asgs, nil
}

func (repo assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	m := repo.toSubmissionModel(sub)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return assignment.Submission{}, trapDuplicate(err, assignment.ErrAlreadySubmitted, "inserting submission")
	}
	return repo.fromSubmissionModel(m), nil
}

func (repo assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	m := repo.toSubmissionModel(sub)
	if err := conn(ctx, repo.db).Save(m).Error; err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	return repo.fromSubmissionModel(m), nil
}

func (repo assignmentRepository) GetSubmission(ctx context.Context, id string) (assignment.Submission, error) {
	var m submissionModel
	if err := conn(ctx, repo.db).Where("id = ?", id).Take(&m).Error; err != nil {
		return assignment.Submission{}, trapNotFound(err, assignment.ErrSubmissionNotFound, "getting submission")
	}
	return repo.fromSubmissionModel(&m), nil
}

func (repo assignmentRepository) SubmissionExists(ctx context.Context, assignmentID, studentID string) (bool, error) {
	q := conn(ctx, repo.db).Model(&submissionModel{}).Where("assignment_id = ? AND student_id = ?", assignmentID, studentID)
	ok, err := exists(q)
	return ok, errors.Wrap(err, "checking submission")
}

func (repo assignmentRepository) FilterSubmissions(ctx context.Context, filter assignment.SubmissionFilter) ([]assignment.Submission, error) {
	q := conn(ctx, repo.db).Model(&submissionModel{})
	if filter.AssignmentID != "" {
		q = q.Where("assignment_id = ?", filter.AssignmentID)
	}
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}

	var models []submissionModel
	if err := q.Order("submitted_at DESC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering submissions")
	}
	subs := make([]assignment.Submission, 0, len(models))
	for i := range models {
		subs = append(subs, repo.fromSubmissionModel(&models[i]))
	}
	return subs, nil
}

package gormrepos

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core/attendance"
)

type attendanceRepository struct {
	db *gorm.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *gorm.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) toModel(att attendance.Attendance) *attendanceModel {
	records := make([]attendanceRecordModel, 0, len(att.Records))
	for _, rec := range att.Records {
		records = append(records, attendanceRecordModel{AttendanceID: att.ID, StudentID: rec.StudentID, Status: rec.Status})
	}
	return &attendanceModel{
		ID:          att.ID,
		InstituteID: att.InstituteID,
		ClassID:     att.ClassID,
		SubjectID:   nullString(att.SubjectID),
		Date:        att.Date,
		MarkedBy:    att.MarkedBy,
		CreatedAt:   att.CreatedAt.UTC(),
		Records:     records,
	}
}

func (repo attendanceRepository) fromModel(m *attendanceModel) attendance.Attendance {
	records := make([]attendance.Record, 0, len(m.Records))
	for _, rec := range m.Records {
		records = append(records, attendance.Record{StudentID: rec.StudentID, Status: rec.Status})
	}
	return attendance.Attendance{
		ID:          m.ID,
		InstituteID: m.InstituteID,
		ClassID:     m.ClassID,
		SubjectID:   m.SubjectID.String,
		Date:        m.Date,
		Records:     records,
		MarkedBy:    m.MarkedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (repo attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	m := repo.toModel(att)
	if err := conn(ctx, repo.db).Create(m).Error; err != nil {
		return attendance.Attendance{}, trapDuplicate(err, attendance.ErrAlreadyMarked, "inserting attendance")
	}
	return repo.fromModel(m), nil
}

func (repo attendanceRepository) Exists(ctx context.Context, classID, subjectID, date string) (bool, error) {
	q := conn(ctx, repo.db).Model(&attendanceModel{}).Where("class_id = ? AND date = ?", classID, date)
	if subjectID == "" {
		q = q.Where("subject_id IS NULL")
	} else {
		q = q.Where("subject_id = ?", subjectID)
	}
	ok, err := exists(q)
	return ok, errors.Wrap(err, "checking attendance")
}

func (repo attendanceRepository) Filter(ctx context.Context, filter attendance.QueryFilter) ([]attendance.Attendance, error) {
	q := conn(ctx, repo.db).Model(&attendanceModel{}).Preload("Records", func(db *gorm.DB) *gorm.DB {
		return db.Order("student_id ASC")
	})
	if filter.InstituteID != "" {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.ClassID != "" {
		q = q.Where("class_id = ?", filter.ClassID)
	}
	if filter.SubjectID != "" {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Date != "" {
		q = q.Where("date = ?", filter.Date)
	}

	var models []attendanceModel
	if err := q.Order("date ASC").Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "filtering attendance")
	}
	atts := make([]attendance.Attendance, 0, len(models))
	for i := range models {
		atts = append(atts, repo.fromModel(&models[i]))
	}
	return atts, nil
}

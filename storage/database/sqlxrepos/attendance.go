// Package sqlxrepos holds the reporting queries, written in SQL portable across PostgreSQL and SQLite.
package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/studman/core/attendance"
)

const presentSum = "COALESCE(SUM(CASE WHEN r.status = 'present' THEN 1 ELSE 0 END), 0)"

type attendanceReports struct {
	db *sqlx.DB
}

var _ attendance.ReportRepository = (*attendanceReports)(nil) // interface compliance check

func NewAttendanceReports(db *sqlx.DB) *attendanceReports {
	return &attendanceReports{db: db}
}

func (repo attendanceReports) StudentRecords(ctx context.Context, studentID string) ([]attendance.StudentRecordRow, error) {
	q := repo.db.Rebind(`
		SELECT a.id AS attendance_id, a.class_id, a.date, r.status
		FROM attendance_records r
		JOIN attendances a ON a.id = r.attendance_id
		WHERE r.student_id = ?
		ORDER BY a.date DESC, a.created_at DESC`)

	rows := []attendance.StudentRecordRow{}
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting student attendance")
	}
	return rows, nil
}

func (repo attendanceReports) StudentClassTotals(ctx context.Context, studentID string) ([]attendance.Totals, error) {
	q := repo.db.Rebind(`
		SELECT a.class_id, COUNT(*) AS total, ` + presentSum + ` AS present
		FROM attendance_records r
		JOIN attendances a ON a.id = r.attendance_id
		WHERE r.student_id = ?
		GROUP BY a.class_id
		ORDER BY a.class_id`)

	totals := []attendance.Totals{}
	if err := repo.db.SelectContext(ctx, &totals, q, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting attendance totals")
	}
	return totals, nil
}

func (repo attendanceReports) StudentTotals(ctx context.Context, studentID, classID string) (attendance.Totals, error) {
	q := `
		SELECT COUNT(*) AS total, ` + presentSum + ` AS present
		FROM attendance_records r
		JOIN attendances a ON a.id = r.attendance_id
		WHERE r.student_id = ?`
	args := []interface{}{studentID}
	if classID != "" {
		q += " AND a.class_id = ?"
		args = append(args, classID)
	}

	var t attendance.Totals
	if err := repo.db.GetContext(ctx, &t, repo.db.Rebind(q), args...); err != nil {
		return attendance.Totals{}, errors.Wrap(err, "selecting attendance totals")
	}
	return t, nil
}

func (repo attendanceReports) ClassDailyCounts(ctx context.Context, instituteID, classID string) ([]attendance.DailyCount, error) {
	q := repo.db.Rebind(`
		SELECT a.date,
			` + presentSum + ` AS present,
			COALESCE(SUM(CASE WHEN r.status = 'absent' THEN 1 ELSE 0 END), 0) AS absent
		FROM attendance_records r
		JOIN attendances a ON a.id = r.attendance_id
		WHERE a.class_id = ? AND a.institute_id = ?
		GROUP BY a.date
		ORDER BY a.date`)

	counts := []attendance.DailyCount{}
	if err := repo.db.SelectContext(ctx, &counts, q, classID, instituteID); err != nil {
		return nil, errors.Wrap(err, "selecting daily attendance")
	}
	return counts, nil
}

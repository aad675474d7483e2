package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/attendance"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/testutil"
)

func Test_attendanceApi_attendanceMark(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	maths := testutil.CreateSubject(t, env.DB, classroom.Class{ID: sch.classID, InstituteID: sch.instituteID}, sch.lecturer.ID, "Maths", "MATH", 100)
	other := testutil.CreateClass(t, env.DB, sch.instituteID, sch.lecturer.ID, "Grade 8")
	stranger := testutil.CreateStudent(t, env.DB, sch.instituteID, other.ID, "Stan Other", "stan@school.io", "male")
	lia := testutil.CreateLecturer(t, env.DB, sch.instituteID, "Lia Lecturer", "lia@school.io", "female")
	path := "/api/v1/attendance/mark"

	roll := func(date string, records ...attendance.Record) []byte {
		return marchallObj(t, attendance.NewAttendance{SubjectID: maths.ID, Date: date, Records: records})
	}
	present := func(id string) attendance.Record { return attendance.Record{StudentID: id, Status: "present"} }
	absent := func(id string) attendance.Record { return attendance.Record{StudentID: id, Status: "Absent"} }

	tests := []httpTest{
		{
			name: "students cannot mark", method: http.MethodPost, path: path, token: sch.studentTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Only admins and lecturers can mark attendance"}),
		},
		{
			name: "no records", method: http.MethodPost, path: path, token: sch.lecturerTk, body: roll("2030-01-10"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Invalid payload"}),
		},
		{
			name: "duplicate student", method: http.MethodPost, path: path, token: sch.lecturerTk,
			body:     roll("2030-01-10", present(sch.student.ID), absent(sch.student.ID)),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Invalid payload"}),
		},
		{
			name: "unknown status", method: http.MethodPost, path: path, token: sch.lecturerTk,
			body:     roll("2030-01-10", attendance.Record{StudentID: sch.student.ID, Status: "late"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "not their subject", method: http.MethodPost, path: path, token: getToken(t, srv, lia),
			body:     roll("2030-01-10", present(sch.student.ID)),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Subject not found or unauthorized"}),
		},
		{
			name: "student of another class", method: http.MethodPost, path: path, token: sch.lecturerTk,
			body:     roll("2030-01-10", present(sch.student.ID), present(stranger.ID)),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found in class"}),
		},
		{
			name: "first day", method: http.MethodPost, path: path, token: sch.lecturerTk,
			body: roll("2030-01-10T09:30:00Z", present(sch.student.ID), absent(sch.student2.ID)), wantCode: http.StatusCreated,
		},
		{
			name: "same day twice", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     roll("2030-01-10", present(sch.student.ID)),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Attendance already marked for this date"}),
		},
		{
			name: "second day", method: http.MethodPost, path: path, token: sch.adminTk,
			body: roll("2030-01-11", present(sch.student.ID), present(sch.student2.ID)), wantCode: http.StatusCreated,
		},
	}
	runHTTPTests(t, srv, tests)

	t.Run("sessions", func(t *testing.T) {
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "classId or subjectId required"}),
		}, do(srv, httpTest{path: "/api/v1/attendance/subject", token: sch.lecturerTk}))

		rec := do(srv, httpTest{path: "/api/v1/attendance/subject?subjectId=" + maths.ID, token: sch.lecturerTk})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		sessions := decodeList(t, rec)
		require.Len(t, sessions, 2)
		first := sessions[0].(map[string]interface{})
		assert.Equal(t, "2030-01-10", first["date"])
		assert.Len(t, first["records"], 2)

		rec = do(srv, httpTest{path: "/api/v1/attendance/subject?classId=" + sch.classID + "&date=2030-01-11", token: sch.adminTk})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, decodeList(t, rec), 1)
	})

	t.Run("student reports", func(t *testing.T) {
		sara := getToken(t, srv, sch.student2)

		rec := do(srv, httpTest{path: "/api/v1/attendance/get-attendance", token: sara})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		records := decodeList(t, rec)
		require.Len(t, records, 2)
		latest := records[0].(map[string]interface{})
		assert.Equal(t, "2030-01-11", latest["date"])
		assert.Equal(t, "present", latest["status"])
		assert.Equal(t, "Grade 7", latest["class"].(map[string]interface{})["name"])

		rec = do(srv, httpTest{path: "/api/v1/attendance/summary/me", token: sara})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		ok, err := jsonBytesEqual(t, rec.Body.Bytes(), marchallObj(t, []attendance.ClassSummary{{
			ClassID:      sch.classID,
			ClassName:    "Grade 7",
			TotalClasses: 2,
			Present:      1,
			Absent:       1,
			Percentage:   50,
		}}))
		require.NoError(t, err)
		assert.True(t, ok, rec.Body.String())

		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, attendance.Eligibility{Eligible: false, Percentage: 50}),
		}, do(srv, httpTest{path: "/api/v1/attendance/eligibility/" + maths.ID, token: sara}))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, attendance.Eligibility{Eligible: true, Percentage: 100}),
		}, do(srv, httpTest{path: "/api/v1/attendance/eligibility/" + maths.ID, token: sch.studentTk}))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, attendance.Eligibility{}),
		}, do(srv, httpTest{path: "/api/v1/attendance/eligibility/nope", token: sch.studentTk}))
	})

	t.Run("staff reports", func(t *testing.T) {
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []attendance.DailyCount{
				{Date: "2030-01-10", Present: 1, Absent: 1},
				{Date: "2030-01-11", Present: 2, Absent: 0},
			}),
		}, do(srv, httpTest{path: "/api/v1/attendance/analytics/subject/" + maths.ID, token: sch.lecturerTk}))

		checkCodeAndData(t, httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, attendance.StudentSummary{Total: 2, Present: 1, Percentage: 50}),
		}, do(srv, httpTest{path: "/api/v1/attendance/student/" + sch.student2.ID + "/summary", token: sch.adminTk}))

		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errDenied),
		}, do(srv, httpTest{path: "/api/v1/attendance/student/" + sch.student2.ID + "/summary", token: sch.studentTk}))
	})
}

func Test_attendanceApi_classRollCalls(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	maths := testutil.CreateSubject(t, env.DB, classroom.Class{ID: sch.classID, InstituteID: sch.instituteID}, sch.lecturer.ID, "Maths", "MATH", 100)
	other := testutil.CreateClass(t, env.DB, sch.instituteID, sch.lecturer.ID, "Grade 8")
	stranger := testutil.CreateStudent(t, env.DB, sch.instituteID, other.ID, "Stan Other", "stan@school.io", "male")

	mark := func(classID, date string, records ...attendance.Record) {
		body := marchallObj(t, attendance.NewAttendance{ClassID: classID, Date: date, Records: records})
		rec := do(srv, httpTest{method: http.MethodPost, path: "/api/v1/attendance/mark", token: sch.adminTk, body: body})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	mark(sch.classID, "2030-01-10",
		attendance.Record{StudentID: sch.student.ID, Status: "present"},
		attendance.Record{StudentID: sch.student2.ID, Status: "present"})
	mark(sch.classID, "2030-01-11",
		attendance.Record{StudentID: sch.student.ID, Status: "present"},
		attendance.Record{StudentID: sch.student2.ID, Status: "absent"})
	mark(other.ID, "2030-01-10", attendance.Record{StudentID: stranger.ID, Status: "absent"})

	// sessions without a subject still count towards the subjects of the class
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, attendance.Eligibility{Eligible: true, Percentage: 100}),
	}, do(srv, httpTest{path: "/api/v1/attendance/eligibility/" + maths.ID, token: sch.studentTk}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, attendance.Eligibility{Eligible: false, Percentage: 50}),
	}, do(srv, httpTest{path: "/api/v1/attendance/eligibility/" + maths.ID, token: getToken(t, srv, sch.student2)}))

	want := marchallObj(t, []attendance.DailyCount{
		{Date: "2030-01-10", Present: 2, Absent: 0},
		{Date: "2030-01-11", Present: 1, Absent: 1},
	})
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: want},
		do(srv, httpTest{path: "/api/v1/attendance/analytics/subject/" + maths.ID, token: sch.lecturerTk}))
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: want},
		do(srv, httpTest{path: "/api/v1/attendance/summary/subject/" + maths.ID, token: sch.adminTk}))

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "Subject not found"}),
	}, do(srv, httpTest{path: "/api/v1/attendance/analytics/subject/nope", token: sch.adminTk}))
}

package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/assignment"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/testutil"
)

func Test_assignmentApi_workflow(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	cls := classroom.Class{ID: sch.classID, InstituteID: sch.instituteID}
	maths := testutil.CreateSubject(t, env.DB, cls, sch.lecturer.ID, "Maths", "MATH", 100)
	lia := testutil.CreateLecturer(t, env.DB, sch.instituteID, "Lia Lecturer", "lia@school.io", "female")
	liaTk := getToken(t, srv, lia)
	score := func(f float64) *float64 { return &f }

	tests := []httpTest{
		{
			name: "students cannot create", method: http.MethodPost, path: "/api/v1/assignments/create", token: sch.studentTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Only lecturers can create assignments"}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/api/v1/assignments/create", token: sch.lecturerTk,
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework", SubjectID: maths.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Missing required fields"}),
		},
		{
			name: "bad due date", method: http.MethodPost, path: "/api/v1/assignments/create", token: sch.lecturerTk,
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework", SubjectID: maths.ID, DueDate: "next week"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"dueDate": "must be a valid date"}),
		},
		{
			name: "subject of another lecturer", method: http.MethodPost, path: "/api/v1/assignments/create", token: liaTk,
			body:     marchallObj(t, assignment.NewAssignment{Title: "Homework", SubjectID: maths.ID, DueDate: "2030-01-15"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Subject not found or unauthorized"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec := do(srv, httpTest{
		method: http.MethodPost, path: "/api/v1/assignments/create", token: sch.lecturerTk,
		body: marchallObj(t, assignment.NewAssignment{Title: "Homework 1", SubjectID: maths.ID, DueDate: "2030-01-15"}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	asg := decode(t, rec)["assignment"].(map[string]interface{})
	asgID := asg["id"].(string)
	assert.Contains(t, asg["dueDate"], "2030-01-15")

	rec = do(srv, httpTest{path: "/api/v1/assignments/subject/" + maths.ID, token: sch.studentTk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = do(srv, httpTest{path: "/api/v1/admin/assignments", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	// submissions
	submit := assignment.NewSubmission{AssignmentID: asgID, FileURL: "https://files.example/hw1.pdf"}
	tests = []httpTest{
		{
			name: "lecturers cannot submit", method: http.MethodPost, path: "/api/v1/submissions/submit", token: sch.lecturerTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Only students can submit assignments"}),
		},
		{
			name: "file required", method: http.MethodPost, path: "/api/v1/submissions/submit", token: sch.studentTk,
			body:     marchallObj(t, assignment.NewSubmission{AssignmentID: asgID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Assignment and file required"}),
		},
		{
			name: "submitted", method: http.MethodPost, path: "/api/v1/submissions/submit", token: sch.studentTk,
			body: marchallObj(t, submit), wantCode: http.StatusCreated,
		},
		{
			name: "once per student", method: http.MethodPost, path: "/api/v1/submissions/submit", token: sch.studentTk,
			body: marchallObj(t, submit), wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Already submitted"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec = do(srv, httpTest{path: "/api/v1/submissions/assignment/" + asgID, token: sch.lecturerTk})
	require.Equal(t, http.StatusOK, rec.Code)
	subs := decodeList(t, rec)
	require.Len(t, subs, 1)
	sub := subs[0].(map[string]interface{})
	subID := sub["id"].(string)
	assert.Nil(t, sub["score"])
	assert.Equal(t, sch.student.FullName, sub["student"].(map[string]interface{})["fullName"])

	// grading
	gradePath := "/api/v1/submissions/grade/" + subID
	tests = []httpTest{
		{
			name: "students cannot grade", method: http.MethodPatch, path: gradePath, token: sch.studentTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Only lecturers can grade"}),
		},
		{
			name: "score required", method: http.MethodPatch, path: gradePath, token: sch.lecturerTk, body: []byte("{}"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"score": "this field is required"}),
		},
		{
			name: "not the author", method: http.MethodPatch, path: gradePath, token: liaTk,
			body:     marchallObj(t, assignment.Grade{Score: score(15)}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Unauthorized"}),
		},
		{
			name: "unknown submission", method: http.MethodPatch, path: "/api/v1/submissions/grade/nope", token: sch.lecturerTk,
			body:     marchallObj(t, assignment.Grade{Score: score(15)}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Submission not found"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec = do(srv, httpTest{
		method: http.MethodPatch, path: gradePath, token: sch.lecturerTk,
		body: marchallObj(t, assignment.Grade{Score: score(0), Feedback: "Start over"}),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	graded := decode(t, rec)["submission"].(map[string]interface{})
	assert.EqualValues(t, 0, graded["score"])
	assert.NotEmpty(t, graded["gradedAt"])

	rec = do(srv, httpTest{path: "/api/v1/submissions/me", token: sch.studentTk})
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decodeList(t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, "Homework 1", mine[0].(map[string]interface{})["assignment"].(map[string]interface{})["title"])
}

package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/testutil"
)

func Test_classApi_classCreate(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	_, inst := testutil.CreateAdmin(t, env.DB, "Olga Admin", "olga@school.io", "s3cr3t!pwd", "Moonlight College")
	foreign := testutil.CreateLecturer(t, env.DB, inst.ID, "Fred Foreign", "fred@school.io", "male")
	path := "/api/v1/class/create-class"

	tests := []httpTest{
		{
			name: "lecturer denied", method: http.MethodPost, path: path, token: sch.lecturerTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "missing fields", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.NewClass{Name: "Grade 8"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "All fields are required"}),
		},
		{
			name: "lecturer of another institute", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.NewClass{Name: "Grade 8", LecturerID: foreign.ID}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Lecturer not found"}),
		},
		{
			name: "name taken", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.NewClass{Name: "Grade 7", LecturerID: sch.lecturer.ID}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Class already exists"}),
		},
		{
			name: "success", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.NewClass{Name: "<b>Grade 8</b>", LecturerID: sch.lecturer.ID}),
			wantCode: http.StatusCreated,
		},
	}
	runHTTPTests(t, srv, tests)

	rec := do(srv, httpTest{path: "/api/v1/class", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code)
	classes := decodeList(t, rec)
	require.Len(t, classes, 2)
	names := []interface{}{}
	for _, c := range classes {
		cls := c.(map[string]interface{})
		names = append(names, cls["name"])
		assert.Equal(t, sch.lecturer.FullName, cls["lecturer"].(map[string]interface{})["fullName"])
	}
	assert.ElementsMatch(t, []interface{}{"Grade 7", "Grade 8"}, names)
}

func Test_classApi_classAddStudent(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	cls := testutil.CreateClass(t, env.DB, sch.instituteID, sch.lecturer.ID, "Grade 8")
	path := "/api/v1/class/add-student"

	tests := []httpTest{
		{
			name: "student required", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.Membership{ClassID: cls.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "All fields are required"}),
		},
		{
			name: "already in class", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.Membership{ClassID: sch.classID, StudentID: sch.student.ID}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Student already in class"}),
		},
		{
			name: "unknown student", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.Membership{ClassID: cls.ID, StudentID: "nope"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found"}),
		},
		{
			name: "moved", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, classroom.Membership{ClassID: cls.ID, StudentID: sch.student.ID}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]interface{}{"statusCode": http.StatusOK, "message": "Student added to class"}),
		},
	}
	runHTTPTests(t, srv, tests)

	// the student now belongs to a single class
	rec := do(srv, httpTest{path: "/api/v1/admin/classes/" + sch.classID, token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)
	assert.EqualValues(t, 1, data["totalStudents"])
	assert.EqualValues(t, 0, data["totalMales"])
	assert.EqualValues(t, 1, data["totalFemales"])

	rec = do(srv, httpTest{path: "/api/v1/admin/classes/" + cls.ID + "/students", token: sch.lecturerTk})
	require.Equal(t, http.StatusOK, rec.Code)
	students := decodeList(t, rec)
	require.Len(t, students, 1)
	assert.Equal(t, sch.student.ID, students[0].(map[string]interface{})["id"])
}

func Test_classApi_classAssignLecturer(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	lia := testutil.CreateLecturer(t, env.DB, sch.instituteID, "Lia Lecturer", "lia@school.io", "female")

	rec := do(srv, httpTest{
		method: http.MethodPatch, path: "/api/v1/class/assign-lecturer", token: sch.adminTk,
		body: marchallObj(t, classroom.Membership{ClassID: sch.classID, LecturerID: lia.ID}),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, lia.ID, decode(t, rec)["class"].(map[string]interface{})["lecturerId"])

	rec = do(srv, httpTest{path: "/api/v1/class/lecturer", token: getToken(t, srv, lia)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

func Test_classApi_classQueryByRole(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	testutil.CreateSubject(t, env.DB, classroom.Class{ID: sch.classID, InstituteID: sch.instituteID}, sch.lecturer.ID, "Maths", "MATH", 100)

	tests := []httpTest{
		{name: "student denied on admin list", path: "/api/v1/class/admin", token: sch.studentTk, wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied)},
		{name: "admin denied on student list", path: "/api/v1/class/student", token: sch.adminTk, wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied)},
		{name: "student denied on retrieve", path: "/api/v1/class/" + sch.classID, token: sch.studentTk, wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied)},
		{name: "unknown class", path: "/api/v1/class/nope", token: sch.adminTk, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Class not found"})},
		{name: "retrieve", path: "/api/v1/class/" + sch.classID, token: sch.lecturerTk, wantCode: http.StatusOK},
	}
	runHTTPTests(t, srv, tests)

	rec := do(srv, httpTest{path: "/api/v1/class/student", token: sch.studentTk})
	require.Equal(t, http.StatusOK, rec.Code)
	classes := decodeList(t, rec)
	require.Len(t, classes, 1)
	assert.Equal(t, sch.classID, classes[0].(map[string]interface{})["id"])

	rec = do(srv, httpTest{path: "/api/v1/admin/class/class-with-subjects", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)
	assert.EqualValues(t, 1, data["count"])
	overview := data["classes"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 1, overview["totalSubjects"])
	assert.EqualValues(t, 2, overview["totalStudents"])
	assert.EqualValues(t, 1, overview["totalMale"])
	assert.Len(t, overview["students"], 2)
}

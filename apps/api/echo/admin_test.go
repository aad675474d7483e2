package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/institute"
	"github.com/trezcool/studman/core/user"
	"github.com/trezcool/studman/testutil"
)

func Test_adminApi_adminRequest(t *testing.T) {
	srv, env := setup(t)

	testutil.CreateAdmin(t, env.DB, "Ada Admin", "ada@school.io", "s3cr3t!pwd", "")
	path := "/api/v1/admin/admin-request"

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: path, body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"fullName": "this field is required",
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "short password", method: http.MethodPost, path: path,
			body:     marchallObj(t, user.AdminRequest{FullName: "Bob Boss", Email: "bob@school.io", Password: "x1!"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 6 characters"}),
		},
		{
			name: "password similar to email", method: http.MethodPost, path: path,
			body:     marchallObj(t, user.AdminRequest{FullName: "Bob Boss", Email: "bobboss@school.io", Password: "bobboss"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be similar to your name or email"}),
		},
		{
			name: "email taken", method: http.MethodPost, path: path,
			body:     marchallObj(t, user.AdminRequest{FullName: "Ada Again", Email: "ADA@school.io", Password: "qwerty!234"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Email already in use"}),
		},
		{
			name: "success", method: http.MethodPost, path: path,
			body:     marchallObj(t, user.AdminRequest{FullName: "Bob Boss", Email: "bob@school.io", Password: "qwerty!234"}),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, map[string]interface{}{
				"statusCode": http.StatusCreated,
				"message":    "Admin signup request submitted. Awaiting approval.",
			}),
		},
	}
	runHTTPTests(t, srv, tests)

	bob, err := env.Users.GetByEmail(context.Background(), "bob@school.io")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, bob.Role)
	assert.False(t, bob.Approved)

	sent := env.Mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "admin_request_received", sent[0].TemplateName)
}

func Test_adminApi_userResetPassword(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	path := "/api/v1/admin/reset-password"

	tests := []httpTest{
		{name: "auth required", method: http.MethodPatch, path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "weak password", method: http.MethodPatch, path: path, token: sch.studentTk,
			body:     marchallObj(t, map[string]string{"newPassword": " pass "}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"newPassword": "password must not start or end with whitespace"}),
		},
		{
			name: "success", method: http.MethodPatch, path: path, token: sch.studentTk,
			body:     marchallObj(t, map[string]string{"newPassword": "n3w&Str0ng"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, map[string]interface{}{"statusCode": http.StatusOK, "message": "Password reset successfully"}),
		},
	}
	runHTTPTests(t, srv, tests)

	_, err := env.Users.Authenticate(context.Background(), sch.student.Email, "n3w&Str0ng")
	assert.NoError(t, err)
}

func Test_adminApi_instituteCreate(t *testing.T) {
	srv, env := setup(t)

	admin, _ := testutil.CreateAdmin(t, env.DB, "Ada Admin", "ada@school.io", "s3cr3t!pwd", "")
	other, _ := testutil.CreateAdmin(t, env.DB, "Olga Admin", "olga@school.io", "s3cr3t!pwd", "")
	adminTk := getToken(t, srv, admin)
	path := "/api/v1/admin/create-institute"

	rec := do(srv, httpTest{method: http.MethodPost, path: path, token: adminTk, body: marchallObj(t, institute.NewInstitute{
		Name:    "Sunrise Academy",
		Website: "https://sunrise.example",
		Email:   "INFO@sunrise.example",
	})})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inst := decode(t, rec)["institute"].(map[string]interface{})
	assert.Equal(t, admin.ID, inst["adminId"])
	assert.Equal(t, "info@sunrise.example", inst["email"])

	admin, err := env.Users.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, inst["id"], admin.InstituteID)

	tests := []httpTest{
		{
			name: "already created", method: http.MethodPost, path: path, token: getToken(t, srv, admin),
			body:     marchallObj(t, institute.NewInstitute{Name: "Second Campus"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Admin already created an Institute"}),
		},
		{
			name: "name taken", method: http.MethodPost, path: path, token: getToken(t, srv, other),
			body:     marchallObj(t, institute.NewInstitute{Name: "sunrise academy"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Institute name already exists"}),
		},
		{
			name: "invalid website", method: http.MethodPost, path: path, token: getToken(t, srv, other),
			body:     marchallObj(t, institute.NewInstitute{Name: "Moonlight", Website: "not a url"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "no institute yet", path: "/api/v1/admin/my-institute", token: getToken(t, srv, other),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Institute not found"}),
		},
	}
	runHTTPTests(t, srv, tests)

	name := "Sunrise International"
	rec = do(srv, httpTest{
		method: http.MethodPatch, path: "/api/v1/admin/my-institute", token: getToken(t, srv, admin),
		body: marchallObj(t, institute.UpdateInstitute{Name: &name}),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, name, decode(t, rec)["institute"].(map[string]interface{})["name"])
}

func Test_adminApi_studentCreate(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	path := "/api/v1/admin/create-student"

	tests := []httpTest{
		{
			name: "admin only", method: http.MethodPost, path: path, token: sch.lecturerTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "unknown class", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, user.NewStudent{FullName: "Nia New", Email: "nia@school.io", ClassID: "nope"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Class not found"}),
		},
		{
			name: "email taken", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, user.NewStudent{FullName: "Sam Again", Email: sch.student.Email, ClassID: sch.classID}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Student already exists"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec := do(srv, httpTest{method: http.MethodPost, path: path, token: sch.adminTk, body: marchallObj(t, user.NewStudent{
		FullName:       "Nia New",
		Email:          "Nia@School.io",
		ClassID:        sch.classID,
		StudentProfile: &user.StudentProfile{Gender: "Female", RegistrationNumber: "REG-001"},
	})})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decode(t, rec)
	student := data["student"].(map[string]interface{})
	tempPwd := data["tempPassword"].(string)
	assert.Equal(t, "nia@school.io", student["email"])
	assert.Equal(t, sch.classID, student["classId"])
	assert.Len(t, tempPwd, 8)

	_, err := env.Users.Authenticate(context.Background(), "nia@school.io", tempPwd)
	assert.NoError(t, err)

	sent := env.Mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "account_created", sent[0].TemplateName)
	assert.Contains(t, sent[0].TextContent, tempPwd)
}

func Test_adminApi_lecturerCreate(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	path := "/api/v1/admin/create-lecturer"

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "Lecturer profile data is required"}),
	}, do(srv, httpTest{method: http.MethodPost, path: path, token: sch.adminTk, body: marchallObj(t, user.NewLecturer{
		FullName: "Lia Lecturer",
		Email:    "lia@school.io",
	})}))

	rec := do(srv, httpTest{method: http.MethodPost, path: path, token: sch.adminTk, body: marchallObj(t, user.NewLecturer{
		FullName:        "Lia Lecturer",
		Email:           "lia@school.io",
		LecturerProfile: &user.LecturerProfile{EmployeeID: "EMP-7", Gender: "female", Salary: 1200},
	})})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lecturer := decode(t, rec)["lecturer"].(map[string]interface{})
	assert.Equal(t, sch.instituteID, lecturer["instituteId"])

	rec = do(srv, httpTest{path: "/api/v1/lecturer/employee", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = do(srv, httpTest{
		method: http.MethodPatch, path: "/api/v1/admin/lecturers/" + lecturer["id"].(string) + "/profile", token: sch.adminTk,
		body: marchallObj(t, user.UpdateLecturer{FullName: "Lia Senior"}),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Lia Senior", decode(t, rec)["lecturer"].(map[string]interface{})["fullName"])
}

func Test_adminApi_studentQuery(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	otherAdmin, inst := testutil.CreateAdmin(t, env.DB, "Olga Admin", "olga@school.io", "s3cr3t!pwd", "Moonlight College")
	outsider := testutil.CreateStudent(t, env.DB, inst.ID, "", "Out Sider", "out@school.io", "male")

	rec := do(srv, httpTest{path: "/api/v1/admin/students", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code)
	students := decodeList(t, rec)
	require.Len(t, students, 2)
	for _, st := range students {
		assert.Equal(t, "Grade 7", st.(map[string]interface{})["className"])
	}

	tests := []httpTest{
		{
			name: "other institute", path: "/api/v1/admin/students/" + outsider.ID, token: sch.adminTk,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student not found"}),
		},
		{
			name: "legacy mount", path: "/api/v1/student/" + outsider.ID, token: sch.adminTk,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "User not found"}),
		},
		{name: "found", path: "/api/v1/admin/students/" + sch.student.ID, token: sch.adminTk, wantCode: http.StatusOK},
		{name: "legacy found", path: "/api/v1/student/" + sch.student.ID, token: sch.adminTk, wantCode: http.StatusOK},
		{
			name: "lecturer of another institute", path: "/api/v1/admin/lecturers/" + sch.lecturer.ID, token: getToken(t, srv, otherAdmin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Lecturer not found"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec = do(srv, httpTest{path: "/api/v1/student", token: getToken(t, srv, otherAdmin)})
	require.Equal(t, http.StatusOK, rec.Code)
	students = decodeList(t, rec)
	require.Len(t, students, 1)
	assert.Equal(t, outsider.ID, students[0].(map[string]interface{})["id"])

	rec = do(srv, httpTest{path: "/api/v1/admin/students/" + sch.student.ID + "/classes", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)
	assert.Equal(t, sch.classID, data["class"].(map[string]interface{})["id"])
	assert.Empty(t, data["subjects"])
}

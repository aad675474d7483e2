package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/user"
	"github.com/trezcool/studman/testutil"
)

func Test_superAdminApi_superAdminLogin(t *testing.T) {
	srv, env := setup(t)

	pwd := "0wn3r!pwd"
	owner := testutil.CreateSuperAdmin(t, env.DB, "owner@system.com", pwd)
	admin, _ := testutil.CreateAdmin(t, env.DB, "Ada Admin", "ada@school.io", pwd, "")
	path := "/api/v1/super-admin/super-admin/login"

	tests := []httpTest{
		{
			name: "not a super admin", method: http.MethodPost, path: path,
			body:     marchallObj(t, LoginRequest{Email: admin.Email, Password: pwd}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: path,
			body:     marchallObj(t, LoginRequest{Email: owner.Email, Password: "wrong!pwd"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec := do(srv, httpTest{method: http.MethodPost, path: path, body: marchallObj(t, LoginRequest{Email: owner.Email, Password: pwd})})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)
	assert.Equal(t, "Super admin login successful", data["message"])
	assert.NotEmpty(t, data["token"])
	ok, err := jsonBytesEqual(t, marchallObj(t, data["user"]), marchallObj(t, owner.Summary()))
	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_superAdminApi_adminApprove(t *testing.T) {
	srv, env := setup(t)

	owner := testutil.CreateSuperAdmin(t, env.DB, "owner@system.com", "0wn3r!pwd")
	admin, _ := testutil.CreateAdmin(t, env.DB, "Ada Admin", "ada@school.io", "s3cr3t!pwd", "")
	pending := testutil.CreateUser(t, env.DB, user.User{
		FullName: "Pending Admin",
		Email:    "pending@school.io",
		Role:     user.RoleAdmin,
		IsActive: true,
	}, "s3cr3t!pwd")
	lecturer := testutil.CreateLecturer(t, env.DB, "", "Leo Lecturer", "leo@school.io", "male")
	ownerTk := getToken(t, srv, owner)

	tests := []httpTest{
		{name: "auth required", method: http.MethodPatch, path: "/api/v1/super-admin/approve-admin/" + pending.ID, wantCode: http.StatusUnauthorized},
		{
			name: "super admin only", method: http.MethodPatch, path: "/api/v1/super-admin/approve-admin/" + pending.ID,
			token: getToken(t, srv, admin), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Super admin only"}),
		},
		{
			name: "unknown user", method: http.MethodPatch, path: "/api/v1/super-admin/approve-admin/nobody",
			token: ownerTk, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "User not found"}),
		},
		{
			name: "not an admin", method: http.MethodPatch, path: "/api/v1/super-admin/approve-admin/" + lecturer.ID,
			token: ownerTk, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "User not found"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec := do(srv, httpTest{path: "/api/v1/super-admin/pending-admins", token: ownerTk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = do(srv, httpTest{method: http.MethodPatch, path: "/api/v1/super-admin/approve-admin/" + pending.ID, token: ownerTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["user"].(map[string]interface{})["approved"])

	sent := env.Mail.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "admin_approved", sent[0].TemplateName)
	assert.Equal(t, pending.Email, sent[0].To[0].Address)

	rec = do(srv, httpTest{path: "/api/v1/super-admin/pending-admins", token: ownerTk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["total"])
}

func Test_superAdminApi_systemStats(t *testing.T) {
	srv, env := setup(t)

	owner := testutil.CreateSuperAdmin(t, env.DB, "owner@system.com", "0wn3r!pwd")
	testutil.CreateUser(t, env.DB, user.User{
		FullName: "Pending Admin",
		Email:    "pending@school.io",
		Role:     user.RoleAdmin,
		IsActive: true,
	}, "s3cr3t!pwd")
	sch := newSchool(t, srv, env)
	ownerTk := getToken(t, srv, owner)

	rec := do(srv, httpTest{path: "/api/v1/super-admin/stats", token: ownerTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	wantStats := map[string]interface{}{
		"admins":     map[string]int{"total": 2, "approved": 1, "pending": 1},
		"institutes": map[string]int{"total": 1},
		"students":   map[string]int{"total": 2},
		"lecturers":  map[string]int{"total": 1},
	}
	ok, err := jsonBytesEqual(t, marchallObj(t, decode(t, rec)["data"]), marchallObj(t, wantStats))
	require.NoError(t, err)
	assert.True(t, ok, rec.Body.String())

	rec = do(srv, httpTest{path: "/api/v1/super-admin/institutes", token: ownerTk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	checkCodeAndData(t, httpTest{wantCode: http.StatusOK}, do(srv, httpTest{path: "/api/v1/super-admin/institutes/" + sch.instituteID, token: ownerTk}))
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "Institute not found"}),
	}, do(srv, httpTest{path: "/api/v1/super-admin/institutes/nope", token: ownerTk}))
}

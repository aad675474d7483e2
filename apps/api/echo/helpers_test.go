package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/user"
	"github.com/trezcool/studman/testutil"
)

var (
	errMissingToken = httpErr{Error: "Not authenticated"}
	errDenied       = httpErr{Error: "Access denied"}
)

func setup(t *testing.T) (*Server, *testutil.Env) {
	env := testutil.NewEnv(t)
	srv := NewServer(ServerDeps{
		Conf:            env.Conf,
		Logger:          env.Logger,
		Validate:        env.Validate,
		Translator:      env.Translator,
		UserSvc:         env.Users,
		InstituteSvc:    env.Institutes,
		ClassSvc:        env.Classes,
		SubjectSvc:      env.Subjects,
		AssignmentSvc:   env.Assignments,
		AttendanceSvc:   env.Attendance,
		ResultSvc:       env.Results,
		FeeSvc:          env.Fees,
		FeeStructureSvc: env.FeeStructures,
		ThemeSvc:        env.Themes,
		StatsSvc:        env.Stats,
	})
	return srv, env
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do runs tt against srv; GET is the default method.
func do(srv *Server, tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	srv.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, srv *Server, usr user.User) string {
	token, err := srv.auth.GenerateToken(srv.auth.UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, srv *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, do(srv, tt))
		})
	}
}

// decode unmarshals the response body into a generic JSON object.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	var body []interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

// school is an institute with an admin, a lecturer, a class and two students.
type school struct {
	admin, lecturer, student, student2 user.User
	adminTk, lecturerTk, studentTk     string
	instituteID, classID               string
}

func newSchool(t *testing.T, srv *Server, env *testutil.Env) school {
	admin, inst := testutil.CreateAdmin(t, env.DB, "Ada Admin", "ada@school.io", "s3cr3t!pwd", "Sunrise Academy")
	lecturer := testutil.CreateLecturer(t, env.DB, inst.ID, "Leo Lecturer", "leo@school.io", "male")
	cls := testutil.CreateClass(t, env.DB, inst.ID, lecturer.ID, "Grade 7")
	student := testutil.CreateStudent(t, env.DB, inst.ID, cls.ID, "Sam Student", "sam@school.io", "male")
	student2 := testutil.CreateStudent(t, env.DB, inst.ID, cls.ID, "Sara Student", "sara@school.io", "female")
	return school{
		admin:       admin,
		lecturer:    lecturer,
		student:     student,
		student2:    student2,
		adminTk:     getToken(t, srv, admin),
		lecturerTk:  getToken(t, srv, lecturer),
		studentTk:   getToken(t, srv, student),
		instituteID: inst.ID,
		classID:     cls.ID,
	}
}

// newOtherAdmin returns the token of an approved admin running another institute.
func newOtherAdmin(t *testing.T, srv *Server, env *testutil.Env) string {
	admin, _ := testutil.CreateAdmin(t, env.DB, "Otto Other", "otto@elsewhere.io", "s3cr3t!pwd", "Elsewhere College")
	return getToken(t, srv, admin)
}

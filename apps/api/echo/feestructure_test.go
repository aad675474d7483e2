package echoapi

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/feestructure"
)

func Test_feeStructureApi(t *testing.T) {
	srv, env := setup(t)
	sch := newSchool(t, srv, env)
	dec := decimal.RequireFromString

	path := "/api/v1/fee-structures"
	particulars := []feestructure.Particular{
		{Label: "Tuition", Amount: dec("1200")},
		{Label: "Sports", Amount: dec("80")},
	}
	tests := []httpTest{
		{
			name: "auth", method: http.MethodPost, path: path,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "admin only", method: http.MethodPost, path: path, token: sch.studentTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "invalid category", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, feestructure.NewFeeStructure{Category: "term", Particulars: particulars}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Invalid category"}),
		},
		{
			name: "class required", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, feestructure.NewFeeStructure{Category: "class", Particulars: particulars}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "classId is required for class category"}),
		},
		{
			name: "particulars required", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, feestructure.NewFeeStructure{Category: "all"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "particulars are required"}),
		},
		{
			name: "unknown class", method: http.MethodPost, path: path, token: sch.adminTk,
			body:     marchallObj(t, feestructure.NewFeeStructure{Category: "class", ClassID: "nope", Particulars: particulars}),
			wantCode: http.StatusNotFound,
		},
		{
			name: "bad ordering", path: path + "?ordering=-title", token: sch.adminTk,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"ordering":"unknown field title"}`),
		},
	}
	runHTTPTests(t, srv, tests)

	create := func(nfs feestructure.NewFeeStructure) map[string]interface{} {
		rec := do(srv, httpTest{method: http.MethodPost, path: path, token: sch.adminTk, body: marchallObj(t, nfs)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		return body["data"].(map[string]interface{})
	}
	all := create(feestructure.NewFeeStructure{Category: "ALL", Particulars: particulars})
	assert.Equal(t, "all", all["category"])
	assertAmount(t, "1280", all["totalAmount"])
	cls := create(feestructure.NewFeeStructure{Category: "class", ClassID: sch.classID, Particulars: particulars[:1]})
	assert.Equal(t, sch.classID, cls["classId"])
	stu := create(feestructure.NewFeeStructure{Category: "student", StudentID: sch.student.ID, Particulars: particulars[1:]})
	assertAmount(t, "80", stu["totalAmount"])

	// list
	rec := do(srv, httpTest{path: path + "?ordering=totalAmount&limit=2", token: sch.lecturerTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, stu["id"], data[0].(map[string]interface{})["id"])
	assert.Equal(t, map[string]interface{}{"page": float64(1), "limit": float64(2), "total": float64(3)}, body["meta"])

	rec = do(srv, httpTest{path: path + "?category=class", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data = decode(t, rec)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, cls["id"], data[0].(map[string]interface{})["id"])

	// another institute sees nothing
	outsider := newOtherAdmin(t, srv, env)
	rec = do(srv, httpTest{path: path, token: outsider})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode(t, rec)["data"])
	rec = do(srv, httpTest{path: path + "/" + all["id"].(string), token: outsider})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// update
	label := "Tuition fees"
	tests = []httpTest{
		{
			name: "update missing", method: http.MethodPut, path: path + "/nope", token: sch.adminTk,
			body:     marchallObj(t, feestructure.UpdateFeeStructure{}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Not found"}),
		},
		{
			name: "update to student without target", method: http.MethodPut, path: path + "/" + all["id"].(string), token: sch.adminTk,
			body:     []byte(`{"category":"student"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "studentId is required for student category"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec = do(srv, httpTest{
		method: http.MethodPut, path: path + "/" + all["id"].(string), token: sch.adminTk,
		body: marchallObj(t, feestructure.UpdateFeeStructure{Particulars: []feestructure.Particular{{Label: label, Amount: dec("1000.25")}}}),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)["data"].(map[string]interface{})
	assertAmount(t, "1000.25", updated["totalAmount"])
	assert.Equal(t, "all", updated["category"])

	// delete
	rec = do(srv, httpTest{method: http.MethodDelete, path: path + "/" + stu["id"].(string), token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Deleted", decode(t, rec)["message"])

	rec = do(srv, httpTest{path: path + "/" + stu["id"].(string), token: sch.adminTk})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

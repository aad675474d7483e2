package echoapi

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/fee"
	"github.com/trezcool/studman/testutil"
)

func assertAmount(t *testing.T, want string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	require.True(t, ok, "amount %v is not a string", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(s)), "amount = %s; want %s", s, want)
}

func Test_feeApi_workflow(t *testing.T) {
	srv, env := setup(t)

	sch := newSchool(t, srv, env)
	loner, _ := testutil.CreateAdmin(t, env.DB, "Lone Admin", "lone@school.io", "s3cr3t!pwd", "")
	lonerTk := getToken(t, srv, loner)
	dec := decimal.RequireFromString

	// particulars
	particulars := fee.NewParticulars{Fees: []fee.NewParticular{
		{Title: "Tuition", Amount: dec("1500")},
		{Title: "Library", Amount: dec("75.50")},
	}}
	tests := []httpTest{
		{
			name: "admin only", method: http.MethodPost, path: "/api/v1/admin/fees/create", token: sch.lecturerTk,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errDenied),
		},
		{
			name: "no institute", method: http.MethodPost, path: "/api/v1/admin/fees/create", token: lonerTk,
			body:     marchallObj(t, particulars),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Create institute before adding fees"}),
		},
		{
			name: "empty list", method: http.MethodPost, path: "/api/v1/admin/fees/create", token: sch.adminTk,
			body:     marchallObj(t, fee.NewParticulars{}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Fees must be a non-empty array"}),
		},
		{
			name: "duplicate titles", method: http.MethodPost, path: "/api/v1/admin/fees/create", token: sch.adminTk,
			body: marchallObj(t, fee.NewParticulars{Fees: []fee.NewParticular{
				{Title: "Tuition", Amount: dec("1")},
				{Title: "TUITION", Amount: dec("2")},
			}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Duplicate fee titles in request"}),
		},
		{
			name: "created", method: http.MethodPost, path: "/api/v1/admin/fees/create", token: sch.adminTk,
			body: marchallObj(t, particulars), wantCode: http.StatusCreated,
		},
		{
			name: "title taken", method: http.MethodPost, path: "/api/v1/admin/fees/create", token: sch.adminTk,
			body:     marchallObj(t, fee.NewParticulars{Fees: []fee.NewParticular{{Title: "Tuition", Amount: dec("10")}}}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Fee title already exists: Tuition"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec := do(srv, httpTest{path: "/api/v1/admin/fees", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	feeIDs := make(map[string]string)
	for _, p := range decodeList(t, rec) {
		p := p.(map[string]interface{})
		feeIDs[p["title"].(string)] = p["id"].(string)
	}
	require.Len(t, feeIDs, 2)

	// class fees
	library := dec("50")
	assign := fee.ClassFeeAssignment{ClassID: sch.classID, Fees: []fee.ClassFeeEntry{
		{FeeID: feeIDs["Tuition"]},
		{FeeID: feeIDs["Library"], Amount: &library},
	}}
	tests = []httpTest{
		{
			name: "admin without institute", method: http.MethodPost, path: "/api/v1/admin/fees/assign/class", token: lonerTk,
			body:     marchallObj(t, assign),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Admin must belong to an institute"}),
		},
		{
			name: "duplicate fees", method: http.MethodPost, path: "/api/v1/admin/fees/assign/class", token: sch.adminTk,
			body: marchallObj(t, fee.ClassFeeAssignment{ClassID: sch.classID, Fees: []fee.ClassFeeEntry{
				{FeeID: feeIDs["Tuition"]}, {FeeID: feeIDs["Tuition"]},
			}}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Duplicate fees in request"}),
		},
		{
			name: "unknown fee", method: http.MethodPost, path: "/api/v1/admin/fees/assign/class", token: sch.adminTk,
			body:     marchallObj(t, fee.ClassFeeAssignment{ClassID: sch.classID, Fees: []fee.ClassFeeEntry{{FeeID: "nope"}}}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Fee not found"}),
		},
		{
			name: "no class fees yet", method: http.MethodPost, path: "/api/v1/admin/fees/assign", token: sch.adminTk,
			body:     marchallObj(t, fee.StudentFeeRequest{StudentID: sch.student.ID}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "No fees assigned to student's class"}),
		},
		{
			name: "assigned", method: http.MethodPost, path: "/api/v1/admin/fees/assign/class", token: sch.adminTk,
			body: marchallObj(t, assign), wantCode: http.StatusCreated,
		},
	}
	runHTTPTests(t, srv, tests)

	// student bill
	rec = do(srv, httpTest{
		method: http.MethodPost, path: "/api/v1/admin/fees/assign", token: sch.adminTk,
		body: marchallObj(t, fee.StudentFeeRequest{StudentID: sch.student.ID}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sf := decode(t, rec)["studentFee"].(map[string]interface{})
	assertAmount(t, "1550", sf["totalAmount"])
	assertAmount(t, "1550", sf["balance"])
	assert.Equal(t, fee.StatusUnpaid, sf["status"])

	// payments
	payPath := "/api/v1/admin/fees/student/" + sch.student.ID + "/payments"
	tests = []httpTest{
		{
			name: "positive amount", method: http.MethodPost, path: payPath, token: sch.adminTk,
			body:     marchallObj(t, fee.NewPayment{FeeID: feeIDs["Library"]}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "more than owed", method: http.MethodPost, path: payPath, token: sch.adminTk,
			body:     marchallObj(t, fee.NewPayment{FeeID: feeIDs["Library"], Amount: dec("50.01")}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Payment exceeds outstanding amount"}),
		},
		{
			name: "no bill", method: http.MethodPost, path: "/api/v1/admin/fees/student/" + sch.student2.ID + "/payments", token: sch.adminTk,
			body:     marchallObj(t, fee.NewPayment{FeeID: feeIDs["Library"], Amount: dec("5")}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Student fee not found"}),
		},
	}
	runHTTPTests(t, srv, tests)

	rec = do(srv, httpTest{
		method: http.MethodPost, path: payPath, token: sch.adminTk,
		body: marchallObj(t, fee.NewPayment{FeeID: feeIDs["Library"], Amount: dec("50"), Reference: "RCPT-1"}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sf = decode(t, rec)["studentFee"].(map[string]interface{})
	assertAmount(t, "1500", sf["balance"])
	assert.Equal(t, fee.StatusPartial, sf["status"])

	rec = do(srv, httpTest{
		method: http.MethodPost, path: payPath, token: sch.adminTk,
		body: marchallObj(t, fee.NewPayment{FeeID: feeIDs["Tuition"], Amount: dec("1500")}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, fee.StatusPaid, decode(t, rec)["studentFee"].(map[string]interface{})["status"])

	// regenerating keeps what was paid
	rec = do(srv, httpTest{
		method: http.MethodPost, path: "/api/v1/admin/fees/assign", token: sch.adminTk,
		body: marchallObj(t, fee.StudentFeeRequest{StudentID: sch.student.ID}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sf = decode(t, rec)["studentFee"].(map[string]interface{})
	assertAmount(t, "0", sf["balance"])

	rec = do(srv, httpTest{path: "/api/v1/admin/fees/student/" + sch.student.ID, token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["payments"], 2)

	rec = do(srv, httpTest{path: "/api/v1/admin/fees/students", token: sch.adminTk})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)
}

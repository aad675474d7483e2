package fee_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/fee"
	"github.com/trezcool/studman/core/user"
	"github.com/trezcool/studman/testutil"
)

var dec = decimal.RequireFromString

type billing struct {
	env     *testutil.Env
	admin   user.User
	classID string
	student user.User
	tuition fee.Particular
}

// newBilling bills a student 100 of tuition.
func newBilling(t *testing.T) billing {
	t.Helper()
	ctx := context.Background()

	env := testutil.NewEnv(t)
	admin, inst := testutil.CreateAdmin(t, env.DB, "Ada Admin", "ada@school.io", "s3cr3t!pwd", "Sunrise Academy")
	lec := testutil.CreateLecturer(t, env.DB, inst.ID, "Leo Lecturer", "leo@school.io", "male")
	cls := testutil.CreateClass(t, env.DB, inst.ID, lec.ID, "Grade 7")
	student := testutil.CreateStudent(t, env.DB, inst.ID, cls.ID, "Sam Student", "sam@school.io", "male")

	fees, err := env.Fees.CreateParticulars(ctx, admin, fee.NewParticulars{Fees: []fee.NewParticular{{Title: "Tuition", Amount: dec("100")}}})
	require.NoError(t, err)
	require.Len(t, fees, 1)
	_, err = env.Fees.AssignToClass(ctx, admin, fee.ClassFeeAssignment{ClassID: cls.ID, Fees: []fee.ClassFeeEntry{{FeeID: fees[0].ID}}})
	require.NoError(t, err)
	_, err = env.Fees.GenerateStudentFee(ctx, admin, student.ID)
	require.NoError(t, err)

	return billing{env: env, admin: admin, classID: cls.ID, student: student, tuition: fees[0]}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestService_RecordPayment(t *testing.T) {
	b := newBilling(t)
	ctx := context.Background()
	pay := func(amount string) (fee.StudentFee, error) {
		sf, _, err := b.env.Fees.RecordPayment(ctx, b.admin, b.student.ID, fee.NewPayment{FeeID: b.tuition.ID, Amount: dec(amount)})
		return sf, err
	}

	sf, err := pay("60")
	require.NoError(t, err)
	assertDecimal(t, "40", sf.Balance)
	assert.Equal(t, fee.StatusPartial, sf.Status)

	// the second payment sees the first one
	_, err = pay("50")
	assert.ErrorIs(t, err, fee.ErrPaymentTooLarge)

	sf, err = b.env.Fees.StudentFee(ctx, b.admin.InstituteID, b.student.ID)
	require.NoError(t, err)
	assertDecimal(t, "40", sf.Balance)
	assertDecimal(t, "60", sf.Fees[0].Paid)
	require.Len(t, sf.Payments, 1)
	assertDecimal(t, "60", sf.Payments[0].Amount)

	sf, err = pay("40")
	require.NoError(t, err)
	assertDecimal(t, "0", sf.Balance)
	assert.Equal(t, fee.StatusPaid, sf.Status)
	assert.Len(t, sf.Payments, 2)

	_, err = pay("0.01")
	assert.ErrorIs(t, err, fee.ErrPaymentTooLarge)
}

func TestService_GenerateStudentFee_lowerAmount(t *testing.T) {
	b := newBilling(t)
	ctx := context.Background()

	_, _, err := b.env.Fees.RecordPayment(ctx, b.admin, b.student.ID, fee.NewPayment{FeeID: b.tuition.ID, Amount: dec("80")})
	require.NoError(t, err)

	lower := dec("50")
	_, err = b.env.Fees.AssignToClass(ctx, b.admin, fee.ClassFeeAssignment{
		ClassID: b.classID,
		Fees:    []fee.ClassFeeEntry{{FeeID: b.tuition.ID, Amount: &lower}},
	})
	require.NoError(t, err)

	sf, err := b.env.Fees.GenerateStudentFee(ctx, b.admin, b.student.ID)
	require.NoError(t, err)
	require.Len(t, sf.Fees, 1)
	assertDecimal(t, "50", sf.Fees[0].Paid)
	assertDecimal(t, "50", sf.TotalAmount)
	assertDecimal(t, "0", sf.Balance)
	assert.Equal(t, fee.StatusPaid, sf.Status)
}

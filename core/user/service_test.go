package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studman/core/user"
	"github.com/trezcool/studman/storage/database/gormrepos"
	"github.com/trezcool/studman/testutil"
)

// staleEmailCheck misses emails inserted since the lookup, as a concurrent request would.
type staleEmailCheck struct {
	user.Repository
}

func (staleEmailCheck) EmailExists(context.Context, string) (bool, error) { return false, nil }

func TestService_Register_emailTakenMeanwhile(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	admin, inst := testutil.CreateAdmin(t, env.DB, "Ada Admin", "ada@school.io", "s3cr3t!pwd", "Sunrise Academy")
	testutil.CreateStudent(t, env.DB, inst.ID, "", "Sam Student", "sam@school.io", "male")

	svc := user.NewService(staleEmailCheck{gormrepos.NewUserRepository(env.DB)}, env.Mail, env.Files, env.Logger, env.Conf)

	_, err := svc.Register(ctx, user.User{
		FullName:    "Sam Again",
		Email:       "sam@school.io",
		Role:        user.RoleStudent,
		Approved:    true,
		IsActive:    true,
		InstituteID: inst.ID,
	}, "s3cr3t!pwd", user.ErrStudentExists)
	assert.ErrorIs(t, err, user.ErrStudentExists)

	_, _, err = svc.CreateLecturer(ctx, admin, user.NewLecturer{
		FullName:        "Sam Lecturer",
		Email:           "sam@school.io",
		LecturerProfile: &user.LecturerProfile{Gender: "male"},
	})
	assert.ErrorIs(t, err, user.ErrLecturerExists)

	usr, err := svc.Register(ctx, user.User{
		FullName:    "Lia Lecturer",
		Email:       "lia@school.io",
		Role:        user.RoleLecturer,
		Approved:    true,
		IsActive:    true,
		InstituteID: inst.ID,
	}, "s3cr3t!pwd", user.ErrLecturerExists)
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
}

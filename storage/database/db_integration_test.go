//go:build integration

package database_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/fee"
	"github.com/trezcool/studman/core/theme"
	"github.com/trezcool/studman/core/user"
	"github.com/trezcool/studman/storage/database"
	"github.com/trezcool/studman/storage/database/gormrepos"
	"github.com/trezcool/studman/storage/database/sqlxrepos"
	"github.com/trezcool/studman/testutil"
)

// startPostgres runs a throwaway PostgreSQL server and returns a config pointing at it,
// with distinct admin and application roles.
func startPostgres(t *testing.T) *core.Config {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("postgres"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	conf := testutil.NewConfig()
	conf.Database = core.DatabaseConfig{
		Host:          host,
		Port:          portNum,
		Name:          "studman",
		User:          "studman",
		Password:      "studman-pwd",
		AdminUser:     "postgres",
		AdminPassword: "postgres",
		DisableTLS:    true,
		MaxIdleConns:  2,
		MaxOpenConns:  5,
	}
	return conf
}

func TestPostgres(t *testing.T) {
	conf := startPostgres(t)
	ctx := context.Background()

	// provisioning is idempotent
	require.NoError(t, database.CreateIfNotExist(conf))
	require.NoError(t, database.CreateIfNotExist(conf))

	db, err := database.Open(conf)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(ctx, sqlDB, "up"))
	require.NoError(t, database.Migrate(ctx, sqlDB, "status"))

	t.Run("users", func(t *testing.T) {
		repo := gormrepos.NewUserRepository(db)
		usr := testutil.CreateUser(t, db, user.User{
			FullName: "Ada Admin",
			Email:    "ada@school.io",
			Role:     user.RoleAdmin,
			IsActive: true,
		}, "s3cr3t!pwd")

		got, err := repo.GetByEmail(ctx, "ada@school.io")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.NoError(t, got.CheckPassword("s3cr3t!pwd"))

		_, err = repo.Create(ctx, user.User{ID: uuid.NewString(), FullName: "Dup", Email: "ada@school.io", Role: user.RoleAdmin, PasswordHash: []byte("x")})
		assert.ErrorIs(t, err, user.ErrEmailExists)

		_, err = repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("stats", func(t *testing.T) {
		sqlxDB, err := database.NewSQLX(db)
		require.NoError(t, err)

		s, err := sqlxrepos.NewStatsRepository(sqlxDB).System(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.Admins.Total)
		assert.Equal(t, int64(1), s.Admins.Pending)
		assert.Equal(t, int64(0), s.Students.Total)
	})

	t.Run("one active theme per institute", func(t *testing.T) {
		admin, inst := testutil.CreateAdmin(t, db, "Otto Other", "otto@school.io", "s3cr3t!pwd", "Sunrise Academy")
		repo := gormrepos.NewThemeRepository(db)
		now := time.Now().UTC()
		newTheme := func(name string) theme.Theme {
			return theme.Theme{
				ID: uuid.NewString(), Name: name, InstituteID: inst.ID, Colors: theme.DefaultColors(),
				FontFamily: theme.DefaultFontFamily, FontSize: theme.DefaultFontSize,
				IsActive: true, CreatedBy: admin.ID, CreatedAt: now, UpdatedAt: now,
			}
		}

		_, err := repo.Create(ctx, newTheme("Ocean"))
		require.NoError(t, err)
		_, err = repo.Create(ctx, newTheme("Forest"))
		assert.Error(t, err)
	})

	t.Run("student fee lock", func(t *testing.T) {
		_, inst := testutil.CreateAdmin(t, db, "Fay Finance", "fay@school.io", "s3cr3t!pwd", "Harbor College")
		lec := testutil.CreateLecturer(t, db, inst.ID, "Leo Lecturer", "leo@school.io", "male")
		cls := testutil.CreateClass(t, db, inst.ID, lec.ID, "Grade 7")
		student := testutil.CreateStudent(t, db, inst.ID, cls.ID, "Sam Student", "sam@school.io", "male")

		repo := gormrepos.NewFeeRepository(db)
		now := time.Now().UTC()
		_, err := repo.SaveStudentFee(ctx, fee.StudentFee{
			ID: uuid.NewString(), StudentID: student.ID, ClassID: cls.ID, InstituteID: inst.ID,
			Status: fee.StatusPaid, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)

		tx := gormrepos.NewTransactor(db)
		locked, release := make(chan struct{}), make(chan struct{})
		holder := make(chan error, 1)
		go func() {
			holder <- tx.WithinTx(ctx, func(ctx context.Context) error {
				if _, err := repo.LockStudentFee(ctx, student.ID); err != nil {
					return err
				}
				close(locked)
				<-release
				return nil
			})
		}()
		select {
		case <-locked:
		case err := <-holder:
			t.Fatalf("locking student fee: %v", err)
		}

		// plain reads are not blocked
		_, err = repo.GetStudentFee(ctx, student.ID)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		err = tx.WithinTx(waitCtx, func(ctx context.Context) error {
			_, err := repo.LockStudentFee(ctx, student.ID)
			return err
		})
		assert.Error(t, err, "a second writer must wait for the lock")

		close(release)
		require.NoError(t, <-holder)
		require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := repo.LockStudentFee(ctx, student.ID)
			return err
		}))
	})

	require.NoError(t, database.Migrate(ctx, sqlDB, "reset"))
}

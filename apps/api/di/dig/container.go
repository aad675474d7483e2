package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"gorm.io/gorm"

	echoapi "github.com/trezcool/studman/apps/api/echo"
	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/assignment"
	"github.com/trezcool/studman/core/attendance"
	"github.com/trezcool/studman/core/classroom"
	"github.com/trezcool/studman/core/fee"
	"github.com/trezcool/studman/core/feestructure"
	"github.com/trezcool/studman/core/institute"
	"github.com/trezcool/studman/core/result"
	"github.com/trezcool/studman/core/stats"
	"github.com/trezcool/studman/core/subject"
	"github.com/trezcool/studman/core/theme"
	"github.com/trezcool/studman/core/user"
	appfs "github.com/trezcool/studman/fs"
	cachesvc "github.com/trezcool/studman/services/cache"
	emailsvc "github.com/trezcool/studman/services/email"
	"github.com/trezcool/studman/services/filestore"
	logsvc "github.com/trezcool/studman/services/logger"
	"github.com/trezcool/studman/storage/database"
	"github.com/trezcool/studman/storage/database/gormrepos"
	"github.com/trezcool/studman/storage/database/sqlxrepos"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// CacheCloser releases the cache connection pool.
	CacheCloser func() error
)

func newLogger(base *logsvc.Logger) core.Logger {
	return base.Named("api")
}

func newDBLogger(base *logsvc.Logger) core.Logger {
	return base.Named("db")
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*gorm.DB, *sqlx.DB) {
	setUp := func() (*gorm.DB, *sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, errors.Wrap(err, "getting sql.DB")
		}
		if err = database.Migrate(context.Background(), sqlDB, "up"); err != nil {
			return nil, nil, err
		}

		sqlxDB, err := database.NewSQLX(db)
		if err != nil {
			return nil, nil, err
		}
		return db, sqlxDB, nil
	}

	db, sqlxDB, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, sqlxDB
}

func newEmailTemplates(conf *core.Config) (*core.EmailTemplates, error) {
	return core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf)
}

func newEmailService(conf *core.Config, tmpls *core.EmailTemplates, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, tmpls, logger)
	}
	return emailsvc.NewSendgridService(conf, tmpls, logger)
}

func newCache(conf *core.Config) (core.Cache, CacheCloser, error) {
	c, closeFn, err := cachesvc.New(context.Background(), conf)
	return c, closeFn, err
}

func newFileStore(conf *core.Config) (core.FileStore, error) {
	return filestore.New(context.Background(), conf)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	// infrastructure
	must(c.Provide(core.NewConfig))
	must(c.Provide(func(conf *core.Config) *logsvc.Logger { return logsvc.New(os.Stdout, conf) }))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(gormrepos.NewTransactor, dig.As(new(core.Transactor))))
	must(c.Provide(newEmailTemplates))
	must(c.Provide(newEmailService))
	must(c.Provide(newCache))
	must(c.Provide(newFileStore))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))

	// repositories
	must(c.Provide(gormrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(gormrepos.NewInstituteRepository, dig.As(new(institute.Repository))))
	must(c.Provide(gormrepos.NewClassRepository, dig.As(new(classroom.Repository))))
	must(c.Provide(gormrepos.NewSubjectRepository, dig.As(new(subject.Repository))))
	must(c.Provide(gormrepos.NewAssignmentRepository, dig.As(new(assignment.Repository))))
	must(c.Provide(gormrepos.NewAttendanceRepository, dig.As(new(attendance.Repository))))
	must(c.Provide(sqlxrepos.NewAttendanceReports, dig.As(new(attendance.ReportRepository))))
	must(c.Provide(gormrepos.NewResultRepository, dig.As(new(result.Repository))))
	must(c.Provide(gormrepos.NewFeeRepository, dig.As(new(fee.Repository))))
	must(c.Provide(gormrepos.NewFeeStructureRepository, dig.As(new(feestructure.Repository))))
	must(c.Provide(gormrepos.NewThemeRepository, dig.As(new(theme.Repository))))
	must(c.Provide(sqlxrepos.NewStatsRepository, dig.As(new(stats.Repository))))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(institute.NewService))
	must(c.Provide(classroom.NewService))
	must(c.Provide(subject.NewService))
	must(c.Provide(assignment.NewService))
	must(c.Provide(attendance.NewService))
	must(c.Provide(result.NewService))
	must(c.Provide(fee.NewService))
	must(c.Provide(feestructure.NewService))
	must(c.Provide(theme.NewService))
	must(c.Provide(stats.NewService))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

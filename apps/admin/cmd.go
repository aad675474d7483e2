package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"

	"github.com/trezcool/studman/core"
	"github.com/trezcool/studman/core/user"
	appfs "github.com/trezcool/studman/fs"
	emailsvc "github.com/trezcool/studman/services/email"
	"github.com/trezcool/studman/services/filestore"
	"github.com/trezcool/studman/storage/database/gormrepos"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp             = errors.New("help provided")
	errPasswordMismatch = errors.New("passwords do not match")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	out    io.Writer
	openDB func() (*gorm.DB, error)

	db     *gorm.DB
	usrSvc *user.Service
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args[1:])
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Operator commands for the studman API",
		Args:          cobra.ArbitraryArgs, // unknown commands fall through to usage
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.AddCommand(
		cli.migrateCmd(),
		cli.createDBCmd(),
		cli.createSuperAdminCmd(),
		cli.resetPasswordCmd(),
	)
	return root
}

// connect opens the application database on first use.
func (cli *commandLine) connect() (*gorm.DB, error) {
	if cli.db != nil {
		return cli.db, nil
	}
	db, err := cli.openDB()
	if err != nil {
		return nil, err
	}
	cli.db = db
	return db, nil
}

func (cli *commandLine) userService() (*user.Service, error) {
	if cli.usrSvc != nil {
		return cli.usrSvc, nil
	}
	db, err := cli.connect()
	if err != nil {
		return nil, err
	}
	tmpls, err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, cli.conf)
	if err != nil {
		return nil, err
	}
	cli.usrSvc = user.NewService(
		gormrepos.NewUserRepository(db),
		emailsvc.NewConsoleService(cli.conf, tmpls, cli.logger),
		filestore.NewLocalStore(cli.conf.Storage.LocalDir, cli.conf.Storage.PublicURL),
		cli.logger,
		cli.conf,
	)
	return cli.usrSvc, nil
}

func (cli *commandLine) close() {
	if cli.db == nil {
		return
	}
	if sqlDB, err := cli.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	cli.db = nil
}

// promptPassword reads a password twice without echoing it.
func (cli *commandLine) promptPassword() (string, error) {
	read := func(prompt string) (string, error) {
		_, _ = fmt.Fprint(cli.out, prompt)
		pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
		_, _ = fmt.Fprintln(cli.out)
		return string(pwd), err
	}

	pwd, err := read("Enter password: ")
	if err != nil {
		return "", err
	}
	if pwd == "" {
		return "", errHelp
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if confirm != pwd {
		return "", errPasswordMismatch
	}
	return pwd, nil
}

// validatePassword applies the password policy of user accounts to pwd.
func validatePassword(usr user.User, pwd string) error {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	rp := user.ResetPassword{NewPassword: pwd}
	err := rp.Validate(validate, usr)
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		return errors.New(vErrs[0].Translate(translator))
	}
	return err
}

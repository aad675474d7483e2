package main

import (
	"os"

	"gorm.io/gorm"

	"github.com/trezcool/studman/core"
	logsvc "github.com/trezcool/studman/services/logger"
	"github.com/trezcool/studman/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.New(os.Stdout, conf).Named("admin")

	// start CLI
	cli := &commandLine{
		conf:   conf,
		logger: logger,
		out:    os.Stdout,
		openDB: func() (*gorm.DB, error) { return database.Open(conf) },
	}
	err := cli.run(os.Args)
	cli.close()
	if err != nil && err != errHelp {
		logger.Error("command failed", err)
	}
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

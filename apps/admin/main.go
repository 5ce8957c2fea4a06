package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/class"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/user"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
	logsvc "github.com/filmsfather/CampusWoodieVer2/services/logger"
	"github.com/filmsfather/CampusWoodieVer2/storage/database"
	sqlxrepos "github.com/filmsfather/CampusWoodieVer2/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer db.Close()
	if err = database.SetupMigrations(db); err != nil {
		logger.Fatal("setting up migrations", err)
	}

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	workbook.InitValidators(validate, translator)

	// start CLI
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db))
	cli := commandLine{
		db:         db,
		usrSvc:     usrSvc,
		classSvc:   class.NewService(sqlxrepos.NewClassRepository(db), usrSvc),
		wbSvc:      workbook.NewService(db, sqlxrepos.NewWorkbookRepository(db), srs.SystemClock),
		validate:   validate,
		translator: translator,
		out:        os.Stdout,
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

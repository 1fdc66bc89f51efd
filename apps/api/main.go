package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/fbasso/maestro/apps/api/echo"
	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/calendar"
	"github.com/fbasso/maestro/core/class"
	"github.com/fbasso/maestro/core/dashboard"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
	"github.com/fbasso/maestro/core/teacher"
	"github.com/fbasso/maestro/core/user"
	emailsvc "github.com/fbasso/maestro/services/email"
	logsvc "github.com/fbasso/maestro/services/logger"
	"github.com/fbasso/maestro/storage/database"
	sqlxrepos "github.com/fbasso/maestro/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	switch {
	case conf.Debug:
		mailSvc = emailsvc.NewConsoleService(conf)
	case conf.SendgridAPIKey != "":
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	default:
		// calendar link emails report a service-unavailable condition
		logger.Warn("no mail credentials configured; outgoing email disabled")
	}

	userRepo := sqlxrepos.NewUserRepository(db)
	teacherRepo := sqlxrepos.NewTeacherRepository(db)
	classRepo := sqlxrepos.NewClassRepository(db)
	moduleRepo := sqlxrepos.NewModuleRepository(db)
	lessonRepo := sqlxrepos.NewLessonRepository(db)

	usrSvc := user.NewService(userRepo, conf)
	tchSvc := teacher.NewService(teacherRepo)
	clsSvc := class.NewService(classRepo)
	modSvc := module.NewService(moduleRepo, lessonRepo)
	lsnSvc := lesson.NewService(lessonRepo)
	dashSvc := dashboard.NewService(moduleRepo, lessonRepo)
	calSvc := calendar.NewService(teacherRepo, lessonRepo, mailSvc, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	lesson.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	if _, created, err := usrSvc.EnsureAdmin(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("ensuring admin account: %v", err), err)
	} else if created {
		logger.Info(fmt.Sprintf("bootstrap admin account created for %q", conf.AdminEmail))
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			TeacherSvc:   tchSvc,
			ClassSvc:     clsSvc,
			ModuleSvc:    modSvc,
			LessonSvc:    lsnSvc,
			DashboardSvc: dashSvc,
			CalendarSvc:  calSvc,
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

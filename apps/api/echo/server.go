package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/calendar"
	"github.com/fbasso/maestro/core/class"
	"github.com/fbasso/maestro/core/dashboard"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
	"github.com/fbasso/maestro/core/teacher"
	"github.com/fbasso/maestro/core/user"
)

type (
	ServerDeps struct {
		Conf         *core.Config
		Logger       core.Logger
		UserSvc      user.ServiceInterface
		TeacherSvc   teacher.ServiceInterface
		ClassSvc     class.ServiceInterface
		ModuleSvc    module.ServiceInterface
		LessonSvc    lesson.ServiceInterface
		DashboardSvc dashboard.ServiceInterface
		CalendarSvc  calendar.ServiceInterface
		Validate     *validator.Validate
		Translator   ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAuthAPI(api, s.deps.UserSvc, conf, s.deps.Validate)
	registerCalendarAPI(api, s.deps.CalendarSvc)
	registerTeacherAPI(api, jwt, s.deps.TeacherSvc, s.deps.CalendarSvc, s.deps.Validate)
	registerClassAPI(api, jwt, s.deps.ClassSvc, s.deps.Validate)
	registerModuleAPI(api, jwt, s.deps.ModuleSvc, s.deps.Validate)
	registerLessonAPI(api, jwt, s.deps.LessonSvc, s.deps.Validate)
	registerDashboardAPI(api, jwt, s.deps.DashboardSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown triggers a graceful shutdown when an integrity fault
// surfaces in a handler.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Maestro API!")
}

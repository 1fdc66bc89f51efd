package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/calendar"
	"github.com/fbasso/maestro/core/class"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
	"github.com/fbasso/maestro/core/teacher"
	"github.com/fbasso/maestro/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch cause := errors.Cause(err); cause {
		case user.ErrNotFound, teacher.ErrNotFound, class.ErrNotFound, module.ErrNotFound, lesson.ErrNotFound:
			code = http.StatusNotFound
			message = cause.Error()
		case user.ErrEmailExists, teacher.ErrEmailExists:
			code = http.StatusConflict
			message = cause.Error()
		case teacher.ErrDeleteBlocked, class.ErrDeleteBlocked, module.ErrDeleteBlocked:
			code = http.StatusConflict
			message = cause.Error()
		case module.ErrTeacherMissing, module.ErrClassMissing, lesson.ErrModuleNotFound:
			// dangling reference in a write payload
			code = http.StatusBadRequest
			message = cause.Error()
		case calendar.ErrMailNotConfigured:
			code = http.StatusServiceUnavailable
			message = cause.Error()
		default:
			code, message = resolveHTTPError(ctx, err, logger, translator, signalShutdown)
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func resolveHTTPError(
	ctx echo.Context,
	err error,
	logger core.Logger,
	translator ut.Translator,
	signalShutdown func(),
) (int, interface{}) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, origErr.Message
		}
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		return origErr.Code, origErr.Message
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		return http.StatusBadRequest, fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs
		}
		return http.StatusBadRequest, origErr.Error()
	default: // any other error is a server error
		msg := http.StatusText(http.StatusInternalServerError)

		var usr user.User
		if claims, cErr := getContextClaims(ctx); cErr == nil {
			usr.ID = claims.Subject
			usr.Name = claims.Name
			usr.Email = claims.Email
		}
		logger.Error(msg, errors.Wrap(err, msg), usr)

		// shutting down...
		if core.IsShutdown(err) {
			signalShutdown()
		}
		return http.StatusInternalServerError, msg
	}
}

package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/calendar"
	"github.com/fbasso/maestro/core/class"
	"github.com/fbasso/maestro/core/dashboard"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/module"
	"github.com/fbasso/maestro/core/teacher"
	"github.com/fbasso/maestro/core/user"
	emailsvc "github.com/fbasso/maestro/services/email"
	dummydb "github.com/fbasso/maestro/storage/database/dummy"
	testutil "github.com/fbasso/maestro/tests"
)

type testApp struct {
	server Server
	conf   *core.Config

	userRepo    user.Repository
	teacherRepo teacher.Repository
	classRepo   class.Repository
	moduleRepo  module.Repository
	lessonRepo  lesson.Repository
}

func setup(t *testing.T, withMail bool) *testApp {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "maestro",
		SecretKey: "secret",
		BaseURL:   "http://localhost:8000",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
	}

	db, err := dummydb.Open()
	require.NoError(t, err)

	app := &testApp{
		conf:        conf,
		userRepo:    dummydb.NewUserRepository(db),
		teacherRepo: dummydb.NewTeacherRepository(db),
		classRepo:   dummydb.NewClassRepository(db),
		moduleRepo:  dummydb.NewModuleRepository(db),
		lessonRepo:  dummydb.NewLessonRepository(db),
	}

	var mailSvc core.EmailService
	if withMail {
		conf.WorkDir = filepath.Join("..", "..", "..")
		core.ParseEmailTemplates(conf, nopLogger{})
		mailSvc = emailsvc.NewConsoleServiceMock(conf)
	}

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	lesson.InitValidators(validate, translator)

	app.server = NewServer(ServerDeps{
		Conf:         conf,
		Logger:       nopLogger{},
		UserSvc:      user.NewService(app.userRepo, conf),
		TeacherSvc:   teacher.NewService(app.teacherRepo),
		ClassSvc:     class.NewService(app.classRepo),
		ModuleSvc:    module.NewService(app.moduleRepo, app.lessonRepo),
		LessonSvc:    lesson.NewService(app.lessonRepo),
		DashboardSvc: dashboard.NewService(app.moduleRepo, app.lessonRepo),
		CalendarSvc:  calendar.NewService(app.teacherRepo, app.lessonRepo, mailSvc, conf),
		Validate:     validate,
		Translator:   translator,
	})
	return app
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func (app *testApp) token(t *testing.T) string {
	t.Helper()
	usr := testutil.CreateUser(t, app.userRepo, "Admin", "admin@test.it", "s3cr3tpwd", true)
	token, err := GenerateToken(app.conf, GetUserClaims(app.conf, usr))
	require.NoError(t, err)
	return token
}

func (app *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buff bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buff).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buff)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestAuthRequired(t *testing.T) {
	app := setup(t, false)

	for _, path := range []string{
		"/api/teachers",
		"/api/classes",
		"/api/modules",
		"/api/lessons",
		"/api/dashboard/stats",
	} {
		rec := app.request(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestLogin(t *testing.T) {
	app := setup(t, false)
	testutil.CreateUser(t, app.userRepo, "Admin", "admin@test.it", "s3cr3tpwd", true)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{name: "ok", body: LoginRequest{Email: "admin@test.it", Password: "s3cr3tpwd"}, wantCode: http.StatusOK},
		{name: "wrong password", body: LoginRequest{Email: "admin@test.it", Password: "nope"}, wantCode: http.StatusBadRequest},
		{name: "unknown email", body: LoginRequest{Email: "ghost@test.it", Password: "s3cr3tpwd"}, wantCode: http.StatusBadRequest},
		{name: "missing fields", body: LoginRequest{}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(t, http.MethodPost, "/api/login", "", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				decode(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)

				// the token must open authed endpoints
				authed := app.request(t, http.MethodGet, "/api/teachers", resp.Token, nil)
				assert.Equal(t, http.StatusOK, authed.Code)
			}
		})
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	app := setup(t, false)
	testutil.CreateUser(t, app.userRepo, "Gone", "gone@test.it", "s3cr3tpwd", false)

	rec := app.request(t, http.MethodPost, "/api/login", "",
		LoginRequest{Email: "gone@test.it", Password: "s3cr3tpwd"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTeacherCRUD(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)

	// create
	rec := app.request(t, http.MethodPost, "/api/teachers", token,
		teacher.NewTeacher{Name: "Anna Bianchi", Email: "ANNA@test.it "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tch teacher.Teacher
	decode(t, rec, &tch)
	assert.Equal(t, "anna@test.it", tch.Email) // cleaned and lowered
	assert.True(t, tch.IsInternal)             // defaulted
	assert.Equal(t, teacher.DefaultColor, tch.Color)

	// duplicate email is rejected
	rec = app.request(t, http.MethodPost, "/api/teachers", token,
		teacher.NewTeacher{Name: "Other", Email: "anna@test.it"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")

	// invalid email is rejected
	rec = app.request(t, http.MethodPost, "/api/teachers", token,
		teacher.NewTeacher{Name: "Other", Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// retrieve
	rec = app.request(t, http.MethodGet, "/api/teachers/"+tch.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// partial update keeps unset fields
	phone := "+39 055 1234567"
	rec = app.request(t, http.MethodPut, "/api/teachers/"+tch.ID, token,
		teacher.UpdateTeacher{Phone: &phone})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &tch)
	assert.Equal(t, "Anna Bianchi", tch.Name)
	assert.Equal(t, phone, tch.Phone)

	// unknown id
	rec = app.request(t, http.MethodGet, "/api/teachers/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// delete
	rec = app.request(t, http.MethodDelete, "/api/teachers/"+tch.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.request(t, http.MethodGet, "/api/teachers/"+tch.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeacherDeleteBlocked(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)

	tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Bianchi", "anna@test.it")
	cls := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)
	testutil.CreateModule(t, app.moduleRepo, "Go Programming", 40, tch.ID, cls.ID)

	rec := app.request(t, http.MethodDelete, "/api/teachers/"+tch.ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the teacher must still be there
	rec = app.request(t, http.MethodGet, "/api/teachers/"+tch.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestModuleHours(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)

	tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Bianchi", "anna@test.it")
	cls := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)
	mod := testutil.CreateModule(t, app.moduleRepo, "Go Programming", 10, tch.ID, cls.ID)
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	testutil.CreateLesson(t, app.lessonRepo, mod.ID, day, "09:00", "17:00", false) // 8h of 10

	rec := app.request(t, http.MethodGet, "/api/modules", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []ModuleResponse
	decode(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, 8.0, resp[0].DeliveredHours)
	assert.Equal(t, 2.0, resp[0].RemainingHours)
	assert.Equal(t, "critical", resp[0].Criticality)
}

func TestModuleDanglingRefs(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)
	cls := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)

	rec := app.request(t, http.MethodPost, "/api/modules", token,
		module.NewModule{Name: "Go Programming", TotalHours: 40, TeacherID: "ghost", ClassID: cls.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModuleFilterByClass(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)

	tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Bianchi", "anna@test.it")
	clsA := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)
	clsB := testutil.CreateClass(t, app.classRepo, "ITS 2023", 2, false)
	testutil.CreateModule(t, app.moduleRepo, "Go Programming", 40, tch.ID, clsA.ID)
	testutil.CreateModule(t, app.moduleRepo, "Databases", 20, tch.ID, clsB.ID)

	rec := app.request(t, http.MethodGet, "/api/modules?class="+clsA.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []ModuleResponse
	decode(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "Go Programming", resp[0].Name)
}

func TestLessonCRUD(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)

	tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Bianchi", "anna@test.it")
	cls := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)
	mod := testutil.CreateModule(t, app.moduleRepo, "Go Programming", 40, tch.ID, cls.ID)

	// hours are derived server-side
	rec := app.request(t, http.MethodPost, "/api/lessons", token, lesson.NewLesson{
		ModuleID:  mod.ID,
		Date:      time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "13:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var lsn lesson.Lesson
	decode(t, rec, &lsn)
	assert.Equal(t, 4.0, lsn.Hours)

	// end before start is rejected
	rec = app.request(t, http.MethodPost, "/api/lessons", token, lesson.NewLesson{
		ModuleID:  mod.ID,
		Date:      time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		StartTime: "13:00",
		EndTime:   "09:00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "end_time")

	// changing the times recomputes the hours
	rec = app.request(t, http.MethodPut, "/api/lessons/"+lsn.ID, token,
		lesson.UpdateLesson{EndTime: "11:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &lsn)
	assert.Equal(t, 2.0, lsn.Hours)

	// date range filter
	rec = app.request(t, http.MethodGet, "/api/lessons?from=2024-03-11&to=2024-03-11", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details []lesson.Detail
	decode(t, rec, &details)
	assert.Len(t, details, 1)

	rec = app.request(t, http.MethodGet, "/api/lessons?from=2024-03-12", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	details = nil
	decode(t, rec, &details)
	assert.Empty(t, details)

	// malformed date filter
	rec = app.request(t, http.MethodGet, "/api/lessons?from=next-week", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// delete unblocks the module
	rec = app.request(t, http.MethodDelete, "/api/lessons/"+lsn.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.request(t, http.MethodDelete, "/api/modules/"+mod.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDashboardStats(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)

	tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Bianchi", "anna@test.it")
	cls := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)
	mod := testutil.CreateModule(t, app.moduleRepo, "Go Programming", 40, tch.ID, cls.ID)
	future := lesson.Day(time.Now().UTC().AddDate(0, 0, 7))
	testutil.CreateLesson(t, app.lessonRepo, mod.ID, future, "09:00", "13:00", true)

	rec := app.request(t, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dashboard.Stats
	decode(t, rec, &stats)
	assert.Equal(t, 40, stats.TotalHours)
	assert.Equal(t, 4.0, stats.DeliveredHours)
	assert.Equal(t, 1, stats.ActiveModules)
	require.NotNil(t, stats.NextExam)
	assert.Equal(t, "Go Programming", stats.NextExam.ModuleName)

	rec = app.request(t, http.MethodGet, "/api/dashboard/upcoming", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var upcoming []lesson.Detail
	decode(t, rec, &upcoming)
	assert.Len(t, upcoming, 1)
}

func TestCalendarFeed(t *testing.T) {
	app := setup(t, false)

	tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Maria Bianchi", "anna@test.it")
	cls := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)
	mod := testutil.CreateModule(t, app.moduleRepo, "Go Programming", 40, tch.ID, cls.ID)
	testutil.CreateLesson(t, app.lessonRepo, mod.ID, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "09:00", "13:00", false)

	// no credentials needed
	rec := app.request(t, http.MethodGet, "/api/calendar/ical/"+tch.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Anna_Maria_Bianchi_calendar.ics")
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Go Programming")

	// unknown teacher
	rec = app.request(t, http.MethodGet, "/api/calendar/ical/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendCalendarLink(t *testing.T) {
	t.Run("mail not configured", func(t *testing.T) {
		app := setup(t, false)
		token := app.token(t)
		tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Bianchi", "anna@test.it")

		rec := app.request(t, http.MethodPost, "/api/teachers/"+tch.ID+"/send-calendar", token, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("mail configured", func(t *testing.T) {
		app := setup(t, true)
		token := app.token(t)
		tch := testutil.CreateTeacher(t, app.teacherRepo, "Anna Bianchi", "anna@test.it")
		sentBefore := len(emailsvc.SentMessages)

		rec := app.request(t, http.MethodPost, "/api/teachers/"+tch.ID+"/send-calendar", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		// the mock sends synchronously
		require.Len(t, emailsvc.SentMessages, sentBefore+1)
		msg := emailsvc.SentMessages[sentBefore]
		assert.Equal(t, "anna@test.it", msg.To[0].Address)
		assert.Contains(t, msg.TextContent, "/api/calendar/ical/"+tch.ID)
	})

	t.Run("unknown teacher", func(t *testing.T) {
		app := setup(t, true)
		token := app.token(t)

		rec := app.request(t, http.MethodPost, "/api/teachers/ghost/send-calendar", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestClassActive(t *testing.T) {
	app := setup(t, false)
	token := app.token(t)

	testutil.CreateClass(t, app.classRepo, "ITS 2022", 3, false)
	active := testutil.CreateClass(t, app.classRepo, "ITS 2024", 1, true)

	rec := app.request(t, http.MethodGet, "/api/classes/active", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cls class.Class
	decode(t, rec, &cls)
	assert.Equal(t, active.ID, cls.ID)

	// none active
	appEmpty := setup(t, false)
	tokenEmpty := appEmpty.token(t)
	rec = appEmpty.request(t, http.MethodGet, "/api/classes/active", tokenEmpty, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

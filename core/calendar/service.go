package calendar

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/lesson"
	"github.com/fbasso/maestro/core/teacher"
)

// ErrMailNotConfigured signals that the mail dependency has no credentials;
// the caller should report a service-unavailable condition.
var ErrMailNotConfigured = errors.New("email service not configured")

type (
	ServiceInterface interface {
		TeacherFeed(ctx context.Context, teacherID string) (Feed, error)
		SendFeedLink(ctx context.Context, teacherID string) error
	}

	Service struct {
		teacherRepo teacher.Repository
		lessonRepo  lesson.Repository
		mailSvc     core.EmailService
		conf        *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(teacherRepo teacher.Repository, lessonRepo lesson.Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		teacherRepo: teacherRepo,
		lessonRepo:  lessonRepo,
		mailSvc:     mailSvc,
		conf:        conf,
	}
}

// TeacherFeed builds the iCalendar document for all lessons of modules
// owned by the teacher, ordered by date ascending. It is generated on
// demand from the current persisted state, never cached, so subscribed
// calendar clients always see the latest schedule.
func (svc *Service) TeacherFeed(ctx context.Context, teacherID string) (Feed, error) {
	tch, err := svc.teacherRepo.GetTeacherByID(ctx, teacherID)
	if err != nil {
		return Feed{}, err
	}

	lessons, err := svc.lessonRepo.QueryLessons(ctx, &lesson.QueryFilter{TeacherID: tch.ID})
	if err != nil {
		return Feed{}, errors.Wrap(err, "querying teacher lessons")
	}

	return BuildFeed(tch, lessons)
}

type feedLinkData struct {
	TeacherName string
	CalendarURL string
}

// SendFeedLink emails the teacher the stable subscription link to their
// feed. The store is never touched; a missing mail configuration is
// reported as ErrMailNotConfigured.
func (svc *Service) SendFeedLink(ctx context.Context, teacherID string) error {
	if svc.mailSvc == nil {
		return ErrMailNotConfigured
	}

	tch, err := svc.teacherRepo.GetTeacherByID(ctx, teacherID)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: tch.Name, Address: tch.Email}},
		Subject:      "Il tuo calendario lezioni",
		TemplateName: "calendar-link",
		TemplateData: feedLinkData{
			TeacherName: tch.Name,
			CalendarURL: svc.conf.BaseURL + FeedPath(tch.ID),
		},
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

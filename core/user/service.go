package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	ServiceInterface interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		ResetPassword(ctx context.Context, email, pwd string) (User, error)
		EnsureAdmin(ctx context.Context) (User, bool, error)
	}

	Service struct {
		repo Repository
		conf *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

func (svc *Service) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// ResetPassword replaces the password of the account registered under email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// EnsureAdmin creates the bootstrap admin account from configuration if it
// does not exist yet. It reports whether an account was created.
func (svc *Service) EnsureAdmin(ctx context.Context) (User, bool, error) {
	if svc.conf.AdminEmail == "" || svc.conf.AdminPassword == "" {
		return User{}, false, nil
	}

	email := core.CleanString(svc.conf.AdminEmail, true /* lower */)
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	switch errors.Cause(err) {
	case nil:
		return usr, false, nil
	case ErrNotFound:
		usr, err = svc.Create(ctx, NewUser{Name: "Admin", Email: email, Password: svc.conf.AdminPassword})
		if err != nil {
			return User{}, false, errors.Wrap(err, "creating bootstrap admin")
		}
		return usr, true, nil
	default:
		return User{}, false, err
	}
}

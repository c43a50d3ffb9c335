package services

import (
	"errors"

	"github.com/monocle-dev/taskcalendar/internal/auth"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrConflict        = errors.New("username already registered")
	ErrUnauthorized    = errors.New("incorrect username or password")
	ErrNotFound        = errors.New("task not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidCategory = errors.New("category does not exist")
)

// Notifier is told about every successful change to a user's data.
type Notifier interface {
	Notify(userID uint, resource string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, string) {}

// Service implements accounts, tasks and categories on top of gorm. It holds
// no per-request state; each call derives its own session from db.
type Service struct {
	db        *gorm.DB
	tokens    *auth.TokenService
	passwords *auth.PasswordHasher
	notifier  Notifier
	log       *logrus.Logger
}

type Options struct {
	DB        *gorm.DB
	Tokens    *auth.TokenService
	Passwords *auth.PasswordHasher
	Notifier  Notifier
	Logger    *logrus.Logger
}

func New(opts Options) *Service {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Service{
		db:        opts.DB,
		tokens:    opts.Tokens,
		passwords: opts.Passwords,
		notifier:  notifier,
		log:       log,
	}
}

func (s *Service) notify(userID uint, resource string) {
	s.notifier.Notify(userID, resource)
}

// Package service implements the task, category, tag and account services on
// top of a record Store. The same services back the HTTP API and the
// client's local fallback.
package service

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Options tune a Service.
type Options struct {
	// SoftDelete marks tasks deleted instead of removing them so the
	// deletion survives a merge with another record set.
	SoftDelete bool
	// PasswordCost is the bcrypt cost; zero uses bcrypt.DefaultCost.
	PasswordCost int
}

// Service implements the CRUD operations.
type Service struct {
	store  Store
	tokens TokenIssuer
	opts   Options
	logger *log.Logger

	now   func() time.Time
	newID func() string
}

// New creates a Service. tokens may be nil when login is not needed.
func New(store Store, tokens TokenIssuer, opts Options, logger *log.Logger) *Service {
	if store == nil {
		panic("service.New: store is nil")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	return &Service{
		store:  store,
		tokens: tokens,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

package service

import (
	"time"

	"github.com/google/uuid"
)

type settings struct {
	loadLatency     time.Duration
	mutationLatency time.Duration
	loanPeriodDays  int
	now             func() time.Time
	newID           func() string
}

func defaultSettings() settings {
	return settings{
		loadLatency:     DefaultLoadLatency,
		mutationLatency: DefaultMutationLatency,
		loanPeriodDays:  DefaultLoanPeriodDays,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
}

// Option tunes a SessionService or CatalogService.
type Option func(*settings)

// WithLatency overrides the simulated load and mutation delays. Zero disables a delay.
func WithLatency(load, mutation time.Duration) Option {
	return func(s *settings) {
		s.loadLatency = load
		s.mutationLatency = mutation
	}
}

// WithLoanPeriod sets the loan length in calendar days.
func WithLoanPeriod(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.loanPeriodDays = days
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the record id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *settings) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func applyOptions(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

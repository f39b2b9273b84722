package trading

import (
	"github.com/greenmangroup/options-tracker/internal/domain"
)

// ExpireJob transitions open option trades past their expiration to
// expired. Runs nightly.
type ExpireJob struct {
	service *Service
}

// NewExpireJob creates the expiration job
func NewExpireJob(service *Service) *ExpireJob {
	return &ExpireJob{service: service}
}

// Name returns the job name
func (j *ExpireJob) Name() string {
	return "expire_trades"
}

// Run expires everything past its expiration as of today
func (j *ExpireJob) Run() error {
	_, err := j.service.ExpireOpenTrades(domain.Today())
	return err
}

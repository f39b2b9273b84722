package tickers

import (
	"context"
	"time"
)

// RefreshNamesJob fills in company names for tickers still showing their
// bare symbol. Best effort; lookup failures are absorbed.
type RefreshNamesJob struct {
	service *Service
}

// NewRefreshNamesJob creates the name refresh job
func NewRefreshNamesJob(service *Service) *RefreshNamesJob {
	return &RefreshNamesJob{service: service}
}

// Name returns the job name
func (j *RefreshNamesJob) Name() string {
	return "refresh_ticker_names"
}

// Run refreshes all unnamed tickers
func (j *RefreshNamesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err := j.service.RefreshUnnamed(ctx)
	return err
}

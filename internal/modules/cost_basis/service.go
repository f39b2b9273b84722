package cost_basis

import (
	"github.com/rs/zerolog"
)

// Service groups ledger entries into per-(account, ticker) summaries
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new cost-basis service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "cost_basis").Logger(),
	}
}

// Summaries returns one Summary per (account, ticker) scope that has ledger
// entries, optionally filtered by account and/or symbol. Totals come from
// the last entry of each scope.
func (s *Service) Summaries(accountID int64, symbol string) ([]Summary, error) {
	entries, err := s.repo.ListEntries(accountID, symbol)
	if err != nil {
		return nil, err
	}

	var summaries []Summary
	var current *Summary
	for _, e := range entries {
		if current == nil || current.AccountID != e.AccountID || current.Symbol != e.Symbol {
			if current != nil {
				summaries = append(summaries, *current)
			}
			current = &Summary{
				AccountID:   e.AccountID,
				Symbol:      e.Symbol,
				CompanyName: e.CompanyName,
			}
		}
		current.Entries = append(current.Entries, e)
		current.TotalShares = e.RunningShares
		current.TotalBasis = e.RunningBasis
		current.BasisPerShare = e.BasisPerShare
	}
	if current != nil {
		summaries = append(summaries, *current)
	}
	return summaries, nil
}

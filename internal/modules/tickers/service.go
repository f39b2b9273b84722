package tickers

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Service resolves company display names, cache first. Lookup failures are
// absorbed: callers always get a usable name (worst case the symbol itself).
type Service struct {
	repo   *Repository
	client NameClient
	log    zerolog.Logger
}

// NewService creates a new ticker name service
func NewService(repo *Repository, client NameClient, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		client: client,
		log:    log.With().Str("service", "tickers").Logger(),
	}
}

// DisplayName returns the cached company name for a symbol, fetching and
// caching it from the provider when the cache only holds the bare symbol.
func (s *Service) DisplayName(ctx context.Context, symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	ticker, err := s.repo.GetBySymbol(symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Name cache lookup failed")
		return symbol
	}
	if ticker != nil && ticker.CompanyName != "" && ticker.CompanyName != symbol {
		return ticker.CompanyName
	}

	name, ok := s.fetchName(ctx, symbol)
	if !ok {
		return symbol
	}

	if err := s.repo.UpdateCompanyName(symbol, name); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache company name")
	}
	return name
}

// RefreshUnnamed fetches display names for tickers still showing their bare
// symbol. Used by the weekly scheduler job.
func (s *Service) RefreshUnnamed(ctx context.Context) (int, error) {
	unnamed, err := s.repo.ListUnnamed()
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, t := range unnamed {
		name, ok := s.fetchName(ctx, t.Symbol)
		if !ok {
			continue
		}
		if err := s.repo.UpdateCompanyName(t.Symbol, name); err != nil {
			s.log.Warn().Err(err).Str("symbol", t.Symbol).Msg("Failed to cache company name")
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *Service) fetchName(ctx context.Context, symbol string) (string, bool) {
	if s.client == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	matches, err := s.client.Search(ctx, symbol)
	if err != nil {
		s.log.Debug().Err(err).Str("symbol", symbol).Msg("Name lookup failed")
		return "", false
	}

	for _, m := range matches {
		if strings.EqualFold(m.Symbol, symbol) {
			return m.Name, true
		}
	}
	return "", false
}

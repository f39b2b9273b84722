package reports

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/domain"
	"github.com/greenmangroup/options-tracker/internal/modules/accounts"
	"github.com/greenmangroup/options-tracker/internal/modules/cash_flows"
)

// Service computes read-only report summaries. Balance and flow totals come
// from the owning repositories; trade aggregations query the store directly.
type Service struct {
	db       *database.DB
	accounts *accounts.Repository
	flows    *cash_flows.Repository
	log      zerolog.Logger
}

// NewService creates a new reports service
func NewService(db *database.DB, accountsRepo *accounts.Repository,
	flows *cash_flows.Repository, log zerolog.Logger) *Service {
	return &Service{
		db:       db,
		accounts: accountsRepo,
		flows:    flows,
		log:      log.With().Str("service", "reports").Logger(),
	}
}

// Bankroll builds the bankroll summary for an account: starting balance
// plus deposits and collected premiums, less margin capital committed to
// open and assigned positions, broken down by trade kind. The optional
// date range narrows the premium window; statusFilter narrows the
// margin-in-use side.
func (s *Service) Bankroll(accountID int64, from, to string, statusFilter domain.TradeStatus) (*BankrollSummary, error) {
	summary := &BankrollSummary{AccountID: accountID}

	balance, err := s.accounts.StartingBalance(accountID)
	if err != nil {
		return nil, err
	}
	summary.StartingBalance = balance

	deposits, err := s.flows.NetDeposits(accountID)
	if err != nil {
		return nil, err
	}
	summary.NetDeposits = deposits

	premiums, err := s.flows.NetPremiums(accountID, from, to)
	if err != nil {
		return nil, err
	}
	summary.NetPremiums = premiums

	kindQuery := `
		SELECT trade_kind, COUNT(*),
		       COALESCE(SUM(net_credit_per_share * quantity * 100), 0),
		       COALESCE(SUM(margin_capital), 0)
		FROM trades
		WHERE account_id = ?
	`
	kindArgs := []interface{}{accountID}
	if statusFilter != "" {
		kindQuery += ` AND status = ?`
		kindArgs = append(kindArgs, string(statusFilter))
	} else {
		// Margin stays committed while a position can still be exercised.
		kindQuery += ` AND status IN ('open', 'assigned')`
	}
	kindQuery += ` GROUP BY trade_kind ORDER BY trade_kind`

	rows, err := s.db.Query(kindQuery, kindArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to group trades by kind: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b KindBreakdown
		if err := rows.Scan(&b.Kind, &b.OpenTrades, &b.NetPremiums, &b.MarginCapital); err != nil {
			return nil, fmt.Errorf("failed to scan kind breakdown: %w", err)
		}
		summary.ByKind = append(summary.ByKind, b)
		summary.MarginCapitalInUse += b.MarginCapital
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary.Available = domain.Round2(summary.StartingBalance + summary.NetDeposits +
		summary.NetPremiums - summary.MarginCapitalInUse)
	return summary, nil
}

// TradeStats aggregates outcome statistics: expired and closed credit
// trades count as wins (premium kept), assigned as losses. Premium moments
// are computed over per-trade collected premiums.
func (s *Service) TradeStats(accountID int64) (*TradeSummary, error) {
	summary := &TradeSummary{AccountID: accountID}

	rows, err := s.db.Query(`
		SELECT status, trade_kind, quantity, COALESCE(net_credit_per_share, 0), arorc
		FROM trades WHERE account_id = ?
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var premiums, arorcs []float64
	for rows.Next() {
		var status, kindRaw string
		var quantity int64
		var net float64
		var arorc *float64
		if err := rows.Scan(&status, &kindRaw, &quantity, &net, &arorc); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		summary.TotalTrades++
		kind := domain.TradeKind(kindRaw)

		switch domain.TradeStatus(status) {
		case domain.StatusOpen:
			summary.OpenTrades++
		case domain.StatusExpired, domain.StatusClosed, domain.StatusRoll:
			if kind.IsCreditOption() {
				summary.Wins++
			}
		case domain.StatusAssigned:
			summary.Losses++
		}

		if kind.IsCreditOption() {
			premium := net * float64(quantity*kind.SharesPerUnit())
			premiums = append(premiums, premium)
			summary.TotalPremiums += premium
		}
		if arorc != nil {
			arorcs = append(arorcs, *arorc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if decided := summary.Wins + summary.Losses; decided > 0 {
		summary.WinRate = domain.Round1(float64(summary.Wins) / float64(decided) * 100)
	}
	if len(premiums) > 0 {
		summary.MeanPremium = domain.Round2(stat.Mean(premiums, nil))
		if len(premiums) > 1 {
			summary.StdDevPremium = domain.Round2(stat.StdDev(premiums, nil))
		}
	}
	if len(arorcs) > 0 {
		summary.MeanARORC = domain.Round1(stat.Mean(arorcs, nil))
	}
	summary.TotalPremiums = domain.Round2(summary.TotalPremiums)

	now := time.Now()
	yearDays := 365
	if now.Year()%4 == 0 && (now.Year()%100 != 0 || now.Year()%400 == 0) {
		yearDays = 366
	}
	summary.DaysDone = now.YearDay()
	summary.DaysRemaining = yearDays - now.YearDay()

	return summary, nil
}

// PremiumChart returns monthly premium income for an account, oldest first
func (s *Service) PremiumChart(accountID int64) ([]ChartPoint, error) {
	rows, err := s.db.Query(`
		SELECT substr(transaction_date, 1, 7) AS month, COALESCE(SUM(amount), 0)
		FROM cash_flows
		WHERE account_id = ?
		  AND transaction_type IN ('SELL_PUT', 'SELL_CALL', 'PREMIUM_CREDIT', 'PREMIUM_DEBIT')
		GROUP BY month ORDER BY month ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to build premium chart: %w", err)
	}
	defer rows.Close()

	var points []ChartPoint
	for rows.Next() {
		var p ChartPoint
		if err := rows.Scan(&p.Month, &p.Premiums); err != nil {
			return nil, fmt.Errorf("failed to scan chart point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

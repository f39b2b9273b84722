package trading

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/options-tracker/internal/database"
	"github.com/greenmangroup/options-tracker/internal/domain"
	"github.com/greenmangroup/options-tracker/internal/modules/cash_flows"
	"github.com/greenmangroup/options-tracker/internal/modules/cost_basis"
	"github.com/greenmangroup/options-tracker/internal/modules/tickers"
)

// ErrInvalidTransition is returned for lifecycle transitions the state
// machine does not support.
var ErrInvalidTransition = fmt.Errorf("invalid status transition")

// Service orchestrates trade entry and lifecycle transitions together with
// their ledger and cash-flow side effects. Every multi-step mutation runs
// in a single transaction.
type Service struct {
	db      *database.DB
	trades  *Repository
	ledger  *cost_basis.Repository
	flows   *cash_flows.Repository
	tickers *tickers.Repository
	rates   RateResolver
	log     zerolog.Logger
}

// NewService creates a new trading service
func NewService(db *database.DB, trades *Repository, ledger *cost_basis.Repository,
	flows *cash_flows.Repository, tickerRepo *tickers.Repository, rates RateResolver,
	log zerolog.Logger) *Service {
	return &Service{
		db:      db,
		trades:  trades,
		ledger:  ledger,
		flows:   flows,
		tickers: tickerRepo,
		rates:   rates,
		log:     log.With().Str("service", "trading").Logger(),
	}
}

// CreateTradeRequest carries trade entry fields
type CreateTradeRequest struct {
	AccountID     int64   `json:"account_id"`
	Symbol        string  `json:"ticker"`
	Kind          string  `json:"trade_kind"`
	TradeDate     string  `json:"trade_date"`
	Expiration    string  `json:"expiration_date"`
	Quantity      int64   `json:"quantity"`
	CreditDebit   float64 `json:"credit_debit"`
	CurrentPrice  float64 `json:"current_price"`
	Strike        float64 `json:"strike_price"`
	MarginPercent float64 `json:"margin_percent"`
}

// CreateTrade records a new trade with resolved commission and computed
// derived fields, plus the ledger entry and cash flow its kind calls for.
func (s *Service) CreateTrade(req CreateTradeRequest) (*Trade, error) {
	kind, err := domain.ParseTradeKind(req.Kind)
	if err != nil {
		return nil, err
	}

	trade := &Trade{
		AccountID:     req.AccountID,
		Kind:          kind,
		Status:        domain.StatusOpen,
		TradeDate:     req.TradeDate,
		Expiration:    req.Expiration,
		Quantity:      req.Quantity,
		CreditDebit:   req.CreditDebit,
		CurrentPrice:  req.CurrentPrice,
		Strike:        req.Strike,
		MarginPercent: req.MarginPercent,
		Symbol:        req.Symbol,
	}
	if trade.MarginPercent == 0 {
		trade.MarginPercent = 100
	}
	if err := trade.Validate(); err != nil {
		return nil, err
	}

	if kind.RequiresExpiration() {
		dte, err := domain.DaysBetween(trade.TradeDate, trade.Expiration)
		if err != nil {
			return nil, err
		}
		trade.DTE = dte
	}

	tickerID, err := s.tickers.GetOrCreate(req.Symbol)
	if err != nil {
		return nil, err
	}
	trade.TickerID = tickerID

	commission, err := s.rates.ResolveRate(trade.AccountID, trade.TradeDate)
	if err != nil {
		return nil, err
	}
	trade.Commission = commission
	trade.Recompute()

	err = s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := s.trades.CreateTx(tx, trade); err != nil {
			return err
		}
		return s.recordOpeningTx(tx, trade)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("trade_id", trade.ID).
		Str("kind", string(kind)).
		Str("ticker", trade.Symbol).
		Int64("quantity", trade.Quantity).
		Msg("Trade created")
	return trade, nil
}

// recordOpeningTx writes the ledger entry and cash flow for a freshly
// entered trade. Stock trades move shares but no premium, so they get a
// ledger entry only.
func (s *Service) recordOpeningTx(tx *sql.Tx, trade *Trade) error {
	switch {
	case trade.Kind.IsCreditOption():
		premium := trade.CreditDebit * float64(trade.SharesTotal())
		entry, err := s.ledger.AppendTx(tx, cost_basis.Entry{
			AccountID:   trade.AccountID,
			TickerID:    trade.TickerID,
			TradeID:     &trade.ID,
			Date:        trade.TradeDate,
			Description: openDescription(trade),
			SharesDelta: 0,
			PerShare:    trade.CreditDebit,
			AmountDelta: -premium,
		})
		if err != nil {
			return err
		}

		flowKind := domain.FlowSellPut
		if trade.Kind.IsCall() {
			flowKind = domain.FlowSellCall
		}
		cfID, err := s.flows.CreateTx(tx, &cash_flows.CashFlow{
			AccountID:   trade.AccountID,
			Date:        trade.TradeDate,
			Kind:        flowKind,
			Amount:      premium,
			Description: entry.Description,
			TradeID:     &trade.ID,
			TickerID:    &trade.TickerID,
		})
		if err != nil {
			return err
		}
		return s.ledger.LinkCashFlowTx(tx, entry.ID, cfID)

	case trade.Kind == domain.KindBuyToOpen:
		_, err := s.ledger.AppendTx(tx, cost_basis.Entry{
			AccountID:   trade.AccountID,
			TickerID:    trade.TickerID,
			TradeID:     &trade.ID,
			Date:        trade.TradeDate,
			Description: fmt.Sprintf("BUY %d %s @ %.2f", trade.Quantity, trade.Symbol, trade.CreditDebit),
			SharesDelta: trade.Quantity,
			PerShare:    trade.CreditDebit,
			AmountDelta: float64(trade.Quantity) * trade.CreditDebit,
		})
		return err

	case trade.Kind == domain.KindSellToClose:
		_, err := s.ledger.AppendTx(tx, cost_basis.Entry{
			AccountID:   trade.AccountID,
			TickerID:    trade.TickerID,
			TradeID:     &trade.ID,
			Date:        trade.TradeDate,
			Description: fmt.Sprintf("SELL %d %s @ %.2f", trade.Quantity, trade.Symbol, trade.CreditDebit),
			SharesDelta: -trade.Quantity,
			PerShare:    trade.CreditDebit,
			AmountDelta: -(float64(trade.Quantity) * trade.CreditDebit),
		})
		return err
	}
	return nil
}

// UpdateTradeRequest carries editable trade fields
type UpdateTradeRequest struct {
	TradeDate     string  `json:"trade_date"`
	Expiration    string  `json:"expiration_date"`
	Quantity      int64   `json:"quantity"`
	CreditDebit   float64 `json:"credit_debit"`
	CurrentPrice  float64 `json:"current_price"`
	Strike        float64 `json:"strike_price"`
	MarginPercent float64 `json:"margin_percent"`
}

// UpdateTrade edits a trade's entry fields, re-resolves its commission and
// recomputes derived fields. When the edit completes a roll child's
// economics, the roll-diagonal ledger entry is written exactly once.
func (s *Service) UpdateTrade(id int64, req UpdateTradeRequest) (*Trade, error) {
	trade, err := s.trades.Get(id)
	if err != nil {
		return nil, err
	}

	trade.TradeDate = req.TradeDate
	trade.Expiration = req.Expiration
	trade.Quantity = req.Quantity
	trade.CreditDebit = req.CreditDebit
	trade.CurrentPrice = req.CurrentPrice
	trade.Strike = req.Strike
	if req.MarginPercent > 0 {
		trade.MarginPercent = req.MarginPercent
	}
	if err := trade.Validate(); err != nil {
		return nil, err
	}

	if trade.Kind.RequiresExpiration() {
		dte, err := domain.DaysBetween(trade.TradeDate, trade.Expiration)
		if err != nil {
			return nil, err
		}
		trade.DTE = dte
	}

	commission, err := s.rates.ResolveRate(trade.AccountID, trade.TradeDate)
	if err != nil {
		return nil, err
	}
	trade.Commission = commission
	trade.Recompute()

	err = s.db.WithTx(func(tx *sql.Tx) error {
		if err := s.trades.UpdateTx(tx, trade); err != nil {
			return err
		}
		return s.completeRollTx(tx, trade)
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// completeRollTx writes the roll-diagonal ledger entry and premium cash
// flow once a roll child's strike and credit are filled in. Guarded by the
// description marker so repeat edits never duplicate it.
func (s *Service) completeRollTx(tx *sql.Tx, trade *Trade) error {
	if trade.ParentTradeID == nil || !trade.Kind.IsCreditOption() {
		return nil
	}
	if trade.Strike <= 0 || trade.CreditDebit <= 0 || trade.Expiration == "" {
		return nil
	}

	exists, err := s.ledger.HasEntryWithMarkerTx(tx, trade.ID, cost_basis.RollMarker)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	parent, err := s.trades.GetTx(tx, *trade.ParentTradeID)
	if err != nil {
		return err
	}

	premium := trade.CreditDebit * float64(trade.SharesTotal())
	description := fmt.Sprintf("SELL -%d %s %s 100 %s/%s %.2f/%.2f %s @ %.2f",
		trade.Quantity, cost_basis.RollMarker, trade.Symbol,
		domain.FormatExpiration(trade.Expiration), domain.FormatExpiration(parent.Expiration),
		trade.Strike, parent.Strike, trade.Kind.OptionWord(), trade.CreditDebit)

	entry, err := s.ledger.AppendTx(tx, cost_basis.Entry{
		AccountID:   trade.AccountID,
		TickerID:    trade.TickerID,
		TradeID:     &trade.ID,
		Date:        trade.TradeDate,
		Description: description,
		SharesDelta: 0,
		PerShare:    trade.CreditDebit,
		AmountDelta: -premium,
	})
	if err != nil {
		return err
	}

	cfID, err := s.flows.CreateTx(tx, &cash_flows.CashFlow{
		AccountID:   trade.AccountID,
		Date:        trade.TradeDate,
		Kind:        domain.FlowPremiumCredit,
		Amount:      premium,
		Description: description,
		TradeID:     &trade.ID,
		TickerID:    &trade.TickerID,
	})
	if err != nil {
		return err
	}

	s.log.Info().Int64("trade_id", trade.ID).Int64("parent_trade_id", parent.ID).
		Msg("Roll completed")
	return s.ledger.LinkCashFlowTx(tx, entry.ID, cfID)
}

// UpdateStatus transitions a trade's lifecycle state, applying ledger and
// cash-flow side effects. Returns the created child trade when the new
// status is roll, nil otherwise.
func (s *Service) UpdateStatus(id int64, newStatusRaw string) (*Trade, error) {
	newStatus, err := domain.ParseTradeStatus(newStatusRaw)
	if err != nil {
		return nil, err
	}

	trade, err := s.trades.Get(id)
	if err != nil {
		return nil, err
	}
	oldStatus := trade.Status

	// Resolved before the transaction: the pool holds a single connection,
	// so queries outside tx would block while it is open.
	var childCommission float64
	if newStatus == domain.StatusRoll {
		childCommission, err = s.rates.ResolveRate(trade.AccountID, domain.Today())
		if err != nil {
			return nil, err
		}
	}

	var child *Trade
	err = s.db.WithTx(func(tx *sql.Tx) error {
		if oldStatus == domain.StatusAssigned && newStatus != domain.StatusAssigned {
			if err := s.unassignTx(tx, trade); err != nil {
				return err
			}
		}

		switch newStatus {
		case domain.StatusAssigned:
			if err := s.assignTx(tx, trade); err != nil {
				return err
			}
		case domain.StatusRoll:
			if oldStatus != domain.StatusOpen {
				return fmt.Errorf("%w: %s -> roll", ErrInvalidTransition, oldStatus)
			}
			created, err := s.createRollChildTx(tx, trade, childCommission)
			if err != nil {
				return err
			}
			child = created
		}

		return s.trades.SetStatusTx(tx, trade.ID, oldStatus, newStatus)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("trade_id", trade.ID).
		Str("old_status", string(oldStatus)).
		Str("new_status", string(newStatus)).
		Msg("Trade status changed")
	return child, nil
}

// assignTx writes the assignment ledger entry and cash flow. Idempotent:
// a trade that already carries an assignment entry is left alone.
func (s *Service) assignTx(tx *sql.Tx, trade *Trade) error {
	if !trade.Kind.IsCreditOption() {
		return fmt.Errorf("%w: %s trades cannot be assigned", ErrInvalidTransition, trade.Kind)
	}

	exists, err := s.ledger.HasEntryWithPrefixTx(tx, trade.ID, cost_basis.AssignmentPrefix)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	shares := trade.SharesTotal()
	settlement := trade.Strike * float64(shares)

	sharesDelta := shares
	amountDelta := settlement
	flowAmount := -settlement
	if trade.Kind.IsCall() {
		// Called away: shares leave the position, cash comes in.
		sharesDelta = -shares
		amountDelta = -settlement
		flowAmount = settlement
	}

	// Assignment settles at expiration, for the ledger and the cash flow
	// alike.
	date := trade.Expiration
	if date == "" {
		date = trade.TradeDate
	}
	description := fmt.Sprintf("%s %d %s @ %.2f", cost_basis.AssignmentPrefix, shares, trade.Symbol, trade.Strike)

	entry, err := s.ledger.AppendTx(tx, cost_basis.Entry{
		AccountID:   trade.AccountID,
		TickerID:    trade.TickerID,
		TradeID:     &trade.ID,
		Date:        date,
		Description: description,
		SharesDelta: sharesDelta,
		PerShare:    trade.Strike,
		AmountDelta: amountDelta,
	})
	if err != nil {
		return err
	}

	cfID, err := s.flows.CreateTx(tx, &cash_flows.CashFlow{
		AccountID:   trade.AccountID,
		Date:        date,
		Kind:        domain.FlowAssignment,
		Amount:      flowAmount,
		Description: description,
		TradeID:     &trade.ID,
		TickerID:    &trade.TickerID,
	})
	if err != nil {
		return err
	}
	return s.ledger.LinkCashFlowTx(tx, entry.ID, cfID)
}

// unassignTx removes the assignment ledger entry and its cash flow,
// leaving the scope's running totals as if the assignment never happened.
func (s *Service) unassignTx(tx *sql.Tx, trade *Trade) error {
	cfID, err := s.ledger.DeleteAssignmentTx(tx, trade.ID)
	if err != nil {
		return err
	}
	if cfID != 0 {
		return s.flows.DeleteTx(tx, cfID)
	}
	return s.flows.DeleteByTradeAndKindTx(tx, trade.ID, domain.FlowAssignment)
}

// createRollChildTx creates the roll child: same account/ticker/kind,
// placeholder economics for the user to fill in.
func (s *Service) createRollChildTx(tx *sql.Tx, parent *Trade, commission float64) (*Trade, error) {
	child := &Trade{
		AccountID:     parent.AccountID,
		TickerID:      parent.TickerID,
		ParentTradeID: &parent.ID,
		Kind:          parent.Kind,
		Status:        domain.StatusOpen,
		TradeDate:     domain.Today(),
		Quantity:      1,
		MarginPercent: parent.MarginPercent,
		Commission:    commission,
		Symbol:        parent.Symbol,
	}
	child.Recompute()

	if _, err := s.trades.CreateTx(tx, child); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`
		INSERT INTO trade_status_history (trade_id, old_status, new_status)
		VALUES (?, NULL, 'open')
	`, child.ID); err != nil {
		return nil, fmt.Errorf("failed to record child status: %w", err)
	}
	return child, nil
}

// DeleteTrade removes a trade and its dependent ledger and cash-flow rows,
// then rebuilds the scope's running totals.
func (s *Service) DeleteTrade(id int64) error {
	trade, err := s.trades.Get(id)
	if err != nil {
		return err
	}

	return s.db.WithTx(func(tx *sql.Tx) error {
		if err := s.trades.DeleteTx(tx, id); err != nil {
			return err
		}
		return s.ledger.RecomputeScopeTx(tx, trade.AccountID, trade.TickerID)
	})
}

// ExpireOpenTrades marks open option trades past their expiration as
// expired. Returns the number of trades transitioned.
func (s *Service) ExpireOpenTrades(asOf string) (int, error) {
	expired, err := s.trades.ListExpiredOpen(asOf)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, trade := range expired {
		err := s.db.WithTx(func(tx *sql.Tx) error {
			return s.trades.SetStatusTx(tx, trade.ID, trade.Status, domain.StatusExpired)
		})
		if err != nil {
			return count, err
		}
		count++
	}
	if count > 0 {
		s.log.Info().Int("count", count).Msg("Expired open trades")
	}
	return count, nil
}

func openDescription(trade *Trade) string {
	return fmt.Sprintf("SELL -%d %s 100 %s %.2f %s @%.2f",
		trade.Quantity, trade.Symbol, domain.FormatExpiration(trade.Expiration),
		trade.Strike, trade.Kind.OptionWord(), trade.CreditDebit)
}

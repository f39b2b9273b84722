package database

// Schema is the full table layout for the ledger database.
//
// cost_basis.seq is a monotonic counter scoped per (account_id, ticker_id);
// running totals are a prefix sum over (transaction_date, seq) and must not
// depend on rowid insertion order.
//
// cost_basis.cash_flow_id is a write-once link set when the paired cash flow
// is created, never reassigned.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_name TEXT UNIQUE NOT NULL,
    account_type TEXT NOT NULL DEFAULT 'PRIMARY',
    start_date TEXT,
    starting_balance REAL NOT NULL DEFAULT 0.0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tickers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ticker TEXT NOT NULL COLLATE NOCASE UNIQUE,
    company_name TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS trades (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    ticker_id INTEGER NOT NULL,
    parent_trade_id INTEGER,
    trade_kind TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'open',
    trade_date TEXT NOT NULL,
    expiration_date TEXT,
    quantity INTEGER NOT NULL,
    credit_debit REAL NOT NULL,
    current_price REAL NOT NULL DEFAULT 0,
    strike_price REAL NOT NULL DEFAULT 0,
    days_to_expiration INTEGER NOT NULL DEFAULT 0,
    margin_percent REAL NOT NULL DEFAULT 100,
    commission_per_share REAL NOT NULL DEFAULT 0,
    net_credit_per_share REAL,
    risk_capital_per_share REAL,
    margin_capital REAL,
    arorc REAL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES accounts(id),
    FOREIGN KEY (ticker_id) REFERENCES tickers(id),
    FOREIGN KEY (parent_trade_id) REFERENCES trades(id)
);

CREATE TABLE IF NOT EXISTS cash_flows (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    transaction_date TEXT NOT NULL,
    transaction_type TEXT NOT NULL CHECK(transaction_type IN
        ('DEPOSIT', 'WITHDRAWAL', 'PREMIUM_CREDIT', 'PREMIUM_DEBIT',
         'SELL_PUT', 'SELL_CALL', 'ASSIGNMENT')),
    amount NUMERIC(12,2) NOT NULL,
    description TEXT,
    trade_id INTEGER,
    ticker_id INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES accounts(id),
    FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE,
    FOREIGN KEY (ticker_id) REFERENCES tickers(id)
);

CREATE TABLE IF NOT EXISTS cost_basis (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    ticker_id INTEGER NOT NULL,
    trade_id INTEGER,
    cash_flow_id INTEGER,
    transaction_date TEXT NOT NULL,
    seq INTEGER NOT NULL,
    description TEXT NOT NULL,
    shares INTEGER NOT NULL,
    cost_per_share REAL NOT NULL,
    total_amount REAL NOT NULL,
    running_basis REAL NOT NULL,
    running_shares INTEGER NOT NULL,
    basis_per_share REAL NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES accounts(id),
    FOREIGN KEY (ticker_id) REFERENCES tickers(id),
    FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE,
    FOREIGN KEY (cash_flow_id) REFERENCES cash_flows(id)
);

CREATE TABLE IF NOT EXISTS commissions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    commission_rate REAL NOT NULL,
    effective_date TEXT NOT NULL,
    notes TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES accounts(id)
);

CREATE TABLE IF NOT EXISTS trade_status_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    trade_id INTEGER NOT NULL,
    old_status TEXT,
    new_status TEXT NOT NULL,
    changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (trade_id) REFERENCES trades(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account_id);
CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker_id);
CREATE INDEX IF NOT EXISTS idx_trades_account_date ON trades(account_id, trade_date);
CREATE INDEX IF NOT EXISTS idx_trades_account_status ON trades(account_id, status);
CREATE INDEX IF NOT EXISTS idx_cost_basis_scope ON cost_basis(account_id, ticker_id, transaction_date, seq);
CREATE INDEX IF NOT EXISTS idx_cost_basis_trade ON cost_basis(trade_id);
CREATE INDEX IF NOT EXISTS idx_cash_flows_account_date ON cash_flows(account_id, transaction_date);
CREATE INDEX IF NOT EXISTS idx_cash_flows_account_type ON cash_flows(account_id, transaction_type);
CREATE INDEX IF NOT EXISTS idx_cash_flows_trade ON cash_flows(trade_id);
CREATE INDEX IF NOT EXISTS idx_commissions_account_date ON commissions(account_id, effective_date);
CREATE INDEX IF NOT EXISTS idx_status_history_trade ON trade_status_history(trade_id);
`

// Migrate ensures all tables and indexes exist
func (db *DB) Migrate() error {
	_, err := db.conn.Exec(Schema)
	return err
}

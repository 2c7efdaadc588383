package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mwolff/settlex/internal/domain"
)

// TickRow is one persisted market tick.
type TickRow struct {
	ID        int64     `db:"id"`
	At        time.Time `db:"at"`
	Commodity string    `db:"commodity"`
	Currency  string    `db:"currency"`
	Price     float64   `db:"price"`
	Amount    float64   `db:"amount"`
}

// DecisionRow is one persisted pricing decision.
type DecisionRow struct {
	ID     int64     `db:"id"`
	At     time.Time `db:"at"`
	Seller string    `db:"seller"`
	Cause  string    `db:"cause"`
	Delta  float64   `db:"delta"`
}

// Store is a Recorder backed by SQLite. Events are written synchronously;
// the core fires few enough of them per period that this stays off any
// hot path.
type Store struct {
	mu   sync.Mutex
	conn *sqlx.DB
}

// OpenStore opens or creates a SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate stats db: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS market_ticks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TIMESTAMP NOT NULL,
		commodity TEXT NOT NULL,
		currency TEXT NOT NULL,
		price REAL NOT NULL,
		amount REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS price_decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at TIMESTAMP NOT NULL,
		seller TEXT NOT NULL,
		cause TEXT NOT NULL,
		delta REAL NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *Store) MarketTick(price float64, commodity domain.Commodity, currency domain.Currency, amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.conn.Exec(
		`INSERT INTO market_ticks (at, commodity, currency, price, amount) VALUES (?, ?, ?, ?, ?)`,
		time.Now(), commodity.String(), string(currency), price, amount,
	)
}

func (s *Store) PriceDecision(seller domain.AgentID, cause string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.conn.Exec(
		`INSERT INTO price_decisions (at, seller, cause, delta) VALUES (?, ?, ?, ?)`,
		time.Now(), string(seller), cause, delta,
	)
}

// Ticks returns all persisted ticks for a commodity in insertion order.
func (s *Store) Ticks(commodity domain.Commodity) ([]TickRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []TickRow
	err := s.conn.Select(&rows,
		`SELECT id, at, commodity, currency, price, amount FROM market_ticks WHERE commodity = ? ORDER BY id`,
		commodity.String())
	return rows, err
}

// Decisions returns all persisted price decisions for a seller in insertion order.
func (s *Store) Decisions(seller domain.AgentID) ([]DecisionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []DecisionRow
	err := s.conn.Select(&rows,
		`SELECT id, at, seller, cause, delta FROM price_decisions WHERE seller = ? ORDER BY id`,
		string(seller))
	return rows, err
}

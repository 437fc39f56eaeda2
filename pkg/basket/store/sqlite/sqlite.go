package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/basket/pkg/basket/internalerr"
	"github.com/cognicore/basket/pkg/basket/normalize"
	"github.com/cognicore/basket/pkg/basket/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	// foreign_keys is per connection, so it goes in the DSN to reach every
	// connection of the pool
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	item_domain TEXT NOT NULL,
	min_item_support REAL NOT NULL,
	min_itemset_support REAL NOT NULL,
	min_confidence REAL NOT NULL,
	lift_distance REAL NOT NULL,
	include_negative INTEGER NOT NULL,
	sample_limit INTEGER NOT NULL,
	started_at TEXT,
	finished_at TEXT,
	transactions INTEGER NOT NULL,
	vocabulary INTEGER NOT NULL,
	itemset_count INTEGER NOT NULL,
	rule_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS itemsets (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	items TEXT NOT NULL,
	size INTEGER NOT NULL,
	support REAL NOT NULL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS rules (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	antecedents TEXT NOT NULL,
	consequents TEXT NOT NULL,
	antecedent_support REAL NOT NULL,
	consequent_support REAL NOT NULL,
	support REAL NOT NULL,
	confidence REAL NOT NULL,
	lift REAL NOT NULL,
	leverage REAL NOT NULL,
	conviction REAL,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_rules_lift ON rules(run_id, lift);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run with all of its rows
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run id is required", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := deleteRun(ctx, tx, r.ID); err != nil {
		return err
	}

	p := r.Params
	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (
	id, item_domain, min_item_support, min_itemset_support, min_confidence,
	lift_distance, include_negative, sample_limit, started_at, finished_at,
	transactions, vocabulary, itemset_count, rule_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		r.ID, string(p.Domain), p.MinItemSupport, p.MinItemsetSupport, p.MinConfidence,
		p.LiftDistance, p.IncludeNegativeCorrelations, p.SampleLimit,
		formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.Transactions, r.Vocabulary, len(r.Itemsets), len(r.Rules),
	)
	if err != nil {
		return err
	}

	if err := insertItemsets(ctx, tx, r.ID, r.Itemsets); err != nil {
		return err
	}
	if err := insertRules(ctx, tx, r.ID, r.Rules); err != nil {
		return err
	}

	return tx.Commit()
}

func insertItemsets(ctx context.Context, tx *sql.Tx, runID string, sets []store.Itemset) error {
	if len(sets) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO itemsets (run_id, position, items, size, support) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, set := range sets {
		items, err := json.Marshal(set.Items)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, i, string(items), len(set.Items), set.Support); err != nil {
			return err
		}
	}
	return nil
}

func insertRules(ctx context.Context, tx *sql.Tx, runID string, rs []store.Rule) error {
	if len(rs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO rules (
	run_id, position, antecedents, consequents, antecedent_support,
	consequent_support, support, confidence, lift, leverage, conviction
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range rs {
		ante, err := json.Marshal(r.Antecedents)
		if err != nil {
			return err
		}
		cons, err := json.Marshal(r.Consequents)
		if err != nil {
			return err
		}
		// infinite conviction is stored as NULL
		conviction := sql.NullFloat64{Float64: r.Conviction, Valid: !math.IsInf(r.Conviction, 0) && !math.IsNaN(r.Conviction)}
		if _, err := stmt.ExecContext(ctx, runID, i, string(ante), string(cons),
			r.AntecedentSupport, r.ConsequentSupport, r.Support, r.Confidence,
			r.Lift, r.Leverage, conviction); err != nil {
			return err
		}
	}
	return nil
}

const runColumns = `
	id, item_domain, min_item_support, min_itemset_support, min_confidence,
	lift_distance, include_negative, sample_limit, started_at, finished_at,
	transactions, vocabulary, itemset_count, rule_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var (
		r                 store.Run
		domain            string
		started, finished sql.NullString
	)
	err := row.Scan(
		&r.ID, &domain, &r.Params.MinItemSupport, &r.Params.MinItemsetSupport,
		&r.Params.MinConfidence, &r.Params.LiftDistance, &r.Params.IncludeNegativeCorrelations,
		&r.Params.SampleLimit, &started, &finished,
		&r.Transactions, &r.Vocabulary, &r.ItemsetCount, &r.RuleCount,
	)
	if err != nil {
		return store.Run{}, err
	}
	r.Params.Domain = normalize.Domain(domain)
	r.StartedAt = parseTime(started.String)
	r.FinishedAt = parseTime(finished.String)
	return r, nil
}

// GetRun retrieves a run header by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id=?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

// ListRuns returns run headers ordered by start time, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its rows
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	n, err := deleteRun(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return tx.Commit()
}

// deleteRun removes a run's rows and returns how many run headers went.
// Child rows are deleted explicitly so nothing depends on ON DELETE CASCADE.
func deleteRun(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	for _, q := range []string{
		`DELETE FROM itemsets WHERE run_id=?`,
		`DELETE FROM rules WHERE run_id=?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Itemsets returns the itemsets of a run in saved order
func (s *sqliteStore) Itemsets(ctx context.Context, runID string) ([]store.Itemset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT items, support FROM itemsets WHERE run_id=? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Itemset
	for rows.Next() {
		var (
			items string
			set   store.Itemset
		)
		if err := rows.Scan(&items, &set.Support); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(items), &set.Items); err != nil {
			return nil, err
		}
		out = append(out, set)
	}
	return out, rows.Err()
}

// Rules returns the rules of a run in saved order
func (s *sqliteStore) Rules(ctx context.Context, runID string) ([]store.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT antecedents, consequents, antecedent_support, consequent_support,
	support, confidence, lift, leverage, conviction
FROM rules WHERE run_id=? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Rule
	for rows.Next() {
		var (
			ante, cons string
			conviction sql.NullFloat64
			r          store.Rule
		)
		if err := rows.Scan(&ante, &cons, &r.AntecedentSupport, &r.ConsequentSupport,
			&r.Support, &r.Confidence, &r.Lift, &r.Leverage, &conviction); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ante), &r.Antecedents); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cons), &r.Consequents); err != nil {
			return nil, err
		}
		r.Conviction = math.Inf(1)
		if conviction.Valid {
			r.Conviction = conviction.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// timeLayout is fixed width so that started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

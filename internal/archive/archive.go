// Package archive persists simulation outcomes to SQLite so past runs can
// be listed and inspected. The simulation core is persistence-free; the
// archive is host-side plumbing used by the CLI.
package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nvandessel/polisim/internal/chamber"
	"github.com/nvandessel/polisim/internal/sim"
	"github.com/nvandessel/polisim/internal/vecmath"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    chamber TEXT NOT NULL,       -- chamber description path or label
    proposal TEXT NOT NULL,      -- JSON array
    config TEXT NOT NULL,        -- JSON
    rounds INTEGER NOT NULL,
    converged INTEGER NOT NULL,
    votes TEXT NOT NULL,         -- JSON map of member ID to vote
    yes INTEGER NOT NULL,
    no INTEGER NOT NULL,
    abstain INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Record is one archived run.
type Record struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	Chamber   string                  `json:"chamber"`
	Proposal  vecmath.Vector          `json:"proposal"`
	Config    sim.Config              `json:"config"`
	Rounds    int                     `json:"rounds"`
	Converged bool                    `json:"converged"`
	Votes     map[string]chamber.Vote `json:"votes"`
	Yes       int                     `json:"yes"`
	No        int                     `json:"no"`
	Abstain   int                     `json:"abstain"`
}

// Archive stores run records in a SQLite database.
type Archive struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the run archive at dir/runs.db.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with a single writer

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Save archives an outcome and returns the stored record. The run ID is a
// content-addressed hash of the proposal, config, and creation time.
func (a *Archive) Save(ctx context.Context, chamberLabel string, prop vecmath.Vector, cfg sim.Config, out *sim.Outcome) (*Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now().UTC()
	rec := &Record{
		ID:        runID(prop, cfg, now),
		CreatedAt: now,
		Chamber:   chamberLabel,
		Proposal:  prop,
		Config:    cfg,
		Rounds:    out.Rounds,
		Converged: out.Converged,
		Votes:     out.Votes,
	}
	for _, v := range out.Votes {
		switch v {
		case chamber.VoteYes:
			rec.Yes++
		case chamber.VoteNo:
			rec.No++
		default:
			rec.Abstain++
		}
	}

	proposalJSON, err := json.Marshal(rec.Proposal)
	if err != nil {
		return nil, fmt.Errorf("encoding proposal: %w", err)
	}
	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	votesJSON, err := json.Marshal(rec.Votes)
	if err != nil {
		return nil, fmt.Errorf("encoding votes: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, chamber, proposal, config, rounds, converged, votes, yes, no, abstain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.Format(time.RFC3339Nano), rec.Chamber,
		string(proposalJSON), string(configJSON),
		rec.Rounds, boolToInt(rec.Converged), string(votesJSON),
		rec.Yes, rec.No, rec.Abstain,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return rec, nil
}

// Get retrieves one record by ID. Returns nil if not found.
func (a *Archive) Get(ctx context.Context, id string) (*Record, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, created_at, chamber, proposal, config, rounds, converged, votes, yes, no, abstain
		FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying run %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanRecord(rows)
}

// List returns the most recent records, newest first, up to limit
// (<= 0 means no limit).
func (a *Archive) List(ctx context.Context, limit int) ([]*Record, error) {
	q := `SELECT id, created_at, chamber, proposal, config, rounds, converged, votes, yes, no, abstain
		FROM runs ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// scanRecord decodes one row into a Record.
func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var createdAt, proposalJSON, configJSON, votesJSON string
	var converged int

	err := rows.Scan(&rec.ID, &createdAt, &rec.Chamber, &proposalJSON, &configJSON,
		&rec.Rounds, &converged, &votesJSON, &rec.Yes, &rec.No, &rec.Abstain)
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run timestamp: %w", err)
	}
	if err := json.Unmarshal([]byte(proposalJSON), &rec.Proposal); err != nil {
		return nil, fmt.Errorf("decoding proposal: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &rec.Config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := json.Unmarshal([]byte(votesJSON), &rec.Votes); err != nil {
		return nil, fmt.Errorf("decoding votes: %w", err)
	}
	rec.Converged = converged != 0
	return &rec, nil
}

// runID creates a content-addressed hash ID for a run.
func runID(prop vecmath.Vector, cfg sim.Config, at time.Time) string {
	content := fmt.Sprintf("%v|%+v|%s", prop, cfg, at.Format(time.RFC3339Nano))
	hash := sha256.Sum256([]byte(content))
	return "run-" + hex.EncodeToString(hash[:])[:12]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

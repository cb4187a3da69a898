package catalog

import (
	"database/sql"
	"fmt"
	"time"
)

// Row is one cataloged molecule.
type Row struct {
	Source    string
	Record    int
	Name      string
	Formula   string
	NumAtoms  int
	NumBonds  int
	ChargeSum int
	HasQuery  bool
	Offset    int64
	BatchID   string
	CreatedAt time.Time
}

// Failure is one record that did not parse during ingest.
type Failure struct {
	Source  string
	Record  int
	Line    int
	Error   string
	BatchID string
}

// ByFormula returns all molecules with exactly the given Hill formula.
func (db *DB) ByFormula(formula string) ([]Row, error) {
	return db.queryRows(`WHERE formula = ?`, formula)
}

// SearchName returns molecules whose name contains the given substring.
func (db *DB) SearchName(substr string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}
	return db.queryRows(`WHERE name LIKE ? ORDER BY source, record LIMIT ?`,
		"%"+substr+"%", limit)
}

func (db *DB) queryRows(where string, args ...any) ([]Row, error) {
	rows, err := db.conn.Query(`
		SELECT source, record, name, formula, num_atoms, num_bonds,
		       charge_sum, has_query, offset, batch_id, created_at
		FROM molecules `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var hq int
		if err := rows.Scan(&r.Source, &r.Record, &r.Name, &r.Formula,
			&r.NumAtoms, &r.NumBonds, &r.ChargeSum, &hq,
			&r.Offset, &r.BatchID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan row: %w", err)
		}
		r.HasQuery = hq != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Failures returns the failed records of a batch in file order.
func (db *DB) Failures(batchID string) ([]Failure, error) {
	rows, err := db.conn.Query(`
		SELECT source, record, line, error, batch_id
		FROM failures WHERE batch_id = ? ORDER BY record`, batchID)
	if err != nil {
		return nil, fmt.Errorf("catalog: query failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Source, &f.Record, &f.Line, &f.Error, &f.BatchID); err != nil {
			return nil, fmt.Errorf("catalog: scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// BatchStats recounts a stored batch from the database.
func (db *DB) BatchStats(batchID string) (*Stats, error) {
	st := &Stats{BatchID: batchID}
	err := db.conn.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(source), '') FROM molecules WHERE batch_id = ?`,
		batchID).Scan(&st.Parsed, &st.Source)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("catalog: batch stats: %w", err)
	}
	err = db.conn.QueryRow(`SELECT COUNT(*) FROM failures WHERE batch_id = ?`,
		batchID).Scan(&st.Failed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("catalog: batch stats: %w", err)
	}
	st.Records = st.Parsed + st.Failed
	return st, nil
}

package catalog

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/clarablanes/rdkit/mol"
	"github.com/clarablanes/rdkit/molfile"
	"github.com/clarablanes/rdkit/sdf"
)

// Stats summarizes one ingest batch.
type Stats struct {
	BatchID string
	Source  string
	Records int
	Parsed  int
	Failed  int
	Took    time.Duration
}

// Ingest parses every record of the SD file at source and stores the
// results under a fresh batch id. Records parse concurrently (workers
// bounds the pool; <=0 means one); a record's parse failure lands in the
// failures table and never aborts the batch. Rows are written in one
// transaction so a crashed ingest leaves no partial batch behind.
func (db *DB) Ingest(ctx context.Context, source string, opts molfile.Options, workers int) (*Stats, error) {
	start := time.Now()
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("catalog: open source: %w", err)
	}
	defer f.Close()

	entries, err := sdf.BuildIndex(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: scan %s: %w", source, err)
	}

	if workers <= 0 {
		workers = 1
	}
	records := make([]*sdf.Record, len(entries))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			rec, err := sdf.ReadRecordAt(f, e.Offset, opts)
			if err != nil {
				return fmt.Errorf("catalog: record %d: %w", i+1, err)
			}
			rec.Index = i
			rec.Line = e.Line
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Stats{
		BatchID: uuid.NewString(),
		Source:  source,
		Records: len(records),
	}
	if err := db.storeBatch(source, stats.BatchID, records, stats); err != nil {
		return nil, err
	}
	stats.Took = time.Since(start)
	return stats, nil
}

func (db *DB) storeBatch(source, batchID string, records []*sdf.Record, stats *Stats) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	insMol, err := tx.Prepare(`
		INSERT OR REPLACE INTO molecules
			(source, record, name, formula, num_atoms, num_bonds, charge_sum, has_query, offset, batch_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("catalog: prepare molecule insert: %w", err)
	}
	defer insMol.Close()

	insFail, err := tx.Prepare(`
		INSERT OR REPLACE INTO failures (source, record, line, error, batch_id)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("catalog: prepare failure insert: %w", err)
	}
	defer insFail.Close()

	for _, rec := range records {
		if rec.Err != nil {
			stats.Failed++
			if _, err := insFail.Exec(source, rec.Index+1, rec.Line, rec.Err.Error(), batchID); err != nil {
				return fmt.Errorf("catalog: insert failure: %w", err)
			}
			continue
		}
		stats.Parsed++
		m := rec.Mol
		_, err := insMol.Exec(source, rec.Index+1, m.Name, m.Formula(),
			m.NumAtoms(), m.NumBonds(), chargeSum(m), boolInt(hasQuery(m)),
			rec.Offset, batchID)
		if err != nil {
			return fmt.Errorf("catalog: insert molecule: %w", err)
		}
	}
	return tx.Commit()
}

func chargeSum(m *mol.Mol) int {
	sum := 0
	for _, a := range m.Atoms() {
		sum += a.Charge
	}
	return sum
}

func hasQuery(m *mol.Mol) bool {
	for _, a := range m.Atoms() {
		if a.Query != nil {
			return true
		}
	}
	for _, b := range m.Bonds() {
		if b.Query != nil {
			return true
		}
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

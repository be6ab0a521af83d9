package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/mytree/internal/snapshot"
	"github.com/mesh-intelligence/mytree/pkg/types"
)

// Export writes snap into a fresh SQLite database at path, replacing any
// existing file. All rows are inserted in one transaction; on failure the
// file is removed.
func Export(ctx context.Context, path string, snap snapshot.Snapshot) (map[string]int, error) {
	return writeDatabase(ctx, path, snap.Tables())
}

func writeDatabase(ctx context.Context, path string, tables []snapshot.Table) (_ map[string]int, err error) {
	db, err := createDatabase(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		n, err := insertRows(ctx, tx, t.Name, t.Columns, t.Rows)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", t.Name, err)
		}
		counts[t.Name] = n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing export transaction: %w", err)
	}
	return counts, nil
}

// createDatabase removes any file at path and creates the schema.
func createDatabase(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("removing old snapshot: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			os.Remove(path)
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return db, nil
}

// insertRows inserts rows into table and returns how many were written.
func insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("inserting into %s: %w", table, err)
		}
	}
	return len(rows), nil
}

// Reader queries a snapshot written by Export.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenSnapshot opens an existing snapshot read-only. It returns
// types.ErrNotFound when path does not exist.
func OpenSnapshot(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	return &Reader{db: db, path: path}, nil
}

// Close releases the database handle.
func (r *Reader) Close() error { return r.db.Close() }

// Counts returns the number of rows in every snapshot table.
func (r *Reader) Counts(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(snapshot.Layouts))
	for _, l := range snapshot.Layouts {
		var n int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+l.Name).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s in %s: %w", l.Name, r.path, err)
		}
		out[l.Name] = n
	}
	return out, nil
}

const treesQuery = `SELECT t.id, t.nickname, t.status, t.sex, t.plant_date, t.location,
    t.yield_amount, s.id, s.name, b.id, b.batch_code,
    (SELECT COUNT(*) FROM tree_images ti WHERE ti.tree_id = t.id)
FROM trees t
LEFT JOIN strains s ON s.id = t.strain_id
LEFT JOIN batches b ON b.id = t.batch_id
ORDER BY t.id DESC`

// Trees returns the stored trees newest first with their strain and batch
// resolved. Images carry only their count.
func (r *Reader) Trees(ctx context.Context) ([]types.Tree, error) {
	rows, err := r.db.QueryContext(ctx, treesQuery)
	if err != nil {
		return nil, fmt.Errorf("querying trees: %w", err)
	}
	defer rows.Close()

	var out []types.Tree
	for rows.Next() {
		var (
			t                     types.Tree
			nickname, status, sex sql.NullString
			plantDate, location   sql.NullString
			yield                 sql.NullFloat64
			strainID, batchID     sql.NullInt64
			strainName, batchCode sql.NullString
			images                int
		)
		if err := rows.Scan(&t.ID, &nickname, &status, &sex, &plantDate, &location,
			&yield, &strainID, &strainName, &batchID, &batchCode, &images); err != nil {
			return nil, fmt.Errorf("scanning tree: %w", err)
		}
		t.Nickname, t.Status, t.Sex = nickname.String, status.String, sex.String
		t.PlantDate, t.Location = plantDate.String, location.String
		if yield.Valid {
			y := types.Decimal(yield.Float64)
			t.YieldAmount = &y
		}
		if strainID.Valid {
			t.Strain = &types.Strain{ID: strainID.Int64, Name: strainName.String}
		}
		if batchID.Valid {
			t.Batch = &types.Batch{ID: batchID.Int64, BatchCode: batchCode.String}
		}
		if images > 0 {
			t.Images = make([]types.Image, images)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Package index maintains an embedded SQLite query cache over the
// per-entity JSON documents. The documents stay the source of truth;
// the index only exists so listing and filtering a large project does
// not mean reading every file. It can be rebuilt from the documents at
// any time.
//
// The database runs embedded (ncruces/go-sqlite3) with WAL so readers
// are never blocked by the writer.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/voguefx/vogue/internal/entity"
)

// Row is the flattened projection of one entity document.
type Row struct {
	ID        string
	Kind      entity.Kind
	Name      string
	Label     string
	Status    string
	ParentID  string
	OwnerID   string
	Number    int
	Tags      []string
	Active    bool
	UpdatedAt time.Time
}

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens (creating if needed) the index database and prepares the
// schema. The caller must Close when done.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("index: create directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("index: open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("index: ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn, path: path}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.conn.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("index: %s: %w", pragma, err)
		}
	}

	if err := db.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: wal checkpoint failed: %v\n", err)
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("index: close database: %w", err)
	}
	db.conn = nil
	return nil
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		label TEXT,
		status TEXT,
		parent_id TEXT,
		owner_id TEXT,
		number INTEGER NOT NULL DEFAULT 0,
		tags TEXT,  -- JSON array
		active INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
	CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
	CREATE INDEX IF NOT EXISTS idx_entities_status ON entities(status);
	CREATE INDEX IF NOT EXISTS idx_entities_parent ON entities(parent_id);
	CREATE INDEX IF NOT EXISTS idx_entities_owner ON entities(owner_id);
	CREATE INDEX IF NOT EXISTS idx_entities_kind_name ON entities(kind, name);
	`
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("index: initialize schema: %w", err)
	}
	return nil
}

// Upsert inserts or replaces one row.
func (db *DB) Upsert(ctx context.Context, row Row) error {
	tagsJSON, err := json.Marshal(row.Tags)
	if err != nil {
		return fmt.Errorf("index: marshal tags: %w", err)
	}

	query := `
	INSERT INTO entities (id, kind, name, label, status, parent_id, owner_id, number, tags, active, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		kind = excluded.kind,
		name = excluded.name,
		label = excluded.label,
		status = excluded.status,
		parent_id = excluded.parent_id,
		owner_id = excluded.owner_id,
		number = excluded.number,
		tags = excluded.tags,
		active = excluded.active,
		updated_at = excluded.updated_at
	`
	_, err = db.conn.ExecContext(ctx, query,
		row.ID, string(row.Kind), row.Name, row.Label, row.Status,
		row.ParentID, row.OwnerID, row.Number, string(tagsJSON),
		boolToInt(row.Active), row.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("index: upsert %s: %w", row.ID, err)
	}
	return nil
}

// Delete removes one row. Missing rows are not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete %s: %w", id, err)
	}
	return nil
}

// Filter narrows a Find query. Zero values mean "any".
type Filter struct {
	Kind     entity.Kind
	Name     string
	Status   string
	Tag      string
	ParentID string
	Limit    int
}

// Find queries the index. Results are ordered by kind, then name.
func (db *DB) Find(ctx context.Context, f Filter) ([]Row, error) {
	var conditions []string
	var args []any

	if f.Kind != "" {
		conditions = append(conditions, "e.kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Name != "" {
		conditions = append(conditions, "e.name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.Status != "" {
		conditions = append(conditions, "e.status = ?")
		args = append(args, f.Status)
	}
	if f.ParentID != "" {
		conditions = append(conditions, "e.parent_id = ?")
		args = append(args, f.ParentID)
	}

	selectClause := "SELECT"
	if f.Tag != "" {
		selectClause += " DISTINCT"
	}
	query := selectClause + ` e.id, e.kind, e.name, e.label, e.status, e.parent_id,
	       e.owner_id, e.number, e.tags, e.active, e.updated_at
	FROM entities e
	`
	if f.Tag != "" {
		query += `, json_each(e.tags)`
		conditions = append(conditions, "json_each.value = ?")
		args = append(args, f.Tag)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.kind ASC, e.name ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: find: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Counts returns the number of indexed entities per kind.
func (db *DB) Counts(ctx context.Context) (map[entity.Kind]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT kind, COUNT(*) FROM entities GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("index: counts: %w", err)
	}
	defer rows.Close()

	out := make(map[entity.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("index: scan count: %w", err)
		}
		out[entity.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: iterate counts: %w", err)
	}
	return out, nil
}

// Clear drops every row, used before a rebuild.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}
	return nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var r Row
		var kind, tagsJSON, updatedAt string
		var parentID, ownerID, label, status sql.NullString
		var active int

		if err := rows.Scan(&r.ID, &kind, &r.Name, &label, &status,
			&parentID, &ownerID, &r.Number, &tagsJSON, &active, &updatedAt); err != nil {
			return nil, fmt.Errorf("index: scan row: %w", err)
		}
		r.Kind = entity.Kind(kind)
		r.Label = label.String
		r.Status = status.String
		r.ParentID = parentID.String
		r.OwnerID = ownerID.String
		r.Active = active != 0
		if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			r.UpdatedAt = t
		}
		if tagsJSON != "" && tagsJSON != "null" {
			if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
				return nil, fmt.Errorf("index: unmarshal tags: %w", err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: iterate rows: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

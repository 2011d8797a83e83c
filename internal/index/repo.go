package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// RecordRow represents a row in the adrs table.
type RecordRow struct {
	ID        string
	Path      string
	Title     string
	Status    string
	Checksum  string
	Scopes    []string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

// ReplaceSnapshot swaps the persisted analysis for a fresh one inside a
// single transaction: all records, edges, and issues are replaced together
// so readers never observe a half-updated snapshot.
func (db *DB) ReplaceSnapshot(records []models.DocumentRecord, edges []models.Edge, issues []models.Issue) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"issues", "edges", "adrs"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	ftsClear(tx)

	recStmt, err := tx.Prepare(`
		INSERT INTO adrs (id, path, title, status, checksum, scopes, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare record insert: %w", err)
	}
	defer recStmt.Close()

	for _, r := range records {
		scopesJSON, _ := json.Marshal(r.ImpactScope)
		tagsJSON, _ := json.Marshal(r.TechTags)
		if _, err := recStmt.Exec(r.ID, r.Path, r.Title, r.Status, r.Checksum,
			string(scopesJSON), string(tagsJSON), r.Body, r.UpdatedAt); err != nil {
			return fmt.Errorf("index: insert record %s: %w", r.ID, err)
		}
		if err := ftsUpsert(tx, r.ID, r.Title, r.Body, r.TechTags); err != nil {
			return err
		}
	}

	if len(edges) > 0 {
		edgeStmt, err := tx.Prepare(`INSERT OR IGNORE INTO edges (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare edge insert: %w", err)
		}
		defer edgeStmt.Close()
		for _, e := range edges {
			if _, err := edgeStmt.Exec(e.Source, e.Target); err != nil {
				return fmt.Errorf("index: insert edge: %w", err)
			}
		}
	}

	if len(issues) > 0 {
		issueStmt, err := tx.Prepare(`
			INSERT INTO issues (type, source, target, config_key, source_value, target_value, expected, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare issue insert: %w", err)
		}
		defer issueStmt.Close()
		for _, i := range issues {
			if _, err := issueStmt.Exec(i.Type, i.SourceID, i.TargetID, i.ConfigKey,
				i.SourceValue, i.TargetValue, i.Expected, i.Detail); err != nil {
				return fmt.Errorf("index: insert issue: %w", err)
			}
		}
	}

	return tx.Commit()
}

// GetRecord returns one persisted record by id.
func (db *DB) GetRecord(id string) (*RecordRow, error) {
	row := db.conn.QueryRow(`
		SELECT id, path, title, status, checksum, scopes, tags, updated_at
		FROM adrs WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get record: %w", err)
	}
	return rec, nil
}

// ListRecords returns paginated records with an optional status filter.
func (db *DB) ListRecords(limit, offset int, status string) ([]RecordRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = ?"
		args = append(args, status)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM adrs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count records: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := db.conn.Query(`
		SELECT id, path, title, status, checksum, scopes, tags, updated_at
		FROM adrs`+where+`
		ORDER BY id
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list records: %w", err)
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

// Graph returns the persisted dependency graph.
func (db *DB) Graph() ([]RecordRow, []models.Edge, error) {
	recs, _, err := db.ListRecords(500, 0, "")
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.conn.Query(`SELECT source, target FROM edges ORDER BY source, target`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: edges: %w", err)
	}
	defer rows.Close()

	var edges []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, nil, err
		}
		edges = append(edges, e)
	}
	return recs, edges, rows.Err()
}

// Dependents returns the ids of records that depend on id.
func (db *DB) Dependents(id string) ([]string, error) {
	return db.edgeColumn(`SELECT target FROM edges WHERE source = ? ORDER BY target`, id)
}

// Dependencies returns the ids that id depends on.
func (db *DB) Dependencies(id string) ([]string, error) {
	return db.edgeColumn(`SELECT source FROM edges WHERE target = ? ORDER BY source`, id)
}

// Issues returns every persisted issue from the latest analysis.
func (db *DB) Issues() ([]models.Issue, error) {
	rows, err := db.conn.Query(`
		SELECT type, source, target, config_key, source_value, target_value, expected, detail
		FROM issues
	`)
	if err != nil {
		return nil, fmt.Errorf("index: issues: %w", err)
	}
	defer rows.Close()

	var out []models.Issue
	for rows.Next() {
		var i models.Issue
		if err := rows.Scan(&i.Type, &i.SourceID, &i.TargetID, &i.ConfigKey,
			&i.SourceValue, &i.TargetValue, &i.Expected, &i.Detail); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (db *DB) edgeColumn(query, id string) ([]string, error) {
	rows, err := db.conn.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("index: edge query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*RecordRow, error) {
	var rec RecordRow
	var scopesJSON, tagsJSON string
	if err := row.Scan(&rec.ID, &rec.Path, &rec.Title, &rec.Status, &rec.Checksum,
		&scopesJSON, &tagsJSON, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(scopesJSON), &rec.Scopes)
	_ = json.Unmarshal([]byte(tagsJSON), &rec.Tags)
	return &rec, nil
}

package lead

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glowheal/catalog/internal/model"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leads (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		phone            TEXT NOT NULL,
		email            TEXT,
		concern          TEXT,
		city             TEXT NOT NULL,
		preferred_time   TEXT,
		visit_type       TEXT,
		source           TEXT NOT NULL,
		whatsapp_confirm INTEGER NOT NULL DEFAULT 0,
		items            TEXT,
		resolved_items   TEXT,
		unknown_items    TEXT,
		catalog_city     TEXT,
		did_fallback     INTEGER NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT 'new',
		created_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leads_city ON leads(city);
	CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
	CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

const leadColumns = `id, name, phone, email, concern, city, preferred_time, visit_type, source,
	whatsapp_confirm, items, resolved_items, unknown_items, catalog_city, did_fallback, status, created_at`

func (s *SQLiteStore) Put(ctx context.Context, l *model.Lead) (*model.Lead, bool, error) {
	prepare(l)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, l.ID)
	existing, err := scanLead(row)
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("lookup lead: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO leads (`+leadColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Phone, nullable(l.Email), nullable(l.Concern), l.City,
		nullable(l.PreferredTime), nullable(l.VisitType), l.Source, l.WhatsAppConfirm,
		jsonText(l.Items), jsonText(l.Resolved), jsonText(l.UnknownItems),
		nullable(l.CatalogCity), l.DidFallback, l.Status, l.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return nil, false, fmt.Errorf("insert lead: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	stored := *l
	return &stored, true, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Lead, error) {
	var where []string
	var args []interface{}

	if p.City != "" {
		where = append(where, "city = ?")
		args = append(args, strings.ToLower(p.City))
	}
	if p.Source != "" {
		where = append(where, "source = ?")
		args = append(args, p.Source)
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limitOf(p))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row scanner) (model.Lead, error) {
	var l model.Lead
	var email, concern, preferred, visitType, items, resolved, unknown, catalogCity sql.NullString
	var createdAt string

	err := row.Scan(
		&l.ID, &l.Name, &l.Phone, &email, &concern, &l.City, &preferred, &visitType, &l.Source,
		&l.WhatsAppConfirm, &items, &resolved, &unknown, &catalogCity, &l.DidFallback,
		&l.Status, &createdAt,
	)
	if err != nil {
		return l, err
	}

	l.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	l.Email = email.String
	l.Concern = concern.String
	l.PreferredTime = preferred.String
	l.VisitType = visitType.String
	l.CatalogCity = catalogCity.String
	if items.Valid {
		json.Unmarshal([]byte(items.String), &l.Items)
	}
	if resolved.Valid {
		json.Unmarshal([]byte(resolved.String), &l.Resolved)
	}
	if unknown.Valid {
		json.Unmarshal([]byte(unknown.String), &l.UnknownItems)
	}
	return l, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func jsonText[T any](v []T) *string {
	if len(v) == 0 {
		return nil
	}
	b, _ := json.Marshal(v)
	s := string(b)
	return &s
}

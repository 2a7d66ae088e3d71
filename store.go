package wellspring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/wellspring/internal/store/migrations"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const schemaVersion = "2"

// DefaultMaxValueBytes caps a single preference value.
const DefaultMaxValueBytes = 64 * 1024

// Metadata keys.
const (
	MetaSchemaVersion = "schema_version"
	MetaCreatedAt     = "created_at"
	MetaDescription   = "description"
	MetaMigratedFrom  = "migrated_from"
	MetaLastImport    = "last_import"
)

// Store manages the local SQLite check-in database.
type Store struct {
	db            *sql.DB
	mu            sync.RWMutex
	closed        bool
	path          string
	maxValueBytes int
}

// StoreOption configures NewStore.
type StoreOption func(*Store)

// WithMaxValueBytes sets the preference value quota. Values <= 0 keep the default.
func WithMaxValueBytes(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.maxValueBytes = n
		}
	}
}

// NewStore opens or creates a local check-in store.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db, path: path, maxValueBytes: DefaultMaxValueBytes}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, &StoreError{Op: "migrate", Reason: ReasonMigrationFailed, Err: err}
	}
	return s, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if _, err := s.db.Exec(`INSERT OR IGNORE INTO metadata (key, value) VALUES (?, ?)`,
		MetaCreatedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`,
		MetaSchemaVersion, schemaVersion)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// NewEntryID returns a fresh sortable entry ID.
func NewEntryID() string {
	return ulid.Make().String()
}

// InsertEntry validates and stores an entry with its tags in one transaction.
// An empty ID is filled with a new ULID.
func (s *Store) InsertEntry(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if e != nil && e.ID == "" {
		e.ID = NewEntryID()
	}
	if err := ValidateEntry(e); err != nil {
		return err
	}
	e.Tags = NormalizeTags(e.Tags)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := entryExists(ctx, tx, e.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrEntryExists, e.ID)
	}
	if err := insertEntryTx(ctx, tx, e); err != nil {
		return err
	}
	return tx.Commit()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func entryExists(ctx context.Context, q querier, id string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("store: check entry: %w", err)
	}
	return n > 0, nil
}

func insertEntryTx(ctx context.Context, q querier, e *Entry) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO entries (id, timestamp, ts_unix_nano, time_of_day, positivity, energy, focus, stress,
		                     focus_minutes, tasks_completed, sleep_hours, recovery_action, social_interactions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.Timestamp.Format(time.RFC3339Nano),
		e.Timestamp.UnixNano(),
		string(e.TimeOfDay),
		e.Mood.Positivity,
		e.Mood.Energy,
		e.Mood.Focus,
		e.Mood.Stress,
		nullable(e.FocusMinutes),
		nullable(e.TasksCompleted),
		nullable(e.SleepHours),
		nullable(e.RecoveryAction),
		nullable(e.SocialInteractions),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store: insert entry: %w", err)
	}
	for _, tag := range NormalizeTags(e.Tags) {
		if _, err := q.ExecContext(ctx, `INSERT INTO entry_tags (entry_id, tag) VALUES (?, ?)`, e.ID, tag); err != nil {
			return fmt.Errorf("store: insert tag: %w", err)
		}
	}
	return nil
}

// nullable maps an optional field to a NULL-able query argument.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func deleteEntryTx(ctx context.Context, q querier, id string) (bool, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, id); err != nil {
		return false, fmt.Errorf("store: delete tags: %w", err)
	}
	res, err := q.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("store: delete entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(ctx context.Context, id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries e WHERE e.id = ?`, id))
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsFor(ctx, `WHERE e.id = ?`, []any{id})
	if err != nil {
		return nil, err
	}
	e.Tags = tags[e.ID]
	return e, nil
}

// ListEntries returns entries matching f in timestamp order. With a Limit,
// the most recent Limit entries are returned, still oldest first.
func (s *Store) ListEntries(ctx context.Context, f EntryFilter) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	where, args := f.where()
	query := `SELECT ` + entryColumns + ` FROM entries e ` + where
	if f.Limit > 0 {
		query += ` ORDER BY e.ts_unix_nano DESC, e.id DESC LIMIT ?`
	} else {
		query += ` ORDER BY e.ts_unix_nano ASC, e.id ASC`
	}
	qargs := args
	if f.Limit > 0 {
		qargs = append(append([]any{}, args...), f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, qargs...)
	if err != nil {
		return nil, fmt.Errorf("store: list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if f.Limit > 0 {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	tags, err := s.tagsFor(ctx, where, args)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Tags = tags[entries[i].ID]
	}
	return entries, nil
}

func (f EntryFilter) where() (string, []any) {
	clauses := []string{"1=1"}
	var args []any
	if !f.From.IsZero() {
		clauses = append(clauses, "e.ts_unix_nano >= ?")
		args = append(args, f.From.UnixNano())
	}
	if !f.To.IsZero() {
		clauses = append(clauses, "e.ts_unix_nano < ?")
		args = append(args, f.To.UnixNano())
	}
	if f.TimeOfDay != "" {
		clauses = append(clauses, "e.time_of_day = ?")
		args = append(args, string(f.TimeOfDay))
	}
	if tag := strings.ToLower(strings.TrimSpace(f.Tag)); tag != "" {
		clauses = append(clauses, "e.id IN (SELECT entry_id FROM entry_tags WHERE tag = ?)")
		args = append(args, tag)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// tagsFor loads tags for entries selected by the given WHERE clause over alias e.
func (s *Store) tagsFor(ctx context.Context, where string, args []any) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.entry_id, t.tag FROM entry_tags t
		JOIN entries e ON e.id = t.entry_id `+where+`
		ORDER BY t.entry_id, t.tag`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: load tags: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		out[id] = append(out[id], tag)
	}
	return out, rows.Err()
}

// DeleteEntry removes an entry and its tags.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	ok, err := deleteEntryTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: entry %s", ErrNotFound, id)
	}
	return tx.Commit()
}

// EntryCount returns the number of stored entries.
func (s *Store) EntryCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count entries: %w", err)
	}
	return n, nil
}

// EntryExists reports whether an entry with id is stored.
func (s *Store) EntryExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrStoreClosed
	}
	return entryExists(ctx, s.db, id)
}

// Stats returns store statistics.
func (s *Store) Stats(ctx context.Context) (*StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	stats := &StoreStats{SchemaVersion: schemaVersion}
	var first, last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MIN(ts_unix_nano), MAX(ts_unix_nano) FROM entries`,
	).Scan(&stats.EntryCount, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	if first.Valid {
		stats.FirstEntry = time.Unix(0, first.Int64).UTC()
	}
	if last.Valid {
		stats.LastEntry = time.Unix(0, last.Int64).UTC()
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT tag) FROM entry_tags`).Scan(&stats.TagCount); err != nil {
		return nil, fmt.Errorf("store: count tags: %w", err)
	}
	return stats, nil
}

// GetValue returns a stored preference value. Absent keys return an error
// wrapping ErrNotFound.
func (s *Store) GetValue(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, &StoreError{Op: "get", Key: key, Reason: ReasonUnavailable, Err: ErrStoreClosed}
	}
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: key %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Key: key, Reason: ReasonUnavailable, Err: err}
	}
	return v, nil
}

// SetValue stores a preference value. Values larger than the store's quota
// fail with ReasonQuotaExceeded.
func (s *Store) SetValue(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StoreError{Op: "set", Key: key, Reason: ReasonUnavailable, Err: ErrStoreClosed}
	}
	if len(value) > s.maxValueBytes {
		return &StoreError{
			Op:     "set",
			Key:    key,
			Reason: ReasonQuotaExceeded,
			Err:    fmt.Errorf("%d bytes exceeds limit of %d", len(value), s.maxValueBytes),
		}
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return &StoreError{Op: "set", Key: key, Reason: ReasonUnavailable, Err: err}
	}
	return nil
}

// RemoveValue deletes a preference value. Removing an absent key is not an error.
func (s *Store) RemoveValue(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StoreError{Op: "remove", Key: key, Reason: ReasonUnavailable, Err: ErrStoreClosed}
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return &StoreError{Op: "remove", Key: key, Reason: ReasonUnavailable, Err: err}
	}
	return nil
}

// GetMetadata returns a metadata value, or "" when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}
	var v string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetMetadata sets a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Description returns the profile description.
func (s *Store) Description() (string, error) { return s.GetMetadata(MetaDescription) }

// SetDescription sets the profile description.
func (s *Store) SetDescription(desc string) error { return s.SetMetadata(MetaDescription, desc) }

// CreatedAt returns when the database was first initialized.
func (s *Store) CreatedAt() (time.Time, error) {
	v, err := s.GetMetadata(MetaCreatedAt)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

const entryColumns = `e.id, e.timestamp, e.time_of_day, e.positivity, e.energy, e.focus, e.stress,
	e.focus_minutes, e.tasks_completed, e.sleep_hours, e.recovery_action, e.social_interactions`

// scanner abstracts the Scan method shared by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry scans one entry row without tags. Returns ErrNotFound only for
// sql.ErrNoRows from *sql.Row.
func scanEntry(sc scanner) (*Entry, error) {
	var (
		e        Entry
		ts, tod  string
		focusMin sql.NullFloat64
		tasks    sql.NullInt64
		sleep    sql.NullFloat64
		recovery sql.NullBool
		social   sql.NullInt64
	)
	err := sc.Scan(
		&e.ID, &ts, &tod,
		&e.Mood.Positivity, &e.Mood.Energy, &e.Mood.Focus, &e.Mood.Stress,
		&focusMin, &tasks, &sleep, &recovery, &social,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, &StoreError{Op: "scan", Key: e.ID, Reason: ReasonInvalidData, Err: err}
	}
	e.TimeOfDay = TimeOfDay(tod)
	if focusMin.Valid {
		e.FocusMinutes = &focusMin.Float64
	}
	if tasks.Valid {
		n := int(tasks.Int64)
		e.TasksCompleted = &n
	}
	if sleep.Valid {
		e.SleepHours = &sleep.Float64
	}
	if recovery.Valid {
		e.RecoveryAction = &recovery.Bool
	}
	if social.Valid {
		n := int(social.Int64)
		e.SocialInteractions = &n
	}
	return &e, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/uniplaces/carbon"
	"go.uber.org/zap"

	"torchlight-intake/internal/form"
)

const (
	DefaultTable     = "submissions"
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Store persists submissions in a single table through database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

type Options struct {
	Dialect Dialect
	Table   string
	Logger  *zap.Logger
	// Now and NewID default to time.Now and random UUIDs.
	Now   func() time.Time
	NewID func() string
}

// New creates a new Store instance
func New(db *sql.DB, opts Options) (*Store, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if !validTableName(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	return &Store{
		db:      db,
		dialect: opts.Dialect,
		table:   opts.Table,
		logger:  opts.Logger,
		now:     opts.Now,
		newID:   opts.NewID,
	}, nil
}

// Open connects with the driver of the dialect. The connection is verified
// lazily; call Ping to check it.
func Open(dsn string, opts Options) (*Store, error) {
	db, err := sql.Open(opts.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Dialect, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s, err := New(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// GetDB returns the underlying sql.DB instance
func (store *Store) GetDB() *sql.DB {
	return store.db
}

func (store *Store) Close() error {
	return store.db.Close()
}

func (store *Store) Ping(ctx context.Context) error {
	if err := store.db.PingContext(ctx); err != nil {
		return &Error{Kind: Classify(err), Op: "ping", Err: err}
	}
	return nil
}

// SaveSubmission inserts one row and returns its id. The full column set is
// tried first; only a schema mismatch falls back to the minimal set. Both
// attempts share the id and a failed insert writes nothing, so a submission
// never produces more than one row.
func (store *Store) SaveSubmission(ctx context.Context, sub form.Submission) (string, error) {
	id := store.newID()
	values, err := store.columnValues(id, sub)
	if err != nil {
		return "", &Error{Kind: KindUnknown, Op: "encode submission", Err: err}
	}

	err = store.insert(ctx, "insert full", FullColumns, values)
	if err == nil {
		return id, nil
	}
	if KindOf(err) != KindSchemaMismatch {
		return "", err
	}

	store.logger.Warn("full insert rejected by schema, retrying with minimal columns",
		zap.String("submission_id", id),
		zap.String("table", store.table),
		zap.Error(err))

	if err := store.insert(ctx, "insert minimal", MinimalColumns, values); err != nil {
		return "", err
	}
	return id, nil
}

func (store *Store) insert(ctx context.Context, op string, columns []string, values map[string]any) error {
	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = values[c]
	}
	if _, err := store.db.ExecContext(ctx, store.insertQuery(columns), args...); err != nil {
		return &Error{Kind: Classify(err), Op: op, Err: err}
	}
	return nil
}

func (store *Store) insertQuery(columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = store.dialect.quote(c)
		placeholders[i] = store.dialect.placeholder(i + 1)
	}
	return "INSERT INTO " + store.dialect.quote(store.table) +
		" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
}

func (store *Store) columnValues(id string, sub form.Submission) (map[string]any, error) {
	scorecard := []byte("[]")
	if len(sub.Scorecard) > 0 {
		encoded, err := json.Marshal(sub.Scorecard)
		if err != nil {
			return nil, fmt.Errorf("scorecard: %w", err)
		}
		scorecard = encoded
	}
	payload, err := sub.Payload()
	if err != nil {
		return nil, fmt.Errorf("form data: %w", err)
	}

	return map[string]any{
		"id":                  id,
		"email":               nullable(sub.Email),
		"background":          nullable(sub.BackgroundEdge.ExperienceMap.FunctionalStrengths),
		"interests":           nullable(sub.QuickSummary.PrimaryThesis),
		"experience":          nullable(sub.BackgroundEdge.ExperienceMap.DealExposure),
		"scorecard":           string(scorecard),
		"form_data":           string(payload),
		"searcher_name":       nullable(sub.QuickSummary.SearcherName),
		"home_base":           nullable(sub.QuickSummary.HomeBase),
		"target_close_window": nullable(sub.QuickSummary.TargetCloseWindow),
		"submitted_at":        carbon.NewCarbon(store.now().UTC()).DateTimeString(),
	}, nil
}

// nullable stores blank text as NULL.
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// ListSubmissions returns the newest submissions first.
func (store *Store) ListSubmissions(ctx context.Context, limit int) ([]SubmissionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	query := "SELECT * FROM " + store.dialect.quote(store.table) +
		" ORDER BY " + store.dialect.quote("submitted_at") + " DESC LIMIT " + strconv.Itoa(limit)

	rows, err := store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &Error{Kind: Classify(err), Op: "list", Err: err}
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, &Error{Kind: Classify(err), Op: "list", Err: err}
	}
	return records, nil
}

// FindSubmission returns ErrNotFound when no row has the id.
func (store *Store) FindSubmission(ctx context.Context, id string) (SubmissionRecord, error) {
	query := "SELECT * FROM " + store.dialect.quote(store.table) +
		" WHERE " + store.dialect.quote("id") + " = " + store.dialect.placeholder(1)

	rows, err := store.db.QueryContext(ctx, query, id)
	if err != nil {
		return SubmissionRecord{}, &Error{Kind: Classify(err), Op: "find", Err: err}
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return SubmissionRecord{}, &Error{Kind: Classify(err), Op: "find", Err: err}
	}
	if len(records) == 0 {
		return SubmissionRecord{}, ErrNotFound
	}
	if len(records) > 1 {
		store.logger.Warn("multiple rows share a submission id", zap.String("submission_id", id), zap.Int("rows", len(records)))
	}
	return records[0], nil
}

// scanRecords reads rows by column name, so tables with extra or missing
// columns still scan.
func scanRecords(rows *sql.Rows) ([]SubmissionRecord, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []SubmissionRecord
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		var rec SubmissionRecord
		for i, c := range columns {
			if values[i].Valid {
				rec.set(strings.ToLower(c), values[i].String)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

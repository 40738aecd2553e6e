package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pershin-daniil/SchoolAdmin/pkg/metrics"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrations embed.FS

const retries = 3

type Store struct {
	log *logrus.Entry
	db  *sqlx.DB
}

var ErrEventNotFound = fmt.Errorf("event not found")

const selectEvents = `
SELECT e.id, e.title, e.description, e.start_time, e.end_time, e.class_id,
       c.name AS class_name, e.created_at, e.updated_at
FROM events e
LEFT JOIN classes c ON c.id = e.class_id`

// returningEvent joins the class name onto the row produced by a data-modifying CTE named "changed".
const returningEvent = `
SELECT ch.id, ch.title, ch.description, ch.start_time, ch.end_time, ch.class_id,
       c.name AS class_name, ch.created_at, ch.updated_at
FROM changed ch
LEFT JOIN classes c ON c.id = ch.class_id`

func NewStore(ctx context.Context, log *logrus.Logger, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		log: log.WithField("component", "pgstore"),
		db:  db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(direction migrate.MigrationDirection) error {
	assetDir := func(path string) ([]string, error) {
		dirEntry, err := migrations.ReadDir(path)
		if err != nil {
			return nil, err
		}
		entries := make([]string, 0, len(dirEntry))
		for _, e := range dirEntry {
			entries = append(entries, e.Name())
		}
		return entries, nil
	}
	asset := migrate.AssetMigrationSource{
		Asset:    migrations.ReadFile,
		AssetDir: assetDir,
		Dir:      "migrations",
	}
	n, err := migrate.Exec(s.db.DB, "postgres", asset, direction)
	if err != nil {
		return fmt.Errorf("err applying migrations: %w", err)
	}
	s.log.Infof("applied %d migrations", n)
	return nil
}

func observe(method string, start time.Time, err error) {
	metrics.PgDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		metrics.PgErrCount.WithLabelValues(method).Inc()
	}
}

// retryable reports whether a failed statement never reached the server, so
// sending it again cannot apply it twice. Constraint violations and other
// server-side errors are final.
func retryable(err error) bool {
	return pgconn.SafeToRetry(err)
}

func (s *Store) GetClasses(ctx context.Context) ([]models.Class, error) {
	start := time.Now()
	classes := make([]models.Class, 0)
	var err error
	defer func() { observe("GetClasses", start, err) }()
	for i := 0; i < retries; i++ {
		err = s.db.SelectContext(ctx, &classes, `SELECT id, name FROM classes ORDER BY name`)
		if err == nil {
			return classes, nil
		}
		if !retryable(err) {
			break
		}
	}
	return nil, fmt.Errorf("err getting classes: %w", err)
}

func (s *Store) CreateClass(ctx context.Context, name string) (models.Class, error) {
	var class models.Class
	query := `
INSERT INTO classes (name)
VALUES ($1)
RETURNING id, name;`
	err := s.db.GetContext(ctx, &class, query, name)
	if err != nil {
		return models.Class{}, fmt.Errorf("err creating class %q: %w", name, err)
	}
	return class, nil
}

func (s *Store) GetEvents(ctx context.Context) ([]models.Event, error) {
	start := time.Now()
	events := make([]models.Event, 0)
	var err error
	defer func() { observe("GetEvents", start, err) }()
	for i := 0; i < retries; i++ {
		err = s.db.SelectContext(ctx, &events, selectEvents+` ORDER BY e.start_time`)
		if err == nil {
			return events, nil
		}
		if !retryable(err) {
			break
		}
	}
	return nil, fmt.Errorf("err getting events: %w", err)
}

func (s *Store) GetEvent(ctx context.Context, id int) (models.Event, error) {
	start := time.Now()
	var event models.Event
	var err error
	defer func() { observe("GetEvent", start, err) }()
	for i := 0; i < retries; i++ {
		err = s.db.GetContext(ctx, &event, selectEvents+` WHERE e.id = $1`, id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return models.Event{}, ErrEventNotFound
		case err != nil && retryable(err):
			continue
		case err != nil:
			return models.Event{}, fmt.Errorf("err getting event %d: %w", id, err)
		}
		return event, nil
	}
	return models.Event{}, fmt.Errorf("err getting event %d: %w", id, err)
}

func (s *Store) CreateEvent(ctx context.Context, in models.EventInput) (models.Event, error) {
	start := time.Now()
	var created models.Event
	query := `
WITH changed AS (
    INSERT INTO events (title, description, start_time, end_time, class_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING *
)` + returningEvent
	var err error
	defer func() { observe("CreateEvent", start, err) }()
	for i := 0; i < retries; i++ {
		err = s.db.GetContext(ctx, &created, query, in.Title, in.Description, in.StartTime, in.EndTime, in.ClassID)
		if err == nil {
			return created, nil
		}
		if !retryable(err) {
			break
		}
	}
	return models.Event{}, fmt.Errorf("err creating event: %w", err)
}

func (s *Store) UpdateEvent(ctx context.Context, id int, in models.EventInput) (models.Event, error) {
	start := time.Now()
	var updated models.Event
	query := `
WITH changed AS (
    UPDATE events
    SET title = $2,
        description = $3,
        announced_at = CASE WHEN start_time = $4 THEN announced_at END,
        start_time = $4,
        end_time = $5,
        class_id = $6,
        updated_at = now()
    WHERE id = $1
    RETURNING *
)` + returningEvent
	var err error
	defer func() { observe("UpdateEvent", start, err) }()
	for i := 0; i < retries; i++ {
		err = s.db.GetContext(ctx, &updated, query, id, in.Title, in.Description, in.StartTime, in.EndTime, in.ClassID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return models.Event{}, ErrEventNotFound
		case err != nil && retryable(err):
			continue
		case err != nil:
			return models.Event{}, fmt.Errorf("err updating event %d: %w", id, err)
		}
		return updated, nil
	}
	return models.Event{}, fmt.Errorf("err updating event %d: %w", id, err)
}

func (s *Store) DeleteEvent(ctx context.Context, id int) (models.Event, error) {
	start := time.Now()
	var deleted models.Event
	query := `
WITH changed AS (
    DELETE FROM events
    WHERE id = $1
    RETURNING *
)` + returningEvent
	var err error
	defer func() { observe("DeleteEvent", start, err) }()
	for i := 0; i < retries; i++ {
		err = s.db.GetContext(ctx, &deleted, query, id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return models.Event{}, ErrEventNotFound
		case err != nil && retryable(err):
			continue
		case err != nil:
			return models.Event{}, fmt.Errorf("err deleting event %d: %w", id, err)
		}
		return deleted, nil
	}
	return models.Event{}, fmt.Errorf("err deleting event %d: %w", id, err)
}

// EventsToAnnounce returns events starting in [from, to) that have not been announced yet.
func (s *Store) EventsToAnnounce(ctx context.Context, from, to time.Time) ([]models.Announcement, error) {
	var result []models.Announcement
	query := `
SELECT e.id, e.title, e.start_time, c.name AS class_name
FROM events e
LEFT JOIN classes c ON c.id = e.class_id
WHERE e.announced_at IS NULL
  AND e.start_time >= $1
  AND e.start_time < $2
ORDER BY e.start_time;`
	if err := s.db.SelectContext(ctx, &result, query, from, to); err != nil {
		return nil, fmt.Errorf("err getting events to announce: %w", err)
	}
	return result, nil
}

func (s *Store) MarkAnnounced(ctx context.Context, eventID int) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE events SET announced_at = now() WHERE id = $1`, eventID); err != nil {
		return fmt.Errorf("err marking event %d announced: %w", eventID, err)
	}
	return nil
}

func (s *Store) ResetTables(ctx context.Context, tables []string) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE TABLE `+strings.Join(tables, `, `)+` CASCADE`); err != nil {
		return err
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`ALTER SEQUENCE %s_id_seq RESTART`, table)); err != nil {
			return err
		}
	}
	return nil
}

// Package repo contains all database access logic for the smart bin API.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dpontes/smartbin/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CollectionRepo defines the persistence operations for collection events.
// The service layer depends on this interface, not the Postgres
// implementation, so it can be unit-tested with a mock.
type CollectionRepo interface {
	// Create inserts a new event and returns the persisted record with its
	// DB-assigned id. Ids are monotonic (bigserial) and define recency order.
	Create(ctx context.Context, c domain.Collection) (domain.Collection, error)

	// List returns all events, newest first by id.
	List(ctx context.Context) ([]domain.Collection, error)

	// ListByMaterial returns events of a single material, newest first.
	ListByMaterial(ctx context.Context, tipo string) ([]domain.Collection, error)

	// ListByDate returns events of a single canonical date, newest first.
	ListByDate(ctx context.Context, data string) ([]domain.Collection, error)

	// ListChronological returns all events oldest first by id — the scan
	// order the aggregation engine needs for its stable tie-break.
	ListChronological(ctx context.Context) ([]domain.Collection, error)

	// MostRecent returns the n newest events, newest first.
	MostRecent(ctx context.Context, n int) ([]domain.Collection, error)

	// Latest returns the single newest event.
	// Returns domain.ErrNotFound when no events exist.
	Latest(ctx context.Context) (domain.Collection, error)

	// CountToday counts events whose date equals the database server's
	// current date. A single statement, so it is always consistent.
	CountToday(ctx context.Context) (int, error)

	// Update applies the non-nil fields of upd to the event with the given
	// id and returns the number of affected rows.
	// Returns domain.ErrNotFound when the id does not exist.
	Update(ctx context.Context, id int64, upd domain.CollectionUpdate) (int64, error)

	// Delete removes an event by id.
	// Returns domain.ErrNotFound when the id does not exist.
	Delete(ctx context.Context, id int64) error
}

// pgCollectionRepo is the Postgres implementation of CollectionRepo.
type pgCollectionRepo struct {
	db db
}

// NewCollectionRepo constructs a CollectionRepo backed by the provided db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCollectionRepo(db db) CollectionRepo {
	return &pgCollectionRepo{db: db}
}

const collectionColumns = `id, tipo, data, horario, created_at`

func (r *pgCollectionRepo) Create(ctx context.Context, c domain.Collection) (domain.Collection, error) {
	const q = `
		INSERT INTO coletas (tipo, data, horario)
		VALUES (@tipo, @data, @horario)
		RETURNING ` + collectionColumns

	args := pgx.NamedArgs{
		"tipo":    string(c.Tipo),
		"data":    dateParam(c.Data),
		"horario": timeParam(c.Horario),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCollection(row)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("repo.CollectionRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCollectionRepo) List(ctx context.Context) ([]domain.Collection, error) {
	const q = `SELECT ` + collectionColumns + ` FROM coletas ORDER BY id DESC`
	return r.queryMany(ctx, "List", q)
}

func (r *pgCollectionRepo) ListByMaterial(ctx context.Context, tipo string) ([]domain.Collection, error) {
	const q = `SELECT ` + collectionColumns + ` FROM coletas WHERE tipo = @tipo ORDER BY id DESC`
	return r.queryMany(ctx, "ListByMaterial", q, pgx.NamedArgs{"tipo": tipo})
}

func (r *pgCollectionRepo) ListByDate(ctx context.Context, data string) ([]domain.Collection, error) {
	const q = `SELECT ` + collectionColumns + ` FROM coletas WHERE data = @data ORDER BY id DESC`
	return r.queryMany(ctx, "ListByDate", q, pgx.NamedArgs{"data": dateParam(data)})
}

func (r *pgCollectionRepo) ListChronological(ctx context.Context) ([]domain.Collection, error) {
	const q = `SELECT ` + collectionColumns + ` FROM coletas ORDER BY id ASC`
	return r.queryMany(ctx, "ListChronological", q)
}

func (r *pgCollectionRepo) MostRecent(ctx context.Context, n int) ([]domain.Collection, error) {
	const q = `SELECT ` + collectionColumns + ` FROM coletas ORDER BY id DESC LIMIT @n`
	return r.queryMany(ctx, "MostRecent", q, pgx.NamedArgs{"n": n})
}

func (r *pgCollectionRepo) Latest(ctx context.Context) (domain.Collection, error) {
	const q = `SELECT ` + collectionColumns + ` FROM coletas ORDER BY id DESC LIMIT 1`

	row := r.db.QueryRow(ctx, q)
	result, err := scanCollection(row)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("repo.CollectionRepo.Latest: %w", err)
	}
	return result, nil
}

func (r *pgCollectionRepo) CountToday(ctx context.Context) (int, error) {
	const q = `SELECT COUNT(*) FROM coletas WHERE data = CURRENT_DATE`

	var total int
	if err := r.db.QueryRow(ctx, q).Scan(&total); err != nil {
		return 0, fmt.Errorf("repo.CollectionRepo.CountToday: %w", err)
	}
	return total, nil
}

// Update uses COALESCE so nil fields keep their stored values — the whole
// partial update stays a single atomic statement.
func (r *pgCollectionRepo) Update(ctx context.Context, id int64, upd domain.CollectionUpdate) (int64, error) {
	const q = `
		UPDATE coletas
		SET tipo    = COALESCE(@tipo, tipo),
		    data    = COALESCE(@data, data),
		    horario = COALESCE(@horario, horario)
		WHERE id = @id`

	args := pgx.NamedArgs{
		"id":      id,
		"tipo":    (*string)(upd.Tipo),
		"data":    optionalDateParam(upd.Data),
		"horario": optionalTimeParam(upd.Horario),
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return 0, fmt.Errorf("repo.CollectionRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("repo.CollectionRepo.Update: %w", domain.ErrNotFound)
	}
	return tag.RowsAffected(), nil
}

func (r *pgCollectionRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM coletas WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CollectionRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CollectionRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// queryMany runs a multi-row query and scans every row into a Collection.
func (r *pgCollectionRepo) queryMany(ctx context.Context, op, q string, args ...any) ([]domain.Collection, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("repo.CollectionRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CollectionRepo.%s: scan: %w", op, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CollectionRepo.%s: rows: %w", op, err)
	}

	return out, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanCollection
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanCollection maps a single database row into a domain.Collection,
// rendering the date and time columns back into their canonical strings.
func scanCollection(s scanner) (domain.Collection, error) {
	var (
		c       domain.Collection
		tipo    string
		data    pgtype.Date
		horario pgtype.Time
	)

	err := s.Scan(&c.ID, &tipo, &data, &horario, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Collection{}, domain.ErrNotFound
		}
		return domain.Collection{}, err
	}

	c.Tipo = domain.Material(tipo)
	c.Data = domain.FormatDate(data.Time)
	c.Horario = microsToClock(horario.Microseconds)
	return c, nil
}

// microsToClock renders a pgtype.Time microsecond offset as HH:MM:SS.
func microsToClock(micros int64) string {
	secs := micros / 1e6
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}

// dateParam converts a canonical date string into a pgtype.Date argument.
// The string is validated long before it reaches the repo, so a parse
// failure here means a programming error and surfaces as a NULL insert.
func dateParam(data string) pgtype.Date {
	t, err := time.Parse(domain.DateLayout, data)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// timeParam converts a canonical HH:MM:SS string into a pgtype.Time argument.
func timeParam(horario string) pgtype.Time {
	t, err := time.Parse(domain.TimeLayout, horario)
	if err != nil {
		return pgtype.Time{}
	}
	micros := int64(t.Hour()*3600+t.Minute()*60+t.Second()) * 1e6
	return pgtype.Time{Microseconds: micros, Valid: true}
}

// optionalDateParam maps a nil pointer to a NULL date (COALESCE keeps the
// stored value) and a present one to its pgtype.Date.
func optionalDateParam(data *string) pgtype.Date {
	if data == nil {
		return pgtype.Date{}
	}
	return dateParam(*data)
}

// optionalTimeParam maps a nil pointer to a NULL time, like optionalDateParam.
func optionalTimeParam(horario *string) pgtype.Time {
	if horario == nil {
		return pgtype.Time{}
	}
	return timeParam(*horario)
}

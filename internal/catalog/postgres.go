package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Postgres stores the question bank in the rosco_questions table.
type Postgres struct {
	pool       *pgxpool.Pool
	connString string
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return &Postgres{pool: pool, connString: connString}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Migrate applies the embedded goose migrations.
func (p *Postgres) Migrate(ctx context.Context) error {
	migrationDB, err := sql.Open("pgx", p.connString)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer migrationDB.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, migrationDB, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Msg("[catalog.Migrate] migrations applied")
	return nil
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, "SELECT count(*) FROM rosco_questions").Scan(&n); err != nil {
		return 0, p.wrap(err)
	}
	return n, nil
}

// Seed bulk-loads entries. Letter positions follow the order of first appearance.
func (p *Postgres) Seed(ctx context.Context, entries []Entry) (int64, error) {
	positions := make(map[string]int)
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		pos, ok := positions[e.Letter]
		if !ok {
			pos = len(positions)
			positions[e.Letter] = pos
		}
		rows = append(rows, []any{e.Letter, pos, e.Question, e.Answer})
	}

	n, err := p.pool.CopyFrom(ctx,
		pgx.Identifier{"rosco_questions"},
		[]string{"letter", "letter_position", "question", "answer"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, p.wrap(err)
	}
	log.Info().Int64("rows", n).Int("letters", len(positions)).Msg("[catalog.Seed] question bank seeded")
	return n, nil
}

// Load reads every question into a Memory catalog.
func (p *Postgres) Load(ctx context.Context) (*Memory, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT letter, question, answer FROM rosco_questions ORDER BY letter_position, id")
	if err != nil {
		return nil, p.wrap(err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Letter, &e.Question, &e.Answer); err != nil {
			return nil, p.wrap(err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, p.wrap(err)
	}
	return NewMemory(entries, nil)
}

func (p *Postgres) wrap(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
}

// LoadPostgres migrates the store, seeds it from seed when the table is empty,
// and returns the stored bank. seed may be nil.
func LoadPostgres(ctx context.Context, connString string, seed *Memory) (*Memory, error) {
	store, err := NewPostgres(ctx, connString)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	count, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 && seed != nil {
		if _, err := store.Seed(ctx, seed.Entries()); err != nil {
			return nil, err
		}
	}
	return store.Load(ctx)
}

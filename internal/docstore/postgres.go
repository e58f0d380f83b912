package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores each collection as a table of (id, doc jsonb, created_at).
type Postgres struct{ db *pgxpool.Pool }

func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return NewPostgres(pool), nil
}

func NewPostgres(db *pgxpool.Pool) *Postgres { return &Postgres{db: db} }

func (p *Postgres) Collection(name string) Collection {
	return &pgCollection{db: p.db, name: name, table: pgx.Identifier{name}.Sanitize()}
}

func (p *Postgres) EnsureCollection(ctx context.Context, name string, unique ...string) error {
	if err := checkName(name); err != nil {
		return err
	}
	table := pgx.Identifier{name}.Sanitize()
	if _, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+table+` (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := p.db.Exec(ctx, `CREATE INDEX IF NOT EXISTS `+
		pgx.Identifier{name + "_created_at_idx"}.Sanitize()+` ON `+table+` (created_at DESC)`); err != nil {
		return fmt.Errorf("index %s.created_at: %w", name, err)
	}
	for _, field := range unique {
		if err := checkPath(field); err != nil {
			return err
		}
		idx := pgx.Identifier{name + "_" + strings.ToLower(strings.ReplaceAll(field, ".", "_")) + "_key"}.Sanitize()
		if _, err := p.db.Exec(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS `+idx+
			` ON `+table+` ((doc #>> '`+pgPath(field)+`'))`); err != nil {
			return fmt.Errorf("unique index %s.%s: %w", name, field, err)
		}
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.Ping(ctx) }

func (p *Postgres) Close(context.Context) error {
	p.db.Close()
	return nil
}

type pgCollection struct {
	db    *pgxpool.Pool
	name  string
	table string
}

func (c *pgCollection) Find(ctx context.Context, filter Filter, s Sort, out any) error {
	where, args, err := pgWhere(filter)
	if err != nil {
		return err
	}
	order, err := pgOrder(s)
	if err != nil {
		return err
	}
	rows, err := c.db.Query(ctx, `SELECT doc FROM `+c.table+where+order, args...)
	if err != nil {
		return fmt.Errorf("find %s: %w", c.name, err)
	}
	defer rows.Close()

	docs := []json.RawMessage{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("find %s: %w", c.name, err)
		}
		docs = append(docs, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("find %s: %w", c.name, err)
	}
	return decode(docs, out)
}

func (c *pgCollection) FindOne(ctx context.Context, filter Filter, out any) error {
	where, args, err := pgWhere(filter)
	if err != nil {
		return err
	}
	return c.scanOne(ctx, `SELECT doc FROM `+c.table+where+` ORDER BY created_at ASC LIMIT 1`, args, out)
}

func (c *pgCollection) FindByID(ctx context.Context, id string, out any) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	return c.scanOne(ctx, `SELECT doc FROM `+c.table+` WHERE id = $1`, []any{oid.Hex()}, out)
}

func (c *pgCollection) scanOne(ctx context.Context, sql string, args []any, out any) error {
	var raw []byte
	err := c.db.QueryRow(ctx, sql, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find %s: %w", c.name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", c.name, err)
	}
	return nil
}

func (c *pgCollection) Insert(ctx context.Context, doc Document) error {
	meta := stamp(doc)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	_, err = c.db.Exec(ctx, `
		INSERT INTO `+c.table+` (id, doc, created_at)
		VALUES ($1, $2::jsonb, $3)
	`, meta.ID.Hex(), string(body), meta.CreatedAt)
	return pgWriteErr(c.name, err)
}

func (c *pgCollection) UpdateByID(ctx context.Context, id string, set Fields) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	patch, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	tag, err := c.db.Exec(ctx, `
		UPDATE `+c.table+`
		SET doc = doc || $2::jsonb
		WHERE id = $1
	`, oid.Hex(), string(patch))
	if err != nil {
		return pgWriteErr(c.name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *pgCollection) DeleteByID(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	tag, err := c.db.Exec(ctx, `DELETE FROM `+c.table+` WHERE id = $1`, oid.Hex())
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func pgWriteErr(name string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return fmt.Errorf("write %s: %w", name, err)
}

// pgWhere matches by JSONB containment, which compares values with their
// JSON types the same way the other drivers do.
func pgWhere(filter Filter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	for path := range filter {
		if err := checkPath(path); err != nil {
			return "", nil, err
		}
	}
	body, err := json.Marshal(nest(filter))
	if err != nil {
		return "", nil, fmt.Errorf("encode filter: %w", err)
	}
	return ` WHERE doc @> $1::jsonb`, []any{string(body)}, nil
}

func pgOrder(s Sort) (string, error) {
	dir := " ASC"
	if s.Desc {
		dir = " DESC"
	}
	switch s.Field {
	case "":
		return "", nil
	case "createdAt":
		return ` ORDER BY created_at` + dir + `, id` + dir, nil
	}
	if err := checkPath(s.Field); err != nil {
		return "", err
	}
	return ` ORDER BY doc #> '` + pgPath(s.Field) + `'` + dir + `, id` + dir, nil
}

// pgPath renders a validated dotted path as a Postgres text[] literal.
func pgPath(field string) string {
	return "{" + strings.ReplaceAll(field, ".", ",") + "}"
}

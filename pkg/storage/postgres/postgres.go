package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"leadintake/pkg/domain"
	"leadintake/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// DefaultSessionRole is the database role scoped sessions switch to.
const DefaultSessionRole = "authenticated"

// Options defines the configuration parameters for a PostgreSQL connection pool.
type Options struct {
	// Username is the PostgreSQL user to connect as
	Username string
	// Password is the password for the specified user
	Password string
	// Host is the PostgreSQL server hostname or IP address
	Host string
	// SslMode specifies the SSL mode for the connection (e.g., "disable", "require")
	SslMode string
	// Port is the PostgreSQL server port number
	Port int
	// Database is the name of the database to connect to
	Database string
	// SessionRole is the role WithIdentity switches to. Defaults to DefaultSessionRole.
	SessionRole string
	// ConnMaxLifetime is the maximum amount of time a connection may be reused
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum amount of time a connection may be idle
	ConnMaxIdleTime time.Duration
	// MaxOpenConnections is the maximum number of open connections to the database
	MaxOpenConnections int
	// MaxIdleConnections is the minimum number of connections kept in the pool
	MaxIdleConnections int
}

// DB defines the subset of database/sql methods used by this package. Both
// *sql.DB and *sql.Tx satisfy it.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Builder abstracts the goqu methods used to construct queries. Both a goqu
// database handle and a transaction handle implement it.
type Builder interface {
	From(table ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

// PgSQL implements storage.Storage for PostgreSQL using database/sql and goqu.
type PgSQL struct {
	// DB is either a *sql.DB (outside a transaction) or a *sql.Tx.
	DB DB
	// Builder constructs queries bound to DB.
	Builder Builder
	// Pool is the pgx pool backing DB. It is nil on transactional handles.
	Pool *pgxpool.Pool

	sessionRole string
}

var _ storage.Storage = (*PgSQL)(nil)

// Close closes the underlying pgx connection pool.
func (p *PgSQL) Close() error {
	if p.Pool != nil {
		p.Pool.Close()
	}
	if db, ok := p.DB.(*sql.DB); ok {
		_ = db.Close()
	}

	return nil
}

// Ping checks that the database answers.
func (p *PgSQL) Ping(ctx context.Context) error {
	db, ok := p.DB.(*sql.DB)
	if !ok {
		return storage.ErrAlreadyInTx
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("could not ping pg: %w", err)
	}

	return nil
}

// Commit commits the current transaction. It returns storage.ErrNotInTx if
// called outside a transaction.
func (p *PgSQL) Commit() error {
	db, ok := p.DB.(*sql.Tx)
	if !ok {
		return storage.ErrNotInTx
	}

	if err := db.Commit(); err != nil {
		return fmt.Errorf("could not commit tx: %w", err)
	}

	return nil
}

// Rollback aborts the current transaction. It returns storage.ErrNotInTx if
// called outside a transaction.
func (p *PgSQL) Rollback() error {
	db, ok := p.DB.(*sql.Tx)
	if !ok {
		return storage.ErrNotInTx
	}

	if err := db.Rollback(); err != nil {
		return fmt.Errorf("could not rollback tx: %w", err)
	}

	return nil
}

func (p *PgSQL) begin(ctx context.Context, opts *sql.TxOptions) (*PgSQL, error) {
	db, ok := p.DB.(*sql.DB)
	if !ok {
		return nil, storage.ErrAlreadyInTx
	}

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("could not begin tx: %w", err)
	}

	return &PgSQL{
		DB:          tx,
		Builder:     goqu.NewTx("postgres", tx),
		sessionRole: p.sessionRole,
	}, nil
}

// Begin starts a new transaction. It returns storage.ErrAlreadyInTx when
// called on a transactional handle.
func (p *PgSQL) Begin(ctx context.Context) (storage.TxStorage, error) {
	return p.begin(ctx, nil)
}

func runInTx(tx *PgSQL, cb func(storage storage.AllStorage) error) error {
	if err := cb(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

// WithTx runs cb in a transaction, committing on success and rolling back if
// cb returns an error.
func (p *PgSQL) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	tx, err := p.begin(ctx, nil)
	if err != nil {
		return err
	}

	return runInTx(tx, cb)
}

// WithIdentity runs cb in a transaction acting on behalf of identity. The
// identity is exposed to policies as the request.jwt.claims setting and the
// session role is switched for the duration of the transaction.
func (p *PgSQL) WithIdentity(ctx context.Context,
	identity domain.Identity,
	opts storage.IdentityOptions,
	cb func(storage storage.AllStorage) error) error {
	txOpts := &sql.TxOptions{}
	if opts.ReadOnly {
		txOpts.Isolation = sql.LevelRepeatableRead
		txOpts.ReadOnly = true
	}

	claims, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("could not marshal identity claims: %w", err)
	}

	tx, err := p.begin(ctx, txOpts)
	if err != nil {
		return err
	}

	if _, err := tx.DB.ExecContext(ctx,
		"SELECT set_config('request.jwt.claims', $1, true)", string(claims)); err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("could not set request claims: %w", err)
	}

	role := p.sessionRole
	if role == "" {
		role = DefaultSessionRole
	}
	if _, err := tx.DB.ExecContext(ctx, "SET LOCAL ROLE "+pgx.Identifier{role}.Sanitize()); err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("could not switch session role: %w", err)
	}

	return runInTx(tx, cb)
}

// New creates a PostgreSQL storage backed by a pgx pool, and a database/sql
// wrapper for compatibility with goqu, goose and River.
func New(ctx context.Context, options Options) (*PgSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
		options.Host,
		options.Port,
		options.Username,
		options.Database,
		options.Password,
		options.SslMode)
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("could not parse pgxpool config: %w", err)
	}
	if options.MaxOpenConnections > 0 {
		cfg.MaxConns = int32(options.MaxOpenConnections) //nolint: gosec
	}
	if options.MaxIdleConnections > 0 {
		cfg.MinConns = int32(options.MaxIdleConnections) //nolint: gosec
	}
	if options.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = options.ConnMaxLifetime
	}
	if options.ConnMaxIdleTime > 0 {
		cfg.MaxConnIdleTime = options.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create pgx Pool: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)

	role := options.SessionRole
	if role == "" {
		role = DefaultSessionRole
	}

	return &PgSQL{
		DB:          sqlDB,
		Builder:     goqu.Dialect("postgres").DB(sqlDB),
		Pool:        pool,
		sessionRole: role,
	}, nil
}

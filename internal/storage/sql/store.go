package sql

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/wikimedia/wmcs-edits/internal/domain"
	"github.com/wikimedia/wmcs-edits/internal/routing"
	"github.com/wikimedia/wmcs-edits/internal/storage"
	"github.com/wikimedia/wmcs-edits/internal/validation"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const editIPQuery = `SELECT cuc_ip FROM cu_changes
WHERE cuc_timestamp > ? AND cuc_timestamp < ?`

// Router resolves the endpoint serving a wiki database.
type Router interface {
	Route(ctx context.Context, dbname string) (string, routing.Endpoint, error)
}

// Options configures an Opener.
type Options struct {
	// Driver is the database/sql driver name: mysql, postgres or sqlite3.
	Driver string
	// DSNTemplate builds the DSN for drivers other than mysql. The
	// placeholders {host}, {port}, {dbname}, {user} and {password} are
	// substituted.
	DSNTemplate    string
	Charset        string
	Credentials    Credentials
	ConnectTimeout time.Duration
	// AutoMigrate applies the embedded schema after connecting. Only for
	// fixture databases.
	AutoMigrate bool
}

// Opener opens per-wiki connections routed through a Router.
type Opener struct {
	router Router
	opts   Options
	logger *zap.Logger
}

// Ensure Opener implements storage.Opener.
var _ storage.Opener = (*Opener)(nil)

// NewOpener creates an Opener.
func NewOpener(router Router, opts Options, logger *zap.Logger) (*Opener, error) {
	switch opts.Driver {
	case "mysql":
	case "postgres", "sqlite3":
		if opts.DSNTemplate == "" {
			return nil, fmt.Errorf("driver %s needs a DSN template", opts.Driver)
		}
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{router: router, opts: opts, logger: logger}, nil
}

// DSN builds the data source name for dbname at ep.
func (o *Opener) DSN(dbname string, ep routing.Endpoint) string {
	if o.opts.Driver == "mysql" {
		cfg := mysql.NewConfig()
		cfg.User = o.opts.Credentials.User
		cfg.Passwd = o.opts.Credentials.Password
		cfg.Net = "tcp"
		cfg.Addr = ep.Addr()
		cfg.DBName = dbname
		cfg.Timeout = o.opts.ConnectTimeout
		if o.opts.Charset != "" {
			cfg.Params = map[string]string{"charset": o.opts.Charset}
		}
		return cfg.FormatDSN()
	}

	return strings.NewReplacer(
		"{host}", ep.Host,
		"{port}", strconv.Itoa(ep.Port),
		"{dbname}", dbname,
		"{user}", o.opts.Credentials.User,
		"{password}", o.opts.Credentials.Password,
	).Replace(o.opts.DSNTemplate)
}

// Open connects to the database of dbname.
// Routing and configuration errors are returned as is; connection failures
// wrap domain.ErrDataStore.
func (o *Opener) Open(ctx context.Context, dbname string) (storage.EditLog, error) {
	if err := validation.ValidateDBName(dbname); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataStore, err)
	}

	partition, ep, err := o.router.Route(ctx, dbname)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Routed wiki",
		zap.String("wiki", dbname),
		zap.String("section", partition),
		zap.String("addr", ep.Addr()))

	db, err := sqlx.Open(o.opts.Driver, o.DSN(dbname, ep))
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrDataStore, dbname, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s on %s: %v", domain.ErrDataStore, dbname, ep.Addr(), err)
	}

	if o.opts.AutoMigrate {
		if err := migrate(ctx, db, o.opts.Driver); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: migrating %s: %v", domain.ErrDataStore, dbname, err)
		}
	}

	return &Store{db: db, dbname: dbname}, nil
}

func migrate(ctx context.Context, db *sqlx.DB, driver string) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Store is an open connection to one wiki database.
type Store struct {
	db     *sqlx.DB
	dbname string
}

// Ensure Store implements storage.EditLog.
var _ storage.EditLog = (*Store)(nil)

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// EachEditIP streams the cuc_ip column of changes strictly inside (start, end).
func (s *Store) EachEditIP(ctx context.Context, start, end string, fn func(ip []byte)) error {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(editIPQuery), start, end)
	if err != nil {
		return s.wrap("querying", err)
	}
	defer rows.Close()

	var ip []byte
	for rows.Next() {
		if err := rows.Scan(&ip); err != nil {
			return s.wrap("scanning", err)
		}
		fn(ip)
	}
	if err := rows.Err(); err != nil {
		return s.wrap("reading", err)
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s: query timed out: %v", domain.ErrDataStore, op, s.dbname, err)
	}
	return fmt.Errorf("%w: %s %s: %v", domain.ErrDataStore, op, s.dbname, err)
}

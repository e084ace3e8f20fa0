package sqlgateway

import (
	"context"
	"fmt"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/denismitr/zmigrate/internal/database/sqlgateway/mysql"
	"github.com/denismitr/zmigrate/internal/database/sqlgateway/postgres"
	"github.com/denismitr/zmigrate/internal/database/sqlgateway/sqlite"
	"github.com/denismitr/zmigrate/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"sort"
	"strings"
)

var ErrConnectorClosed = errors.New("database connector is closed")

type PostgresOptions struct {
	LockKey int64
	NoLock  bool
}

type MySQLOptions struct {
	LockKey string
	LockFor int
	NoLock  bool
	Charset string
}

// SQLGateway implements database.Store on top of a single sqlx connection
type SQLGateway struct {
	connector Connector
	locker    database.Locker
	dialect   database.Dialect
	lg        logger.Logger
}

var _ database.Store = (*SQLGateway)(nil)

func NewPostgresGateway(connector Connector, opts *PostgresOptions) *SQLGateway {
	if opts == nil {
		opts = &PostgresOptions{}
	}

	if opts.LockKey == 0 {
		opts.LockKey = postgres.DefaultLockKey
	}

	return newGateway(connector, postgres.NewDialect(), postgres.NewLocker(opts.LockKey, opts.NoLock))
}

func NewMySQLGateway(connector Connector, opts *MySQLOptions) *SQLGateway {
	if opts == nil {
		opts = &MySQLOptions{}
	}

	if opts.LockKey == "" {
		opts.LockKey = mysql.DefaultLockKey
	}

	if opts.LockFor == 0 {
		opts.LockFor = mysql.DefaultLockSeconds
	}

	return newGateway(connector, mysql.NewDialect(opts.Charset), mysql.NewLocker(opts.LockKey, opts.LockFor, opts.NoLock))
}

func NewSqliteGateway(connector Connector) *SQLGateway {
	return newGateway(connector, sqlite.NewDialect(), database.NullLocker{})
}

func newGateway(connector Connector, dialect database.Dialect, locker database.Locker) *SQLGateway {
	return &SQLGateway{
		connector: connector,
		dialect:   dialect,
		locker:    locker,
		lg:        logger.NullLogger{},
	}
}

func (g *SQLGateway) SetLogger(lg logger.Logger) {
	g.lg = lg
}

func (g *SQLGateway) CreateTable(ctx context.Context, table string, columns []database.Column) error {
	if err := database.ValidateIdentifier(table); err != nil {
		return err
	}

	for i := range columns {
		if err := database.ValidateIdentifier(columns[i].Name); err != nil {
			return err
		}
	}

	return g.exec(ctx, g.dialect.CreateTableQuery(table, columns))
}

// ExecuteScript sends the script as is, relying on the driver to run multiple
// statements in one batch. Each statement commits on its own.
func (g *SQLGateway) ExecuteScript(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	return g.exec(ctx, script)
}

func (g *SQLGateway) InsertRow(ctx context.Context, table string, values []database.Value) error {
	if err := database.ValidateIdentifier(table); err != nil {
		return err
	}

	if len(values) == 0 {
		return errors.Errorf("no values to insert into [%s]", table)
	}

	columns := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	args := make([]interface{}, 0, len(values))
	for _, v := range values {
		if err := database.ValidateIdentifier(v.Column); err != nil {
			return err
		}

		columns = append(columns, v.Column)
		placeholders = append(placeholders, "?")
		args = append(args, v.Value)
	}

	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	return g.exec(ctx, q, args...)
}

func (g *SQLGateway) DeleteRows(ctx context.Context, table string, filters ...database.Eq) error {
	if err := database.ValidateIdentifier(table); err != nil {
		return err
	}

	where, args, err := whereClause(filters)
	if err != nil {
		return err
	}

	return g.exec(ctx, "DELETE FROM "+table+where, args...)
}

func (g *SQLGateway) QueryRows(
	ctx context.Context,
	table string,
	columns []string,
	limit int,
	filters ...database.Eq,
) ([]database.Row, error) {
	if err := database.ValidateIdentifier(table); err != nil {
		return nil, err
	}

	selected := "*"
	if len(columns) > 0 {
		if err := database.ValidateIdentifiers(columns...); err != nil {
			return nil, err
		}
		selected = strings.Join(columns, ", ")
	}

	where, args, err := whereClause(filters)
	if err != nil {
		return nil, err
	}

	q := "SELECT " + selected + " FROM " + table + where
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	conn, err := g.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	q = sqlx.Rebind(g.dialect.BindType(), q)
	g.lg.SQL(q, args...)

	rows, err := conn.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not query [%s]", table)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			g.lg.Error(closeErr)
		}
	}()

	var result []database.Row
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return result, errors.Wrapf(err, "could not scan row of [%s]", table)
		}

		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}

		result = append(result, database.Row(row))
	}

	if err := rows.Err(); err != nil {
		return result, errors.Wrapf(err, "[%s] rows iteration failed", table)
	}

	return result, nil
}

func (g *SQLGateway) Lock(ctx context.Context) error {
	conn, err := g.connector.Connect(ctx)
	if err != nil {
		return err
	}

	return g.locker.Lock(ctx, conn)
}

func (g *SQLGateway) Unlock(ctx context.Context) error {
	conn, err := g.connector.Connect(ctx)
	if err != nil {
		return err
	}

	return g.locker.Unlock(ctx, conn)
}

func (g *SQLGateway) Close() error {
	return g.connector.Close()
}

func (g *SQLGateway) exec(ctx context.Context, query string, args ...interface{}) error {
	conn, err := g.connector.Connect(ctx)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		query = sqlx.Rebind(g.dialect.BindType(), query)
	}

	g.lg.SQL(query, args...)

	if _, err := conn.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func whereClause(filters []database.Eq) (string, []interface{}, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}

	sorted := append([]database.Eq(nil), filters...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Column < sorted[j].Column
	})

	conditions := make([]string, 0, len(sorted))
	args := make([]interface{}, 0, len(sorted))
	for _, f := range sorted {
		if err := database.ValidateIdentifier(f.Column); err != nil {
			return "", nil, err
		}

		conditions = append(conditions, f.Column+" = ?")
		args = append(args, f.Value)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

package sqlgateway

import (
	"context"
	"github.com/denismitr/zmigrate/internal/database"
	"github.com/stretchr/testify/require"
	"testing"
)

var showTablesQueries = map[database.Driver]string{
	database.Postgres: "SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = current_schema() ORDER BY tablename",
	database.MySQL:    "SHOW TABLES",
	database.Sqlite:   "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name",
}

// showTables lists the tables visible on the gateway's own connection
func showTables(t *testing.T, ctx context.Context, g *SQLGateway, driver database.Driver) []string {
	t.Helper()

	conn, err := g.connector.Connect(ctx)
	require.NoError(t, err)

	var tables []string
	require.NoError(t, conn.SelectContext(ctx, &tables, showTablesQueries[driver]))

	return tables
}

func dropTables(t *testing.T, ctx context.Context, g *SQLGateway, tables ...string) {
	t.Helper()

	for _, table := range tables {
		require.NoError(t, database.ValidateIdentifier(table))
		require.NoError(t, g.ExecuteScript(ctx, "DROP TABLE IF EXISTS "+table))
	}
}

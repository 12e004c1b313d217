package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/warp/records-engine/config"
	"github.com/warp/records-engine/generic"
	msqlite "modernc.org/sqlite"
)

// mattnDriverName is the mattn driver with the casefold hook installed.
const mattnDriverName = "sqlite3_records"

// modernc registers itself under this name.
const moderncDriverName = "sqlite"

func init() {
	sql.Register(mattnDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(generic.FoldFunc, foldValue, true)
		},
	})

	// modernc functions are global and apply to every new connection.
	err := msqlite.RegisterDeterministicScalarFunction(generic.FoldFunc, 1,
		func(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return foldValue(args[0]), nil
		})
	if err != nil {
		panic(fmt.Sprintf("register %s: %v", generic.FoldFunc, err))
	}
}

// foldValue is the body of the casefold SQL function. NULL stays NULL and
// non-text values pass through unchanged.
func foldValue(v any) any {
	switch s := v.(type) {
	case string:
		return generic.Fold(s)
	case []byte:
		return generic.Fold(string(s))
	default:
		return v
	}
}

// dataSource returns the driver name and DSN for cfg.
func dataSource(cfg config.Database) (string, string, error) {
	busy := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case config.DriverMattn, "":
		dsn := fmt.Sprintf("%s?_foreign_keys=off&_busy_timeout=%d", cfg.Path, busy)
		if cfg.Path != MemoryPath {
			dsn += "&_journal_mode=WAL"
		}
		return mattnDriverName, dsn, nil

	case config.DriverModernc:
		dsn := fmt.Sprintf("%s?_pragma=foreign_keys(0)&_pragma=busy_timeout(%d)", cfg.Path, busy)
		if cfg.Path != MemoryPath {
			dsn += "&_pragma=journal_mode(WAL)"
		}
		return moderncDriverName, dsn, nil

	default:
		return "", "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

package turso

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
	_ "modernc.org/sqlite"
)

const (
	driverLibSQL = "libsql"
	driverSQLite = "sqlite"
)

// localPragmas are applied to every local SQLite connection.
var localPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// DB wraps the connection pool with the driver it was opened with.
type DB struct {
	*sql.DB
	Driver string
}

// NewDB opens the database at rawURL. Remote Turso URLs (libsql://,
// http(s)://, ws(s)://) go through go-libsql with the auth token; file:
// URLs and bare paths open a local SQLite database.
func NewDB(ctx context.Context, rawURL, authToken string) (*DB, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	var (
		db     *sql.DB
		driver string
		err    error
	)
	if isRemote(rawURL) {
		driver = driverLibSQL
		db, err = sql.Open(driverLibSQL, remoteDSN(rawURL, authToken))
	} else {
		driver = driverSQLite
		db, err = openLocal(rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// NewMemoryDB opens a private in-memory SQLite database. Each call returns
// an independent database.
func NewMemoryDB(ctx context.Context) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", uuid.NewString(), pragmaQuery())
	db, err := sql.Open(driverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// The database lives as long as one connection stays open.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{DB: db, Driver: driverSQLite}, nil
}

func isRemote(rawURL string) bool {
	for _, scheme := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return true
		}
	}
	return false
}

func remoteDSN(rawURL, authToken string) string {
	if authToken == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "authToken=" + url.QueryEscape(authToken)
}

func openLocal(rawURL string) (*sql.DB, error) {
	path := strings.TrimPrefix(rawURL, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open(driverSQLite, "file:"+path+"?"+pragmaQuery())
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers, so read-then-write
	// transactions never fail with SQLITE_BUSY on lock upgrade.
	db.SetMaxOpenConns(1)
	return db, nil
}

func pragmaQuery() string {
	parts := make([]string, len(localPragmas))
	for i, p := range localPragmas {
		parts[i] = "_pragma=" + url.QueryEscape(p)
	}
	return strings.Join(parts, "&")
}

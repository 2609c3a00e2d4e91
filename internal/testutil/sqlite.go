// Package testutil provides an in-memory SQLite database with the
// application schema for repository and flow tests.
package testutil

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE clients (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE users (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL
);

CREATE TABLE projects (
	id               TEXT PRIMARY KEY,
	project_name     TEXT NOT NULL,
	client_id        INTEGER REFERENCES clients (id),
	client_vendor_id INTEGER REFERENCES users (id),
	is_block         BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at       DATETIME
);

CREATE TABLE project_participants (
	project_id  TEXT NOT NULL REFERENCES projects (id),
	employee_id INTEGER NOT NULL REFERENCES users (id),
	PRIMARY KEY (project_id, employee_id)
);

CREATE TABLE chat_messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL REFERENCES projects (id),
	client_id  INTEGER,
	user_id    INTEGER,
	message    TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE project_documents (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id    TEXT NOT NULL REFERENCES projects (id),
	document_name TEXT NOT NULL,
	document_type TEXT NOT NULL,
	file_name     TEXT NOT NULL,
	object_key    TEXT NOT NULL,
	content_type  TEXT NOT NULL,
	size          INTEGER NOT NULL,
	upload_by     TEXT NOT NULL,
	client_id     INTEGER,
	user_id       INTEGER,
	upload_date   DATETIME NOT NULL
);

CREATE TABLE notifications (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id TEXT NOT NULL REFERENCES projects (id),
	client_id  INTEGER,
	user_id    INTEGER,
	message    TEXT NOT NULL,
	type       TEXT NOT NULL,
	is_read    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	CHECK ((client_id IS NULL) <> (user_id IS NULL))
);
`

// NewDB opens a fresh in-memory database and closes it when the test ends.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite db: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

// Fixture inserts rows used across tests. Queries are rebound so it works
// against Postgres as well.
type Fixture struct {
	DB *sqlx.DB
	t  testing.TB
}

func NewFixture(t testing.TB, db *sqlx.DB) *Fixture {
	return &Fixture{DB: db, t: t}
}

func (f *Fixture) exec(query string, args ...interface{}) {
	f.t.Helper()
	if _, err := f.DB.Exec(f.DB.Rebind(query), args...); err != nil {
		f.t.Fatalf("fixture %q: %v", query, err)
	}
}

func (f *Fixture) Client(id int64, name string) {
	f.exec(`INSERT INTO clients (id, name) VALUES (?, ?)`, id, name)
}

func (f *Fixture) User(id int64, name, role string) {
	f.exec(`INSERT INTO users (id, name, role) VALUES (?, ?, ?)`, id, name, role)
}

func (f *Fixture) Project(id, name string, clientID, vendorID *int64, blocked bool) {
	f.exec(`INSERT INTO projects (id, project_name, client_id, client_vendor_id, is_block) VALUES (?, ?, ?, ?, ?)`,
		id, name, clientID, vendorID, blocked)
}

func (f *Fixture) Participant(projectID string, employeeID int64) {
	f.exec(`INSERT INTO project_participants (project_id, employee_id) VALUES (?, ?)`, projectID, employeeID)
}

func (f *Fixture) Notification(projectID string, clientID, userID *int64, typ string, read bool, createdAt time.Time) {
	f.exec(`INSERT INTO notifications (project_id, client_id, user_id, message, type, is_read, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		projectID, clientID, userID, "fixture", typ, read, createdAt.UTC(), createdAt.UTC())
}

func (f *Fixture) Count(table string) int {
	f.t.Helper()
	var n int
	if err := f.DB.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		f.t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func Int64(v int64) *int64 {
	return &v
}

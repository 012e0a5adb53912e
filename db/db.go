package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB is a wrapper around sqlx.DB
type DB struct {
	*sqlx.DB
}

// InitDB opens the SQLite database and creates missing tables.
func InitDB(dataSourceName string) (*DB, error) {
	db, err := sqlx.Connect("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers anyway; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	for _, schema := range []string{schemaUser, schemaItemURI, schemaContact, schemaPost, schemaGServer, schemaKeyValue} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &DB{db}, nil
}

// sqlTime formats t the way CURRENT_TIMESTAMP stores it, so stored values compare lexically.
func sqlTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

const schemaUser = `
CREATE TABLE IF NOT EXISTS "user" (
    uid INTEGER PRIMARY KEY AUTOINCREMENT,
    nickname TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    password TEXT NOT NULL DEFAULT '',
    pubkey TEXT NOT NULL DEFAULT '',
    prvkey TEXT NOT NULL DEFAULT '',
    verified INTEGER NOT NULL DEFAULT 0,
    blocked INTEGER NOT NULL DEFAULT 0,
    account_removed INTEGER NOT NULL DEFAULT 0,
    account_expired INTEGER NOT NULL DEFAULT 0,
    register_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    "last-activity" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS user_email ON "user" (email);`

const schemaItemURI = `
CREATE TABLE IF NOT EXISTS "item-uri" (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL UNIQUE
);`

const schemaContact = `
CREATE TABLE IF NOT EXISTS contact (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid INTEGER NOT NULL DEFAULT 0,
    "uri-id" INTEGER NOT NULL DEFAULT 0,
    self INTEGER NOT NULL DEFAULT 0,
    nick TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    addr TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    about TEXT NOT NULL DEFAULT '',
    avatar TEXT NOT NULL DEFAULT '',
    header TEXT NOT NULL DEFAULT '',
    "contact-type" INTEGER NOT NULL DEFAULT 0,
    "manually-approve" INTEGER NOT NULL DEFAULT 0,
    hidden INTEGER NOT NULL DEFAULT 0,
    rel INTEGER NOT NULL DEFAULT 0,
    created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS contact_nick_self ON contact (nick, self);
CREATE INDEX IF NOT EXISTS contact_uri_id ON contact ("uri-id");`

const schemaPost = `
CREATE TABLE IF NOT EXISTS post (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    "uri-id" INTEGER NOT NULL UNIQUE,
    "author-id" INTEGER NOT NULL DEFAULT 0,
    gravity INTEGER NOT NULL DEFAULT 0,
    origin INTEGER NOT NULL DEFAULT 0,
    deleted INTEGER NOT NULL DEFAULT 0,
    created DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

const schemaGServer = `
CREATE TABLE IF NOT EXISTS gserver (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL UNIQUE,
    network TEXT NOT NULL DEFAULT '',
    failed INTEGER NOT NULL DEFAULT 0,
    blocked INTEGER NOT NULL DEFAULT 0
);`

const schemaKeyValue = `
CREATE TABLE IF NOT EXISTS "key-value" (
    k TEXT PRIMARY KEY,
    v TEXT NOT NULL DEFAULT '',
    updated_at INTEGER NOT NULL DEFAULT 0
);`

package database

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	amount      REAL NOT NULL,
	description TEXT NOT NULL,
	category    TEXT NOT NULL,
	date        TIMESTAMP NOT NULL,
	type        TEXT NOT NULL CHECK (type IN ('income', 'expense')),
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category);

CREATE TABLE IF NOT EXISTS budgets (
	id         TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	amount     REAL NOT NULL,
	spent      REAL NOT NULL DEFAULT 0,
	month      TEXT NOT NULL,
	year       INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (category, month, year)
);

CREATE TABLE IF NOT EXISTS goals (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL,
	kind           TEXT NOT NULL,
	target_amount  REAL NOT NULL,
	current_amount REAL NOT NULL DEFAULT 0,
	target_date    TIMESTAMP NOT NULL,
	created_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	id            TEXT PRIMARY KEY,
	symbol        TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	shares        REAL NOT NULL,
	avg_cost      REAL NOT NULL,
	current_price REAL NOT NULL DEFAULT 0,
	last_updated  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS watchlist (
	id       TEXT PRIMARY KEY,
	symbol   TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL DEFAULT '',
	added_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	is_read    INTEGER NOT NULL DEFAULT 0,
	subject    TEXT NOT NULL DEFAULT '',
	period     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts(created_at);

CREATE TABLE IF NOT EXISTS snapshot_cache (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	payload    BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

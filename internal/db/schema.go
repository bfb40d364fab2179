package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    account_id    INTEGER NOT NULL REFERENCES accounts(id),
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'manager', 'staff')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS stores (
    id         INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id),
    name       TEXT NOT NULL,
    address    TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS categories (
    id         INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id),
    name       TEXT NOT NULL,
    UNIQUE (account_id, name)
);

CREATE TABLE IF NOT EXISTS suppliers (
    id         INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id),
    name       TEXT NOT NULL,
    contact    TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at DATETIME
);

CREATE TABLE IF NOT EXISTS items (
    id           INTEGER PRIMARY KEY,
    account_id   INTEGER NOT NULL REFERENCES accounts(id),
    store_id     INTEGER REFERENCES stores(id),
    category_id  INTEGER REFERENCES categories(id),
    supplier_id  INTEGER REFERENCES suppliers(id),
    name         TEXT NOT NULL,
    barcode      TEXT,
    supplier_sku TEXT,
    unit         TEXT NOT NULL DEFAULT 'pc',
    min_stock    REAL NOT NULL DEFAULT 0 CHECK (min_stock >= 0),
    image        BLOB,
    image_mime   TEXT,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_account ON items(account_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_items_barcode ON items(account_id, barcode);

CREATE TABLE IF NOT EXISTS recipes (
    id             INTEGER PRIMARY KEY,
    account_id     INTEGER NOT NULL REFERENCES accounts(id),
    name           TEXT NOT NULL,
    yield_quantity REAL NOT NULL DEFAULT 1,
    yield_unit     TEXT NOT NULL DEFAULT 'portion',
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at     DATETIME
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
    id        INTEGER PRIMARY KEY,
    recipe_id INTEGER NOT NULL REFERENCES recipes(id),
    item_id   INTEGER NOT NULL REFERENCES items(id),
    quantity  REAL NOT NULL CHECK (quantity > 0),
    unit      TEXT NOT NULL,
    UNIQUE (recipe_id, item_id)
);

CREATE TABLE IF NOT EXISTS stock_movements (
    id          INTEGER PRIMARY KEY,
    account_id  INTEGER NOT NULL REFERENCES accounts(id),
    store_id    INTEGER NOT NULL REFERENCES stores(id),
    item_id     INTEGER NOT NULL REFERENCES items(id),
    type        TEXT NOT NULL CHECK (type IN ('purchase', 'usage', 'waste', 'adjustment', 'transfer_in', 'transfer_out')),
    quantity    REAL NOT NULL CHECK (quantity != 0),
    notes       TEXT,
    occurred_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by  INTEGER REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_item ON stock_movements(item_id);
CREATE INDEX IF NOT EXISTS idx_stock_movements_store ON stock_movements(account_id, store_id);

CREATE TABLE IF NOT EXISTS stock_entries (
    id         INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id),
    store_id   INTEGER NOT NULL REFERENCES stores(id),
    item_id    INTEGER NOT NULL REFERENCES items(id),
    quantity   REAL NOT NULL CHECK (quantity >= 0),
    counted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    created_by INTEGER REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_stock_entries_item ON stock_entries(item_id);

CREATE TABLE IF NOT EXISTS supplier_items (
    id          INTEGER PRIMARY KEY,
    supplier_id INTEGER NOT NULL REFERENCES suppliers(id),
    item_id     INTEGER NOT NULL REFERENCES items(id),
    sku         TEXT,
    unit_price  REAL,
    UNIQUE (supplier_id, item_id)
);

-- Candidates outlive the items they name, so item columns carry no foreign keys.
CREATE TABLE IF NOT EXISTS duplicate_candidates (
    id              INTEGER PRIMARY KEY,
    account_id      INTEGER NOT NULL REFERENCES accounts(id),
    item_id         INTEGER NOT NULL,
    matched_item_id INTEGER NOT NULL,
    confidence      REAL NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
    signals         TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'dismissed', 'merged')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    resolved_at     DATETIME,
    resolved_by     INTEGER REFERENCES users(id),
    CHECK (item_id != matched_item_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_duplicate_candidates_pending_pair
    ON duplicate_candidates(account_id, min(item_id, matched_item_id), max(item_id, matched_item_id))
    WHERE status = 'pending';

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY,
    account_id INTEGER NOT NULL REFERENCES accounts(id),
    item_id    INTEGER REFERENCES items(id) ON DELETE SET NULL,
    kind       TEXT NOT NULL,
    message    TEXT NOT NULL,
    read_at    DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

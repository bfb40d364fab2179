package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/erazemk/shramba/internal/model"
)

// RecordMovement appends a line to the stock ledger. Directional types take a
// positive magnitude and are signed by type; adjustments are signed as given.
func RecordMovement(ctx context.Context, db *sql.DB, accountID int64, m model.StockMovement) (*model.StockMovement, error) {
	if err := normalizeMovement(&m); err != nil {
		return nil, err
	}
	if err := ensureActive(ctx, db, "stores", accountID, m.StoreID); err != nil {
		return nil, err
	}
	if _, err := getActiveItem(ctx, db, accountID, m.ItemID); err != nil {
		return nil, err
	}

	id, err := insertMovement(ctx, db, accountID, m)
	if err != nil {
		return nil, err
	}
	return getMovement(ctx, db, accountID, id)
}

func normalizeMovement(m *model.StockMovement) error {
	if !model.ValidMovementType(m.Type) {
		return invalid("unknown movement type %q", m.Type)
	}
	if m.Type == model.MovementAdjustment {
		if m.Quantity == 0 {
			return invalid("adjustment quantity must be non-zero")
		}
	} else {
		if m.Quantity <= 0 {
			return invalid("%s quantity must be positive", m.Type)
		}
		m.Quantity *= model.MovementSign(m.Type)
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now().UTC()
	}
	return nil
}

func insertMovement(ctx context.Context, q Querier, accountID int64, m model.StockMovement) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO stock_movements (account_id, store_id, item_id, type, quantity, notes, occurred_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		accountID, m.StoreID, m.ItemID, m.Type, m.Quantity, nullString(m.Notes), m.OccurredAt.UTC(), m.CreatedBy,
	)
	if err != nil {
		return 0, wrap("recording movement", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting movement id: %w", err)
	}
	return id, nil
}

const movementSelect = `SELECT m.id, m.account_id, m.store_id, m.item_id, m.type, m.quantity, m.notes,
	       m.occurred_at, m.created_by, i.name AS item_name, s.name AS store_name
	FROM stock_movements m
	JOIN items i ON i.id = m.item_id
	JOIN stores s ON s.id = m.store_id`

func getMovement(ctx context.Context, q Querier, accountID, id int64) (*model.StockMovement, error) {
	movements, err := queryMovements(ctx, q, movementSelect+` WHERE m.id = ? AND m.account_id = ?`, id, accountID)
	if err != nil {
		return nil, err
	}
	if len(movements) == 0 {
		return nil, notFound("movement", id)
	}
	return &movements[0], nil
}

// MovementFilter narrows ListMovements. Zero values match everything.
type MovementFilter struct {
	StoreID int64
	ItemID  int64
	Limit   int
}

// ListMovements returns ledger lines, newest first.
func ListMovements(ctx context.Context, db *sql.DB, accountID int64, f MovementFilter) ([]model.StockMovement, error) {
	query := movementSelect + ` WHERE m.account_id = ?`
	args := []any{accountID}

	if f.StoreID > 0 {
		query += ` AND m.store_id = ?`
		args = append(args, f.StoreID)
	}
	if f.ItemID > 0 {
		query += ` AND m.item_id = ?`
		args = append(args, f.ItemID)
	}

	query += ` ORDER BY m.occurred_at DESC, m.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	return queryMovements(ctx, db, query, args...)
}

func queryMovements(ctx context.Context, q Querier, query string, args ...any) ([]model.StockMovement, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	defer rows.Close()

	var movements []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		var notes sql.NullString
		if err := rows.Scan(&m.ID, &m.AccountID, &m.StoreID, &m.ItemID, &m.Type, &m.Quantity, &notes,
			&m.OccurredAt, &m.CreatedBy, &m.ItemName, &m.StoreName); err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		m.Notes = notes.String
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// RecordStockEntry records a physical count. Later movements build on it.
func RecordStockEntry(ctx context.Context, db *sql.DB, accountID int64, e model.StockEntry) (*model.StockEntry, error) {
	if e.Quantity < 0 {
		return nil, invalid("counted quantity must not be negative")
	}
	if err := ensureActive(ctx, db, "stores", accountID, e.StoreID); err != nil {
		return nil, err
	}
	if _, err := getActiveItem(ctx, db, accountID, e.ItemID); err != nil {
		return nil, err
	}
	if e.CountedAt.IsZero() {
		e.CountedAt = time.Now().UTC()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO stock_entries (account_id, store_id, item_id, quantity, counted_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		accountID, e.StoreID, e.ItemID, e.Quantity, e.CountedAt.UTC(), e.CreatedBy,
	)
	if err != nil {
		return nil, wrap("recording stock entry", err)
	}
	e.ID, _ = result.LastInsertId()
	e.AccountID = accountID
	e.CountedAt = e.CountedAt.UTC()
	return &e, nil
}

// TransferStock moves quantity of an item between two stores of an account
// as a transfer_out and transfer_in pair written in one transaction.
func TransferStock(ctx context.Context, db *sql.DB, accountID, itemID, fromStoreID, toStoreID int64, quantity float64, notes string, actorID *int64) ([]model.StockMovement, error) {
	if fromStoreID == toStoreID {
		return nil, invalid("cannot transfer to the same store")
	}
	if quantity <= 0 {
		return nil, invalid("quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	if err := ensureActive(ctx, tx, "stores", accountID, fromStoreID); err != nil {
		return nil, err
	}
	if err := ensureActive(ctx, tx, "stores", accountID, toStoreID); err != nil {
		return nil, err
	}
	if _, err := getActiveItem(ctx, tx, accountID, itemID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := model.StockMovement{
		StoreID: fromStoreID, ItemID: itemID, Type: model.MovementTransferOut,
		Quantity: -quantity, Notes: notes, OccurredAt: now, CreatedBy: actorID,
	}
	in := out
	in.StoreID, in.Type, in.Quantity = toStoreID, model.MovementTransferIn, quantity

	// Writing the outbound line first takes the write lock, so the balance
	// read below cannot be raced by another transfer.
	outID, err := insertMovement(ctx, tx, accountID, out)
	if err != nil {
		return nil, err
	}

	levels, err := ledgerLevels(ctx, tx, accountID, fromStoreID, itemID)
	if err != nil {
		return nil, err
	}
	var remaining float64
	if len(levels) > 0 {
		remaining = levels[0].Quantity
	}
	if remaining < 0 {
		return nil, fmt.Errorf("%w: insufficient quantity: have %g, need %g", ErrInvalidState, remaining+quantity, quantity)
	}

	inID, err := insertMovement(ctx, tx, accountID, in)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("committing transfer", err)
	}

	var movements []model.StockMovement
	for _, id := range []int64{outID, inID} {
		m, err := getMovement(ctx, db, accountID, id)
		if err != nil {
			return nil, err
		}
		movements = append(movements, *m)
	}
	return movements, nil
}

type ledgerKey struct {
	storeID int64
	itemID  int64
}

type ledgerEntry struct {
	id        int64
	key       ledgerKey
	quantity  float64
	countedAt time.Time
}

type ledgerMovement struct {
	key        ledgerKey
	quantity   float64
	occurredAt time.Time
}

// aggregateLevels derives one level per (store, item). The baseline is the
// latest count (ties broken by id); only movements strictly after it apply.
// Without a count every movement applies.
func aggregateLevels(entries []ledgerEntry, movements []ledgerMovement) map[ledgerKey]*model.StockLevel {
	latest := make(map[ledgerKey]ledgerEntry)
	for _, e := range entries {
		cur, ok := latest[e.key]
		if !ok || e.countedAt.After(cur.countedAt) || (e.countedAt.Equal(cur.countedAt) && e.id > cur.id) {
			latest[e.key] = e
		}
	}

	levels := make(map[ledgerKey]*model.StockLevel)
	get := func(k ledgerKey) *model.StockLevel {
		l, ok := levels[k]
		if !ok {
			l = &model.StockLevel{StoreID: k.storeID, ItemID: k.itemID}
			levels[k] = l
		}
		return l
	}

	for k, e := range latest {
		l := get(k)
		l.Quantity = e.quantity
		counted := e.countedAt
		l.CountedAt = &counted
	}
	for _, m := range movements {
		if e, ok := latest[m.key]; ok && !m.occurredAt.After(e.countedAt) {
			continue
		}
		l := get(m.key)
		l.Quantity += m.quantity
		l.Movements++
	}
	return levels
}

// loadLedger reads counts and movements of active items in active stores.
// Zero storeID or itemID matches all.
func loadLedger(ctx context.Context, q Querier, accountID, storeID, itemID int64) ([]ledgerEntry, []ledgerMovement, error) {
	filter := ` AND (? = 0 OR x.store_id = ?) AND (? = 0 OR x.item_id = ?)`
	args := []any{accountID, storeID, storeID, itemID, itemID}
	join := ` JOIN items i ON i.id = x.item_id AND i.deleted_at IS NULL
	          JOIN stores s ON s.id = x.store_id AND s.deleted_at IS NULL`

	rows, err := q.QueryContext(ctx,
		`SELECT x.id, x.store_id, x.item_id, x.quantity, x.counted_at
		 FROM stock_entries x`+join+` WHERE x.account_id = ?`+filter, args...)
	if err != nil {
		return nil, nil, wrap("loading stock entries", err)
	}
	var entries []ledgerEntry
	for rows.Next() {
		var e ledgerEntry
		if err := rows.Scan(&e.id, &e.key.storeID, &e.key.itemID, &e.quantity, &e.countedAt); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scanning stock entry: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("loading stock entries: %w", err)
	}

	rows, err = q.QueryContext(ctx,
		`SELECT x.store_id, x.item_id, x.quantity, x.occurred_at
		 FROM stock_movements x`+join+` WHERE x.account_id = ?`+filter, args...)
	if err != nil {
		return nil, nil, wrap("loading stock movements", err)
	}
	defer rows.Close()
	var movements []ledgerMovement
	for rows.Next() {
		var m ledgerMovement
		if err := rows.Scan(&m.key.storeID, &m.key.itemID, &m.quantity, &m.occurredAt); err != nil {
			return nil, nil, fmt.Errorf("scanning stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return entries, movements, rows.Err()
}

func ledgerLevels(ctx context.Context, q Querier, accountID, storeID, itemID int64) ([]model.StockLevel, error) {
	entries, movements, err := loadLedger(ctx, q, accountID, storeID, itemID)
	if err != nil {
		return nil, err
	}
	agg := aggregateLevels(entries, movements)
	levels := make([]model.StockLevel, 0, len(agg))
	for _, l := range agg {
		levels = append(levels, *l)
	}
	return levels, nil
}

type itemInfo struct {
	name     string
	unit     string
	minStock float64
	storeID  *int64
}

func loadItemInfo(ctx context.Context, q Querier, accountID int64) (map[int64]itemInfo, map[int64]string, error) {
	items := make(map[int64]itemInfo)
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, unit, min_stock, store_id FROM items WHERE account_id = ? AND deleted_at IS NULL`, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading items: %w", err)
	}
	for rows.Next() {
		var id int64
		var info itemInfo
		if err := rows.Scan(&id, &info.name, &info.unit, &info.minStock, &info.storeID); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scanning item: %w", err)
		}
		items[id] = info
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("loading items: %w", err)
	}

	stores := make(map[int64]string)
	rows, err = q.QueryContext(ctx,
		`SELECT id, name FROM stores WHERE account_id = ? AND deleted_at IS NULL`, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading stores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, fmt.Errorf("scanning store: %w", err)
		}
		stores[id] = name
	}
	return items, stores, rows.Err()
}

// CalculateStockByStore returns the current level of every item with ledger
// rows in a store, sorted by store then item name. A zero storeID covers all
// stores of the account.
func CalculateStockByStore(ctx context.Context, db *sql.DB, accountID, storeID int64) ([]model.StockLevel, error) {
	if storeID != 0 {
		if err := ensureActive(ctx, db, "stores", accountID, storeID); err != nil {
			return nil, err
		}
	}
	levels, err := ledgerLevels(ctx, db, accountID, storeID, 0)
	if err != nil {
		return nil, err
	}
	items, stores, err := loadItemInfo(ctx, db, accountID)
	if err != nil {
		return nil, err
	}

	for i := range levels {
		info := items[levels[i].ItemID]
		levels[i].ItemName = info.name
		levels[i].Unit = info.unit
		levels[i].MinStock = info.minStock
		levels[i].StoreName = stores[levels[i].StoreID]
	}
	sort.Slice(levels, func(i, j int) bool {
		a, b := levels[i], levels[j]
		if a.StoreName != b.StoreName {
			return a.StoreName < b.StoreName
		}
		if a.ItemName != b.ItemName {
			return a.ItemName < b.ItemName
		}
		return a.ItemID < b.ItemID
	})
	return levels, nil
}

// GetStockAlerts returns items at or below their minimum stock. Items with a
// minimum and a home store but no ledger rows there count as empty.
func GetStockAlerts(ctx context.Context, db *sql.DB, accountID, storeID int64) ([]model.StockAlert, error) {
	levels, err := CalculateStockByStore(ctx, db, accountID, storeID)
	if err != nil {
		return nil, err
	}
	items, stores, err := loadItemInfo(ctx, db, accountID)
	if err != nil {
		return nil, err
	}

	seen := make(map[ledgerKey]bool, len(levels))
	var alerts []model.StockAlert
	add := func(sid, iid int64, qty float64) {
		info := items[iid]
		if info.minStock <= 0 {
			return
		}
		var severity string
		switch {
		case qty <= 0:
			severity = model.AlertOutOfStock
		case qty < info.minStock:
			severity = model.AlertLowStock
		default:
			return
		}
		alerts = append(alerts, model.StockAlert{
			StoreID: sid, StoreName: stores[sid], ItemID: iid, ItemName: info.name,
			Quantity: qty, MinStock: info.minStock, Unit: info.unit, Severity: severity,
		})
	}

	for _, l := range levels {
		seen[ledgerKey{l.StoreID, l.ItemID}] = true
		add(l.StoreID, l.ItemID, l.Quantity)
	}
	for id, info := range items {
		if info.storeID == nil || seen[ledgerKey{*info.storeID, id}] {
			continue
		}
		if _, ok := stores[*info.storeID]; !ok {
			continue
		}
		if storeID != 0 && *info.storeID != storeID {
			continue
		}
		add(*info.storeID, id, 0)
	}

	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Severity != b.Severity {
			return a.Severity == model.AlertOutOfStock
		}
		if a.ItemName != b.ItemName {
			return strings.ToLower(a.ItemName) < strings.ToLower(b.ItemName)
		}
		return a.StoreName < b.StoreName
	})
	return alerts, nil
}

// CheckLowStock returns the alert for one item in one store, or nil when the
// item is above its minimum.
func CheckLowStock(ctx context.Context, db *sql.DB, accountID, storeID, itemID int64) (*model.StockAlert, error) {
	alerts, err := GetStockAlerts(ctx, db, accountID, storeID)
	if err != nil {
		return nil, err
	}
	for _, a := range alerts {
		if a.ItemID == itemID {
			return &a, nil
		}
	}
	return nil, nil
}

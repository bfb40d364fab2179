package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/shramba/internal/model"
)

const pairMatch = `((item_id = ? AND matched_item_id = ?) OR (item_id = ? AND matched_item_id = ?))`

func pairArgs(a, b int64) []any { return []any{a, b, b, a} }

func actorRef(actorID int64) *int64 {
	if actorID == 0 {
		return nil
	}
	return &actorID
}

// RecordCandidate persists a pending duplicate suggestion for a pair of
// active items. A pending pair is upserted to the higher confidence; a dismissed pair is
// never suggested again and yields (nil, false, nil). created reports whether
// a new row was written, in which case a notification is added as well.
func RecordCandidate(ctx context.Context, db *sql.DB, accountID, itemID, matchedItemID int64, confidence float64, signals []string) (cand *model.DuplicateCandidate, created bool, err error) {
	if itemID == matchedItemID {
		return nil, false, invalid("an item cannot duplicate itself")
	}
	if confidence < 0 || confidence > 1 {
		return nil, false, invalid("confidence %g out of range", confidence)
	}
	joined := strings.Join(signals, ",")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	for _, id := range []int64{itemID, matchedItemID} {
		if _, err := getActiveItem(ctx, tx, accountID, id); err != nil {
			return nil, false, err
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE duplicate_candidates
		 SET signals = CASE WHEN ? > confidence THEN ? ELSE signals END,
		     confidence = MAX(confidence, ?)
		 WHERE account_id = ? AND status = 'pending' AND `+pairMatch,
		append([]any{confidence, joined, confidence, accountID}, pairArgs(itemID, matchedItemID)...)...,
	)
	if err != nil {
		return nil, false, wrap("updating candidate", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		var dismissed int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM duplicate_candidates
			 WHERE account_id = ? AND status = 'dismissed' AND `+pairMatch,
			append([]any{accountID}, pairArgs(itemID, matchedItemID)...)...,
		).Scan(&dismissed)
		if err != nil {
			return nil, false, wrap("checking dismissed candidates", err)
		}
		if dismissed > 0 {
			return nil, false, nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO duplicate_candidates (account_id, item_id, matched_item_id, confidence, signals)
			 VALUES (?, ?, ?, ?, ?)`,
			accountID, itemID, matchedItemID, confidence, joined,
		); err != nil {
			if isUniqueViolation(err) {
				return nil, false, fmt.Errorf("%w: candidate pair already pending", ErrConflict)
			}
			return nil, false, wrap("creating candidate", err)
		}
		created = true
	}

	cand, err = pendingCandidate(ctx, tx, accountID, itemID, matchedItemID)
	if err != nil {
		return nil, false, err
	}

	if created {
		msg := fmt.Sprintf("%q may duplicate %q (%.0f%% match)", cand.ItemName, cand.MatchedItemName, confidence*100)
		if _, err := createNotification(ctx, tx, accountID, &itemID, model.NotifyDuplicateCandidate, msg); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, wrap("committing candidate", err)
	}
	return cand, created, nil
}

const candidateSelect = `SELECT c.id, c.account_id, c.item_id, c.matched_item_id, c.confidence, c.signals,
	       c.status, c.created_at, c.resolved_at, c.resolved_by,
	       COALESCE(i.name, ''), COALESCE(m.name, '')
	FROM duplicate_candidates c
	LEFT JOIN items i ON i.id = c.item_id
	LEFT JOIN items m ON m.id = c.matched_item_id`

func pendingCandidate(ctx context.Context, q Querier, accountID, a, b int64) (*model.DuplicateCandidate, error) {
	cands, err := queryCandidates(ctx, q,
		candidateSelect+` WHERE c.account_id = ? AND c.status = 'pending'
		  AND ((c.item_id = ? AND c.matched_item_id = ?) OR (c.item_id = ? AND c.matched_item_id = ?))`,
		append([]any{accountID}, pairArgs(a, b)...)...)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("pending candidate for %d/%d: %w", a, b, ErrNotFound)
	}
	return &cands[0], nil
}

// GetCandidate returns a candidate of the account by ID.
func GetCandidate(ctx context.Context, db *sql.DB, accountID, id int64) (*model.DuplicateCandidate, error) {
	return getCandidate(ctx, db, accountID, id)
}

func getCandidate(ctx context.Context, q Querier, accountID, id int64) (*model.DuplicateCandidate, error) {
	cands, err := queryCandidates(ctx, q, candidateSelect+` WHERE c.id = ? AND c.account_id = ?`, id, accountID)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}
	return &cands[0], nil
}

// ListCandidates returns candidates of an account, highest confidence first.
// An empty status matches all; a non-zero itemID limits to pairs naming it.
func ListCandidates(ctx context.Context, db *sql.DB, accountID int64, status string, itemID int64) ([]model.DuplicateCandidate, error) {
	query := candidateSelect + ` WHERE c.account_id = ?`
	args := []any{accountID}

	if status != "" {
		query += ` AND c.status = ?`
		args = append(args, status)
	}
	if itemID > 0 {
		query += ` AND (c.item_id = ? OR c.matched_item_id = ?)`
		args = append(args, itemID, itemID)
	}
	query += ` ORDER BY c.confidence DESC, c.id`

	return queryCandidates(ctx, db, query, args...)
}

func queryCandidates(ctx context.Context, q Querier, query string, args ...any) ([]model.DuplicateCandidate, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("listing candidates", err)
	}
	defer rows.Close()

	var cands []model.DuplicateCandidate
	for rows.Next() {
		var c model.DuplicateCandidate
		var signals string
		if err := rows.Scan(&c.ID, &c.AccountID, &c.ItemID, &c.MatchedItemID, &c.Confidence, &signals,
			&c.Status, &c.CreatedAt, &c.ResolvedAt, &c.ResolvedBy, &c.ItemName, &c.MatchedItemName); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		c.Signals = splitSignals(signals)
		cands = append(cands, c)
	}
	return cands, rows.Err()
}

func splitSignals(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// DismissDuplicate marks a pending candidate as not a duplicate. Dismissing
// an already dismissed candidate succeeds without change; a merged one fails
// with ErrInvalidState.
func DismissDuplicate(ctx context.Context, db *sql.DB, accountID, candidateID, actorID int64) (*model.DuplicateCandidate, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE duplicate_candidates SET status = 'dismissed', resolved_at = ?, resolved_by = ?
		 WHERE id = ? AND account_id = ? AND status = 'pending'`,
		time.Now().UTC(), actorRef(actorID), candidateID, accountID,
	); err != nil {
		return nil, wrap("dismissing candidate", err)
	}

	c, err := getCandidate(ctx, tx, accountID, candidateID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("candidate", candidateID)
	}
	if c.Status == model.CandidateMerged {
		return nil, fmt.Errorf("%w: candidate %d is already merged", ErrInvalidState, candidateID)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("committing dismissal", err)
	}
	return c, nil
}

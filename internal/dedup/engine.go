package dedup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// Engine runs matching against an account's items and records, merges and
// dismisses duplicate candidates. Every call is scoped to one account.
type Engine struct {
	db  *sql.DB
	cfg Config
}

// New returns an engine. The config must be valid.
func New(db *sql.DB, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dedup config: %w", err)
	}
	return &Engine{db: db, cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// FindPotentialMatches ranks the account's active items against q. A non-zero
// excludeItemID leaves that item out, for re-checking an existing item.
func (e *Engine) FindPotentialMatches(ctx context.Context, q model.MatchQuery, accountID, excludeItemID int64) ([]model.Match, error) {
	if _, err := prepare(q); err != nil {
		return nil, err
	}
	items, err := store.ListItemsForMatching(ctx, e.db, accountID, excludeItemID)
	if err != nil {
		return nil, err
	}
	return Rank(q, items, e.cfg)
}

// CheckResult is the outcome of checking one item.
type CheckResult struct {
	Matches    []model.Match              `json:"matches"`
	Candidates []model.DuplicateCandidate `json:"candidates"`
	Created    int                        `json:"created"`
}

// CheckItem matches an existing item against its peers and records a pending
// candidate for every match at or above the candidate threshold.
func (e *Engine) CheckItem(ctx context.Context, accountID, itemID int64) (*CheckResult, error) {
	item, err := store.GetItem(ctx, e.db, accountID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, fmt.Errorf("item %d: %w", itemID, store.ErrNotFound)
	}

	matches, err := e.FindPotentialMatches(ctx, model.QueryFromItem(item), accountID, itemID)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{Matches: matches, Candidates: []model.DuplicateCandidate{}}
	for _, m := range matches {
		if m.Confidence < e.cfg.CandidateThreshold {
			break // sorted descending
		}
		cand, created, err := store.RecordCandidate(ctx, e.db, accountID, itemID, m.Item.ID, m.Confidence, m.Signals)
		if errors.Is(err, store.ErrNotFound) {
			continue // deleted or merged since matching
		}
		if err != nil {
			return nil, err
		}
		if cand == nil {
			continue // dismissed before
		}
		if created {
			res.Created++
			slog.Info("duplicate candidate recorded", "account_id", accountID,
				"item", item.Name, "matched_item", m.Item.Name, "confidence", m.Confidence, "signals", m.Signals)
		}
		res.Candidates = append(res.Candidates, *cand)
	}
	return res, nil
}

// ScanReport summarises ScanAccount.
type ScanReport struct {
	Items      int                        `json:"items"`
	Created    int                        `json:"created"`
	Candidates []model.DuplicateCandidate `json:"candidates"`
}

// ScanAccount checks every active item of an account.
func (e *Engine) ScanAccount(ctx context.Context, accountID int64) (*ScanReport, error) {
	items, err := store.ListItemsForMatching(ctx, e.db, accountID, 0)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{Candidates: []model.DuplicateCandidate{}}
	seen := make(map[int64]bool)
	for _, item := range items {
		res, err := e.CheckItem(ctx, accountID, item.ID)
		if err != nil {
			return nil, fmt.Errorf("checking item %d: %w", item.ID, err)
		}
		report.Items++
		report.Created += res.Created
		for _, c := range res.Candidates {
			if !seen[c.ID] {
				seen[c.ID] = true
				report.Candidates = append(report.Candidates, c)
			}
		}
	}
	return report, nil
}

// GetAffectedByMerge reports what merging removeID into keepID would change.
func (e *Engine) GetAffectedByMerge(ctx context.Context, accountID, removeID, keepID int64) (*model.MergeImpact, error) {
	return store.GetAffectedByMerge(ctx, e.db, accountID, removeID, keepID)
}

// MergeItems folds removeID into keepID.
func (e *Engine) MergeItems(ctx context.Context, accountID, removeID, keepID, actorID int64) (*model.MergeResult, error) {
	return store.MergeItems(ctx, e.db, accountID, removeID, keepID, actorID)
}

// DismissDuplicate marks a candidate as not a duplicate.
func (e *Engine) DismissDuplicate(ctx context.Context, accountID, candidateID, actorID int64) (*model.DuplicateCandidate, error) {
	return store.DismissDuplicate(ctx, e.db, accountID, candidateID, actorID)
}

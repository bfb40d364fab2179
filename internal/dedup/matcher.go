package dedup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// Signal scores.
const (
	barcodeScore     = 1.0
	supplierSKUScore = 0.9
	exactNameScore   = 0.95
	corroborateBoost = 0.10

	similarFloor = 0.85 // similarity at which the similar band starts
	partialFloor = 0.5  // below this, names are unrelated
)

// nameScore maps a similarity in [0,1] onto a confidence band:
//
//	sim >= 0.85        -> 0.60 .. 0.85 (name_similar)
//	0.5 <= sim < 0.85  -> 0.25 .. 0.60 (name_partial)
//	sim < 0.5          -> 0
func nameScore(sim float64) (float64, string) {
	switch {
	case sim >= similarFloor:
		return 0.60 + (sim-similarFloor)/(1-similarFloor)*0.25, model.SignalNameSimilar
	case sim >= partialFloor:
		return 0.25 + (sim-partialFloor)/(similarFloor-partialFloor)*0.35, model.SignalNamePartial
	default:
		return 0, ""
	}
}

// query is a MatchQuery with its comparison keys precomputed.
type query struct {
	model.MatchQuery
	barcode string
	sku     string
	name    string
}

func prepare(q model.MatchQuery) (query, error) {
	if strings.TrimSpace(q.Name) == "" {
		return query{}, fmt.Errorf("%w: name is required", store.ErrInvalidArgument)
	}
	return query{
		MatchQuery: q,
		barcode:    strings.TrimSpace(q.Barcode),
		sku:        strings.TrimSpace(q.SupplierSKU),
		name:       NormalizeName(q.Name),
	}, nil
}

// score computes the confidence that item is the good described by q, and
// the signals that contributed.
func (q query) score(item model.Item) (float64, []string) {
	if q.barcode != "" && q.barcode == strings.TrimSpace(item.Barcode) {
		return barcodeScore, []string{model.SignalBarcode}
	}

	var signals []string
	var skuConf float64
	if q.sku != "" && strings.EqualFold(q.sku, strings.TrimSpace(item.SupplierSKU)) && model.SameID(q.SupplierID, item.SupplierID) {
		skuConf = supplierSKUScore
		signals = append(signals, model.SignalSupplierSKU)
	}

	var nameConf float64
	if itemName := NormalizeName(item.Name); q.name != "" && itemName != "" {
		if q.name == itemName {
			nameConf = exactNameScore
			signals = append(signals, model.SignalNameExact)
		} else if s, sig := nameScore(Similarity(q.name, itemName)); s > 0 {
			nameConf = s
			signals = append(signals, sig)
		}
	}
	if nameConf > 0 && model.SameID(q.CategoryID, item.CategoryID) && model.SameID(q.SupplierID, item.SupplierID) {
		nameConf = min(nameConf+corroborateBoost, 1.0)
		signals = append(signals, model.SignalCategorySupplier)
	}

	return max(skuConf, nameConf), signals
}

// Score returns the confidence that item duplicates the good described by q.
func Score(q model.MatchQuery, item model.Item) (float64, []string, error) {
	pq, err := prepare(q)
	if err != nil {
		return 0, nil, err
	}
	conf, signals := pq.score(item)
	return conf, signals, nil
}

// Rank scores every item against q and returns the matches at or above
// cfg.MinConfidence, by confidence descending, then name and id ascending.
// It does not filter by account; callers pass one account's items.
func Rank(q model.MatchQuery, items []model.Item, cfg Config) ([]model.Match, error) {
	pq, err := prepare(q)
	if err != nil {
		return nil, err
	}

	matches := []model.Match{}
	for _, item := range items {
		conf, signals := pq.score(item)
		if conf <= 0 || conf < cfg.MinConfidence {
			continue
		}
		matches = append(matches, model.Match{Item: item, Confidence: conf, Signals: signals})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Item.Name != b.Item.Name {
			return a.Item.Name < b.Item.Name
		}
		return a.Item.ID < b.Item.ID
	})

	if cfg.MaxMatches > 0 && len(matches) > cfg.MaxMatches {
		matches = matches[:cfg.MaxMatches]
	}
	return matches, nil
}

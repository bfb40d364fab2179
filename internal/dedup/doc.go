// Package dedup finds items that are probably the same real-world good and
// drives their review: recording candidates, planning and executing merges,
// and dismissing false positives.
//
// Matching combines independent signals per existing item:
//
//   - identical barcode: confidence 1.0, no other signal considered
//   - identical supplier SKU from the same supplier: 0.9
//   - name similarity, scaled into bands (see nameScore)
//   - same category and supplier: +0.10 on top of a name score
//
// Persistence lives in internal/store; this package owns scoring and the
// orchestration around it.
package dedup

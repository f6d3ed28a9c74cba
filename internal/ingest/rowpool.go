package ingest

import "sync"

// Row is a pooled container holding one raw input row aligned to the
// canonical column order. Empty cells are nil.
//
// Ownership contract:
//   - Exactly one goroutine owns a Row at a time.
//   - Rows are passed from the reader to the validator via a channel
//     (ownership transfer).
//   - The consumer calls Free() after it is fully done with the Row and
//     anything referencing r.V.
//
// On cancellation paths use Drop() instead of Free(): a canceled consumer
// may still be reading a Row while the reader unwinds, and re-pooling it
// lets the reader reuse it concurrently.
type Row struct {
	V    []any
	Line int // 1-based record number including the header line
}

var rowPool sync.Pool

// getRow returns a pooled Row sized for colCount fields, all nil.
func getRow(colCount int) *Row {
	if v := rowPool.Get(); v != nil {
		r := v.(*Row)
		if cap(r.V) < colCount {
			r.V = make([]any, colCount)
		}
		r.V = r.V[:colCount]
		for i := range r.V {
			r.V[i] = nil
		}
		r.Line = 0
		return r
	}
	return &Row{V: make([]any, colCount)}
}

// Free returns the Row to the pool. Only call when no other goroutine can
// observe r or r.V.
func (r *Row) Free() {
	rowPool.Put(r)
}

// Drop discards the Row without re-pooling. Use on cancellation paths.
func (r *Row) Drop() {
	r.V = nil
	r.Line = 0
}

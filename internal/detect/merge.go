// Package detect implements the recency merge and the statistical test the
// controller runs against each live purchase.
package detect

import (
	"container/heap"

	"github.com/sjoshi/netflag/internal/domain"
)

// cursor tracks the unconsumed tail of one user's history. idx points at
// the user's current candidate; entries after idx have been consumed.
type cursor struct {
	history []domain.Purchase
	idx     int
}

func (c cursor) current() domain.Purchase {
	return c.history[c.idx]
}

// tailHeap is a max-heap keyed by the candidate's sequence number, holding
// at most one cursor per contributing user.
type tailHeap []cursor

func (h tailHeap) Len() int           { return len(h) }
func (h tailHeap) Less(i, j int) bool { return h[i].current().Seq > h[j].current().Seq }
func (h tailHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *tailHeap) Push(x any)        { *h = append(*h, x.(cursor)) }

func (h *tailHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// LatestN merges the supplied pre-sorted purchase histories and returns
// the n most recent purchases across all of them, newest first. Histories
// must be sorted by ascending sequence number, which per-user histories
// always are. Empty histories contribute nothing. The result holds exactly
// min(n, total entries) purchases.
//
// Building the candidate heap costs O(k) for k non-empty histories; each
// of the up-to-n extractions costs O(log k), so the merge never touches
// entries older than the n it returns.
func LatestN(histories [][]domain.Purchase, n int) []domain.Purchase {
	if n <= 0 {
		return nil
	}

	tails := make(tailHeap, 0, len(histories))
	for _, hist := range histories {
		if len(hist) == 0 {
			continue
		}
		tails = append(tails, cursor{history: hist, idx: len(hist) - 1})
	}
	heap.Init(&tails)

	merged := make([]domain.Purchase, 0, n)
	for tails.Len() > 0 && len(merged) < n {
		top := tails[0]
		merged = append(merged, top.current())
		if top.idx > 0 {
			tails[0].idx--
			heap.Fix(&tails, 0)
		} else {
			heap.Pop(&tails)
		}
	}
	return merged
}

// Amounts projects merged purchases onto their amounts, preserving order.
func Amounts(purchases []domain.Purchase) []float64 {
	amounts := make([]float64, len(purchases))
	for i, p := range purchases {
		amounts[i] = p.Amount
	}
	return amounts
}

package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjoshi/netflag/internal/domain"
)

func hist(pairs ...[2]float64) []domain.Purchase {
	out := make([]domain.Purchase, len(pairs))
	for i, p := range pairs {
		out[i] = domain.Purchase{Seq: uint64(p[0]), Amount: p[1]}
	}
	return out
}

func TestLatestNNewestFirst(t *testing.T) {
	histories := [][]domain.Purchase{
		hist([2]float64{1, 100}, [2]float64{4, 400}, [2]float64{7, 700}),
		hist([2]float64{2, 200}, [2]float64{5, 500}),
		hist([2]float64{3, 300}, [2]float64{6, 600}),
	}

	merged := LatestN(histories, 4)
	require.Len(t, merged, 4)
	assert.Equal(t, []float64{700, 600, 500, 400}, Amounts(merged))
}

func TestLatestNReturnsMinOfWindowAndAvailable(t *testing.T) {
	histories := [][]domain.Purchase{
		hist([2]float64{1, 10}),
		nil,
		hist([2]float64{2, 20}, [2]float64{3, 30}),
	}

	assert.Len(t, LatestN(histories, 10), 3)
	assert.Len(t, LatestN(histories, 2), 2)
	assert.Empty(t, LatestN(histories, 0))
	assert.Empty(t, LatestN(nil, 5))
}

func TestLatestNEveryReturnedNewerThanEveryUnreturned(t *testing.T) {
	histories := [][]domain.Purchase{
		hist([2]float64{1, 1}, [2]float64{5, 5}, [2]float64{9, 9}),
		hist([2]float64{2, 2}, [2]float64{6, 6}),
		hist([2]float64{3, 3}, [2]float64{4, 4}, [2]float64{7, 7}, [2]float64{8, 8}),
	}

	merged := LatestN(histories, 4)
	require.Len(t, merged, 4)

	returned := make(map[uint64]bool, len(merged))
	var minReturned uint64 = ^uint64(0)
	for _, p := range merged {
		returned[p.Seq] = true
		if p.Seq < minReturned {
			minReturned = p.Seq
		}
	}
	for _, h := range histories {
		for _, p := range h {
			if !returned[p.Seq] {
				assert.Less(t, p.Seq, minReturned)
			}
		}
	}
}

func TestLatestNSingleUserDrainsTail(t *testing.T) {
	histories := [][]domain.Purchase{
		hist([2]float64{1, 10}, [2]float64{2, 20}, [2]float64{3, 30}, [2]float64{4, 40}),
	}

	merged := LatestN(histories, 3)
	assert.Equal(t, []float64{40, 30, 20}, Amounts(merged))
}

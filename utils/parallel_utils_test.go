package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				histo[pm.GetBucketDimension(np)]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Buckets tile the index range in order
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			var (
				pm   = NewPartitionMap(5, maxIndex)
				next int
			)
			for bn := 0; bn < pm.ParallelDegree; bn++ {
				lo, hi := pm.GetBucketRange(bn)
				assert.Equal(t, next, lo)
				assert.Equal(t, hi-lo, pm.GetBucketDimension(bn))
				next = hi
			}
			assert.Equal(t, maxIndex, next)
		}
		pm := NewPartitionMap(3, 10)
		assert.Equal(t, 10, pm.GetBucketDimension(-1))
	}
	{ // Batches
		pm := NewBatchMap(4096, 10000)
		assert.Equal(t, 3, pm.ParallelDegree)
		assert.Equal(t, 3334, pm.GetBucketDimension(0))
		pm = NewBatchMap(4096, 0)
		assert.Equal(t, 1, pm.ParallelDegree)
		assert.Equal(t, 0, pm.GetBucketDimension(0))
		assert.Panics(t, func() { NewPartitionMap(0, 10) })
	}
	{ // Small integer powers
		for _, x := range []float64{0.3, -1.7, 2} {
			for p := -10; p <= 10; p++ {
				assert.InDelta(t, math.Pow(x, float64(p)), POW(x, p), 1.e-12*math.Max(1, math.Abs(math.Pow(x, float64(p)))))
			}
		}
		assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
		assert.Equal(t, 0., Mean(nil))
	}
}

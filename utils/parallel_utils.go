package utils

import "fmt"

// PartitionMap splits the index range [0,MaxIndex) into ParallelDegree contiguous buckets
type PartitionMap struct {
	MaxIndex       int
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of each bucket
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		panic(fmt.Errorf("parallel degree must be positive, have %d", ParallelDegree))
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

// NewBatchMap partitions maxIndex items into buckets of at most batchSize
func NewBatchMap(batchSize, maxIndex int) *PartitionMap {
	nb := (maxIndex + batchSize - 1) / batchSize
	if nb == 0 {
		nb = 1
	}
	return NewPartitionMap(nb, maxIndex)
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		return pm.MaxIndex
	}
	k1, k2 := pm.GetBucketRange(bn)
	return k2 - k1
}

// Split1D returns the range of bucket threadNum, the remainder goes one each to the first buckets
func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	var (
		Npart     = pm.MaxIndex / pm.ParallelDegree
		remainder = pm.MaxIndex % pm.ParallelDegree
	)
	bucket[0] = threadNum*Npart + min(threadNum, remainder)
	bucket[1] = bucket[0] + Npart
	if threadNum < remainder {
		bucket[1]++
	}
	return
}

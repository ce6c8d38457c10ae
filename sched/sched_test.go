package sched

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialOrder(t *testing.T) {
	var got []int
	Serial{}.ForEach(2, 6, func(thread, i int) {
		assert.Equal(t, 0, thread)
		got = append(got, i)
	})
	assert.Equal(t, []int{2, 3, 4, 5}, got)
}

func TestPoolCoversRange(t *testing.T) {
	p := NewPool(4)
	assert.Equal(t, 4, p.ThreadCnt())

	const n = 1000
	seen := make([]int32, n)
	p.ForEach(0, n, func(thread, i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, c := range seen {
		assert.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestPoolSmallRange(t *testing.T) {
	p := NewPool(8)
	var cnt int32
	p.ForEach(0, 3, func(thread, i int) {
		atomic.AddInt32(&cnt, 1)
	})
	assert.Equal(t, int32(3), cnt)

	p.ForEach(5, 5, func(thread, i int) {
		t.Fatal("empty range must not run")
	})
}

func TestParallelForSum(t *testing.T) {
	p := NewPool(3)
	tl := NewThreadLocal[int64](p, func() int64 { return 0 })
	p.ForEach(1, 101, func(thread, i int) {
		*tl.Local(thread) += int64(i)
	})
	var total int64
	for _, v := range tl.Values() {
		total += v
	}
	assert.Equal(t, int64(5050), total)

	var serialTotal int64
	ParallelFor(Serial{}, 1, 101, func(i int) { serialTotal += int64(i) })
	assert.Equal(t, int64(5050), serialTotal)
}

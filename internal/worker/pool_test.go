package worker_test

import (
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tghelper/quizbank/internal/worker"
)

func TestPool_RunsEveryJob(t *testing.T) {
	pool := worker.NewPool[int](3, 10)

	for i := 0; i < 10; i++ {
		n := i
		pool.Submit(strconv.Itoa(n), func() int { return n * n })
	}
	pool.Close()

	got := make(map[string]int)
	for r := range pool.Results() {
		got[r.JobID] = r.Output
	}

	assert.Len(t, got, 10)
	assert.Equal(t, 81, got["9"])
	assert.Equal(t, 0, got["0"])
}

func TestPool_SmallBufferDoesNotDeadlock(t *testing.T) {
	pool := worker.NewPool[struct{}](2, 1)
	var ran atomic.Int32

	go func() {
		for i := 0; i < 20; i++ {
			pool.Submit(strconv.Itoa(i), func() struct{} {
				ran.Add(1)
				return struct{}{}
			})
		}
		pool.Close()
	}()

	count := 0
	for range pool.Results() {
		count++
	}

	assert.Equal(t, 20, count)
	assert.Equal(t, int32(20), ran.Load())
}

func TestPool_CloseIsIdempotent(t *testing.T) {
	pool := worker.NewPool[int](0, 0)
	pool.Close()
	pool.Close()

	_, open := <-pool.Results()
	assert.False(t, open)
}

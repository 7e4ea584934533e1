package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pending struct {
	Path string
	MD5  string
}

func TestQueue(t *testing.T) {
	tests := []struct {
		name  string
		ops   func(q *Queue[pending])
		check func(t *testing.T, q *Queue[pending])
	}{
		{"new queue is empty", func(q *Queue[pending]) {}, func(t *testing.T, q *Queue[pending]) {
			assert.True(t, q.Empty())
			assert.Equal(t, 0, q.Len())
			assert.Empty(t, q.GetAndEmpty())
		}},
		{"push keeps order", func(q *Queue[pending]) {
			q.Push(pending{Path: "a.osu"})
			q.Push(pending{Path: "b.osu"}, pending{Path: "c.osu"})
		}, func(t *testing.T, q *Queue[pending]) {
			assert.Equal(t, 3, q.Len())
			items := q.GetAndEmpty()
			assert.Equal(t, []pending{{Path: "a.osu"}, {Path: "b.osu"}, {Path: "c.osu"}}, items)
			assert.True(t, q.Empty())
		}},
		{"requeue goes ahead of newer items", func(q *Queue[pending]) {
			q.Push(pending{Path: "a.osu"}, pending{Path: "b.osu"})
			taken := q.GetAndEmpty()
			q.Push(pending{Path: "c.osu"})
			q.Requeue(taken...)
		}, func(t *testing.T, q *Queue[pending]) {
			assert.Equal(t, []pending{{Path: "a.osu"}, {Path: "b.osu"}, {Path: "c.osu"}}, q.GetAndEmpty())
		}},
		{"requeue nothing", func(q *Queue[pending]) {
			q.Push(pending{Path: "a.osu"})
			q.Requeue()
		}, func(t *testing.T, q *Queue[pending]) {
			assert.Equal(t, 1, q.Len())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New[pending]()
			tt.ops(q)
			tt.check(t, q)
		})
	}
}

func TestQueue_GetAndEmptyDetaches(t *testing.T) {
	q := New[pending]()
	q.Push(pending{MD5: "x"})
	items := q.GetAndEmpty()
	q.Push(pending{MD5: "y"})

	assert.Equal(t, []pending{{MD5: "x"}}, items)
	assert.Equal(t, []pending{{MD5: "y"}}, q.GetAndEmpty())
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(i*100 + j)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1000, q.Len())

	seen := make(map[int]bool)
	for _, v := range q.GetAndEmpty() {
		seen[v] = true
	}
	assert.Len(t, seen, 1000)
}

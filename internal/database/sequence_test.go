package database

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSequence struct {
	mu sync.Mutex
	n  map[string]int64
}

func (m *memSequence) Next(_ context.Context, series string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.n == nil {
		m.n = map[string]int64{}
	}
	m.n[series]++
	return m.n[series], nil
}

type failingSequence struct{}

func (failingSequence) Next(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func withSequence(t *testing.T, s Sequence) {
	prev := IDs
	IDs = s
	t.Cleanup(func() { IDs = prev })
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "RISK-0001", FormatID(SeriesRisk, 1))
	assert.Equal(t, "ASSESS-0042", FormatID(SeriesAssessment, 42))
	assert.Equal(t, "RISK-12345", FormatID(SeriesRisk, 12345))
}

func TestNextID_UniqueUnderConcurrency(t *testing.T) {
	withSequence(t, &memSequence{})

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := NextID(context.Background(), SeriesRisk)
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.False(t, seen[id], id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["RISK-0050"])
}

func TestNextID_Errors(t *testing.T) {
	withSequence(t, nil)
	_, err := NextID(context.Background(), SeriesRisk)
	require.Error(t, err)

	withSequence(t, failingSequence{})
	_, err = NextID(context.Background(), SeriesAssessment)
	assert.ErrorContains(t, err, "reserve assessment identifier: connection refused")
}

func TestPage(t *testing.T) {
	p := Page{}.Normalize()
	assert.Equal(t, Page{Page: 1, Limit: DefaultPageLimit}, p)
	assert.Equal(t, 0, p.Offset())

	p = Page{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, MaxPageLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())
	assert.Equal(t, 3, Page{Limit: 10}.TotalPages(21))
	assert.Equal(t, 0, Page{Limit: 10}.TotalPages(0))
}

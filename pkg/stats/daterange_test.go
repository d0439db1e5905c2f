package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redsum/redsum/pkg/stats"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}

	return t
}

func TestDateRange_EmptyIsAbsent(t *testing.T) {
	t.Parallel()

	var r stats.DateRange

	_, _, ok := r.Bounds()
	assert.False(t, ok)
}

func TestDateRange_ObserveWidens(t *testing.T) {
	t.Parallel()

	var r stats.DateRange

	r.Observe(date("2021-06-15"))
	r.Observe(date("2021-01-01"))
	r.Observe(date("2021-12-31"))
	r.Observe(date("2021-03-03"))

	first, last, ok := r.Bounds()
	require.True(t, ok)
	assert.Equal(t, date("2021-01-01"), first)
	assert.Equal(t, date("2021-12-31"), last)
	assert.False(t, last.Before(first))
}

func TestDateRange_SingleObservation(t *testing.T) {
	t.Parallel()

	var r stats.DateRange

	r.Observe(date("2020-02-29"))

	first, last, ok := r.Bounds()
	require.True(t, ok)
	assert.Equal(t, first, last)
}

func TestDateRange_Merge(t *testing.T) {
	t.Parallel()

	var a, b, empty stats.DateRange

	a.Observe(date("2021-05-01"))
	a.Observe(date("2021-05-10"))

	b.Observe(date("2020-01-01"))
	b.Observe(date("2022-01-01"))

	a.Merge(empty)

	first, last, ok := a.Bounds()
	require.True(t, ok)
	assert.Equal(t, date("2021-05-01"), first)
	assert.Equal(t, date("2021-05-10"), last)

	a.Merge(b)

	first, last, ok = a.Bounds()
	require.True(t, ok)
	assert.Equal(t, date("2020-01-01"), first)
	assert.Equal(t, date("2022-01-01"), last)
}

package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1+n, 0, 0, 0, 0, time.UTC)
}

func TestLineageInfoObserveFirstCall(t *testing.T) {
	var l lineageInfo
	revs, days := l.observe(day(0))
	assert.Equal(t, 1, revs)
	assert.Equal(t, 0, days)
}

func TestLineageInfoObserveAccumulates(t *testing.T) {
	var l lineageInfo
	l.observe(day(0))
	l.observe(day(5))
	revs, days := l.observe(day(12))
	assert.Equal(t, 3, revs)
	assert.Equal(t, 12, days)
}

func TestLineageInfoSnapshotDoesNotAdvance(t *testing.T) {
	var l lineageInfo
	l.observe(day(0))
	l.observe(day(4))
	before, beforeDays := l.snapshot()
	after, afterDays := l.snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, beforeDays, afterDays)
	assert.Equal(t, 2, after)
}

func TestDaysBetweenNeverNegative(t *testing.T) {
	assert.Equal(t, 0, daysBetween(day(5), day(0)))
	assert.Equal(t, 5, daysBetween(day(0), day(5)))
}

func TestLineageBookGetCreatesAndReusesSameInfo(t *testing.T) {
	b := newLineageBook()
	first := b.get("lineage-a")
	first.observe(day(0))

	second := b.get("lineage-a")
	assert.Same(t, first, second)
	revs, _ := second.snapshot()
	assert.Equal(t, 1, revs)
}

func TestLineageBookDistinctIDsAreIndependent(t *testing.T) {
	b := newLineageBook()
	a := b.get("a")
	c := b.get("c")
	a.observe(day(0))
	revsC, _ := c.snapshot()
	assert.Equal(t, 0, revsC)
}

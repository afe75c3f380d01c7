package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestBulletinDate_UsesBrasiliaTime(t *testing.T) {
	// 02:00 UTC on May 2nd is still May 1st in Brasília.
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.May, 2, 2, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, "2024-05-01", BulletinDate())
}

func TestBulletinDate_AfterMidnightBrasilia(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.May, 2, 3, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, "2024-05-02", BulletinDate())
}

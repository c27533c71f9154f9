package activity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddKeepsNewestFirstAndEvictsAtCapacity(t *testing.T) {
	l := NewLog(zap.NewNop())

	for i := 0; i < MaxEntries+50; i++ {
		l.Add(LevelInfo, TypeSystem, fmt.Sprintf("entry %d", i), nil)
	}

	assert.Equal(t, MaxEntries, l.Len())

	entries := l.Entries()
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, fmt.Sprintf("entry %d", MaxEntries+49), entries[0].Message)
	// the oldest 50 were dropped
	assert.Equal(t, "entry 50", entries[MaxEntries-1].Message)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	l := NewLog(zap.NewNop())

	var received []Entry
	sub := l.Subscribe(func(e Entry) {
		received = append(received, e)
	})

	l.Add(LevelInfo, TypeSystem, "first", nil)
	require.Len(t, received, 1)
	assert.Equal(t, "first", received[0].Message)
	assert.NotEmpty(t, received[0].ID)

	sub.Unsubscribe()
	l.Add(LevelInfo, TypeSystem, "second", nil)
	assert.Len(t, received, 1)
}

func TestLogSignalInfersLevelFromConfidence(t *testing.T) {
	l := NewLog(zap.NewNop())

	assert.Equal(t, LevelSuccess, l.LogSignal("strong", 85, nil).Level)
	assert.Equal(t, LevelSuccess, l.LogSignal("edge", 70, nil).Level)
	assert.Equal(t, LevelInfo, l.LogSignal("ok", 55, nil).Level)
	assert.Equal(t, LevelWarning, l.LogSignal("weak", 30, nil).Level)

	assert.Equal(t, TypeSignal, l.Entries()[0].Type)
}

func TestLogTradeLevelFollowsOutcome(t *testing.T) {
	l := NewLog(zap.NewNop())

	assert.Equal(t, LevelSuccess, l.LogTrade("filled", true, nil).Level)
	assert.Equal(t, LevelError, l.LogTrade("rejected", false, nil).Level)
	assert.Equal(t, TypeTrade, l.Entries()[0].Type)
}

func TestDetailsAreCarriedThrough(t *testing.T) {
	l := NewLog(zap.NewNop())

	entry := l.LogWallet(LevelInfo, "funded", map[string]any{"value_usd": 500.0})
	assert.Equal(t, TypeWallet, entry.Type)
	assert.Equal(t, 500.0, entry.Details["value_usd"])
}

package debugger_test

import (
	"testing"

	"github.com/archerh/casm/debugger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakpointManager_AddAndShouldBreak(t *testing.T) {
	bm := debugger.NewBreakpointManager()
	bp := bm.Add(3, false)
	require.NotNil(t, bp)
	assert.True(t, bp.Enabled)
	assert.False(t, bp.Temporary)

	assert.True(t, bm.ShouldBreak(3))
	assert.False(t, bm.ShouldBreak(4))
	assert.Len(t, bm.List(), 1)
	assert.Equal(t, 1, bp.HitCount)
}

func TestBreakpointManager_ReAddReenables(t *testing.T) {
	bm := debugger.NewBreakpointManager()
	first := bm.Add(5, false)
	bm.Delete(first.ID)
	second := bm.Add(5, false)
	assert.True(t, second.Enabled)
}

func TestBreakpointManager_TemporaryRemovedAfterHit(t *testing.T) {
	bm := debugger.NewBreakpointManager()
	bm.Add(7, true)

	assert.True(t, bm.ShouldBreak(7))
	assert.False(t, bm.ShouldBreak(7), "temporary breakpoint should be gone after first hit")
	assert.Empty(t, bm.List())
}

func TestBreakpointManager_Delete(t *testing.T) {
	bm := debugger.NewBreakpointManager()
	bp := bm.Add(1, false)

	assert.True(t, bm.Delete(bp.ID))
	assert.False(t, bm.Delete(bp.ID))
	assert.False(t, bm.ShouldBreak(1))
}

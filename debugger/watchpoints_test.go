package debugger_test

import (
	"testing"

	"github.com/archerh/casm/debugger"
	"github.com/archerh/casm/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchpointManager_CheckAllDetectsChange(t *testing.T) {
	wm := debugger.NewWatchpointManager()
	wp := wm.Add(1, 0)
	require.NotNil(t, wp)

	var regs [machine.NumRegisters]int32
	regs[1] = 5

	triggered := wm.CheckAll(regs)
	require.Len(t, triggered, 1)
	assert.Equal(t, wp.ID, triggered[0].ID)
	assert.EqualValues(t, 5, triggered[0].LastValue)
	assert.Equal(t, 1, triggered[0].HitCount)

	triggered = wm.CheckAll(regs)
	assert.Empty(t, triggered, "no change since last check")
}

func TestWatchpointManager_Delete(t *testing.T) {
	wm := debugger.NewWatchpointManager()
	wp := wm.Add(2, 0)

	assert.True(t, wm.Delete(wp.ID))
	assert.False(t, wm.Delete(wp.ID))
	assert.Empty(t, wm.List())
}

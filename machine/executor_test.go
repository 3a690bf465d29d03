package machine_test

import (
	"testing"

	"github.com/archerh/casm/lang"
	"github.com/archerh/casm/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_BasicArithmetic(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=10",
		"LOAD R2,=3",
		"SUB R1,R2",
		"MUL R1,R2",
		"HALT",
	}))

	steps, err := m.Run()
	require.Nil(t, err)
	assert.Equal(t, 5, steps)
	assert.True(t, m.Halted)

	r1, gerr := m.GetRegister(1)
	require.Nil(t, gerr)
	assert.EqualValues(t, 21, r1) // (10-3)*3
}

func TestRun_DivRemainderBeforeQuotient(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=17",
		"LOAD R2,=5",
		"DIV R1,R2",
		"HALT",
	}))

	_, err := m.Run()
	require.Nil(t, err)

	r1, _ := m.GetRegister(1)
	r2, _ := m.GetRegister(2)
	assert.EqualValues(t, 3, r1, "quotient 17/5")
	assert.EqualValues(t, 2, r2, "remainder 17 mod 5")
}

func TestRun_DivByZero(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=9",
		"LOAD R2,=0",
		"DIV R1,R2",
		"HALT",
	}))

	_, err := m.Run()
	require.NotNil(t, err)
	assert.Equal(t, lang.DivByZero, err.Tag)
	assert.Same(t, err, m.Err)
}

func TestRun_AddressingModesMix(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=40",    // R1 = address 40
		"LOAD R2,=99",    // value to store
		"STORE R2,R1",    // memory[40] = 99
		"LOAD R3,[0,R1]", // indexed: memory[40+0] = 99
		"LOAD R4,@R2",    // indirect: address value(R2)=99, which is misaligned
		"HALT",
	}))
	_, err := m.Run()
	require.NotNil(t, err)
	assert.Equal(t, lang.AddrMisaligned, err.Tag)

	r3, _ := m.GetRegister(3)
	assert.EqualValues(t, 99, r3)
}

func TestRun_IndirectLoad(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=21",
		"LOAD R2,=80",
		"STORE R1,R2",  // memory[20] = 21
		"LOAD R4,=80",
		"LOAD R5,@R4",  // indirect: addr = value(R4) = 80, value = memory[20] = 21
		"HALT",
	}))
	_, err := m.Run()
	require.Nil(t, err)

	r5, _ := m.GetRegister(5)
	assert.EqualValues(t, 21, r5)
}

func TestRun_StoreThenReread(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=80",
		"LOAD R2,=7",
		"STORE R2,R1",
		"LOAD R3,[0,R1]",
		"HALT",
	}))
	_, err := m.Run()
	require.Nil(t, err)

	r3, _ := m.GetRegister(3)
	assert.EqualValues(t, 7, r3)
}

func TestRun_CountdownLoop(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=3",
		"LOAD R2,=1",
		"Loop: SUB R1,R2",
		"BGT R1,R2,Loop",
		"HALT",
	}))
	_, err := m.Run()
	require.Nil(t, err)
	assert.True(t, m.Halted)

	r1, _ := m.GetRegister(1)
	assert.EqualValues(t, 1, r1) // loop stops once R1 <= R2, leaving R1 at 1
	assert.EqualValues(t, 1, m.LabelJumpCount["Loop"])
}

func TestRun_InfiniteLoopGuard(t *testing.T) {
	m := machine.New()
	m.MaxLabelJumps = 5
	require.Nil(t, m.Load([]string{
		"Loop: BR Loop",
	}))

	_, err := m.Run()
	require.NotNil(t, err)
	assert.Equal(t, lang.PossibleInfiniteLoop, err.Tag)
	assert.EqualValues(t, 6, m.LabelJumpCount["Loop"])
}

func TestRun_UnknownLabel(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"BR Nowhere",
	}))
	_, err := m.Run()
	require.NotNil(t, err)
	assert.Equal(t, lang.UnknownLabel, err.Tag)
}

func TestRun_RegisterWriteOutOfRange(t *testing.T) {
	m := machine.New()
	err := m.SetRegister(0, 5)
	require.NotNil(t, err)
	assert.Equal(t, lang.RegOutOfRange, err.Tag)

	err = m.SetRegister(10, 5)
	require.NotNil(t, err)
	assert.Equal(t, lang.RegOutOfRange, err.Tag)
}

func TestRun_ReadWriteStorage(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=8",
		"LOAD R2,=42",
		"WRITE R2,R1",
		"READ R3,R1",
		"HALT",
	}))
	_, err := m.Run()
	require.Nil(t, err)

	r3, _ := m.GetRegister(3)
	assert.EqualValues(t, 42, r3)
}

func TestRun_LabelOnlyLineIsNoOp(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"Start:",
		"LOAD R1,=1",
		"HALT",
	}))
	_, err := m.Run()
	require.Nil(t, err)

	r1, _ := m.GetRegister(1)
	assert.EqualValues(t, 1, r1)
}

func TestRun_FirstErrorWins(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"DIV R1,R2", // R1=0, R2=0: division by zero
		"HALT",
	}))
	_, err := m.Run()
	require.NotNil(t, err)
	first := m.Err

	ok, err2 := m.Step()
	assert.False(t, ok)
	assert.Same(t, first, err2)
	assert.Same(t, first, m.Err)
}

func TestRun_SpecCountdownScenario(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=0",
		"LOAD R2,=10",
		"Label: BGEQ R1,R2,End",
		"INC R1",
		"BR Label",
		"End: HALT",
	}))
	_, err := m.Run()
	require.Nil(t, err)

	r1, _ := m.GetRegister(1)
	assert.EqualValues(t, 10, r1)
	assert.EqualValues(t, 10, m.LabelJumpCount["Label"])
	assert.EqualValues(t, 11, m.LabelJumpCount["End"]+m.LabelJumpCount["Label"])
	assert.EqualValues(t, 11, m.NumLabelJumps)
}

func TestRun_SpecIndexedAddressingScenario(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=8",     // R1 = 8, the index
		"LOAD R2,=28",    // value to plant at address 72+8=80
		"STORE R2,[72,R1]",
		"LOAD R3,[72,R1]", // indexed load reads the same cell back
		"HALT",
	}))
	_, err := m.Run()
	require.Nil(t, err)

	r3, _ := m.GetRegister(3)
	assert.EqualValues(t, 28, r3)
}

func TestRun_RunsOffEndImplicitlyHalts(t *testing.T) {
	m := machine.New()
	require.Nil(t, m.Load([]string{
		"LOAD R1,=1",
	}))
	steps, err := m.Run()
	require.Nil(t, err)
	assert.True(t, m.Halted)
	assert.Equal(t, 2, steps)
}

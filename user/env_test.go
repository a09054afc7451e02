package user_test

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/lottery"
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/model/sys"
	"github.com/viant/lottery/user"
)

func run(t *testing.T, fn func(e *user.Env) int, options ...lottery.Option) int {
	t.Helper()
	logger, _ := test.NewNullLogger()
	config := lottery.DefaultConfig()
	config.Processor.CPUs = 1
	config.Clock.TickInterval = time.Millisecond
	config.Lottery.Seed = 3
	options = append([]lottery.Option{lottery.WithConfig(config), lottery.WithLogger(logger)}, options...)
	rt := lottery.New(options...).Runtime()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, rt.Start(ctx))
	defer func() { assert.NoError(t, rt.Shutdown(ctx)) }()
	status, err := rt.Run(ctx, "test", user.Main(fn))
	require.NoError(t, err)
	return status
}

func TestEnv_SetTickets(t *testing.T) {
	testCases := []struct {
		description string
		tickets     int
		expect      int
		expectAlloc int32
	}{
		{description: "valid", tickets: 10, expect: 0, expectAlloc: 10},
		{description: "one", tickets: 1, expect: 0, expectAlloc: 1},
		{description: "zero", tickets: 0, expect: -1, expectAlloc: 1},
		{description: "negative", tickets: -4, expect: -1, expectAlloc: 1},
		{description: "overflow", tickets: math.MaxInt32 + 1, expect: -1, expectAlloc: 1},
		{description: "min int32", tickets: math.MinInt32, expect: -1, expectAlloc: 1},
		{description: "negative overflow", tickets: math.MinInt32 - 1, expect: -1, expectAlloc: 1},
		{description: "negative wrap to one", tickets: math.MinInt32*2 + 1, expect: -1, expectAlloc: 1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			var ret int
			var st pstat.PStat
			var pid int
			status := run(t, func(e *user.Env) int {
				ret = e.SetTickets(testCase.tickets)
				pid = e.GetPID()
				return e.GetPInfo(&st)
			})
			require.Equal(t, 0, status)
			assert.Equal(t, testCase.expect, ret)
			slot, ok := st.Find(pid)
			require.True(t, ok)
			assert.Equal(t, testCase.expectAlloc, st.Tickets[slot])
		})
	}
}

func TestEnv_GetPInfo(t *testing.T) {
	var results []int
	var st pstat.PStat
	var pid int
	status := run(t, func(e *user.Env) int {
		pid = e.GetPID()
		results = append(results, e.GetPInfoAt(0))
		results = append(results, e.GetPInfoAt(math.MaxUint64-8))
		results = append(results, e.GetPInfo(&st))
		return 0
	})
	require.Equal(t, 0, status)
	assert.Equal(t, []int{-1, -1, 0}, results)
	slot, ok := st.Find(pid)
	require.True(t, ok)
	assert.EqualValues(t, 1, st.InUse[slot])
	assert.Equal(t, 2, st.InUseCount())
}

func TestEnv_GetSyscallCount(t *testing.T) {
	counts := map[string]int{}
	status := run(t, func(e *user.Env) int {
		e.GetPID()
		e.GetPID()
		counts["getpid"] = e.GetSyscallCount(int(sys.GetPID))
		counts["reserved"] = e.GetSyscallCount(0)
		counts["negative"] = e.GetSyscallCount(-1)
		counts["outOfRange"] = e.GetSyscallCount(25)
		counts["self"] = e.GetSyscallCount(int(sys.GetSyscallCount))
		return 0
	})
	require.Equal(t, 0, status)
	assert.Equal(t, map[string]int{
		"getpid":     2,
		"reserved":   0,
		"negative":   -1,
		"outOfRange": -1,
		"self":       5,
	}, counts)
}

func TestEnv_ForkWaitKill(t *testing.T) {
	var noChild [2]int
	var killMissing, childPID, reaped, childStatus int
	status := run(t, func(e *user.Env) int {
		noChild[0], noChild[1] = e.Wait()
		killMissing = e.Kill(9999)
		childPID = e.Fork("child", func(c *user.Env) int { return 17 })
		reaped, childStatus = e.Wait()
		return 0
	})
	require.Equal(t, 0, status)
	assert.Equal(t, [2]int{-1, -1}, noChild)
	assert.Equal(t, -1, killMissing)
	assert.True(t, childPID > 0)
	assert.Equal(t, childPID, reaped)
	assert.Equal(t, 17, childStatus)
}

func TestEnv_PauseKilled(t *testing.T) {
	var paused, killed int
	status := run(t, func(e *user.Env) int {
		pid := e.Fork("sleeper", func(c *user.Env) int {
			if c.Pause(1_000_000) != 0 {
				return 9
			}
			return 0
		})
		e.Pause(2)
		killed = e.Kill(pid)
		_, paused = e.Wait()
		return 0
	})
	require.Equal(t, 0, status)
	assert.Equal(t, 0, killed)
	assert.Equal(t, 9, paused)
}

func TestEnv_Printf(t *testing.T) {
	console := &bytes.Buffer{}
	status := run(t, func(e *user.Env) int {
		e.Printf("hello %d\n", 42)
		return 0
	}, lottery.WithConsole(console))
	require.Equal(t, 0, status)
	assert.Equal(t, "hello 42\n", console.String())
}

// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package wait_test

import (
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/collections/set"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/waitfor/wait"
)

type LoopSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&LoopSuite{})

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func record(units, ready, idle []string) *wait.CheckResult {
	return &wait.CheckResult{
		Units:      set.NewStrings(units...),
		ReadyUnits: set.NewStrings(ready...),
		IdleUnits:  set.NewStrings(idle...),
	}
}

func newLoop(c *gc.C, cfg wait.LoopConfig) *wait.Loop {
	loop, err := wait.NewLoop(cfg)
	c.Assert(err, jc.ErrorIsNil)
	return loop
}

func (s *LoopSuite) TestConfigValidate(c *gc.C) {
	negative := -1
	tests := []struct {
		cfg      wait.LoopConfig
		expected string
	}{{
		cfg:      wait.LoopConfig{},
		expected: "nil Clock not valid",
	}, {
		cfg: wait.LoopConfig{
			Clock:        testclock.NewClock(t0),
			WaitForUnits: -1,
		},
		expected: "negative WaitForUnits not valid",
	}, {
		cfg: wait.LoopConfig{
			Clock:             testclock.NewClock(t0),
			WaitForExactUnits: &negative,
		},
		expected: "negative WaitForExactUnits not valid",
	}, {
		cfg: wait.LoopConfig{
			Clock:      testclock.NewClock(t0),
			IdlePeriod: -time.Second,
		},
		expected: "negative IdlePeriod not valid",
	}}
	for i, test := range tests {
		c.Logf("running test %d", i)
		err := test.cfg.Validate()
		c.Check(err, gc.ErrorMatches, test.expected)
	}
}

func (s *LoopSuite) TestAbsentNeverSatisfies(c *gc.C) {
	loop := newLoop(c, wait.LoopConfig{
		Apps:  []string{"a"},
		Clock: testclock.NewClock(t0),
	})
	c.Check(loop.Next(nil), jc.IsFalse)
	c.Check(loop.Next(nil), jc.IsFalse)
}

func (s *LoopSuite) TestAtLeastUnits(c *gc.C) {
	loop := newLoop(c, wait.LoopConfig{
		Apps:         []string{"u"},
		WaitForUnits: 2,
		Clock:        testclock.NewClock(t0),
	})
	all := []string{"u/0", "u/1", "u/2"}
	verdicts := []bool{
		loop.Next(record(all, []string{"u/0"}, all)),
		loop.Next(record(all, []string{"u/0", "u/1"}, all)),
		loop.Next(record(all, all, all)),
	}
	c.Check(verdicts, jc.DeepEquals, []bool{false, true, true})
}

func (s *LoopSuite) TestExactUnits(c *gc.C) {
	exact := 2
	loop := newLoop(c, wait.LoopConfig{
		Apps:              []string{"u"},
		WaitForUnits:      1,
		WaitForExactUnits: &exact,
		Clock:             testclock.NewClock(t0),
	})
	all := []string{"u/0", "u/1", "u/2"}
	tooFew := record(all, []string{"u/2"}, all)
	good := record(all, []string{"u/1", "u/2"}, all)
	tooMany := record(all, all, all)

	verdicts := []bool{
		loop.Next(tooFew),
		loop.Next(good),
		loop.Next(tooMany),
		loop.Next(good),
	}
	c.Check(verdicts, jc.DeepEquals, []bool{false, true, false, true})
}

func (s *LoopSuite) TestIdlePeriod(c *gc.C) {
	clk := testclock.NewClock(t0)
	loop := newLoop(c, wait.LoopConfig{
		Apps:         []string{"hexanator"},
		WaitForUnits: 1,
		IdlePeriod:   15 * time.Second,
		Clock:        clk,
	})
	one := []string{"hexanator/0"}
	var verdicts []bool
	for i := 0; i < 4; i++ {
		verdicts = append(verdicts, loop.Next(record(one, one, one)))
		clk.Advance(10 * time.Second)
	}
	c.Check(verdicts, jc.DeepEquals, []bool{false, false, true, true})
}

func (s *LoopSuite) TestIdlePingPong(c *gc.C) {
	clk := testclock.NewClock(t0)
	loop := newLoop(c, wait.LoopConfig{
		Apps:         []string{"hexanator"},
		WaitForUnits: 1,
		IdlePeriod:   15 * time.Second,
		Clock:        clk,
	})
	one := []string{"hexanator/0"}
	good := record(one, one, one)
	bad := record(one, one, nil)

	var verdicts []bool
	for _, r := range []*wait.CheckResult{good, bad, good, bad} {
		verdicts = append(verdicts, loop.Next(r))
		clk.Advance(10 * time.Second)
	}
	c.Check(verdicts, jc.DeepEquals, []bool{false, false, false, false})
}

func (s *LoopSuite) TestDisappearedUnitForgetsIdleHistory(c *gc.C) {
	clk := testclock.NewClock(t0)
	loop := newLoop(c, wait.LoopConfig{
		Apps:         []string{"u"},
		WaitForUnits: 1,
		IdlePeriod:   15 * time.Second,
		Clock:        clk,
	})
	one := []string{"u/0"}

	c.Check(loop.Next(record(one, one, one)), jc.IsFalse)
	clk.Advance(20 * time.Second)

	// The unit vanishes for a snapshot, dropping its idle history.
	c.Check(loop.Next(record(nil, nil, nil)), jc.IsFalse)
	clk.Advance(time.Second)

	// Back again: the idle period starts over.
	c.Check(loop.Next(record(one, one, one)), jc.IsFalse)
	clk.Advance(20 * time.Second)
	c.Check(loop.Next(record(one, one, one)), jc.IsTrue)
}

func (s *LoopSuite) TestBusyUnitHoldsBackReadyCounts(c *gc.C) {
	clk := testclock.NewClock(t0)
	loop := newLoop(c, wait.LoopConfig{
		Apps:         []string{"u"},
		WaitForUnits: 1,
		Clock:        clk,
	})
	both := []string{"u/0", "u/1"}

	// u/1 is never idle, so even a satisfied count check cannot
	// produce a true verdict.
	c.Check(loop.Next(record(both, []string{"u/0"}, []string{"u/0"})), jc.IsFalse)
}

func (s *LoopSuite) TestZeroUnitsRequired(c *gc.C) {
	loop := newLoop(c, wait.LoopConfig{
		Apps:  []string{"u"},
		Clock: testclock.NewClock(t0),
	})
	c.Check(loop.Next(record(nil, nil, nil)), jc.IsTrue)
}

// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package status_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/waitfor/status"
)

type StatusSuite struct{}

var _ = gc.Suite(&StatusSuite{})

func (s *StatusSuite) TestKnownAgentStatus(c *gc.C) {
	for _, v := range []status.Status{
		status.Allocating,
		status.Error,
		status.Executing,
		status.Idle,
		status.Lost,
	} {
		c.Check(v.KnownAgentStatus(), jc.IsTrue)
	}
	c.Check(status.Active.KnownAgentStatus(), jc.IsFalse)
	c.Check(status.Status("some-other").KnownAgentStatus(), jc.IsFalse)
}

func (s *StatusSuite) TestKnownWorkloadStatus(c *gc.C) {
	for _, v := range []status.Status{
		status.Active,
		status.Blocked,
		status.Error,
		status.Maintenance,
		status.Terminated,
		status.Unknown,
		status.Waiting,
	} {
		c.Check(v.KnownWorkloadStatus(), jc.IsTrue)
	}
	c.Check(status.Idle.KnownWorkloadStatus(), jc.IsFalse)
	c.Check(status.Status("some-other").KnownWorkloadStatus(), jc.IsFalse)
}

func (s *StatusSuite) TestString(c *gc.C) {
	c.Check(status.Idle.String(), gc.Equals, "idle")
}

// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package protocol_test

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/canonical/ignite-go/protocol"
)

type VersionSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&VersionSuite{})

func (s *VersionSuite) TestCompare(c *gc.C) {
	for i, test := range []struct {
		a, b     protocol.Version
		expected int
	}{{
		a:        protocol.Version{1, 7, 0},
		b:        protocol.Version{1, 7, 0},
		expected: 0,
	}, {
		a:        protocol.Version{1, 6, 0},
		b:        protocol.Version{1, 7, 0},
		expected: -1,
	}, {
		a:        protocol.Version{2, 0, 0},
		b:        protocol.Version{1, 7, 0},
		expected: 1,
	}, {
		a:        protocol.Version{1, 7, 1},
		b:        protocol.Version{1, 7, 0},
		expected: 1,
	}, {
		a:        protocol.Version{1, 2, 9},
		b:        protocol.Version{1, 3, 0},
		expected: -1,
	}} {
		c.Logf("test %d: %s vs %s", i, test.a, test.b)
		c.Check(test.a.Compare(test.b), gc.Equals, test.expected)
		c.Check(test.b.Compare(test.a), gc.Equals, -test.expected)
		c.Check(test.a.Less(test.b), gc.Equals, test.expected < 0)
		c.Check(test.a.Equal(test.b), gc.Equals, test.expected == 0)
	}
}

func (s *VersionSuite) TestString(c *gc.C) {
	c.Check(protocol.Version{1, 7, 0}.String(), gc.Equals, "1.7.0")
	c.Check(protocol.Version{}.String(), gc.Equals, "0.0.0")
}

func (s *VersionSuite) TestParseVersion(c *gc.C) {
	v, err := protocol.ParseVersion("1.6.0")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(v, gc.Equals, protocol.Version1_6_0)

	for _, bad := range []string{"", "1.6", "1.6.0.0", "a.b.c", "1.-6.0"} {
		_, err := protocol.ParseVersion(bad)
		c.Check(err, jc.Satisfies, errors.IsNotValid, gc.Commentf("input %q", bad))
	}
}

func (s *VersionSuite) TestSupportedSet(c *gc.C) {
	versions := protocol.SupportedVersions()
	c.Assert(versions, gc.HasLen, 6)
	// Newest first, strictly descending.
	for i := 1; i < len(versions); i++ {
		c.Check(versions[i].Less(versions[i-1]), jc.IsTrue)
	}
	c.Check(versions[0], gc.Equals, protocol.DefaultVersion)

	c.Check(protocol.IsSupported(protocol.Version1_2_0), jc.IsTrue)
	c.Check(protocol.IsSupported(protocol.Version{1, 1, 0}), jc.IsFalse)
	c.Check(protocol.IsSupported(protocol.Version{2, 0, 0}), jc.IsFalse)
}

func (s *VersionSuite) TestSupportedVersionsIsACopy(c *gc.C) {
	versions := protocol.SupportedVersions()
	versions[0] = protocol.Version{9, 9, 9}
	c.Check(protocol.SupportedVersions()[0], gc.Equals, protocol.DefaultVersion)
}

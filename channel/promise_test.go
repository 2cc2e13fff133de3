// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package channel

import (
	"sync"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
)

var errBoomInternal = errors.New("boom")

type PromiseSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&PromiseSuite{})

func (s *PromiseSuite) TestResolveOnce(c *gc.C) {
	p := newPromise()
	c.Check(p.resolve([]byte("first")), jc.IsTrue)
	c.Check(p.resolve([]byte("second")), jc.IsFalse)

	<-p.ready()
	frame, err := p.result()
	c.Check(err, jc.ErrorIsNil)
	c.Check(string(frame), gc.Equals, "first")
}

func (s *PromiseSuite) TestFailAfterResolveLoses(c *gc.C) {
	p := newPromise()
	c.Check(p.resolve([]byte("frame")), jc.IsTrue)
	c.Check(p.fail(errBoomInternal), jc.IsFalse)

	_, err := p.result()
	c.Check(err, jc.ErrorIsNil)
}

func (s *PromiseSuite) TestResolveAfterFailLoses(c *gc.C) {
	p := newPromise()
	c.Check(p.fail(errBoomInternal), jc.IsTrue)
	c.Check(p.resolve([]byte("late")), jc.IsFalse)

	frame, err := p.result()
	c.Check(err, gc.Equals, errBoomInternal)
	c.Check(frame, gc.IsNil)
}

func (s *PromiseSuite) TestConcurrentWritersExactlyOneWins(c *gc.C) {
	const writers = 16
	p := newPromise()

	var wg sync.WaitGroup
	wins := make(chan bool, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				wins <- p.resolve([]byte("frame"))
			} else {
				wins <- p.fail(errBoomInternal)
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	won := 0
	for win := range wins {
		if win {
			won++
		}
	}
	c.Check(won, gc.Equals, 1)
}

type PendingTableSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&PendingTableSuite{})

func (s *PendingTableSuite) TestInsertRemove(c *gc.C) {
	t := newPendingTable()
	p := newPromise()
	t.insert(1, p)
	c.Check(t.len(), gc.Equals, 1)

	got, ok := t.remove(1)
	c.Check(ok, jc.IsTrue)
	c.Check(got, gc.Equals, p)

	_, ok = t.remove(1)
	c.Check(ok, jc.IsFalse)
	c.Check(t.len(), gc.Equals, 0)
}

func (s *PendingTableSuite) TestDrainEmptiesTable(c *gc.C) {
	t := newPendingTable()
	for id := int64(1); id <= 5; id++ {
		t.insert(id, newPromise())
	}

	drained := t.drain()
	c.Check(drained, gc.HasLen, 5)
	c.Check(t.len(), gc.Equals, 0)
	c.Check(t.drain(), gc.HasLen, 0)
}

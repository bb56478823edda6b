package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/service"
)

var _ = check.Suite(new(GroupTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type GroupTestSuite struct{}

func (s *GroupTestSuite) TestEmptyGroup(c *check.C) {
	c.Assert(service.Group(nil).Execute(context.TODO()), check.IsNil)
}

func (s *GroupTestSuite) TestCancellationStopsAllServices(c *check.C) {
	ctx, cancelFn := context.WithCancel(context.TODO())
	a, b := &blockingService{name: "a"}, &blockingService{name: "b"}

	time.AfterFunc(50*time.Millisecond, cancelFn)

	c.Assert(service.Group{a, b}.Execute(ctx), check.IsNil)
	c.Assert(a.stopped, check.Equals, true)
	c.Assert(b.stopped, check.Equals, true)
}

func (s *GroupTestSuite) TestFailingServiceCancelsTheRest(c *check.C) {
	blocking := &blockingService{name: "frontend"}
	failing := failingService{name: "syncer", err: errors.New("incorrect login data")}

	err := service.Group{blocking, failing}.Execute(context.TODO())
	c.Assert(err, check.ErrorMatches, "(?ms).*syncer: incorrect login data.*")
	c.Assert(blocking.stopped, check.Equals, true)
}

type blockingService struct {
	name    string
	stopped bool
}

func (s *blockingService) Name() string { return s.name }

func (s *blockingService) Run(ctx context.Context) error {
	<-ctx.Done()
	s.stopped = true

	return nil
}

type failingService struct {
	name string
	err  error
}

func (s failingService) Name() string { return s.name }

func (s failingService) Run(context.Context) error { return s.err }

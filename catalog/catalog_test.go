package catalog

import (
	"fmt"
	"sync"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger/store/memory"
)

var _ = check.Suite(new(catalogTestSuite))

// Test registers the [check] library with the go testing library.
func Test(t *testing.T) {
	check.TestingT(t)
}

type catalogTestSuite struct {
	cat *Catalog
}

func (s *catalogTestSuite) SetUpTest(c *check.C) {
	var err error
	s.cat, err = New()
	c.Assert(err, check.IsNil)
}

func (s *catalogTestSuite) TearDownTest(c *check.C) {
	c.Assert(s.cat.Close(), check.IsNil)
}

func (s *catalogTestSuite) TestSearchByNameAndCourse(c *check.C) {
	c.Assert(s.cat.Add(
		course.NewFile(course.KindFile, "https://portal.test/1", "Thermodynamics lecture", "Physics/Week 1"),
		course.NewFile(course.KindFile, "https://portal.test/2", "Matrix exercises", "Algebra/Week 1"),
		course.NewFile(course.KindURL, "https://portal.test/3", "Reading list", "Physics/Week 2"),
	), check.IsNil)
	c.Assert(s.cat.Len(), check.Equals, 3)

	matches, err := s.cat.Search("thermodynamics", 0)
	c.Assert(err, check.IsNil)
	c.Assert(matches, check.HasLen, 1)
	c.Assert(matches[0].URL, check.Equals, "https://portal.test/1")

	matches, err = s.cat.Search("physics", 10)
	c.Assert(err, check.IsNil)
	c.Assert(matches, check.HasLen, 2)

	matches, err = s.cat.Search("chemistry", 10)
	c.Assert(err, check.IsNil)
	c.Assert(matches, check.HasLen, 0)
}

func (s *catalogTestSuite) TestSearchLimit(c *check.C) {
	for _, url := range []string{"a", "b", "c"} {
		c.Assert(s.cat.Add(course.NewFile(course.KindFile, url, "Slides", "Algebra")), check.IsNil)
	}

	matches, err := s.cat.Search("slides", 2)
	c.Assert(err, check.IsNil)
	c.Assert(matches, check.HasLen, 2)
}

func (s *catalogTestSuite) TestRefreshIndexesOnlyNewEntries(c *check.C) {
	l := memory.NewInMemoryLedger()
	c.Assert(l.Append(course.NewFile(course.KindFile, "a", "Slides", "Algebra")), check.IsNil)

	added, err := s.cat.Refresh(l)
	c.Assert(err, check.IsNil)
	c.Assert(added, check.Equals, 1)

	added, err = s.cat.Refresh(l)
	c.Assert(err, check.IsNil)
	c.Assert(added, check.Equals, 0)

	c.Assert(l.Append(course.NewFile(course.KindFile, "b", "Notes", "Algebra")), check.IsNil)
	added, err = s.cat.Refresh(l)
	c.Assert(err, check.IsNil)
	c.Assert(added, check.Equals, 1)

	matches, err := s.cat.Search("notes", 0)
	c.Assert(err, check.IsNil)
	c.Assert(matches, check.HasLen, 1)
	c.Assert(matches[0].URL, check.Equals, "b")
}

func (s *catalogTestSuite) TestMatchesAreDetached(c *check.C) {
	c.Assert(s.cat.Add(course.NewFile(course.KindFile, "a", "Slides", "Algebra")), check.IsNil)

	matches, err := s.cat.Search("slides", 0)
	c.Assert(err, check.IsNil)
	matches[0].Name = "changed"

	matches, err = s.cat.Search("slides", 0)
	c.Assert(err, check.IsNil)
	c.Assert(matches[0].Name, check.Equals, "Slides")
}

func (s *catalogTestSuite) TestConcurrentRefreshIndexesEachEntryOnce(c *check.C) {
	l := memory.NewInMemoryLedger()
	for i := 0; i < 20; i++ {
		url := fmt.Sprintf("https://portal.test/%d", i)
		c.Assert(l.Append(course.NewFile(course.KindFile, url, "Handout", "Algebra")), check.IsNil)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			added, err := s.cat.Refresh(l)
			c.Check(err, check.IsNil)

			mu.Lock()
			total += added
			mu.Unlock()
		}()
	}
	wg.Wait()

	c.Assert(total, check.Equals, 20)
	c.Assert(s.cat.Len(), check.Equals, 20)

	matches, err := s.cat.Search("handout", 50)
	c.Assert(err, check.IsNil)
	c.Assert(matches, check.HasLen, 20)

	seen := make(map[string]bool)
	for _, match := range matches {
		c.Assert(seen[match.URL], check.Equals, false, check.Commentf("duplicate %s", match.URL))
		seen[match.URL] = true
	}
}

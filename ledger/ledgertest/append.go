package ledgertest

import (
	"fmt"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
	"github.com/mycok/coursesync/reconcile"
)

// TestEmptyLedger verifies that a fresh ledger has no entries.
func (s *BaseSuite) TestEmptyLedger(c *check.C) {
	files, err := s.l.All()
	c.Assert(err, check.IsNil)
	c.Assert(files, check.HasLen, 0)
}

// TestAppendPreservesOrderAndFields verifies that entries come back in
// append order with every field intact.
func (s *BaseSuite) TestAppendPreservesOrderAndFields(c *check.C) {
	first := course.NewFile(course.KindFile, "https://portal.test/pluginfile.php/1/a.pdf", "Lecture 1", "Algebra/Week 1")
	first.DownloadPath = "/data/Algebra/Week 1/a.pdf"
	second := course.NewFile(course.KindURL, "https://portal.test/mod/url/view.php?id=2", "Reading", "Algebra/Week 1")

	c.Assert(s.l.Append(first), check.IsNil)
	c.Assert(s.l.Append(second), check.IsNil)

	files, err := s.l.All()
	c.Assert(err, check.IsNil)
	c.Assert(files, check.DeepEquals, []*course.File{first, second})
}

// TestAppendBatch verifies appending several files at once.
func (s *BaseSuite) TestAppendBatch(c *check.C) {
	batch := make([]*course.File, 5)
	for i := range batch {
		batch[i] = course.NewFile(course.KindFile, fmt.Sprintf("https://portal.test/f/%d", i), fmt.Sprintf("file %d", i), "Physics")
	}

	c.Assert(s.l.Append(batch...), check.IsNil)
	c.Assert(s.l.Append(), check.IsNil)

	files, err := s.l.All()
	c.Assert(err, check.IsNil)
	c.Assert(files, check.DeepEquals, batch)
}

// TestAppendRejectsInvalidFiles verifies that nothing is recorded when a
// batch contains an invalid file.
func (s *BaseSuite) TestAppendRejectsInvalidFiles(c *check.C) {
	err := s.l.Append(
		course.NewFile(course.KindFile, "https://portal.test/ok", "ok", "Physics"),
		course.NewFile(course.KindFile, "", "missing url", "Physics"),
	)
	c.Assert(err, check.ErrorMatches, ".*invalid ledger file.*")

	files, err := s.l.All()
	c.Assert(err, check.IsNil)
	c.Assert(files, check.HasLen, 0)
}

// TestReturnedFilesAreDetached verifies that callers can't modify the
// recorded entries through appended or returned values.
func (s *BaseSuite) TestReturnedFilesAreDetached(c *check.C) {
	file := course.NewFile(course.KindFile, "https://portal.test/a", "a", "Algebra")
	c.Assert(s.l.Append(file), check.IsNil)
	file.Name = "changed"

	files, err := s.l.All()
	c.Assert(err, check.IsNil)
	c.Assert(files[0].Name, check.Equals, "a")

	files[0].Name = "changed again"
	files, err = s.l.All()
	c.Assert(err, check.IsNil)
	c.Assert(files[0].Name, check.Equals, "a")
}

// TestLedgerDrivesReconciliation verifies that only files missing from
// the ledger are selected for download.
func (s *BaseSuite) TestLedgerDrivesReconciliation(c *check.C) {
	c.Assert(s.l.Append(course.NewFile(course.KindFile, "a", "a", "Algebra/Week 1")), check.IsNil)

	crs := course.NewCourse("https://portal.test/course/view.php?id=1", "Algebra")
	section := course.NewSection("https://portal.test/course/view.php?id=1#section-1", "Week 1")
	section.Files = append(section.Files,
		course.NewFile(course.KindFile, "a", "a", "Week 1"),
		course.NewFile(course.KindFile, "b", "b", "Week 1"),
	)
	crs.Sections = append(crs.Sections, section)

	recorded, err := s.l.All()
	c.Assert(err, check.IsNil)

	toFetch := reconcile.FilesToFetch(reconcile.NewURLSet(recorded...), []*course.Course{crs})
	c.Assert(toFetch, check.HasLen, 1)
	c.Assert(toFetch[0].URL, check.Equals, "b")

	recent, err := ledger.Recent(s.l, 1)
	c.Assert(err, check.IsNil)
	c.Assert(recent[0].URL, check.Equals, "a")
}

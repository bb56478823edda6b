package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger/ledgertest"
)

var (
	_ = check.Suite(new(fileLedgerTestSuite))
	_ = check.Suite(new(fileFormatTestSuite))
)

// Test registers the [check] library with the go testing library.
func Test(t *testing.T) {
	check.TestingT(t)
}

type fileLedgerTestSuite struct {
	ledgertest.BaseSuite
}

func (s *fileLedgerTestSuite) SetUpTest(c *check.C) {
	l, err := NewFileLedger(filepath.Join(c.MkDir(), "downloaded.json"))
	c.Assert(err, check.IsNil)

	s.SetLedger(l)
}

type fileFormatTestSuite struct{}

func (s *fileFormatTestSuite) TestReadsExistingLedger(c *check.C) {
	path := filepath.Join(c.MkDir(), "downloaded.json")
	data := `[
	  {"type": "file", "url": "https://portal.test/a", "name": "a", "path": "Algebra/Week 1", "download_path": "/data/a"},
	  {"type": "url", "url": "https://portal.test/b", "name": "b", "path": "Algebra"}
	]`
	c.Assert(os.WriteFile(path, []byte(data), 0o644), check.IsNil)

	l, err := NewFileLedger(path)
	c.Assert(err, check.IsNil)

	files, err := l.All()
	c.Assert(err, check.IsNil)
	c.Assert(files, check.HasLen, 2)
	c.Assert(files[0].Kind, check.Equals, course.KindFile)
	c.Assert(files[0].DownloadPath, check.Equals, "/data/a")
	c.Assert(files[1].Kind, check.Equals, course.KindURL)
}

func (s *fileFormatTestSuite) TestRejectsCorruptedLedger(c *check.C) {
	path := filepath.Join(c.MkDir(), "downloaded.json")
	c.Assert(os.WriteFile(path, []byte(`[{"type": "course"`), 0o644), check.IsNil)

	l, err := NewFileLedger(path)
	c.Assert(err, check.IsNil)

	_, err = l.All()
	c.Assert(err, check.ErrorMatches, ".*corrupted ledger.*")

	err = l.Append(course.NewFile(course.KindFile, "https://portal.test/a", "a", "x"))
	c.Assert(err, check.ErrorMatches, ".*corrupted ledger.*")
}

func (s *fileFormatTestSuite) TestRejectsNonFileEntries(c *check.C) {
	path := filepath.Join(c.MkDir(), "downloaded.json")
	c.Assert(os.WriteFile(path, []byte(`[{"type": "assignment", "url": "x", "name": "hw"}]`), 0o644), check.IsNil)

	l, err := NewFileLedger(path)
	c.Assert(err, check.IsNil)

	_, err = l.All()
	c.Assert(err, check.ErrorMatches, ".*corrupted ledger: entry 0.*")
}

func (s *fileFormatTestSuite) TestAppendLeavesNoTemporaryFiles(c *check.C) {
	dir := c.MkDir()
	l, err := NewFileLedger(filepath.Join(dir, "downloaded.json"))
	c.Assert(err, check.IsNil)

	c.Assert(l.Append(course.NewFile(course.KindFile, "https://portal.test/a", "a", "x")), check.IsNil)

	entries, err := os.ReadDir(dir)
	c.Assert(err, check.IsNil)
	c.Assert(entries, check.HasLen, 1)
	c.Assert(entries[0].Name(), check.Equals, "downloaded.json")
}

func (s *fileFormatTestSuite) TestMissingDirectory(c *check.C) {
	_, err := NewFileLedger(filepath.Join(c.MkDir(), "missing", "downloaded.json"))
	c.Assert(err, check.NotNil)
}

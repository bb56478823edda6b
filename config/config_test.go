package config

import (
	"os"
	"path/filepath"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/session"
)

var (
	_ = check.Suite(new(configTestSuite))
	_ = check.Suite(new(selectionTestSuite))
)

// Test registers the [check] library with the go testing library.
func Test(t *testing.T) {
	check.TestingT(t)
}

type configTestSuite struct{}

func (s *configTestSuite) TestLoadMissingFile(c *check.C) {
	cfg, err := Load(filepath.Join(c.MkDir(), "config.json"))
	c.Assert(err, check.IsNil)
	c.Assert(cfg, check.DeepEquals, &Config{})
}

func (s *configTestSuite) TestSaveAndLoad(c *check.C) {
	path := filepath.Join(c.MkDir(), "nested", "config.json")
	cfg := &Config{
		DefaultPath: "/home/student/courses",
		URLs:        URLs{Home: "https://portal.test/my/", Login: "https://portal.test/login/index.php"},
		LoginData:   session.Credentials{Username: "student", Password: "secret"},
		Minimise:    true,
	}

	c.Assert(Save(path, cfg), check.IsNil)

	info, err := os.Stat(path)
	c.Assert(err, check.IsNil)
	c.Assert(info.Mode().Perm(), check.Equals, os.FileMode(0o600))

	loaded, err := Load(path)
	c.Assert(err, check.IsNil)
	c.Assert(loaded, check.DeepEquals, cfg)
}

func (s *configTestSuite) TestReadsPersistedFormat(c *check.C) {
	path := filepath.Join(c.MkDir(), "config.json")
	data := `{
	  "default_path": "/data",
	  "urls": {"home": "https://portal.test/my/", "login": "https://portal.test/login/index.php"},
	  "logindata": {"username": "student", "password": "secret"},
	  "minimise": false
	}`
	c.Assert(os.WriteFile(path, []byte(data), 0o600), check.IsNil)

	cfg, err := Load(path)
	c.Assert(err, check.IsNil)
	c.Assert(cfg.DefaultPath, check.Equals, "/data")
	c.Assert(cfg.URLs.Login, check.Equals, "https://portal.test/login/index.php")
	c.Assert(cfg.LoginData.Password, check.Equals, "secret")
	c.Assert(cfg.Validate(), check.IsNil)
}

func (s *configTestSuite) TestParseError(c *check.C) {
	path := filepath.Join(c.MkDir(), "config.json")
	c.Assert(os.WriteFile(path, []byte("{"), 0o600), check.IsNil)

	_, err := Load(path)
	c.Assert(err, check.ErrorMatches, "config: failed to parse .*")
}

func (s *configTestSuite) TestValidate(c *check.C) {
	err := (&Config{}).Validate()
	c.Assert(err, check.ErrorMatches, "(?s).*default_path not set.*urls.home not set.*urls.login not set.*logindata.username not set.*")
}

func (s *configTestSuite) TestPaths(c *check.C) {
	p := Paths{Dir: "/cfg"}
	c.Assert(p.Config(), check.Equals, filepath.Join("/cfg", "config.json"))
	c.Assert(p.Selection(), check.Equals, filepath.Join("/cfg", "courses.json"))
	c.Assert(p.Ledger(), check.Equals, filepath.Join("/cfg", "files.json"))
}

type selectionTestSuite struct{}

func (s *selectionTestSuite) TestSaveAndLoad(c *check.C) {
	path := filepath.Join(c.MkDir(), "courses.json")

	empty, err := LoadSelection(path)
	c.Assert(err, check.IsNil)
	c.Assert(empty, check.HasLen, 0)

	sel := Selection{
		{URL: "https://portal.test/course/view.php?id=1", Name: "Algebra", Checked: true},
		{URL: "https://portal.test/course/view.php?id=2", Name: "Physics"},
	}
	c.Assert(SaveSelection(path, sel), check.IsNil)

	loaded, err := LoadSelection(path)
	c.Assert(err, check.IsNil)
	c.Assert(loaded, check.DeepEquals, sel)
}

func (s *selectionTestSuite) TestMergeAddsNewCoursesUnchecked(c *check.C) {
	sel := Selection{
		{URL: "u1", Name: "Algebra", Checked: true},
		{URL: "u-stale", Name: "Old course", Checked: true},
	}

	merged, added := sel.Merge([]*course.Course{
		course.NewCourse("u1", "Algebra"),
		course.NewCourse("u2", "Physics"),
		course.NewCourse("u2", "Physics"),
	})

	c.Assert(added, check.Equals, 1)
	c.Assert(merged, check.DeepEquals, Selection{
		{URL: "u1", Name: "Algebra", Checked: true},
		{URL: "u-stale", Name: "Old course", Checked: true},
		{URL: "u2", Name: "Physics"},
	})
	c.Assert(sel, check.HasLen, 2)
}

func (s *selectionTestSuite) TestFilterKeepsCourseOrder(c *check.C) {
	sel := Selection{
		{URL: "u2", Name: "Physics", Checked: true},
		{URL: "u1", Name: "Algebra", Checked: true},
		{URL: "u3", Name: "History"},
	}
	courses := []*course.Course{
		course.NewCourse("u1", "Algebra"),
		course.NewCourse("u2", "Physics"),
		course.NewCourse("u3", "History"),
		course.NewCourse("u4", "Unknown"),
	}

	selected := sel.Filter(courses)
	c.Assert(selected, check.HasLen, 2)
	c.Assert(selected[0].Name, check.Equals, "Algebra")
	c.Assert(selected[1].Name, check.Equals, "Physics")
}

func (s *selectionTestSuite) TestSet(c *check.C) {
	sel := Selection{
		{URL: "u1", Name: "Algebra"},
		{URL: "u2", Name: "Physics", Checked: true},
	}

	c.Assert(sel.Set(true, "Algebra", "u2"), check.Equals, 1)
	c.Assert(sel[0].Checked, check.Equals, true)
	c.Assert(sel.Set(false, "u2"), check.Equals, 1)
	c.Assert(sel[1].Checked, check.Equals, false)
}

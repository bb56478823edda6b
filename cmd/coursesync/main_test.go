package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/config"
	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger/store/jsonfile"
	"github.com/mycok/coursesync/ledger/store/memory"
	"github.com/mycok/coursesync/markup"
	"github.com/mycok/coursesync/service/syncer"
)

var _ = check.Suite(new(CLITestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type CLITestSuite struct {
	dir   string
	paths config.Paths
}

func (s *CLITestSuite) SetUpTest(c *check.C) {
	s.dir = c.MkDir()
	s.paths = config.Paths{Dir: s.dir}
}

func (s *CLITestSuite) TestConfigStoresFlags(c *check.C) {
	out, err := s.run(
		"config",
		"--path", "/home/student/courses",
		"--home-url", "https://portal.test/my/",
		"--login-url", "https://portal.test/login/index.php",
		"--username", "student",
		"--password", "secret",
		"--minimise", "true",
	)
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Matches, "(?s).*password:     \\*\\*\\*\\*\\*\\*\\*\\*\n.*")
	c.Assert(out, check.Not(check.Matches), "(?s).*secret.*")
	c.Assert(out, check.Not(check.Matches), "(?s).*config is incomplete.*")

	cfg, err := config.Load(s.paths.Config())
	c.Assert(err, check.IsNil)
	c.Assert(cfg.DefaultPath, check.Equals, "/home/student/courses")
	c.Assert(cfg.URLs.Login, check.Equals, "https://portal.test/login/index.php")
	c.Assert(cfg.LoginData.Password, check.Equals, "secret")
	c.Assert(cfg.Minimise, check.Equals, true)
}

func (s *CLITestSuite) TestConfigReportsMissingSettings(c *check.C) {
	out, err := s.run("config")
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Matches, "(?s).*config is incomplete.*default_path not set.*")
}

func (s *CLITestSuite) TestConfigRejectsInvalidMinimise(c *check.C) {
	_, err := s.run("config", "--minimise", "maybe")
	c.Assert(err, check.ErrorMatches, "invalid value for --minimise.*")
}

func (s *CLITestSuite) TestSyncRequiresCompleteConfig(c *check.C) {
	_, err := s.run("sync")
	c.Assert(err, check.ErrorMatches, "(?s)incomplete config .*urls.home not set.*")
}

func (s *CLITestSuite) TestCoursesCheckAndUncheck(c *check.C) {
	c.Assert(config.SaveSelection(s.paths.Selection(), config.Selection{
		{URL: "https://portal.test/course/view.php?id=1", Name: "Algebra"},
		{URL: "https://portal.test/course/view.php?id=2", Name: "Physics", Checked: true},
	}), check.IsNil)

	out, err := s.run("courses", "check", "Algebra", "https://portal.test/course/view.php?id=2")
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Equals, "1 courses changed\n")

	out, err = s.run("courses", "uncheck", "Physics")
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Equals, "1 courses changed\n")

	out, err = s.run("courses")
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Equals,
		"[x] Algebra\thttps://portal.test/course/view.php?id=1\n"+
			"[ ] Physics\thttps://portal.test/course/view.php?id=2\n",
	)
}

func (s *CLITestSuite) TestRecentAndFind(c *check.C) {
	l, err := jsonfile.NewFileLedger(s.paths.Ledger())
	c.Assert(err, check.IsNil)
	c.Assert(l.Append(
		course.NewFile(course.KindFile, "https://portal.test/r/1", "Lecture notes.pdf", "Algebra/Week 1"),
		course.NewFile(course.KindFile, "https://portal.test/r/2", "Lab report template", "Physics/Labs"),
		course.NewFile(course.KindURL, "https://portal.test/u/3", "Lecture recordings", "Physics/Intro"),
	), check.IsNil)

	out, err := s.run("recent", "-n", "2")
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Equals, "Physics: Lecture recordings\nPhysics: Lab report template\n")

	out, err = s.run("find", "report")
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Equals, "Physics: Lab report template\thttps://portal.test/r/2\n")
}

func (s *CLITestSuite) TestSummaryShowsDueDatesInLocalTime(c *check.C) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	c.Assert(err, check.IsNil)

	original := time.Local
	time.Local = berlin
	defer func() { time.Local = original }()

	due, err := markup.ParseDueDate("Freitag, 12. März 2021, 23:59", time.Local)
	c.Assert(err, check.IsNil)
	c.Assert(due.Location(), check.Equals, time.UTC)

	homework := course.NewAssignment("https://portal.test/mod/assign/view.php?id=4", "Homework")
	homework.DueDate = due
	submitted := course.NewAssignment("https://portal.test/mod/assign/view.php?id=5", "Essay")
	submitted.Submitted = true

	var out bytes.Buffer
	printSummary(&out, &syncer.Summary{
		Courses:     1,
		Assignments: []*course.Assignment{homework, submitted},
	}, false, time.Local)

	c.Assert(out.String(), check.Equals,
		"assignment Homework [open] due Fri 12 Mar 2021 23:59\n"+
			"assignment Essay [submitted]\n"+
			"Finished: 1 courses, 0 files downloaded\n",
	)
}

func (s *CLITestSuite) TestOpenLedger(c *check.C) {
	e := &env{paths: s.paths, cfg: new(config.Config), logger: newLogger(false)}

	l, err := e.openLedger()
	c.Assert(err, check.IsNil)
	c.Assert(l, check.FitsTypeOf, (*jsonfile.FileLedger)(nil))

	e.cfg.Ledger = "in-memory://"
	l, err = e.openLedger()
	c.Assert(err, check.IsNil)
	c.Assert(l, check.FitsTypeOf, (*memory.InMemoryLedger)(nil))

	e.cfg.Ledger = "file://" + filepath.ToSlash(filepath.Join(s.dir, "other.json"))
	l, err = e.openLedger()
	c.Assert(err, check.IsNil)
	c.Assert(l, check.FitsTypeOf, (*jsonfile.FileLedger)(nil))

	e.cfg.Ledger = "ftp://portal.test/files"
	_, err = e.openLedger()
	c.Assert(err, check.ErrorMatches, `unsupported ledger URI scheme: "ftp"`)
}

func (s *CLITestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append(args, "--config-dir", s.dir))

	err := cmd.Execute()

	return out.String(), err
}

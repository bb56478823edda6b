package cdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/ledger/ledgertest"
)

var _ = check.Suite(new(cockroachDBLedgerTestSuite))

// Test registers the [check] library with the go testing library.
func Test(t *testing.T) {
	check.TestingT(t)
}

// cockroachDBLedgerTestSuite runs the BaseSuite tests against a live
// database named by the CDB_DSN envvar.
type cockroachDBLedgerTestSuite struct {
	db *sql.DB
	ledgertest.BaseSuite
}

func (s *cockroachDBLedgerTestSuite) SetUpSuite(c *check.C) {
	dsn := os.Getenv("CDB_DSN")
	if dsn == "" {
		c.Skip("Missing CDB_DSN envvar: skipping cockroachDB backed test suite")
	}

	l, err := NewCockroachDBLedger(dsn)
	if err != nil {
		c.Fatalf("Failed to make a database connection: %v", err)
	}

	s.SetLedger(l)
	s.db = l.db
}

func (s *cockroachDBLedgerTestSuite) TearDownSuite(c *check.C) {
	if s.db != nil {
		s.flushDB(c)
		c.Assert(s.db.Close(), check.IsNil)
	}
}

func (s *cockroachDBLedgerTestSuite) SetUpTest(c *check.C) {
	s.flushDB(c)
}

func (s *cockroachDBLedgerTestSuite) flushDB(c *check.C) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, "TRUNCATE ledger")
	c.Assert(err, check.IsNil)
}

package memory

import (
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/ledger/ledgertest"
)

var _ = check.Suite(new(inMemoryLedgerTestSuite))

// Test registers the [check] library with the go testing library.
func Test(t *testing.T) {
	check.TestingT(t)
}

type inMemoryLedgerTestSuite struct {
	ledgertest.BaseSuite
}

func (s *inMemoryLedgerTestSuite) SetUpTest(c *check.C) {
	s.SetLedger(NewInMemoryLedger())
}

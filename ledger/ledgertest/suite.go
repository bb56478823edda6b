package ledgertest

import (
	"github.com/mycok/coursesync/ledger"
)

// BaseSuite defines a set of re-usable ledger tests that can be executed
// against any concrete type that implements the ledger.Ledger interface.
type BaseSuite struct {
	l ledger.Ledger
}

// SetLedger configures the test-suite to run all tests against an instance
// of ledger.Ledger.
func (s *BaseSuite) SetLedger(l ledger.Ledger) {
	s.l = l
}

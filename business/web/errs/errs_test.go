package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/ledgersim/business/web/errs"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/chain"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Trusted(t *testing.T) {
	t.Log("Given a chain rejection wrapped for the client.")
	{
		err := fmt.Errorf("propose: %w", errs.NewTrusted(chain.ErrTooOld, http.StatusConflict))

		if !errs.IsTrusted(err) {
			t.Fatalf("\t%s\tShould find the trusted error in the chain.", failed)
		}
		t.Logf("\t%s\tShould find the trusted error in the chain.", success)

		te := errs.GetTrusted(err)
		if te == nil || te.Status != http.StatusConflict || te.Error() != chain.ErrTooOld.Error() {
			t.Fatalf("\t%s\tShould carry the status and message, got %+v.", failed, te)
		}
		t.Logf("\t%s\tShould carry the status and message.", success)

		if !errors.Is(err, chain.ErrTooOld) {
			t.Fatalf("\t%s\tShould unwrap to the rejection reason.", failed)
		}
		t.Logf("\t%s\tShould unwrap to the rejection reason.", success)

		if errs.IsTrusted(chain.ErrTooOld) || errs.GetTrusted(chain.ErrTooOld) != nil {
			t.Fatalf("\t%s\tShould not treat a plain error as trusted.", failed)
		}
		t.Logf("\t%s\tShould not treat a plain error as trusted.", success)
	}
}

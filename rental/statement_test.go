package rental_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/rental"
)

func statementFixture(t *testing.T) billing.CustomerRecord {
	t.Helper()
	record := rental.NewCustomer("cust-1", "Ravi Kumar", "9876500000", "Main Road", money("1000"))
	require.NoError(t, rental.AddItem(&record, "Plate", money("50")))
	require.NoError(t, rental.AddTransaction(&record, date(2024, time.January, 1), "Plate", 2))
	require.NoError(t, rental.AddTransaction(&record, date(2024, time.January, 5), "Plate", -2))
	_, err := rental.RecordPayment(&record, date(2024, time.January, 6), money("300"), rental.MethodCash, "", "")
	require.NoError(t, err)
	return record
}

func TestBuildStatement_Totals(t *testing.T) {
	// GIVEN: 4 accrued days at 2 * 50/day, previous balance 1000, 300 paid
	// WHEN: building a statement
	// THEN: rental charges 400, amount due = 1000 + 400 - 300 = 1100

	record := statementFixture(t)

	st := rental.BuildStatement(record, billing.ApprovedOnly, date(2024, time.February, 1))

	assert.True(t, st.RentalCharges.Equal(money("400")), "got %s", st.RentalCharges)
	assert.True(t, st.PaymentsReceived.Equal(money("300")))
	assert.True(t, st.AmountDue.Equal(money("1100")), "got %s", st.AmountDue)
	assert.True(t, st.AdvanceHeld.IsZero())
	assert.Equal(t, "Ravi Kumar", st.CustomerName)
}

func TestBuildStatement_ClosedLedger_NoOpenSpanCharges(t *testing.T) {
	// A statement generated long after the last event must not charge for
	// the gap, even when items are still out.

	record := rental.NewCustomer("cust-2", "Sita", "", "", money("0"))
	require.NoError(t, rental.AddItem(&record, "Plate", money("10")))
	require.NoError(t, rental.AddTransaction(&record, date(2024, time.January, 1), "Plate", 5))

	st := rental.BuildStatement(record, billing.ApprovedOnly, date(2024, time.June, 1))

	assert.True(t, st.RentalCharges.IsZero(), "closed ledger must not project, got %s", st.RentalCharges)
}

func TestBuildStatement_LinesAreChronologicalWithActions(t *testing.T) {
	record := statementFixture(t)

	st := rental.BuildStatement(record, billing.ApprovedOnly, date(2024, time.February, 1))

	require.Len(t, st.Lines, 2)
	assert.Equal(t, "Rent", st.Lines[0].Action)
	assert.Equal(t, 2, st.Lines[0].Qty)
	assert.Equal(t, "Return", st.Lines[1].Action)
	assert.Equal(t, 2, st.Lines[1].Qty, "line quantity is absolute")
	assert.True(t, st.Lines[0].Rate.Equal(money("50")))
}

func TestBuildStatement_AdvanceShownSeparately(t *testing.T) {
	record := rental.NewCustomer("cust-3", "Mohan", "", "", money("100"))
	_, err := rental.RecordPayment(&record, date(2024, time.January, 2), money("400"), rental.MethodUPI, "", "")
	require.NoError(t, err)

	st := rental.BuildStatement(record, billing.ApprovedOnly, date(2024, time.February, 1))

	assert.True(t, st.AmountDue.Equal(money("-300")), "signed figure stays signed, got %s", st.AmountDue)
	assert.True(t, st.AdvanceHeld.Equal(money("300")))
}

func TestBuildStatement_PolicySelectsPayments(t *testing.T) {
	record := rental.NewCustomer("cust-4", "Gita", "", "", money("500"))
	_, err := rental.SubmitPayment(&record, date(2024, time.January, 2), money("200"), rental.MethodUPI, "", "")
	require.NoError(t, err)

	gated := rental.BuildStatement(record, billing.ApprovedOnly, date(2024, time.February, 1))
	offline := rental.BuildStatement(record, billing.IncludeAll, date(2024, time.February, 1))

	assert.True(t, gated.PaymentsReceived.IsZero())
	assert.True(t, offline.PaymentsReceived.Equal(money("200")))
}

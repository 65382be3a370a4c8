/*
demo.go - Demo data for local development

PURPOSE:
  Seeds a repository with a few customers that exercise the interesting
  balance shapes: an open rental, a settled ledger, an advance, and a
  pending payment awaiting approval.
*/
package rental

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/plank/rental-engine/billing"
)

// SeedDemo writes the demo customers. Existing records with the same IDs are
// left alone so repeated starts with -demo stay idempotent.
func SeedDemo(ctx context.Context, repo Repository) error {
	for _, build := range []func() (billing.CustomerRecord, error){
		demoOpenRental,
		demoSettled,
		demoAdvance,
		demoPendingApproval,
	} {
		record, err := build()
		if err != nil {
			return err
		}
		if _, err := repo.Load(ctx, record.ID); err == nil {
			continue
		}
		if err := repo.Save(ctx, &record); err != nil {
			return fmt.Errorf("seed %s: %w", record.ID, err)
		}
	}
	return nil
}

// demoOpenRental still holds plates, so the live balance grows daily while
// a closed statement stops at the last event.
func demoOpenRental() (billing.CustomerRecord, error) {
	record := NewCustomer("demo-open", "Ravi Kumar", "9876543210", "12 Main Road", decimal.NewFromInt(500))
	if err := AddItem(&record, "Plate", decimal.NewFromInt(5)); err != nil {
		return record, err
	}
	if err := AddItem(&record, "Prop", decimal.NewFromInt(8)); err != nil {
		return record, err
	}
	start := billing.Today().AddDays(-20)
	if err := AddTransaction(&record, start, "Plate", 40); err != nil {
		return record, err
	}
	if err := AddTransaction(&record, start.AddDays(5), "Plate", -15); err != nil {
		return record, err
	}
	if _, err := RecordPayment(&record, start.AddDays(10), decimal.NewFromInt(800), MethodCash, "", "counter payment"); err != nil {
		return record, err
	}
	return record, nil
}

func demoSettled() (billing.CustomerRecord, error) {
	record := NewCustomer("demo-settled", "Sunita Devi", "9811100022", "Old Market", decimal.Zero)
	if err := AddItem(&record, "Shuttering Sheet", decimal.NewFromInt(10)); err != nil {
		return record, err
	}
	start := billing.NewDate(2024, time.March, 1)
	if err := AddTransaction(&record, start, "Shuttering Sheet", 10); err != nil {
		return record, err
	}
	if err := AddTransaction(&record, start.AddDays(6), "Shuttering Sheet", -10); err != nil {
		return record, err
	}
	// 10 sheets * 10/day * 6 days = 600, paid in full.
	if _, err := RecordPayment(&record, start.AddDays(6), decimal.NewFromInt(600), MethodUPI, "UPI-4417", ""); err != nil {
		return record, err
	}
	return record, nil
}

func demoAdvance() (billing.CustomerRecord, error) {
	record := NewCustomer("demo-advance", "Mohan Lal", "", "", decimal.Zero)
	if err := AddItem(&record, "Jack", decimal.NewFromInt(4)); err != nil {
		return record, err
	}
	start := billing.NewDate(2024, time.April, 10)
	if err := AddTransaction(&record, start, "Jack", 5); err != nil {
		return record, err
	}
	if err := AddTransaction(&record, start.AddDays(5), "Jack", -5); err != nil {
		return record, err
	}
	// Owes 100, pays 400: signed balance -300, display due 0.
	if _, err := RecordPayment(&record, start.AddDays(5), decimal.NewFromInt(400), MethodCash, "", "advance for next season"); err != nil {
		return record, err
	}
	return record, nil
}

func demoPendingApproval() (billing.CustomerRecord, error) {
	record := NewCustomer("demo-pending", "Anil Sharma", "9900012345", "", decimal.NewFromInt(200))
	if err := AddItem(&record, "Plate", decimal.NewFromInt(5)); err != nil {
		return record, err
	}
	start := billing.Today().AddDays(-7)
	if err := AddTransaction(&record, start, "Plate", 20); err != nil {
		return record, err
	}
	if _, err := SubmitPayment(&record, billing.Today().AddDays(-1), decimal.NewFromInt(300), MethodBankTransfer, "TXN-88231", "sent via netbanking"); err != nil {
		return record, err
	}
	return record, nil
}

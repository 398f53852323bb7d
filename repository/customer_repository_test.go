package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"flowerShopCRM/internal/testutil"
)

func TestRecordOrder_CreatesThenAccumulates(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "customers_record")
	customers := NewCustomerRepository(d)
	ctx := context.Background()

	c, err := customers.RecordOrder(ctx, "", " 555-0200 ", decimal.RequireFromString("30"), base)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if c.Phone != "555-0200" || c.TotalOrders != 1 || !c.TotalSpent.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("after first order: %+v", c)
	}

	later := base.Add(48 * time.Hour)
	c2, err := customers.RecordOrder(ctx, "Olga", "555-0200", decimal.RequireFromString("12.25"), later)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if c2.ID != c.ID {
		t.Fatalf("phone must identify the customer: %d vs %d", c2.ID, c.ID)
	}

	got, err := customers.GetByPhone(ctx, "555-0200")
	if err != nil || got == nil {
		t.Fatalf("get: %v %v", got, err)
	}
	if got.Name != "Olga" || got.TotalOrders != 2 || !got.TotalSpent.Equal(decimal.RequireFromString("42.25")) {
		t.Fatalf("totals: %+v", got)
	}
	if got.LastOrderDate == nil || !got.LastOrderDate.Equal(later) {
		t.Fatalf("last order date: %v", got.LastOrderDate)
	}

	// An older order does not move the last order date backwards, and an
	// empty name keeps the stored one.
	if _, err := customers.RecordOrder(ctx, "", "555-0200", decimal.Zero, base); err != nil {
		t.Fatalf("third record: %v", err)
	}
	got, _ = customers.GetByPhone(ctx, "555-0200")
	if !got.LastOrderDate.Equal(later) || got.Name != "Olga" || got.TotalOrders != 3 {
		t.Fatalf("after older order: %+v", got)
	}
}

func TestRecordOrder_RequiresPhone(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "customers_phone")
	if _, err := NewCustomerRepository(d).RecordOrder(context.Background(), "Nameless", "  ", decimal.Zero, base); err == nil {
		t.Fatalf("expected error for empty phone")
	}
}

func TestCustomerList(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "customers_list")
	customers := NewCustomerRepository(d)
	ctx := context.Background()
	if _, err := customers.Create(ctx, "Never bought", "1", base); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := customers.RecordOrder(ctx, "Buyer", "2", decimal.NewFromInt(5), base); err != nil {
		t.Fatalf("record: %v", err)
	}
	list, err := customers.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Phone != "2" {
		t.Fatalf("buyers should come first: %+v", list)
	}
}

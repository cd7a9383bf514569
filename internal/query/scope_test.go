package query

import (
	"context"
	"errors"
	"testing"

	"runright.io/internal/auth"
	"runright.io/internal/cms"
)

func TestApplyCompanyScope(t *testing.T) {
	admin := auth.Principal{Role: cms.RoleAdmin, CompanyID: "hq"}
	manager := auth.Principal{Role: cms.RoleManager, CompanyID: "c10"}

	f := ApplyCompanyScope(&cms.Filter{}, admin)
	if len(f.Conds) != 0 {
		t.Fatalf("admin must not be scoped: %+v", f.Conds)
	}

	f = ApplyCompanyScope(&cms.Filter{}, manager)
	if len(f.Conds) != 1 || f.Conds[0].Field != "company_id" || f.Conds[0].Value != "c10" {
		t.Fatalf("manager scope missing: %+v", f.Conds)
	}
}

func TestApplyBranchScope(t *testing.T) {
	tech := auth.Principal{Role: cms.RoleTechnician, CompanyID: "c10", BranchID: "0007"}
	manager := auth.Principal{Role: cms.RoleManager, CompanyID: "c10", BranchID: "0007"}

	f := ApplyBranchScope(&cms.Filter{}, tech, cms.RoleTechnician, cms.RoleStore)
	if !f.HasField("company_id") || !f.HasField("branch_id") {
		t.Fatalf("technician not branch-scoped: %+v", f.Conds)
	}

	// A manager is company-scoped but sees every branch.
	f = ApplyBranchScope(&cms.Filter{}, manager, cms.RoleTechnician, cms.RoleStore)
	if !f.HasField("company_id") || f.HasField("branch_id") {
		t.Fatalf("manager scoped incorrectly: %+v", f.Conds)
	}
}

func TestRestrictToCompanyID(t *testing.T) {
	f := &cms.Filter{}
	if err := RestrictToCompanyID(f, auth.Principal{Role: cms.RoleAdmin}); err != nil {
		t.Fatalf("admin restricted: %v", err)
	}
	if len(f.Conds) != 0 {
		t.Fatalf("admin filter modified: %+v", f.Conds)
	}

	f = &cms.Filter{}
	if err := RestrictToCompanyID(f, auth.Principal{Role: cms.RoleStore, CompanyID: "c10"}); err != nil {
		t.Fatalf("RestrictToCompanyID: %v", err)
	}
	if !f.HasField("company_id") {
		t.Fatalf("store account not pinned: %+v", f.Conds)
	}

	err := RestrictToCompanyID(&cms.Filter{}, auth.Principal{Role: cms.RoleStore, CompanyID: "  "})
	if !errors.Is(err, ErrInvalidCompanyID) {
		t.Fatalf("expected ErrInvalidCompanyID, got %v", err)
	}
}

func TestSameTenant(t *testing.T) {
	tests := []struct {
		name string
		p    auth.Principal
		id   string
		want bool
	}{
		{"admin crosses tenants", auth.Principal{Role: cms.RoleAdmin, CompanyID: "hq"}, "c99", true},
		{"distributor crosses tenants", auth.Principal{Role: cms.RoleDistributor, CompanyID: "c1"}, "c99", true},
		{"manager own tenant", auth.Principal{Role: cms.RoleManager, CompanyID: "c10"}, "c10", true},
		{"manager foreign tenant", auth.Principal{Role: cms.RoleManager, CompanyID: "c10"}, "c99", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameTenant(tt.p, tt.id); got != tt.want {
				t.Fatalf("SameTenant = %v, want %v", got, tt.want)
			}
		})
	}
}

// The isolation scenario end to end: two tenants, one store each, the
// non-admin caller only ever sees its own tenant's records.
func TestCompanyScopeIsolation(t *testing.T) {
	store := cms.NewMemory()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		c := &cms.Customer{ID: string(rune('a' + i)), CompanyID: "c10", FirstName: "ten"}
		if err := store.Customers().Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		c := &cms.Customer{ID: string(rune('p' + i)), CompanyID: "c20", FirstName: "five"}
		if err := store.Customers().Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	manager := auth.Principal{Role: cms.RoleManager, CompanyID: "c10"}
	n, err := store.Customers().Count(ctx, ApplyCompanyScope(&cms.Filter{}, manager))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 10 {
		t.Fatalf("manager sees %d customers, want 10", n)
	}

	admin := auth.Principal{Role: cms.RoleAdmin}
	n, err = store.Customers().Count(ctx, ApplyCompanyScope(&cms.Filter{}, admin))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 15 {
		t.Fatalf("admin sees %d customers, want 15", n)
	}
}

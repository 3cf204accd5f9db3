package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/item"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/netsuite"
)

func poRow(id int) string {
	return fmt.Sprintf(`{"id":"%d","tranid":"PO%d","entity":"101","status":"PurchOrd:B"}`, id, id)
}

func poRecord(id int, memo string, lines ...int) string {
	items := make([]string, 0, len(lines))
	for _, l := range lines {
		items = append(items, fmt.Sprintf(
			`{"line":%d,"item":{"id":"%d","refName":"SKU-%d"},"quantity":"%d","rate":"2.50","amount":"%d.00"}`,
			l, 500+l, l, l, l))
	}
	return fmt.Sprintf(
		`{"id":"%d","tranId":"PO%d","entity":{"id":"101"},"status":{"id":"B","refName":"Pending Receipt"},"total":"100.00","memo":%q,"tranDate":"2024-01-15","employee":{"id":"7"},"item":{"items":[%s]}}`,
		id, id, memo, strings.Join(items, ","))
}

func seedPurchaseOrders(f *fixture, n int) {
	for i := 1; i <= n; i++ {
		f.erp.rows[netsuite.PurchaseOrderQuery] = append(f.erp.rows[netsuite.PurchaseOrderQuery], poRow(i))
		f.erp.records[fmt.Sprint(i)] = poRecord(i, "memo", 1)
	}
}

func TestVendorSyncIsIdempotent(t *testing.T) {
	f := newFixture()
	f.erp.rows[netsuite.VendorQuery] = []string{
		`{"id":"101","entityid":"V101","companyname":"Acme","email":"Sales@Acme.com","altemail":"ap@acme.com","isinactive":"F","custentity_portal_contacts":"ops@acme.com; sales@acme.com"}`,
		`{"id":102,"entityid":"V102","email":"x@beta.io","isinactive":"T"}`,
	}
	ctx := context.Background()

	first, err := f.svc.Run(ctx, TypeVendors, "test")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Totals.Created != 2 {
		t.Errorf("first run created = %d, want 2", first.Totals.Created)
	}

	second, err := f.svc.Run(ctx, TypeVendors, "test")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Totals.Created != 0 || second.Totals.Updated != 2 {
		t.Errorf("second run totals = %+v", second.Totals)
	}
	if second.Detail["users"].Created != 0 || second.Detail["links"].Created != 0 {
		t.Errorf("second run created users or links: %+v", second.Detail)
	}

	st := f.db.state
	if len(st.accounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(st.accounts))
	}
	if got := len(st.usersOfType(models.UserTypeVendor)); got != 4 {
		t.Errorf("vendor users = %d, want 4", got)
	}
	if len(st.links) != 4 {
		t.Errorf("links = %d, want 4", len(st.links))
	}

	acme := st.accounts[acctKey{101, models.AccountTypeVendor}]
	if acme.Name != "Acme" || acme.Email != "sales@acme.com" || !acme.IsActive {
		t.Errorf("acme = %+v", acme)
	}
	if beta := st.accounts[acctKey{102, models.AccountTypeVendor}]; beta.IsActive || beta.Name != "V102" {
		t.Errorf("beta = %+v", beta)
	}

	primaries := 0
	for k, l := range st.links {
		if k.id != 101 || !l.IsPrimary {
			continue
		}
		primaries++
		if st.users[k.user].Email != "sales@acme.com" {
			t.Errorf("primary contact = %q", st.users[k.user].Email)
		}
	}
	if primaries != 1 {
		t.Errorf("acme primary links = %d, want 1", primaries)
	}
}

func TestVendorAndDealerWithSameEmailGetSeparateUsers(t *testing.T) {
	f := newFixture()
	f.erp.rows[netsuite.VendorQuery] = []string{`{"id":"1","companyname":"Shared Co","email":"shared@x.com"}`}
	f.erp.rows[netsuite.DealerQuery("2")] = []string{`{"id":"1","companyname":"Shared Co","email":"shared@x.com","category":"2"}`}
	ctx := context.Background()

	if _, err := f.svc.Run(ctx, TypeVendors, "test"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Run(ctx, TypeDealers, "test"); err != nil {
		t.Fatal(err)
	}

	st := f.db.state
	if len(st.accounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(st.accounts))
	}
	if len(st.usersOfType(models.UserTypeVendor)) != 1 || len(st.usersOfType(models.UserTypeDealer)) != 1 {
		t.Errorf("users = %+v", st.users)
	}
}

func TestBuyerSync(t *testing.T) {
	f := newFixture()
	f.erp.rows[netsuite.BuyerQuery] = []string{
		`{"id":"7","firstname":"Ann","lastname":"Lee","email":"Ann@Corp.com","isinactive":"F"}`,
		`{"id":"8","firstname":"No","lastname":"Mail"}`,
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := f.svc.Run(ctx, TypeBuyers, "test")
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if res.Totals.Failed != 1 {
			t.Errorf("run %d failed = %d, want 1", i, res.Totals.Failed)
		}
		if res.Status != StatusSuccess {
			t.Errorf("run %d status = %s", i, res.Status)
		}
	}

	buyers := f.db.state.usersOfType(models.UserTypeBuyer)
	if len(buyers) != 1 {
		t.Fatalf("buyers = %d, want 1", len(buyers))
	}
	b := buyers[0]
	if b.Email != "ann@corp.com" || b.Name != "Ann Lee" || b.NetSuiteID == nil || *b.NetSuiteID != 7 {
		t.Errorf("buyer = %+v", b)
	}
}

func TestPurchaseOrderLinesReplaced(t *testing.T) {
	f := newFixture()
	f.erp.rows[netsuite.PurchaseOrderQuery] = []string{poRow(1)}
	f.erp.records["1"] = poRecord(1, "first", 1, 2, 3)
	ctx := context.Background()

	if _, err := f.svc.Run(ctx, TypePurchaseOrders, "test"); err != nil {
		t.Fatal(err)
	}
	if got := len(f.db.state.lines[1]); got != 3 {
		t.Fatalf("lines after first sync = %d, want 3", got)
	}

	f.erp.records["1"] = poRecord(1, "first", 4)
	if _, err := f.svc.Run(ctx, TypePurchaseOrders, "test"); err != nil {
		t.Fatal(err)
	}
	lines := f.db.state.lines[1]
	if len(lines) != 1 || lines[0].Line != 4 || lines[0].ItemID != 504 || lines[0].ItemName != "SKU-4" {
		t.Errorf("lines after second sync = %+v", lines)
	}
	if lines[0].Quantity != 4 || lines[0].Rate.String() != "2.5" {
		t.Errorf("line values = %+v", lines[0])
	}
}

func TestPurchaseOrderDetailFailureIsCounted(t *testing.T) {
	f := newFixture()
	seedPurchaseOrders(f, 5)
	f.erp.recordErr["3"] = &netsuite.APIError{StatusCode: 500, Body: "boom"}

	res, err := f.svc.Run(context.Background(), TypePurchaseOrders, "test")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Totals.Processed != 4 || res.Totals.Failed != 1 {
		t.Errorf("totals = %+v, want 4 processed and 1 failed", res.Totals)
	}
	if len(f.erp.gets) != 5 {
		t.Errorf("detail fetches = %d, want 5", len(f.erp.gets))
	}
	if _, ok := f.db.state.pos[3]; ok {
		t.Error("failed purchase order was persisted")
	}
	logged := f.logs.logs[res.LogID]
	if logged.Status != StatusSuccess || logged.Failed != 1 || logged.FinishedAt == nil {
		t.Errorf("log = %+v", logged)
	}
}

func TestPurchaseOrderFatalErrorKeepsCommittedSegments(t *testing.T) {
	f := newFixture()
	f.svc.POCommitEvery = 10
	seedPurchaseOrders(f, 11)
	f.db.failPOCreate = func(id int64) error {
		if id == 11 {
			return errors.New("disk full")
		}
		return nil
	}

	res, err := f.svc.Run(context.Background(), TypePurchaseOrders, "test")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := len(f.db.state.pos); got != 10 {
		t.Errorf("persisted purchase orders = %d, want 10", got)
	}
	if _, ok := f.db.state.pos[11]; ok {
		t.Error("purchase order 11 persisted")
	}
	if res == nil || res.Status != StatusFailed {
		t.Fatalf("result = %+v", res)
	}
	logged := f.logs.logs[res.LogID]
	if logged.Status != StatusFailed || !strings.Contains(logged.Error, "disk full") {
		t.Errorf("log = %+v", logged)
	}
	if len(f.teams.posts) != 1 || f.teams.posts[0] != "sync" {
		t.Errorf("teams posts = %v", f.teams.posts)
	}
}

func TestPurchaseOrderPolicy(t *testing.T) {
	seed := func(f *fixture) {
		f.db.state.pos[1] = purchase_order.PurchaseOrder{
			ID:               1,
			Memo:             "old",
			HasVendorUpdates: true,
			PendingChanges:   models.JSONB(`{"memo":"vendor"}`),
		}
		f.erp.rows[netsuite.PurchaseOrderQuery] = []string{poRow(1)}
		f.erp.records["1"] = poRecord(1, "new", 1, 2)
	}

	t.Run("create-only leaves header", func(t *testing.T) {
		f := newFixture()
		seed(f)
		res, err := f.svc.Run(context.Background(), TypePurchaseOrders, "test")
		if err != nil {
			t.Fatal(err)
		}
		if got := f.db.state.pos[1].Memo; got != "old" {
			t.Errorf("memo = %q, want old", got)
		}
		if res.Totals.Updated != 0 || res.Totals.Processed != 1 {
			t.Errorf("totals = %+v", res.Totals)
		}
		if len(f.db.state.lines[1]) != 2 {
			t.Errorf("lines = %d, want 2", len(f.db.state.lines[1]))
		}
	})

	t.Run("upsert overwrites header", func(t *testing.T) {
		f := newFixture()
		f.svc.POPolicy = PolicyUpsert
		seed(f)
		res, err := f.svc.Run(context.Background(), TypePurchaseOrders, "test")
		if err != nil {
			t.Fatal(err)
		}
		po := f.db.state.pos[1]
		if po.Memo != "new" || po.Status != purchase_order.StatusPendingReceipt {
			t.Errorf("po = %+v", po)
		}
		if !po.HasVendorUpdates || string(po.PendingChanges) != `{"memo":"vendor"}` {
			t.Errorf("pending vendor changes lost: %+v", po)
		}
		if res.Totals.Updated != 1 {
			t.Errorf("totals = %+v", res.Totals)
		}
	})
}

func TestItemSyncEvaluatesExistingItems(t *testing.T) {
	f := newFixture()
	f.db.state.items[1] = item.Item{ID: 1, SKU: "A-1", Name: "Anvil", QuantityOnHand: 0}
	f.erp.rows[netsuite.ItemQuery] = []string{
		`{"id":"1","itemid":"A-1","displayname":"Anvil","quantityonhand":"5","baseprice":"10.00"}`,
		`{"id":"2","itemid":"B-2","quantityonhand":3}`,
	}

	res, err := f.svc.Run(context.Background(), TypeItems, "test")
	if err != nil {
		t.Fatal(err)
	}
	if len(f.trigger.calls) != 1 {
		t.Fatalf("trigger calls = %+v, want one", f.trigger.calls)
	}
	if c := f.trigger.calls[0]; c.itemID != 1 || c.old != 0 || c.new != 5 {
		t.Errorf("trigger call = %+v", c)
	}
	if res.Detail["notifications"].Created != 1 {
		t.Errorf("details = %+v", res.Detail)
	}
	if res.Totals.Created != 1 || res.Totals.Updated != 1 {
		t.Errorf("totals = %+v", res.Totals)
	}
	if got := f.db.state.items[2]; got.Name != "B-2" || got.QuantityOnHand != 3 {
		t.Errorf("new item = %+v", got)
	}
}

func TestFetchFailureFailsRun(t *testing.T) {
	f := newFixture()
	f.erp.queryErr = &netsuite.APIError{StatusCode: 401, Body: "invalid login"}

	res, err := f.svc.Run(context.Background(), TypeVendors, "test")
	if err == nil {
		t.Fatal("expected error")
	}
	logged := f.logs.logs[res.LogID]
	if logged.Status != StatusFailed || !strings.Contains(logged.Error, "fetch vendors") {
		t.Errorf("log = %+v", logged)
	}
	if len(f.teams.posts) != 1 {
		t.Errorf("teams posts = %v", f.teams.posts)
	}
}

func TestRunRejectsUnknownTypeAndHeldLock(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Run(context.Background(), Type("widgets"), "test"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type err = %v", err)
	}

	f.svc.Locker = fakeLocker{err: ErrAlreadyRunning}
	if _, err := f.svc.Run(context.Background(), TypeVendors, "test"); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("locked err = %v", err)
	}
	if len(f.logs.logs) != 0 {
		t.Errorf("logs written = %d, want 0", len(f.logs.logs))
	}
}

func TestRunAllContinuesAfterFailure(t *testing.T) {
	f := newFixture()
	f.erp.rows[netsuite.ItemQuery] = []string{`{"id":"1","itemid":"A-1"}`}
	f.erp.rows[netsuite.PurchaseOrderQuery] = []string{poRow(1)}
	f.erp.records["1"] = poRecord(1, "memo", 1)
	f.db.failPOCreate = func(int64) error { return errors.New("constraint") }

	results, err := f.svc.RunAll(context.Background(), "test")
	if err == nil || !strings.Contains(err.Error(), "purchase_orders") {
		t.Errorf("err = %v", err)
	}
	if len(results) != len(AllTypes) {
		t.Fatalf("results = %d, want %d", len(results), len(AllTypes))
	}
	if _, ok := f.db.state.items[1]; !ok {
		t.Error("items sync did not run after purchase order failure")
	}
}

func TestStartReportsHeldLockBeforeReturning(t *testing.T) {
	f := newFixture()
	f.svc.Locker = fakeLocker{err: ErrAlreadyRunning}
	if err := f.svc.Start(TypeVendors, "manual"); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("locked err = %v", err)
	}
	if err := f.svc.Start(Type("widgets"), "manual"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type err = %v", err)
	}
	if err := f.svc.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.logs.logs) != 0 {
		t.Errorf("logs written = %d, want 0", len(f.logs.logs))
	}
}

func TestStartRunsInBackgroundUntilShutdown(t *testing.T) {
	f := newFixture()
	f.erp.rows[netsuite.VendorQuery] = []string{`{"id":"1","companyname":"Acme","email":"a@acme.com"}`}

	if err := f.svc.Start(TypeVendors, "manual"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(f.logs.logs) != 1 {
		t.Fatalf("logs = %d, want 1", len(f.logs.logs))
	}
	if l := f.logs.logs[1]; l.Status != StatusSuccess || l.Trigger != "manual" {
		t.Errorf("log = %+v", l)
	}
	if _, ok := f.db.state.accounts[acctKey{1, models.AccountTypeVendor}]; !ok {
		t.Error("vendor not synced")
	}
}

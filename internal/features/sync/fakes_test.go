package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/item"
	"supplier-portal/internal/features/notification"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/netsuite"

	"go.uber.org/zap"
)

type acctKey struct {
	id int64
	t  models.AccountType
}

type linkKey struct {
	id   int64
	t    models.AccountType
	user uint
}

type memState struct {
	accounts map[acctKey]account.Account
	profiles map[acctKey]account.AccountProfile
	users    map[uint]account.User
	links    map[linkKey]account.AccountUser
	pos      map[int64]purchase_order.PurchaseOrder
	lines    map[int64][]purchase_order.LineItem
	items    map[int64]item.Item
	subs     map[uint]item.Subscription
	nextUser uint
}

func newMemState() *memState {
	return &memState{
		accounts: map[acctKey]account.Account{},
		profiles: map[acctKey]account.AccountProfile{},
		users:    map[uint]account.User{},
		links:    map[linkKey]account.AccountUser{},
		pos:      map[int64]purchase_order.PurchaseOrder{},
		lines:    map[int64][]purchase_order.LineItem{},
		items:    map[int64]item.Item{},
		subs:     map[uint]item.Subscription{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memState) clone() *memState {
	c := &memState{
		accounts: copyMap(s.accounts),
		profiles: copyMap(s.profiles),
		users:    copyMap(s.users),
		links:    copyMap(s.links),
		pos:      copyMap(s.pos),
		lines:    make(map[int64][]purchase_order.LineItem, len(s.lines)),
		items:    copyMap(s.items),
		subs:     copyMap(s.subs),
		nextUser: s.nextUser,
	}
	for k, v := range s.lines {
		c.lines[k] = append([]purchase_order.LineItem(nil), v...)
	}
	return c
}

func (s *memState) usersOfType(t models.UserType) []account.User {
	var out []account.User
	for _, u := range s.users {
		if u.Type == t {
			out = append(out, u)
		}
	}
	return out
}

// memDB snapshots on Begin; Commit publishes the snapshot, Rollback drops it.
type memDB struct {
	state        *memState
	failPOCreate func(id int64) error
	commits      int
}

func newMemDB() *memDB { return &memDB{state: newMemState()} }

func (d *memDB) Begin(ctx context.Context) (Tx, error) {
	return &memTx{db: d, st: d.state.clone()}, nil
}

type memTx struct {
	db   *memDB
	st   *memState
	done bool
}

func (t *memTx) Accounts() AccountStore                        { return memAccounts{t.st} }
func (t *memTx) Users() UserStore                              { return memUsers{t.st} }
func (t *memTx) PurchaseOrders() PurchaseOrderStore            { return memPOs{t.st, t.db} }
func (t *memTx) Items() ItemStore                              { return memItems{t.st} }
func (t *memTx) Subscriptions() notification.SubscriptionStore { return memSubs{t.st} }

func (t *memTx) Commit() error {
	if t.done {
		return errors.New("transaction already closed")
	}
	t.done = true
	t.db.state = t.st
	t.db.commits++
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return errors.New("transaction already closed")
	}
	t.done = true
	return nil
}

type memAccounts struct{ st *memState }

func (m memAccounts) FindAccount(ctx context.Context, id int64, t models.AccountType) (*account.Account, error) {
	a, ok := m.st.accounts[acctKey{id, t}]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &a, nil
}

func (m memAccounts) CreateAccount(ctx context.Context, a *account.Account) error {
	m.st.accounts[acctKey{a.ID, a.Type}] = *a
	return nil
}

func (m memAccounts) UpdateAccount(ctx context.Context, a *account.Account) error {
	m.st.accounts[acctKey{a.ID, a.Type}] = *a
	return nil
}

func (m memAccounts) UpsertProfile(ctx context.Context, p *account.AccountProfile) error {
	m.st.profiles[acctKey{p.AccountID, p.AccountType}] = *p
	return nil
}

func (m memAccounts) FindLink(ctx context.Context, id int64, t models.AccountType, userID uint) (*account.AccountUser, error) {
	l, ok := m.st.links[linkKey{id, t, userID}]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &l, nil
}

func (m memAccounts) CreateLink(ctx context.Context, l *account.AccountUser) error {
	m.st.links[linkKey{l.AccountID, l.AccountType, l.UserID}] = *l
	return nil
}

type memUsers struct{ st *memState }

func (m memUsers) FindByEmail(ctx context.Context, email string, t models.UserType) (*account.User, error) {
	for _, u := range m.st.users {
		if u.Email == email && u.Type == t {
			return &u, nil
		}
	}
	return nil, account.ErrNotFound
}

func (m memUsers) Create(ctx context.Context, u *account.User) error {
	m.st.nextUser++
	u.ID = m.st.nextUser
	m.st.users[u.ID] = *u
	return nil
}

func (m memUsers) Update(ctx context.Context, u *account.User) error {
	m.st.users[u.ID] = *u
	return nil
}

type memPOs struct {
	st *memState
	db *memDB
}

func (m memPOs) FindByID(ctx context.Context, id int64) (*purchase_order.PurchaseOrder, error) {
	po, ok := m.st.pos[id]
	if !ok {
		return nil, purchase_order.ErrNotFound
	}
	return &po, nil
}

func (m memPOs) Create(ctx context.Context, po *purchase_order.PurchaseOrder) error {
	if m.db.failPOCreate != nil {
		if err := m.db.failPOCreate(po.ID); err != nil {
			return err
		}
	}
	m.st.pos[po.ID] = *po
	return nil
}

func (m memPOs) Update(ctx context.Context, po *purchase_order.PurchaseOrder) error {
	m.st.pos[po.ID] = *po
	return nil
}

func (m memPOs) ReplaceLines(ctx context.Context, poID int64, lines []purchase_order.LineItem) error {
	m.st.lines[poID] = append([]purchase_order.LineItem(nil), lines...)
	return nil
}

type memItems struct{ st *memState }

func (m memItems) FindByID(ctx context.Context, id int64) (*item.Item, error) {
	it, ok := m.st.items[id]
	if !ok {
		return nil, item.ErrNotFound
	}
	return &it, nil
}

func (m memItems) Create(ctx context.Context, it *item.Item) error {
	m.st.items[it.ID] = *it
	return nil
}

func (m memItems) Update(ctx context.Context, it *item.Item) error {
	m.st.items[it.ID] = *it
	return nil
}

type memSubs struct{ st *memState }

func (m memSubs) ListActiveForItem(ctx context.Context, itemID int64) ([]item.Subscription, error) {
	var out []item.Subscription
	for _, s := range m.st.subs {
		if s.ItemID == itemID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m memSubs) MarkNotified(ctx context.Context, id uint, at time.Time) error {
	s := m.st.subs[id]
	s.LastNotifiedAt = &at
	m.st.subs[id] = s
	return nil
}

type fakeERP struct {
	rows      map[string][]string
	queryErr  error
	records   map[string]string
	recordErr map[string]error
	gets      []string
}

func newFakeERP() *fakeERP {
	return &fakeERP{
		rows:      map[string][]string{},
		records:   map[string]string{},
		recordErr: map[string]error{},
	}
}

func (f *fakeERP) Query(ctx context.Context, q string) ([]json.RawMessage, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []json.RawMessage
	for _, r := range f.rows[q] {
		out = append(out, json.RawMessage(r))
	}
	return out, nil
}

func (f *fakeERP) GetRecord(ctx context.Context, recordType, id string, params url.Values, out interface{}) error {
	f.gets = append(f.gets, id)
	if err := f.recordErr[id]; err != nil {
		return err
	}
	raw, ok := f.records[id]
	if !ok {
		return &netsuite.APIError{StatusCode: 404, Method: "GET", URL: recordType + "/" + id}
	}
	return json.Unmarshal([]byte(raw), out)
}

type fakeLogs struct {
	logs   map[uint]SyncLog
	nextID uint
}

func newFakeLogs() *fakeLogs { return &fakeLogs{logs: map[uint]SyncLog{}} }

func (f *fakeLogs) Create(ctx context.Context, l *SyncLog) error {
	f.nextID++
	l.ID = f.nextID
	f.logs[l.ID] = *l
	return nil
}

func (f *fakeLogs) Update(ctx context.Context, l *SyncLog) error {
	f.logs[l.ID] = *l
	return nil
}

func (f *fakeLogs) FindByID(ctx context.Context, id uint) (*SyncLog, error) {
	l, ok := f.logs[id]
	if !ok {
		return nil, ErrLogNotFound
	}
	return &l, nil
}

func (f *fakeLogs) List(ctx context.Context, filter LogFilter) ([]SyncLog, int64, error) {
	var out []SyncLog
	for id := uint(1); id <= f.nextID; id++ {
		l, ok := f.logs[id]
		if !ok || (filter.Type != "" && l.Type != filter.Type) {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

type triggerCall struct {
	itemID   int64
	old, new float64
}

type fakeTrigger struct {
	calls []triggerCall
}

func (f *fakeTrigger) Evaluate(ctx context.Context, store notification.SubscriptionStore, it *item.Item, oldQty, newQty float64) (int, error) {
	f.calls = append(f.calls, triggerCall{it.ID, oldQty, newQty})
	if oldQty == 0 && newQty > 0 {
		return 1, nil
	}
	return 0, nil
}

type fakeTeams struct {
	posts []string
}

func (f *fakeTeams) Post(ctx context.Context, category string, card teams.Card) error {
	f.posts = append(f.posts, category)
	return nil
}

type fakeLocker struct{ err error }

func (f fakeLocker) Acquire(context.Context, string) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	return func() {}, nil
}

type fixture struct {
	svc     *SyncServiceImpl
	erp     *fakeERP
	db      *memDB
	logs    *fakeLogs
	trigger *fakeTrigger
	teams   *fakeTeams
}

func newFixture() *fixture {
	f := &fixture{
		erp:     newFakeERP(),
		db:      newMemDB(),
		logs:    newFakeLogs(),
		trigger: &fakeTrigger{},
		teams:   &fakeTeams{},
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.svc = &SyncServiceImpl{
		ERP:            f.erp,
		Stores:         f.db,
		Logs:           f.logs,
		Trigger:        f.trigger,
		Locker:         noopLocker{},
		Teams:          f.teams,
		Logger:         zap.NewNop(),
		Now:            func() time.Time { return now },
		POPolicy:       PolicyCreateOnly,
		POCommitEvery:  50,
		DealerCategory: "2",
		PhoneRegion:    "US",
	}
	return f
}

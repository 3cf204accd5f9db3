package message

import (
	"context"
	"errors"
	"testing"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/session"

	"go.uber.org/zap"
)

type memRepo struct {
	convs  map[uint]*Conversation
	msgs   []Message
	nextID uint
}

func newMemRepo() *memRepo {
	return &memRepo{convs: map[uint]*Conversation{}}
}

func (r *memRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memRepo) CreateConversation(_ context.Context, conv *Conversation) error {
	conv.ID = r.id()
	c := *conv
	r.convs[c.ID] = &c
	return nil
}

func (r *memRepo) FindConversation(_ context.Context, id uint) (*Conversation, error) {
	c, ok := r.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) ListConversations(_ context.Context, f ConversationFilter) ([]Conversation, error) {
	var out []Conversation
	for _, c := range r.convs {
		if f.AccountID != 0 && c.AccountID != f.AccountID {
			continue
		}
		if f.Role != "" && c.CounterpartRole != f.Role {
			continue
		}
		if f.UserID != 0 && c.CounterpartUserID != nil && *c.CounterpartUserID != f.UserID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memRepo) Claim(_ context.Context, id uint, userID uint) (bool, error) {
	c := r.convs[id]
	if c.CounterpartUserID != nil {
		return false, nil
	}
	c.CounterpartUserID = &userID
	return true, nil
}

func (r *memRepo) CreateMessage(_ context.Context, msg *Message) error {
	msg.ID = r.id()
	msg.CreatedAt = time.Now()
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *memRepo) ListMessages(_ context.Context, convID uint) ([]Message, error) {
	var out []Message
	for _, m := range r.msgs {
		if m.ConversationID == convID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memRepo) MarkRead(_ context.Context, convID uint, roles []models.UserType) (int64, error) {
	var n int64
	for i := range r.msgs {
		m := &r.msgs[i]
		if m.ConversationID != convID || m.IsRead {
			continue
		}
		for _, role := range roles {
			if m.SenderRole == role {
				m.IsRead = true
				n++
			}
		}
	}
	return n, nil
}

type fakeUsers struct{}

func (fakeUsers) FindByID(_ context.Context, id uint) (*account.User, error) {
	return &account.User{ID: id, Email: "staff@corp.com"}, nil
}

type fakeContacts struct{}

func (fakeContacts) ListContacts(context.Context, int64, models.AccountType) ([]account.AccountContact, error) {
	return []account.AccountContact{{User: account.User{Email: "ops@acme.com", IsActive: true}}}, nil
}

type fakeMail struct {
	to [][]string
}

func (f *fakeMail) SendTemplate(_ context.Context, to []string, _ string, _ map[string]string) error {
	f.to = append(f.to, to)
	return nil
}

func newService() (*MessageServiceImpl, *memRepo, *fakeMail) {
	repo := newMemRepo()
	mail := &fakeMail{}
	return &MessageServiceImpl{
		Repo:     repo,
		Hub:      NewHub(),
		Users:    fakeUsers{},
		Contacts: fakeContacts{},
		Email:    mail,
		Logger:   zap.NewNop(),
	}, repo, mail
}

func as(s *session.Session) context.Context {
	return session.WithContext(context.Background(), s)
}

var (
	vendor   = &session.Session{UserID: 1, Type: models.UserTypeVendor, AccountIDs: []int64{100}, ActiveAccountID: 100}
	alice    = &session.Session{UserID: 2, Type: models.UserTypeAccounting, Name: "Alice"}
	bob      = &session.Session{UserID: 3, Type: models.UserTypeAccounting, Name: "Bob"}
	buyer    = &session.Session{UserID: 4, Type: models.UserTypeBuyer}
	outsider = &session.Session{UserID: 5, Type: models.UserTypeVendor, AccountIDs: []int64{200}, ActiveAccountID: 200}
)

func start(t *testing.T, svc *MessageServiceImpl) uint {
	t.Helper()
	detail, err := svc.Start(as(vendor), StartRequest{Role: models.UserTypeAccounting, Subject: "Invoice 42", Body: "hello"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return detail.Conversation.ID
}

func TestStartRequiresVendor(t *testing.T) {
	svc, _, _ := newService()
	_, err := svc.Start(as(alice), StartRequest{Role: models.UserTypeBuyer, Body: "x"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	_, err = svc.Start(as(vendor), StartRequest{Role: models.UserTypeDealer, Body: "x"})
	if !errors.Is(err, ErrBadRole) {
		t.Errorf("expected ErrBadRole, got %v", err)
	}
}

func TestFirstReplyClaimsConversation(t *testing.T) {
	svc, repo, _ := newService()
	id := start(t, svc)

	if _, err := svc.Send(as(alice), id, "on it"); err != nil {
		t.Fatalf("Send(alice) error = %v", err)
	}
	if got := repo.convs[id].CounterpartUserID; got == nil || *got != alice.UserID {
		t.Fatalf("CounterpartUserID = %v, want %d", got, alice.UserID)
	}

	if _, err := svc.Send(as(bob), id, "me too"); !errors.Is(err, ErrClaimed) {
		t.Errorf("Send(bob) error = %v, want ErrClaimed", err)
	}
	if _, err := svc.Send(as(buyer), id, "wrong role"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Send(buyer) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Send(as(outsider), id, "not mine"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Send(outsider) error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Send(as(alice), id, "follow up"); err != nil {
		t.Errorf("Send(alice) again error = %v", err)
	}
}

func TestClaimedConversationHiddenFromOtherStaff(t *testing.T) {
	svc, _, _ := newService()
	id := start(t, svc)

	convs, _ := svc.List(as(bob))
	if len(convs) != 1 {
		t.Fatalf("unclaimed conversation should be visible to bob, got %d", len(convs))
	}

	if _, err := svc.Send(as(alice), id, "mine"); err != nil {
		t.Fatal(err)
	}
	convs, _ = svc.List(as(bob))
	if len(convs) != 0 {
		t.Errorf("claimed conversation still listed for bob: %+v", convs)
	}
	if _, err := svc.Get(as(bob), id); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get(bob) error = %v, want ErrForbidden", err)
	}
	convs, _ = svc.List(as(buyer))
	if len(convs) != 0 {
		t.Errorf("buyer should not see accounting conversations, got %d", len(convs))
	}
}

func TestMarkReadOnlyTouchesOtherSide(t *testing.T) {
	svc, repo, _ := newService()
	id := start(t, svc)
	if _, err := svc.Send(as(alice), id, "reply 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Send(as(alice), id, "reply 2"); err != nil {
		t.Fatal(err)
	}

	n, err := svc.MarkRead(as(vendor), id)
	if err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	if n != 2 {
		t.Errorf("MarkRead() = %d, want 2", n)
	}
	for _, m := range repo.msgs {
		if m.SenderRole == models.UserTypeVendor && m.IsRead {
			t.Errorf("vendor's own message %d marked read", m.ID)
		}
	}

	n, _ = svc.MarkRead(as(alice), id)
	if n != 1 {
		t.Errorf("MarkRead(alice) = %d, want 1", n)
	}
}

func TestSendNotifiesAndPublishes(t *testing.T) {
	svc, _, mail := newService()
	id := start(t, svc)

	feed, unsubscribe := svc.Hub.Subscribe(id)
	defer unsubscribe()

	if _, err := svc.Send(as(alice), id, "hi"); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-feed:
		if msg.Body != "hi" || msg.SenderRole != models.UserTypeAccounting {
			t.Errorf("published %+v", msg)
		}
	default:
		t.Fatal("expected message on the live feed")
	}
	if len(mail.to) != 1 || mail.to[0][0] != "ops@acme.com" {
		t.Errorf("vendor notification = %v", mail.to)
	}

	if _, err := svc.Send(as(vendor), id, "thanks"); err != nil {
		t.Fatal(err)
	}
	if len(mail.to) != 2 || mail.to[1][0] != "staff@corp.com" {
		t.Errorf("staff notification = %v", mail.to)
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	svc, _, _ := newService()
	id := start(t, svc)
	if _, err := svc.Send(as(vendor), id, "   "); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("expected ErrEmptyBody, got %v", err)
	}
}

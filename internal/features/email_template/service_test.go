package email_template

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type memRepo struct {
	byName map[string]*EmailTemplate
	nextID uint
}

func newMemRepo() *memRepo { return &memRepo{byName: map[string]*EmailTemplate{}} }

func (m *memRepo) Create(_ context.Context, t *EmailTemplate) error {
	m.nextID++
	t.ID = m.nextID
	m.byName[t.Name] = t
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uint) (*EmailTemplate, error) {
	for _, t := range m.byName {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetByName(_ context.Context, name string) (*EmailTemplate, error) {
	if t, ok := m.byName[name]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(context.Context) ([]EmailTemplate, error) { return nil, nil }
func (m *memRepo) Update(context.Context, *EmailTemplate) error  { return nil }
func (m *memRepo) Delete(context.Context, uint) error            { return nil }

type captureEmail struct {
	to            []string
	subject, body string
}

func (c *captureEmail) SendEmail(_ context.Context, to []string, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	return nil
}

func TestRender(t *testing.T) {
	got := Render("Hi {{name}}, code {{code}} {{missing}}", map[string]string{"name": "Ann", "code": "123456"})
	if got != "Hi Ann, code 123456 {{missing}}" {
		t.Errorf("Render() = %q", got)
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	svc := NewEmailTemplateService(repo, &captureEmail{}, zap.NewNop())

	if err := svc.SeedDefaults(context.Background()); err != nil {
		t.Fatal(err)
	}
	count := len(repo.byName)
	if err := svc.SeedDefaults(context.Background()); err != nil {
		t.Fatal(err)
	}
	if count != len(Defaults) || len(repo.byName) != count {
		t.Errorf("templates = %d, want %d", len(repo.byName), len(Defaults))
	}
}

func TestSendTemplate(t *testing.T) {
	repo := newMemRepo()
	mail := &captureEmail{}
	svc := NewEmailTemplateService(repo, mail, zap.NewNop())
	_ = svc.SeedDefaults(context.Background())

	err := svc.SendTemplate(context.Background(), []string{"d@x.com"}, TemplateOTPCode, map[string]string{"code": "424242", "minutes": "10"})
	if err != nil {
		t.Fatal(err)
	}
	if mail.subject != "Your login code: 424242" || mail.to[0] != "d@x.com" {
		t.Errorf("sent %+v", mail)
	}

	repo.byName[TemplateOTPCode].IsActive = false
	err = svc.SendTemplate(context.Background(), []string{"d@x.com"}, TemplateOTPCode, nil)
	if !errors.Is(err, ErrInactive) {
		t.Errorf("err = %v, want ErrInactive", err)
	}
}

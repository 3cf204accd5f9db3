package message

import (
	"context"
	"errors"
	"strings"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/session"

	"go.uber.org/zap"
)

var (
	ErrForbidden = errors.New("forbidden")
	ErrClaimed   = errors.New("conversation is handled by another user")
	ErrEmptyBody = errors.New("message body is empty")
	ErrBadRole   = errors.New("counterpart role must be accounting or buyer")
)

type Directory interface {
	FindByID(ctx context.Context, id uint) (*account.User, error)
}

type Contacts interface {
	ListContacts(ctx context.Context, id int64, accountType models.AccountType) ([]account.AccountContact, error)
}

type TemplateSender interface {
	SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error
}

type MessageService interface {
	Start(ctx context.Context, req StartRequest) (*ConversationDetail, error)
	List(ctx context.Context) ([]Conversation, error)
	Get(ctx context.Context, id uint) (*ConversationDetail, error)
	Authorize(ctx context.Context, id uint) (*Conversation, error)
	Send(ctx context.Context, id uint, body string) (*Message, error)
	MarkRead(ctx context.Context, id uint) (int64, error)
}

type MessageServiceImpl struct {
	Repo     MessageRepository
	Hub      *Hub
	Users    Directory
	Contacts Contacts
	Email    TemplateSender
	Logger   *zap.Logger
}

func NewMessageService(
	repo MessageRepository,
	hub *Hub,
	users account.UserRepository,
	accounts account.AccountRepository,
	templates email_template.EmailTemplateService,
	logger *zap.Logger,
) MessageService {
	return &MessageServiceImpl{
		Repo:     repo,
		Hub:      hub,
		Users:    users,
		Contacts: accounts,
		Email:    templates,
		Logger:   logger,
	}
}

// Start opens a conversation from the vendor's active account toward one role.
func (s *MessageServiceImpl) Start(ctx context.Context, req StartRequest) (*ConversationDetail, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Type != models.UserTypeVendor || sess.ActiveAccountID == 0 {
		return nil, ErrForbidden
	}
	if req.Role != models.UserTypeAccounting && req.Role != models.UserTypeBuyer {
		return nil, ErrBadRole
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, ErrEmptyBody
	}

	conv := &Conversation{
		AccountID:       sess.ActiveAccountID,
		CounterpartRole: req.Role,
		Subject:         strings.TrimSpace(req.Subject),
		CreatedBy:       sess.UserID,
	}
	if err := s.Repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	msg := &Message{
		ConversationID: conv.ID,
		SenderUserID:   sess.UserID,
		SenderRole:     sess.Type,
		Body:           req.Body,
	}
	if err := s.Repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return &ConversationDetail{Conversation: *conv, Messages: []Message{*msg}}, nil
}

func (s *MessageServiceImpl) List(ctx context.Context) ([]Conversation, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	switch sess.Type {
	case models.UserTypeVendor:
		return s.Repo.ListConversations(ctx, ConversationFilter{AccountID: sess.ActiveAccountID})
	case models.UserTypeAccounting, models.UserTypeBuyer:
		return s.Repo.ListConversations(ctx, ConversationFilter{Role: sess.Type, UserID: sess.UserID})
	case models.UserTypeAdmin:
		return s.Repo.ListConversations(ctx, ConversationFilter{})
	}
	return nil, ErrForbidden
}

// Authorize loads the conversation if the session may read it.
func (s *MessageServiceImpl) Authorize(ctx context.Context, id uint) (*Conversation, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	conv, err := s.Repo.FindConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(sess, conv) {
		return nil, ErrForbidden
	}
	return conv, nil
}

func canRead(sess *session.Session, conv *Conversation) bool {
	switch sess.Type {
	case models.UserTypeAdmin:
		return true
	case models.UserTypeVendor:
		return sess.HasAccount(conv.AccountID)
	default:
		if sess.Type != conv.CounterpartRole {
			return false
		}
		return conv.CounterpartUserID == nil || *conv.CounterpartUserID == sess.UserID
	}
}

func (s *MessageServiceImpl) Get(ctx context.Context, id uint) (*ConversationDetail, error) {
	conv, err := s.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.Repo.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ConversationDetail{Conversation: *conv, Messages: msgs}, nil
}

// Send appends a message. A counterpart user replying to an unclaimed
// conversation claims it; once claimed, other users of that role are refused.
func (s *MessageServiceImpl) Send(ctx context.Context, id uint, body string) (*Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	conv, err := s.Repo.FindConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	switch {
	case sess.Type == models.UserTypeVendor:
		if !sess.HasAccount(conv.AccountID) {
			return nil, ErrForbidden
		}
	case sess.Type == conv.CounterpartRole:
		if conv.CounterpartUserID == nil {
			claimed, err := s.Repo.Claim(ctx, conv.ID, sess.UserID)
			if err != nil {
				return nil, err
			}
			if !claimed {
				return nil, ErrClaimed
			}
			uid := sess.UserID
			conv.CounterpartUserID = &uid
		} else if *conv.CounterpartUserID != sess.UserID {
			return nil, ErrClaimed
		}
	default:
		return nil, ErrForbidden
	}

	msg := &Message{
		ConversationID: conv.ID,
		SenderUserID:   sess.UserID,
		SenderRole:     sess.Type,
		Body:           body,
	}
	if err := s.Repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.Hub.Publish(*msg)
	s.notify(ctx, sess, conv, msg)
	return msg, nil
}

func (s *MessageServiceImpl) notify(ctx context.Context, sess *session.Session, conv *Conversation, msg *Message) {
	var to []string
	if sess.Type == models.UserTypeVendor {
		if conv.CounterpartUserID == nil {
			return
		}
		u, err := s.Users.FindByID(ctx, *conv.CounterpartUserID)
		if err != nil {
			return
		}
		to = append(to, u.Email)
	} else {
		contacts, err := s.Contacts.ListContacts(ctx, conv.AccountID, models.AccountTypeVendor)
		if err != nil {
			return
		}
		for _, c := range contacts {
			if c.IsActive {
				to = append(to, c.Email)
			}
		}
	}
	if len(to) == 0 {
		return
	}

	sender := sess.Name
	if sender == "" {
		sender = sess.Email
	}
	vars := map[string]string{"subject": conv.Subject, "sender": sender, "body": msg.Body}
	if err := s.Email.SendTemplate(ctx, to, email_template.TemplateMessageReceived, vars); err != nil {
		s.Logger.Warn("Failed to send message notification", zap.Uint("conversation_id", conv.ID), zap.Error(err))
	}
}

// MarkRead flags every message sent by the other side as read.
func (s *MessageServiceImpl) MarkRead(ctx context.Context, id uint) (int64, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return 0, err
	}
	conv, err := s.Authorize(ctx, id)
	if err != nil {
		return 0, err
	}
	switch sess.Type {
	case models.UserTypeVendor:
		return s.Repo.MarkRead(ctx, conv.ID, []models.UserType{conv.CounterpartRole})
	case conv.CounterpartRole:
		return s.Repo.MarkRead(ctx, conv.ID, []models.UserType{models.UserTypeVendor})
	}
	return 0, ErrForbidden
}

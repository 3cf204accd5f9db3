package message

import (
	"errors"
	"time"

	"supplier-portal/internal/common/api"
	"supplier-portal/internal/session"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const conversationLocal = "conversation_id"

type MessageController struct {
	Service MessageService
	Hub     *Hub
	Logger  *zap.Logger
}

func NewMessageController(service MessageService, hub *Hub, logger *zap.Logger) *MessageController {
	return &MessageController{Service: service, Hub: hub, Logger: logger}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrClaimed):
		return fiber.StatusConflict
	case errors.Is(err, ErrEmptyBody), errors.Is(err, ErrBadRole):
		return fiber.StatusBadRequest
	case errors.Is(err, session.ErrNoSession):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func conversationID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid ID format")
	}
	return uint(id), nil
}

// Start godoc
// @Summary Open a conversation with accounting or buyers
// @Tags messages
// @Accept json
// @Produce json
// @Param body body StartRequest true "Conversation"
// @Success 201 {object} ConversationDetail
// @Router /api/messages [post]
func (ctrl *MessageController) Start(c *fiber.Ctx) error {
	var req StartRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	detail, err := ctrl.Service.Start(c.UserContext(), req)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": detail})
}

// List godoc
// @Summary List conversations visible to the caller
// @Tags messages
// @Produce json
// @Router /api/messages [get]
func (ctrl *MessageController) List(c *fiber.Ctx) error {
	convs, err := ctrl.Service.List(c.UserContext())
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": convs})
}

func (ctrl *MessageController) Get(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	detail, err := ctrl.Service.Get(c.UserContext(), id)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"data": detail})
}

// Send godoc
// @Summary Post a message to a conversation
// @Description The first accounting or buyer reply claims the conversation.
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param body body SendRequest true "Message"
// @Success 201 {object} Message
// @Failure 409 {object} map[string]interface{}
// @Router /api/messages/{id} [post]
func (ctrl *MessageController) Send(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	var req SendRequest
	if err := api.ParseAndValidate(c, &req); err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	msg, err := ctrl.Service.Send(c.UserContext(), id, req.Body)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": msg})
}

func (ctrl *MessageController) MarkRead(c *fiber.Ctx) error {
	id, err := conversationID(c)
	if err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	n, err := ctrl.Service.MarkRead(c.UserContext(), id)
	if err != nil {
		return api.Error(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Messages marked as read", "updated": n})
}

// Upgrade authorizes the caller for the conversation before the websocket
// handshake, since the socket handler has no access to the request session.
func (ctrl *MessageController) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	id, err := conversationID(c)
	if err != nil {
		return api.Error(c, fiber.StatusBadRequest, err)
	}
	if _, err := ctrl.Service.Authorize(c.UserContext(), id); err != nil {
		return api.Error(c, statusFor(err), err)
	}
	c.Locals(conversationLocal, id)
	return c.Next()
}

// Stream pushes new messages of one conversation as JSON frames until the
// client goes away.
func (ctrl *MessageController) Stream(conn *websocket.Conn) {
	id, ok := conn.Locals(conversationLocal).(uint)
	if !ok {
		_ = conn.Close()
		return
	}
	feed, unsubscribe := ctrl.Hub.Subscribe(id)
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-feed:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				ctrl.Logger.Debug("Websocket write failed", zap.Uint("conversation_id", id), zap.Error(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

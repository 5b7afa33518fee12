package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"postdrop/backend/internal/domain"
	"postdrop/backend/internal/service"
)

// Handler 聚合邮箱与邮件处理逻辑。
type Handler struct {
	mailboxes *service.MailboxService
	messages  *service.MessageService
	log       *zap.Logger
}

type createMailboxRequest struct {
	LocalPart string `json:"localPart"`
	Domain    string `json:"domain"`
}

// mailboxResponse 是邮箱的对外投影，不含上游会话凭证。
type mailboxResponse struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	LocalPart string `json:"localPart"`
	Domain    string `json:"domain"`
	CreatedAt string `json:"createdAt"`
	ExpiresAt string `json:"expiresAt"`
}

type messageResponse struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Preview string `json:"preview"`
	Date    string `json:"date"`
	Body    string `json:"body,omitempty"`
}

func toMailboxResponse(m *domain.Mailbox) mailboxResponse {
	return mailboxResponse{
		ID:        m.ID,
		Address:   m.Address,
		LocalPart: m.LocalPart,
		Domain:    m.Domain,
		CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		ExpiresAt: m.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:      m.ID,
		From:    m.From,
		Subject: m.Subject,
		Preview: m.Preview,
		Date:    m.Date,
		Body:    m.Body,
	}
}

// createMailbox 创建新邮箱
func (h *Handler) createMailbox(c *gin.Context) {
	var req createMailboxRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, MsgInvalidRequest)
			return
		}
	}

	mailbox, err := h.mailboxes.Create(c.Request.Context(), service.CreateMailboxInput{
		OwnerID:   c.GetString("userID"),
		LocalPart: req.LocalPart,
		Domain:    req.Domain,
	})
	if err != nil {
		h.log.Error("failed to create mailbox", zap.Error(err))
		InternalError(c, MsgMailboxCreateFailed)
		return
	}

	Created(c, toMailboxResponse(mailbox))
}

// listMailboxes 返回当前用户的全部邮箱
func (h *Handler) listMailboxes(c *gin.Context) {
	mailboxes := h.mailboxes.List(c.GetString("userID"))

	out := make([]mailboxResponse, 0, len(mailboxes))
	for i := range mailboxes {
		out = append(out, toMailboxResponse(&mailboxes[i]))
	}

	Success(c, out)
}

// getMailbox 返回单个邮箱详情
func (h *Handler) getMailbox(c *gin.Context) {
	mailbox, err := h.mailboxes.Get(c.Param("id"), c.GetString("userID"))
	if err != nil {
		NotFound(c, MsgMailboxNotFound)
		return
	}

	Success(c, toMailboxResponse(mailbox))
}

// deleteMailbox 删除邮箱并释放上游会话
func (h *Handler) deleteMailbox(c *gin.Context) {
	err := h.mailboxes.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrMailboxNotFound) {
			NotFound(c, MsgMailboxNotFound)
			return
		}
		h.log.Error("failed to delete mailbox", zap.Error(err))
		InternalError(c, MsgMailboxDeleteFailed)
		return
	}

	NoContent(c)
}

// listMessages 返回邮箱内的邮件概要列表
func (h *Handler) listMessages(c *gin.Context) {
	messages, err := h.messages.List(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrMailboxNotFound) {
			NotFound(c, MsgMailboxNotFound)
			return
		}
		h.log.Error("failed to list messages", zap.Error(err))
		InternalError(c, MsgMessageListFailed)
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageResponse(&messages[i]))
	}

	Success(c, out)
}

// getMessage 返回单封邮件的完整内容
func (h *Handler) getMessage(c *gin.Context) {
	message, err := h.messages.Get(c.Request.Context(), c.Param("id"), c.Param("messageId"), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrMailboxNotFound) {
			NotFound(c, MsgMailboxNotFound)
			return
		}
		h.log.Error("failed to get message", zap.Error(err))
		InternalError(c, MsgMessageGetFailed)
		return
	}

	Success(c, toMessageResponse(message))
}

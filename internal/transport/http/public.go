package httptransport

import (
	"github.com/gin-gonic/gin"

	"postdrop/backend/internal/service"
)

// PublicHandler 处理无需认证的公开 API
type PublicHandler struct {
	mailboxes *service.MailboxService
}

// NewPublicHandler 创建公开 API 处理器
func NewPublicHandler(mailboxes *service.MailboxService) *PublicHandler {
	return &PublicHandler{mailboxes: mailboxes}
}

// GetAvailableDomains 返回可用域名列表
func (h *PublicHandler) GetAvailableDomains(c *gin.Context) {
	Success(c, gin.H{"domains": h.mailboxes.Domains()})
}

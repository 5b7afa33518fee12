package domain

import (
	"time"
)

// Mailbox 表示一个由上游服务商托管的一次性邮箱。
//
// SessionToken 是上游服务商签发的会话凭证，后续对该邮箱的所有
// 上游操作都依赖它；该字段只在创建时写入一次，且绝不通过 API 返回。
type Mailbox struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Address      string    `json:"address"`
	LocalPart    string    `json:"localPart"`
	Domain       string    `json:"domain"`
	SessionToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired 判断邮箱在给定时刻是否已过期。
func (m *Mailbox) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}

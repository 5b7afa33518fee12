// Package provider 定义与上游一次性邮箱服务商交互的能力接口。
//
// 接口按能力建模（分配地址、认领地址、拉取邮件、释放会话），
// 以便在不触碰业务层的前提下替换具体服务商实现。
package provider

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable 上游传输失败、非成功状态码或调用超时
	ErrUnavailable = errors.New("provider unavailable")
	// ErrProtocol 上游有响应但响应体不符合预期结构
	ErrProtocol = errors.New("provider protocol error")
)

// Mailbox 是上游分配邮箱地址时返回的结果。
// SessionToken 是后续所有会话操作的凭证。
type Mailbox struct {
	Address      string
	LocalPart    string
	Domain       string
	SessionToken string
	Timestamp    int64
}

// Message 是上游返回的邮件原始投影。
type Message struct {
	ID      string
	From    string
	Subject string
	Preview string
	Date    string
	Body    string
	Read    bool
}

// Client 是上游服务商的能力接口。
//
// 所有操作都是单次网络调用，不做内部重试；重试策略（如需要）
// 应由调用方包装实现。每个调用都受 ctx 与客户端超时约束。
type Client interface {
	// AllocateAddress 申请一个随机分配的邮箱地址及其会话凭证。
	AllocateAddress(ctx context.Context) (*Mailbox, error)

	// ClaimAddress 申请指定前缀与域名的邮箱地址。
	// 域名白名单校验属于业务层职责，此处不做。
	ClaimAddress(ctx context.Context, localPart, domain string) (*Mailbox, error)

	// ListMessages 拉取会话内的全部邮件，空邮箱返回空切片而非错误。
	ListMessages(ctx context.Context, sessionToken string) ([]Message, error)

	// FetchMessage 拉取单封邮件的完整内容。
	// 上游无法可靠区分"不存在"与其他失败，一律返回 ErrUnavailable。
	FetchMessage(ctx context.Context, sessionToken, messageID string) (*Message, error)

	// ReleaseSession 通知上游释放会话，尽力而为。
	ReleaseSession(ctx context.Context, sessionToken string) error
}

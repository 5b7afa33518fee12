package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"postdrop/backend/internal/domain"
	"postdrop/backend/internal/monitoring"
	"postdrop/backend/internal/provider"
	"postdrop/backend/internal/storage"
)

var (
	// ErrMailboxNotFound 邮箱不存在或不属于当前调用方
	ErrMailboxNotFound = errors.New("mailbox not found")
	// ErrDomainNotAllowed 域名不在白名单内。当前创建流程会静默回退到
	// 默认域名，此错误保留给未来的严格校验模式。
	ErrDomainNotAllowed = errors.New("domain not allowed")
	// ErrMailboxCreateFailed 上游分配邮箱失败
	ErrMailboxCreateFailed = errors.New("mailbox create failed")
	// ErrMessageFetchFailed 上游拉取邮件失败
	ErrMessageFetchFailed = errors.New("message fetch failed")
)

// MessageListCache 邮件列表缓存能力接口，本地与 Redis 实现均满足。
type MessageListCache interface {
	Get(ctx context.Context, sessionToken string) ([]domain.Message, bool)
	Set(ctx context.Context, sessionToken string, messages []domain.Message)
	Invalidate(ctx context.Context, sessionToken string)
}

// MailboxService 封装邮箱生命周期业务操作。
type MailboxService struct {
	directory     storage.MailboxDirectory
	upstream      provider.Client
	cache         MessageListCache
	domains       []string
	domainSet     map[string]struct{}
	defaultDomain string
	ttl           time.Duration
	log           *zap.Logger
	metrics       *monitoring.Metrics
}

// MailboxServiceOptions 创建邮箱服务所需的依赖与配置。
type MailboxServiceOptions struct {
	Directory     storage.MailboxDirectory
	Upstream      provider.Client
	Cache         MessageListCache // 可为 nil
	Domains       []string
	DefaultDomain string
	TTL           time.Duration
	Logger        *zap.Logger
	Metrics       *monitoring.Metrics // 可为 nil
}

// NewMailboxService 创建邮箱业务服务。
func NewMailboxService(opts MailboxServiceOptions) *MailboxService {
	domainSet := make(map[string]struct{}, len(opts.Domains))
	for _, d := range opts.Domains {
		domainSet[strings.ToLower(d)] = struct{}{}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &MailboxService{
		directory:     opts.Directory,
		upstream:      opts.Upstream,
		cache:         opts.Cache,
		domains:       opts.Domains,
		domainSet:     domainSet,
		defaultDomain: opts.DefaultDomain,
		ttl:           opts.TTL,
		log:           log,
		metrics:       opts.Metrics,
	}
}

// CreateMailboxInput 定义创建邮箱所需的输入。
type CreateMailboxInput struct {
	OwnerID   string
	LocalPart string
	Domain    string
}

// Create 在上游申请地址并登记到目录。
//
// 请求的域名不在白名单时静默回退到默认域名，而不是报错，
// 调用方总能拿到一个可用邮箱。
func (s *MailboxService) Create(ctx context.Context, input CreateMailboxInput) (*domain.Mailbox, error) {
	selected := s.pickDomain(input.Domain)

	var (
		allocated *provider.Mailbox
		err       error
	)
	if input.LocalPart == "" && input.Domain == "" {
		// 无定制需求时让上游随机分配
		allocated, err = s.upstream.AllocateAddress(ctx)
	} else {
		localPart := strings.ToLower(input.LocalPart)
		if localPart == "" {
			localPart = randomLocalPart()
		}
		allocated, err = s.upstream.ClaimAddress(ctx, localPart, selected)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMailboxCreateFailed, err)
	}

	now := time.Now().UTC()
	mailbox := &domain.Mailbox{
		ID:           uuid.NewString(),
		OwnerID:      input.OwnerID,
		Address:      allocated.Address,
		LocalPart:    allocated.LocalPart,
		Domain:       allocated.Domain,
		SessionToken: allocated.SessionToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if mailbox.Domain == "" {
		mailbox.Domain = selected
	}

	if err := s.directory.SaveMailbox(mailbox); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMailboxCreateFailed, err)
	}

	if s.metrics != nil {
		s.metrics.RecordMailboxCreated()
	}

	s.log.Info("mailbox created",
		zap.String("mailbox_id", mailbox.ID),
		zap.String("address", mailbox.Address),
		zap.String("owner_id", mailbox.OwnerID),
	)

	return mailbox, nil
}

// Get 获取指定调用方名下的邮箱。
// 归属不匹配与不存在不可区分，统一返回 ErrMailboxNotFound。
func (s *MailboxService) Get(id, ownerID string) (*domain.Mailbox, error) {
	mailbox, err := s.directory.GetMailbox(id, ownerID)
	if err != nil {
		return nil, ErrMailboxNotFound
	}
	return mailbox, nil
}

// List 返回调用方名下的全部邮箱，按创建顺序排列。
func (s *MailboxService) List(ownerID string) []domain.Mailbox {
	return s.directory.ListMailboxesByOwner(ownerID)
}

// Delete 删除邮箱并尽力释放上游会话。
//
// 上游释放失败只记录日志，本地删除无条件执行，
// 避免上游故障导致邮箱残留。
func (s *MailboxService) Delete(ctx context.Context, id, ownerID string) error {
	mailbox, err := s.directory.GetMailbox(id, ownerID)
	if err != nil {
		return ErrMailboxNotFound
	}

	if err := s.upstream.ReleaseSession(ctx, mailbox.SessionToken); err != nil {
		s.log.Warn("failed to release upstream session",
			zap.String("mailbox_id", id),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordError("release_failed", "provider")
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, mailbox.SessionToken)
	}

	s.directory.RemoveMailbox(id, ownerID)

	if s.metrics != nil {
		s.metrics.RecordMailboxDeleted()
	}

	s.log.Info("mailbox deleted",
		zap.String("mailbox_id", id),
		zap.String("owner_id", ownerID),
	)

	return nil
}

// Domains 返回可用域名列表的副本。
func (s *MailboxService) Domains() []string {
	out := make([]string, len(s.domains))
	copy(out, s.domains)
	return out
}

// DeleteExpired 清理所有过期邮箱，返回清理数量。
func (s *MailboxService) DeleteExpired() (int, error) {
	count, err := s.directory.DeleteExpiredMailboxes()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		if s.metrics != nil {
			s.metrics.RecordMailboxesExpired(count)
		}
		s.log.Info("expired mailboxes removed", zap.Int("count", count))
	}
	return count, nil
}

// pickDomain 挑选域名，不在白名单时回退到默认域名。
func (s *MailboxService) pickDomain(requested string) string {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested == "" {
		return s.defaultDomain
	}
	if _, ok := s.domainSet[requested]; ok {
		return requested
	}
	return s.defaultDomain
}

// randomLocalPart 生成随机邮箱前缀。
func randomLocalPart() string {
	base := strings.ToLower(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return base[:12]
}

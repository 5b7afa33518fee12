package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"postdrop/backend/internal/domain"
	"postdrop/backend/internal/provider"
	"postdrop/backend/internal/storage"
)

// MessageService 封装邮件读取业务操作。
//
// 邮件内容不落地，每次读取都穿透到上游会话；
// 可选的短 TTL 列表缓存用来吸收前端轮询。
type MessageService struct {
	directory storage.MailboxDirectory
	upstream  provider.Client
	cache     MessageListCache // 可为 nil
	log       *zap.Logger
}

// NewMessageService 创建邮件业务服务。
func NewMessageService(directory storage.MailboxDirectory, upstream provider.Client, cache MessageListCache, log *zap.Logger) *MessageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{
		directory: directory,
		upstream:  upstream,
		cache:     cache,
		log:       log,
	}
}

// List 返回邮箱内的邮件概要列表，不含正文。
func (s *MessageService) List(ctx context.Context, mailboxID, ownerID string) ([]domain.Message, error) {
	mailbox, err := s.directory.GetMailbox(mailboxID, ownerID)
	if err != nil {
		return nil, ErrMailboxNotFound
	}

	if s.cache != nil {
		if messages, ok := s.cache.Get(ctx, mailbox.SessionToken); ok {
			return messages, nil
		}
	}

	raw, err := s.upstream.ListMessages(ctx, mailbox.SessionToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessageFetchFailed, err)
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, domain.Message{
			ID:      m.ID,
			From:    m.From,
			Subject: m.Subject,
			Preview: m.Preview,
			Date:    m.Date,
		})
	}

	if s.cache != nil {
		s.cache.Set(ctx, mailbox.SessionToken, messages)
	}

	return messages, nil
}

// Get 返回单封邮件的完整内容，含正文。正文不缓存。
func (s *MessageService) Get(ctx context.Context, mailboxID, messageID, ownerID string) (*domain.Message, error) {
	mailbox, err := s.directory.GetMailbox(mailboxID, ownerID)
	if err != nil {
		return nil, ErrMailboxNotFound
	}

	raw, err := s.upstream.FetchMessage(ctx, mailbox.SessionToken, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessageFetchFailed, err)
	}

	return &domain.Message{
		ID:      raw.ID,
		From:    raw.From,
		Subject: raw.Subject,
		Preview: raw.Preview,
		Date:    raw.Date,
		Body:    raw.Body,
	}, nil
}

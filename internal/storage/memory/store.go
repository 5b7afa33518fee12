package memory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"postdrop/backend/internal/domain"
)

var (
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameExists  = errors.New("username already exists")
)

// Store 使用内存保存邮箱与用户数据，生命周期与进程一致。
//
// 邮箱状态本就是短暂的（与上游会话寿命对齐），进程重启后丢失
// 属于设计预期，因此不做持久化。所有映射由同一把读写锁保护。
type Store struct {
	mu        sync.RWMutex
	mailboxes map[string]*domain.Mailbox
	byOwner   map[string][]string // ownerID -> 按插入顺序排列的邮箱 id
	users     map[string]*domain.User
	byName    map[string]string // 小写用户名 -> userID
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		mailboxes: make(map[string]*domain.Mailbox),
		byOwner:   make(map[string][]string),
		users:     make(map[string]*domain.User),
		byName:    make(map[string]string),
	}
}

// SaveMailbox 保存邮箱记录。
//
// 不检查地址唯一性：上游释放后重发同一地址是允许的，
// 本地身份以 id 为准。id 重复说明调用方生成逻辑有问题。
func (s *Store) SaveMailbox(mailbox *domain.Mailbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.mailboxes[mailbox.ID]; ok {
		return fmt.Errorf("mailbox id %s already exists", mailbox.ID)
	}

	s.mailboxes[mailbox.ID] = mailbox
	s.byOwner[mailbox.OwnerID] = append(s.byOwner[mailbox.OwnerID], mailbox.ID)
	return nil
}

// GetMailbox 根据 ID 获取邮箱，所有者不匹配视同不存在。
func (s *Store) GetMailbox(id, ownerID string) (*domain.Mailbox, error) {
	s.mu.RLock()
	mailbox, ok := s.mailboxes[id]
	s.mu.RUnlock()

	if !ok || mailbox.OwnerID != ownerID {
		return nil, ErrMailboxNotFound
	}
	if mailbox.Expired(time.Now()) {
		// 过期记录按不存在处理，并顺手回收
		s.mu.Lock()
		s.deleteMailboxLocked(id)
		s.mu.Unlock()
		return nil, ErrMailboxNotFound
	}

	copied := *mailbox
	return &copied, nil
}

// ListMailboxesByOwner 返回指定所有者的全部邮箱快照，按插入顺序。
func (s *Store) ListMailboxesByOwner(ownerID string) []domain.Mailbox {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	ids := s.byOwner[ownerID]
	result := make([]domain.Mailbox, 0, len(ids))
	for _, id := range ids {
		mb, ok := s.mailboxes[id]
		if !ok || mb.Expired(now) {
			continue
		}
		result = append(result, *mb)
	}
	return result
}

// RemoveMailbox 删除指定邮箱，所有者不匹配时不删除。
func (s *Store) RemoveMailbox(id, ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	mailbox, ok := s.mailboxes[id]
	if !ok || mailbox.OwnerID != ownerID {
		return false
	}
	s.deleteMailboxLocked(id)
	return true
}

// DeleteExpiredMailboxes 删除所有过期的邮箱，返回删除数量。
func (s *Store) DeleteExpiredMailboxes() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := time.Now()
	for id, mb := range s.mailboxes {
		if mb.Expired(now) {
			s.deleteMailboxLocked(id)
			count++
		}
	}
	return count, nil
}

func (s *Store) deleteMailboxLocked(id string) {
	mailbox, ok := s.mailboxes[id]
	if !ok {
		return
	}
	delete(s.mailboxes, id)

	ids := s.byOwner[mailbox.OwnerID]
	for i, existing := range ids {
		if existing == id {
			s.byOwner[mailbox.OwnerID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.byOwner[mailbox.OwnerID]) == 0 {
		delete(s.byOwner, mailbox.OwnerID)
	}
}

// CreateUser 创建用户，用户名不区分大小写且必须唯一。
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Username)
	if _, ok := s.byName[key]; ok {
		return ErrUsernameExists
	}

	s.users[user.ID] = user
	s.byName[key] = user.ID
	return nil
}

// GetUserByID 根据用户 ID 获取用户。
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetUserByUsername 根据用户名获取用户（不区分大小写）。
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

// Close 关闭存储，内存实现无资源需要释放。
func (s *Store) Close() error {
	return nil
}

// Health 健康检查，内存实现恒为健康。
func (s *Store) Health() error {
	return nil
}

package storage

import (
	"postdrop/backend/internal/domain"
)

// MailboxDirectory 定义邮箱注册表的数据存取操作。
//
// 所有读写都以 (id, ownerID) 为准：所有者不匹配与记录不存在
// 在接口层面不可区分，以避免向调用方泄露他人邮箱的存在性。
type MailboxDirectory interface {
	// SaveMailbox 插入新记录；id 重复属于编程错误而非业务错误。
	SaveMailbox(mailbox *domain.Mailbox) error
	// GetMailbox 仅在所有者匹配时返回记录。
	GetMailbox(id, ownerID string) (*domain.Mailbox, error)
	// ListMailboxesByOwner 返回指定所有者的全部邮箱快照。
	ListMailboxesByOwner(ownerID string) []domain.Mailbox
	// RemoveMailbox 仅在所有者匹配时删除，返回是否实际删除。
	RemoveMailbox(id, ownerID string) bool
	// DeleteExpiredMailboxes 清理过期邮箱，返回清理数量。
	DeleteExpiredMailboxes() (int, error)
}

// UserRepository 定义用户数据存取操作。
type UserRepository interface {
	CreateUser(user *domain.User) error
	GetUserByID(id string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
}

// Store 定义完整的存储接口。
type Store interface {
	MailboxDirectory
	UserRepository

	Close() error
	Health() error
}

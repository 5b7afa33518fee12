package domain

import "time"

// User 表示一个注册用户，邮箱的所有权以用户 ID 为准。
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

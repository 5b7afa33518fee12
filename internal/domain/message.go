package domain

// Message 是上游邮件的只读投影，按稳定的对外结构重新整形。
//
// 邮件不在本地存储，也没有独立于邮箱会话凭证的生命周期；
// 每次读取都会穿透到上游服务商。
type Message struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Preview string `json:"preview"`
	Date    string `json:"date"`
	Body    string `json:"body,omitempty"`
}

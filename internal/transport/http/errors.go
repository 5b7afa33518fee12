package httptransport

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest = "请求参数格式错误"

	// 认证相关
	MsgAuthRequired       = "需要登录认证"
	MsgInvalidCredentials = "用户名或密码错误"
	MsgTokenInvalid       = "无效的访问令牌"

	// 邮箱相关
	MsgMailboxCreateFailed = "创建邮箱失败，上游服务暂不可用"
	MsgMailboxNotFound     = "邮箱不存在"
	MsgMailboxDeleteFailed = "删除邮箱失败"

	// 邮件相关
	MsgMessageListFailed = "获取邮件列表失败，请稍后重试"
	MsgMessageGetFailed  = "获取邮件详情失败，请稍后重试"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)

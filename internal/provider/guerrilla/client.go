// Package guerrilla 实现基于 Guerrilla Mail 公开 API 的 provider.Client。
//
// 上游是单一 HTTP 入口（ajax.php），通过查询参数 f 选择操作，
// 响应为无固定 schema 的 JSON，使用前必须显式校验。
package guerrilla

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"postdrop/backend/internal/monitoring"
	"postdrop/backend/internal/provider"
)

// 上游操作选择器
const (
	opGetEmailAddress = "get_email_address"
	opSetEmailUser    = "set_email_user"
	opGetEmailList    = "get_email_list"
	opFetchEmail      = "fetch_email"
	opForget          = "forget"
)

// Client 通过 HTTP 访问 Guerrilla Mail API。
//
// 配置（入口地址、客户端标识、IP 占位值）在构造时固定，之后只读；
// Client 不持有可变共享状态，可被并发使用。
type Client struct {
	apiURL     string
	agent      string
	clientIP   string
	httpClient *http.Client
	log        *zap.Logger
	metrics    *monitoring.Metrics
}

// Options 构造 Client 的参数。
type Options struct {
	APIURL   string
	Agent    string
	ClientIP string
	Timeout  time.Duration
	Logger   *zap.Logger
	Metrics  *monitoring.Metrics // 可选
}

// New 创建 Guerrilla Mail 客户端。
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		apiURL:   opts.APIURL,
		agent:    opts.Agent,
		clientIP: opts.ClientIP,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log:     log,
		metrics: opts.Metrics,
	}
}

// addressPayload 对应 get_email_address / set_email_user 的响应体。
type addressPayload struct {
	Email       string `json:"email"`
	EmailUser   string `json:"email_username"`
	EmailDomain string `json:"email_domain"`
	SIDToken    string `json:"sid_token"`
	Timestamp   int64  `json:"timestamp"`
}

// messagePayload 对应上游邮件对象。
type messagePayload struct {
	MailID      string `json:"mail_id"`
	MailFrom    string `json:"mail_from"`
	MailSubject string `json:"mail_subject"`
	MailPreview string `json:"mail_preview"`
	MailDate    string `json:"mail_date"`
	MailBody    string `json:"mail_body"`
	MailRead    int    `json:"mail_read"`
}

// listPayload 对应 get_email_list 的响应体。
type listPayload struct {
	List []messagePayload `json:"list"`
}

// AllocateAddress 申请随机邮箱地址。
func (c *Client) AllocateAddress(ctx context.Context) (*provider.Mailbox, error) {
	body, err := c.apiCall(ctx, opGetEmailAddress, url.Values{})
	if err != nil {
		return nil, err
	}
	return c.decodeAddress(opGetEmailAddress, body)
}

// ClaimAddress 申请指定前缀与域名的邮箱地址。
func (c *Client) ClaimAddress(ctx context.Context, localPart, domain string) (*provider.Mailbox, error) {
	params := url.Values{}
	params.Set("email_user", localPart)
	params.Set("domain", domain)

	body, err := c.apiCall(ctx, opSetEmailUser, params)
	if err != nil {
		return nil, err
	}
	return c.decodeAddress(opSetEmailUser, body)
}

// ListMessages 拉取会话内的全部邮件。
func (c *Client) ListMessages(ctx context.Context, sessionToken string) ([]provider.Message, error) {
	params := url.Values{}
	params.Set("sid_token", sessionToken)

	body, err := c.apiCall(ctx, opGetEmailList, params)
	if err != nil {
		return nil, err
	}

	var payload listPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %v", provider.ErrProtocol, opGetEmailList, err)
	}

	// 空邮箱：上游返回空 list 或省略该字段，均不是错误
	messages := make([]provider.Message, 0, len(payload.List))
	for _, m := range payload.List {
		messages = append(messages, toMessage(m))
	}
	return messages, nil
}

// FetchMessage 拉取单封邮件。
func (c *Client) FetchMessage(ctx context.Context, sessionToken, messageID string) (*provider.Message, error) {
	params := url.Values{}
	params.Set("sid_token", sessionToken)
	params.Set("email_id", messageID)

	body, err := c.apiCall(ctx, opFetchEmail, params)
	if err != nil {
		return nil, err
	}

	var payload messagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %v", provider.ErrProtocol, opFetchEmail, err)
	}

	// 上游对无效 email_id 不返回错误状态码，只返回无内容的响应；
	// 与其他拒绝情形统一按不可用处理
	if payload.MailID == "" {
		return nil, fmt.Errorf("%w: upstream rejected message id %q", provider.ErrUnavailable, messageID)
	}

	msg := toMessage(payload)
	return &msg, nil
}

// ReleaseSession 通知上游忘记该会话。
func (c *Client) ReleaseSession(ctx context.Context, sessionToken string) error {
	params := url.Values{}
	params.Set("sid_token", sessionToken)

	_, err := c.apiCall(ctx, opForget, params)
	return err
}

// apiCall 执行一次上游调用并返回原始响应体。
//
// 每次调用都附带固定的 ip 占位值与 agent 客户端标识，这是上游
// API 契约的要求。传输失败、超时与非 2xx 状态码归类为 ErrUnavailable。
func (c *Client) apiCall(ctx context.Context, op string, params url.Values) ([]byte, error) {
	params.Set("f", op)
	params.Set("ip", c.clientIP)
	params.Set("agent", c.agent)

	start := time.Now()
	body, err := c.doRequest(ctx, params)
	c.record(op, err, time.Since(start))
	return body, err
}

func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", provider.ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", c.agent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream status %d", provider.ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %v", provider.ErrUnavailable, err)
	}
	return body, nil
}

// decodeAddress 解析并校验地址分配类操作的响应。
func (c *Client) decodeAddress(op string, body []byte) (*provider.Mailbox, error) {
	var payload addressPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding %s response: %v", provider.ErrProtocol, op, err)
	}

	// 无 schema 保证，关键字段必须显式校验
	if payload.Email == "" || payload.SIDToken == "" {
		return nil, fmt.Errorf("%w: %s response missing email or sid_token", provider.ErrProtocol, op)
	}

	c.log.Debug("provider address allocated",
		zap.String("op", op),
		zap.String("email", payload.Email),
	)

	return &provider.Mailbox{
		Address:      payload.Email,
		LocalPart:    payload.EmailUser,
		Domain:       payload.EmailDomain,
		SessionToken: payload.SIDToken,
		Timestamp:    payload.Timestamp,
	}, nil
}

func (c *Client) record(op string, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordProviderRequest(op, outcome, elapsed)
}

func toMessage(m messagePayload) provider.Message {
	return provider.Message{
		ID:      m.MailID,
		From:    m.MailFrom,
		Subject: m.MailSubject,
		Preview: m.MailPreview,
		Date:    m.MailDate,
		Body:    m.MailBody,
		Read:    m.MailRead != 0,
	}
}

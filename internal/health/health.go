package health

import (
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"postdrop/backend/internal/storage"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health healthcheck.Handler
	store  storage.Store
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器。providerAPIURL 用于就绪检查，
// 上游不可达时实例不应接收流量。
func NewHealthChecker(store storage.Store, providerAPIURL string, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		store:  store,
		logger: logger,
	}

	hc.addChecks(providerAPIURL)

	return hc
}

// addChecks 添加健康检查
func (hc *HealthChecker) addChecks(providerAPIURL string) {
	// 存储检查
	hc.health.AddLivenessCheck("store", func() error {
		return hc.store.Health()
	})

	// goroutine 数量检查，泄漏时报警
	hc.health.AddLivenessCheck("goroutines", healthcheck.GoroutineCountCheck(500))

	// 上游服务商可达性检查
	if host := providerHost(providerAPIURL); host != "" {
		hc.health.AddReadinessCheck("provider", healthcheck.TCPDialCheck(host, 3*time.Second))
	}
}

// providerHost 从 API URL 提取 host:port。
func providerHost(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host += ":443"
		case "http":
			host += ":80"
		}
	}
	return host
}

// LiveHandler 返回存活检查处理器
func (hc *HealthChecker) LiveHandler() http.HandlerFunc {
	return hc.health.LiveEndpoint
}

// ReadyHandler 返回就绪检查处理器
func (hc *HealthChecker) ReadyHandler() http.HandlerFunc {
	return hc.health.ReadyEndpoint
}

// Snapshot 返回当前健康状态摘要
func (hc *HealthChecker) Snapshot() map[string]string {
	results := make(map[string]string)

	if err := hc.store.Health(); err != nil {
		results["store"] = "ERROR: " + err.Error()
	} else {
		results["store"] = "OK"
	}

	results["goroutines"] = "OK"
	if runtime.NumGoroutine() > 500 {
		results["goroutines"] = "WARN"
	}
	results["timestamp"] = time.Now().Format(time.RFC3339)

	return results
}

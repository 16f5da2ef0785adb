package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level log lines.
// The CLI registers it when --verbose is set.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log through logger (log.Default() if nil).
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger.WithPrefix("hooks")}
}

// Register installs h for every hook category.
func (h *LogHooks) Register() {
	SetIndexHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetQueryHooks(h)
}

func (h *LogHooks) OnSyncStart(_ context.Context, id string) {
	h.Logger.Debug("sync start", "id", id)
}

func (h *LogHooks) OnSyncComplete(_ context.Context, id string, versions, extracted int, d time.Duration, err error) {
	h.Logger.Debug("sync complete", "id", id, "versions", versions, "extracted", extracted, "took", d, "err", err)
}

func (h *LogHooks) OnExtractStart(_ context.Context, id, version string) {
	h.Logger.Debug("extract start", "id", id, "version", version)
}

func (h *LogHooks) OnExtractComplete(_ context.Context, id, version string, d time.Duration, err error) {
	h.Logger.Debug("extract complete", "id", id, "version", version, "took", d, "err", err)
}

func (h *LogHooks) OnInvalidate(_ context.Context, id, version string) {
	h.Logger.Debug("invalidate", "id", id, "version", version)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "size", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h *LogHooks) OnQuery(_ context.Context, id string, groups int, d time.Duration, err error) {
	h.Logger.Debug("query", "id", id, "groups", groups, "took", d, "err", err)
}

func (h *LogHooks) OnRedirect(_ context.Context, repository, path, id string) {
	h.Logger.Debug("lookup", "repository", repository, "path", path, "id", id)
}

var (
	_ IndexHooks = (*LogHooks)(nil)
	_ CacheHooks = (*LogHooks)(nil)
	_ HTTPHooks  = (*LogHooks)(nil)
	_ QueryHooks = (*LogHooks)(nil)
)

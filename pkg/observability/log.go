package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level, and failures at
// warn. It implements all three hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnAggregateStart(_ context.Context, dataset, key string) {
	h.Logger.Debug("aggregate start", "dataset", dataset, "key", key)
}

func (h *LogHooks) OnAggregateComplete(_ context.Context, dataset, key string, labels, skipped int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("aggregate failed", "dataset", dataset, "key", key, "error", err)
		return
	}
	h.Logger.Debug("aggregate done", "dataset", dataset, "key", key, "labels", labels, "skipped", skipped, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, vizType string, itemCount int) {
	h.Logger.Debug("layout start", "viz", vizType, "items", itemCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, vizType string, dropped int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout failed", "viz", vizType, "error", err)
		return
	}
	h.Logger.Debug("layout done", "viz", vizType, "dropped", dropped, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "formats", formats, "error", err)
		return
	}
	h.Logger.Debug("render done", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "error", err)
}

package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements PipelineHooks, CacheHooks and HTTPHooks by writing
// debug-level log lines. Register it when running with verbose logging:
//
//	h := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(h)
//	observability.SetCacheHooks(h)
//	observability.SetHTTPHooks(h)
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to the default logger
// when logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnLayoutStart(_ context.Context, itemCount int) {
	h.logger.Debug("layout start", "items", itemCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, itemCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("layout failed", "items", itemCount, "duration", d, "err", err)
		return
	}
	h.logger.Debug("layout complete", "items", itemCount, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, vizType string, formats []string) {
	h.logger.Debug("render start", "viz", vizType, "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, vizType string, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "viz", vizType, "formats", formats, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render complete", "viz", vizType, "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("request error", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)

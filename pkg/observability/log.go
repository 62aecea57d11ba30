package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements
// all hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnClusterComplete(_ context.Context, entities, clusters int, d time.Duration) {
	h.logger.Debug("cluster", "entities", entities, "clusters", clusters, "took", d)
}

func (h *LogHooks) OnPathComplete(_ context.Context, source, target string, hops int, found bool, d time.Duration) {
	h.logger.Debug("path", "source", source, "target", target, "hops", hops, "found", found, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, view, format string) {
	h.logger.Debug("render start", "view", view, "format", format)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, view, format string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("render failed", "view", view, "format", format, "took", d, "err", err)
		return
	}
	h.logger.Debug("render done", "view", view, "format", format, "took", d)
}

func (h *LogHooks) OnExportComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("export", "format", format, "took", d, "err", err)
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

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "route", route, "status", status, "took", d)
}

var _ Hooks = (*LogHooks)(nil)

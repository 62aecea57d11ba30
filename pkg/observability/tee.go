package observability

import (
	"context"
	"time"
)

// Tee forwards every event to each of its hooks in order.
type Tee []Hooks

func (t Tee) OnClusterComplete(ctx context.Context, entities, clusters int, d time.Duration) {
	for _, h := range t {
		h.OnClusterComplete(ctx, entities, clusters, d)
	}
}

func (t Tee) OnPathComplete(ctx context.Context, source, target string, hops int, found bool, d time.Duration) {
	for _, h := range t {
		h.OnPathComplete(ctx, source, target, hops, found, d)
	}
}

func (t Tee) OnRenderStart(ctx context.Context, view, format string) {
	for _, h := range t {
		h.OnRenderStart(ctx, view, format)
	}
}

func (t Tee) OnRenderComplete(ctx context.Context, view, format string, d time.Duration, err error) {
	for _, h := range t {
		h.OnRenderComplete(ctx, view, format, d, err)
	}
}

func (t Tee) OnExportComplete(ctx context.Context, format string, d time.Duration, err error) {
	for _, h := range t {
		h.OnExportComplete(ctx, format, d, err)
	}
}

func (t Tee) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheHit(ctx, keyType)
	}
}

func (t Tee) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range t {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (t Tee) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range t {
		h.OnCacheSet(ctx, keyType, size)
	}
}

func (t Tee) OnRequest(ctx context.Context, method, route string) {
	for _, h := range t {
		h.OnRequest(ctx, method, route)
	}
}

func (t Tee) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	for _, h := range t {
		h.OnResponse(ctx, method, route, status, d)
	}
}

var _ Hooks = Tee(nil)

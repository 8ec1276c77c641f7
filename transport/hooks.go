package transport

import (
	"context"
	"time"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/logx"
)

// RequestInfo identifies one round trip for hooks
type RequestInfo struct {
	ID     string // uuid, unique per call
	Method string
	Path   string
	URL    string
	Start  time.Time
}

// ResponseInfo describes a received response, successful or not
type ResponseInfo struct {
	StatusCode int
	Duration   time.Duration
	Size       int
}

// Hooks are the extension points of the transport. Implementations must be safe for
// concurrent use and must not block.
type Hooks interface {
	BeforeRequest(ctx context.Context, req *RequestInfo)
	AfterResponse(ctx context.Context, req *RequestInfo, resp *ResponseInfo)
	OnError(ctx context.Context, req *RequestInfo, err error)
}

// NopHooks does nothing
type NopHooks struct{}

func (NopHooks) BeforeRequest(context.Context, *RequestInfo)                {}
func (NopHooks) AfterResponse(context.Context, *RequestInfo, *ResponseInfo) {}
func (NopHooks) OnError(context.Context, *RequestInfo, error)               {}

// ChainHooks calls each hook in order
type ChainHooks []Hooks

func (c ChainHooks) BeforeRequest(ctx context.Context, req *RequestInfo) {
	for _, h := range c {
		h.BeforeRequest(ctx, req)
	}
}

func (c ChainHooks) AfterResponse(ctx context.Context, req *RequestInfo, resp *ResponseInfo) {
	for _, h := range c {
		h.AfterResponse(ctx, req, resp)
	}
}

func (c ChainHooks) OnError(ctx context.Context, req *RequestInfo, err error) {
	for _, h := range c {
		h.OnError(ctx, req, err)
	}
}

// LogHooks writes one line per event through logx
type LogHooks struct {
	logger *logx.Logger
}

// NewLogHooks logs through l, or through the global logger when l is nil
func NewLogHooks(l *logx.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

func (h *LogHooks) log(req *RequestInfo) *logx.Logger {
	l := h.logger
	if l == nil {
		l = logx.GetLogger()
	}
	return l.With("request_id", req.ID)
}

func (h *LogHooks) BeforeRequest(_ context.Context, req *RequestInfo) {
	h.log(req).Debug("graph request: %s %s", req.Method, req.Path)
}

func (h *LogHooks) AfterResponse(_ context.Context, req *RequestInfo, resp *ResponseInfo) {
	h.log(req).Debug("graph response: %s %s -> %d in %s (%d bytes)",
		req.Method, req.Path, resp.StatusCode, resp.Duration, resp.Size)
}

func (h *LogHooks) OnError(_ context.Context, req *RequestInfo, err error) {
	if errx.IsKind(err, errx.KindValidation) {
		h.log(req).Debug("graph request rejected: %s", errx.Print(err))
		return
	}
	h.log(req).Warn("graph request failed: %s %s: %s", req.Method, req.Path, errx.Print(err))
}

package tracing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/tabterm/internal/shared/id"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// Span is one traced operation.
type Span struct {
	RequestID  id.RequestID
	Name       string
	Method     string
	Path       string
	ClientIP   string
	StartTime  time.Time
	Duration   time.Duration
	StatusCode int
	Tags       map[string]string
	Error      error
}

// SetTag adds a tag to the span.
func (s *Span) SetTag(key, value string) {
	if s.Tags == nil {
		s.Tags = make(map[string]string)
	}
	s.Tags[key] = value
}

// Finish stamps the duration.
func (s *Span) Finish() {
	s.Duration = time.Since(s.StartTime)
}

// Tracer collects finished spans and logs them off the request path.
type Tracer struct {
	logger *zap.Logger
	spans  chan *Span

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a tracer and starts its collector.
func New(logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		logger: logger,
		spans:  make(chan *Span, 1000),
		done:   make(chan struct{}),
	}
	go t.collect()
	return t
}

// StartSpan begins a span, reusing the request id already in ctx if any.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	reqID := RequestIDFrom(ctx)
	if reqID == "" {
		reqID = id.NewRequestID()
		ctx = WithRequestID(ctx, reqID)
	}
	return &Span{
		RequestID: reqID,
		Name:      name,
		StartTime: time.Now(),
	}, ctx
}

// Submit hands a finished span to the collector, dropping it when the
// buffer is full.
func (t *Tracer) Submit(span *Span) {
	select {
	case t.spans <- span:
	default:
		t.logger.Warn("Span buffer full, dropping span",
			zap.String("request_id", span.RequestID.String()),
		)
	}
}

// Close flushes pending spans and stops the collector.
func (t *Tracer) Close() {
	t.closeOnce.Do(func() {
		close(t.spans)
		<-t.done
	})
}

func (t *Tracer) collect() {
	defer close(t.done)
	for span := range t.spans {
		t.log(span)
	}
}

func (t *Tracer) log(span *Span) {
	fields := []zap.Field{
		zap.String("request_id", span.RequestID.String()),
		zap.String("method", span.Method),
		zap.String("path", span.Path),
		zap.String("route", span.Name),
		zap.Int("status", span.StatusCode),
		zap.Duration("duration", span.Duration),
		zap.String("client_ip", span.ClientIP),
	}
	for k, v := range span.Tags {
		fields = append(fields, zap.String(k, v))
	}

	switch {
	case span.Error != nil:
		t.logger.Error("Request failed", append(fields, zap.Error(span.Error))...)
	case span.StatusCode >= 500:
		t.logger.Error("Request completed", fields...)
	case span.StatusCode >= 400:
		t.logger.Warn("Request completed", fields...)
	default:
		t.logger.Info("Request completed", fields...)
	}
}

type contextKey struct{}

// WithRequestID stores a request id in ctx.
func WithRequestID(ctx context.Context, reqID id.RequestID) context.Context {
	return context.WithValue(ctx, contextKey{}, reqID)
}

// RequestIDFrom returns the request id in ctx, or "".
func RequestIDFrom(ctx context.Context) id.RequestID {
	reqID, _ := ctx.Value(contextKey{}).(id.RequestID)
	return reqID
}

package openai

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/leofalp/openai-go/internal/utils"
	"github.com/leofalp/openai-go/observability"
)

// usageReporter is implemented by responses that carry a usage block.
type usageReporter interface {
	usageInfo() *Usage
}

// responseSummary is implemented by responses and stream events that carry an
// object id and a finish reason for their first choice.
type responseSummary interface {
	summary() (id, finishReason string)
}

// messageCounter is implemented by request bodies that carry chat messages.
type messageCounter interface {
	messageCount() int
}

// call tracks the span, timer and labels of one API call.
type call struct {
	client          *Client
	ctx             context.Context
	span            observability.Span
	operation       string
	endpoint        string
	model           string
	clientRequestID string
	timer           *utils.Timer
	once            sync.Once
}

func (c *Client) begin(ctx context.Context, operation, endpoint, model string, streaming bool, body any) (context.Context, *call) {
	cl := &call{
		client:          c,
		operation:       operation,
		endpoint:        endpoint,
		model:           model,
		clientRequestID: requestIDFromContext(ctx),
		timer:           utils.NewTimer(),
	}

	if c.observer != nil {
		attrs := []observability.Attribute{
			observability.String(observability.AttrOperation, operation),
			observability.String(observability.AttrEndpoint, endpoint),
			observability.String(observability.AttrClientRequestID, cl.clientRequestID),
			observability.Bool(observability.AttrStreaming, streaming),
		}
		if model != "" {
			attrs = append(attrs, observability.String(observability.AttrModel, model))
		}
		if counter, ok := body.(messageCounter); ok {
			attrs = append(attrs, observability.Int(observability.AttrMessagesCount, counter.messageCount()))
		}
		ctx, cl.span = c.observer.StartSpan(ctx, "openai."+operation, attrs...)
		ctx = observability.ContextWithSpan(ctx, cl.span)
		c.observer.Debug(ctx, "openai request", attrs...)
	}

	cl.ctx = ctx
	return ctx, cl
}

func (cl *call) setRequestID(response *http.Response) {
	if cl.span == nil || response == nil {
		return
	}
	if id := response.Header.Get("x-request-id"); id != "" {
		cl.span.SetAttributes(observability.String(observability.AttrRequestID, id))
	}
}

// end closes the span and records metrics. Only the first call has effect.
func (cl *call) end(err error, attrs ...observability.Attribute) {
	cl.once.Do(func() {
		duration := cl.timer.Stop()
		status := "ok"
		if err != nil {
			status = "error"
		}
		// The caller's context may already be cancelled; metrics still count.
		ctx := context.WithoutCancel(cl.ctx)

		if observer := cl.client.observer; observer != nil {
			cl.span.SetAttributes(append(attrs, observability.Duration(observability.AttrDuration, duration))...)
			if err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					cl.span.SetAttributes(
						observability.Int(observability.AttrHTTPStatusCode, apiErr.StatusCode),
						observability.String(observability.AttrErrorType, string(apiErr.Kind())),
					)
				}
				cl.span.RecordError(err)
				cl.span.SetStatus(observability.StatusError, cl.operation+" failed")
				observer.Error(ctx, "openai request failed",
					observability.String(observability.AttrOperation, cl.operation),
					observability.Error(err),
					observability.Duration(observability.AttrDuration, duration),
				)
			} else {
				cl.span.SetStatus(observability.StatusOK, "")
			}
			cl.span.End()
		}

		metrics := cl.client.metricsSink()
		if metrics == nil {
			return
		}
		labels := []observability.Attribute{
			observability.String(observability.AttrOperation, cl.operation),
			observability.String(observability.AttrEndpoint, cl.endpoint),
			observability.String(observability.AttrStatus, status),
		}
		metrics.Counter(observability.MetricRequests).Add(ctx, 1, labels...)
		metrics.Histogram(observability.MetricRequestDuration).Record(ctx, duration.Seconds(), labels...)
		for _, attr := range attrs {
			if attr.Key == observability.AttrTokensTotal {
				if total, ok := attr.Value.(int); ok && total > 0 {
					metrics.Counter(observability.MetricTokens).Add(ctx, int64(total), labels[:2]...)
				}
			}
		}
	})
}

func (c *Client) metricsSink() observability.Metrics {
	if c.metrics != nil {
		return c.metrics
	}
	if c.observer != nil {
		return c.observer
	}
	return nil
}

func usageAttributes(output any) []observability.Attribute {
	reporter, ok := output.(usageReporter)
	if !ok {
		return nil
	}
	usage := reporter.usageInfo()
	if usage == nil {
		return nil
	}
	return []observability.Attribute{
		observability.Int(observability.AttrTokensPrompt, usage.PromptTokens),
		observability.Int(observability.AttrTokensCompletion, usage.CompletionTokens),
		observability.Int(observability.AttrTokensTotal, usage.TotalTokens),
	}
}

func summaryAttributes(id, finishReason string) []observability.Attribute {
	var attrs []observability.Attribute
	if id != "" {
		attrs = append(attrs, observability.String(observability.AttrResponseID, id))
	}
	if finishReason != "" {
		attrs = append(attrs, observability.String(observability.AttrFinishReason, finishReason))
	}
	return attrs
}

func responseAttributes(output any) []observability.Attribute {
	attrs := usageAttributes(output)
	if summary, ok := output.(responseSummary); ok {
		attrs = append(attrs, summaryAttributes(summary.summary())...)
	}
	return attrs
}

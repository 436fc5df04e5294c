// Package httpx builds the retrying HTTP clients used for outbound calls.
package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dmitrijs2005/boardingpass/internal/logging"
)

type Options struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// NewClient returns a retryablehttp client. With RetryMax 0 it performs a
// single attempt. The final response or transport error is returned as is,
// so callers see 4xx/5xx bodies.
func NewClient(opts Options, logger logging.Logger) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient.Timeout = opts.Timeout
	c.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		c.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		c.RetryWaitMax = opts.RetryWaitMax
	}
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = &leveledLogger{l: logger}
	return c
}

// StandardClient exposes c as a plain *http.Client for libraries that take one.
func StandardClient(c *retryablehttp.Client) *http.Client {
	return c.StandardClient()
}

type leveledLogger struct {
	l logging.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...any) {
	l.l.Error(context.Background(), msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...any) {
	l.l.Debug(context.Background(), msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.l.Debug(context.Background(), msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.l.Warn(context.Background(), msg, keysAndValues...)
}

package debug

import (
	"context"
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

var sensitiveHeaders = map[string]bool{
	"cookie":        true,
	"set-cookie":    true,
	"authorization": true,
}

// Trace logs the browser's requests and responses for host and its
// subdomains. Credential headers are redacted.
func Trace(ctx context.Context, logger *logrus.Logger, host string) {
	host = strings.ToLower(strings.TrimPrefix(host, "."))
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			if e.Request == nil || !matchesHost(e.Request.URL, host) {
				return
			}
			logger.WithFields(logrus.Fields{
				"method":  e.Request.Method,
				"url":     e.Request.URL,
				"type":    e.Type,
				"headers": RedactHeaders(e.Request.Headers),
			}).Debug("request")
		case *network.EventResponseReceived:
			if e.Response == nil || !matchesHost(e.Response.URL, host) {
				return
			}
			logger.WithFields(logrus.Fields{
				"status": e.Response.Status,
				"url":    e.Response.URL,
				"mime":   e.Response.MimeType,
			}).Debug("response")
		}
	})
}

// RedactHeaders returns a copy of headers with credential values replaced.
func RedactHeaders(headers network.Headers) map[string]interface{} {
	out := make(map[string]interface{}, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func matchesHost(rawURL, host string) bool {
	if host == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	h := strings.ToLower(u.Hostname())
	return h == host || strings.HasSuffix(h, "."+host)
}

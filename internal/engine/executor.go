package engine

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	tcpDialTimeout        = 5 * time.Second
	tcpKeepAliveInterval  = 30 * time.Second
	tlsHandshakeTimeout   = 5 * time.Second
	idleConnTimeout       = 90 * time.Second
	expectContinueTimeout = 1 * time.Second
)

// requestExecutor performs single HTTP requests against the configured target
// using one shared, pooled client. It never retries; every attempt produces
// exactly one Measurement, success or not.
type requestExecutor struct {
	cfg    *Config
	client *http.Client
}

func newRequestExecutor(cfg *Config) *requestExecutor {
	return &requestExecutor{
		cfg:    cfg,
		client: newHTTPClient(cfg),
	}
}

// newHTTPClient builds the shared HTTP client. The transport's per-host
// connection cap is the one knob that bounds open sockets regardless of the
// configured user count.
func newHTTPClient(cfg *Config) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxPoolSize,
		MaxIdleConnsPerHost: cfg.MaxPoolSize,
		MaxConnsPerHost:     cfg.MaxPoolSize,
		IdleConnTimeout:     idleConnTimeout,
		DisableKeepAlives:   false,
		ForceAttemptHTTP2:   true,

		DialContext: (&net.Dialer{
			Timeout:   tcpDialTimeout,
			KeepAlive: tcpKeepAliveInterval,
		}).DialContext,

		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ExpectContinueTimeout: expectContinueTimeout,
	}

	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := &http.Client{Transport: transport}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// closeIdle releases pooled connections once a run is over.
func (x *requestExecutor) closeIdle() {
	x.client.CloseIdleConnections()
}

// executeOnce performs one request attempt for the given virtual user and
// sequence index. Failures are recovered into the returned Measurement and
// never propagate. The per-request context is deliberately independent of the
// run's cancellation: a cancelled run lets in-flight requests finish or time
// out naturally instead of aborting live sockets.
func (x *requestExecutor) executeOnce(user, seq int) *Measurement {
	m := &Measurement{
		User:      user,
		Sequence:  seq,
		StartedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), x.cfg.RequestTimeout)
	defer cancel()

	var bodyReader io.Reader
	if x.cfg.Body != "" {
		bodyReader = strings.NewReader(x.cfg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, x.cfg.EffectiveMethod(), x.cfg.TargetURL, bodyReader)
	if err != nil {
		m.Outcome = OutcomeOtherError
		m.Error = err.Error()
		return m
	}

	for key, value := range x.cfg.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", x.cfg.EffectiveUserAgent())

	resp, err := x.client.Do(req)
	if err != nil {
		m.Latency = time.Since(m.StartedAt)
		m.Outcome, m.Error = classifyError(err)
		if m.Outcome == OutcomeTimeout {
			// A timed-out request spent exactly its budget.
			m.Latency = x.cfg.RequestTimeout
		}
		return m
	}
	defer resp.Body.Close()

	size, err := io.Copy(io.Discard, resp.Body)
	m.Latency = time.Since(m.StartedAt)
	if err != nil {
		m.Outcome, m.Error = classifyError(err)
		if m.Outcome == OutcomeTimeout {
			m.Latency = x.cfg.RequestTimeout
		}
		return m
	}

	m.Outcome = OutcomeSuccess
	m.StatusCode = resp.StatusCode
	m.ResponseSize = size
	return m
}

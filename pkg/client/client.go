// Package client builds the outbound HTTP client used for metadata lookups
// and tool installation. Requests go through a browser-like TLS fingerprint.
package client

import (
	"fmt"
	"net/http"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// HTTPClient is the subset of *http.Client used by this module.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options tune NewHttpClient.
type Options struct {
	// TimeoutSeconds bounds a whole request including the body read.
	TimeoutSeconds int
	// FollowRedirects is needed for GitHub release downloads.
	FollowRedirects bool
}

type tlsWrapper struct {
	inner tls_client.HttpClient
}

func (w *tlsWrapper) Do(req *http.Request) (*http.Response, error) {
	resp, err := w.inner.Do(toFHTTP(req))
	if err != nil {
		return nil, err
	}
	return fromFHTTP(req, resp), nil
}

func toFHTTP(req *http.Request) *fhttp.Request {
	fReq := &fhttp.Request{
		Method:        req.Method,
		URL:           req.URL,
		Proto:         req.Proto,
		ProtoMajor:    req.ProtoMajor,
		ProtoMinor:    req.ProtoMinor,
		Header:        make(fhttp.Header, len(req.Header)),
		Body:          req.Body,
		ContentLength: req.ContentLength,
		Host:          req.Host,
	}
	for k, v := range req.Header {
		fReq.Header[k] = v
	}
	return fReq.WithContext(req.Context())
}

func fromFHTTP(req *http.Request, resp *fhttp.Response) *http.Response {
	netResp := &http.Response{
		Status:           resp.Status,
		StatusCode:       resp.StatusCode,
		Proto:            resp.Proto,
		ProtoMajor:       resp.ProtoMajor,
		ProtoMinor:       resp.ProtoMinor,
		ContentLength:    resp.ContentLength,
		Body:             resp.Body,
		Header:           make(http.Header, len(resp.Header)),
		Uncompressed:     resp.Uncompressed,
		TransferEncoding: resp.TransferEncoding,
		Request:          req,
	}
	for k, v := range resp.Header {
		netResp.Header[k] = v
	}
	return netResp
}

// NewHttpClient returns an HTTPClient backed by tls-client.
func NewHttpClient(opts Options) (HTTPClient, error) {
	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = 30
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(opts.TimeoutSeconds),
		tls_client.WithClientProfile(profiles.DefaultClientProfile),
		tls_client.WithRandomTLSExtensionOrder(),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	if !opts.FollowRedirects {
		options = append(options, tls_client.WithNotFollowRedirects())
	}

	c, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}

	return &tlsWrapper{inner: c}, nil
}

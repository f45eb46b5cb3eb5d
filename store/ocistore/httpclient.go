package ocistore

import (
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"imagebench/errors"
)

// newHTTPClient creates an HTTP client whose connection pool is sized for
// maxConns concurrent requests, with HTTP/2 enabled.
func newHTTPClient(maxConns int) (*http.Client, error) {
	if maxConns < 50 {
		maxConns = 50
	}
	transport := &http.Transport{
		MaxIdleConns:          maxConns * 2,
		MaxIdleConnsPerHost:   maxConns,
		MaxConnsPerHost:       maxConns * 2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, errors.Wrap(err, "configure HTTP/2")
	}

	return &http.Client{
		Transport: transport,
		Timeout:   120 * time.Second,
	}, nil
}

//
// Tencent is pleased to support the open source community by making trpc-dataspace-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-dataspace-go is licensed under the Apache License Version 2.0.
//
//

package cos

import (
	"net/http"
	"net/url"
	"os"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

// Option defines a function type for configuring the COS mirror service.
type Option func(*options)

// options holds the configuration options for the COS mirror service.
type options struct {
	client     client
	httpClient *http.Client

	timeout   time.Duration
	secretID  string
	secretKey string
}

// WithClient sets the COS client directly.
// This option takes precedence over all other options when provided.
func WithClient(client *cos.Client) Option {
	return func(o *options) {
		o.client = newCosClient(client)
	}
}

// WithHTTPClient sets the HTTP client to use for COS requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout sets the timeout duration for HTTP requests.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithSecretID sets the COS secret ID for authentication.
// If not provided, the service uses the COS_SECRETID environment variable.
func WithSecretID(secretID string) Option {
	return func(o *options) {
		o.secretID = secretID
	}
}

// WithSecretKey sets the COS secret key for authentication.
// If not provided, the service uses the COS_SECRETKEY environment variable.
func WithSecretKey(secretKey string) Option {
	return func(o *options) {
		o.secretKey = secretKey
	}
}

func buildClient(bucketURL string, opts ...Option) (client, error) {
	options := &options{
		timeout:   defaultTimeout,
		secretID:  os.Getenv("COS_SECRETID"),
		secretKey: os.Getenv("COS_SECRETKEY"),
	}
	for _, opt := range opts {
		opt(options)
	}

	// A directly provided COS client takes precedence.
	if options.client != nil {
		return options.client, nil
	}

	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, err
	}
	b := &cos.BaseURL{BucketURL: u}

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &cos.AuthorizationTransport{
				SecretID:  options.secretID,
				SecretKey: options.secretKey,
			},
		}
	}
	if options.timeout > 0 {
		httpClient.Timeout = options.timeout
	}
	return newCosClient(cos.NewClient(b, httpClient)), nil
}

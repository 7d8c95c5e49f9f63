// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

type options struct {
	profile  string
	region   string
	endpoint string
}

// Option customizes how AWS config is loaded. With no options the shell
// environment and shared config chain are inherited.
type Option func(*options)

// WithProfile sets the shared config profile.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion overrides the region.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points S3 at an alternate endpoint, e.g. a MinIO server.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// Build applies opts and returns the effective settings. Exposed for tests.
func Build(opts ...Option) (profile, region, endpoint string) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o.profile, o.region, o.endpoint
}

// LoadAWSConfig loads AWS SDK v2 config honoring profile and region overrides.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	profile, region, _ := Build(opts...)

	var loadOpts []func(*config.LoadOptions) error
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// NewS3 loads config and constructs an S3 client. A custom endpoint switches
// the client to path-style addressing.
func NewS3(ctx context.Context, opts ...Option) (*s3v2.Client, error) {
	cfg, err := LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	_, _, endpoint := Build(opts...)
	return s3v2.NewFromConfig(cfg, func(o *s3v2.Options) {
		if endpoint != "" {
			o.BaseEndpoint = awsv2.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

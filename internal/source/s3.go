// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	awsx "github.com/staranto/clientdash/internal/aws"
)

// ObjectGetter is the slice of the S3 API the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads sheets from s3://<Bucket>/<Prefix>/<sheet>.csv.
type S3 struct {
	Client ObjectGetter
	Bucket string
	Prefix string
}

// NewS3 builds an S3 source using the shared AWS config chain.
func NewS3(ctx context.Context, o Options) (*S3, error) {
	if o.Bucket == "" {
		return nil, errors.New("source.bucket is not set")
	}

	client, err := awsx.NewS3(ctx,
		awsx.WithProfile(o.Profile),
		awsx.WithRegion(o.Region),
		awsx.WithEndpoint(o.Endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3{Client: client, Bucket: o.Bucket, Prefix: o.Prefix}, nil
}

// Key is the object key for sheet.
func (s *S3) Key(sheet string) string {
	return path.Join(s.Prefix, sheet+".csv")
}

func (s *S3) Fetch(ctx context.Context, sheet string) ([]byte, error) {
	key := s.Key(sheet)
	log.WithField("bucket", s.Bucket).WithField("key", key).Debug("s3: get")

	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awsv2.String(s.Bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
		}
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	return data, nil
}

// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws contains the AWS SDK v2 helpers used by the S3 sheet source.
package aws

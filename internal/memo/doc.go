// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package memo provides the session-scoped memoization layer that sits
// between the dashboard and the remote data source. A Cache belongs to
// exactly one session and remembers the result of each fetch for a TTL.
package memo

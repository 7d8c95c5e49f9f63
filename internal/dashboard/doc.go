// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package dashboard serves the browser session API. A login starts a
// session with its own cache; dataset requests load through that cache and
// /api/refresh offers the manual refresh.
package dashboard

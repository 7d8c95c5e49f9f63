// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// CLIENTDASH_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("CLIENTDASH_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(NewCustomHandler(os.Stderr))
	log.SetLevelFromString(strings.ToLower(level))
}

// CustomHandler formats log messages on a single line. Stdout is left to
// command output, so the default writer is stderr.
type CustomHandler struct {
	mu     sync.Mutex
	Writer io.Writer
	Now    func() time.Time
}

// NewCustomHandler returns a handler writing to w.
func NewCustomHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{Writer: w, Now: time.Now}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	w := h.Writer
	if w == nil {
		w = os.Stderr
	}

	timestamp := now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp, level, e.Message)

	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(w, b.String())
	return err
}

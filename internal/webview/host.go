// Package webview hosts the dialog simulator in a desktop window and pumps
// the dispatcher on the window's UI thread.
package webview

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/toqueteos/webbrowser"
	webview "github.com/webview/webview_go"

	"github.com/arko-chat/nativetoolkit/internal/dispatcher"
)

const (
	baseTitle    = "Native dialog simulator"
	pumpInterval = 16 * time.Millisecond
)

type Host struct {
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger

	mu     sync.Mutex
	window webview.WebView
	title  string
}

func NewHost(d *dispatcher.Dispatcher, logger *slog.Logger) *Host {
	return &Host{
		dispatcher: d,
		logger:     logger,
		title:      baseTitle,
	}
}

// Run opens a window on url and blocks until it is closed or ctx ends. The
// calling goroutine becomes the dispatcher's main thread, so call Run from
// main.
func (h *Host) Run(ctx context.Context, url string) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w := webview.New(false)
	if w == nil {
		return fmt.Errorf("webview: window could not be created")
	}
	defer w.Destroy()

	w.SetSize(520, 720, webview.HintNone)
	w.Init(`
    document.addEventListener("click", function(e) {
        const a = e.target.closest("a");
        if (!a || !a.href) return;
        if (a.href.startsWith(location.origin)) return;
        e.preventDefault();
        openExternal(a.href);
    });
`)
	if err := w.Bind("openExternal", webbrowser.Open); err != nil {
		return fmt.Errorf("webview: bind openExternal: %w", err)
	}
	w.Navigate(url)

	h.dispatcher.BindMainThread()

	h.mu.Lock()
	h.window = w
	w.SetTitle(h.title)
	h.mu.Unlock()

	done := make(chan struct{})
	go h.pump(ctx, w, done)

	w.Run()
	close(done)

	h.mu.Lock()
	h.window = nil
	h.mu.Unlock()

	h.logger.Info("simulator window closed")
	// flush whatever arrived after the last tick
	if _, err := h.dispatcher.Drain(); err != nil {
		return err
	}
	return nil
}

// pump drains the dispatcher on the UI thread every tick until the window
// closes. Ending ctx closes the window.
func (h *Host) pump(ctx context.Context, w webview.WebView, done <-chan struct{}) {
	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			w.Dispatch(w.Terminate)
			return
		case <-ticker.C:
			if h.dispatcher.Pending() == 0 {
				continue
			}
			w.Dispatch(func() {
				if _, err := h.dispatcher.Drain(); err != nil {
					h.logger.Error("webview drain failed", "err", err)
				}
			})
		}
	}
}

// SetTitle appends title to the window title. It is safe from any
// goroutine.
func (h *Host) SetTitle(title string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		h.title = baseTitle
	} else {
		h.title = fmt.Sprintf("%s | %s", baseTitle, trimmed)
	}

	if h.window != nil {
		w, newTitle := h.window, h.title
		w.Dispatch(func() {
			w.SetTitle(newTitle)
		})
	}
}

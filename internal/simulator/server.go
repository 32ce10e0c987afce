package simulator

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"

	"github.com/arko-chat/nativetoolkit/internal/ws"
)

const (
	cookieName = "nt_simulator"
	tokenParam = "token"
	tokenValue = "paired"
)

var ErrUnauthorized = errors.New("simulator: missing or invalid pairing token")

//go:embed page.html
var page []byte

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Token returns the pairing token a page must present, either as the token
// query parameter or through the cookie set on its first visit.
func (s *Simulator) Token() (string, error) {
	tok, err := s.cookies.Encode(cookieName, tokenValue)
	if err != nil {
		return "", fmt.Errorf("simulator: encode token: %w", err)
	}
	return tok, nil
}

// PairingURL returns base with the pairing token attached.
func (s *Simulator) PairingURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("simulator: parse base url: %w", err)
	}
	tok, err := s.Token()
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(tokenParam, tok)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PairingQR renders the pairing URL for base as a PNG, for opening the
// simulator on a phone.
func (s *Simulator) PairingQR(base string, size int) ([]byte, error) {
	link, err := s.PairingURL(base)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("simulator: generate QR code: %w", err)
	}
	return png, nil
}

func (s *Simulator) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)

		r.Get("/", s.handlePage)
		r.Get("/qr.png", s.handleQR)
		r.Get("/ws", s.handleWS)
	})

	return r
}

func (s *Simulator) authorized(r *http.Request) (string, bool) {
	var v string
	if tok := r.URL.Query().Get(tokenParam); tok != "" {
		if err := s.cookies.Decode(cookieName, tok, &v); err == nil && v == tokenValue {
			return tok, true
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		if err := s.cookies.Decode(cookieName, c.Value, &v); err == nil && v == tokenValue {
			return c.Value, true
		}
	}
	return "", false
}

func (s *Simulator) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := s.authorized(r)
		if !ok {
			s.logger.Warn("simulator request rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    tok,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		next.ServeHTTP(w, r)
	})
}

func (s *Simulator) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page)
}

func (s *Simulator) handleQR(w http.ResponseWriter, r *http.Request) {
	png, err := s.PairingQR("http://"+r.Host+"/", 256)
	if err != nil {
		s.logger.Error("simulator QR failed", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Simulator) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"pages":   s.hub.Count(),
		"pending": len(s.Pending()),
	})
}

func (s *Simulator) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("simulator websocket upgrade failed", "err", err)
		return
	}

	client := ws.NewClient(s.hub, conn, uuid.NewString())
	s.hub.Register(client)
	go client.WritePump()

	s.replay(client)
	client.ReadPump(s.handleMessage)
}

// Serve listens on addr until ctx ends. It reports the bound address to
// ready, which is useful when addr asks for port 0.
func (s *Simulator) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("simulator: listen: %w", err)
	}
	if ready != nil {
		ready(ln.Addr())
	}
	s.logger.Info("simulator listening", "addr", ln.Addr().String())

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("simulator: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("simulator: shutdown: %w", err)
		}
		return nil
	}
}

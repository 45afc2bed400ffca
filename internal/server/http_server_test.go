package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/config"
)

type failingListener struct{}

func (failingListener) Accept() (net.Conn, error) { return nil, errors.New("accept failure") }
func (failingListener) Close() error              { return nil }
func (failingListener) Addr() net.Addr            { return &net.TCPAddr{IP: net.IPv4zero} }

func TestBuildHTTPServerAppliesPortAndTimeouts(t *testing.T) {
	router := http.NotFoundHandler()
	srv, ok := buildHTTPServer(config.Config{Port: "9090"}, router).(netHTTPServer)
	if !ok {
		t.Fatalf("expected netHTTPServer")
	}
	if srv.Addr() != ":9090" {
		t.Fatalf("expected :9090, got %s", srv.Addr())
	}
	if srv.srv.WriteTimeout != writeTimeout || srv.srv.ReadTimeout != readTimeout || srv.srv.IdleTimeout != idleTimeout {
		t.Fatalf("unexpected timeouts %+v", srv.srv)
	}
	if writeTimeout <= readTimeout {
		t.Fatal("grading responses need more time than request reads")
	}
}

func TestNetHTTPServerServesInjectedListener(t *testing.T) {
	s := netHTTPServer{srv: &http.Server{Handler: http.NotFoundHandler()}, listener: failingListener{}}
	if err := s.ListenAndServe(); err == nil {
		t.Fatal("expected the listener's accept error")
	}
}

func TestNetHTTPServerShutsDownLiveListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	s := netHTTPServer{srv: &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})}, listener: ln}

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe() }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", resp.StatusCode)
	}

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Fatalf("expected ErrServerClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("serve did not return after shutdown")
	}
}

package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ikuuu_checkin/internal/config"
	"ikuuu_checkin/internal/logbus"
	"ikuuu_checkin/internal/model"
)

const sessionCookie = "uid"

func newTestSession(t *testing.T, baseURL string) *Session {
	t.Helper()
	s, err := New(config.SiteConfig{BaseURL: baseURL, TimeoutMs: 2000, LoginTimeoutMs: 2000}, config.ProxyConfig{}, logbus.New(50))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSessionKeepsCookiesAcrossCalls(t *testing.T) {
	var gotEmail, gotPasswd string
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		_ = r.ParseForm()
		gotEmail = r.PostForm.Get("email")
		gotPasswd = r.PostForm.Get("passwd")
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "42", Path: "/"})
		_, _ = w.Write([]byte(`{"ret":1,"msg":"登录成功"}`))
	})
	mux.HandleFunc(checkinPath, func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookie); err != nil || c.Value != "42" {
			_, _ = w.Write([]byte(`{"ret":0,"msg":"未登录"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ret":1,"msg":"你获得了 500MB 流量"}`))
	})
	mux.HandleFunc(userPath, func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie(sessionCookie); err != nil {
			w.WriteHeader(http.StatusFound)
			return
		}
		_, _ = w.Write([]byte(`<h4>剩余流量</h4><span class="counter">12.5</span>GB
<h4>今日已用</h4><span class="counter">300</span>MB`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := newTestSession(t, srv.URL)
	ctx := context.Background()

	login := s.Login(ctx, model.Credentials{Email: "user@example.com", Password: "pw"})
	if !login.Succeeded {
		t.Fatalf("login failed: %+v", login)
	}
	if gotEmail != "user@example.com" || gotPasswd != "pw" {
		t.Fatalf("unexpected form fields %q %q", gotEmail, gotPasswd)
	}

	checkin := s.CheckIn(ctx)
	if !checkin.Succeeded || checkin.Message != "你获得了 500MB 流量" {
		t.Fatalf("checkin should reuse session cookie: %+v", checkin)
	}

	out, usage := s.FetchUsage(ctx)
	if !out.Succeeded {
		t.Fatalf("usage failed: %+v", out)
	}
	if usage != (model.UsageSnapshot{UsedToday: "300MB", Remaining: "12.5GB"}) {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestLoginRejectedAndUnparseable(t *testing.T) {
	serve := func(body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
	}
	creds := model.Credentials{Email: "a@b.c", Password: "x"}

	rejected := serve(`{"ret":0,"msg":"密码错误"}`)
	defer rejected.Close()
	out := newTestSession(t, rejected.URL).Login(context.Background(), creds)
	if out.Succeeded || out.Kind != model.OutcomeRejected || out.Message != "密码错误" {
		t.Fatalf("unexpected outcome %+v", out)
	}

	broken := serve(`<html>maintenance</html>`)
	defer broken.Close()
	out = newTestSession(t, broken.URL).Login(context.Background(), creds)
	if out.Succeeded || out.Kind != model.OutcomeUnparseable {
		t.Fatalf("expected unparseable outcome, got %+v", out)
	}
}

func TestCheckInAlreadyDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ret":0,"msg":"您似乎已经签到过了..."}`))
	}))
	defer srv.Close()

	out := newTestSession(t, srv.URL).CheckIn(context.Background())
	if out.Succeeded {
		t.Fatalf("already checked in is not a plain success")
	}
	if out.Kind != model.OutcomeAlreadyCheckedIn || !out.Informational() {
		t.Fatalf("expected already-checked-in kind, got %+v", out)
	}
}

func TestNetworkErrorsBecomeOutcomes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s := newTestSession(t, url)
	ctx := context.Background()

	if out := s.Login(ctx, model.Credentials{Email: "a@b.c", Password: "x"}); out.Kind != model.OutcomeNetwork || !strings.HasPrefix(out.Message, "网络错误") {
		t.Fatalf("login: unexpected %+v", out)
	}
	if out := s.CheckIn(ctx); out.Kind != model.OutcomeNetwork {
		t.Fatalf("checkin: unexpected %+v", out)
	}
	out, usage := s.FetchUsage(ctx)
	if out.Kind != model.OutcomeNetwork || usage != model.EmptyUsage() {
		t.Fatalf("usage: unexpected %+v %+v", out, usage)
	}
}

func TestCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"ret":1}`))
	}))
	defer srv.Close()

	s, err := New(config.SiteConfig{BaseURL: srv.URL, TimeoutMs: 50}, config.ProxyConfig{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if out := s.CheckIn(context.Background()); out.Kind != model.OutcomeNetwork {
		t.Fatalf("expected timeout to be reported as network error, got %+v", out)
	}
}

func TestFetchUsageWithoutLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>新版页面</body></html>`))
	}))
	defer srv.Close()

	out, usage := newTestSession(t, srv.URL).FetchUsage(context.Background())
	if !out.Succeeded {
		t.Fatalf("missing labels must not fail the query: %+v", out)
	}
	if usage != model.EmptyUsage() {
		t.Fatalf("expected N/A usage, got %+v", usage)
	}
}

func TestFetchUsageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	out, usage := newTestSession(t, srv.URL).FetchUsage(context.Background())
	if out.Succeeded || !strings.Contains(out.Message, "502") {
		t.Fatalf("expected HTTP error outcome, got %+v", out)
	}
	if usage != model.EmptyUsage() {
		t.Fatalf("expected N/A usage, got %+v", usage)
	}
}

func TestNoRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := newTestSession(t, srv.URL).CheckIn(context.Background())
	if out.Kind != model.OutcomeUnparseable {
		t.Fatalf("empty 500 body should be unparseable, got %+v", out)
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected exactly one attempt, got %d", got)
	}
}

func TestMinIntervalPacesCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ret":1}`))
	}))
	defer srv.Close()

	s, err := New(config.SiteConfig{BaseURL: srv.URL, MinIntervalMs: 150}, config.ProxyConfig{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start := time.Now()
	s.CheckIn(context.Background())
	s.CheckIn(context.Background())
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Fatalf("second call should wait for the limiter, elapsed %v", elapsed)
	}
}

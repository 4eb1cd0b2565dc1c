package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ikuuu_checkin/internal/logbus"
)

// 本地模拟站点和推送服务，配合 CHECKIN_BASE_URL 手动联调。
func main() {
	addr := flag.String("addr", ":8080", "listen address")
	password := flag.String("password", "mock", "password accepted by /auth/login")
	variant := flag.String("variant", "cn", "user page markup: cn or en")
	flag.Parse()

	bus := logbus.New(200)
	bus.AddSink(os.Stdout, "info", logbus.ConsoleColor("auto", os.Stdout))

	m := &mockSite{
		password: *password,
		variant:  *variant,
		sessions: make(map[string]*mockSession),
		bus:      bus,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", m.login)
	mux.HandleFunc("/user/checkin", m.checkin)
	mux.HandleFunc("/user", m.user)
	mux.HandleFunc("/push/serverchan/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		bus.Log("info", "收到 Server酱 推送", map[string]any{"title": r.URL.Query().Get("title")})
		writeJSON(w, map[string]any{"code": 0, "message": "", "data": map[string]any{"pushid": uuid.NewString()}})
	})
	mux.HandleFunc("/push/pushplus", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bus.Log("info", "收到 PushPlus 推送", map[string]any{"title": body["title"]})
		writeJSON(w, map[string]any{"code": 200, "msg": "请求成功", "data": uuid.NewString()})
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	bus.Log("info", "mock listening", map[string]any{"addr": *addr})
	if err := srv.ListenAndServe(); err != nil {
		bus.Log("error", "mock server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

type mockSession struct {
	email     string
	checkedIn bool
	usedMB    int
}

type mockSite struct {
	password string
	variant  string
	bus      *logbus.Bus

	mu       sync.Mutex
	sessions map[string]*mockSession
}

const cookieName = "uid"

func (m *mockSite) session(r *http.Request) *mockSession {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[c.Value]
}

func (m *mockSite) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_ = r.ParseForm()
	email := strings.TrimSpace(r.PostForm.Get("email"))
	if email == "" || r.PostForm.Get("passwd") != m.password {
		writeJSON(w, map[string]any{"ret": 0, "msg": "邮箱或者密码错误"})
		return
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &mockSession{email: email, usedMB: 300}
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: id, Path: "/", HttpOnly: true})
	m.bus.Log("info", "mock 登录", map[string]any{"email": email})
	writeJSON(w, map[string]any{"ret": 1, "msg": "登录成功"})
}

func (m *mockSite) checkin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s := m.session(r)
	if s == nil {
		writeJSON(w, map[string]any{"ret": 0, "msg": "未登录"})
		return
	}
	m.mu.Lock()
	already := s.checkedIn
	s.checkedIn = true
	m.mu.Unlock()
	if already {
		writeJSON(w, map[string]any{"ret": 0, "msg": "您似乎已经签到过了..."})
		return
	}
	writeJSON(w, map[string]any{"ret": 1, "msg": "你获得了 1024MB 流量"})
}

func (m *mockSite) user(w http.ResponseWriter, r *http.Request) {
	s := m.session(r)
	if s == nil {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if m.variant == "en" {
		fmt.Fprintf(w, `<div class="card"><span class="label">Used Today</span>
<span class="counter">%d</span> MB</div>`, s.usedMB)
		return
	}
	fmt.Fprintf(w, `<div class="card"><h4>剩余流量</h4><span class="counter">12.5</span> GB</div>
<div class="card"><h4>今日已用</h4><span class="counter">%d</span> MB</div>`, s.usedMB)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientSetsDefaultHeaders(t *testing.T) {
	var gotUA, gotAccept, gotLang, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotLang = r.Header.Get("Accept-Language")
		gotCookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient("", "over18=1")
	if err != nil {
		t.Fatalf("期望构造成功，实际错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("期望请求成功，实际错误：%v", err)
	}
	resp.Body.Close()

	if gotUA == "" || !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Fatalf("期望 UA 池注入 UA，实际=%q", gotUA)
	}
	if gotAccept == "" {
		t.Fatal("期望默认 Accept 头")
	}
	if gotLang == "" {
		t.Fatal("期望默认 Accept-Language 头")
	}
	if gotCookie != "over18=1" {
		t.Fatalf("期望 cookie 原样注入，实际=%q", gotCookie)
	}
}

func TestClientDoesNotOverrideCallerHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c, err := NewClient("", "")
	if err != nil {
		t.Fatalf("期望构造成功，实际错误：%v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom-agent/1.0")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("期望请求成功，实际错误：%v", err)
	}
	resp.Body.Close()

	if gotUA != "custom-agent/1.0" {
		t.Fatalf("期望调用方显式 UA 不被覆盖，实际=%q", gotUA)
	}
}

func TestClientBoundsRedirects(t *testing.T) {
	var srv *httptest.Server
	n := 0
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n++
		http.Redirect(w, r, fmt.Sprintf("%s/loop/%d", srv.URL, n), http.StatusFound)
	}))
	defer srv.Close()

	c, err := NewClient("", "")
	if err != nil {
		t.Fatalf("期望构造成功，实际错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("期望重定向循环报错，实际成功")
	}
	if n > maxRedirects+1 {
		t.Fatalf("期望最多跟随 %d 次重定向，实际请求了 %d 次", maxRedirects, n)
	}
}

func TestUAPoolNonEmpty(t *testing.T) {
	for i := 0; i < 10; i++ {
		if globalUA.random() == "" {
			t.Fatal("期望 UA 池永不返回空串")
		}
	}
}

func TestNewClientBadProxy(t *testing.T) {
	if _, err := NewClient("://坏掉的", ""); err == nil {
		t.Fatal("期望非法代理 URL 报错，实际成功")
	}
}

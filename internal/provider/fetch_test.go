package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("页面内容"))
	}))
	defer srv.Close()

	b, err := FetchURL(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("期望成功，实际错误：%v", err)
	}
	if string(b) != "页面内容" {
		t.Fatalf("期望读取完整 body，实际=%q", b)
	}
}

func TestFetchURLNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://elsewhere.example.com")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := FetchURL(context.Background(), srv.Client(), srv.URL)
	var hs *HTTPStatusError
	if !errors.As(err, &hs) {
		t.Fatalf("期望 HTTPStatusError，实际=%v", err)
	}
	if hs.StatusCode != http.StatusForbidden {
		t.Fatalf("期望 403，实际=%d", hs.StatusCode)
	}
	if hs.Location != "https://elsewhere.example.com" {
		t.Fatalf("期望保留 Location，实际=%q", hs.Location)
	}
}

func TestFetchURLNilClient(t *testing.T) {
	if _, err := FetchURL(context.Background(), nil, "https://example.com"); err == nil {
		t.Fatal("期望 nil client 报错，实际成功")
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://a.example.com/v/x", "//pics.example.com/c.jpg", "https://pics.example.com/c.jpg"},
		{"https://a.example.com/v/x", "https://b.example.com/c.jpg", "https://b.example.com/c.jpg"},
		{"https://a.example.com/v/x", "/covers/c.jpg", "https://a.example.com/covers/c.jpg"},
		{"https://a.example.com/en/search.php", "./?v=abc", "https://a.example.com/en/?v=abc"},
		{"https://a.example.com", "", ""},
	}
	for _, c := range cases {
		if got := ResolveURL(c.base, c.href); got != c.want {
			t.Fatalf("ResolveURL(%q, %q)：期望 %q，实际=%q", c.base, c.href, got, c.want)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&NotFoundError{Source: "x", Query: "q"}) {
		t.Fatal("期望识别 NotFoundError")
	}
	if IsNotFound(errors.New("别的错误")) {
		t.Fatal("期望普通错误不被识别为 NotFound")
	}
	if IsNotFound(nil) {
		t.Fatal("期望 nil 不被识别为 NotFound")
	}
}

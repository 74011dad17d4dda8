package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func TestDoSendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing request id")
		}
		if r.URL.Query().Get("q") != "war peace" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"id":"b1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second, staticToken("tok"), nil)
	var out struct {
		ID string `json:"id"`
	}
	if err := c.Get(context.Background(), "/books", url.Values{"q": {"war peace"}}, &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.ID != "b1" {
		t.Fatalf("out = %+v", out)
	}
}

func TestPublicRequestHasNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("public request carried a token")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["login"] != "ann" {
			t.Errorf("body = %v", body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken("tok"), nil)
	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/auth/login", Body: map[string]string{"login": "ann"}, Public: true}, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
}

func TestStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"no such book"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`<html>bad gateway</html>`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second, nil, nil)

	err := c.Get(context.Background(), "/missing", nil, nil)
	if !IsNotFound(err) || Message(err) != "no such book" {
		t.Fatalf("err = %v", err)
	}
	err = c.Get(context.Background(), "/other", nil, nil)
	if !IsStatus(err, http.StatusBadGateway) || Message(err) != "request failed: 502" {
		t.Fatalf("err = %v", err)
	}
	if IsTransport(err) {
		t.Fatal("status error classified as transport")
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := New(addr, time.Second, nil, nil)
	err := c.Get(context.Background(), "/books", nil, nil)
	if !IsTransport(err) {
		t.Fatalf("want transport error, got %v", err)
	}
	if Message(err) != transportMessage {
		t.Fatalf("message = %q", Message(err))
	}
}

func TestUploadMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		data, _ := io.ReadAll(file)
		if header.Filename != "cover.png" || string(data) != "png" {
			t.Errorf("got %s %q", header.Filename, data)
		}
		w.Write([]byte(`{"url":"https://img/cover.png"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, staticToken("tok"), nil)
	var out struct {
		URL string `json:"url"`
	}
	err := c.Upload(context.Background(), Path("admin", "book", "b 1", "image"), "image", File{Name: "cover.png", Body: strings.NewReader("png")}, &out)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if out.URL != "https://img/cover.png" {
		t.Fatalf("out = %+v", out)
	}
}

func TestPathEscapes(t *testing.T) {
	if got := Path("admin", "books", "a/b c"); got != "/admin/books/a%2Fb%20c" {
		t.Fatalf("path = %q", got)
	}
}

// Package testutil runs the admin HTTP stack against an in-memory repository.
package testutil

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	appsession "github.com/faithfulaborisade1/kilkennyquads/internal/admin/session"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

// Token is the credential accepted by servers built with NewServer.
const Token = "ghp_test_token"

// ServerOption customises the test server.
type ServerOption func(*serverSetup)

type serverSetup struct {
	cfg  httpserver.Config
	mode contentstore.WriteMode
}

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(s *serverSetup) {
		s.cfg.BasePath = path
	}
}

// WithWriteMode selects how writes obtain their revision marker.
func WithWriteMode(mode contentstore.WriteMode) ServerOption {
	return func(s *serverSetup) {
		s.mode = mode
	}
}

// Server bundles the running admin with its backing store.
type Server struct {
	*httptest.Server
	Store   *contentstore.MemoryStore
	Editors *editor.Registry
}

// NewServer seeds an in-memory repository with files and runs the admin
// HTTP stack on top of it.
func NewServer(t testing.TB, files map[string][]byte, opts ...ServerOption) *Server {
	t.Helper()

	store := contentstore.NewMemoryStore(files)
	store.AddToken(Token, contentstore.Account{Login: "octo", Name: "Octo Cat"})

	sessions, err := appsession.NewManager(appsession.Config{
		HashKey:  []byte("0123456789abcdef0123456789abcdef"),
		BlockKey: []byte("abcdef0123456789abcdef0123456789"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	setup := &serverSetup{
		cfg: httpserver.Config{
			Address:        ":0",
			BasePath:       "/admin",
			CSRFCookieName: "csrf_token",
			CSRFHeaderName: "X-CSRF-Token",
			Authenticator:  middleware.NewStoreAuthenticator(store),
			Sessions:       sessions,
		},
	}
	for _, opt := range opts {
		opt(setup)
	}
	paths := editor.DefaultPaths()
	registry := editor.NewRegistry(contentstore.NewSyncer(store, setup.mode), paths)
	setup.cfg.Editors = registry
	setup.cfg.Paths = paths

	srv := httpserver.New(setup.cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return &Server{Server: ts, Store: store, Editors: registry}
}

// Client is a cookie-carrying browser stand-in that does not follow redirects.
type Client struct {
	t      testing.TB
	http   *http.Client
	base   *url.URL
	htmx   bool
	prefix string
}

// NewClient returns a client for srv. Admin paths are relative to basePath.
func (s *Server) NewClient(t testing.TB, basePath string) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	base, err := url.Parse(s.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return &Client{
		t: t,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		base:   base,
		prefix: strings.TrimRight(basePath, "/"),
	}
}

// HTMX returns a copy of c that marks every request as sent by htmx.
func (c *Client) HTMX() *Client {
	clone := *c
	clone.htmx = true
	return &clone
}

// CSRFToken returns the double-submit token held in the cookie jar.
func (c *Client) CSRFToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.base.ResolveReference(&url.URL{Path: c.prefix + "/"})) {
		if cookie.Name == "csrf_token" {
			return cookie.Value
		}
	}
	return ""
}

// Get issues a GET for path below the admin base.
func (c *Client) Get(path string) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.url(path), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	return c.do(req)
}

// Post submits form to path below the admin base, adding the CSRF token.
func (c *Client) Post(path string, form url.Values) (*http.Response, []byte) {
	c.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf_token") == "" {
		form.Set("csrf_token", c.CSRFToken())
	}
	req, err := http.NewRequest(http.MethodPost, c.url(path), strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// Login loads the login form and signs in with token.
func (c *Client) Login(token string) *http.Response {
	c.t.Helper()
	c.Get("/login")
	resp, _ := c.Post("/login", url.Values{"token": {token}})
	return resp
}

func (c *Client) url(path string) string {
	target, err := c.base.Parse(c.prefix + path)
	if err != nil {
		c.t.Fatalf("parse path %q: %v", path, err)
	}
	return target.String()
}

func (c *Client) do(req *http.Request) (*http.Response, []byte) {
	c.t.Helper()
	if c.htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, body
}

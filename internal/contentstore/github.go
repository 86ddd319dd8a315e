package contentstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

const (
	githubAcceptHeader = "application/vnd.github.v3+json"
	tracerName         = "github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
)

// HTTPClient matches the subset of http.Client used by GitHubStore.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// GitHubStore implements Store against the GitHub repository contents API.
type GitHubStore struct {
	base   *url.URL
	client HTTPClient
	owner  string
	repo   string
	branch string
	tracer trace.Tracer
}

// GitHubOptions addresses the repository and branch holding the documents.
type GitHubOptions struct {
	BaseURL string
	Owner   string
	Repo    string
	Branch  string
}

// NewGitHubStore constructs a Store backed by the GitHub REST API.
func NewGitHubStore(opts GitHubOptions, client HTTPClient) (*GitHubStore, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("contentstore: base URL is required")
	}
	if strings.TrimSpace(opts.Owner) == "" || strings.TrimSpace(opts.Repo) == "" {
		return nil, errors.New("contentstore: repository owner and name are required")
	}
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("contentstore: parse base URL: %w", err)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	branch := strings.TrimSpace(opts.Branch)
	if branch == "" {
		branch = "main"
	}
	return &GitHubStore{
		base:   parsed,
		client: client,
		owner:  strings.TrimSpace(opts.Owner),
		repo:   strings.TrimSpace(opts.Repo),
		branch: branch,
		tracer: observability.Tracer(tracerName),
	}, nil
}

// Branch returns the branch every read and write targets.
func (s *GitHubStore) Branch() string {
	return s.branch
}

// VerifyCredential calls the authenticated-user endpoint with token.
func (s *GitHubStore) VerifyCredential(ctx context.Context, token string) (account *Account, err error) {
	ctx, span := s.tracer.Start(ctx, "contentstore.VerifyCredential")
	defer func() { observability.EndSpan(span, err) }()

	if strings.TrimSpace(token) == "" {
		return nil, ErrUnauthorized
	}
	req, err := s.newRequest(ctx, http.MethodGet, "user", nil, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload Account
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("contentstore: decode account: %w", err)
	}
	span.SetAttributes(attribute.String("cms.account", payload.Login))
	return &payload, nil
}

type contentsPayload struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Get fetches the document at path on the configured branch.
func (s *GitHubStore) Get(ctx context.Context, token, path string) (file *File, err error) {
	ctx, span := s.tracer.Start(ctx, "contentstore.Get", trace.WithAttributes(attribute.String("cms.path", path)))
	defer func() { observability.EndSpan(span, err) }()

	query := url.Values{}
	query.Set("ref", s.branch)
	req, err := s.newRequest(ctx, http.MethodGet, s.contentsEndpoint(path), query, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload contentsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("contentstore: decode contents: %w", err)
	}
	if payload.Type != "" && payload.Type != "file" {
		return nil, fmt.Errorf("%w: %s is a %s", content.ErrMalformedDocument, path, payload.Type)
	}
	decoded, err := decodeBase64(payload.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", content.ErrMalformedDocument, path, err)
	}
	return &File{
		Path:     path,
		Content:  decoded,
		Revision: Revision(payload.SHA),
	}, nil
}

type putPayload struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Put commits a new version of the document to the configured branch.
func (s *GitHubStore) Put(ctx context.Context, token string, in PutRequest) (rev Revision, err error) {
	ctx, span := s.tracer.Start(ctx, "contentstore.Put", trace.WithAttributes(
		attribute.String("cms.path", in.Path),
		attribute.String("cms.revision", string(in.Revision)),
	))
	defer func() { observability.EndSpan(span, err) }()

	body := putPayload{
		Message: in.Message,
		Content: base64.StdEncoding.EncodeToString(in.Content),
		SHA:     string(in.Revision),
		Branch:  s.branch,
	}
	req, err := s.newJSONRequest(ctx, http.MethodPut, s.contentsEndpoint(in.Path), body, token)
	if err != nil {
		return "", err
	}
	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", s.errorFromResponse(resp)
	}

	var payload putResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("contentstore: decode put response: %w", err)
	}
	return Revision(payload.Content.SHA), nil
}

func (s *GitHubStore) contentsEndpoint(path string) string {
	return "repos/" + s.owner + "/" + s.repo + "/contents/" + strings.TrimPrefix(path, "/")
}

func (s *GitHubStore) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contentstore: request failed: %w", err)
	}
	return resp, nil
}

func (s *GitHubStore) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, token string) (*http.Request, error) {
	urlStr := s.resolve(endpoint, query)
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("contentstore: build request: %w", err)
	}
	req.Header.Set("Accept", githubAcceptHeader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *GitHubStore) newJSONRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var buf bytes.Buffer
	if payload != nil {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("contentstore: encode payload: %w", err)
		}
	}
	req, err := s.newRequest(ctx, method, endpoint, nil, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *GitHubStore) resolve(endpoint string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	resolved := s.base.ResolveReference(ref)
	if len(query) > 0 {
		resolved.RawQuery = query.Encode()
	}
	return resolved.String()
}

func (s *GitHubStore) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	var payload struct {
		Message string `json:"message"`
	}
	message := ""
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
			message = payload.Message
		} else {
			message = strings.TrimSpace(string(body))
		}
	}
	return &StatusError{Status: resp.StatusCode, Message: message}
}

// decodeBase64 accepts the line-wrapped base64 the contents API returns.
func decodeBase64(value string) ([]byte, error) {
	cleaned := strings.NewReplacer("\n", "", "\r", "", " ", "").Replace(value)
	return base64.StdEncoding.DecodeString(cleaned)
}

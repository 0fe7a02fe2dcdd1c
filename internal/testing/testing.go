// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/desertthunder/blastoff/internal/models"
	"github.com/desertthunder/blastoff/internal/platforms"
)

// MockPlatform is a configurable test double for [platforms.Platform]
type MockPlatform struct {
	PlatformName string
	AuthURL      string
	AuthErr      error
	Credential   *models.Credential
	ExchangeErr  error
	Receipt      *models.PostReceipt
	PostErr      error

	mu            sync.Mutex
	PostCalls     int
	ExchangeCalls int
	LastPosted    models.Announcement
}

func (m *MockPlatform) Name() string {
	if m.PlatformName == "" {
		return "mock"
	}
	return m.PlatformName
}

func (m *MockPlatform) BeginAuthorization(ctx context.Context, state string) (*platforms.Authorization, error) {
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	url := m.AuthURL
	if url == "" {
		url = "https://example.com/authorize?state=" + state
	}
	return &platforms.Authorization{URL: url, State: state}, nil
}

func (m *MockPlatform) Exchange(ctx context.Context, hs models.Handshake, code, verifier string) (*models.Credential, error) {
	m.mu.Lock()
	m.ExchangeCalls++
	m.mu.Unlock()

	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	if m.Credential != nil {
		return m.Credential, nil
	}
	return &models.Credential{AccessToken: "mock_token", AccountID: "mock_id", DisplayName: "mock_user"}, nil
}

func (m *MockPlatform) Post(ctx context.Context, cred *models.Credential, a models.Announcement) (*models.PostReceipt, error) {
	m.mu.Lock()
	m.PostCalls++
	m.LastPosted = a
	m.mu.Unlock()

	if m.PostErr != nil {
		return nil, m.PostErr
	}
	if m.Receipt != nil {
		return m.Receipt, nil
	}
	return &models.PostReceipt{Platform: m.Name(), ID: "mock_post_id", Text: a.Message}, nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper returns canned responses in order, recording each request.
type SequenceRoundTripper struct {
	mu        sync.Mutex
	responses []*http.Response
	Requests  []*http.Request
}

func NewSequenceRoundTripper(responses ...*http.Response) *SequenceRoundTripper {
	return &SequenceRoundTripper{responses: responses}
}

func (s *SequenceRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	if len(s.responses) == 0 {
		return nil, errors.New("no more responses")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

// JSONResponse builds an *http.Response with the given status and JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

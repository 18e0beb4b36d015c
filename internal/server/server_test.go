package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guardianeye/guardianeye/internal/config"
	"github.com/guardianeye/guardianeye/internal/detect"
	"github.com/guardianeye/guardianeye/internal/rules"
)

type failingClassifier struct{}

func (failingClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	return "", 0, errors.New("inference failed")
}

func newTestServer(t *testing.T, opts detect.Options) *Server {
	t.Helper()
	cfg, err := config.Load("testdata/does-not-exist.yaml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return New(cfg, detect.New(opts))
}

func rulesOnlyServer(t *testing.T) *Server {
	t.Helper()
	return newTestServer(t, detect.Options{
		RuleText:    rules.CheckText,
		RuleURL:     rules.CheckURL,
		ExtractURLs: rules.ExtractURLs,
	})
}

func postAnalyze(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_MissingInputIs400(t *testing.T) {
	s := rulesOnlyServer(t)

	rec := postAnalyze(t, s, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestAnalyze_InvalidJSONIs400(t *testing.T) {
	s := rulesOnlyServer(t)
	rec := postAnalyze(t, s, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyze_TrustedURLVerdict(t *testing.T) {
	s := rulesOnlyServer(t)
	rec := postAnalyze(t, s, `{"url": "https://github.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var v detect.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if v.Status != detect.StatusSafe {
		t.Fatalf("expected safe, got %s", v.Status)
	}
	if v.DetectionMethod != "rule_based" {
		t.Fatalf("expected rule_based, got %q", v.DetectionMethod)
	}
	if len(v.Reasons) != 1 || v.Reasons[0] != "Trusted domain" {
		t.Fatalf("expected trusted-domain reason, got %v", v.Reasons)
	}
}

func TestAnalyze_PhishingTextVerdict(t *testing.T) {
	s := rulesOnlyServer(t)
	rec := postAnalyze(t, s, `{"text": "URGENT! Verify your account immediately or it will be suspended. Click here: http://bit.ly/xyz"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var v detect.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if v.Status != detect.StatusRisky {
		t.Fatalf("expected risky, got %s", v.Status)
	}
	joined := strings.Join(v.Reasons, "\n")
	if !strings.Contains(joined, "URL shortener used: http://bit.ly/xyz") {
		t.Fatalf("expected shortener reason in %v", v.Reasons)
	}
}

func TestAnalyze_AllCollectorsUnavailableIs503(t *testing.T) {
	s := newTestServer(t, detect.Options{
		Classifier: failingClassifier{},
	})
	rec := postAnalyze(t, s, `{"text": "hello"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealth_ReportsEnabledSources(t *testing.T) {
	s := rulesOnlyServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Status  string   `json:"status"`
		Sources []string `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("expected ok, got %q", resp.Status)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "rules" {
		t.Fatalf("expected rules-only source list, got %v", resp.Sources)
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	s := rulesOnlyServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id header")
	}
}

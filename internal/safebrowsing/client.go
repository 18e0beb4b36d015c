// Package safebrowsing implements the URL-reputation collector backed by the
// Google Safe Browsing v4 Lookup API.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/guardianeye/guardianeye/internal/detect"
)

const defaultEndpoint = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// Confidence values reported per lookup outcome. A reputation match is near
// certain; an empty result says little about a URL the database has simply
// never seen.
const (
	matchConfidence   = 0.95
	noMatchConfidence = 0.05
)

// Config controls a Client. Zero values fall back to defaults.
type Config struct {
	APIKey         string
	Endpoint       string
	ClientID       string
	ClientVersion  string
	MinInterval    time.Duration // floor between outbound calls, default 1s
	RequestTimeout time.Duration // per-call bound, default 10s
}

// Client calls the Safe Browsing lookup API. The rate floor is global: the
// last-call timestamp is shared and concurrent lookups serialize on it.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// New builds a Client. APIKey must be non-empty; callers that have no key
// should not construct a Client at all (the collector is then structurally
// disabled, not unavailable).
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("safebrowsing: API key is empty")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "guardianeye"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "1.0.0"
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}, nil
}

type threatInfo struct {
	ThreatTypes      []string            `json:"threatTypes"`
	PlatformTypes    []string            `json:"platformTypes"`
	ThreatEntryTypes []string            `json:"threatEntryTypes"`
	ThreatEntries    []map[string]string `json:"threatEntries"`
}

type lookupRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo threatInfo `json:"threatInfo"`
}

type lookupResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

// Check looks up one URL. A returned error means the lookup could not be
// performed; it never means the URL is risky.
func (c *Client) Check(ctx context.Context, rawURL string) (detect.Reputation, error) {
	if err := c.throttle(ctx); err != nil {
		return detect.Reputation{}, err
	}

	var req lookupRequest
	req.Client.ClientID = c.cfg.ClientID
	req.Client.ClientVersion = c.cfg.ClientVersion
	req.ThreatInfo = threatInfo{
		ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"},
		PlatformTypes:    []string{"ANY_PLATFORM"},
		ThreatEntryTypes: []string{"URL"},
		ThreatEntries:    []map[string]string{{"url": rawURL}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return detect.Reputation{}, fmt.Errorf("encode lookup request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"?key="+c.cfg.APIKey, bytes.NewReader(body))
	if err != nil {
		return detect.Reputation{}, fmt.Errorf("build lookup request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return detect.Reputation{}, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return detect.Reputation{}, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var result lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return detect.Reputation{}, fmt.Errorf("decode lookup response: %w", err)
	}

	if len(result.Matches) == 0 {
		return detect.Reputation{Malicious: false, Confidence: noMatchConfidence}, nil
	}

	threatTypes := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		threatTypes = append(threatTypes, m.ThreatType)
	}
	return detect.Reputation{
		Malicious:   true,
		Confidence:  matchConfidence,
		ThreatTypes: threatTypes,
	}, nil
}

// throttle enforces the global call-rate floor. The mutex is held while
// waiting, so concurrent callers queue rather than stampede the API.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.cfg.MinInterval - time.Since(c.lastCall); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	c.lastCall = time.Now()
	return nil
}

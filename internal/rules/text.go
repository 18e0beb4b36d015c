package rules

import (
	"fmt"
	"strings"

	"github.com/guardianeye/guardianeye/internal/detect"
)

// Confidence constants for the rule collectors. The rule lists are curated,
// not probabilistic, so a triggered rule carries a fixed confidence.
const (
	riskyTextConfidence = 0.6
	safeConfidence      = 0.05
)

var suspiciousKeywords = []string{
	"verify your account", "suspend", "confirm your identity",
	"click here", "urgent", "security alert", "login now",
	"password", "account", "bank", "paypal", "social security",
	"irs", "tax", "lottery", "prize", "winner", "free", "limited time",
	"act now", "immediately", "dear customer", "dear user",
}

var urgencyWords = []string{"urgent", "immediately", "act now", "limited time"}

var shortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd", "buff.ly",
}

// CheckText runs the static text heuristics: suspicious keywords, shortened
// URLs, and urgency stacking. It is total; malformed input cannot make it fail.
func CheckText(text string) detect.Signal {
	lower := strings.ToLower(text)
	var reasons []string

	for _, keyword := range suspiciousKeywords {
		if strings.Contains(lower, keyword) {
			reasons = append(reasons, fmt.Sprintf("Suspicious keyword: '%s'", keyword))
		}
	}

	for _, u := range ExtractURLs(text) {
		if shortener := matchShortener(u); shortener != "" {
			reasons = append(reasons, fmt.Sprintf("URL shortener used: %s", u))
		}
	}

	urgencyCount := 0
	for _, word := range urgencyWords {
		if strings.Contains(lower, word) {
			urgencyCount++
		}
	}
	if urgencyCount >= 2 {
		reasons = append(reasons, "Excessive urgency detected")
	}

	sig := detect.Signal{
		Source:   detect.SourceRuleText,
		Artifact: text,
		Status:   detect.StatusSafe,
		Evidence: reasons,
	}
	if len(reasons) > 0 {
		sig.Status = detect.StatusRisky
		sig.Confidence = riskyTextConfidence
	} else {
		sig.Confidence = safeConfidence
	}
	return sig
}

func matchShortener(rawURL string) string {
	host := hostOf(rawURL)
	for _, d := range shortenerDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return d
		}
	}
	return ""
}

package rules

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/net/idna"

	"github.com/guardianeye/guardianeye/internal/detect"
)

// trustedDomains are exempt from the structural heuristics below. Legitimate
// multi-subdomain hosts (e.g. deep CDN subdomains of these sites) would
// otherwise trip the subdomain and hyphen checks.
var trustedDomains = []string{
	"google.com", "github.com", "microsoft.com", "apple.com",
	"amazon.com", "paypal.com", "facebook.com", "instagram.com",
	"netflix.com", "linkedin.com", "twitter.com", "youtube.com",
	"wikipedia.org",
}

// brandDomains maps brand names that phishers commonly imitate to the brand's
// own domain. A host containing the brand name without being under that
// domain is treated as mimicry.
var brandDomains = map[string]string{
	"paypal":    "paypal.com",
	"google":    "google.com",
	"amazon":    "amazon.com",
	"apple":     "apple.com",
	"microsoft": "microsoft.com",
	"netflix":   "netflix.com",
	"facebook":  "facebook.com",
	"instagram": "instagram.com",
	"linkedin":  "linkedin.com",
	"github":    "github.com",
}

// suspiciousTLDs is checked in order; the first match wins.
var suspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".club", ".click", ".link", ".buzz",
}

const maxURLConfidence = 0.95

// CheckURL runs the structural URL heuristics. Hosts on the trusted allowlist
// short-circuit to safe before any heuristic runs. It is total.
func CheckURL(rawURL string) detect.Signal {
	sig := detect.Signal{
		Source:   detect.SourceRuleURL,
		Artifact: rawURL,
		Status:   detect.StatusSafe,
	}

	host := hostOf(rawURL)
	if host == "" {
		// Not parseable as a URL; nothing to say about it.
		sig.Confidence = safeConfidence
		return sig
	}

	if isTrusted(host) {
		sig.Confidence = safeConfidence
		sig.Evidence = []string{"Trusted domain"}
		return sig
	}

	var findings []string

	if net.ParseIP(host) != nil {
		findings = append(findings, "Uses IP address instead of domain")
	}

	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			findings = append(findings, fmt.Sprintf("Suspicious TLD: %s", tld))
			break
		}
	}

	if strings.Count(host, ".") >= 3 {
		findings = append(findings, "Excessive subdomains")
	}

	if strings.Contains(host, "--") || strings.Count(host, "-") > 3 {
		findings = append(findings, "Suspicious hyphen pattern in domain")
	}

	if brand := mimickedBrand(host); brand != "" {
		findings = append(findings, fmt.Sprintf("Possible brand impersonation: %s", brand))
	} else if brand := lookalikeBrand(host); brand != "" {
		findings = append(findings, fmt.Sprintf("Domain resembles %s", brand))
	}

	if len(findings) > 0 {
		sig.Status = detect.StatusRisky
		sig.Confidence = math.Min(float64(len(findings))*0.25, maxURLConfidence)
		sig.Evidence = findings
	} else {
		sig.Confidence = safeConfidence
	}
	return sig
}

// hostOf extracts and normalizes the host part of a URL: lower-cased and
// IDN-mapped to ASCII so unicode look-alike hosts compare like their
// punycode form.
func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return host
}

func isTrusted(host string) bool {
	for _, d := range trustedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// mimickedBrand reports the first brand whose name appears inside a host that
// is not under the brand's own domain.
func mimickedBrand(host string) string {
	for _, brand := range brandOrder {
		own := brandDomains[brand]
		if !strings.Contains(host, brand) {
			continue
		}
		if host == own || strings.HasSuffix(host, "."+own) {
			continue
		}
		return brand
	}
	return ""
}

// lookalikeBrand catches typosquats that plain containment misses
// (paypa1.com, arnazon.net). The edit-distance threshold scales with the
// label length so short brands don't match everything.
func lookalikeBrand(host string) string {
	label := registrableLabel(host)
	if label == "" {
		return ""
	}
	for _, brand := range brandOrder {
		if label == brand {
			continue
		}
		thresh := 1
		switch l := len(brand); {
		case l <= 11:
			thresh = 1
		case l <= 15:
			thresh = 2
		default:
			thresh = int(math.Ceil(float64(l) * 0.15))
		}
		if fuzzy.LevenshteinDistance(label, brand) <= thresh {
			return brand
		}
	}
	return ""
}

// registrableLabel returns the label left of the public suffix, e.g.
// "paypa1" for "login.paypa1.com".
func registrableLabel(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return ""
	}
	return labels[len(labels)-2]
}

// brandOrder keeps mimicry evidence deterministic; map iteration is not.
var brandOrder = []string{
	"paypal", "google", "amazon", "apple", "microsoft",
	"netflix", "facebook", "instagram", "linkedin", "github",
}

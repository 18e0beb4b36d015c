package detect

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// ErrNoInput is returned when a request carries neither text nor a URL.
var ErrNoInput = errors.New("request must supply text or a url")

// ErrFusionImpossible is returned when every signal source for a request was
// disabled or unavailable. Callers must be able to tell "we could not check"
// apart from a safe verdict.
var ErrFusionImpossible = errors.New("no signal source available for request")

// TextClassifier is the contract the ML text collector needs. Classify returns
// the predicted label and the probability of that label.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (label string, confidence float64, err error)
}

// Reputation is the outcome of a URL-reputation lookup.
type Reputation struct {
	Malicious   bool
	Confidence  float64
	ThreatTypes []string
}

// ReputationChecker is the contract the URL-reputation collector needs.
// An error means the lookup could not be performed (unavailable), not that
// the URL is risky.
type ReputationChecker interface {
	Check(ctx context.Context, url string) (Reputation, error)
}

// Options selects the collectors an Engine runs. A nil collector is
// structurally disabled: it produces no signal at all, as opposed to an
// unavailable one which produces an unavailable signal per request.
type Options struct {
	RuleText    func(text string) Signal
	RuleURL     func(url string) Signal
	ExtractURLs func(text string) []string

	Classifier TextClassifier
	Reputation ReputationChecker

	// AnnotateUnavailable surfaces "source X unavailable" notes in the
	// verdict's reasons instead of only logging them.
	AnnotateUnavailable bool
}

// Engine fuses the signals of the enabled collectors into one Verdict per
// request. Safe for concurrent use; all per-request state is local.
type Engine struct {
	opts Options
}

// New builds an Engine over the given collector set.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Sources reports which collectors are enabled, for health reporting.
func (e *Engine) Sources() []string {
	var out []string
	if e.opts.RuleText != nil || e.opts.RuleURL != nil {
		out = append(out, "rules")
	}
	if e.opts.Classifier != nil {
		out = append(out, "ml")
	}
	if e.opts.Reputation != nil {
		out = append(out, "url_reputation")
	}
	return out
}

// Analyze runs every enabled collector that applies to the request and fuses
// their signals. The returned signals include unavailable ones, so callers can
// observe degradation.
func (e *Engine) Analyze(ctx context.Context, req Request) (Verdict, []Signal, error) {
	text := strings.TrimSpace(req.Text)
	rawURL := strings.TrimSpace(req.URL)
	if text == "" && rawURL == "" {
		return Verdict{}, nil, ErrNoInput
	}

	// The URL collectors need one URL: the explicit one when given,
	// otherwise the first URL embedded in the text. Extraction has to
	// finish before the reputation call can start.
	targetURL := rawURL
	if targetURL == "" && e.opts.ExtractURLs != nil {
		if urls := e.opts.ExtractURLs(text); len(urls) > 0 {
			targetURL = urls[0]
		}
	}

	// One slot per collector; each goroutine writes only its own slot.
	var (
		wg    sync.WaitGroup
		slots [4]*Signal
	)
	collect := func(i int, fn func() Signal) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := fn()
			slots[i] = &s
		}()
	}

	if e.opts.Reputation != nil && targetURL != "" {
		collect(0, func() Signal { return e.checkReputation(ctx, targetURL) })
	}
	if e.opts.RuleURL != nil && targetURL != "" {
		collect(1, func() Signal { return e.opts.RuleURL(targetURL) })
	}
	if e.opts.RuleText != nil && text != "" {
		collect(2, func() Signal { return e.opts.RuleText(text) })
	}
	if e.opts.Classifier != nil && text != "" {
		collect(3, func() Signal { return e.classify(ctx, text) })
	}
	wg.Wait()

	signals := make([]Signal, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			signals = append(signals, *s)
		}
	}

	for _, s := range signals {
		if s.Status == StatusUnavailable {
			log.Printf("detect: source %s unavailable for request: %s", s.Source, strings.Join(s.Evidence, "; "))
		}
	}

	verdict, err := Fuse(signals, e.opts.AnnotateUnavailable)
	if err != nil {
		return Verdict{}, signals, err
	}
	return verdict, signals, nil
}

func (e *Engine) classify(ctx context.Context, text string) Signal {
	sig := Signal{Source: SourceMLText, Artifact: text}

	label, confidence, err := e.opts.Classifier.Classify(ctx, text)
	if err != nil {
		sig.Status = StatusUnavailable
		sig.Evidence = []string{fmt.Sprintf("classifier error: %v", err)}
		return sig
	}

	// Asymmetric on purpose: a high-probability call is treated as risky
	// even when the label itself says safe. Missed phishing costs more
	// than a false alarm.
	if strings.EqualFold(label, "phishing") || confidence > 0.7 {
		sig.Status = StatusRisky
	} else {
		sig.Status = StatusSafe
	}
	sig.Confidence = confidence
	sig.Evidence = []string{fmt.Sprintf("AI confidence: %.2f, label: %s", confidence, label)}
	return sig
}

func (e *Engine) checkReputation(ctx context.Context, rawURL string) Signal {
	sig := Signal{Source: SourceURLReputation, Artifact: rawURL}

	rep, err := e.opts.Reputation.Check(ctx, rawURL)
	if err != nil {
		sig.Status = StatusUnavailable
		sig.Evidence = []string{fmt.Sprintf("reputation lookup error: %v", err)}
		return sig
	}

	sig.Confidence = rep.Confidence
	if rep.Malicious {
		sig.Status = StatusRisky
		sig.Evidence = []string{
			fmt.Sprintf("Flagged by URL reputation service: %s", strings.Join(rep.ThreatTypes, ", ")),
		}
	} else {
		sig.Status = StatusSafe
	}
	return sig
}

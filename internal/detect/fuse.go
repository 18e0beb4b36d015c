package detect

import "fmt"

// fuseOrder fixes both the evidence ordering in the verdict and the
// tie-breaking precedence when several risky signals report the same
// confidence: reputation over ML over rules, by source trustworthiness.
var fuseOrder = []Source{SourceURLReputation, SourceRuleURL, SourceRuleText, SourceMLText}

var confidencePrecedence = []Source{SourceURLReputation, SourceMLText, SourceRuleURL, SourceRuleText}

// methodNames maps signal sources onto caller-visible detection methods. Both
// rule collectors count as one method.
var methodNames = map[Source]string{
	SourceURLReputation: "url_reputation",
	SourceRuleURL:       "rule_based",
	SourceRuleText:      "rule_based",
	SourceMLText:        "ml",
}

// Fuse combines the signal set produced for one request into a Verdict.
//
// Unavailable signals are excluded from decision-making. The status is the
// logical OR of the remaining verdicts: one risky source outvotes any number
// of safe ones. When risky, the confidence is that of the strongest risky
// signal, ties broken by source precedence; when safe, the weakest safe vote
// is reported, so marginal disagreement is not papered over.
func Fuse(signals []Signal, annotateUnavailable bool) (Verdict, error) {
	var active, unavailable []Signal
	for _, s := range signals {
		if s.Status == StatusUnavailable {
			unavailable = append(unavailable, s)
		} else {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return Verdict{}, ErrFusionImpossible
	}

	risky := false
	for _, s := range active {
		if s.Status == StatusRisky {
			risky = true
			break
		}
	}

	v := Verdict{Reasons: []string{}}
	if risky {
		v.Status = StatusRisky
		v.Confidence = strongestRisky(active)
	} else {
		v.Status = StatusSafe
		v.Confidence = weakestSafe(active)
	}

	// Evidence comes from the signals that agree with the outcome, in a
	// stable source order regardless of which subset of collectors ran.
	contributing := map[Source]bool{}
	for _, src := range fuseOrder {
		for _, s := range active {
			if s.Source != src || s.Status != v.Status {
				continue
			}
			v.Reasons = append(v.Reasons, s.Evidence...)
			if len(s.Evidence) > 0 || s.Status == StatusRisky {
				contributing[s.Source] = true
			}
		}
	}
	if len(contributing) == 0 {
		// A plain safe verdict with no evidence: attribute it to
		// everything that voted.
		for _, s := range active {
			contributing[s.Source] = true
		}
	}
	v.DetectionMethod = methodName(contributing)

	if annotateUnavailable {
		for _, s := range unavailable {
			v.Reasons = append(v.Reasons, fmt.Sprintf("Source %s unavailable", s.Source))
		}
	}
	return v, nil
}

func strongestRisky(active []Signal) float64 {
	best := -1.0
	for _, src := range confidencePrecedence {
		for _, s := range active {
			if s.Source == src && s.Status == StatusRisky && s.Confidence > best {
				best = s.Confidence
			}
		}
	}
	return best
}

func weakestSafe(active []Signal) float64 {
	weakest := 1.0
	for _, s := range active {
		if s.Confidence < weakest {
			weakest = s.Confidence
		}
	}
	return weakest
}

func methodName(contributing map[Source]bool) string {
	names := map[string]bool{}
	for src := range contributing {
		names[methodNames[src]] = true
	}
	if len(names) == 1 {
		for n := range names {
			return n
		}
	}
	return "combined"
}

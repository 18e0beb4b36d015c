package phishguard

import "context"

// Unavailable is a classifier standing in for a model that was configured but
// failed to load. Every call reports the load error, so each request surfaces
// an unavailable ML signal instead of the collector silently vanishing.
type Unavailable struct {
	Err error
}

func (u Unavailable) Classify(ctx context.Context, text string) (string, float64, error) {
	return "", 0, u.Err
}

package console

import (
	_ "embed"
	"net/http"
)

//go:embed console.html
var consoleHTML []byte

// Handler serves the embedded single-page analyzer UI.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(consoleHTML)
	})
}

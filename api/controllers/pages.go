package controllers

import (
	"net/http"
)

const appShell = `<!doctype html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Vitrine</title></head>
<body><div id="root"></div><script src="/static/app.js"></script></body>
</html>
`

// AppShell serves the single-page application shell for every page route
// the gate lets through. Routing beyond this point happens client-side.
func AppShell() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(appShell))
	}
}

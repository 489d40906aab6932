// Package dashboard provides the embedded web UI assets for tripwire.
//
// The page subscribes to the server's SSE stream and falls back to polling
// /api/status in browsers without EventSource. Every label it shows comes
// from the server-side render package.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
//	assets/
//	  index.html    - dashboard page with inline CSS and JavaScript
//
// The "{{.Title}}" marker in index.html is replaced by the server.
//
//go:embed assets/*
var Assets embed.FS

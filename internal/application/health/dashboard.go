package health

import (
	"encoding/json"
	"fmt"
)

// RenderDashboardHTML returns the HTML status page for GET /.
func RenderDashboardHTML(health CollectResult) string {
	b, _ := json.MarshalIndent(map[string]interface{}{
		"status":       health.Status,
		"runtime":      health.Runtime,
		"traffic":      health.Traffic,
		"dependencies": health.Dependencies,
	}, "", "  ")

	badge := "#16a34a"
	if health.Status != "ok" {
		badge = "#dc2626"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Fracton · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --blue: #1D4ED8; --dark: #111827; --bg: #F8F9FA; --muted: #64748b; }
    body { background-color: var(--bg); color: var(--dark); font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 40px; }
    .card { max-width: 720px; margin: 0 auto; background: #fff; border-radius: 8px; padding: 32px; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
    h1 { margin: 0 0 6px 0; font-size: 22px; }
    .status { display: inline-block; padding: 4px 12px; border-radius: 999px; color: #fff; font-weight: 600; background: %s; }
    pre { background: #0f172a; color: #e2e8f0; border-radius: 6px; padding: 16px; overflow-x: auto; font-size: 13px; }
    p.muted { color: var(--muted); font-size: 14px; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Fracton API</h1>
    <p class="muted">Fractional RWA token ledger · <span class="status">%s</span></p>
    <pre>%s</pre>
  </div>
</body>
</html>`, badge, health.Status, string(b))
}

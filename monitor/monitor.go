package monitor

import (
	"context"
	"runtime"
	"time"

	"insulation-crm-api/config"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// RegisterMonitorPage exposes a minimal operations page with a JSON stats
// endpoint behind it.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(200, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>CRM API Monitor</title>
  <style>
    body { background: #111; color: #ddd; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; padding: 2rem; }
    h1 { color: #7aa2f7; }
    table { border-collapse: collapse; margin-top: 1rem; }
    td { padding: 0.4rem 1rem; border-bottom: 1px solid #333; }
    .ok { color: #9ece6a; }
    .down { color: #f7768e; }
  </style>
</head>
<body>
  <h1>Insulation CRM API</h1>
  <table id="stats"></table>
  <script>
    async function refresh() {
      const res = await fetch('/monitor/stats');
      const s = await res.json();
      document.getElementById('stats').innerHTML =
        '<tr><td>Uptime</td><td>' + s.uptime + '</td></tr>' +
        '<tr><td>Goroutines</td><td>' + s.goroutines + '</td></tr>' +
        '<tr><td>Database</td><td class="' + (s.database ? 'ok' : 'down') + '">' + (s.database ? 'up' : 'down') + '</td></tr>' +
        '<tr><td>Cache</td><td class="' + (s.cache ? 'ok' : 'down') + '">' + (s.cache ? 'up' : 'disabled') + '</td></tr>';
    }
    refresh();
    setInterval(refresh, 5000);
  </script>
</body>
</html>`))
	})

	router.GET("/monitor/stats", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbUp := false
		if config.DB != nil {
			if sqlDB, err := config.DB.DB(); err == nil {
				dbUp = sqlDB.PingContext(ctx) == nil
			}
		}

		cacheUp := false
		if config.Cache != nil {
			cacheUp = config.Cache.Ping(ctx).Err() == nil
		}

		c.JSON(200, gin.H{
			"uptime":     time.Since(startedAt).Round(time.Second).String(),
			"goroutines": runtime.NumGoroutine(),
			"database":   dbUp,
			"cache":      cacheUp,
		})
	})
}

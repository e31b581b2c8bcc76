package monitor

import (
	"os"

	"content-approval-api/config"

	"github.com/gin-gonic/gin"
)

// monitorToken gates the ops page and log tail. Both routes return 404
// when MONITOR_TOKEN is unset so nothing is exposed by default.
func monitorToken() string {
	return os.Getenv("MONITOR_TOKEN")
}

func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		token := monitorToken()
		if token == "" || c.Query("token") != token {
			c.JSON(404, gin.H{"error": "Route not found"})
			return
		}
		c.Data(200, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Content Approval API Monitor</title>
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      background: #0f172a;
      color: #e2e8f0;
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      min-height: 100vh;
      padding: 20px;
    }
    .container { max-width: 1100px; margin: 0 auto; }
    h1 { font-size: 1.75rem; margin-bottom: 1.5rem; }
    .card {
      background: rgba(255, 255, 255, 0.05);
      border: 1px solid rgba(255, 255, 255, 0.1);
      border-radius: 12px;
      padding: 1.25rem;
      margin-bottom: 1.5rem;
    }
    #status { font-size: 1.1rem; font-weight: 600; }
    #logs {
      background: rgba(0, 0, 0, 0.35);
      padding: 1rem;
      border-radius: 8px;
      max-height: 500px;
      overflow-y: auto;
      white-space: pre-wrap;
      font-family: 'Monaco', 'Consolas', monospace;
      font-size: 0.85rem;
      line-height: 1.5;
    }
    button {
      padding: 0.5rem 1rem;
      background: #334155;
      color: #e2e8f0;
      border: 1px solid #475569;
      border-radius: 8px;
      cursor: pointer;
      font-size: 0.85rem;
    }
    button:hover { background: #1e293b; }
    .logs-header {
      display: flex;
      justify-content: space-between;
      align-items: center;
      margin-bottom: 0.75rem;
    }
  </style>
</head>
<body>
  <div class="container">
    <h1>Content Approval API</h1>
    <div class="card">
      <div id="status">Status: checking...</div>
    </div>
    <div class="card">
      <div class="logs-header">
        <div>Server Logs</div>
        <button onclick="toggleLive()" id="toggleBtn">Pause Live Logs</button>
      </div>
      <pre id="logs">Loading logs...</pre>
    </div>
  </div>

  <script>
    let liveLogs = true;
    const token = new URLSearchParams(location.search).get('token');
    const logsElement = document.getElementById('logs');
    const statusElement = document.getElementById('status');
    const toggleBtn = document.getElementById('toggleBtn');

    function fetchStatus() {
      fetch('/api/v1/health')
        .then(res => res.json())
        .then(data => {
          statusElement.textContent = 'Status: ' + (data.status === 'ok' ? 'Online' : 'Degraded');
        })
        .catch(() => {
          statusElement.textContent = 'Status: Offline';
        });
    }

    function fetchLogs() {
      if (!liveLogs) return;
      fetch('/logs?token=' + encodeURIComponent(token))
        .then(res => res.text())
        .then(data => {
          logsElement.textContent = data;
          logsElement.scrollTop = logsElement.scrollHeight;
        });
    }

    function toggleLive() {
      liveLogs = !liveLogs;
      toggleBtn.textContent = liveLogs ? 'Pause Live Logs' : 'Resume Live Logs';
    }

    fetchStatus();
    fetchLogs();
    setInterval(fetchStatus, 5000);
    setInterval(fetchLogs, 5000);
  </script>
</body>
</html>`))
	})
}

func RegisterLogsRoute(router *gin.Engine) {
	router.GET("/logs", func(c *gin.Context) {
		token := monitorToken()
		if token == "" || c.Query("token") != token {
			c.JSON(404, gin.H{"error": "Route not found"})
			return
		}
		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(200, "text/plain; charset=utf-8", logData)
	})
}

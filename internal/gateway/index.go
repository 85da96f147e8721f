package gateway

import "net/http"

// handleIndex serves the demo form. Thin glue: submits to /api/queue and
// polls /api/status until the task reaches a terminal state.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>promptq</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
         max-width: 720px; margin: 0 auto; padding: 20px; line-height: 1.6; }
  textarea, button { width: 100%; padding: 12px; border: 1px solid #ddd;
                     border-radius: 6px; font-size: 14px; }
  textarea { min-height: 120px; resize: vertical; font-family: inherit; }
  button { background: #007bff; color: white; border: none; cursor: pointer; margin-top: 10px; }
  button:disabled { background: #6c757d; cursor: not-allowed; }
  .status { padding: 15px; border: 1px solid #ddd; border-radius: 6px; margin: 15px 0;
            background: #f8f9fa; white-space: pre-wrap; }
  .status.completed { border-color: #28a745; background: #d4edda; }
  .status.failed { border-color: #dc3545; background: #f8d7da; }
</style>
</head>
<body>
<h1>Background prompt demo</h1>
<p>Submit a prompt. It is processed in the background; the result arrives via
a signed webhook and this page polls until it lands.</p>
<form id="f">
  <textarea name="prompt" id="prompt" placeholder="Ask me anything..." required></textarea>
  <button type="submit" id="btn">Queue Task</button>
</form>
<div id="out"></div>
<script>
const f = document.getElementById('f');
const out = document.getElementById('out');
const btn = document.getElementById('btn');
let timer = null;

f.addEventListener('submit', async (e) => {
  e.preventDefault();
  clearInterval(timer);
  btn.disabled = true;
  out.innerHTML = '<div class="status">Queueing…</div>';

  const resp = await fetch('/api/queue', {
    method: 'POST',
    headers: {'Content-Type': 'application/x-www-form-urlencoded'},
    body: new URLSearchParams(new FormData(f)),
  });
  const data = await resp.json();
  if (!resp.ok) {
    out.innerHTML = '<div class="status failed">Error: ' + (data.error || resp.status) + '</div>';
    btn.disabled = false;
    return;
  }

  out.innerHTML = '<div class="status">Task queued: ' + data.task_id + '</div>';
  timer = setInterval(() => poll(data.task_id), 2000);
});

async function poll(id) {
  const resp = await fetch('/api/status/' + id);
  const data = await resp.json();
  if (data.status === 'pending') {
    out.innerHTML = '<div class="status">Processing… (' + id + ')</div>';
    return;
  }
  clearInterval(timer);
  btn.disabled = false;
  if (data.status === 'completed') {
    out.innerHTML = '<div class="status completed">' + escapeHTML(data.result) + '</div>';
  } else {
    out.innerHTML = '<div class="status failed">Task failed: ' + escapeHTML(data.error || 'unknown error') + '</div>';
  }
}

function escapeHTML(s) {
  const div = document.createElement('div');
  div.textContent = s || '';
  return div.innerHTML;
}
</script>
</body>
</html>
`

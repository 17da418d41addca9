package main

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Study Room Relay</title>
<meta name="description" content="Realtime collaboration server for study rooms: signaling, chat, shared Pomodoro and whiteboard">
<style>
*{margin:0;padding:0;box-sizing:border-box}
:root{--bg:#14161a;--card:#1e2127;--border:#2c3038;--fg:#e6e6e6;--muted:#7a8089;--radius:6px}
body{font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;background:var(--bg);color:var(--fg);min-height:100vh;display:flex;align-items:center;justify-content:center;padding:24px}
.container{width:100%;max-width:420px;display:flex;flex-direction:column;align-items:center;gap:28px}
.title{font-size:16px;font-weight:600}
.subtitle{font-size:11px;color:var(--muted);text-align:center;line-height:1.6;max-width:340px}
.card{width:100%;background:var(--card);border:1px solid var(--border);border-radius:var(--radius)}
.card-row{display:flex;align-items:center;justify-content:space-between;padding:10px 14px;border-bottom:1px solid var(--border)}
.card-row:last-child{border-bottom:none}
.card-label{font-size:11px;color:var(--muted);text-transform:uppercase;letter-spacing:0.04em}
.card-value{font-size:12px;font-family:'SF Mono',Monaco,Consolas,monospace}
.badge{font-size:10px;font-weight:500;padding:2px 8px;border-radius:99px}
.badge-ok{background:rgba(34,197,94,0.15);color:#4ade80}
.badge-err{background:rgba(239,68,68,0.15);color:#f87171}
.badge-loading{background:rgba(255,255,255,0.06);color:var(--muted)}
.endpoint{display:flex;align-items:center;gap:10px;padding:8px 14px;background:var(--card);border:1px solid var(--border);border-radius:var(--radius);margin-bottom:6px;width:100%}
.method{font-size:9px;font-weight:700;padding:2px 6px;border-radius:3px;background:rgba(255,255,255,0.06);color:var(--muted);font-family:Monaco,Consolas,monospace}
.endpoint-path{font-size:12px;font-family:'SF Mono',Monaco,Consolas,monospace}
.endpoint-desc{font-size:10px;color:var(--muted);margin-left:auto}
</style>
</head>
<body>
<div class="container">
<div class="title">Study Room Relay</div>
<div class="subtitle">Ephemeral study rooms with peer-to-peer video signaling, replicated chat, a shared Pomodoro timer and a live whiteboard.</div>
<div class="card">
<div class="card-row"><span class="card-label">Status</span><span id="status" class="badge badge-loading">Checking</span></div>
<div class="card-row"><span class="card-label">Rooms</span><span id="rooms" class="card-value">–</span></div>
<div class="card-row"><span class="card-label">Connections</span><span id="conns" class="card-value">–</span></div>
</div>
<div style="width:100%">
<div class="endpoint"><span class="method">WS</span><span class="endpoint-path">/ws</span><span class="endpoint-desc">Room events &amp; signaling</span></div>
<div class="endpoint"><span class="method">GET</span><span class="endpoint-path">/health</span><span class="endpoint-desc">Health check</span></div>
<div class="endpoint"><span class="method">GET</span><span class="endpoint-path">/stats</span><span class="endpoint-desc">Room / connection counts</span></div>
</div>
</div>
<script>
(function(){
var s=document.getElementById('status');
function check(){
fetch('/stats').then(function(r){return r.json()}).then(function(j){
s.className='badge badge-ok';s.textContent='Online';
document.getElementById('rooms').textContent=j.rooms;
document.getElementById('conns').textContent=j.connections;
}).catch(function(){s.className='badge badge-err';s.textContent='Offline'});
}
check();setInterval(check,15000);
})();
</script>
</body>
</html>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(indexHTML))
}

package main

import (
	"fmt"
	"net/http"

	"clipvault/internal/auth"
)

// serveUI renders the single embedded gallery page. Everything else is
// fetched from the JSON API by the inline script.
func serveUI(authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <title>ClipVault</title>
  <style>
    :root {
      --snow: #fffbfe;
      --grey: #7a7d7d;
      --dust-grey: #d0cfcf;
      --charcoal: #565254;
      --white: #ffffff;
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      color: var(--charcoal);
      background: radial-gradient(1200px 600px at 20% 10%, var(--snow), var(--white)) fixed;
      font-family: "Garamond", "Palatino Linotype", "Book Antiqua", serif;
      font-size: 16.5px;
    }
    .page { max-width: 1100px; margin: 0 auto; padding: 28px 20px 80px; }
    .logo { font-size: 34px; letter-spacing: 0.5px; margin: 0 0 16px; }
    .panel {
      background: var(--white);
      border: 1px solid var(--dust-grey);
      border-radius: 14px;
      padding: 16px;
      box-shadow: 0 10px 30px rgba(86, 82, 84, 0.08);
    }
    .hidden { display: none; }
    .row { display: flex; flex-wrap: wrap; gap: 10px; align-items: center; }
    input, button { border-radius: 10px; padding: 10px 12px; border: 1px solid var(--dust-grey); font-size: 14px; }
    button { background: var(--charcoal); color: var(--white); cursor: pointer; }
    button.secondary { background: var(--white); color: var(--charcoal); }
    .grid {
      display: grid;
      grid-template-columns: repeat(auto-fill, minmax(240px, 1fr));
      gap: 12px;
      margin-top: 16px;
    }
    .card { border: 1px solid var(--dust-grey); border-radius: 14px; padding: 12px; background: var(--white); }
    .card-title { font-weight: bold; margin-top: 10px; }
    .meta { color: var(--grey); font-size: 12px; margin-top: 4px; }
    .thumb { width: 100%; aspect-ratio: 16 / 9; background: var(--dust-grey); border-radius: 10px; object-fit: cover; }
    .badge { font-size: 11px; color: var(--grey); border: 1px solid var(--dust-grey); border-radius: 8px; padding: 1px 6px; margin-left: 6px; }
    .player-overlay {
      position: fixed; inset: 0; background: rgba(0, 0, 0, 0.7);
      display: none; align-items: center; justify-content: center; z-index: 999; padding: 20px;
    }
    .player-shell { width: min(960px, 100%); background: #111; border-radius: 16px; overflow: hidden; border: 1px solid #333; }
    video { width: 100%; height: auto; display: block; }
  </style>
</head>
<body>
  <div class="page">
    <div class="logo">ClipVault</div>
    <div id="authPanel" class="panel hidden">
      <div class="row">
        <input id="password" placeholder="password" type="password"/>
        <button id="loginBtn">Login</button>
        <button id="logoutBtn" class="secondary">Logout</button>
      </div>
    </div>
    <div id="clips" class="grid"></div>
    <div style="margin-top:20px; color: var(--grey); font-size: 12px;">Build: `+buildVersion+`</div>
  </div>
  <div id="playerOverlay" class="player-overlay">
    <div class="player-shell">
      <video id="playerVideo" controls playsinline></video>
    </div>
  </div>
<script>
const authEnabled = `+boolJS(authSvc.Enabled())+`;
const clipsGrid = document.getElementById('clips');
const authPanel = document.getElementById('authPanel');
const overlay = document.getElementById('playerOverlay');
const playerVideo = document.getElementById('playerVideo');
if (authEnabled) { authPanel.classList.remove('hidden'); }
function fmtSize(bytes) {
  if (bytes > 1024*1024*1024) { return (bytes/(1024*1024*1024)).toFixed(1) + ' GiB'; }
  if (bytes > 1024*1024) { return (bytes/(1024*1024)).toFixed(1) + ' MiB'; }
  return Math.max(1, Math.round(bytes/1024)) + ' KiB';
}
async function loadClips() {
  const res = await fetch('/clips');
  if (!res.ok) { return; }
  const list = await res.json();
  clipsGrid.innerHTML = '';
  list.forEach(c => {
    const el = document.createElement('div');
    el.className = 'card';
    const img = document.createElement('img');
    img.className = 'thumb';
    img.loading = 'lazy';
    img.src = '/clips/' + c.id + '/thumbnail';
    img.alt = c.displayName;
    img.addEventListener('click', () => play(c.id));
    const title = document.createElement('div');
    title.className = 'card-title';
    title.textContent = c.displayName;
    if (c.isFavorite) { title.textContent += ' ★'; }
    if (c.requireAuth) {
      const b = document.createElement('span');
      b.className = 'badge';
      b.textContent = 'private';
      title.appendChild(b);
    }
    const meta = document.createElement('div');
    meta.className = 'meta';
    meta.textContent = fmtSize(c.sizeBytes) + ' · ' + new Date(c.savedAt).toLocaleString();
    el.appendChild(img);
    el.appendChild(title);
    el.appendChild(meta);
    clipsGrid.appendChild(el);
  });
}
function play(id) {
  playerVideo.src = '/clips/' + id + '/media';
  overlay.style.display = 'flex';
  playerVideo.play().catch(() => {});
}
function closePlayer() {
  playerVideo.pause();
  playerVideo.removeAttribute('src');
  playerVideo.load();
  overlay.style.display = 'none';
}
overlay.addEventListener('click', (e) => { if (e.target === overlay) closePlayer(); });
document.addEventListener('keydown', (e) => {
  if (e.key === 'Escape' && overlay.style.display === 'flex') closePlayer();
});
document.getElementById('loginBtn').addEventListener('click', async () => {
  const res = await fetch('/auth/login', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({password: document.getElementById('password').value})
  });
  if (res.ok) { loadClips(); }
});
document.getElementById('logoutBtn').addEventListener('click', async () => {
  await fetch('/auth/logout', {method: 'POST'});
  loadClips();
});
loadClips();
</script>
</body>
</html>`)
	}
}

func boolJS(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

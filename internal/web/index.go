package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Focusday</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --bg: #f4f4f5;
            --panel: #ffffff;
            --text: #27272a;
            --muted: #71717a;
            --line: #e4e4e7;
            --accent: #2563eb;
        }

        [data-theme="dark"] {
            --bg: #18181b;
            --panel: #27272a;
            --text: #e4e4e7;
            --muted: #a1a1aa;
            --line: #3f3f46;
            --accent: #60a5fa;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            padding: 20px;
        }

        header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 24px; }
        header button { background: var(--panel); color: var(--text); border: 1px solid var(--line); border-radius: 16px; padding: 6px 14px; cursor: pointer; }

        #live { background: var(--panel); border-left: 4px solid var(--accent); border-radius: 6px; padding: 14px 18px; margin-bottom: 20px; }
        #live .elapsed { float: right; font-variant-numeric: tabular-nums; color: var(--accent); font-weight: 600; }

        .dashboard { display: flex; gap: 20px; flex-wrap: wrap; }
        .panel { flex: 1; min-width: 300px; background: var(--panel); border-radius: 8px; padding: 20px; }
        .panel h2 { font-size: 1.2rem; margin-bottom: 14px; padding-bottom: 8px; border-bottom: 2px solid var(--accent); }

        .listing { max-height: calc(100vh - 360px); overflow-y: auto; }
        .app-item { display: flex; justify-content: space-between; padding: 10px 6px; border-bottom: 1px solid var(--line); position: relative; }
        .app-item::before { content: ''; position: absolute; left: 0; top: 0; height: 100%; width: var(--bar-width, 0%); background: var(--accent); opacity: 0.12; }
        .domain-item { display: flex; justify-content: space-between; padding: 4px 6px 4px 24px; font-size: 0.85rem; color: var(--muted); }
        .app-time { color: var(--muted); }
        .app-percentage { color: var(--accent); font-weight: 600; display: inline-block; min-width: 4.5em; text-align: right; }
        .loading { color: var(--muted); font-style: italic; }
        .total { margin-top: 16px; padding-top: 12px; border-top: 2px solid var(--line); font-weight: 600; }

        @media (max-width: 1024px) { .dashboard { flex-direction: column; } }
    </style>
</head>
<body>
    <header>
        <h1>Focusday</h1>
        <button onclick="toggleTheme()" title="Toggle theme">Theme</button>
    </header>
    <div id="live"><span class="app">Not tracking</span><span class="elapsed"></span></div>
    <div class="dashboard">
        <div class="panel">
            <h2>Today</h2>
            <div id="today" hx-get="/api/report?period=day" hx-trigger="load, every 30s, refresh" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
        <div class="panel">
            <h2>Last 7 Days</h2>
            <div hx-get="/api/report?period=week" hx-trigger="load, every 60s, refresh" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
        <div class="panel">
            <h2>This Month</h2>
            <div hx-get="/api/report?period=month" hx-trigger="load, every 60s, refresh" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
    </div>
    <script>
        function setTheme(theme) {
            document.documentElement.setAttribute('data-theme', theme);
            localStorage.setItem('theme', theme);
        }

        function toggleTheme() {
            setTheme(document.documentElement.getAttribute('data-theme') === 'dark' ? 'light' : 'dark');
        }

        function formatElapsed(s) {
            const h = Math.floor(s / 3600), m = Math.floor(s % 3600 / 60);
            return (h ? h + 'h ' : '') + String(m).padStart(2, '0') + 'm ' + String(s % 60).padStart(2, '0') + 's';
        }

        function connectLive() {
            const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/api/live');
            ws.onmessage = (ev) => {
                const msg = JSON.parse(ev.data);
                if (msg.type === 'progress') {
                    const p = msg.progress;
                    document.querySelector('#live .app').textContent = p.app + (p.domain ? ' / ' + p.domain : '') + ' - ' + p.title;
                    document.querySelector('#live .elapsed').textContent = formatElapsed(p.elapsedTime);
                } else if (msg.type === 'record_updated') {
                    document.querySelectorAll('[hx-get]').forEach((el) => htmx.trigger(el, 'refresh'));
                }
            };
            ws.onclose = () => setTimeout(connectLive, 3000);
        }

        const saved = localStorage.getItem('theme');
        setTheme(saved || (window.matchMedia('(prefers-color-scheme: dark)').matches ? 'dark' : 'light'));
        connectLive();
    </script>
</body>
</html>`

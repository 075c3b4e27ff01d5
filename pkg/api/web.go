package api

const indexTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>YT Downloader</title>
    <style>
        :root { --bg: #121212; --card: #1e1e1e; --text: #e0e0e0; --accent: #ff4444; }
        body { background: var(--bg); color: var(--text); font-family: system-ui, sans-serif; display: grid; place-items: center; min-height: 100vh; margin: 0; }
        .container { background: var(--card); padding: 2rem; border-radius: 12px; box-shadow: 0 10px 30px rgba(0,0,0,0.5); width: 90%; max-width: 420px; text-align: center; }
        h1 { margin: 0 0 1rem; font-size: 1.5rem; color: var(--accent); }
        input, select { width: 100%; padding: 12px; margin: 6px 0; border: 1px solid #333; border-radius: 6px; background: #252525; color: #fff; box-sizing: border-box; outline: none; }
        input:focus, select:focus { border-color: var(--accent); }
        button { width: 100%; padding: 12px; margin-top: 6px; border: none; border-radius: 6px; background: var(--accent); color: white; font-weight: bold; cursor: pointer; }
        button:disabled { background: #555; cursor: not-allowed; }
        #preview img { width: 100%; border-radius: 6px; margin-top: 10px; }
        #preview .title { font-weight: bold; margin: 6px 0; }
        #result { margin-top: 16px; line-height: 1.6; word-break: break-word; }
        a { display: inline-block; color: #4ea8de; text-decoration: none; border: 1px solid #4ea8de; padding: 5px 10px; border-radius: 4px; }
        .hint { color: #888; font-size: 0.8rem; }
        .error { color: var(--accent); font-size: 0.9rem; }
    </style>
</head>
<body>
    <div class="container">
        <h1>YouTube Downloader</h1>
        <form id="dlForm">
            <input type="text" id="url" placeholder="Paste YouTube URL..." required>
            <input type="text" id="fid" placeholder="File name (letters, digits, - and _)" required>
            <select id="format">
                <option value="video">Video (mp4)</option>
                <option value="audio">Audio (mp3)</option>
            </select>
            <button type="submit" id="btn">Download</button>
        </form>
        <div class="hint">Files larger than {{.MaxSizeMB}} MB are rejected.</div>
        <div id="preview"></div>
        <div id="result"></div>
    </div>

    <script>
        const f = document.getElementById('dlForm'),
              u = document.getElementById('url'),
              id = document.getElementById('fid'),
              p = document.getElementById('preview'),
              r = document.getElementById('result'),
              b = document.getElementById('btn');

        const text = (s) => { const d = document.createElement('div'); d.textContent = s; return d.innerHTML; };

        u.onchange = async () => {
            p.innerHTML = '';
            try {
                const resp = await fetch('/api/info?url=' + encodeURIComponent(u.value));
                if (!resp.ok) return;
                const info = await resp.json();
                p.innerHTML = '<img src="' + text(info.thumbnailUrl) + '" alt="">' +
                    '<div class="title">' + text(info.title || info.videoId) + '</div>';
                if (!id.value) id.value = info.videoId;
            } catch (err) {}
        };

        f.onsubmit = async (e) => {
            e.preventDefault();
            b.disabled = true;
            r.innerHTML = 'Processing...';

            try {
                const resp = await fetch('/api/download', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify({url: u.value, id: id.value, format: document.getElementById('format').value})
                });
                const data = await resp.json();
                if (!resp.ok) {
                    throw new Error(data.errorId ? data.error + ' (ref ' + data.errorId + ')' : data.error);
                }
                r.innerHTML = '<div>' + text(data.message) + '</div>' +
                    '<a href="' + text(data.presignedUrl) + '" target="_blank">Download file</a>';
            } catch (err) {
                r.innerHTML = '<div class="error">' + text(err.message) + '</div>';
            } finally {
                b.disabled = false;
            }
        };
    </script>
</body>
</html>
`

// HTTP handlers: the websocket upgrade endpoint, a health check, and a
// built-in browser page for poking at the protocol.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"groupchat/internal/chat"
)

// NewWebSocketHandler returns the /ws upgrade handler. Every accepted
// connection gets a Client whose send channel backs a fresh chat session
// in the room named by the "room" query parameter.
func NewWebSocketHandler(cfg Config, gateway *Gateway, registry *chat.Registry, jokes chat.JokeProvider, logger *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     newOriginChecker(cfg.Origins(), logger).check,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		roomName := r.URL.Query().Get("room")
		if roomName == "" {
			http.Error(w, "Missing required query parameter: room", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := newClient(conn, cfg, gateway, logger)
		client.bindSession(chat.NewSession(registry, roomName, client.enqueue, jokes, logger))
		gateway.start(client)
	}
}

// HealthHandler reports liveness as plain text.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "groupchat server is running!")
}

// TestPageHandler serves a minimal browser client speaking the chat
// protocol, handy for manual testing against a local server.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprint(w, testPageHTML)
}

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>groupchat test page</title>
    <style>
        body { font-family: sans-serif; margin: 20px; }
        #log { border: 1px solid #ccc; height: 300px; padding: 10px; overflow-y: scroll; margin: 10px 0; }
        .note { color: gray; font-style: italic; }
        input { padding: 4px; }
    </style>
</head>
<body>
    <h1>groupchat</h1>
    <div>
        <input id="room" placeholder="room" value="lobby">
        <input id="name" placeholder="your name">
        <button onclick="join()">Join</button>
    </div>
    <div id="log"></div>
    <div>
        <input id="text" placeholder="say something..." size="50">
        <button onclick="send()">Send</button>
        <button onclick="ws.send(JSON.stringify({type: 'get-joke'}))">Joke</button>
        <button onclick="ws.send(JSON.stringify({type: 'get-members'}))">Members</button>
    </div>
    <script>
        let ws = null;
        const log = document.getElementById('log');

        function append(cls, text) {
            const div = document.createElement('div');
            div.className = cls;
            div.textContent = text;
            log.appendChild(div);
            log.scrollTop = log.scrollHeight;
        }

        function join() {
            const room = document.getElementById('room').value;
            ws = new WebSocket('ws://' + location.host + '/ws?room=' + encodeURIComponent(room));
            ws.onopen = () => ws.send(JSON.stringify({type: 'join', name: document.getElementById('name').value}));
            ws.onmessage = (ev) => {
                const msg = JSON.parse(ev.data);
                if (msg.type === 'note') append('note', msg.text);
                else append('chat', msg.name + ': ' + msg.text);
            };
            ws.onclose = () => append('note', 'disconnected');
        }

        function send() {
            const input = document.getElementById('text');
            if (ws && input.value) {
                ws.send(JSON.stringify({type: 'chat', text: input.value}));
                input.value = '';
            }
        }

        document.getElementById('text').addEventListener('keypress', (e) => {
            if (e.key === 'Enter') send();
        });
    </script>
</body>
</html>`

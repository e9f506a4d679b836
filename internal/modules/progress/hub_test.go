package progress

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zap.NewNop())
	router := gin.New()
	router.GET("/progress/ws", hub.serve)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/progress/ws"
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClientCount(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d, have %d", want, hub.ClientCount())
}

func TestNotifyReachesSubscriber(t *testing.T) {
	hub, wsURL := newTestHub(t)
	conn := dial(t, wsURL)
	defer conn.Close()
	waitClientCount(t, hub, 1)

	hub.Notify("status", map[string]interface{}{"message": "正在处理: a.png"})

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var evt Event
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Type != "status" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestDeadSubscriberIsDroppedWithoutStallingNotify(t *testing.T) {
	hub, wsURL := newTestHub(t)

	dead := dial(t, wsURL)
	live := dial(t, wsURL)
	defer live.Close()
	waitClientCount(t, hub, 2)

	dead.Close()
	waitClientCount(t, hub, 1)

	// Notify must return promptly and still reach the remaining client.
	done := make(chan struct{})
	go func() {
		hub.Notify("marker", map[string]interface{}{"label": "a.png"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(writeWait + 5*time.Second):
		t.Fatalf("notify stalled on a dead subscriber")
	}

	_ = live.SetReadDeadline(time.Now().Add(5 * time.Second))
	var evt Event
	if err := live.ReadJSON(&evt); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if evt.Type != "marker" {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestCloseDisconnectsSubscribers(t *testing.T) {
	hub, wsURL := newTestHub(t)
	conn := dial(t, wsURL)
	defer conn.Close()
	waitClientCount(t, hub, 1)

	hub.Close()
	if hub.ClientCount() != 0 {
		t.Fatalf("close left %d clients registered", hub.ClientCount())
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection should be closed")
	}
}

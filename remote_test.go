package pipeview

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialRemote(t *testing.T, s *RemoteServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) RemoteStatus {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var st RemoteStatus
	require.NoError(t, conn.ReadJSON(&st))
	return st
}

func TestRemoteReloadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleGeometry), 0o644))

	u := NewUpdates()
	s := NewRemoteServer(path, u, discardLogger())
	s.SetCurrent(DemoGeometry())
	conn := dialRemote(t, s)

	hello := readStatus(t, conn)
	assert.Equal(t, "hello", hello.Event)
	require.NotNil(t, hello.Stats)
	assert.Equal(t, 100, hello.Stats.Pipes)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("reload\n")))
	applied := readStatus(t, conn)
	assert.Equal(t, "applied", applied.Event)
	assert.Equal(t, "file", applied.Source)
	require.NotNil(t, applied.Stats)
	assert.Equal(t, 2, applied.Stats.Pipes)

	g, ok := u.Poll()
	require.True(t, ok)
	assert.Equal(t, "sample", g.Metadata.Description)
	assert.Equal(t, 1, s.ClientCount())
}

func TestRemoteReloadFromMessage(t *testing.T) {
	u := NewUpdates()
	s := NewRemoteServer("", u, discardLogger())
	conn := dialRemote(t, s)

	hello := readStatus(t, conn)
	assert.Nil(t, hello.Stats)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(sampleGeometry)))
	applied := readStatus(t, conn)
	assert.Equal(t, "applied", applied.Event)
	assert.Equal(t, "message", applied.Source)

	_, ok := u.Poll()
	assert.True(t, ok)
}

func TestRemoteErrors(t *testing.T) {
	testCases := []struct {
		name   string
		msg    string
		source string
	}{
		{name: "Invalid document", msg: `{"lines": [`, source: "message"},
		{name: "Invalid geometry", msg: `{"lines": [{"name": "l", "vertices": [{"position": [0,0,0], "color": [1,1,1]}]}]}`, source: "message"},
		{name: "Reload without a file", msg: "reload", source: "file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := NewUpdates()
			s := NewRemoteServer("", u, discardLogger())
			conn := dialRemote(t, s)
			readStatus(t, conn)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tc.msg)))
			st := readStatus(t, conn)

			assert.Equal(t, "error", st.Event)
			assert.Equal(t, tc.source, st.Source)
			assert.NotEmpty(t, st.Error)
			_, ok := u.Poll()
			assert.False(t, ok)
		})
	}
}

func TestRemoteBroadcastReachesEveryClient(t *testing.T) {
	u := NewUpdates()
	s := NewRemoteServer("", u, discardLogger())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	var conns []*websocket.Conn
	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()
		readStatus(t, conn)
		conns = append(conns, conn)
	}
	require.Eventually(t, func() bool { return s.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conns[0].WriteMessage(websocket.TextMessage, []byte(`{}`)))
	for _, conn := range conns {
		assert.Equal(t, "applied", readStatus(t, conn).Event)
	}
}

func TestRemoteDropsClientWhenHelloFails(t *testing.T) {
	s := NewRemoteServer("", NewUpdates(), discardLogger())
	added := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			added <- err
			return
		}
		conn.Close()
		added <- s.addClient(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case err := <-added:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("handler did not run")
	}
	assert.Zero(t, s.ClientCount())
}

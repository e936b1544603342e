package realtime

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLineConn_ReadFrame(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := newJSONLineConn(client)
	defer conn.Close()

	go func() {
		server.Write([]byte(`{"event":"new_notification","data":{"id":"n1","title":"hola"}}` + "\n"))
	}()

	f, err := conn.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, eventNewNotification, f.Event)
	assert.JSONEq(t, `{"id":"n1","title":"hola"}`, string(f.Data))
}

func TestJSONLineConn_WriteFrame(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := newJSONLineConn(client)
	defer conn.Close()

	done := make(chan Frame, 1)
	go func() {
		peer := newJSONLineConn(server)
		f, err := peer.ReadFrame()
		if err != nil {
			close(done)
			return
		}
		done <- f
	}()

	err := conn.WriteFrame(Frame{Event: eventAuthenticate, Data: []byte(`{"employeeId":"emp-1"}`)})
	require.NoError(t, err)

	f, ok := <-done
	require.True(t, ok, "peer failed to decode frame")
	assert.Equal(t, eventAuthenticate, f.Event)
	assert.JSONEq(t, `{"employeeId":"emp-1"}`, string(f.Data))
}

func TestJSONLineConn_ReadAfterClose(t *testing.T) {
	client, server := net.Pipe()
	server.Close()

	conn := newJSONLineConn(client)
	conn.Close()

	_, err := conn.ReadFrame()
	assert.Error(t, err)
}

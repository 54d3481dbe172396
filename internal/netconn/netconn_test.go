package netconn

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvein/blocksrv/internal/proto"
)

func pipe(t *testing.T) (server, client net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })
	return a, b
}

func TestReadPacketDecodesWhatClientWrote(t *testing.T) {
	server, client := pipe(t)
	conn, _ := New(server)

	go func() {
		require.NoError(t, proto.WriteFrame(client, []byte("client-hello")))
	}()

	body, err := conn.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte("client-hello"), body)
}

func TestSendWritesAFrameTheClientCanDecode(t *testing.T) {
	server, client := pipe(t)
	_, sender := New(server)

	go func() {
		require.NoError(t, sender.Send([]byte("server-hello")))
	}()

	fc := proto.NewFrameCodec(client)
	body, err := fc.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte("server-hello"), body)
}

func TestSendAfterCloseIsNoOp(t *testing.T) {
	server, _ := pipe(t)
	conn, sender := New(server)
	require.NoError(t, conn.Close())
	assert.NoError(t, sender.Send([]byte("ignored")))
}

func TestEnableCompressionAppliesToSend(t *testing.T) {
	server, client := pipe(t)
	conn, sender := New(server)

	handler, err := proto.NewCompressionHandler(1, 6)
	require.NoError(t, err)
	conn.EnableCompression(handler)

	payload := []byte("hello-compressed-payload-thats-long-enough")
	go func() {
		require.NoError(t, sender.Send(payload))
	}()

	fc := proto.NewFrameCodec(client)
	frame, err := fc.ReadFrame()
	require.NoError(t, err)

	got, err := handler.Unpack(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestEnableCompressionAppliesToReadPacket(t *testing.T) {
	server, client := pipe(t)
	conn, _ := New(server)

	handler, err := proto.NewCompressionHandler(1, 6)
	require.NoError(t, err)
	conn.EnableCompression(handler)

	payload := []byte("inbound-compressed-payload-thats-long-enough")
	packed, err := handler.Pack(payload)
	require.NoError(t, err)

	go func() {
		require.NoError(t, proto.WriteFrame(client, packed))
	}()

	got, err := conn.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLatencyReflectsMostRecentRecording(t *testing.T) {
	server, _ := pipe(t)
	conn, _ := New(server)

	assert.Equal(t, time.Duration(0), conn.Latency())
	conn.RecordLatency(37 * time.Millisecond)
	assert.Equal(t, 37*time.Millisecond, conn.Latency())
}

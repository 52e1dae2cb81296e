package stomp

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-stomp/stomp/v3/frame"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

type connectionState struct {
	connected bool
	err       error
}

type recordingHandler struct {
	messages chan string
	states   chan connectionState
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		messages: make(chan string, 16),
		states:   make(chan connectionState, 16),
	}
}

func (h *recordingHandler) HandleMessage(body []byte) {
	h.messages <- string(body)
}

func (h *recordingHandler) HandleConnectionState(connected bool, err error) {
	h.states <- connectionState{connected: connected, err: err}
}

type brokerLog struct {
	frames chan *frame.Frame
}

// newFakeBroker sobe um broker mínimo que responde CONNECTED e publica os corpos após o SUBSCRIBE.
func newFakeBroker(t *testing.T, bodies ...string) (string, *brokerLog) {
	t.Helper()

	received := &brokerLog{frames: make(chan *frame.Frame, 16)}
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		reader := frame.NewReader(conn)
		writer := frame.NewWriter(conn)
		for {
			f, err := reader.Read()
			if err != nil {
				return
			}
			if f == nil {
				continue
			}

			received.frames <- f
			switch f.Command {
			case frame.CONNECT:
				_ = writer.Write(frame.New(frame.CONNECTED, "version", "1.2"))
			case frame.SUBSCRIBE:
				for i, body := range bodies {
					msg := frame.New(frame.MESSAGE,
						"destination", f.Header.Get("destination"),
						"subscription", f.Header.Get("id"),
						"message-id", string(rune('a'+i)),
					)
					msg.Body = []byte(body)
					_ = writer.Write(msg)
				}
			case frame.DISCONNECT:
				if receipt := f.Header.Get("receipt"); receipt != "" {
					_ = writer.Write(frame.New(frame.RECEIPT, "receipt-id", receipt))
				}
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), received
}

func nextFrame(t *testing.T, log *brokerLog) *frame.Frame {
	t.Helper()
	select {
	case f := <-log.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("broker não recebeu frame")
		return nil
	}
}

func nextState(t *testing.T, h *recordingHandler) connectionState {
	t.Helper()
	select {
	case state := <-h.states:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("estado de conexão não notificado")
		return connectionState{}
	}
}

func TestSubscriber_Run(t *testing.T) {
	url, broker := newFakeBroker(t, `[{"postId":"p1"}]`, `{"kind":"kpis","version":2,"data":[]}`)

	subscriber, err := NewSubscriber(Config{URL: url})
	require.NoError(t, err)

	handler := newRecordingHandler()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- subscriber.Run(ctx, handler) }()

	connect := nextFrame(t, broker)
	assert.Equal(t, frame.CONNECT, connect.Command)
	assert.Contains(t, connect.Header.Get("accept-version"), "1.2")
	assert.Equal(t, "127.0.0.1", connect.Header.Get("host"))
	assert.Equal(t, "0,0", connect.Header.Get("heart-beat"))

	subscribe := nextFrame(t, broker)
	assert.Equal(t, frame.SUBSCRIBE, subscribe.Command)
	assert.Equal(t, DefaultTopic, subscribe.Header.Get("destination"))
	assert.Equal(t, "auto", subscribe.Header.Get("ack"))
	assert.True(t, strings.HasPrefix(subscribe.Header.Get("id"), "sub-"))

	assert.Equal(t, connectionState{connected: true}, nextState(t, handler))

	for _, want := range []string{`[{"postId":"p1"}]`, `{"kind":"kpis","version":2,"data":[]}`} {
		select {
		case got := <-handler.messages:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("mensagem não entregue")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run não retornou após cancelamento")
	}

	assert.Equal(t, frame.DISCONNECT, nextFrame(t, broker).Command)
	assert.Equal(t, connectionState{connected: false}, nextState(t, handler))
}

func TestSubscriber_RunDesisteAposMaxRetries(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {}))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	subscriber, err := NewSubscriber(Config{
		URL:             url,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxRetries:      2,
		DialTimeout:     time.Second,
	})
	require.NoError(t, err)

	handler := newRecordingHandler()
	err = subscriber.Run(context.Background(), handler)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))

	// tentativa inicial + 2 reconexões
	require.Len(t, handler.states, 3)
	for i := 0; i < 3; i++ {
		state := <-handler.states
		assert.False(t, state.connected)
		assert.Error(t, state.err)
	}
}

func TestSubscriber_RunErroDoBroker(t *testing.T) {
	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		if _, err := frame.NewReader(conn).Read(); err != nil {
			return
		}
		_ = frame.NewWriter(conn).Write(frame.New(frame.ERROR, "message", "acesso negado"))
	}))
	t.Cleanup(srv.Close)

	subscriber, err := NewSubscriber(Config{
		URL:             "ws" + strings.TrimPrefix(srv.URL, "http"),
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxRetries:      1,
	})
	require.NoError(t, err)

	handler := newRecordingHandler()
	err = subscriber.Run(context.Background(), handler)
	assert.True(t, errors.Is(err, ErrRetriesExhausted))

	state := nextState(t, handler)
	assert.False(t, state.connected)
	assert.True(t, errors.Is(state.err, ErrBrokerError))
}

func TestNewSubscriber(t *testing.T) {
	_, err := NewSubscriber(Config{URL: "://"})
	assert.True(t, errors.Is(err, ErrInvalidURL))

	s, err := NewSubscriber(Config{URL: "wss://co-kpi-backend.herokuapp.com/ws/kpi/websocket"})
	require.NoError(t, err)
	assert.Equal(t, "https://co-kpi-backend.herokuapp.com", s.cfg.Origin)
	assert.Equal(t, "co-kpi-backend.herokuapp.com", s.cfg.Host)
	assert.Equal(t, DefaultTopic, s.cfg.Topic)
}

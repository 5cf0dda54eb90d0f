package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
)

// fakeConn is an in-memory Conn. Reads block until Close.
type fakeConn struct {
	written chan Message
	inbound chan []byte

	mu     sync.Mutex
	closed chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		written: make(chan Message, 16),
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (f *fakeConn) SetReadLimit(int64)                {}
func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.inbound:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errors.New("closed")
	}
}

func (f *fakeConn) WriteMessage(typ int, data []byte) error {
	switch typ {
	case websocket.TextMessage:
		f.written <- NewJSONMessage(data)
	case websocket.BinaryMessage:
		f.written <- NewBinaryMessage(data)
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("status")
	go h.Run(ctx)

	conns := []*fakeConn{newFakeConn(), newFakeConn()}
	for _, c := range conns {
		go NewClient(h, c).Run()
	}
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	if err := h.BroadcastEvent("frame", map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}

	for i, c := range conns {
		select {
		case msg := <-c.written:
			var env struct {
				Type    string         `json:"type"`
				Payload map[string]int `json:"payload"`
			}
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				t.Fatalf("client %d: %v", i, err)
			}
			if env.Type != "frame" || env.Payload["n"] != 1 {
				t.Errorf("client %d got %+v", i, env)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %d got nothing", i)
		}
	}
}

func TestHub_InitialMessagesFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("status")
	go h.Run(ctx)

	c := newFakeConn()
	hello, _ := Encode("snapshot", "hello")
	go NewClient(h, c, hello).Run()

	select {
	case msg := <-c.written:
		if string(msg.Data) != string(hello.Data) {
			t.Errorf("first message = %s", msg.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial message")
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("camera")
	go h.Run(ctx)

	c := newFakeConn()
	go NewClient(h, c).Run()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	c.Close()
	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

func TestHub_OnMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("frames")
	go h.Run(ctx)

	got := make(chan string, 1)
	c := newFakeConn()
	client := NewClient(h, c)
	client.OnMessage = func(data []byte) { got <- string(data) }
	go client.Run()

	c.inbound <- []byte(`{"faces":[]}`)
	select {
	case s := <-got:
		if s != `{"faces":[]}` {
			t.Errorf("got %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("OnMessage not called")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New("alerts")
	go h.Run(ctx)

	c := newFakeConn()
	go NewClient(h, c).Run()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	cancel()
	<-h.Done()

	select {
	case <-c.closed:
	case <-time.After(time.Second):
		t.Fatal("client connection not closed on hub stop")
	}

	// Joining a stopped hub closes the connection straight away.
	late := newFakeConn()
	NewClient(h, late).Run()
	select {
	case <-late.closed:
	default:
		t.Error("late client not closed")
	}
}

// stuckConn never completes a write until closed.
type stuckConn struct{ *fakeConn }

func (s stuckConn) WriteMessage(int, []byte) error {
	<-s.closed
	return errors.New("closed")
}

func TestClient_SendOnlyReachesTarget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("frames")
	go h.Run(ctx)

	a, b := newFakeConn(), newFakeConn()
	ca := NewClient(h, a)
	go ca.Run()
	go NewClient(h, b).Run()
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	reply, _ := Encode("report", "for a")
	if !ca.Send(reply) {
		t.Fatal("Send returned false")
	}

	select {
	case msg := <-a.written:
		if string(msg.Data) != string(reply.Data) {
			t.Errorf("got %s, want %s", msg.Data, reply.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("target client got nothing")
	}
	select {
	case msg := <-b.written:
		t.Errorf("other client got %s", msg.Data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_SendAfterHubStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New("frames")
	go h.Run(ctx)

	c := NewClient(h, newFakeConn())
	cancel()
	<-h.Done()

	msg, _ := Encode("report", "late")
	if c.Send(msg) {
		t.Error("Send on a stopped hub should report false")
	}
}

// Run with -race: replies and broadcasts race the hub dropping a slow client.
func TestClient_SendWhileSlowClientDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := New("frames")
	go h.Run(ctx)

	conn := stuckConn{newFakeConn()}
	defer conn.Close()
	client := NewClient(h, conn)
	go client.Run()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	msg, _ := Encode("report", "x")
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			h.Broadcast(msg)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			client.Send(msg)
		}
	}()
	wg.Wait()

	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

package chat

import (
	"testing"

	"go.uber.org/zap"
)

const sampleMessageFrame = `{
	"type": "message", "id": 10, "content": "hello",
	"senderId": 2, "senderName": "Ann", "chatId": "c1",
	"createdAt": "2026-01-02T15:04:05Z", "read": false, "subtype": "DIRECT"
}`

func TestDispatch_MultipleSubscribers(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var first, second []Message
	d.on(EventMessage, func(e Event) { first = append(first, *e.Message) })
	d.on(EventMessage, func(e Event) { second = append(second, *e.Message) })

	d.dispatchFrame([]byte(sampleMessageFrame))

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("handler calls = %d, %d, want 1 each", len(first), len(second))
	}
	if first[0].Content != "hello" || second[0].Content != "hello" {
		t.Errorf("decoded contents = %q, %q, want %q", first[0].Content, second[0].Content, "hello")
	}
	if first[0].ID != 10 || first[0].SenderName != "Ann" {
		t.Errorf("decoded message = %+v", first[0])
	}
}

func TestDispatch_HandlerPanicIsolated(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	calls := 0
	d.on(EventMessage, func(e Event) { calls++ })
	d.on(EventMessage, func(e Event) { panic("boom") })
	d.on(EventMessage, func(e Event) { calls++ })

	d.dispatchFrame([]byte(sampleMessageFrame))

	if calls != 2 {
		t.Errorf("surviving handler calls = %d, want 2", calls)
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	var kept, removed int
	d.on(EventMessage, func(e Event) { kept++ })
	unsub := d.on(EventMessage, func(e Event) { removed++ })

	unsub()
	unsub()

	d.dispatchFrame([]byte(sampleMessageFrame))

	if removed != 0 {
		t.Errorf("removed handler called %d times, want 0", removed)
	}
	if kept != 1 {
		t.Errorf("remaining handler called %d times, want 1", kept)
	}
}

func TestUnsubscribe_DuringDispatch(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	calls := 0
	var unsub func()
	unsub = d.on(EventMessage, func(e Event) {
		calls++
		unsub()
	})

	d.dispatchFrame([]byte(sampleMessageFrame))
	d.dispatchFrame([]byte(sampleMessageFrame))

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestDispatch_MalformedFrameDropped(t *testing.T) {
	d := newDispatcher(zap.NewNop())

	calls := 0
	d.on(EventMessage, func(e Event) { calls++ })

	d.dispatchFrame([]byte(`{not json`))
	d.dispatchFrame([]byte(`{"type": "no-such-kind"}`))
	d.dispatchFrame([]byte(sampleMessageFrame))

	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (bad frames dropped)", calls)
	}
}

func TestDecodeFrame_Kinds(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want EventKind
	}{
		{"typing", `{"type":"typing","chatId":"c1","userId":2,"isTyping":true}`, EventTyping},
		{"user status", `{"type":"user-status","userId":2,"online":true}`, EventUserStatus},
		{"notification", `{"type":"notification","title":"Order shipped","message":"#42"}`, EventNotification},
		{"support claimed", `{"type":"support-claimed","success":true}`, EventSupportClaimed},
		{"broadcast ack", `{"type":"broadcast-ack","success":true}`, EventBroadcastAck},
		{"error", `{"type":"error","message":"nope"}`, EventError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeFrame([]byte(tt.raw))
			if err != nil {
				t.Fatalf("decodeFrame() error = %v", err)
			}
			if ev.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", ev.Kind, tt.want)
			}
		})
	}
}

func TestDecodeFrame_MessageSubtypeDefaults(t *testing.T) {
	ev, err := decodeFrame([]byte(`{"type":"message","id":1,"content":"x","senderId":2,"senderName":"A","chatId":"c1","createdAt":"2026-01-02T15:04:05Z"}`))
	if err != nil {
		t.Fatalf("decodeFrame() error = %v", err)
	}
	if ev.Message.Subtype != MessageDirect {
		t.Errorf("Subtype = %v, want %v", ev.Message.Subtype, MessageDirect)
	}
}

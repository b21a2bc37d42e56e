package chat

import "testing"

func TestSendQueue_FIFO(t *testing.T) {
	var q sendQueue
	q.push(outbound{kind: "a"})
	q.push(outbound{kind: "b"})
	q.push(outbound{kind: "c"})

	var got []string
	for {
		a, ok := q.pop()
		if !ok {
			break
		}
		got = append(got, a.kind)
	}

	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pop order = %v, want %v", got, want)
		}
	}
}

func TestSendQueue_PushFront(t *testing.T) {
	var q sendQueue
	q.push(outbound{kind: "b"})
	q.pushFront(outbound{kind: "a"})

	first, _ := q.pop()
	second, _ := q.pop()
	if first.kind != "a" || second.kind != "b" {
		t.Errorf("pop order = %s, %s, want a, b", first.kind, second.kind)
	}
}

func TestSendQueue_Clear(t *testing.T) {
	var q sendQueue
	q.push(outbound{kind: "a"})
	q.clear()

	if q.len() != 0 {
		t.Errorf("len() = %d after clear, want 0", q.len())
	}
	if _, ok := q.pop(); ok {
		t.Error("pop() returned an item after clear")
	}
}

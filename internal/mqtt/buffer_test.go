package mqtt

import "testing"

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(8)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferFIFOOrder(t *testing.T) {
	rb := newRingBuffer(8)
	for i := 0; i < 5; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := range got {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: got payload %d", i, got[i].payload[0])
		}
	}

	if got := rb.drainAll(); got != nil {
		t.Errorf("second drain should be nil, got %d items", len(got))
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	rb := newRingBuffer(5)
	// Push 8 items; the oldest 3 are dropped.
	for i := 0; i < 8; i++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := range got {
		if want := byte(i + 3); got[i].payload[0] != want {
			t.Errorf("item %d: got %d, want %d", i, got[i].payload[0], want)
		}
	}
}

func TestRingBufferReusableAcrossCycles(t *testing.T) {
	rb := newRingBuffer(4)
	for cycle := 0; cycle < 3; cycle++ {
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(cycle)}})
		rb.push(bufferedMsg{topic: "t", payload: []byte{byte(cycle + 10)}})
		got := rb.drainAll()
		if len(got) != 2 {
			t.Fatalf("cycle %d: expected 2 items, got %d", cycle, len(got))
		}
		if got[0].payload[0] != byte(cycle) || got[1].payload[0] != byte(cycle+10) {
			t.Errorf("cycle %d: wrong order %v %v", cycle, got[0].payload, got[1].payload)
		}
	}
}

func TestRingBufferLen(t *testing.T) {
	rb := newRingBuffer(8)
	if rb.len() != 0 {
		t.Errorf("len: got %d, want 0", rb.len())
	}
	rb.push(bufferedMsg{topic: "t"})
	rb.push(bufferedMsg{topic: "t"})
	if rb.len() != 2 {
		t.Errorf("len: got %d, want 2", rb.len())
	}
	rb.drainAll()
	if rb.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", rb.len())
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(8)
	rb.push(bufferedMsg{
		topic:    TopicSystem,
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	m := got[0]
	if m.topic != TopicSystem || string(m.payload) != `{"test":true}` || m.qos != 1 || !m.retained {
		t.Errorf("fields not preserved: %+v", m)
	}
}

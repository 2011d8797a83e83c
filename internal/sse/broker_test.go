package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "adr.created", Data: map[string]string{"path": "ADR-0001.md"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: adr.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"ADR-0001.md"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishDocEvent_AnalysisThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger analysis.updated.
	b.PublishDocEvent("created", "ADR-0001.md")
	// Second event immediately should NOT trigger another analysis.updated.
	b.PublishDocEvent("updated", "ADR-0002.md")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	analysisCount := 0
	docCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "analysis.updated") {
				analysisCount++
			} else {
				docCount++
			}
		default:
			break loop
		}
	}

	if docCount != 2 {
		t.Errorf("doc events = %d, want 2", docCount)
	}
	if analysisCount != 1 {
		t.Errorf("analysis.updated events = %d, want 1 (throttled)", analysisCount)
	}
}

func TestPublishDocEvent_Kinds(t *testing.T) {
	b := NewBroker(time.Hour) // throttle out the aggregate event entirely
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDocEvent("deleted", "ADR-0003.md")

	deadline := time.After(time.Second)
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "event: adr.deleted") {
				return
			}
			// First analysis.updated may arrive before the doc event check.
		case <-deadline:
			t.Fatal("adr.deleted not delivered")
		}
	}
}

func TestCloseClosesClients(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			// Drain any buffered message; channel must eventually close.
			for range ch {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("client channel not closed")
	}

	// Operations after close are no-ops.
	b.Publish(Event{Type: "adr.updated"})
	if b.ClientCount() != 0 {
		t.Error("client count after close should be 0")
	}
}

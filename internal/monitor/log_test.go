package monitor

import "testing"

func keyEvent(t int64, key string) KeyboardEvent {
	return KeyboardEvent{Time: t, Key: key, State: KeyPress}
}

func TestEventLog_AppendOrder(t *testing.T) {
	var log EventLog
	log.Append(keyEvent(1, "A"))
	log.Append(keyEvent(2, "B"))
	log.Append(keyEvent(3, "C"))

	events, total := log.Snapshot(0)
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	want := []string{"A", "B", "C"}
	for i, e := range events {
		if e.(KeyboardEvent).Key != want[i] {
			t.Fatalf("event %d: expected key %s, got %s", i, want[i], e.(KeyboardEvent).Key)
		}
	}
}

func TestEventLog_SnapshotFromCursor(t *testing.T) {
	var log EventLog
	for i := 0; i < 5; i++ {
		log.Append(keyEvent(int64(i), "K"))
	}

	events, total := log.Snapshot(3)
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events from cursor 3, got %d", len(events))
	}
	if events[0].TimestampMicros() != 3 {
		t.Fatalf("expected first event at timestamp 3, got %d", events[0].TimestampMicros())
	}
}

func TestEventLog_CursorBeyondLength(t *testing.T) {
	var log EventLog
	log.Append(keyEvent(1, "A"))

	events, total := log.Snapshot(10)
	if total != 1 {
		t.Fatalf("expected total 1, got %d", total)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty slice for cursor beyond length, got %d events", len(events))
	}
}

func TestEventLog_SnapshotUnaffectedByLaterAppends(t *testing.T) {
	var log EventLog
	log.Append(keyEvent(1, "A"))
	log.Append(keyEvent(2, "B"))

	events, total := log.Snapshot(0)
	if total != 2 || len(events) != 2 {
		t.Fatalf("expected snapshot of 2, got len=%d total=%d", len(events), total)
	}

	log.Append(keyEvent(3, "C"))
	log.Append(keyEvent(4, "D"))

	if len(events) != 2 {
		t.Fatalf("snapshot grew after later appends: len=%d", len(events))
	}
	if events[0].(KeyboardEvent).Key != "A" || events[1].(KeyboardEvent).Key != "B" {
		t.Fatalf("snapshot contents changed after later appends: %v", events)
	}
	if _, newTotal := log.Snapshot(0); newTotal != 4 {
		t.Fatalf("expected log to have grown to 4, got %d", newTotal)
	}
}

func TestEventLog_EmptySnapshot(t *testing.T) {
	var log EventLog
	events, total := log.Snapshot(0)
	if total != 0 || len(events) != 0 {
		t.Fatalf("expected empty snapshot, got len=%d total=%d", len(events), total)
	}
	if log.Len() != 0 {
		t.Fatalf("expected Len 0, got %d", log.Len())
	}
}

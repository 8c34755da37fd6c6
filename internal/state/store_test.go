package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/gabbwatch/gabb"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	devices := []gabb.MapDevice{{ID: 101, Name: "Riley"}, {ID: 102, Name: "Sam"}}
	events := []gabb.Event{{ID: 1, Type: "sos"}}

	before := time.Now()
	s.Update(devices, events, nil)

	snap := s.Snapshot()
	if !snap.HasData {
		t.Fatal("HasData = false, want true after successful update")
	}
	if len(snap.Devices) != 2 || snap.Devices[0].ID != 101 {
		t.Fatalf("snapshot devices = %#v, want 2 devices starting with 101", snap.Devices)
	}
	if len(snap.Events) != 1 || snap.Events[0].Type != "sos" {
		t.Fatalf("snapshot events = %#v, want 1 sos event", snap.Events)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Devices[0].ID = 999
	snap2 := s.Snapshot()
	if snap2.Devices[0].ID != 101 {
		t.Fatalf("Snapshot should clone devices; got id %d want 101", snap2.Devices[0].ID)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update([]gabb.MapDevice{{ID: 101}}, []gabb.Event{{ID: 1}}, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, nil, origErr)

	snap := s.Snapshot()
	if snap.HasData != prev.HasData || len(snap.Devices) != 1 || snap.Devices[0].ID != 101 {
		t.Fatalf("devices changed on error: got %#v want %#v", snap.Devices, prev.Devices)
	}
	if len(snap.Events) != 1 || snap.Events[0].ID != 1 {
		t.Fatalf("events changed on error: got %#v want %#v", snap.Events, prev.Events)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatal("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.Update(nil, nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	// Second failure marks the service offline.
	s.Update(nil, nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", snap.ConsecutiveFailures)
	}
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	s.Update(nil, nil, errors.New("fail 3"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 3 {
		t.Fatalf("ConsecutiveFailures = %d, want 3", snap.ConsecutiveFailures)
	}
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 3 failures")
	}

	// Success resets counter.
	s.Update([]gabb.MapDevice{{ID: 101}}, nil, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after success", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false after success")
	}
}

// Copyright 2024 The Parsec Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestMetricsTimer(t *testing.T) {
	m := New()
	m.Timer("foo").Start()
	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	if m.All()["timer_foo_ns"] == 0 {
		t.Fatalf("Expected foo timer to be non-zero: %v", m.All())
	}
	m.Clear()

	if len(m.All()) > 0 {
		t.Fatalf("Expected metrics to be cleared, but found %v", m.All())
	}
}

func TestMetricsTimerDoubleStop(t *testing.T) {
	m := New()
	m.Timer("foo").Start()

	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	t1 := m.Timer("foo").Int64()

	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	t2 := m.Timer("foo").Int64()

	if t1 != t2 {
		t.Fatalf("Unexpected difference in stopped timer values: %v, %v", t1, t2)
	}
}

func TestMetricsTimerRestart(t *testing.T) {
	m := New()
	m.Timer("foo").Start()

	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	t1 := m.Timer("foo").Int64()

	// Restart the timer.
	m.Timer("foo").Start()
	time.Sleep(time.Millisecond)
	m.Timer("foo").Stop()
	t2 := m.Timer("foo").Int64()

	if t1 >= t2 {
		t.Fatalf("Expected restarted timer to advance, but got same value.: %v, %v", t1, t2)
	}
}

func TestMetricsCounter(t *testing.T) {
	m := New()
	m.Counter(ParseSuccess).Incr()
	m.Counter(ParseSuccess).Incr()
	m.Counter(ParseFailure).Add(3)

	if v := m.All()["counter_parse_success"]; v != uint64(2) {
		t.Fatalf("Expected parse_success to be 2 but got %v", v)
	}
	if v := m.All()["counter_parse_failure"]; v != uint64(3) {
		t.Fatalf("Expected parse_failure to be 3 but got %v", v)
	}
}

func TestMetricsHistogram(t *testing.T) {
	m := New()
	for i := range 100 {
		m.Histogram("latency").Update(int64(i))
	}

	value, ok := m.All()["histogram_latency"].(map[string]any)
	if !ok {
		t.Fatalf("Expected histogram value but got %v", m.All()["histogram_latency"])
	}
	if value["count"] != int64(100) {
		t.Fatalf("Expected count 100 but got %v", value["count"])
	}
}

func TestMetricsString(t *testing.T) {
	m := New()
	m.Counter("b").Incr()
	m.Counter("a").Incr()

	s := m.(interface{ String() string }).String()
	if !strings.HasPrefix(s, "counter_a:1") {
		t.Fatalf("Expected sorted keys but got %v", s)
	}
}

func TestNoOp(t *testing.T) {
	m := NoOp()
	m.Timer("x").Start()
	m.Counter("x").Incr()
	m.Histogram("x").Update(1)

	if m.All() != nil {
		t.Fatalf("Expected no-op metrics to collect nothing but got %v", m.All())
	}
}

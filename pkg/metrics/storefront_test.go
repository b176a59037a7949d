package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNilReceiverAndRegistererAreSafe(t *testing.T) {
	var m *StorefrontMetrics
	m.IncSnapshot()
	m.IncFeedReconnect()
	m.ObserveReconcile("stock", time.Second)
	m.AddRemovedItems(2)
	m.IncQuote("ok")

	empty := NewStorefrontMetrics(nil)
	empty.IncSnapshot()
	empty.AddRemovedItems(1)
}

func TestRegistersWithoutPanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.IncSnapshot()
	m.IncFeedReconnect()
	m.ObserveReconcile("", 50*time.Millisecond)
	m.AddRemovedItems(3)
	m.AddRemovedItems(0)
	m.IncQuote("error")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}

package env

import "testing"

func TestGetFallsBackWhenUnset(t *testing.T) {
	t.Setenv("MINERALMARKET_TEST_VALUE", "")
	if got := Get("MINERALMARKET_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}

	t.Setenv("MINERALMARKET_TEST_VALUE", "set")
	if got := Get("MINERALMARKET_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestInstanceID(t *testing.T) {
	t.Setenv("WORKER_ID", "")
	if got := InstanceID(); got != "worker-0" {
		t.Fatalf("expected default worker id, got %q", got)
	}
	t.Setenv("WORKER_ID", "cron-7")
	if got := InstanceID(); got != "cron-7" {
		t.Fatalf("expected cron-7, got %q", got)
	}
}

package shardrouter

import "testing"

func TestResolveOneUsesRequestedKeyWhenPresent(t *testing.T) {
	r := New(Config{DefaultShardKey: "default_shard"})
	if got := r.ResolveOne("nyc_taxi_2022"); got != "nyc_taxi_2022" {
		t.Fatalf("expected requested key to win, got %s", got)
	}
}

func TestResolveOneFallsBackToDefault(t *testing.T) {
	r := New(Config{DefaultShardKey: "default_shard"})
	if got := r.ResolveOne(""); got != "default_shard" {
		t.Fatalf("expected default shard, got %s", got)
	}
}

func TestResolveManyReturnsSingleton(t *testing.T) {
	r := New(Config{DefaultShardKey: "default_shard"})
	got := r.ResolveMany("")
	if len(got) != 1 || got[0] != "default_shard" {
		t.Fatalf("expected singleton [default_shard], got %v", got)
	}
}

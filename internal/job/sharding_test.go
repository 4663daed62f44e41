package job

import (
	"strconv"
	"testing"
)

func TestShardLabel_StableAndBounded(t *testing.T) {
	t.Parallel()
	keys := []string{"", "local-d0s9f2", "sp-41", "local-d0s9f2"}
	for _, key := range keys {
		label := ShardLabel(key)
		if label != ShardLabel(key) {
			t.Fatalf("label for %q not stable", key)
		}
		n, err := strconv.Atoi(label)
		if err != nil {
			t.Fatalf("label for %q not numeric: %q", key, label)
		}
		if n < 0 || n > 31 {
			t.Fatalf("label for %q out of range: %d", key, n)
		}
	}
	// Distinct keys should not all collapse onto one label.
	if ShardLabel("local-a") == ShardLabel("local-b") && ShardLabel("local-b") == ShardLabel("local-c") {
		t.Fatal("three distinct keys mapped to one label")
	}
}

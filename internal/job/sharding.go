package job

import (
	"fmt"
	"hash/fnv"
)

// ShardLabel hashes a submission key (placeholder or space id) to a stable
// small cardinality label (0-31) suitable for metric dimensions.
func ShardLabel(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf("%d", h.Sum32()%32)
}

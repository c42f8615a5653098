package utils

import "testing"

func TestSnowflake_节点ID越界(t *testing.T) {
	if _, err := NewSnowflake(-1); err == nil {
		t.Fatalf("期望负数 nodeID 报错")
	}
	if _, err := NewSnowflake(maxNodeID + 1); err == nil {
		t.Fatalf("期望越界 nodeID 报错")
	}
}

func TestSnowflake_单调且不重复(t *testing.T) {
	s, err := NewSnowflake(1)
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	seen := make(map[int64]struct{}, 10000)
	var last int64 = -1
	for i := 0; i < 10000; i++ {
		id := s.NextID()
		if id <= last {
			t.Fatalf("期望 id 严格递增, last=%d id=%d", last, id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("id 重复: %d", id)
		}
		seen[id] = struct{}{}
		last = id
	}
}

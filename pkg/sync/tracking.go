package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// trackingSet 是 push 去重用的本地乐观缓存
// 出现在集合里的 id 被认为远端已经有了。这不是权威信息：
// 更稳健的设计应该先问远端“你有什么”，这里刻意保留本地簿记方案
type trackingSet struct {
	path string
	ids  map[string]bool
}

func loadTrackingSet(path string) (*trackingSet, error) {
	set := &trackingSet{path: path, ids: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return set, nil // 第一次 push 之前文件不存在
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking set: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("corrupted tracking set %s: %w", path, err)
	}
	for _, id := range ids {
		set.ids[id] = true
	}
	return set, nil
}

func (s *trackingSet) Has(id string) bool {
	return s.ids[id]
}

func (s *trackingSet) Add(ids ...string) {
	for _, id := range ids {
		s.ids[id] = true
	}
}

// Save 整体写回 (追加语义由调用方通过 Add 实现)
func (s *trackingSet) Save() error {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// -----------------------------------------------------------------------------
// last-fetch 时间戳
// -----------------------------------------------------------------------------

func readLastFetch(syncDir string) int64 {
	data, err := os.ReadFile(filepath.Join(syncDir, "last_fetch"))
	if err != nil {
		return 0 // 第一次 fetch，不限定时间
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0
	}
	return ts
}

// writeLastFetch 只在整次 fetch 全部成功后调用
func writeLastFetch(syncDir string, ts time.Time) error {
	return os.WriteFile(
		filepath.Join(syncDir, "last_fetch"),
		[]byte(strconv.FormatInt(ts.Unix(), 10)),
		0644,
	)
}

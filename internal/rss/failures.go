package rss

import "sync"

// 记录到 FailureRegistry 的诊断信息。
const (
	MsgTransportFailure = "network or parsing error"
	MsgEmptyResult      = "no valid articles parsed"
)

// FailureRegistry 记录每个订阅源最近一次的失败原因，并发安全。
// 成功抓取后对应条目被清除。
type FailureRegistry struct {
	mu       sync.RWMutex
	failures map[string]string
}

// NewFailureRegistry 创建空的失败记录表。
func NewFailureRegistry() *FailureRegistry {
	return &FailureRegistry{failures: make(map[string]string)}
}

// Record 写入或覆盖 source 的失败原因。
func (r *FailureRegistry) Record(source, reason string) {
	r.mu.Lock()
	r.failures[source] = reason
	r.mu.Unlock()
}

// Clear 删除 source 的失败记录。
func (r *FailureRegistry) Clear(source string) {
	r.mu.Lock()
	delete(r.failures, source)
	r.mu.Unlock()
}

// Get 返回 source 的失败原因。
func (r *FailureRegistry) Get(source string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reason, ok := r.failures[source]
	return reason, ok
}

// Snapshot 返回当前记录的副本。
func (r *FailureRegistry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.failures))
	for k, v := range r.failures {
		out[k] = v
	}
	return out
}

// Len 返回失败的订阅源数量。
func (r *FailureRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.failures)
}

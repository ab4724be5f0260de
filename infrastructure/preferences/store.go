// Package preferences implements the key-value settings store on a local
// YAML file or a DynamoDB table.
package preferences

import (
	"strconv"
	"sync"
)

// values is the in-memory view shared by both backends
type values struct {
	mu        sync.RWMutex
	data      map[string]string
	listeners []func(key string)
}

func newValues(data map[string]string) *values {
	if data == nil {
		data = make(map[string]string)
	}
	return &values{data: data}
}

func (v *values) GetString(key, def string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if s, ok := v.data[key]; ok {
		return s
	}
	return def
}

func (v *values) GetBool(key string, def bool) bool {
	b, err := strconv.ParseBool(v.GetString(key, ""))
	if err != nil {
		return def
	}
	return b
}

func (v *values) GetInt(key string, def int) int {
	i, err := strconv.Atoi(v.GetString(key, ""))
	if err != nil {
		return def
	}
	return i
}

func (v *values) All() map[string]string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]string, len(v.data))
	for k, s := range v.data {
		out[k] = s
	}
	return out
}

func (v *values) OnChange(listener func(key string)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, listener)
}

// replace swaps in data and notifies listeners of every key that differs
func (v *values) replace(data map[string]string) {
	v.mu.Lock()
	var changed []string
	for k, s := range data {
		if old, ok := v.data[k]; !ok || old != s {
			changed = append(changed, k)
		}
	}
	for k := range v.data {
		if _, ok := data[k]; !ok {
			changed = append(changed, k)
		}
	}
	v.data = data
	listeners := append([]func(string){}, v.listeners...)
	v.mu.Unlock()

	for _, key := range changed {
		for _, l := range listeners {
			l(key)
		}
	}
}

// snapshotWith returns a copy of the data with one key set, or removed when
// value is nil
func (v *values) snapshotWith(key string, value *string) map[string]string {
	next := v.All()
	if value == nil {
		delete(next, key)
	} else {
		next[key] = *value
	}
	return next
}

// Package storage 提供記憶體中的資料表。
//
// 每個 Table 自帶一把讀寫鎖，鎖不會離開本套件；呼叫端只能透過
// View / Update 傳入的函式在鎖內操作資料。
package storage

import "sync"

// Table 是以讀寫鎖保護的 key -> value 映射
type Table[K comparable, V any] struct {
	mu   sync.RWMutex
	rows map[K]V
}

func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{rows: make(map[K]V)}
}

// Get 讀取單筆資料
func (t *Table[K, V]) Get(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.rows[key]
	return v, ok
}

// View 在讀鎖內執行 fn，fn 不可修改 rows
func (t *Table[K, V]) View(fn func(rows map[K]V)) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	fn(t.rows)
}

// Update 在寫鎖內執行 fn
func (t *Table[K, V]) Update(fn func(rows map[K]V)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(t.rows)
}

// Guarded 以讀寫鎖保護單一值，適合需要同時維護多個 map 的資料表
type Guarded[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewGuarded[T any](value T) *Guarded[T] {
	return &Guarded[T]{value: value}
}

// Read 在讀鎖內執行 fn
func (g *Guarded[T]) Read(fn func(v *T)) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	fn(&g.value)
}

// Write 在寫鎖內執行 fn
func (g *Guarded[T]) Write(fn func(v *T)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fn(&g.value)
}

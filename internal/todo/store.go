// Package todo はプロセス内メモリで保持するTODOリストと、その操作用ハンドラーを提供します。
package todo

import (
	"strings"
	"sync"
)

// Item はTODOの1件を表します。
type Item struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// Store は挿入順を保つTODOの集合です。ゼロ値では使えないため NewStore で作成します。
// コレクションとIDカウンターは同じロックで保護されます。
type Store struct {
	mu     sync.Mutex
	items  []Item
	nextID int
}

// NewStore は空の Store を作成します。IDは1から振られます。
func NewStore() *Store {
	return &Store{
		items:  make([]Item, 0),
		nextID: 1,
	}
}

// List は現在の全件を挿入順のコピーで返します。
func (s *Store) List() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len は現在の件数を返します。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Create はタイトルを末尾に追加します。
// 空白のみのタイトルは何もせず false を返します。
func (s *Store) Create(title string) (Item, bool) {
	if strings.TrimSpace(title) == "" {
		return Item{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := Item{ID: s.nextID, Title: title}
	s.nextID++
	s.items = append(s.items, item)
	return item, true
}

// Delete は id に一致する項目を削除します。見つからなければ false を返します。
func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return true
}

// Toggle は id に一致する項目の完了状態を反転します。見つからなければ false を返します。
func (s *Store) Toggle(id int) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Item{}, false
	}
	s.items[idx].IsCompleted = !s.items[idx].IsCompleted
	return s.items[idx], true
}

// indexOf は s.mu を保持した状態で呼び出すこと。
func (s *Store) indexOf(id int) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

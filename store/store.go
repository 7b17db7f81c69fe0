// Package store 提供 core.Store 的实现（内存、Redis），接口定义在 core 包。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	src := artifact.NewStoreSource(s, "embedrec")
package store

// Package catalog 提供物品目录与简介表的查找。
//
// 目录中 id 唯一，展示名不保证唯一。所有查找都返回表中顺序的全部匹配行，
// 调用方通常只取第一行（First）。
package catalog

import (
	"github.com/rushteam/embedrec/core"
)

// Catalog 是内存中的物品目录与简介表。
type Catalog struct {
	items    []core.Item
	synopses []core.Synopsis

	byID   map[int64][]int
	byName map[string][]int

	synByID   map[int64]int
	synByName map[string]int
}

// New 由目录行与简介行构建 Catalog，行顺序即表顺序。
func New(items []core.Item, synopses []core.Synopsis) *Catalog {
	c := &Catalog{
		items:     items,
		synopses:  synopses,
		byID:      make(map[int64][]int, len(items)),
		byName:    make(map[string][]int, len(items)),
		synByID:   make(map[int64]int, len(synopses)),
		synByName: make(map[string]int, len(synopses)),
	}
	for i, it := range items {
		c.byID[it.ID] = append(c.byID[it.ID], i)
		c.byName[it.DisplayName] = append(c.byName[it.DisplayName], i)
	}
	for i, s := range synopses {
		if _, ok := c.synByID[s.ID]; !ok {
			c.synByID[s.ID] = i
		}
		if _, ok := c.synByName[s.Name]; !ok {
			c.synByName[s.Name] = i
		}
	}
	return c
}

// Len 返回目录行数。
func (c *Catalog) Len() int { return len(c.items) }

// Items 返回目录全部行。
func (c *Catalog) Items() []core.Item { return c.items }

// ResolveByID 返回 id 对应的全部目录行。
func (c *Catalog) ResolveByID(id int64) ([]core.Item, error) {
	if len(c.items) == 0 {
		return nil, core.NewNotFoundError(core.ModuleCatalog, "catalog is empty")
	}
	rows := c.collect(c.byID[id])
	if len(rows) == 0 {
		return nil, core.NewNotFoundError(core.ModuleCatalog, "item id %d not found", id)
	}
	return rows, nil
}

// ResolveByName 返回展示名完全相等的全部目录行。
func (c *Catalog) ResolveByName(name string) ([]core.Item, error) {
	if len(c.items) == 0 {
		return nil, core.NewNotFoundError(core.ModuleCatalog, "catalog is empty")
	}
	rows := c.collect(c.byName[name])
	if len(rows) == 0 {
		return nil, core.NewNotFoundError(core.ModuleCatalog, "item name %q not found", name)
	}
	return rows, nil
}

// SynopsisByID 返回 id 对应的第一条简介。
func (c *Catalog) SynopsisByID(id int64) (string, error) {
	i, ok := c.synByID[id]
	if !ok {
		return "", core.NewNotFoundError(core.ModuleCatalog, "synopsis for item id %d not found", id)
	}
	return c.synopses[i].Text, nil
}

// SynopsisByName 返回简介表名称列匹配的第一条简介。
func (c *Catalog) SynopsisByName(name string) (string, error) {
	i, ok := c.synByName[name]
	if !ok {
		return "", core.NewNotFoundError(core.ModuleCatalog, "synopsis for item name %q not found", name)
	}
	return c.synopses[i].Text, nil
}

// Contains 判断 id 是否在目录中。
func (c *Catalog) Contains(id int64) bool {
	return len(c.byID[id]) > 0
}

func (c *Catalog) collect(idx []int) []core.Item {
	if len(idx) == 0 {
		return nil
	}
	out := make([]core.Item, len(idx))
	for i, j := range idx {
		out[i] = c.items[j]
	}
	return out
}

// First 返回第一行；rows 为空时 ok 为 false。
func First(rows []core.Item) (core.Item, bool) {
	if len(rows) == 0 {
		return core.Item{}, false
	}
	return rows[0], true
}

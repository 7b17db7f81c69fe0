// Package table 读取物品目录、简介、评分三张数据表。
//
// 表以 CSV 形式存放，列名可配置，默认值沿用原始数据集的列名。
package table

import (
	"context"

	"github.com/rushteam/embedrec/core"
)

// Reader 是数据表读取接口，每次调用都重新读取底层文件。
type Reader interface {
	Items(ctx context.Context) ([]core.Item, error)
	Synopses(ctx context.Context) ([]core.Synopsis, error)
	Ratings(ctx context.Context) ([]core.Rating, error)
}

// Files 是三张表的制品名。
type Files struct {
	Catalog  string `koanf:"catalog" validate:"required"`
	Synopsis string `koanf:"synopsis" validate:"required"`
	Ratings  string `koanf:"ratings" validate:"required"`
}

// Columns 是三张表的列名映射。
type Columns struct {
	ItemID     string `koanf:"item_id"`
	ItemName   string `koanf:"item_name"`
	ItemGenres string `koanf:"item_genres"`

	SynopsisID   string `koanf:"synopsis_id"`
	SynopsisName string `koanf:"synopsis_name"`
	SynopsisText string `koanf:"synopsis_text"`

	RatingUser  string `koanf:"rating_user"`
	RatingItem  string `koanf:"rating_item"`
	RatingScore string `koanf:"rating_score"`
}

// DefaultColumns 返回原始数据集使用的列名。
func DefaultColumns() Columns {
	return Columns{
		ItemID:       "anime_id",
		ItemName:     "eng_version",
		ItemGenres:   "Genres",
		SynopsisID:   "MAL_ID",
		SynopsisName: "Name",
		SynopsisText: "sypnopsis",
		RatingUser:   "user_id",
		RatingItem:   "anime_id",
		RatingScore:  "rating",
	}
}

// WithDefaults 用默认列名补齐空字段。
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&c.ItemID, d.ItemID)
	fill(&c.ItemName, d.ItemName)
	fill(&c.ItemGenres, d.ItemGenres)
	fill(&c.SynopsisID, d.SynopsisID)
	fill(&c.SynopsisName, d.SynopsisName)
	fill(&c.SynopsisText, d.SynopsisText)
	fill(&c.RatingUser, d.RatingUser)
	fill(&c.RatingItem, d.RatingItem)
	fill(&c.RatingScore, d.RatingScore)
	return c
}

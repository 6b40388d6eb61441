package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// Archive: 归档 ZIP 路径（必需）。
	Archive string `json:"archive"`
	// Filters: 过滤链开关。指针区分“未设置”与“显式 false/0”。
	Filters Filters `json:"filters"`
	// BatchSize: 每批条目数（>=1）。
	BatchSize int `json:"batch_size"`
	// Workers: worker 数；0 表示自动（GOMAXPROCS）。
	Workers int     `json:"workers"`
	Logging Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Filters: 过滤链配置。
type Filters struct {
	DistinctTitle *bool    `json:"distinct_title,omitempty"`
	OriginalOnly  *bool    `json:"original_only,omitempty"`
	CasedOnly     *bool    `json:"cased_only,omitempty"`
	MinCased      *float64 `json:"min_cased,omitempty"`
	Deduplicate   *bool    `json:"deduplicate,omitempty"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Writer string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Writer json.RawMessage `json:"writer"`
}

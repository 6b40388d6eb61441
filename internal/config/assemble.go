package config

import (
	"fmt"
	"runtime"
	"strings"

	"opussub/internal/archive"
	"opussub/internal/pipeline"
	"opussub/pkg/contract"
	"opussub/pkg/langtag"
	"opussub/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Archive) == "" {
		return fmt.Errorf("%w: archive not set", contract.ErrConfig)
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("%w: batch_size must be >= 1", contract.ErrConfig)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0", contract.ErrConfig)
	}
	// cased_only 无默认阈值：开启时必须显式提供 min_cased ∈ (0,1]。
	if boolOf(cfg.Filters.CasedOnly) {
		if cfg.Filters.MinCased == nil {
			return fmt.Errorf("%w: cased_only requires min_cased", contract.ErrConfig)
		}
		if v := *cfg.Filters.MinCased; v <= 0 || v > 1 {
			return fmt.Errorf("%w: min_cased %g out of (0,1]", contract.ErrConfig, v)
		}
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	if name := effName(cfg.Components.Writer, Defaults().Components.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("%w: writer %q not registered", contract.ErrConfig, name)
	}
	return nil
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	ar, err := archive.New(cfg.Archive)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	wn := effName(cfg.Components.Writer, Defaults().Components.Writer)
	w, err := registry.Writer[wn](cfg.Options.Writer)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	comp := pipeline.Components{
		Archive:  ar,
		Resolver: langtag.New(),
		Writer:   w,
	}

	// 0 = 自动：取 GOMAXPROCS。引擎层只接受 >=1。
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	set := pipeline.Settings{
		Filters: contract.FilterConfig{
			DistinctTitle: boolOf(cfg.Filters.DistinctTitle),
			OriginalOnly:  boolOf(cfg.Filters.OriginalOnly),
			CasedOnly:     boolOf(cfg.Filters.CasedOnly),
			MinCased:      floatOf(cfg.Filters.MinCased),
			Deduplicate:   boolOf(cfg.Filters.Deduplicate),
		},
		BatchSize: cfg.BatchSize,
		Workers:   workers,
	}

	return comp, set, nil
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}

func boolOf(p *bool) bool {
	return p != nil && *p
}

func floatOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

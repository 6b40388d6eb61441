package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"opussub/internal/diag"
	"opussub/internal/document"
	"opussub/internal/filter"
	"opussub/pkg/contract"
)

// - 单点并发：仅此层管理并发与背压；原子组件均为同步、无内部并发。
// - 状态机：Idle → Cataloging → Dispatching → Draining → Done，单次运行不可逆。
// - 完成序收集：批结果按完成顺序汇入，不承诺跨批顺序；批内幸存者保持目录序。
// - 条目级失败就地吞掉（warn + 零幸存者）；运行级失败记录首错并 cancel 整体。

// Components 聚合运行所需的原子组件。
type Components struct {
	Archive  contract.Archive
	Resolver contract.Resolver
	Writer   contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Filters contract.FilterConfig
	// BatchSize: 每批条目数（>=1）。
	BatchSize int
	// Workers: worker 数（>=1；"0=自动" 在装配层归一化，引擎拒绝非法值）。
	Workers int
	// Progress: 可选回调，每个批次完成后报告（已处理条目数, 总条目数）。
	Progress func(done, total int)
}

// result: 单批产出。
type result struct {
	batch     int
	processed int
	subs      []contract.Subtitle
	err       error
}

// Run 执行完整批处理流水线，返回写出的幸存文档数。
// 约束：
// - 归档语言码由调度器计算一次，作为不可变值传给过滤链；
// - 每个 worker 自行重开归档只读句柄，句柄不跨 worker 共享；
// - 写出在收集端单线程进行（同一 EntryID 单写者）。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (int, error) {
	if err := sanity(comp, set); err != nil {
		return 0, err
	}
	if logger == nil {
		logger = diag.NewLoggerTo(io.Discard, "", "error")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Cataloging: 一次性物化（可选 title 去重的）有序条目表。
	ctimer := logger.Start("catalog", "cataloging")
	cat, err := comp.Archive.Open()
	if err != nil {
		logger.Error("catalog", diag.Classify(err), "open failed", err)
		return 0, fmt.Errorf("catalog open: %w", err)
	}
	entries, err := cat.List(set.Filters.DistinctTitle)
	_ = cat.Close()
	if err != nil {
		logger.Error("catalog", diag.Classify(err), "list failed", err)
		return 0, fmt.Errorf("catalog list: %w", err)
	}
	// 归档语言码只在此处计算一次。
	archiveCode := comp.Resolver.Resolve(comp.Archive.LanguageTag()).MacroCode
	if set.Filters.OriginalOnly && archiveCode == "" {
		logger.Warn("catalog", "archive language tag unresolved; original-only rejects all", comp.Archive.LanguageTag())
	}
	chain := filter.New(set.Filters, comp.Resolver, archiveCode)
	batches := partition(entries, set.BatchSize)
	ctimer.Finish("cataloged", int64(len(entries)))

	// Dispatching: 有界 worker 池消费批次。
	dtimer := logger.Start("dispatch", "dispatching")
	inCh := make(chan contract.Batch, set.Workers*2)
	outCh := make(chan result, set.Workers*2)

	var wg sync.WaitGroup
	wg.Add(set.Workers)
	for i := 0; i < set.Workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, comp.Archive, chain, inCh, outCh, logger)
		}()
	}

	// 生产者：依序投喂批次；取消即停发。
	go func() {
		defer close(inCh)
		for _, b := range batches {
			select {
			case <-ctx.Done():
				return
			case inCh <- b:
			}
		}
	}()

	// workers 生命周期决定 outCh 关闭。
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Draining: 完成序收集；首错 cancel 后继续排空以便 orderly 结束。
	written := 0
	processed := 0
	var firstErr error
	for r := range outCh {
		processed += r.processed
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		if firstErr != nil {
			continue
		}
		for _, sub := range r.subs {
			if werr := comp.Writer.WriteLines(ctx, sub.ID, sub.Lines); werr != nil {
				logger.Error("writer", diag.Classify(werr), "write failed", werr)
				diag.IncOp("writer", "write", "error")
				diag.IncError("writer", diag.Classify(werr))
				firstErr = fmt.Errorf("writer %s: %w", sub.ID, werr)
				cancel()
				break
			}
			written++
			diag.IncOp("writer", "write", "success")
		}
		if set.Progress != nil {
			set.Progress(processed, len(entries))
		}
	}
	dtimer.Finish("drained", int64(processed))

	// Done: 终态。
	if firstErr != nil {
		return written, firstErr
	}
	if err := ctx.Err(); err != nil {
		return written, err
	}
	return written, nil
}

// worker: 持有独立归档句柄，逐批执行 读取 → 解析 → 过滤。
func worker(ctx context.Context, ar contract.Archive, chain *filter.Chain, inCh <-chan contract.Batch, outCh chan<- result, logger *diag.Logger) {
	cat, err := ar.Open()
	if err != nil {
		// 句柄打不开属运行级失败：对每个领到的批上报同一错误。
		for range inCh {
			outCh <- result{err: fmt.Errorf("worker archive open: %w", err)}
		}
		return
	}
	defer cat.Close()

	for b := range inCh {
		if ctx.Err() != nil {
			// 取消后快速排空剩余批次。
			outCh <- result{batch: b.Index, err: ctx.Err()}
			continue
		}
		subs := make([]contract.Subtitle, 0, len(b.Entries))
		for _, e := range b.Entries {
			raw, rerr := cat.ReadEntry(e.Path)
			if rerr != nil {
				logger.Warn("worker", "entry read failed", e.ID.String())
				diag.IncOp("worker", "read", "error")
				continue
			}
			doc := document.Parse(raw)
			if doc.Malformed() {
				logger.Warn("worker", "entry parse failed", e.ID.String())
				diag.IncOp("worker", "parse", "error")
				continue
			}
			lines, ok := chain.Apply(doc)
			if !ok {
				diag.IncOp("worker", "filter", "skip")
				continue
			}
			subs = append(subs, contract.Subtitle{ID: e.ID, Lines: lines})
			diag.IncOp("worker", "filter", "success")
		}
		outCh <- result{batch: b.Index, processed: len(b.Entries), subs: subs}
	}
}

// partition: 精确上取整切批；恰为整数倍时没有空尾批。
func partition(entries []contract.Entry, size int) []contract.Batch {
	if len(entries) == 0 {
		return nil
	}
	n := (len(entries) + size - 1) / size
	batches := make([]contract.Batch, 0, n)
	for i := 0; i < len(entries); i += size {
		end := i + size
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, contract.Batch{Index: len(batches), Entries: entries[i:end]})
	}
	return batches
}

func sanity(c Components, s Settings) error {
	if c.Archive == nil || c.Resolver == nil || c.Writer == nil {
		return errors.New("pipeline: missing components")
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("%w: batch size %d", contract.ErrConfig, s.BatchSize)
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: workers %d", contract.ErrConfig, s.Workers)
	}
	return nil
}

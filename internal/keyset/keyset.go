// Package keyset 并发地为一批值生成排序键，并按键排序。
package keyset

import (
	"bytes"
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/collate-go/pkg/collate"
	"github.com/lk2023060901/collate-go/pkg/log"
	"github.com/lk2023060901/collate-go/pkg/metrics"
	"github.com/lk2023060901/collate-go/pkg/util/conc"
	"github.com/lk2023060901/collate-go/pkg/util/merr"
)

// Entry 是一个值及其排序键，Index 为值在输入中的位置。
type Entry struct {
	Index int
	Key   []byte
	Value collate.Value
}

// Builder 持有编码用的协程池，可重复调用 Build。
type Builder struct {
	log.Binder

	pool *conc.Pool[[]byte]
}

// Option 配置 Builder。
type Option func(*builderOption)

type builderOption struct {
	workers  int
	logger   *log.MLogger
	poolOpts []conc.PoolOption
}

// WithWorkers 设置编码协程数，n <= 0 时使用 GOMAXPROCS。
func WithWorkers(n int) Option {
	return func(o *builderOption) {
		o.workers = n
	}
}

// WithLogger 为 Builder 绑定 Logger。
func WithLogger(l *log.MLogger) Option {
	return func(o *builderOption) {
		o.logger = l
	}
}

// WithPoolOptions 追加协程池选项，覆盖默认值。
func WithPoolOptions(opts ...conc.PoolOption) Option {
	return func(o *builderOption) {
		o.poolOpts = append(o.poolOpts, opts...)
	}
}

// NewBuilder 创建一个 Builder，使用完毕后需调用 Close。
func NewBuilder(opts ...Option) (*Builder, error) {
	// 编码中的 panic 记为该值的失败，不影响其它值。
	opt := &builderOption{
		poolOpts: []conc.PoolOption{conc.WithPreAlloc(true), conc.WithDisablePurge(true), conc.WithConcealPanic(true)},
	}
	for _, o := range opts {
		o(opt)
	}

	pool, err := conc.NewPool[[]byte](opt.workers, opt.poolOpts...)
	if err != nil {
		return nil, err
	}
	b := &Builder{pool: pool}
	if opt.logger != nil {
		b.SetLogger(opt.logger)
	}
	return b, nil
}

// Close 释放协程池。
func (b *Builder) Close() {
	b.pool.Release()
}

// Build 编码 values 中的每个值并按排序键升序返回，键相同的条目保持输入顺序。
//
// 单个值编码失败不会中断其它值，所有失败合并后一起返回，此时结果为 nil。
// ctx 在提交任务之间检查，取消后等待已提交的任务结束再返回。
func (b *Builder) Build(ctx context.Context, values []collate.Value) ([]Entry, error) {
	start := time.Now()
	logger := b.Logger().With(log.FieldComponent("keyset"), zap.Int("values", len(values)))

	futures := make([]*conc.Future[[]byte], 0, len(values))
	var ctxErr error
	for i := range values {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		v := values[i]
		futures = append(futures, b.pool.Submit(func() ([]byte, error) {
			return collate.Encode(v)
		}))
	}

	entries := make([]Entry, 0, len(futures))
	var errs []error
	for i, f := range futures {
		key, err := f.Await()
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "value #%d", i))
			logger.RatedWarn(1, "failed to encode value", zap.Int("index", i), zap.Error(err))
			continue
		}
		entries = append(entries, Entry{Index: i, Key: key, Value: values[i]})
	}

	metrics.KeysetBuildValues.WithLabelValues(metrics.SuccessLabel).Add(float64(len(entries)))
	metrics.KeysetBuildValues.WithLabelValues(metrics.FailLabel).Add(float64(len(errs)))

	if ctxErr != nil {
		logger.Warn("key set build canceled", zap.Int("submitted", len(futures)), zap.Error(ctxErr))
		return nil, ctxErr
	}
	if len(errs) > 0 {
		return nil, merr.Combine(errs...)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return collate.CompareEncoded(a.Key, b.Key)
	})

	cost := time.Since(start)
	metrics.KeysetBuildLatency.Observe(float64(cost.Milliseconds()))
	logger.Debug("key set built", zap.Duration("cost", cost))
	return entries, nil
}

// Build 使用一个临时 Builder 完成一次构建。
func Build(ctx context.Context, values []collate.Value, opts ...Option) ([]Entry, error) {
	b, err := NewBuilder(opts...)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return b.Build(ctx, values)
}

// Dedup 移除有序 entries 中键重复的条目，保留每组的第一个。
func Dedup(entries []Entry) []Entry {
	return slices.CompactFunc(entries, func(a, b Entry) bool {
		return bytes.Equal(a.Key, b.Key)
	})
}

// Keys 返回 entries 的排序键。
func Keys(entries []Entry) [][]byte {
	keys := make([][]byte, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

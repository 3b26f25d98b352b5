// Package engine wires the partitioner, analyzer, match index, and assembler
// into a complete mosaic run.
package engine

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math/rand"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/logicielsjpb/photomosaic/internal/analysis"
	"github.com/logicielsjpb/photomosaic/internal/assembly"
	"github.com/logicielsjpb/photomosaic/internal/cache"
	"github.com/logicielsjpb/photomosaic/internal/colorspace"
	"github.com/logicielsjpb/photomosaic/internal/config"
	"github.com/logicielsjpb/photomosaic/internal/loader"
	"github.com/logicielsjpb/photomosaic/internal/matching"
	"github.com/logicielsjpb/photomosaic/internal/pool"
	"github.com/logicielsjpb/photomosaic/internal/tiling"
)

// watchExtensions filters which files a live pool watcher picks up.
var watchExtensions = []string{".png", ".jpg", ".jpeg", ".gif"}

// Engine runs one mosaic build from a validated configuration.
type Engine struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New creates an engine. A nil logger discards log output.
func New(cfg *config.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Run builds the candidate pool, partitions the target, matches each tile to
// its nearest candidate, assembles the mosaic onto a white canvas, and saves
// it to the configured output path.
func (e *Engine) Run(ctx context.Context) error {
	cfg := e.cfg

	images := loader.NewImageCache()

	var vectorCache cache.VectorCache = cache.NewMemory()
	if cfg.Pool.CachePath != "" {
		sqlCache, err := cache.NewSQLite(cfg.Pool.CachePath)
		if err != nil {
			return fmt.Errorf("open vector cache: %w", err)
		}
		vectorCache = sqlCache
	}
	defer vectorCache.Close()

	builder := pool.NewBuilder(images, vectorCache, e.logger, pool.Options{
		Clusters:      cfg.Analysis.Clusters,
		SampleSize:    cfg.Analysis.SampleSize,
		Workers:       cfg.Pool.Workers,
		OnLoadFailure: cfg.Pool.OnLoadFailure,
		Seed:          cfg.Analysis.Seed,
	})
	index, err := builder.Build(cfg.Pool.Glob)
	if err != nil {
		return fmt.Errorf("build pool: %w", err)
	}

	// Without a watch directory, queries go straight to the index; with
	// one, they go through the watcher, which serializes lookups with
	// live appends.
	var query func([]float64, int) ([]matching.Match, error) = index.Query
	if cfg.Pool.WatchDir != "" {
		watcher := pool.NewWatcher(cfg.Pool.WatchDir, watchExtensions, builder, index, e.logger)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("watch pool dir: %w", err)
		}
		defer watcher.Stop()
		query = watcher.Query
	}

	target, err := images.Load(cfg.Target)
	if err != nil {
		return fmt.Errorf("load target: %w", err)
	}
	bounds := target.Bounds()

	opts := []tiling.Option{tiling.WithDepth(cfg.Grid.Depth)}
	if cfg.Mask.Path != "" {
		maskImg, err := images.Load(cfg.Mask.Path)
		if err != nil {
			return fmt.Errorf("load mask: %w", err)
		}
		opts = append(opts, tiling.WithMask(tiling.MaskFromImage(maskImg, *cfg.Mask.Threshold)))
	}
	tiles, err := tiling.Partition(bounds.Dx(), bounds.Dy(), cfg.Grid.Rows, cfg.Grid.Cols, opts...)
	if err != nil {
		return fmt.Errorf("partition target: %w", err)
	}
	e.logger.Info("partitioned target",
		zap.Int("tiles", len(tiles)),
		zap.Int("rows", cfg.Grid.Rows),
		zap.Int("cols", cfg.Grid.Cols),
		zap.Int("depth", cfg.Grid.Depth))

	if cfg.Debug {
		layoutPath := cfg.Output + ".tiles.png"
		overlay := tiling.DrawTiles(target, tiles, color.NRGBA{255, 0, 255, 255})
		if err := imaging.Save(overlay, layoutPath); err != nil {
			e.logger.Warn("failed to save tile layout overlay", zap.Error(err))
		} else {
			e.logger.Info("tile layout overlay written", zap.String("path", layoutPath))
		}
	}

	rng := rand.New(rand.NewSource(cfg.Analysis.Seed))
	matches := make([]string, len(tiles))
	for i, t := range tiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		pixels := colorspace.ToVectors(target, t.Rect().Add(bounds.Min))
		vec, err := analysis.DominantColor(pixels, cfg.Analysis.Clusters, cfg.Analysis.SampleSize, rng)
		if err != nil {
			return fmt.Errorf("analyze tile (%d,%d)-(%d,%d): %w", t.X1, t.Y1, t.X2, t.Y2, err)
		}
		hits, err := query(vec, 1)
		if err != nil {
			return fmt.Errorf("match tile (%d,%d)-(%d,%d): %w", t.X1, t.Y1, t.X2, t.Y2, err)
		}
		matches[i] = hits[0].ID
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if err := assembly.Assemble(canvas, tiles, matches, images); err != nil {
		return fmt.Errorf("assemble mosaic: %w", err)
	}

	if err := imaging.Save(canvas, cfg.Output); err != nil {
		return fmt.Errorf("save mosaic: %w", err)
	}
	e.logger.Info("mosaic written",
		zap.String("output", cfg.Output),
		zap.Int("tiles", len(tiles)),
		zap.Int("candidates", index.Len()))
	return nil
}

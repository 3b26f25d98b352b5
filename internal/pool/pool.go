// Package pool analyzes a collection of candidate images into a match index.
//
// For each file the builder loads the pixels, converts them to the
// perceptual color space, characterizes them as a single dominant-color
// vector, and appends the (path, vector) pair to a matching.Index. Analysis
// across candidates is embarrassingly parallel and runs on a worker pool;
// the index itself is populated from a single goroutine afterwards, in
// deterministic file order.
package pool

import (
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/logicielsjpb/photomosaic/internal/analysis"
	"github.com/logicielsjpb/photomosaic/internal/cache"
	"github.com/logicielsjpb/photomosaic/internal/colorspace"
	"github.com/logicielsjpb/photomosaic/internal/config"
	"github.com/logicielsjpb/photomosaic/internal/matching"
)

// Loader resolves a file path to decoded pixel content.
type Loader interface {
	Load(path string) (image.Image, error)
}

// Options configures pool construction.
type Options struct {
	// Clusters and SampleSize are passed to the color analyzer.
	Clusters   int
	SampleSize int
	// Workers is the number of concurrent analysis goroutines; values
	// below 1 mean a single worker.
	Workers int
	// OnLoadFailure is config.OnLoadFailureSkip (log a warning and leave
	// the candidate out) or config.OnLoadFailureAbort.
	OnLoadFailure string
	// Seed makes sampling and clustering reproducible. Each candidate
	// gets a random source derived from Seed and its position, so results
	// do not depend on worker scheduling.
	Seed int64
}

// Builder turns image files into pool candidates.
type Builder struct {
	loader Loader
	cache  cache.VectorCache
	logger *zap.Logger
	opts   Options
}

// NewBuilder creates a pool builder. A nil vectorCache falls back to an
// in-memory cache; a nil logger discards log output.
func NewBuilder(loader Loader, vectorCache cache.VectorCache, logger *zap.Logger, opts Options) *Builder {
	if vectorCache == nil {
		vectorCache = cache.NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Clusters < 1 {
		opts.Clusters = 5
	}
	if opts.SampleSize < 1 {
		opts.SampleSize = 1000
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OnLoadFailure == "" {
		opts.OnLoadFailure = config.OnLoadFailureSkip
	}
	return &Builder{loader: loader, cache: vectorCache, logger: logger, opts: opts}
}

type analysisResult struct {
	path string
	vec  []float64
	err  error
}

// Build analyzes every file matching pattern and returns a match index over
// the results. Files are inserted in sorted path order regardless of worker
// scheduling, so insertion-order tie-breaks are reproducible.
//
// Candidates that fail to load are skipped with a warning under the "skip"
// policy; under "abort" the first failure, in file order, is returned.
func (b *Builder) Build(pattern string) (*matching.Index, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pool glob %q: %w", pattern, err)
	}
	sort.Strings(files)
	b.logger.Info("building candidate pool",
		zap.String("glob", pattern),
		zap.Int("files", len(files)),
		zap.Int("workers", b.opts.Workers))

	results := make([]analysisResult, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := b.Analyze(files[i], b.rngFor(i))
				results[i] = analysisResult{path: files[i], vec: vec, err: err}
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Single-threaded population keeps insertion order deterministic.
	index := matching.NewIndex()
	skipped := 0
	for _, r := range results {
		if r.err != nil {
			if b.opts.OnLoadFailure == config.OnLoadFailureAbort {
				return nil, fmt.Errorf("analyze %s: %w", r.path, r.err)
			}
			b.logger.Warn("skipping candidate", zap.String("path", r.path), zap.Error(r.err))
			skipped++
			continue
		}
		if err := index.Add(r.path, r.vec); err != nil {
			return nil, fmt.Errorf("add %s to index: %w", r.path, err)
		}
	}

	b.logger.Info("candidate pool ready",
		zap.Int("candidates", index.Len()),
		zap.Int("skipped", skipped))
	return index, nil
}

// Analyze characterizes one image file as a dominant-color vector,
// consulting the vector cache before loading any pixels.
func (b *Builder) Analyze(path string, rng *rand.Rand) ([]float64, error) {
	if vec, ok, err := b.cache.Get(path); err != nil {
		b.logger.Warn("vector cache read failed", zap.String("path", path), zap.Error(err))
	} else if ok {
		return vec, nil
	}

	img, err := b.loader.Load(path)
	if err != nil {
		return nil, err
	}

	pixels := colorspace.ToVectors(img, img.Bounds())
	vec, err := analysis.DominantColor(pixels, b.opts.Clusters, b.opts.SampleSize, rng)
	if err != nil {
		return nil, fmt.Errorf("dominant color: %w", err)
	}

	if err := b.cache.Put(path, vec); err != nil {
		b.logger.Warn("vector cache write failed", zap.String("path", path), zap.Error(err))
	}
	return vec, nil
}

// rngFor derives a per-candidate random source from the configured seed and
// the candidate's position.
func (b *Builder) rngFor(position int) *rand.Rand {
	return rand.New(rand.NewSource(b.opts.Seed + int64(position)))
}

package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rmmh/worldshift/go/chunk"
	"github.com/rmmh/worldshift/go/store"
	"github.com/rmmh/worldshift/go/translate"
	"github.com/rmmh/worldshift/go/versions"
)

type batch struct {
	log      *slog.Logger
	engine   *translate.Engine
	provider translate.Provider
	metrics  *metrics
	in       *store.Store
	out      *store.Store
	from, to translate.VersionKey
	workers  int
}

type translated struct {
	c   *chunk.Chunk
	pal chunk.Palette
}

func (b *batch) translateChunk(cx, cz int) (*chunk.Chunk, chunk.Palette, error) {
	version, c, pal, err := b.in.Get(cx, cz)
	if err != nil {
		return nil, nil, err
	}
	if b.from.Platform == "bedrock" {
		features, ok := versions.LevelDBFeatures(b.from.Number)
		if !ok {
			return nil, nil, errors.Errorf("no leveldb layout for %s", b.from)
		}
		if !features.Valid(versions.Key{Platform: b.from.Platform, ChunkVersion: version}) {
			return nil, nil, errors.Errorf("chunk %d,%d is stored as chunk version %d, not %s", cx, cz, version, b.from)
		}
	} else if version != b.from.Number {
		b.log.Warn("stored chunk version differs from source version", "cx", cx, "cz", cz,
			"stored", version, "source", b.from.String())
	}

	start := time.Now()
	c, pal, err = b.engine.ToUniversal(b.from, b.provider, c, pal, b.engine.Neighbors(b.in, translate.ToUniversal, b.from, b.provider, cx, cz), true)
	b.metrics.observe(translate.ToUniversal.String(), start, err)
	if err != nil {
		return nil, nil, err
	}

	start = time.Now()
	c, pal, err = b.engine.FromUniversal(b.to, b.provider, c, pal,
		b.engine.UniversalNeighbors(&storeSource{b.in, b.from.Platform}, b.provider, cx, cz), true)
	b.metrics.observe(translate.FromUniversal.String(), start, err)
	return c, pal, err
}

// run translates every chunk of the input store into the output store.
// Chunks that fail are logged and skipped; the returned count says how many.
func (b *batch) run() (int, error) {
	coords, err := b.in.Coords()
	if err != nil {
		return 0, err
	}
	runID := uuid.NewString()
	log := b.log.With("run", runID)
	log.Info("translating chunks", "chunks", len(coords), "from", b.from.String(), "to", b.to.String(), "workers", b.workers)

	work := make(chan [2]int)
	results := make(chan translated)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failed   int
		writeErr error
	)
	for range max(b.workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for xz := range work {
				c, pal, err := b.translateChunk(xz[0], xz[1])
				if err != nil {
					log.Error("chunk failed", "cx", xz[0], "cz", xz[1], "err", err)
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				results <- translated{c, pal}
			}
		}()
	}

	// sqlite wants a single writer
	written := make(chan struct{})
	go func() {
		defer close(written)
		for r := range results {
			if writeErr != nil {
				continue
			}
			writeErr = b.out.Put(b.to.Number, r.c, r.pal)
		}
	}()

	for _, xz := range coords {
		work <- xz
	}
	close(work)
	wg.Wait()
	close(results)
	<-written

	if writeErr != nil {
		return failed, errors.Wrap(writeErr, "writing output")
	}
	log.Info("done", "chunks", len(coords), "failed", failed)
	return failed, nil
}

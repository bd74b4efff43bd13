package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/okekechris/docuchat/internal/core"
)

// nativeExtensions are read or extracted directly; anything else routes
// through the fallback converter.
var nativeExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

// Pipeline converts uploaded files into embedded chunks. Per-file problems
// (bad type, oversized, empty extraction) are skips, not batch failures;
// only store/backend errors propagate.
type Pipeline struct {
	store         core.VectorStore
	pdf           core.Extractor
	converter     core.Converter
	chunker       *Chunker
	textractedDir string
	maxFileBytes  int64
	batchWorkers  int
}

func NewPipeline(store core.VectorStore, pdf core.Extractor, converter core.Converter, chunker *Chunker, textractedDir string, maxFileBytes int64, batchWorkers int) *Pipeline {
	if batchWorkers <= 0 {
		batchWorkers = 4
	}
	return &Pipeline{
		store:         store,
		pdf:           pdf,
		converter:     converter,
		chunker:       chunker,
		textractedDir: textractedDir,
		maxFileBytes:  maxFileBytes,
		batchWorkers:  batchWorkers,
	}
}

// fileChunks holds one file's contribution to a batch write.
type fileChunks struct {
	IDs     []string
	Texts   []string
	Sources []string
}

// Run ingests a single file. Ingestion is idempotent by contract: a source
// path that already has chunks in the collection errors with
// core.ErrAlreadyIngested instead of re-embedding.
func (p *Pipeline) Run(ctx context.Context, path string) error {
	exists, err := p.store.HasSource(ctx, path)
	if err != nil {
		return fmt.Errorf("check source: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", core.ErrAlreadyIngested, path)
	}

	fc, err := p.collect(ctx, path)
	if err != nil {
		// Per-file rejection is a skip, not a job failure.
		log.Printf("Pipeline: skipping %s: %v", filepath.Base(path), err)
		return nil
	}
	if len(fc.Texts) == 0 {
		log.Printf("Pipeline: %s produced no chunks, nothing to embed", filepath.Base(path))
		return nil
	}

	if err := p.store.Add(ctx, fc.IDs, fc.Texts, fc.Sources); err != nil {
		return fmt.Errorf("embed %s: %w", filepath.Base(path), err)
	}
	log.Printf("Pipeline: embedded %d chunks for %s", len(fc.Texts), filepath.Base(path))
	return nil
}

// RunBatch processes files concurrently, accumulates every file's chunks and
// issues a single store write for the whole batch. An empty batch skips the
// write entirely.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	pool, err := ants.NewPool(p.batchWorkers)
	if err != nil {
		return fmt.Errorf("batch pool: %w", err)
	}
	defer pool.Release()

	results := make([]*fileChunks, len(paths))
	checkErrs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			exists, err := p.store.HasSource(ctx, path)
			if err != nil {
				// Store failure, not a per-file problem: fails the batch.
				checkErrs[i] = fmt.Errorf("check source %s: %w", filepath.Base(path), err)
				return
			}
			if exists {
				log.Printf("Pipeline: skipping %s: already ingested", filepath.Base(path))
				return
			}
			fc, err := p.collect(ctx, path)
			if err != nil {
				log.Printf("Pipeline: skipping %s: %v", filepath.Base(path), err)
				return
			}
			results[i] = fc
		}); err != nil {
			wg.Done()
			log.Printf("Pipeline: submit %s: %v", filepath.Base(path), err)
		}
	}
	wg.Wait()

	for _, err := range checkErrs {
		if err != nil {
			return err
		}
	}

	// Merge in input order so ids stay deterministic per document.
	var ids, texts, sources []string
	for _, fc := range results {
		if fc == nil {
			continue
		}
		ids = append(ids, fc.IDs...)
		texts = append(texts, fc.Texts...)
		sources = append(sources, fc.Sources...)
	}
	if len(texts) == 0 {
		log.Printf("Pipeline: batch produced no chunks, skipping store write")
		return nil
	}
	if err := p.store.Add(ctx, ids, texts, sources); err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	log.Printf("Pipeline: embedded %d chunks from %d files", len(texts), len(paths))
	return nil
}

// collect validates one file and turns it into chunk ids/texts/metadata.
// Every returned error is a skip condition for the caller.
func (p *Pipeline) collect(ctx context.Context, path string) (*fileChunks, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if p.maxFileBytes > 0 && info.Size() > p.maxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes", core.ErrFileTooLarge, info.Size())
	}

	stream, err := p.extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(stream) == "" {
		return nil, core.ErrEmptyDocument
	}

	chunks := p.chunker.Chunk(stream)
	if len(chunks) == 0 {
		return nil, core.ErrEmptyDocument
	}

	stem := fileStem(path)
	fc := &fileChunks{
		IDs:     make([]string, len(chunks)),
		Texts:   chunks,
		Sources: make([]string, len(chunks)),
	}
	for i := range chunks {
		fc.IDs[i] = fmt.Sprintf("%s_%d", stem, i)
		fc.Sources[i] = path
	}
	return fc, nil
}

// extract routes the file to the right extractor by extension.
func (p *Pipeline) extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !nativeExtensions[ext] {
		return p.converter.Convert(ctx, path)
	}
	if ext == ".pdf" {
		stream, err := p.pdf.Extract(ctx, path)
		if err != nil {
			return "", err
		}
		p.writeDerived(path, stream)
		return stream, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	return string(raw), nil
}

// writeDerived persists the extracted text stream as the document's markdown
// artifact; it is best-effort and removed again on delete.
func (p *Pipeline) writeDerived(path, stream string) {
	out := filepath.Join(p.textractedDir, fileStem(path)+".md")
	if err := os.WriteFile(out, []byte(stream), 0o644); err != nil {
		log.Printf("Pipeline: write derived markdown for %s: %v", filepath.Base(path), err)
	}
}

// Delete removes every chunk whose source matches path, then the original
// file and, for PDFs, the derived markdown artifact.
func (p *Pipeline) Delete(ctx context.Context, path string) error {
	n, err := p.store.DeleteBySource(ctx, path)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	log.Printf("Pipeline: removed %d chunks for %s", n, filepath.Base(path))

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		derived := filepath.Join(p.textractedDir, fileStem(path)+".md")
		if err := os.Remove(derived); err != nil && !os.IsNotExist(err) {
			log.Printf("Pipeline: remove derived markdown %s: %v", derived, err)
		}
	}
	return nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package workspace

import (
	"bufio"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/phpsymbols/internal/document"
)

// Statistics describes a directory pass
type Statistics struct {
	FilesIndexed     int
	FilesSkipped     int
	FilesFailed      int
	SymbolsExtracted int
	Duration         time.Duration
	ErrorMessages    []string
}

// IndexDirectory reads every source file below root. Unchanged files and
// open documents are skipped. Per-file failures are collected in the
// statistics; only discovery and cancellation abort the pass.
func (w *Workspace) IndexDirectory(ctx context.Context, root string) (*Statistics, error) {
	if !w.indexing.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer w.indexing.Release()

	start := time.Now()
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	files, err := w.discoverFiles(root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	w.log.Info("indexing directory", "root", root, "files", len(files), "workers", w.cfg.Workers)

	var (
		indexed, skipped, failed, symbols atomic.Int32
		mu                                sync.Mutex
		stats                             = &Statistics{ErrorMessages: make([]string, 0)}
	)

	workers := w.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, changed, err := w.indexFile(gctx, path)
			switch {
			case err == nil && !changed:
				skipped.Add(1)
			case err == nil:
				indexed.Add(1)
				symbols.Add(int32(n))
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case errors.Is(err, ErrSuperseded):
				skipped.Add(1)
			default:
				failed.Add(1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.FilesIndexed = int(indexed.Load())
	stats.FilesSkipped = int(skipped.Load())
	stats.FilesFailed = int(failed.Load())
	stats.SymbolsExtracted = int(symbols.Load())
	stats.Duration = time.Since(start)

	w.log.Info("indexing complete",
		"root", root,
		"indexed", stats.FilesIndexed,
		"skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed,
		"symbols", stats.SymbolsExtracted,
		"duration", stats.Duration)
	return stats, nil
}

// IndexFile reads one file from disk unless it is open in the editor
func (w *Workspace) IndexFile(ctx context.Context, path string) error {
	_, _, err := w.indexFile(ctx, path)
	return err
}

// RemoveFile drops a file deleted from disk unless it is open in the editor
func (w *Workspace) RemoveFile(path string) {
	u := pathURI(path)
	if w.IsOpen(u) {
		return
	}
	w.Remove(u)
}

// indexFile returns the number of symbols published and whether the file
// changed since it was last read
func (w *Workspace) indexFile(ctx context.Context, path string) (int, bool, error) {
	u := pathURI(path)
	if w.IsOpen(u) {
		return 0, false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false, err
	}
	hash := sha256.Sum256(content)

	w.mu.RLock()
	e, ok := w.docs[u]
	unchanged := ok && e.doc != nil && e.hash == hash
	w.mu.RUnlock()
	if unchanged {
		return 0, false, nil
	}

	doc := document.New(u, string(content), 0)
	if err := w.parseAndPublish(ctx, doc, w.external); err != nil {
		return 0, false, err
	}
	table, ok := w.store.Table(u)
	if !ok {
		return 0, true, nil
	}
	return len(table.Symbols()), true, nil
}

// discoverFiles finds the source files below root, skipping ignored
// directories and paths matched by the root .gitignore
func (w *Workspace) discoverFiles(root string) ([]string, error) {
	gi := loadGitignore(root)

	var files []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil // Skip unreadable entries
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			if path != root && w.cfg.IsIgnoredDir(entry.Name()) {
				return filepath.SkipDir
			}
			if gi != nil && path != root && gi.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.cfg.IsSource(path) {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// loadGitignore compiles the patterns of root/.gitignore, nil if absent
func loadGitignore(root string) *ignore.GitIgnore {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

func pathURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}

// PathURI converts a file path to a document uri
func PathURI(path string) protocol.DocumentURI { return pathURI(path) }

func readFile(u protocol.DocumentURI) (*document.Document, error) {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return nil, fmt.Errorf("not a file uri: %s", u)
	}
	content, err := os.ReadFile(uri.URI(u).Filename())
	if err != nil {
		return nil, err
	}
	return document.New(u, string(content), 0), nil
}

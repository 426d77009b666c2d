// Package workspace keeps the symbol store in step with documents.
//
// Open documents are owned by the editor: their text arrives through Open
// and Change, and changes are coalesced by a per-document debouncer before
// the document is parsed and read again. Files on disk are read through
// IndexDirectory and IndexFile. A new pass over a document cancels any pass
// still running for it, and a pass only publishes its table if no newer pass
// was started in the meantime.
package workspace

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.lsp.dev/protocol"

	"github.com/dshills/phpsymbols/internal/config"
	"github.com/dshills/phpsymbols/internal/debounce"
	"github.com/dshills/phpsymbols/internal/definition"
	"github.com/dshills/phpsymbols/internal/document"
	"github.com/dshills/phpsymbols/internal/logging"
	"github.com/dshills/phpsymbols/internal/reader"
	"github.com/dshills/phpsymbols/internal/resolve"
	"github.com/dshills/phpsymbols/internal/storage"
	"github.com/dshills/phpsymbols/internal/store"
	"github.com/dshills/phpsymbols/internal/syntax"
	"github.com/dshills/phpsymbols/pkg/types"
)

var (
	// ErrSuperseded is returned when a newer pass over the same document
	// started before this one could publish
	ErrSuperseded = errors.New("superseded by a newer edit")

	// ErrIndexInProgress is returned when a directory pass is already running
	ErrIndexInProgress = errors.New("indexing already in progress")
)

// Options configures a Workspace
type Options struct {
	Config config.Config

	// Parser produces syntax trees; required for Open, Change and indexing
	Parser syntax.Parser

	// Catalog receives every published table when set
	Catalog storage.Catalog

	Logger *slog.Logger
}

// Workspace orchestrates parsing, reading and publishing of documents
type Workspace struct {
	cfg      config.Config
	parser   syntax.Parser
	catalog  storage.Catalog
	log      *slog.Logger
	builtins *resolve.Builtins

	full     *reader.Reader
	external *reader.Reader
	store    *store.Store
	provider *definition.Provider
	changes  *debounce.Group[protocol.DocumentURI, edit]
	matches  *matchCache
	indexing indexLock

	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*entry
}

// entry tracks one document. gen increases with every pass; cancel stops
// the pass numbered gen.
type entry struct {
	doc    *document.Document
	root   *syntax.Node
	open   bool
	hash   [32]byte
	errors []types.ParseError

	gen    uint64
	cancel context.CancelFunc
}

type edit struct {
	text    string
	version int32
}

// New creates a workspace
func New(opts Options) *Workspace {
	log := logging.OrNop(opts.Logger)
	builtins := resolve.DefaultBuiltins()
	w := &Workspace{
		cfg:      opts.Config,
		parser:   opts.Parser,
		catalog:  opts.Catalog,
		log:      log,
		builtins: builtins,
		full:     reader.New(reader.Options{Builtins: builtins, Logger: log}),
		external: reader.New(reader.Options{ExternalOnly: opts.Config.ExternalOnly, Builtins: builtins, Logger: log}),
		store: store.New(store.Options{
			CaseSensitive: opts.Config.CaseSensitive,
			Locale:        opts.Config.Locale,
			Logger:        log,
		}),
		matches: newMatchCache(matchCacheSize),
		docs:    make(map[protocol.DocumentURI]*entry),
	}
	w.provider = definition.New(w.store, w, definition.Options{Builtins: builtins, Logger: log})
	w.changes = debounce.NewGroup(opts.Config.Debounce, w.applyEdit)
	return w
}

// Store returns the symbol store
func (w *Workspace) Store() *store.Store { return w.store }

// Open registers an editor-owned document and reads it immediately
func (w *Workspace) Open(ctx context.Context, uri protocol.DocumentURI, text string, version int32) error {
	w.mu.Lock()
	e := w.entryLocked(uri)
	e.open = true
	w.mu.Unlock()

	return w.parseAndPublish(ctx, document.New(uri, text, version), w.full)
}

// Change records a new text for an open document. The document is read
// again once no further change has arrived for the debounce delay.
// Changes to documents that are not open are dropped.
func (w *Workspace) Change(uri protocol.DocumentURI, text string, version int32) {
	if !w.IsOpen(uri) {
		w.log.Debug("change for unopened document ignored", "uri", uri, "version", version)
		return
	}
	w.changes.Push(uri, edit{text: text, version: version})
}

func (w *Workspace) applyEdit(uri protocol.DocumentURI, e edit) {
	if !w.IsOpen(uri) {
		w.log.Debug("edit for closed document dropped", "uri", uri, "version", e.version)
		return
	}
	err := w.parseAndPublish(context.Background(), document.New(uri, e.text, e.version), w.full)
	switch {
	case err == nil:
	case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
		w.log.Debug("edit superseded", "uri", uri, "version", e.version)
	default:
		w.log.Warn("failed to apply edit", "uri", uri, "version", e.version, "error", err)
	}
}

// Flush applies every pending change now and returns how many were pending
func (w *Workspace) Flush() int {
	return w.changes.FlushAll()
}

// Close releases an editor-owned document. A pending change is applied
// first. Documents backed by a file are re-read from disk with the
// external reader, others are removed.
func (w *Workspace) Close(ctx context.Context, uri protocol.DocumentURI) error {
	w.changes.Flush(uri)
	w.changes.Forget(uri)

	w.mu.Lock()
	e, ok := w.docs[uri]
	if ok {
		e.open = false
	}
	w.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrDocumentNotFound, uri)
	}

	doc, err := readFile(uri)
	if err != nil {
		w.Remove(uri)
		return nil
	}
	return w.parseAndPublish(ctx, doc, w.external)
}

// Remove drops a document and its table
func (w *Workspace) Remove(uri protocol.DocumentURI) {
	w.changes.Forget(uri)

	w.mu.Lock()
	if e, ok := w.docs[uri]; ok {
		if e.cancel != nil {
			e.cancel()
		}
		delete(w.docs, uri)
	}
	w.mu.Unlock()

	if w.store.Remove(uri) {
		w.matches.invalidate()
		w.log.Info("document removed", "uri", uri)
	}
	if w.catalog != nil {
		if err := w.catalog.DeleteDocument(context.Background(), string(uri)); err != nil && !errors.Is(err, storage.ErrNotFound) {
			w.log.Warn("failed to delete catalog document", "uri", uri, "error", err)
		}
	}
}

// UpdateDocument reads an already parsed document and publishes its table.
// Open documents are read in full, others with the external reader.
func (w *Workspace) UpdateDocument(ctx context.Context, doc *document.Document, root *syntax.Node) error {
	r := w.external
	if w.IsOpen(doc.URI()) {
		r = w.full
	}
	ctx, gen, done := w.begin(ctx, doc.URI())
	defer done()
	return w.publish(ctx, gen, doc, root, r)
}

func (w *Workspace) parseAndPublish(ctx context.Context, doc *document.Document, r *reader.Reader) error {
	if w.parser == nil {
		return syntax.ErrParserUnavailable
	}
	ctx, gen, done := w.begin(ctx, doc.URI())
	defer done()

	root, err := w.parser.Parse(ctx, []byte(doc.Text()))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("failed to parse %s: %w", doc.URI(), err)
	}
	return w.publish(ctx, gen, doc, root, r)
}

// publish reads root and swaps the resulting table into the store, unless
// pass gen has been superseded
func (w *Workspace) publish(ctx context.Context, gen uint64, doc *document.Document, root *syntax.Node, r *reader.Reader) error {
	uri := doc.URI()
	res, err := r.Read(ctx, doc, root)
	if err != nil {
		return err
	}

	w.mu.Lock()
	e, ok := w.docs[uri]
	if !ok || e.gen != gen {
		w.mu.Unlock()
		return ErrSuperseded
	}
	e.doc, e.root = doc, root
	e.hash = sha256.Sum256([]byte(doc.Text()))
	e.errors = res.Errors
	table := w.store.Update(uri, res.Root)
	w.matches.invalidate()
	hash := e.hash
	w.mu.Unlock()

	w.log.Debug("document published",
		"uri", uri,
		"version", doc.Version(),
		"symbols", len(table.Symbols()),
		"errors", len(res.Errors))

	if w.catalog != nil {
		row := &storage.Document{
			URI:         string(uri),
			Version:     doc.Version(),
			ContentHash: hash,
			ParseErrors: len(res.Errors),
		}
		if err := w.catalog.ReplaceDocument(ctx, row, storage.Flatten(res.Root)); err != nil {
			w.log.Warn("failed to update catalog", "uri", uri, "error", err)
		}
	}
	return nil
}

// begin starts a new pass over uri, cancelling the running one
func (w *Workspace) begin(parent context.Context, uri protocol.DocumentURI) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)

	w.mu.Lock()
	e := w.entryLocked(uri)
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	e.cancel = cancel
	gen := e.gen
	w.mu.Unlock()

	return ctx, gen, func() {
		w.mu.Lock()
		if e.gen == gen {
			e.cancel = nil
		}
		w.mu.Unlock()
		cancel()
	}
}

func (w *Workspace) entryLocked(uri protocol.DocumentURI) *entry {
	e, ok := w.docs[uri]
	if !ok {
		e = &entry{}
		w.docs[uri] = e
	}
	return e
}

// Snapshot returns the document and syntax tree behind the current table
func (w *Workspace) Snapshot(uri protocol.DocumentURI) (*document.Document, *syntax.Node, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.docs[uri]
	if !ok || e.doc == nil {
		return nil, nil, false
	}
	return e.doc, e.root, true
}

// IsOpen reports whether uri is an editor-owned document
func (w *Workspace) IsOpen(uri protocol.DocumentURI) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.docs[uri]
	return ok && e.open
}

// Diagnostics returns the malformed regions found by the last read of uri
func (w *Workspace) Diagnostics(uri protocol.DocumentURI) []types.ParseError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if e, ok := w.docs[uri]; ok {
		return append([]types.ParseError(nil), e.errors...)
	}
	return nil
}

// Definition returns the declaration referenced at pos
func (w *Workspace) Definition(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) (*protocol.Location, error) {
	return w.provider.Definition(ctx, uri, pos)
}

// Candidates returns every declaration the reference at pos may denote
func (w *Workspace) Candidates(ctx context.Context, uri protocol.DocumentURI, pos protocol.Position) ([]*types.Symbol, error) {
	return w.provider.Resolve(ctx, uri, pos)
}

// FindExact returns the symbols named fqn across all documents
func (w *Workspace) FindExact(fqn string) []*types.Symbol {
	return w.store.Find(fqn)
}

// MatchSubstring returns the symbols with a name containing text
func (w *Workspace) MatchSubstring(text string) []*types.Symbol {
	return w.matches.get(text, w.store.Match)
}

// Status summarizes the workspace
type Status struct {
	store.Stats
	Open     int
	Pending  int
	Indexing bool
}

// Status returns workspace statistics
func (w *Workspace) Status() Status {
	st := Status{Stats: w.store.Stats(), Indexing: w.indexing.Held()}
	w.mu.RLock()
	for uri, e := range w.docs {
		if e.open {
			st.Open++
		}
		if w.changes.Pending(uri) {
			st.Pending++
		}
	}
	w.mu.RUnlock()
	return st
}

// Shutdown discards pending changes and cancels running passes
func (w *Workspace) Shutdown() {
	w.changes.Stop()
	w.mu.Lock()
	for _, e := range w.docs {
		if e.cancel != nil {
			e.cancel()
		}
	}
	w.mu.Unlock()
}

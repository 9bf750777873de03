// Package project applies a template to a target directory: it resolves the
// template's values, renders every path and file of the template tree and
// writes the results, consulting a conflict resolver for files that changed.
package project

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/softprops/porteurbars/internal/conflict"
	"github.com/softprops/porteurbars/internal/defaults"
	tmpl "github.com/softprops/porteurbars/internal/template"
)

// DirPerms are the permissions for directories created under the target (rwxr-xr-x)
const DirPerms os.FileMode = 0755

// Options control a single apply.
type Options struct {
	// AcceptDefaults uses every default value without consulting the
	// environment or prompting.
	AcceptDefaults bool
	// KeepExisting resolves every conflict as Keep without showing a diff.
	KeepExisting bool
}

// Applier applies templates to target directories. An apply runs strictly
// sequentially on the calling goroutine.
type Applier struct {
	renderer  tmpl.Renderer
	values    ValueResolver
	conflicts ConflictResolver
	recorder  Recorder
	logger    *slog.Logger
	DryRun    bool
}

// New creates a new Applier. Logging goes to stderr at info level.
func New(renderer tmpl.Renderer, values ValueResolver, conflicts ConflictResolver) *Applier {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)

	return &Applier{
		renderer:  renderer,
		values:    values,
		conflicts: conflicts,
		logger:    slog.New(handler),
	}
}

// WithLogger sets a custom logger
func (a *Applier) WithLogger(logger *slog.Logger) *Applier {
	a2 := *a
	a2.logger = logger

	return &a2
}

// WithRecorder returns a new Applier that records apply history in r
func (a *Applier) WithRecorder(r Recorder) *Applier {
	a2 := *a
	a2.recorder = r

	return &a2
}

// Apply applies t to target. The defaults file is loaded and every value is
// resolved before anything is written; a missing defaults file fails with
// ErrDefaultsNotFound and leaves the target untouched.
//
// Files written before a later failure are not rolled back.
func (a *Applier) Apply(ctx context.Context, t *Template, target string, opts Options) (*Summary, error) {
	defs, err := defaults.Load(t.DefaultsPath())
	if err != nil {
		return nil, NewPathError("load defaults", t.DefaultsPath(), err)
	}

	tree := t.TreePath()
	if info, statErr := os.Stat(tree); statErr != nil {
		return nil, NewPathError("open template tree", tree, statErr)
	} else if !info.IsDir() {
		return nil, NewPathError("open template tree", tree, ErrNotADirectory)
	}

	a.logger.Debug("resolving template values",
		slog.String("defaults", t.DefaultsPath()),
		slog.Int("count", len(defs)))

	values, err := a.values.Resolve(defs, opts.AcceptDefaults)
	if err != nil {
		return nil, fmt.Errorf("resolving values: %w", err)
	}

	w := a.newWalk(ctx, tree, target, values, opts.KeepExisting)
	if a.recorder != nil && !a.DryRun {
		id, recErr := a.beginRecord(t.Dir(), target)
		if recErr != nil {
			a.logger.Warn("failed to record apply", slog.String("error", recErr.Error()))
		} else {
			w.applyID = id
		}
	}

	return w.run()
}

func (a *Applier) beginRecord(templateRoot, target string) (int64, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return 0, fmt.Errorf("resolving target: %w", err)
	}

	return a.recorder.BeginApply(templateRoot, abs)
}

// Walk renders the tree rooted at treeRoot into targetRoot using values.
// The target root is created first, even when the tree is empty. The tree
// root itself is not mapped, only its descendants, parents before children.
// With keepExisting set every conflict is kept without asking.
func (a *Applier) Walk(ctx context.Context, treeRoot, targetRoot string, values tmpl.Context, keepExisting bool) (*Summary, error) {
	return a.newWalk(ctx, treeRoot, targetRoot, values, keepExisting).run()
}

type walk struct {
	a            *Applier
	ctx          context.Context
	values       tmpl.Context
	treeRoot     string
	targetRoot   string
	keepExisting bool
	applyID      int64
	summary      *Summary
}

func (a *Applier) newWalk(ctx context.Context, treeRoot, targetRoot string, values tmpl.Context, keepExisting bool) *walk {
	return &walk{
		a:            a,
		ctx:          ctx,
		values:       values,
		treeRoot:     treeRoot,
		targetRoot:   targetRoot,
		keepExisting: keepExisting,
		summary:      NewSummary(targetRoot),
	}
}

func (w *walk) run() (*Summary, error) {
	if !w.a.DryRun {
		if err := os.MkdirAll(w.targetRoot, DirPerms); err != nil {
			return w.summary, NewPathError("create target", w.targetRoot, err)
		}
	}

	err := filepath.WalkDir(w.treeRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return NewPathError("walk", path, err)
		}

		if path == w.treeRoot {
			return nil
		}

		if err := checkContext(w.ctx); err != nil {
			return err
		}

		rel, err := filepath.Rel(w.treeRoot, path)
		if err != nil {
			return NewPathError("walk", path, err)
		}
		rel = filepath.ToSlash(rel)

		renderedRel, err := w.a.renderer.RenderPath(rel, w.values)
		if err != nil {
			return fmt.Errorf("rendering path: %w", err)
		}
		targetPath := filepath.Join(w.targetRoot, filepath.FromSlash(renderedRel))

		w.a.logger.Debug("applying",
			slog.String("entry", rel),
			slog.String("target", targetPath))

		if d.IsDir() {
			return w.applyDir(targetPath, renderedRel)
		}

		return w.applyFile(path, rel, targetPath, renderedRel)
	})

	return w.summary, err
}

func (w *walk) applyDir(targetPath, renderedRel string) error {
	if !w.a.DryRun {
		if err := os.MkdirAll(targetPath, DirPerms); err != nil {
			return NewPathError("create directory", targetPath, err)
		}
	}

	w.summary.AddDirectory(renderedRel)

	return nil
}

func (w *walk) applyFile(srcPath, rel, targetPath, renderedRel string) error {
	src, err := os.ReadFile(srcPath) //nolint:gosec // path from template tree
	if err != nil {
		return NewPathError("read template", srcPath, err)
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return NewPathError("read template", srcPath, err)
	}

	rendered, err := w.render(rel, src)
	if err != nil {
		return err
	}

	outcome, onDisk, err := w.place(targetPath, rendered, info.Mode().Perm())
	if err != nil {
		return err
	}

	w.summary.AddFile(renderedRel, outcome)
	w.record(renderedRel, outcome, onDisk)

	return nil
}

// render renders file content. Content that is not valid UTF-8 is treated as
// a binary asset and returned unchanged.
func (w *walk) render(rel string, src []byte) ([]byte, error) {
	if !utf8.Valid(src) {
		w.a.logger.Debug("copying binary file verbatim", slog.String("entry", rel))
		return src, nil
	}

	out, err := w.a.renderer.Render(rel, string(src), w.values)
	if err != nil {
		return nil, fmt.Errorf("rendering content: %w", err)
	}

	return []byte(out), nil
}

// place writes rendered to targetPath unless an existing file must be kept.
// It returns the content left at targetPath.
func (w *walk) place(targetPath string, rendered []byte, perm os.FileMode) (Outcome, []byte, error) {
	current, err := os.ReadFile(targetPath) //nolint:gosec // path under target root
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := w.write(targetPath, rendered, perm); err != nil {
			return "", nil, err
		}
		return OutcomeCreated, rendered, nil

	case err != nil:
		return "", nil, NewPathError("read existing", targetPath, err)

	case bytes.Equal(current, rendered):
		return OutcomeUnchanged, current, nil

	case w.a.DryRun:
		return OutcomeConflict, current, nil

	case w.keepExisting:
		w.a.logger.Info("keeping existing file", slog.String("path", targetPath))
		return OutcomeKept, current, nil
	}

	decision, err := w.a.conflicts.Resolve(string(current), string(rendered), targetPath)
	if err != nil {
		return "", nil, fmt.Errorf("resolving conflict for %s: %w", targetPath, err)
	}

	w.a.logger.Info("conflict resolved",
		slog.String("path", targetPath),
		slog.String("decision", decision.String()))

	if decision == conflict.Keep {
		return OutcomeKept, current, nil
	}

	if err := w.write(targetPath, rendered, perm); err != nil {
		return "", nil, err
	}

	return OutcomeOverwritten, rendered, nil
}

// write truncates or creates targetPath with content. The permission bits are
// only applied to newly created files, which are always owner-writable so a
// later apply can overwrite them.
func (w *walk) write(targetPath string, content []byte, perm os.FileMode) error {
	if w.a.DryRun {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), DirPerms); err != nil {
		return NewPathError("create directory", filepath.Dir(targetPath), err)
	}

	if err := os.WriteFile(targetPath, content, perm|0200); err != nil {
		return NewPathError("write", targetPath, err)
	}

	return nil
}

// record stores the outcome of path with the hash of the content on disk.
func (w *walk) record(path string, outcome Outcome, content []byte) {
	if w.a.recorder == nil || w.applyID == 0 {
		return
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(content))
	if err := w.a.recorder.RecordFile(w.applyID, path, string(outcome), hash); err != nil {
		w.a.logger.Warn("failed to record file outcome",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}

// checkContext checks if context is canceled and returns error
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

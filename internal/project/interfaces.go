package project

import (
	"github.com/softprops/porteurbars/internal/conflict"
	"github.com/softprops/porteurbars/internal/defaults"
	tmpl "github.com/softprops/porteurbars/internal/template"
)

// ValueResolver turns parsed defaults into a render context
type ValueResolver interface {
	Resolve(defs defaults.Defaults, acceptDefaults bool) (tmpl.Context, error)
}

// ConflictResolver decides whether an existing file that differs from its
// rendered replacement is kept or overwritten
type ConflictResolver interface {
	Resolve(current, proposed, targetPath string) (conflict.Decision, error)
}

// Recorder persists apply history
type Recorder interface {
	BeginApply(templateRoot, targetRoot string) (int64, error)
	RecordFile(applyID int64, path, outcome, contentHash string) error
}

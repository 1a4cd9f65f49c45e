package reconcile

import (
	"regexp"

	"github.com/arthur-debert/stowaway/pkg/filestate"
	"github.com/arthur-debert/stowaway/pkg/logging"
	"github.com/arthur-debert/stowaway/pkg/pathkey"
	"github.com/arthur-debert/stowaway/pkg/types"
)

// Action is what an update deployment does with one path
type Action int

const (
	ActionNone Action = iota
	ActionInstall
	ActionLeaveAlone
	ActionBackupAndInstall
	ActionDelete
	ActionBackupAndDelete
	ActionIgnore
)

// String returns the action name used in logs and reports
func (a Action) String() string {
	switch a {
	case ActionInstall:
		return "install"
	case ActionLeaveAlone:
		return "leave-alone"
	case ActionBackupAndInstall:
		return "backup+install"
	case ActionDelete:
		return "delete"
	case ActionBackupAndDelete:
		return "backup+delete"
	case ActionIgnore:
		return "ignore"
	default:
		return "none"
	}
}

// ExistsFunc reports whether a path is present on disk
type ExistsFunc func(pathkey.Key) bool

// Options tune a reconciliation
type Options struct {
	// Ignore excludes relative paths of the new state from installation,
	// matching what the rescan excluded from the current state.
	Ignore *regexp.Regexp
	// Exists checks absolute paths the rescan never saw. nil means "never exists".
	Exists ExistsFunc
}

// Plan is the outcome of a reconciliation. ToBackup, ToDelete, ToInstall
// and ToSkip are ordered; ToLeaveAlone carries the fingerprint each
// retained path keeps in the resulting state.
type Plan struct {
	ToBackup     []pathkey.Key
	ToDelete     []pathkey.Key
	ToInstall    []pathkey.Key
	ToLeaveAlone *filestate.Map
	// ToSkip are new paths that match the ignore pattern and are not installed
	ToSkip []pathkey.Key

	backup  map[pathkey.Key]bool
	deletes map[pathkey.Key]bool
	install map[pathkey.Key]bool
	skip    map[pathkey.Key]bool
}

// ActionFor returns what the plan does with k
func (p *Plan) ActionFor(k pathkey.Key) Action {
	switch {
	case p.skip[k]:
		return ActionIgnore
	case p.ToLeaveAlone.Has(k):
		return ActionLeaveAlone
	case p.backup[k] && p.install[k]:
		return ActionBackupAndInstall
	case p.backup[k] && p.deletes[k]:
		return ActionBackupAndDelete
	case p.install[k]:
		return ActionInstall
	case p.deletes[k]:
		return ActionDelete
	default:
		return ActionNone
	}
}

// Excluded returns every new path the materializer must not write
func (p *Plan) Excluded() map[pathkey.Key]bool {
	out := make(map[pathkey.Key]bool, p.ToLeaveAlone.Len()+len(p.ToSkip))
	for _, k := range p.ToLeaveAlone.Keys() {
		out[k] = true
	}
	for _, k := range p.ToSkip {
		out[k] = true
	}
	return out
}

func (p *Plan) addBackup(k pathkey.Key) {
	if !p.backup[k] {
		p.backup[k] = true
		p.ToBackup = append(p.ToBackup, k)
	}
}

// Reconcile decides the action for every path across the three states and
// records the caller-visible differences in diff (which may be nil).
func Reconcile(original *filestate.Map, current *filestate.RescanResult, newFiles *filestate.Map, opts Options, diff *types.DeployDifferences) *Plan {
	logger := logging.GetLogger("reconcile")

	plan := &Plan{
		ToLeaveAlone: filestate.NewMap(),
		backup:       make(map[pathkey.Key]bool),
		deletes:      make(map[pathkey.Key]bool),
		install:      make(map[pathkey.Key]bool),
		skip:         make(map[pathkey.Key]bool),
	}

	ignored := func(k pathkey.Key) bool {
		return opts.Ignore != nil && !k.IsAbsolute() && opts.Ignore.MatchString(k.String())
	}
	exists := opts.Exists
	if exists == nil {
		exists = func(pathkey.Key) bool { return false }
	}

	for _, k := range newFiles.Keys() {
		if ignored(k) || current.IsIgnored(k) {
			plan.skip[k] = true
			plan.ToSkip = append(plan.ToSkip, k)
		}
	}

	recordDifferences(original, current, newFiles, plan.skip, diff)

	// no baseline to compare against: keeping the live file could lose information
	for _, k := range current.Additions.Keys() {
		if !plan.skip[k] {
			plan.addBackup(k)
		}
	}

	for _, k := range current.Changes.Keys() {
		if plan.skip[k] {
			continue
		}
		changedHash, _ := current.Changes.Get(k)
		newHash, inNew := newFiles.Get(k)
		if !inNew {
			plan.addBackup(k)
			continue
		}
		originalHash, _ := original.Get(k)
		if newHash == originalHash {
			plan.ToLeaveAlone.Put(k, originalHash)
		} else if newHash != changedHash {
			plan.addBackup(k)
		}
	}

	// The rescan only sees the destination tree and the baseline's absolute
	// paths. A new absolute path that already exists elsewhere is ambiguous.
	for _, k := range newFiles.Keys() {
		if current.Has(k) || plan.skip[k] || !k.IsAbsolute() {
			continue
		}
		if exists(k) {
			plan.addBackup(k)
			diff.RemoveAddedFile(k)
			diff.AddChangedFile(k)
		}
	}

	for _, k := range current.Keys() {
		currentHash, _ := current.Get(k)
		if currentHash == filestate.Deleted || current.Deletions.Has(k) {
			continue
		}
		if newFiles.Has(k) || plan.skip[k] {
			continue
		}
		plan.deletes[k] = true
		plan.ToDelete = append(plan.ToDelete, k)
	}

	for _, k := range newFiles.Keys() {
		if plan.skip[k] || plan.ToLeaveAlone.Has(k) {
			continue
		}
		plan.install[k] = true
		plan.ToInstall = append(plan.ToInstall, k)
	}

	logger.Debug().
		Int("backup", len(plan.ToBackup)).
		Int("delete", len(plan.ToDelete)).
		Int("install", len(plan.ToInstall)).
		Int("leave_alone", plan.ToLeaveAlone.Len()).
		Int("skip", len(plan.ToSkip)).
		Msg("Reconciliation planned")

	return plan
}

// recordDifferences reports what changes on disk: paths that appear,
// paths whose content changes, and paths that go away.
func recordDifferences(original *filestate.Map, current *filestate.RescanResult, newFiles *filestate.Map, skip map[pathkey.Key]bool, diff *types.DeployDifferences) {
	if diff == nil {
		return
	}

	diff.AddIgnoredFiles(current.Ignored)
	for _, k := range newFiles.Keys() {
		if skip[k] {
			diff.AddIgnoredFiles([]pathkey.Key{k})
		}
	}

	for _, k := range current.Keys() {
		currentHash, _ := current.Get(k)
		if skip[k] {
			continue
		}
		newHash, inNew := newFiles.Get(k)

		switch {
		case currentHash == filestate.Deleted:
			if inNew {
				diff.AddAddedFile(k)
			}
		case !inNew:
			diff.AddDeletedFile(k)
		case newHash != currentHash:
			originalHash, _ := original.Get(k)
			if newHash != originalHash {
				diff.AddChangedFile(k)
			}
		}
	}

	for _, k := range newFiles.Keys() {
		if !current.Has(k) && !skip[k] {
			diff.AddAddedFile(k)
		}
	}
}

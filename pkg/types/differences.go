package types

import (
	"github.com/arthur-debert/stowaway/pkg/pathkey"
)

// DeployDifferences collects what a deployment did (or, in a dry run,
// would do) to the destination. One instance is used per deployment call.
// The engine only writes to it; every method is safe on a nil receiver so
// callers that do not want a report can pass nil.
type DeployDifferences struct {
	added   keySet
	changed keySet
	deleted keySet
	ignored keySet

	realized pairs
	backedUp pairs
	restored pairs
	errors   pairs
}

// NewDeployDifferences creates an empty report
func NewDeployDifferences() *DeployDifferences {
	return &DeployDifferences{}
}

// AddAddedFile records a path that is new to the destination
func (d *DeployDifferences) AddAddedFile(k pathkey.Key) {
	if d != nil {
		d.added.add(k)
	}
}

// AddAddedFiles records several added paths
func (d *DeployDifferences) AddAddedFiles(keys []pathkey.Key) {
	for _, k := range keys {
		d.AddAddedFile(k)
	}
}

// RemoveAddedFile withdraws a path previously reported as added
func (d *DeployDifferences) RemoveAddedFile(k pathkey.Key) {
	if d != nil {
		d.added.remove(k)
	}
}

// AddChangedFile records a path whose content changes
func (d *DeployDifferences) AddChangedFile(k pathkey.Key) {
	if d != nil {
		d.changed.add(k)
	}
}

// AddDeletedFile records a path removed from the destination
func (d *DeployDifferences) AddDeletedFile(k pathkey.Key) {
	if d != nil {
		d.deleted.add(k)
	}
}

// AddIgnoredFiles records paths excluded by the ignore pattern
func (d *DeployDifferences) AddIgnoredFiles(keys []pathkey.Key) {
	if d == nil {
		return
	}
	for _, k := range keys {
		d.ignored.add(k)
	}
}

// AddRealizedFile records the substituted content written for a path
func (d *DeployDifferences) AddRealizedFile(k pathkey.Key, content string) {
	if d != nil {
		d.realized.put(k, content)
	}
}

// AddBackedUpFile records where a path's previous content was copied to
func (d *DeployDifferences) AddBackedUpFile(k pathkey.Key, backupLocation string) {
	if d != nil {
		d.backedUp.put(k, backupLocation)
	}
}

// AddRestoredFile records a path restored from a backup copy
func (d *DeployDifferences) AddRestoredFile(k pathkey.Key, backupLocation string) {
	if d != nil {
		d.restored.put(k, backupLocation)
	}
}

// AddError records a non-fatal failure for a path
func (d *DeployDifferences) AddError(k pathkey.Key, message string) {
	if d != nil {
		d.errors.put(k, message)
	}
}

// AddedFiles returns the added paths in the order they were reported
func (d *DeployDifferences) AddedFiles() []pathkey.Key {
	if d == nil {
		return nil
	}
	return d.added.list()
}

// ChangedFiles returns the changed paths
func (d *DeployDifferences) ChangedFiles() []pathkey.Key {
	if d == nil {
		return nil
	}
	return d.changed.list()
}

// DeletedFiles returns the deleted paths
func (d *DeployDifferences) DeletedFiles() []pathkey.Key {
	if d == nil {
		return nil
	}
	return d.deleted.list()
}

// IgnoredFiles returns the ignored paths
func (d *DeployDifferences) IgnoredFiles() []pathkey.Key {
	if d == nil {
		return nil
	}
	return d.ignored.list()
}

// RealizedFiles maps each realized path to its substituted content
func (d *DeployDifferences) RealizedFiles() map[pathkey.Key]string {
	if d == nil {
		return map[pathkey.Key]string{}
	}
	return d.realized.asMap()
}

// BackedUpFiles maps each backed up path to its backup location
func (d *DeployDifferences) BackedUpFiles() map[pathkey.Key]string {
	if d == nil {
		return map[pathkey.Key]string{}
	}
	return d.backedUp.asMap()
}

// RestoredFiles maps each restored path to the backup it came from
func (d *DeployDifferences) RestoredFiles() map[pathkey.Key]string {
	if d == nil {
		return map[pathkey.Key]string{}
	}
	return d.restored.asMap()
}

// Errors maps each path to the non-fatal error it produced
func (d *DeployDifferences) Errors() map[pathkey.Key]string {
	if d == nil {
		return map[pathkey.Key]string{}
	}
	return d.errors.asMap()
}

// HasChanges reports whether the deployment touched anything on disk
func (d *DeployDifferences) HasChanges() bool {
	if d == nil {
		return false
	}
	return len(d.added.order)+len(d.changed.order)+len(d.deleted.order)+
		len(d.backedUp.order)+len(d.restored.order) > 0
}

// Summary counts the entries of every category
type Summary struct {
	Added    int `json:"added" yaml:"added"`
	Changed  int `json:"changed" yaml:"changed"`
	Deleted  int `json:"deleted" yaml:"deleted"`
	Ignored  int `json:"ignored" yaml:"ignored"`
	Realized int `json:"realized" yaml:"realized"`
	BackedUp int `json:"backed_up" yaml:"backed_up"`
	Restored int `json:"restored" yaml:"restored"`
	Errors   int `json:"errors" yaml:"errors"`
}

// Summary returns per-category counts
func (d *DeployDifferences) Summary() Summary {
	if d == nil {
		return Summary{}
	}
	return Summary{
		Added:    len(d.added.order),
		Changed:  len(d.changed.order),
		Deleted:  len(d.deleted.order),
		Ignored:  len(d.ignored.order),
		Realized: len(d.realized.order),
		BackedUp: len(d.backedUp.order),
		Restored: len(d.restored.order),
		Errors:   len(d.errors.order),
	}
}

// PathValue is one entry of an ordered report mapping
type PathValue struct {
	Path  string `json:"path" yaml:"path"`
	Value string `json:"value" yaml:"value"`
}

// Report is the serializable form of DeployDifferences
type Report struct {
	Summary  Summary     `json:"summary" yaml:"summary"`
	Added    []string    `json:"added,omitempty" yaml:"added,omitempty"`
	Changed  []string    `json:"changed,omitempty" yaml:"changed,omitempty"`
	Deleted  []string    `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Ignored  []string    `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	Realized []PathValue `json:"realized,omitempty" yaml:"realized,omitempty"`
	BackedUp []PathValue `json:"backed_up,omitempty" yaml:"backed_up,omitempty"`
	Restored []PathValue `json:"restored,omitempty" yaml:"restored,omitempty"`
	Errors   []PathValue `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Report converts the accumulator into its serializable form, preserving order
func (d *DeployDifferences) Report() Report {
	if d == nil {
		return Report{}
	}
	return Report{
		Summary:  d.Summary(),
		Added:    d.added.strings(),
		Changed:  d.changed.strings(),
		Deleted:  d.deleted.strings(),
		Ignored:  d.ignored.strings(),
		Realized: d.realized.entries(),
		BackedUp: d.backedUp.entries(),
		Restored: d.restored.entries(),
		Errors:   d.errors.entries(),
	}
}

type keySet struct {
	order []pathkey.Key
	index map[pathkey.Key]struct{}
}

func (s *keySet) add(k pathkey.Key) {
	if s.index == nil {
		s.index = make(map[pathkey.Key]struct{})
	}
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = struct{}{}
	s.order = append(s.order, k)
}

func (s *keySet) remove(k pathkey.Key) {
	if _, ok := s.index[k]; !ok {
		return
	}
	delete(s.index, k)
	for i, existing := range s.order {
		if existing == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *keySet) list() []pathkey.Key {
	out := make([]pathkey.Key, len(s.order))
	copy(out, s.order)
	return out
}

func (s *keySet) strings() []string {
	if len(s.order) == 0 {
		return nil
	}
	out := make([]string, len(s.order))
	for i, k := range s.order {
		out[i] = k.String()
	}
	return out
}

type pairs struct {
	order  []pathkey.Key
	values map[pathkey.Key]string
}

func (p *pairs) put(k pathkey.Key, v string) {
	if p.values == nil {
		p.values = make(map[pathkey.Key]string)
	}
	if _, ok := p.values[k]; !ok {
		p.order = append(p.order, k)
	}
	p.values[k] = v
}

func (p *pairs) asMap() map[pathkey.Key]string {
	out := make(map[pathkey.Key]string, len(p.order))
	for _, k := range p.order {
		out[k] = p.values[k]
	}
	return out
}

func (p *pairs) entries() []PathValue {
	if len(p.order) == 0 {
		return nil
	}
	out := make([]PathValue, len(p.order))
	for i, k := range p.order {
		out[i] = PathValue{Path: k.String(), Value: p.values[k]}
	}
	return out
}

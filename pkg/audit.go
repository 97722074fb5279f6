package dirauditor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Outcome tells a baseline run apart from a comparison
type Outcome int

const (
	// OutcomeBaseline means no usable previous snapshot existed; the current
	// state was recorded and nothing was compared
	OutcomeBaseline Outcome = iota
	// OutcomeDiffed means the current state was compared against the previous snapshot
	OutcomeDiffed
)

// String returns the lower-case name of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeBaseline:
		return "baseline"
	case OutcomeDiffed:
		return "diffed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// AuditResult is the outcome of one audit run
type AuditResult struct {
	Outcome      Outcome       `json:"outcome"`
	Report       *ChangeReport `json:"report,omitempty"` // nil for OutcomeBaseline
	Root         string        `json:"root"`
	SnapshotPath string        `json:"snapshot_path"`
	FileCount    int           `json:"file_count"`
	Persisted    bool          `json:"persisted"`             // False when saving the new snapshot failed
	Rebaselined  bool          `json:"rebaselined,omitempty"` // A corrupt snapshot was replaced
	AttributeErr error         `json:"-"`                     // Best-effort hidden flag failure
}

// Auditor runs audits of one directory
type Auditor struct {
	root       string
	scanner    *Scanner
	store      *Store
	rebaseline bool
}

// Option configures an Auditor
type Option func(*auditorOptions) error

type auditorOptions struct {
	signatureLength int
	excludes        []string
	rebaseline      bool
}

// WithSignatureLength sets the number of signature bytes per file
func WithSignatureLength(length int) Option {
	return func(o *auditorOptions) error {
		if err := ValidateSignatureLength(length); err != nil {
			return err
		}
		o.signatureLength = length
		return nil
	}
}

// WithExcludes adds path patterns left out of every scan
func WithExcludes(patterns ...string) Option {
	return func(o *auditorOptions) error {
		o.excludes = append(o.excludes, patterns...)
		return nil
	}
}

// WithRebaseline makes a corrupt previous snapshot be replaced by a new
// baseline instead of failing the audit
func WithRebaseline(rebaseline bool) Option {
	return func(o *auditorOptions) error {
		o.rebaseline = rebaseline
		return nil
	}
}

// WithConfig applies signature, scan and snapshot settings from cfg.
// Options given after it override those values.
func WithConfig(cfg *Config) Option {
	return func(o *auditorOptions) error {
		if cfg == nil {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		all := cfg.GetAllConfig()
		o.signatureLength = all.Signature.Length
		o.excludes = append(o.excludes, all.Scan.Exclude...)
		o.rebaseline = strings.EqualFold(all.Snapshot.OnCorrupt, OnCorruptRebaseline)
		return nil
	}
}

// ValidateDirectory resolves path to an absolute, symlink-free directory.
// Errors wrap ErrInvalidInput.
func ValidateDirectory(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: directory path is empty", ErrInvalidInput)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, path, err)
	}

	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, path, err)
	}

	info, err := os.Stat(realPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidInput, path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidInput, path)
	}

	return realPath, nil
}

// NewAuditor validates root and prepares an auditor for it. Nothing is
// written until Audit is called.
func NewAuditor(root string, opts ...Option) (*Auditor, error) {
	realRoot, err := ValidateDirectory(root)
	if err != nil {
		return nil, err
	}

	options := &auditorOptions{signatureLength: DefaultSignatureLength}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	exclude, err := NewExcludeFilter(options.excludes)
	if err != nil {
		return nil, err
	}

	return &Auditor{
		root:       realRoot,
		scanner:    NewScanner(options.signatureLength, exclude),
		store:      NewStore(realRoot),
		rebaseline: options.rebaseline,
	}, nil
}

// Root returns the resolved directory being audited
func (a *Auditor) Root() string {
	return a.root
}

// Store returns the snapshot store used by the auditor
func (a *Auditor) Store() *Store {
	return a.store
}

// Scan fingerprints the directory without loading or saving anything
func (a *Auditor) Scan() (*Snapshot, error) {
	return a.scanner.Scan(a.root)
}

// Audit scans the directory, compares it with the previous snapshot if one
// exists, and saves the new snapshot.
//
// Scan failures and corrupt snapshots (unless rebaselining) abort the run
// before anything is written. When saving fails the result is still
// returned, with Persisted false, together with an error wrapping
// ErrWriteFailure.
func (a *Auditor) Audit() (*AuditResult, error) {
	defer VerboseEnter()()

	a.warnOrphans()

	current, err := a.scanner.Scan(a.root)
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", a.root, err)
	}

	result := &AuditResult{
		Outcome:      OutcomeBaseline,
		Root:         a.root,
		SnapshotPath: a.store.Path,
		FileCount:    current.Len(),
	}

	previous, err := a.store.Load()
	switch {
	case err == nil:
		result.Outcome = OutcomeDiffed
		result.Report = Diff(previous, current)
	case errors.Is(err, ErrNoSnapshot):
		VerboseLog(1, "No snapshot at %s, creating baseline", a.store.Path)
	case errors.Is(err, ErrCorruptSnapshot) && a.rebaseline:
		Warn("replacing corrupt snapshot: %v", err)
		result.Rebaselined = true
	default:
		return nil, err
	}

	store := *a.store
	store.AttributeErrorHandler = func(path string, attrErr error) {
		result.AttributeErr = attrErr
		if a.store.AttributeErrorHandler != nil {
			a.store.AttributeErrorHandler(path, attrErr)
		} else {
			Warn("failed to mark %s hidden: %v", path, attrErr)
		}
	}

	if err := store.Save(current); err != nil {
		return result, err
	}
	result.Persisted = true

	return result, nil
}

// warnOrphans reports temp snapshots left by crashed runs
func (a *Auditor) warnOrphans() {
	orphans, err := FindOrphanedTempFiles(a.root)
	if err != nil {
		VerboseLog(1, "Orphan check skipped: %v", err)
		return
	}
	for _, orphan := range orphans {
		Warn("found orphaned temp snapshot from a dead process: %s", orphan)
	}
}

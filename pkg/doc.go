// Package dirauditor detects changes to a directory tree between runs by
// comparing cheap per-file fingerprints against a snapshot persisted inside
// the audited directory.
//
// # Core API
//
// The main entry point is Auditor, which sequences a single run:
//
//	auditor, err := dirauditor.NewAuditor("/path/to/dir")
//	if err != nil {
//		return err // wraps ErrInvalidInput
//	}
//	result, err := auditor.Audit()
//
// # Results
//
// The first run against a directory creates a baseline; later runs report
// the differences since the previous run:
//
//	switch result.Outcome {
//	case dirauditor.OutcomeBaseline:
//		fmt.Println("baseline created")
//	case dirauditor.OutcomeDiffed:
//		if !result.Report.HasChanges() {
//			fmt.Println("no changes")
//		}
//	}
//
// A non-nil error wrapping ErrWriteFailure is returned together with a
// usable result: the diff is valid but the new snapshot was not persisted.
//
// # Building Blocks
//
// The pieces used by Auditor are exported for callers that need them
// separately:
//   - Scanner produces a Snapshot of a directory
//   - Store saves and loads the sidecar artifact
//   - Diff reconciles two snapshots into a ChangeReport
//
// # Configuration
//
// Settings come from an INI file, created with defaults on first use:
//
//	cfg, err := dirauditor.LoadConfig(configDir)
//	auditor, err := dirauditor.NewAuditor(dir, dirauditor.WithConfig(cfg))
//
// Enable debug output:
//
//	dirauditor.SetDebugFlags("scan,diff")
//	dirauditor.SetVerboseLevel(2)
package dirauditor

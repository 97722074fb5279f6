//go:build !darwin && !freebsd

package dirauditor

// markHidden is a no-op: the leading dot of SnapshotFileName already hides
// the artifact from directory listings
func markHidden(path string) error {
	return nil
}

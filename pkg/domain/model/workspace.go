package model

// Workspace represents one releasable package within a monorepo. Name and Path
// identify the workspace for the whole run; LastTag, Changelog and TagName are
// filled in by later pipeline stages.
type Workspace struct {
	Name        string         // Package name from the manifest
	Version     string         // Package version from the manifest
	Path        string         // Path relative to the repository root
	Root        string         // Absolute path on disk
	PackageJSON map[string]any // Parsed manifest content
	LastTag     string         // Most recent release tag, if any
	Changelog   string         // Rendered changelog section
	TagName     string         // Tag assigned to this release
}

// VersionedName returns "name<sep>version" for branch and release naming.
func (w *Workspace) VersionedName(sep string) string {
	return w.Name + sep + w.Version
}

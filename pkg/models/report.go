// Package models defines the analysis report emitted by winnow.
package models

// ClassFinding is a declared class that is never referenced.
type ClassFinding struct {
	Name string `json:"name" toon:"name"`
	File string `json:"file" toon:"file"`
	Line int    `json:"line" toon:"line"`
}

// MethodFinding is a declared method or function that is never
// referenced.
type MethodFinding struct {
	Name string `json:"name" toon:"name"`
	File string `json:"file" toon:"file"`
	Line int    `json:"line" toon:"line"`
}

// PackageFinding is a pubspec dependency that is never imported.
type PackageFinding struct {
	Name string `json:"name" toon:"name"`
	Line int    `json:"line" toon:"line"`
}

// AssetFinding is a declared asset that no string literal references.
type AssetFinding struct {
	Path string `json:"path" toon:"path"`
}

// Report is the sole externally visible artifact of a run. File and path
// fields are project-relative with forward slashes. A degenerate project
// (no lib directory, empty manifest) produces a report with four empty
// arrays, which is a success, not an error.
type Report struct {
	UnusedClasses  []ClassFinding   `json:"unused_classes" toon:"unused_classes"`
	UnusedMethods  []MethodFinding  `json:"unused_methods" toon:"unused_methods"`
	UnusedPackages []PackageFinding `json:"unused_packages" toon:"unused_packages"`
	UnusedAssets   []AssetFinding   `json:"unused_assets" toon:"unused_assets"`
}

// NewReport creates a report with empty (non-nil) finding lists so JSON
// output always contains four arrays.
func NewReport() *Report {
	return &Report{
		UnusedClasses:  []ClassFinding{},
		UnusedMethods:  []MethodFinding{},
		UnusedPackages: []PackageFinding{},
		UnusedAssets:   []AssetFinding{},
	}
}

// Total returns the number of findings across all categories.
func (r *Report) Total() int {
	return len(r.UnusedClasses) + len(r.UnusedMethods) + len(r.UnusedPackages) + len(r.UnusedAssets)
}

// Package unused implements dead-resource analysis for Flutter/Dart
// projects: classes, methods/functions, pubspec dependencies, and
// declared assets that are never referenced in the project's lib tree.
package unused

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/fluttertools/winnow/internal/cache"
	"github.com/fluttertools/winnow/internal/fileproc"
	"github.com/fluttertools/winnow/pkg/models"
	"github.com/fluttertools/winnow/pkg/pubspec"
	"github.com/fluttertools/winnow/pkg/scanner"
)

// lifecycle is the fixed set of method/function names the surrounding
// framework invokes implicitly. Reference counting would always flag
// them, so they are never reported. Constructors are excluded
// structurally by the parser.
var lifecycle = map[string]bool{
	"main":                  true,
	"build":                 true,
	"createState":           true,
	"initState":             true,
	"dispose":               true,
	"didChangeDependencies": true,
	"didUpdateWidget":       true,
	"deactivate":            true,
	"activate":              true,
	"reassemble":            true,
	"setState":              true,
	"toString":              true,
	"hashCode":              true,
	"noSuchMethod":          true,
	"==":                    true,
}

// minStemLength guards the extension-stripped asset match: stems of 3
// characters or fewer match too much unrelated text to be meaningful.
const minStemLength = 3

// Analyzer computes the unused-resource report for one project root.
type Analyzer struct {
	keepAlive map[string]bool
	excludes  []string
	workers   int
	cache     *cache.Cache
	onError   fileproc.ErrorFunc
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithKeepAlive adds method names to the lifecycle exclusion set.
func WithKeepAlive(names []string) Option {
	return func(a *Analyzer) {
		for _, n := range names {
			a.keepAlive[n] = true
		}
	}
}

// WithExcludePatterns sets gitignore-style source exclusion patterns.
func WithExcludePatterns(patterns []string) Option {
	return func(a *Analyzer) { a.excludes = patterns }
}

// WithWorkers caps the per-file worker count.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithCache enables the per-file extraction cache.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithErrorHandler registers a callback for files that fail to read or
// parse. Such files are skipped; the run proceeds.
func WithErrorHandler(fn fileproc.ErrorFunc) Option {
	return func(a *Analyzer) { a.onError = fn }
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{keepAlive: make(map[string]bool)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CollectFiles lists the source files a run over root would analyze,
// sorted. A project without a lib directory yields an empty list.
func (a *Analyzer) CollectFiles(root string) ([]string, error) {
	files, err := scanner.New(a.excludes...).Collect(root)
	if err != nil {
		return nil, fmt.Errorf("collect sources: %w", err)
	}
	return files, nil
}

// AnalyzeProject runs the full analysis for the project at root. A
// missing lib directory or manifest degrades to empty findings; only
// filesystem-level failures walking an existing tree are errors.
func (a *Analyzer) AnalyzeProject(ctx context.Context, root string) (*models.Report, error) {
	files, err := a.CollectFiles(root)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeProjectWithProgress(ctx, root, files, nil)
}

// AnalyzeProjectWithProgress analyzes a pre-collected file list,
// calling onProgress after each file. files must come from CollectFiles
// so the merge order is deterministic.
func (a *Analyzer) AnalyzeProjectWithProgress(ctx context.Context, root string, files []string, onProgress fileproc.ProgressFunc) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	indexes := fileproc.MapOrdered(files, a.workers, func(p string) (*FileIndex, error) {
		return a.indexFile(root, p)
	}, onProgress, a.onError)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	project := merge(indexes, a.excluded)
	return resolve(project, pubspec.Load(root)), nil
}

func (a *Analyzer) excluded(name string) bool {
	return lifecycle[name] || a.keepAlive[name]
}

// indexFile reads and indexes one file, consulting the cache when
// enabled. Unreadable files surface as errors so the pool skips them.
func (a *Analyzer) indexFile(root, p string) (*FileIndex, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	rel := scanner.Relativize(root, p)

	if a.cache == nil {
		return IndexFile(rel, string(data)), nil
	}

	hash := cache.HashBytes(data)
	if raw, ok := a.cache.Get(rel, hash); ok {
		var idx FileIndex
		if err := json.Unmarshal(raw, &idx); err == nil {
			return &idx, nil
		}
	}
	idx := IndexFile(rel, string(data))
	if raw, err := json.Marshal(idx); err == nil {
		// best effort; a failed write only costs a re-parse next run
		_ = a.cache.Set(rel, hash, raw)
	}
	return idx, nil
}

// declSite is a declaration with its originating file, in enumeration
// order.
type declSite struct {
	Declaration
	File string
}

// projectIndex is the merged view of all per-file indexes. The merge is
// exact summation and union: the unused threshold depends on exact
// totals.
type projectIndex struct {
	decls     []declSite
	declCount map[DeclKind]map[string]int
	census    map[string]int
	imported  map[string]bool
	corpus    string
}

func merge(indexes []*FileIndex, excluded func(string) bool) *projectIndex {
	pi := &projectIndex{
		declCount: map[DeclKind]map[string]int{
			DeclClass:  make(map[string]int),
			DeclMethod: make(map[string]int),
		},
		census:   make(map[string]int),
		imported: make(map[string]bool),
	}

	var fragments []string
	for _, idx := range indexes {
		for _, d := range idx.Decls {
			if d.Kind == DeclMethod && excluded(d.Name) {
				continue
			}
			pi.decls = append(pi.decls, declSite{Declaration: d, File: idx.File})
			pi.declCount[d.Kind][d.Name]++
		}
		for lexeme, n := range idx.Idents {
			pi.census[lexeme] += n
		}
		for _, uri := range idx.Imports {
			if name, ok := packageName(uri); ok {
				pi.imported[name] = true
			}
		}
		fragments = append(fragments, idx.Fragments...)
	}

	// Asset needles never contain a newline, so a newline join makes a
	// single substring-searchable corpus without cross-fragment matches.
	pi.corpus = strings.Join(fragments, "\n")
	return pi
}

// packageName extracts the package of a package-scheme import URI:
// "package:http/http.dart" -> "http". Relative and dart: URIs have no
// package.
func packageName(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, "package:")
	if !ok {
		return "", false
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// resolve applies the three unused-symbol computations and the
// asset-usage computation. It never fails: empty inputs produce empty
// finding lists.
func resolve(pi *projectIndex, manifest *pubspec.Manifest) *models.Report {
	report := models.NewReport()

	// A declaration is unused iff every occurrence of its name is
	// accounted for by declaration sites of some kind sharing that
	// name. The census is shared across kinds, so a class and a method
	// with the same name can mask each other; that behavior is kept
	// intentionally.
	for _, d := range pi.decls {
		if pi.census[d.Name] > pi.declCount[d.Kind][d.Name] {
			continue
		}
		switch d.Kind {
		case DeclClass:
			report.UnusedClasses = append(report.UnusedClasses, models.ClassFinding{
				Name: d.Name, File: d.File, Line: d.Line,
			})
		case DeclMethod:
			report.UnusedMethods = append(report.UnusedMethods, models.MethodFinding{
				Name: d.Name, File: d.File, Line: d.Line,
			})
		}
	}

	// Manifest packages arrive sorted by name.
	for _, pkg := range manifest.Packages {
		if !pi.imported[pkg.Name] {
			report.UnusedPackages = append(report.UnusedPackages, models.PackageFinding{
				Name: pkg.Name, Line: pkg.Line,
			})
		}
	}

	for _, asset := range manifest.Assets {
		if !assetUsed(pi.corpus, asset) {
			report.UnusedAssets = append(report.UnusedAssets, models.AssetFinding{Path: asset})
		}
	}

	return report
}

// assetUsed reports whether any literal fragment references the asset by
// full relative path, by basename, or by extension-stripped stem when
// the stem is long enough to be distinctive.
func assetUsed(corpus, asset string) bool {
	if strings.Contains(corpus, asset) {
		return true
	}
	base := path.Base(asset)
	if strings.Contains(corpus, base) {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return len(stem) > minStemLength && strings.Contains(corpus, stem)
}

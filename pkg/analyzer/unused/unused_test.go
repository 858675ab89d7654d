package unused

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fluttertools/winnow/internal/cache"
	"github.com/fluttertools/winnow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProject materializes a fake Flutter project from rel-path to
// content entries.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func analyze(t *testing.T, root string, opts ...Option) *models.Report {
	t.Helper()
	report, err := New(opts...).AnalyzeProject(context.Background(), root)
	require.NoError(t, err)
	return report
}

func classNames(findings []models.ClassFinding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Name
	}
	return out
}

func methodNames(findings []models.MethodFinding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Name
	}
	return out
}

func TestAnalyzeDegenerateProject(t *testing.T) {
	report := analyze(t, t.TempDir())
	require.NotNil(t, report)
	assert.Empty(t, report.UnusedClasses)
	assert.Empty(t, report.UnusedMethods)
	assert.Empty(t, report.UnusedPackages)
	assert.Empty(t, report.UnusedAssets)
	assert.Equal(t, 0, report.Total())
}

func TestAnalyzeUnusedClasses(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/main.dart": `
class Used {}
class Orphan {}

void main() {
  final u = Used();
  print(u);
}
`,
	})

	report := analyze(t, root)
	assert.Equal(t, []string{"Orphan"}, classNames(report.UnusedClasses))
	assert.Equal(t, "lib/main.dart", report.UnusedClasses[0].File)
	assert.Equal(t, 3, report.UnusedClasses[0].Line)
}

func TestAnalyzeCrossFileUsage(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/model.dart": `class Account {}`,
		"lib/main.dart": `
import 'model.dart';
void main() {
  final a = Account();
  print(a);
}
`,
	})

	report := analyze(t, root)
	assert.Empty(t, report.UnusedClasses)
}

func TestAnalyzeUnusedMethods(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/main.dart": `
class Screen {
  void build() {}
  void helper() {}
  void used() {}
}

void main() {
  Screen().used();
}
`,
	})

	report := analyze(t, root)
	// build is framework-invoked; used has a call site; helper has neither
	assert.Equal(t, []string{"helper"}, methodNames(report.UnusedMethods))
}

func TestAnalyzeKeepAlive(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/main.dart": `
void onPush() {}
void orphan() {}
void main() {}
`,
	})

	report := analyze(t, root, WithKeepAlive([]string{"onPush"}))
	assert.Equal(t, []string{"orphan"}, methodNames(report.UnusedMethods))
}

func TestAnalyzeSameNameMasking(t *testing.T) {
	// a class and a function sharing a name mask each other: the shared
	// census cannot tell which kind a reference targets
	root := writeProject(t, map[string]string{
		"lib/a.dart": `class Refresh {}`,
		"lib/b.dart": `void Refresh() {}`,
	})

	report := analyze(t, root)
	assert.Empty(t, report.UnusedClasses)
	assert.Empty(t, report.UnusedMethods)
}

func TestAnalyzeUsageInsideInterpolation(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/main.dart": `
int total() => 3;
void main() {
  print('count: ${total()}');
}
`,
	})

	report := analyze(t, root)
	assert.Empty(t, report.UnusedMethods)
}

func TestAnalyzeUnusedPackages(t *testing.T) {
	root := writeProject(t, map[string]string{
		"pubspec.yaml": `name: demo
dependencies:
  flutter:
    sdk: flutter
  http: ^1.0.0
  left_pad: ^2.0.0
`,
		"lib/main.dart": `
import 'package:http/http.dart' as http;
void main() {}
`,
	})

	report := analyze(t, root)
	require.Len(t, report.UnusedPackages, 1)
	assert.Equal(t, "left_pad", report.UnusedPackages[0].Name)
	assert.Equal(t, 6, report.UnusedPackages[0].Line)
}

func TestAnalyzePackageUsedViaExport(t *testing.T) {
	root := writeProject(t, map[string]string{
		"pubspec.yaml": `name: demo
dependencies:
  http: ^1.0.0
`,
		"lib/api.dart": `export 'package:http/http.dart';`,
	})

	report := analyze(t, root)
	assert.Empty(t, report.UnusedPackages)
}

func TestAnalyzeAssets(t *testing.T) {
	root := writeProject(t, map[string]string{
		"pubspec.yaml": `name: demo
flutter:
  assets:
    - assets/logo.png
    - assets/banner.png
    - assets/icons/sun.png
    - assets/orphan.png
`,
		"assets/logo.png":      "x",
		"assets/banner.png":    "x",
		"assets/icons/sun.png": "x",
		"assets/orphan.png":    "x",
		"lib/main.dart": `
void main() {
  load('assets/logo.png');   // full path
  load('banner');            // stem
  load('sun');               // stem too short to count
}
`,
	})

	report := analyze(t, root)
	var paths []string
	for _, a := range report.UnusedAssets {
		paths = append(paths, a.Path)
	}
	assert.Equal(t, []string{"assets/icons/sun.png", "assets/orphan.png"}, paths)
}

func TestAnalyzeAssetUsedThroughInterpolation(t *testing.T) {
	root := writeProject(t, map[string]string{
		"pubspec.yaml": `name: demo
flutter:
  assets:
    - assets/images/logo.png
`,
		"assets/images/logo.png": "x",
		"lib/main.dart": `
void main() {
  load('$dir/logo.png');
}
`,
	})

	report := analyze(t, root)
	assert.Empty(t, report.UnusedAssets)
}

func TestAnalyzeDeterministicOrder(t *testing.T) {
	files := map[string]string{
		"lib/a.dart": `class AlphaOrphan {}`,
		"lib/b.dart": `class BetaOrphan {}`,
		"lib/c.dart": `class GammaOrphan {}`,
	}
	root := writeProject(t, files)

	first := analyze(t, root)
	require.Equal(t, []string{"AlphaOrphan", "BetaOrphan", "GammaOrphan"},
		classNames(first.UnusedClasses))

	for i := 0; i < 5; i++ {
		assert.Equal(t, first, analyze(t, root))
	}
}

func TestAnalyzeWithCacheIsIdempotent(t *testing.T) {
	root := writeProject(t, map[string]string{
		"pubspec.yaml": `name: demo
dependencies:
  left_pad: ^1.0.0
`,
		"lib/main.dart": `
class Orphan {}
void main() {}
`,
	})

	store, err := cache.New(filepath.Join(root, ".cache"), 24, true)
	require.NoError(t, err)

	cold := analyze(t, root, WithCache(store))
	warm := analyze(t, root, WithCache(store))
	assert.Equal(t, cold, warm)
	assert.Equal(t, []string{"Orphan"}, classNames(warm.UnusedClasses))
}

func TestAnalyzeExcludePatterns(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/main.dart":   `void main() {}`,
		"lib/gen/a.dart":  `class Generated {}`,
		"lib/used.g.dart": `class AlsoGenerated {}`,
	})

	report := analyze(t, root, WithExcludePatterns([]string{"lib/gen/", "*.g.dart"}))
	assert.Empty(t, report.UnusedClasses)
}

func TestAnalyzeCanceledContext(t *testing.T) {
	root := writeProject(t, map[string]string{
		"lib/main.dart": `void main() {}`,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().AnalyzeProject(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

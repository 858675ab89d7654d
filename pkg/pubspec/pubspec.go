// Package pubspec reads the dependency and asset declarations of a
// Flutter project manifest. Loading is fail-soft: a missing or
// unparsable pubspec.yaml yields an empty manifest, never an error, so
// dependency and asset analysis degrade to empty results.
package pubspec

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the conventional manifest name at the project root.
const FileName = "pubspec.yaml"

// Package is a declared dependency with the manifest line it was found
// on. Line numbers come from a plain-text scan for the first line whose
// pre-colon key matches the package name; stable, though not
// YAML-position-accurate.
type Package struct {
	Name string
	Line int
}

// Manifest holds the declarations relevant to dead-resource analysis.
type Manifest struct {
	Name     string
	Packages []Package
	Assets   []string
}

type rawManifest struct {
	Name            string               `yaml:"name"`
	Dependencies    map[string]yaml.Node `yaml:"dependencies"`
	DevDependencies map[string]yaml.Node `yaml:"dev_dependencies"`
	Flutter         rawFlutter           `yaml:"flutter"`
}

type rawFlutter struct {
	Assets []string        `yaml:"assets"`
	Fonts  []rawFontFamily `yaml:"fonts"`
}

type rawFontFamily struct {
	Family string    `yaml:"family"`
	Fonts  []rawFont `yaml:"fonts"`
}

type rawFont struct {
	Asset string `yaml:"asset"`
}

// Load reads <root>/pubspec.yaml.
func Load(root string) *Manifest {
	raw, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		return &Manifest{}
	}
	return Parse(raw, root)
}

// Parse builds a manifest from raw pubspec bytes. root is used to expand
// directory asset entries and to drop declared files that do not exist.
func Parse(raw []byte, root string) *Manifest {
	var doc rawManifest
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &Manifest{}
	}

	m := &Manifest{Name: doc.Name}
	m.Packages = collectPackages(raw, doc.Dependencies, doc.DevDependencies)
	m.Assets = expandAssets(root, doc.Flutter)
	return m
}

func collectPackages(raw []byte, sections ...map[string]yaml.Node) []Package {
	var pkgs []Package
	seen := make(map[string]bool)
	for _, deps := range sections {
		for name, value := range deps {
			if seen[name] || sdkPinned(value) {
				continue
			}
			seen[name] = true
			pkgs = append(pkgs, Package{Name: name, Line: keyLine(raw, name)})
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
	return pkgs
}

// sdkPinned reports whether a dependency value ties the package to the
// host SDK (e.g. "flutter: {sdk: flutter}"). Those pseudo-packages are
// never imported by URI and must not be counted as declared.
func sdkPinned(value yaml.Node) bool {
	if value.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "sdk" {
			return true
		}
	}
	return false
}

// keyLine returns the 1-based line of the first "<key>:" occurrence.
func keyLine(raw []byte, key string) int {
	for i, line := range strings.Split(string(raw), "\n") {
		before, _, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(before) == key {
			return i + 1
		}
	}
	return 0
}

func expandAssets(root string, flutter rawFlutter) []string {
	fontAssets := make(map[string]bool)
	for _, family := range flutter.Fonts {
		for _, f := range family.Fonts {
			fontAssets[path.Clean(f.Asset)] = true
		}
	}

	seen := make(map[string]bool)
	var assets []string
	add := func(p string) {
		p = filepath.ToSlash(p)
		if seen[p] || fontAssets[path.Clean(p)] || envFile(p) {
			return
		}
		seen[p] = true
		assets = append(assets, p)
	}

	for _, entry := range flutter.Assets {
		entry = filepath.ToSlash(entry)
		if strings.HasSuffix(entry, "/") {
			// directory entry: immediate children only
			children, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(entry)))
			if err != nil {
				continue
			}
			for _, child := range children {
				if child.IsDir() {
					continue
				}
				add(entry + child.Name())
			}
			continue
		}
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(entry)))
		if err != nil || info.IsDir() {
			continue
		}
		add(entry)
	}

	sort.Strings(assets)
	return assets
}

// envFile reports whether an asset follows the dotenv naming convention.
// Such files are loaded by name, not by a path literal in source, so
// reference counting would always flag them.
func envFile(p string) bool {
	base := path.Base(p)
	return base == ".env" || strings.HasPrefix(base, ".env.") || strings.HasSuffix(base, ".env")
}

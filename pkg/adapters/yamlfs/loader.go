// Package yamlfs loads story content from versioned YAML directories on disk.
//
// The expected layout is:
//
//	<root>/<version>/<locale>/_manifest.yaml   (story_files: [...])
//	<root>/<version>/<locale>/<story file>.yaml (a list of nodes)
//	<root>/<version>/<locale>/ui.yaml           (flat map of UI strings)
//
// A locale directory may contain only ui.yaml, only a manifest, or both.
package yamlfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

const (
	ManifestFile = "_manifest.yaml"
	UIFile       = "ui.yaml"
)

// Manifest lists the story files of one locale, in load order.
type Manifest struct {
	StoryFiles []string `yaml:"story_files"`
}

// Loader reads locale bundles from a content root.
type Loader struct {
	root    string
	version string
}

var (
	_ ports.ContentLoader = (*Loader)(nil)
	_ ports.Watchable     = (*Loader)(nil)
)

// New creates a loader for <root>/<version>.
func New(root, version string) *Loader {
	return &Loader{root: root, version: version}
}

// Version implements ports.ContentLoader.
func (l *Loader) Version() string {
	return l.version
}

// Dir returns the versioned content directory.
func (l *Loader) Dir() string {
	return filepath.Join(l.root, l.version)
}

// LocaleDir returns the directory holding a locale's files and assets.
func (l *Loader) LocaleDir(locale string) string {
	return filepath.Join(l.Dir(), locale)
}

// LoadLocales implements ports.ContentLoader.
func (l *Loader) LoadLocales() (map[string]domain.LocaleBundle, error) {
	base := l.Dir()
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, &domain.ContentError{Path: base, Err: fmt.Errorf("content directory not readable: %w", err)}
	}

	bundles := make(map[string]domain.LocaleBundle)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		bundle, found, err := l.loadLocale(locale)
		if err != nil {
			return nil, err
		}
		if found {
			bundles[locale] = bundle
		}
	}

	if len(bundles) == 0 {
		return nil, &domain.ContentError{Path: base, Err: errors.New("no locales found")}
	}
	return bundles, nil
}

func (l *Loader) loadLocale(locale string) (domain.LocaleBundle, bool, error) {
	dir := l.LocaleDir(locale)
	bundle := domain.LocaleBundle{Locale: locale}
	found := false

	manifestPath := filepath.Join(dir, ManifestFile)
	var manifest Manifest
	ok, err := readYAML(manifestPath, &manifest)
	if err != nil {
		return bundle, false, &domain.ContentError{Locale: locale, Path: manifestPath, Err: err}
	}
	if ok {
		found = true
		bundle.Nodes = make(map[string]domain.Node)
		for _, name := range manifest.StoryFiles {
			if err := l.loadStoryFile(locale, filepath.Join(dir, name), bundle.Nodes); err != nil {
				return bundle, false, err
			}
		}
	}

	uiPath := filepath.Join(dir, UIFile)
	ui := make(map[string]string)
	ok, err = readYAML(uiPath, &ui)
	if err != nil {
		return bundle, false, &domain.ContentError{Locale: locale, Path: uiPath, Err: err}
	}
	if ok {
		found = true
		bundle.UIText = ui
	}

	return bundle, found, nil
}

func (l *Loader) loadStoryFile(locale, path string, into map[string]domain.Node) error {
	var raw []map[string]any
	ok, err := readYAML(path, &raw)
	if err == nil && !ok {
		err = fmt.Errorf("story file listed in manifest does not exist")
	}
	if err != nil {
		return &domain.ContentError{Locale: locale, Path: path, Err: err}
	}

	for i, item := range raw {
		node, err := decodeNode(item)
		if err != nil {
			return &domain.ContentError{Locale: locale, Path: path, Err: fmt.Errorf("node #%d: %w", i, err)}
		}
		if node.ID == "" {
			return &domain.ContentError{Locale: locale, Path: path, Err: fmt.Errorf("node #%d has no id", i)}
		}
		if _, dup := into[node.ID]; dup {
			return &domain.ContentError{Locale: locale, Path: path, Err: fmt.Errorf("duplicate node id %q", node.ID)}
		}
		into[node.ID] = node
	}
	return nil
}

// decodeNode converts a raw YAML mapping into a Node, rejecting unknown keys.
// Scalars are accepted for string fields, so `answer: 4` reads as "4".
func decodeNode(raw map[string]any) (domain.Node, error) {
	var node domain.Node
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &node,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return node, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return node, fmt.Errorf("failed to decode node: %w", err)
	}
	return node, nil
}

// readYAML decodes path into out. A missing file is reported as (false, nil).
func readYAML(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("invalid yaml: %w", err)
	}
	return true, nil
}

// Package targets loads destination lists from YAML or JSON files.
package targets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/interlinker/internal/domain"
)

var (
	// ErrEmptyPath is returned when no file path is given.
	ErrEmptyPath = errors.New("targets file path is empty")
	// ErrNoTargets is returned when a file holds no usable destination.
	ErrNoTargets = errors.New("no usable targets")
)

// file accepts either a bare list or a {destinations: [...]} document.
type file struct {
	Destinations []domain.LinkTarget `yaml:"destinations"`
	Targets      []domain.LinkTarget `yaml:"targets"`
}

// Load reads destinations from path.
func Load(path string) ([]domain.LinkTarget, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()

	list, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load targets %s: %w", path, err)
	}
	return list, nil
}

// Decode parses a YAML or JSON target list. Entries with an empty URL or
// title are dropped; it is an error only when nothing usable remains.
func Decode(r io.Reader) ([]domain.LinkTarget, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read targets: %w", err)
	}

	var node yaml.Node
	if err = yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}

	var raw []domain.LinkTarget
	switch {
	case len(node.Content) == 0:
	case node.Content[0].Kind == yaml.SequenceNode:
		err = node.Content[0].Decode(&raw)
	default:
		var wrapped file
		err = node.Content[0].Decode(&wrapped)
		raw = append(wrapped.Destinations, wrapped.Targets...)
	}
	if err != nil {
		return nil, fmt.Errorf("decode targets: %w", err)
	}

	out := make([]domain.LinkTarget, 0, len(raw))
	var dropped []string
	for i, t := range raw {
		t.URL = strings.TrimSpace(t.URL)
		t.Title = strings.TrimSpace(t.Title)
		if t.URL == "" || t.Title == "" {
			dropped = append(dropped, fmt.Sprint(i))
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		if len(dropped) > 0 {
			return nil, fmt.Errorf("%w: entries %s lack url or title", ErrNoTargets, strings.Join(dropped, ", "))
		}
		return nil, ErrNoTargets
	}
	return out, nil
}

// Package manifest defines the on-disk record of tracked files and
// remote bindings, and the atomic load/save logic for it.
package manifest

import "time"

// Kind identifies which remote adapter a RemoteBinding uses. This is a
// closed variant: FigShare, Zenodo, and StaticURL are the only members,
// and adding a new remote means extending this type and the remote
// package's Adapter implementations together, not registering one at
// runtime.
type Kind string

const (
	FigShare  Kind = "figshare"
	Zenodo    Kind = "zenodo"
	StaticURL Kind = "staticurl"
)

// DataFile is one tracked file entry in the manifest.
type DataFile struct {
	Path     string    `yaml:"relative_path"`
	MD5      string    `yaml:"md5,omitempty"`
	Size     int64     `yaml:"size"`
	Modified time.Time `yaml:"modified,omitempty"`
	Tracked  bool      `yaml:"tracked"`
	URL      string    `yaml:"url,omitempty"`
}

// RemoteBinding associates a project directory with a remote deposition.
type RemoteBinding struct {
	Directory    string `yaml:"directory"`
	Kind         Kind   `yaml:"kind"`
	ProjectID    string `yaml:"project_id,omitempty"`
	DepositionID string `yaml:"deposition_id,omitempty"`
	Name         string `yaml:"name,omitempty"`
	SupportsMD5  bool   `yaml:"supports_md5"`
}

// DataCollection is the in-memory form of the whole manifest.
type DataCollection struct {
	Files   map[string]*DataFile      `yaml:"-"`
	Remotes map[string]*RemoteBinding `yaml:"-"`
}

// New returns an empty DataCollection.
func New() *DataCollection {
	return &DataCollection{
		Files:   make(map[string]*DataFile),
		Remotes: make(map[string]*RemoteBinding),
	}
}

// wireFormat is the YAML document shape on disk: two sequences, per
// spec.md §6. Keeping this separate from DataCollection lets the
// in-memory representation use maps (the identifiers are unique keys)
// while the file stays a stable, diff-friendly sequence of records.
type wireFormat struct {
	Files   []DataFile      `yaml:"files"`
	Remotes []RemoteBinding `yaml:"remotes"`
}

func (dc *DataCollection) toWire() wireFormat {
	var w wireFormat
	for _, path := range sortedKeys(dc.Files) {
		w.Files = append(w.Files, *dc.Files[path])
	}
	for _, dir := range sortedKeys(dc.Remotes) {
		w.Remotes = append(w.Remotes, *dc.Remotes[dir])
	}
	return w
}

func (dc *DataCollection) fromWire(w wireFormat) {
	dc.Files = make(map[string]*DataFile, len(w.Files))
	for i := range w.Files {
		f := w.Files[i]
		dc.Files[f.Path] = &f
	}
	dc.Remotes = make(map[string]*RemoteBinding, len(w.Remotes))
	for i := range w.Remotes {
		r := w.Remotes[i]
		dc.Remotes[r.Directory] = &r
	}
}

package files

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"k8s.io/klog/v2"

	"mediaserver/pkg/common"
)

type EntryKind string

const (
	KindDir  EntryKind = "dir"
	KindFile EntryKind = "file"
)

// Entry describes one child of a listed directory.
type Entry struct {
	Kind         EntryKind `json:"kind"`
	Name         string    `json:"name"`
	RelativePath string    `json:"relativePath"`
	WatchURL     string    `json:"watchUrl,omitempty"`
	Size         int64     `json:"size,omitempty"`
	ModTime      time.Time `json:"modified"`
}

func (e Entry) IsDir() bool { return e.Kind == KindDir }

// Lister enumerates the immediate children of a directory, keeping
// subdirectories and media files with an allowed extension.
type Lister struct {
	fs         afero.Fs
	resolver   *Resolver
	extensions map[string]struct{}
}

func NewLister(fs afero.Fs, resolver *Resolver, extensions []string) *Lister {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Lister{
		fs:         fs,
		resolver:   resolver,
		extensions: allowed,
	}
}

// Allowed reports whether name carries one of the allowed media extensions.
func (l *Lister) Allowed(name string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// List returns the children of dir, directories first, then case-insensitive by name.
func (l *Lister) List(dir ResolvedPath) ([]Entry, error) {
	if dir.IsZero() {
		return nil, fmt.Errorf("list: %w", common.ErrInvalidPath)
	}

	info, err := l.fs.Stat(dir.String())
	if err != nil {
		if common.IsNotExist(err) {
			return nil, fmt.Errorf("list %s: %w", dir.Rel(), common.ErrNotFound)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("list %s: not a directory: %w", dir.Rel(), common.ErrNotFound)
	}

	infos, err := afero.ReadDir(l.fs, dir.String())
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(infos))
	for _, f := range infos {
		name := f.Name()
		rel := path.Join(dir.Rel(), name)

		if f.Mode()&os.ModeSymlink != 0 {
			target, ok := l.followLink(rel)
			if !ok {
				continue
			}
			f = target
		}

		switch {
		case f.IsDir():
			entries = append(entries, Entry{
				Kind:         KindDir,
				Name:         name,
				RelativePath: rel,
				ModTime:      f.ModTime(),
			})
		case f.Mode().IsRegular() && l.Allowed(name):
			entries = append(entries, Entry{
				Kind:         KindFile,
				Name:         name,
				RelativePath: rel,
				WatchURL:     "/watch/" + common.EscapePath(rel),
				Size:         f.Size(),
				ModTime:      f.ModTime(),
			})
		}
	}

	SortEntries(entries)
	return entries, nil
}

// followLink keeps a symbolic link only when its target stays inside the media root.
func (l *Lister) followLink(rel string) (os.FileInfo, bool) {
	target, err := l.resolver.Resolve(rel)
	if err != nil {
		klog.V(4).Infof("skip link %s: %v", rel, err)
		return nil, false
	}
	info, err := l.fs.Stat(target.String())
	if err != nil {
		klog.V(4).Infof("skip invalid link %s: %v", rel, err)
		return nil, false
	}
	return info, true
}

// SortEntries orders by (isFile, lowercased name). The sort is stable.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}

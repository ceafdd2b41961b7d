package files

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"mediaserver/pkg/common"
)

// ResolvedPath is an absolute location that is the media root itself or lies
// below it. Only a Resolver produces non-zero values.
type ResolvedPath struct {
	abs string
	rel string
}

// String returns the absolute filesystem path.
func (p ResolvedPath) String() string { return p.abs }

// Rel returns the slash separated path relative to the media root, "" for the root.
func (p ResolvedPath) Rel() string { return p.rel }

func (p ResolvedPath) IsRoot() bool { return p.abs != "" && p.rel == "" }

func (p ResolvedPath) IsZero() bool { return p.abs == "" }

// Name is the last element of the path.
func (p ResolvedPath) Name() string { return filepath.Base(p.abs) }

// Parent returns the relative path of the enclosing directory, "" at or directly under the root.
func (p ResolvedPath) Parent() string {
	if p.rel == "" {
		return ""
	}
	parent := path.Dir(p.rel)
	if parent == "." {
		return ""
	}
	return parent
}

// Resolver confines client supplied relative paths to a media root.
type Resolver struct {
	root string
}

// NewResolver canonicalizes root once. The root must be an existing directory.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid media root %s: %w", root, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("invalid media root %s: %w", root, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("invalid media root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("invalid media root %s: not a directory", root)
	}

	klog.Infof("media root: %s", canonical)
	return &Resolver{root: canonical}, nil
}

// Root returns the media root itself.
func (r *Resolver) Root() ResolvedPath {
	return ResolvedPath{abs: r.root}
}

// Resolve maps rel onto the media root. Leading separators are dropped so the
// input is always relative; "." and ".." are applied and symbolic links are
// followed before the containment check. Paths that do not exist yet resolve
// as long as their existing part stays inside the root.
func (r *Resolver) Resolve(rel string) (ResolvedPath, error) {
	cleaned, err := normalize(rel)
	if err != nil {
		return ResolvedPath{}, err
	}

	candidate := filepath.Join(r.root, cleaned)
	canonical, err := canonicalize(candidate)
	if err != nil {
		return ResolvedPath{}, err
	}

	relative, ok := within(r.root, canonical)
	if !ok {
		klog.Warningf("path %q escapes media root %s (resolved to %s)", rel, r.root, canonical)
		return ResolvedPath{}, fmt.Errorf("%q: %w", rel, common.ErrInvalidPath)
	}

	return ResolvedPath{abs: canonical, rel: relative}, nil
}

func normalize(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("%q contains NUL: %w", rel, common.ErrInvalidPath)
	}
	rel = strings.TrimLeft(rel, `/\`)
	if filepath.VolumeName(rel) != "" {
		return "", fmt.Errorf("%q is absolute: %w", rel, common.ErrInvalidPath)
	}
	return filepath.FromSlash(rel), nil
}

// canonicalize evaluates symbolic links on the longest existing prefix of p
// and appends the missing remainder unchanged.
func canonicalize(p string) (string, error) {
	var tail []string
	cur := p
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !common.IsNotExist(err) {
			return "", err
		}
		if _, lerr := os.Lstat(cur); lerr == nil {
			// present but not followable: a dangling link
			return "", fmt.Errorf("dangling link %s: %w", cur, common.ErrInvalidPath)
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", err
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

// within reports whether p equals root or lies below it, returning the slash
// separated relative path.
func within(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

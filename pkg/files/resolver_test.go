package files

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaserver/pkg/common"
)

func touch(t *testing.T, p string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
}

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()
	canonical, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	r, err := NewResolver(root)
	require.NoError(t, err)
	return r, canonical
}

func TestNewResolver_RootMustBeDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	touch(t, file)

	_, err := NewResolver(file)
	assert.Error(t, err)

	_, err = NewResolver(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestResolve_InsideRoot(t *testing.T) {
	r, root := newTestResolver(t)
	touch(t, filepath.Join(root, "movies", "clip.mp4"))

	cases := map[string]string{
		"":                          "",
		".":                         "",
		"/":                         "",
		"  movies/clip.mp4  ":       "movies/clip.mp4",
		"/movies/clip.mp4":          "movies/clip.mp4",
		"//movies//clip.mp4":        "movies/clip.mp4",
		"movies/../movies/clip.mp4": "movies/clip.mp4",
		"movies/./clip.mp4":         "movies/clip.mp4",
		"movies":                    "movies",
		"movies/new/later.mp4":      "movies/new/later.mp4",
	}
	for in, want := range cases {
		p, err := r.Resolve(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, p.Rel(), in)
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(want)), p.String(), in)
		assert.True(t, p.String() == root || strings.HasPrefix(p.String(), root+string(filepath.Separator)), in)
	}
}

func TestResolve_RootItself(t *testing.T) {
	r, root := newTestResolver(t)

	p, err := r.Resolve("")
	require.NoError(t, err)
	assert.True(t, p.IsRoot())
	assert.Equal(t, root, p.String())
	assert.Equal(t, r.Root(), p)
}

func TestResolve_SymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	r, root := newTestResolver(t)
	outside := t.TempDir()
	touch(t, filepath.Join(outside, "secret.mp4"))

	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.mp4"), filepath.Join(root, "secret.mp4")))

	for _, in := range []string{"escape", "escape/secret.mp4", "secret.mp4", "escape/missing/deeper.mp4"} {
		_, err := r.Resolve(in)
		assert.ErrorIs(t, err, common.ErrInvalidPath, in)
	}
}

func TestResolve_SymlinkInsideRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	r, root := newTestResolver(t)
	touch(t, filepath.Join(root, "movies", "clip.mp4"))
	require.NoError(t, os.Symlink(filepath.Join(root, "movies"), filepath.Join(root, "favourites")))

	p, err := r.Resolve("favourites/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "movies/clip.mp4", p.Rel())
}

func TestResolve_DanglingLink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	r, root := newTestResolver(t)
	require.NoError(t, os.Symlink("/nonexistent/target", filepath.Join(root, "broken")))

	_, err := r.Resolve("broken/file.mp4")
	assert.ErrorIs(t, err, common.ErrInvalidPath)
}

func TestResolve_RejectsNUL(t *testing.T) {
	r, _ := newTestResolver(t)
	_, err := r.Resolve("movies/clip\x00.mp4")
	assert.ErrorIs(t, err, common.ErrInvalidPath)
}

func TestResolve_Traversal(t *testing.T) {
	r, root := newTestResolver(t)
	touch(t, filepath.Join(root, "movies", "clip.mp4"))

	for _, in := range []string{
		"..",
		"../../etc/passwd",
		"/../../etc/passwd",
		"movies/../../etc/passwd",
		"movies/../../../",
		"../" + filepath.Base(root) + "X/clip.mp4",
	} {
		_, err := r.Resolve(in)
		assert.ErrorIs(t, err, common.ErrInvalidPath, in)
	}
}

func TestResolvedPath_Parent(t *testing.T) {
	r, _ := newTestResolver(t)

	p, err := r.Resolve("a/b/c.mp4")
	require.NoError(t, err)
	assert.Equal(t, "a/b", p.Parent())
	assert.Equal(t, "c.mp4", p.Name())

	p, err = r.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "", p.Parent())
	assert.False(t, p.IsRoot())

	assert.True(t, ResolvedPath{}.IsZero())
}

func TestWithin(t *testing.T) {
	sep := string(filepath.Separator)
	root := sep + "media"

	_, ok := within(root, root)
	assert.True(t, ok)
	rel, ok := within(root, root+sep+"a"+sep+"b")
	assert.True(t, ok)
	assert.Equal(t, "a/b", rel)
	_, ok = within(root, root+sep+"..foo")
	assert.True(t, ok)
	_, ok = within(root, sep+"mediaX")
	assert.False(t, ok)
	_, ok = within(root, sep+"etc"+sep+"passwd")
	assert.False(t, ok)
}

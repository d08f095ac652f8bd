package merge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyLeaf(t *testing.T) {
	dir := t.TempDir()

	regular := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(regular, []byte("hi"), 0o644))
	kind, err := ClassifyLeaf(regular)
	require.NoError(t, err)
	require.Equal(t, LeafRegular, kind)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	kind, err = ClassifyLeaf(sub)
	require.NoError(t, err)
	require.Equal(t, LeafDirectory, kind)

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(regular, link))
	kind, err = ClassifyLeaf(link)
	require.NoError(t, err)
	require.Equal(t, LeafSymlink, kind)
}

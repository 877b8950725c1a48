package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mypictures/photoindex/v1/logger"
)

func newLogger(t *testing.T) *logger.MockLogger {
	ctrl := gomock.NewController(t)
	l := logger.NewMockLogger(ctrl)
	l.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return l
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.JPEG"))
	touch(t, filepath.Join(root, "nested", "deeper", "c.Png"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "raw", "d.cr2"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.jpg"), 0o755))

	s := New([]string{".jpg", "JPEG", "png"}, newLogger(t))
	files, err := s.Scan(context.Background(), []string{root})
	require.NoError(t, err)

	sort.Strings(files)
	assert.Equal(t, []string{
		filepath.Join(root, "a.jpg"),
		filepath.Join(root, "b.JPEG"),
		filepath.Join(root, "nested", "deeper", "c.Png"),
	}, files)
}

func TestScanSkipsMissingRoot(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.heic"))

	ctrl := gomock.NewController(t)
	l := logger.NewMockLogger(ctrl)
	l.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Warn("skipping scan root", gomock.Any(), gomock.Any()).Times(1)

	s := New(nil, l)
	files, err := s.Scan(context.Background(), []string{filepath.Join(root, "missing"), root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.heic")}, files)
}

func TestScanDeduplicatesOverlappingRoots(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "sub", "a.jpg"))

	s := New(nil, newLogger(t))
	files, err := s.Scan(context.Background(), []string{root, filepath.Join(root, "sub"), root})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestScanHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(nil, newLogger(t))
	_, err := s.Scan(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ResolveRoot("~/Pictures")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Pictures"), got)

	_, err = ResolveRoot("  ")
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	s := New([]string{"dng"}, newLogger(t))
	assert.True(t, s.Matches("/x/IMG_0001.DNG"))
	assert.False(t, s.Matches("/x/IMG_0001.jpg"))
	assert.False(t, s.Matches("/x/dng"))
}

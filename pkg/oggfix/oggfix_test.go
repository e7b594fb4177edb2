package oggfix_test

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/oggfix/internal/format"
	"github.com/joshuapare/oggfix/pkg/oggfix"
)

func page(flags byte, seq uint32, segs ...byte) []byte {
	n := format.HeaderFixedSize + len(segs)
	for _, s := range segs {
		n += int(s)
	}
	b := make([]byte, n)
	copy(b, format.OggSignature)
	b[format.PageFlagsOffset] = flags
	binary.LittleEndian.PutUint32(b[format.PageSequenceOffset:], seq)
	b[format.PageSegCountOffset] = byte(len(segs))
	copy(b[format.PageSegTableOffset:], segs)
	binary.LittleEndian.PutUint32(b[format.PageChecksumOffset:], format.Checksum(b))
	return b
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.ogg")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func truncatedFile() []byte {
	first := page(format.FlagBeginStream, 0, 8)
	last := page(0, 1, 200, 200)
	return append(first, last[:len(last)-50]...)
}

func TestFix(t *testing.T) {
	path := writeFile(t, truncatedFile())
	require.NoError(t, oggfix.Fix(path))

	info, err := oggfix.Inspect(path)
	require.NoError(t, err)
	assert.False(t, info.NeedsRepair())
	assert.True(t, info.EndOfStream)
	assert.Equal(t, info.DeclaredSize, info.Available)

	// A second pass changes nothing.
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, oggfix.Fix(path))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFixWithOptions_DryRun(t *testing.T) {
	data := truncatedFile()
	path := writeFile(t, data)

	result, err := oggfix.FixWithOptions(path, oggfix.Options{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.ZeroedSegments)
	assert.Equal(t, int64(150), result.TrimmedBytes())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFixWithOptions_Patches(t *testing.T) {
	path := writeFile(t, truncatedFile())

	result, err := oggfix.FixWithOptions(path, oggfix.Options{BackupSuffix: ".orig"})
	require.NoError(t, err)
	assert.FileExists(t, result.BackupPath)
	require.Len(t, result.Patches, 3)
	assert.Contains(t, oggfix.ExportPatches(result.Patches), "segment table")
}

func TestErrors(t *testing.T) {
	path := writeFile(t, []byte("not a container file"))
	err := oggfix.Fix(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, oggfix.ErrNotFound)

	var oerr *oggfix.Error
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, "scan", oerr.Op)

	err = oggfix.Fix(filepath.Join(t.TempDir(), "absent.ogg"))
	assert.ErrorIs(t, err, oggfix.ErrIO)

	_, err = oggfix.Inspect(path)
	assert.ErrorIs(t, err, oggfix.ErrNotFound)
}

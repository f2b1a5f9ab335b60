package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmc-labs/spooltick/pkg/spool"
)

func writeMeta(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const newGenMeta = `[multiimage]
ImagesPerFile = 10

[data]
ImageSizeBytes = 697896
AOIWidth = 640
AOIHeight = 540
AOIStride = 1296
PixelEncoding = Mono16
`

const legacyMeta = `[multiimage]
ImagesPerFile = 1

[data]
ImageSize = 692496
`

func TestLoadNewGeneration(t *testing.T) {
	src, err := Load(writeMeta(t, newGenMeta), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ng, ok := src.(spool.NewGen)
	if !ok {
		t.Fatalf("source = %T, want spool.NewGen", src)
	}
	if ng.Width != 640 || ng.Height != 540 || ng.TrailerBytes != 1296 {
		t.Errorf("unexpected dimensions: %+v", ng)
	}
	if ng.FrameBytes != 697896 || ng.FramesPerFile != 10 {
		t.Errorf("unexpected sizes: %+v", ng)
	}

	g, err := src.Resolve(spool.Geometry{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if g.BitsPerPixel != 16 {
		t.Errorf("BitsPerPixel = %d, want 16 from Mono16", g.BitsPerPixel)
	}
}

func TestLoadLegacyGeneration(t *testing.T) {
	src, err := Load(writeMeta(t, legacyMeta), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lg, ok := src.(spool.LegacyGen)
	if !ok {
		t.Fatalf("source = %T, want spool.LegacyGen", src)
	}
	if lg.FrameBytes != 692496 || lg.FramesPerFile != 1 {
		t.Errorf("unexpected legacy source: %+v", lg)
	}
}

func TestLoadWithByteOrderMark(t *testing.T) {
	// The camera software writes the file from Windows with a UTF-8 BOM.
	src, err := Load(writeMeta(t, "\xef\xbb\xbf"+newGenMeta), Options{})
	if err != nil {
		t.Fatalf("Load with BOM: %v", err)
	}
	if _, ok := src.(spool.NewGen); !ok {
		t.Fatalf("source = %T, want spool.NewGen", src)
	}
}

func TestLoadUnrecognizedGeneration(t *testing.T) {
	meta := "[multiimage]\nImagesPerFile = 1\n\n[data]\nSomethingElse = 5\n"
	if _, err := Load(writeMeta(t, meta), Options{}); !errors.Is(err, spool.ErrMetadata) {
		t.Errorf("err = %v, want ErrMetadata", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if _, err := Load(path, Options{}); !errors.Is(err, spool.ErrMetadata) {
		t.Errorf("err = %v, want ErrMetadata", err)
	}
}

func TestLoadMissingFrameCount(t *testing.T) {
	meta := "[data]\nImageSize = 100\n"
	if _, err := Load(writeMeta(t, meta), Options{}); !errors.Is(err, spool.ErrMetadata) {
		t.Errorf("err = %v, want ErrMetadata", err)
	}
}

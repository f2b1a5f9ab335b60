// Package metadata reads the acquisitionmetadata.ini that the camera
// software writes next to each kinetic series of spool files, and maps
// it to a spool.GeometrySource.
//
// Two incompatible generations of the file exist. The 2016-present one
// declares the frame layout in full (ImageSizeBytes, AOIWidth,
// AOIHeight, AOIStride, PixelEncoding); the 2012-2015 one declares only
// ImageSize and leaves dimensions to the operator. Which keys are
// present decides the generation, once, at load time.
package metadata

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/dmc-labs/spooltick/pkg/log"
	"github.com/dmc-labs/spooltick/pkg/spool"
)

// FileName is the metadata filename the camera software generates for
// each kinetic series.
const FileName = "acquisitionmetadata.ini"

// Options adjusts how the resolved GeometrySource behaves.
type Options struct {
	// BestEffort tolerates unrecognized pixel encoding labels whose
	// trailing digits still name a supported bit depth.
	BestEffort bool

	Log log.Logger
}

// Load parses an acquisition metadata file and returns the matching
// format generation. The file is written by Windows tooling and often
// starts with a UTF-8 byte order mark, which the ini parser tolerates.
func Load(path string, opts Options) (spool.GeometrySource, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", spool.ErrMetadata, path, err)
	}
	return fromFile(cfg, path, opts)
}

func fromFile(cfg *ini.File, path string, opts Options) (spool.GeometrySource, error) {
	multi := cfg.Section("multiimage")
	framesPerFile, err := multi.Key("ImagesPerFile").Int()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: ImagesPerFile: %v", spool.ErrMetadata, path, err)
	}

	data := cfg.Section("data")
	switch {
	case data.HasKey("ImageSizeBytes"):
		src := spool.NewGen{
			FramesPerFile: framesPerFile,
			Encoding:      data.Key("PixelEncoding").String(),
			BestEffort:    opts.BestEffort,
			Log:           opts.Log,
		}
		if src.FrameBytes, err = data.Key("ImageSizeBytes").Int(); err != nil {
			return nil, fmt.Errorf("%w: %s: ImageSizeBytes: %v", spool.ErrMetadata, path, err)
		}
		if src.Width, err = data.Key("AOIWidth").Int(); err != nil {
			return nil, fmt.Errorf("%w: %s: AOIWidth: %v", spool.ErrMetadata, path, err)
		}
		if src.Height, err = data.Key("AOIHeight").Int(); err != nil {
			return nil, fmt.Errorf("%w: %s: AOIHeight: %v", spool.ErrMetadata, path, err)
		}
		if src.TrailerBytes, err = data.Key("AOIStride").Int(); err != nil {
			return nil, fmt.Errorf("%w: %s: AOIStride: %v", spool.ErrMetadata, path, err)
		}
		return src, nil

	case data.HasKey("ImageSize"):
		src := spool.LegacyGen{
			FramesPerFile: framesPerFile,
			Log:           opts.Log,
		}
		if src.FrameBytes, err = data.Key("ImageSize").Int(); err != nil {
			return nil, fmt.Errorf("%w: %s: ImageSize: %v", spool.ErrMetadata, path, err)
		}
		return src, nil

	default:
		return nil, fmt.Errorf("%w: %s: unrecognized format generation", spool.ErrMetadata, path)
	}
}

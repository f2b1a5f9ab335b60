package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/dmc-labs/spooltick/internal/cliconfig"
	"github.com/dmc-labs/spooltick/pkg/log"
	"github.com/dmc-labs/spooltick/pkg/metadata"
	"github.com/dmc-labs/spooltick/pkg/preview"
	"github.com/dmc-labs/spooltick/pkg/spool"
	"github.com/dmc-labs/spooltick/pkg/tickindex"
	"github.com/dmc-labs/spooltick/plugins/spoolwatch"
)

const longHelp = `spooltick orders camera spool files by acquisition time.

Solis names spool files non-chronologically, so reading a kinetic series
in time order needs the FPGA tick embedded in each frame trailer. The
index command scans every file's first tick and persists the ordering;
load replays a persisted index; preview renders the newest file.

Frame geometry comes from the acquisitionmetadata.ini written next to
the spool files. Pre-2016 metadata does not declare dimensions; supply
them with --width/--height/--stride in that case.`

const exampleUsage = `  spooltick index ~/data/2017-04-27/spool
  spooltick index ~/data/neo2012-12-25/spool_5 --width 320 --height 270 --stride 648 --zerocols 4
  spooltick load ~/data/2017-04-27/spool/index.json
  spooltick preview ~/data/2017-04-27/spool -o latest.png --follow`

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "spooltick",
		Short:   "Order camera spool files by their hardware tick counter",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
			return applyLayers(cmd, &cfg, cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.spooltick/config.toml)")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&cfg.MetaFile, "meta", "", "acquisition metadata file (default: next to the spool files)")
	root.PersistentFlags().IntVar(&cfg.Width, "width", cfg.Width, "image columns (legacy metadata only)")
	root.PersistentFlags().IntVar(&cfg.Height, "height", cfg.Height, "image rows (legacy metadata only)")
	root.PersistentFlags().IntVarP(&cfg.Stride, "stride", "s", cfg.Stride, "trailer bytes per frame (legacy metadata only)")
	root.PersistentFlags().IntVarP(&cfg.ZeroCols, "zerocols", "z", cfg.ZeroCols, "zero-padding columns to strip")
	root.PersistentFlags().BoolVar(&cfg.StrictEncoding, "strict-encoding", false, "fail on unrecognized pixel encodings")
	root.PersistentFlags().BoolVar(&cfg.StopAtBlank, "stop-at-blank", false, "truncate decodes at the first all-zero frame")
	root.PersistentFlags().Float64Var(&cfg.KineticSec, "kinetic", 0, "kinetic cycle time in seconds (enables elapsed-time estimates)")

	root.AddCommand(indexCmd(&cfg, logger))
	root.AddCommand(loadCmd(logger))
	root.AddCommand(previewCmd(&cfg, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("spooltick failed", log.Err(err))
		os.Exit(1)
	}
}

// applyLayers loads the config file and environment on top of defaults,
// skipping anything a flag set explicitly.
func applyLayers(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath string) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	cmd.InheritedFlags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}
	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	return cliconfig.ApplyEnvConfig(cfg, changed)
}

// resolveGeometry locates the acquisition metadata for the spool files
// and resolves the shared geometry. This must succeed before any spool
// file is touched: every file in the acquisition shares one geometry.
func resolveGeometry(cfg *cliconfig.Config, files []string, logger log.Logger) (spool.Geometry, error) {
	metaPath := cfg.MetaFile
	if metaPath == "" {
		metaPath = filepath.Join(filepath.Dir(files[0]), metadata.FileName)
	}
	src, err := metadata.Load(metaPath, metadata.Options{
		BestEffort: !cfg.StrictEncoding,
		Log:        logger,
	})
	if err != nil {
		return spool.Geometry{}, err
	}
	defaults := spool.Geometry{
		Width:        cfg.Width,
		Height:       cfg.Height,
		TrailerBytes: cfg.Stride,
		ZeroCols:     cfg.ZeroCols,
	}
	return src.Resolve(defaults)
}

func indexCmd(cfg *cliconfig.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <spool-path>",
		Short: "Scan spool files and persist their tick ordering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.SpoolDir = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			files, err := spool.List(cfg.SpoolDir)
			if err != nil {
				return err
			}
			g, err := resolveGeometry(cfg, files, logger)
			if err != nil {
				return err
			}
			ix, err := tickindex.Build(cmd.Context(), files, g, tickindex.BuildOptions{
				Workers: cfg.Workers,
				Log:     logger,
				Progress: func(done, total int) {
					logger.Info("scanning ticks",
						log.Int("done", done),
						log.Int("total", total))
				},
			})
			if err != nil {
				return err
			}
			target := cfg.OutFile
			if target == "" {
				target = filepath.Dir(files[0])
			}
			path, err := ix.WriteFile(target)
			if err != nil {
				return err
			}
			logger.Info("tick index written",
				log.String("path", path),
				log.Int("files", len(ix.Entries)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfg.OutFile, "out", "o", "", "index artifact target (default: index.json in the spool directory)")
	cmd.Flags().IntVar(&cfg.Workers, "workers", 0, "parallel tick readers (default: bounded by CPU count)")
	return cmd
}

func loadCmd(logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "load <index-file>",
		Short: "Print spool files in tick order from a persisted index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, err := tickindex.Load(args[0])
			if err != nil {
				return err
			}
			for _, p := range ix.Paths() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func previewCmd(cfg *cliconfig.Config, logger log.Logger) *cobra.Command {
	var outPNG string
	var follow bool
	cmd := &cobra.Command{
		Use:   "preview <spool-path>",
		Short: "Render the newest spool file to an 8-bit PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.SpoolDir = args[0]
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			files, err := spool.List(cfg.SpoolDir)
			if err != nil {
				return err
			}
			g, err := resolveGeometry(cfg, files, logger)
			if err != nil {
				return err
			}
			if outPNG == "" {
				outPNG = filepath.Join(filepath.Dir(files[0]), "preview.png")
			}

			render := func(file string) error {
				return writePreview(file, g, cfg, outPNG, logger)
			}

			newest, err := spool.Newest(cfg.SpoolDir)
			if err != nil {
				return err
			}
			if err := render(newest); err != nil {
				return err
			}
			if !follow {
				return nil
			}

			w, err := spoolwatch.New(cfg.SpoolDir, spoolwatch.WithLogger(logger))
			if err != nil {
				return err
			}
			go func() {
				for file := range w.Events() {
					if err := render(file); err != nil {
						logger.Error("preview failed", log.String("file", file), log.Err(err))
					}
				}
			}()
			err = w.Run(cmd.Context())
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&outPNG, "out", "o", "", "output PNG path (default: preview.png in the spool directory)")
	cmd.Flags().BoolVar(&follow, "follow", false, "keep watching for new spool files and re-render")
	return cmd
}

// writePreview decodes one spool file, mean-reduces its frames and
// writes the contrast-stretched PNG.
func writePreview(file string, g spool.Geometry, cfg *cliconfig.Config, outPNG string, logger log.Logger) error {
	res, err := spool.Decode(file, g, spool.DecodeOptions{
		StopAtBlank: cfg.StopAtBlank,
		Log:         logger,
	})
	if err != nil {
		return err
	}
	grid, err := preview.Mean(res.Frames)
	if err != nil {
		return err
	}
	st, err := os.Stat(file)
	if err != nil {
		return err
	}
	if err := preview.WritePNG(preview.Stretch8(grid), nil, st.ModTime(), outPNG); err != nil {
		return err
	}
	logger.Info("preview written",
		log.String("source", file),
		log.String("png", outPNG))
	return nil
}

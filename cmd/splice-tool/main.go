package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/dhowden/tag"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	ucli "gopkg.in/urfave/cli.v2"

	"github.com/simonhull/tagsplice"
	"github.com/simonhull/tagsplice/internal/id3"
)

const (
	argCfgFile    = "config-file"
	argBufferSize = "buffer-size"
	argProgress   = "progress"
	argDebug      = "debug"
	argBackup     = "backup"

	argOffset   = "offset"
	argDelta    = "delta"
	argLength   = "length"
	argZero     = "zero"
	argDataFile = "data-file"

	argTitle  = "title"
	argArtist = "artist"
	argAlbum  = "album"
	argYear   = "year"
	argGenre  = "genre"
)

var (
	cfg    = NewDefaultConfig()
	logger = logrus.New()
)

func main() {
	app := &ucli.App{
		Name:    "splice-tool",
		Version: tagsplice.GetVersionInfo().String(),
		Usage:   "Resize regions inside files in place",
		Before:  initCfg,
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:  argCfgFile,
				Usage: "YAML configuration file path",
			},
			&ucli.IntFlag{
				Name:  argBufferSize,
				Usage: "transfer buffer size in bytes",
			},
			&ucli.BoolFlag{
				Name:  argProgress,
				Usage: "report progress on stderr",
			},
			&ucli.BoolFlag{
				Name:  argDebug,
				Usage: "enable debug logging",
			},
			&ucli.StringFlag{
				Name:  argBackup,
				Usage: "keep a copy of the file with this suffix before editing",
			},
		},
		Commands: []*ucli.Command{
			{
				Name:      "lengthen",
				Usage:     "Insert bytes at an offset",
				ArgsUsage: "FILE",
				Action:    runLengthen,
				Flags: []ucli.Flag{
					&ucli.Int64Flag{Name: argOffset, Usage: "insertion offset"},
					&ucli.Int64Flag{Name: argDelta, Usage: "number of bytes to insert"},
					&ucli.BoolFlag{Name: argZero, Usage: "zero the inserted bytes"},
				},
			},
			{
				Name:      "shorten",
				Usage:     "Remove the bytes ending at an offset",
				ArgsUsage: "FILE",
				Action:    runShorten,
				Flags: []ucli.Flag{
					&ucli.Int64Flag{Name: argOffset, Usage: "end of the removed range"},
					&ucli.Int64Flag{Name: argDelta, Usage: "number of bytes to remove"},
				},
			},
			{
				Name:      "replace",
				Usage:     "Replace a region with the content of another file",
				ArgsUsage: "FILE",
				Action:    runReplace,
				Flags: []ucli.Flag{
					&ucli.Int64Flag{Name: argOffset, Usage: "start of the replaced region"},
					&ucli.Int64Flag{Name: argLength, Usage: "length of the replaced region"},
					&ucli.StringFlag{Name: argDataFile, Usage: "file holding the new content"},
				},
			},
			{
				Name:      "id3",
				Usage:     "Rewrite ID3v2 text frames of an MP3 file",
				ArgsUsage: "FILE",
				Action:    runID3,
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: argTitle, Usage: "title"},
					&ucli.StringFlag{Name: argArtist, Usage: "artist"},
					&ucli.StringFlag{Name: argAlbum, Usage: "album"},
					&ucli.StringFlag{Name: argYear, Usage: "recording year"},
					&ucli.StringFlag{Name: argGenre, Usage: "genre"},
				},
			},
			{
				Name:      "info",
				Usage:     "Print the tags of a media file and where they are stored",
				ArgsUsage: "FILE",
				Action:    runInfo,
			},
		},
	}

	sort.Sort(ucli.FlagsByName(app.Flags))
	if err := app.Run(os.Args); err != nil {
		logger.Error(trace.DebugReport(err))
		os.Exit(1)
	}
}

func initCfg(c *ucli.Context) error {
	if cfgFile := c.String(argCfgFile); cfgFile != "" {
		config, err := LoadConfigFromFile(cfgFile)
		if err != nil {
			return trace.Wrap(err)
		}
		cfg.Merge(config)
	}

	applyArgsToCfg(c, cfg)
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.WithField("config", fmt.Sprintf("%+v", *cfg)).Debug("Configuration loaded.")
	return trace.Wrap(cfg.Check())
}

func applyArgsToCfg(c *ucli.Context, cfg *Config) {
	cfg.Merge(&Config{
		BufferSize:   c.Int(argBufferSize),
		Progress:     c.Bool(argProgress),
		Debug:        c.Bool(argDebug),
		BackupSuffix: c.String(argBackup),
	})
}

// newCtx returns a context cancelled on SIGINT or SIGTERM, so that an
// interrupted splice rolls back instead of leaving the file half shifted.
func newCtx() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func spliceOptions() []tagsplice.Option {
	opts := []tagsplice.Option{
		tagsplice.WithBufferSize(cfg.BufferSize),
		tagsplice.WithLogger(logger),
	}
	if cfg.Progress {
		opts = append(opts, tagsplice.WithProgress(func(p float64) {
			fmt.Fprintf(os.Stderr, "\r%3.0f%%", p*100)
			if p == 1 {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}
	return opts
}

func fileArg(c *ucli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", trace.BadParameter("expected exactly one FILE argument, got %d", c.NArg())
	}
	return c.Args().First(), nil
}

//===================== commands =====================

func runLengthen(c *ucli.Context) error {
	return runRequest(c, tagsplice.Request{
		EditOffset: c.Int64(argOffset),
		Delta:      c.Int64(argDelta),
		FillZeroes: c.Bool(argZero),
	})
}

func runShorten(c *ucli.Context) error {
	return runRequest(c, tagsplice.Request{
		EditOffset: c.Int64(argOffset),
		Delta:      -c.Int64(argDelta),
	})
}

// runRequest applies req to the file in the background and waits for it,
// cancelling on interrupt.
func runRequest(c *ucli.Context, req tagsplice.Request) error {
	path, err := fileArg(c)
	if err != nil {
		return trace.Wrap(err)
	}
	if cfg.BackupSuffix != "" {
		// ReplaceFile with an empty region is a plain splice with a backup.
		return trace.Wrap(replaceWithBackup(path, req))
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	defer f.Close()

	ctx, cancel := newCtx()
	defer cancel()

	op, err := tagsplice.StartApply(ctx, f, req, spliceOptions()...)
	if err != nil {
		return trace.Wrap(err)
	}
	logger.WithFields(logrus.Fields{"file": path, "offset": req.EditOffset, "delta": req.Delta}).Debug("Splice started.")

	if err := op.Wait(); err != nil {
		return trace.Wrap(err)
	}
	if !cfg.NoSync {
		if err := f.Sync(); err != nil {
			return trace.ConvertSystemError(err)
		}
	}
	if err := f.Close(); err != nil {
		return trace.ConvertSystemError(err)
	}
	return nil
}

func replaceWithBackup(path string, req tagsplice.Request) error {
	ctx, cancel := newCtx()
	defer cancel()

	if req.Delta >= 0 {
		data := make([]byte, req.Delta)
		return tagsplice.ReplaceFile(ctx, path, req.EditOffset, 0, data, cfg.editOptions(spliceOptions()...)...)
	}
	return tagsplice.ReplaceFile(ctx, path, req.EditOffset+req.Delta, -req.Delta, nil, cfg.editOptions(spliceOptions()...)...)
}

func runReplace(c *ucli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return trace.Wrap(err)
	}
	dataFile := c.String(argDataFile)
	if dataFile == "" {
		return trace.BadParameter("--%s is required", argDataFile)
	}
	data, err := ioutil.ReadFile(dataFile)
	if err != nil {
		return trace.ConvertSystemError(err)
	}

	ctx, cancel := newCtx()
	defer cancel()

	err = tagsplice.ReplaceFile(ctx, path, c.Int64(argOffset), c.Int64(argLength), data, cfg.editOptions(spliceOptions()...)...)
	return trace.Wrap(err)
}

func runID3(c *ucli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return trace.Wrap(err)
	}

	fields := map[string]string{}
	for flag, field := range map[string]string{
		argTitle:  "Title",
		argArtist: "Artist",
		argAlbum:  "Album",
		argYear:   "Year",
		argGenre:  "Genre",
	} {
		if c.IsSet(flag) {
			fields[field] = c.String(flag)
		}
	}
	if len(fields) == 0 {
		return trace.BadParameter("nothing to change")
	}

	f, err := os.Open(path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	newTag, oldSize, err := id3.Update(f, path, fields)
	f.Close()
	if err != nil {
		return trace.Wrap(err)
	}
	logger.WithFields(logrus.Fields{"old_size": oldSize, "new_size": len(newTag)}).Debug("Rendered ID3v2 tag.")

	ctx, cancel := newCtx()
	defer cancel()

	return trace.Wrap(tagsplice.ReplaceFile(ctx, path, 0, oldSize, newTag, cfg.editOptions(spliceOptions()...)...))
}

func runInfo(c *ucli.Context) error {
	path, err := fileArg(c)
	if err != nil {
		return trace.Wrap(err)
	}
	f, err := os.Open(path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return trace.Wrap(err, "read tags of %v", path)
	}

	track, tracks := m.Track()
	fmt.Printf("Format:   %s (%s)\n", m.Format(), m.FileType())
	fmt.Printf("Title:    %s\n", m.Title())
	fmt.Printf("Artist:   %s\n", m.Artist())
	fmt.Printf("Album:    %s\n", m.Album())
	fmt.Printf("Year:     %d\n", m.Year())
	fmt.Printf("Genre:    %s\n", m.Genre())
	fmt.Printf("Track:    %d/%d\n", track, tracks)
	if p := m.Picture(); p != nil {
		fmt.Printf("Picture:  %s, %d bytes\n", p.MIMEType, len(p.Data))
	}

	region, format, err := tagsplice.LocateTag(f, path)
	if err != nil {
		logger.WithError(err).Debug("Tag region not located.")
		return nil
	}
	fmt.Printf("Region:   %s tag at %d, %d bytes\n", format, region.Offset, region.Length)
	return nil
}

// Command vuplayer-library maintains a persistent music library: it
// scans configured source folders, extracts tags and stream properties
// from the files it finds, and keeps the result in a SQLite database.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/config"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/db"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/errmsg"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/handler"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/library"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/notify"
	"github.com/ScottsplaysSus/VUPlayer-Scottsplays-Fork/internal/scanner"
)

func main() {
	dbPath := flag.String("db", "", "library database path (default: XDG data dir)")
	removeMissing := flag.Bool("remove-missing", false, "prune entries whose files are gone")
	notifyDone := flag.Bool("notify", false, "send a desktop notification when the scan finishes")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msg(errmsg.Format(errmsg.OpConfigLoad, err))
	}

	setupLogging(cfg.LogLevel, *debug)

	if *dbPath == "" {
		*dbPath = cfg.Database
	}
	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Msg(errmsg.FormatWith(errmsg.OpLibraryOpen, *dbPath, err))
	}
	defer database.Close()

	handlers := handler.NewHandlers()
	handlers.Add(handler.NewTagHandler())

	tagWrite := cfg.GetTagWriteConfig()
	lib, err := library.New(database, handlers, library.Options{
		Logger:            log.Logger,
		WriteRate:         tagWrite.Rate,
		WriteBurst:        tagWrite.Burst,
		RecentWriteWindow: time.Duration(tagWrite.WindowSeconds) * time.Second,
	})
	if err != nil {
		log.Fatal().Msg(errmsg.Format(errmsg.OpLibraryOpen, err))
	}

	sources := flag.Args()
	if len(sources) == 0 {
		sources = cfg.LibrarySources
	}
	if len(sources) == 0 {
		log.Fatal().Msg("no library sources: pass folders as arguments or set library_sources in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanCfg := cfg.GetScanConfig()
	s := scanner.New(lib, scanner.Options{
		Logger:        log.Logger,
		Workers:       scanCfg.Workers,
		RemoveMissing: scanCfg.RemoveMissing || *removeMissing,
	})

	stats, err := runScan(ctx, s, sources)
	if err != nil {
		log.Fatal().Msg(errmsg.Format(errmsg.OpLibraryScan, err))
	}

	if *notifyDone || cfg.NotifyOnScan {
		sendScanNotification(stats)
	}

	logSummary(lib)
}

func setupLogging(level string, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	switch {
	case debug || level == "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case level == "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case level == "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func runScan(ctx context.Context, s *scanner.Scanner, sources []string) (*scanner.Stats, error) {
	progress := make(chan scanner.Progress)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Scan(ctx, sources, progress)
	}()

	var stats *scanner.Stats
	for p := range progress {
		switch p.Phase {
		case "scanning":
			if p.Current > 0 {
				log.Debug().Int("files", p.Current).Msg("discovering files")
			}
		case "processing":
			log.Debug().Int("current", p.Current).Int("total", p.Total).Msg("processing files")
		case "done":
			stats = p.Stats
			logScanStats(stats)
		}
	}
	return stats, <-errCh
}

func sendScanNotification(stats *scanner.Stats) {
	if stats == nil {
		return
	}
	var summary notify.ScanSummary
	for _, s := range stats.BySource {
		summary.Added += len(s.Added)
		summary.Updated += len(s.Updated)
		summary.Removed += len(s.Removed)
		summary.Failed += len(s.Failed)
	}

	n, err := notify.New()
	if err != nil {
		log.Debug().Err(err).Msg("desktop notifications unavailable")
		return
	}
	if err := notify.ScanComplete(n, summary); err != nil {
		log.Debug().Err(err).Msg("send scan notification")
	}
}

func logScanStats(stats *scanner.Stats) {
	if stats == nil {
		return
	}
	for src, s := range stats.BySource {
		log.Info().
			Str("source", src).
			Int("added", len(s.Added)).
			Int("updated", len(s.Updated)).
			Int("removed", len(s.Removed)).
			Int("failed", len(s.Failed)).
			Msg("scan complete")
	}
}

func logSummary(lib *library.Library) {
	media, err := lib.AllMedia()
	if err != nil {
		log.Warn().Err(err).Msg("load library summary")
		return
	}
	artists, _ := lib.Artists()
	albums, _ := lib.Albums()

	var totalBytes int64
	var totalSeconds float64
	for _, m := range media {
		totalBytes += m.Filesize
		totalSeconds += m.Duration
	}

	log.Info().
		Str("tracks", humanize.Comma(int64(len(media)))).
		Int("artists", len(artists)).
		Int("albums", len(albums)).
		Str("size", humanize.IBytes(uint64(max(totalBytes, 0)))).
		Str("duration", (time.Duration(totalSeconds) * time.Second).String()).
		Msg("library")
}

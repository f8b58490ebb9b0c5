package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/rmmh/worldshift/go/rules"
	"github.com/rmmh/worldshift/go/store"
	"github.com/rmmh/worldshift/go/translate"
	"github.com/rmmh/worldshift/go/versions"
)

func usage() {
	fmt.Println("usage: worldshift translate -in <db> -out <db> -from <platform:version> -to <platform:version> [-rules dir] [-versions table.yaml] [-workers n]")
	fmt.Println("       worldshift serve [-config cfg.yaml]")
	fmt.Println("       worldshift version [-versions table.yaml] [game version]")
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	in := fs.String("in", "", "input chunk database")
	out := fs.String("out", "", "output chunk database")
	rulesDir := fs.String("rules", "", "directory of rule tables")
	tablePath := fs.String("versions", "", "chunk version table (default: built-in leveldb table)")
	from := fs.String("from", "", "source version, e.g. bedrock:13 or bedrock:1.11.1")
	to := fs.String("to", "", "target version, e.g. java:2730")
	workers := fs.Int("workers", runtime.NumCPU(), "translation workers")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)
	if *in == "" || *out == "" || *from == "" || *to == "" {
		usage()
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(level)

	table, err := loadVersionTable(*tablePath)
	if err != nil {
		log.Fatal(err)
	}
	fromKey, err := parseVersionKey(table, *from)
	if err != nil {
		log.Fatal(err)
	}
	toKey, err := parseVersionKey(table, *to)
	if err != nil {
		log.Fatal(err)
	}
	reg := rules.NewRegistry(logger)
	if *rulesDir != "" {
		if err := reg.LoadDir(*rulesDir); err != nil {
			log.Fatal(err)
		}
	}
	src, err := store.Open(*in)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()
	dst, err := store.Open(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer dst.Close()

	b := &batch{
		log:      logger,
		engine:   translate.New(logger),
		provider: reg,
		metrics:  newMetrics(),
		in:       src,
		out:      dst,
		from:     fromKey,
		to:       toKey,
		workers:  *workers,
	}
	failed, err := b.run()
	if err != nil {
		logger.Error("translate failed", "err", err)
		return 1
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	path := fs.String("config", "", "YAML config file (default $WORLDSHIFT_CONFIG)")
	fs.Parse(args)

	cfg, err := loadConfig(*path)
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(serve(cfg, newLogger(cfg.Level())))
	return 0
}

// runVersion describes the chunk version a game version writes, or lists
// the whole table when no game version is given.
func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	tablePath := fs.String("versions", "", "chunk version table (default: built-in leveldb table)")
	fs.Parse(args)
	table, err := loadVersionTable(*tablePath)
	if err != nil {
		log.Fatal(err)
	}

	if fs.NArg() == 0 {
		for _, cv := range table.ChunkVersions() {
			rng, _ := table.Range(cv)
			fmt.Printf("%3d: %s - %s\n", cv, rng.Min, rng.Max)
		}
		return 0
	}
	if fs.NArg() != 1 {
		usage()
		return 2
	}

	game, err := versions.ParseGameVersion(fs.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	cv, ok := table.GameToChunkVersion(game)
	if !ok {
		fmt.Printf("%s: no leveldb chunk version\n", game)
		return 1
	}
	fmt.Printf("%s: chunk version %d\n", game, cv)
	f, ok := versions.LevelDBFeatures(cv)
	if !ok {
		return 0
	}
	fmt.Printf("  terrain %s, 2d data %s, finalised state %s\n", f.Terrain, f.Data2D, f.FinalisedState)
	fmt.Printf("  block entities %s (%s, %s)\n", f.BlockEntities, f.BlockEntityFormat, f.BlockEntityCoordFormat)
	fmt.Printf("  entities %s (%s, %s)\n", f.Entities, f.EntityFormat, f.EntityCoordFormat)
	return 0
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "translate":
		os.Exit(runTranslate(args[1:]))
	case "serve":
		os.Exit(runServe(args[1:]))
	case "version":
		os.Exit(runVersion(args[1:]))
	default:
		usage()
		os.Exit(2)
	}
}

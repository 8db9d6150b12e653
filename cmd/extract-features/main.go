// Command extract-features streams the blended feature vector of every
// dictionary entry as TSV, one line per headword.
//
// Usage:
//
//	extract-features [-config file] data_prefix
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"

	"github.com/cognicore/lexrel/pkg/lexrel/config"
	"github.com/cognicore/lexrel/pkg/lexrel/feature"
	"github.com/cognicore/lexrel/pkg/lexrel/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML configuration file")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if cfg.Store.Driver != config.DriverSQLite {
		log.Fatalf("store driver %q is not usable from the command line", cfg.Store.Driver)
	}

	args := flag.Args()
	if len(args) < 1 {
		log.Fatal("usage: extract-features [-config file] data_prefix")
	}
	prefix := args[0]

	ctx := context.Background()

	entryDB, err := sqlite.OpenEntries(ctx, config.EntryIndexPath(prefix))
	if err != nil {
		log.Fatalf("open entry index: %v", err)
	}

	blender := feature.NewBlender(entryDB)
	defer blender.Close()

	out := bufio.NewWriter(os.Stdout)
	if err := blender.Run(ctx, out); err != nil {
		log.Fatalf("extract features: %v", err)
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("flush output: %v", err)
	}
}

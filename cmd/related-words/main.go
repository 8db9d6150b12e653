// Command related-words prints the words related to a query text,
// ranked by co-occurrence profile similarity.
//
// Usage:
//
//	related-words [-config file] [-show-cooc] data_prefix text...
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/cognicore/lexrel/pkg/lexrel/config"
	"github.com/cognicore/lexrel/pkg/lexrel/predict"
	"github.com/cognicore/lexrel/pkg/lexrel/store/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML configuration file")
		showCooc   = flag.Bool("show-cooc", false, "Also print the aggregated co-occurrence profile")
	)
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
	if len(args) < 2 {
		log.Fatal("usage: related-words [-config file] [-show-cooc] data_prefix text...")
	}
	prefix := args[0]
	text := strings.Join(args[1:], " ")

	ctx := context.Background()

	coocDB, err := sqlite.OpenCooc(ctx, config.CoocScorePath(prefix))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	predictor, err := predict.New(coocDB, predict.Options{
		Language:  cfg.Language,
		CacheSize: cfg.Predictor.CacheSize,
	})
	if err != nil {
		log.Fatalf("create predictor: %v", err)
	}
	defer predictor.Close()

	result, err := predictor.Predict(ctx, text)
	if err != nil {
		log.Fatalf("predict: %v", err)
	}

	for _, ws := range result.RelWords {
		fmt.Printf("%s\t%.6f\n", ws.Word, ws.Score)
	}
	if *showCooc {
		fmt.Println()
		for _, ws := range result.CoocWords {
			fmt.Printf("%s\t%.6f\n", ws.Word, ws.Score)
		}
	}
}

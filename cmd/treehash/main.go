// Command treehash prints structural digests of the values in its input files.
//
// One hex digest is printed for every top level value, or for every root
// of a CAR file, followed by the name of the input it was read from.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/nasdf/treehash/config"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("treehash")

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	algorithm := flag.String("algorithm", "", "Digest algorithm (sha2-256, sha3-256, blake3, identity or any multihash name)")
	format := flag.String("format", "", "Input format (dag-json, dag-cbor, cbor, yaml, car)")
	maxDepth := flag.Int("max-depth", 0, "Maximum container nesting depth")
	exportPath := flag.String("export", "", "Write the DAG of a single IPLD input to this CAR file")
	followLinks := flag.Bool("follow-links", true, "Hash linked blocks in place of links")
	verbosity := flag.Int("v", 0, "Log verbosity (-4 disables logging, 2 logs debug messages)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	// explicitly set flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "algorithm":
			cfg.Algorithm = *algorithm
		case "format":
			cfg.Format = *format
		case "max-depth":
			cfg.MaxDepth = *maxDepth
		case "export":
			cfg.Export = *exportPath
		case "follow-links":
			cfg.FollowLinks = *followLinks
		case "v":
			cfg.Verbosity = *verbosity
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	commonlog.Configure(cfg.Verbosity, nil)

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}
	if err := run(context.Background(), cfg, inputs, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

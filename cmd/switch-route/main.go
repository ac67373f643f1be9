// Command switch-route routes the items of a TOML node file and prints the
// lanes as JSON.
//
//	lane_count = 4
//	dialect = "cel"
//
//	[parameters]
//	mode = "rules"
//	dataType = "number"
//	value1 = "={{ json.score }}"
//	fallbackOutput = 3
//
//	[[parameters.rules.rules]]
//	operation = "largerEqual"
//	value2 = 90
//	output = 0
//
//	[[items]]
//	score = 95
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aescanero/dago-node-switch/internal/eval"
	"github.com/aescanero/dago-node-switch/internal/node"
	"github.com/aescanero/dago-node-switch/internal/schema"
	"github.com/aescanero/dago-node-switch/internal/store"
)

// nodeFile is the layout of the TOML input
type nodeFile struct {
	LaneCount  int                      `toml:"lane_count"`
	Dialect    string                   `toml:"dialect"`
	Parameters map[string]interface{}   `toml:"parameters"`
	Items      []map[string]interface{} `toml:"items"`
}

func main() {
	verbose := flag.Bool("v", false, "log routing decisions")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-v] <node.toml>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := zapcore.WarnLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	logger, err := initLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), flag.Arg(0), os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "switch-route: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, out io.Writer, logger *zap.Logger) error {
	var file nodeFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if file.LaneCount == 0 {
		file.LaneCount = schema.SwitchOutputs
	}

	parameters, err := normalize(file.Parameters)
	if err != nil {
		return err
	}

	items, err := store.DecodeItems(file.Items)
	if err != nil {
		return err
	}

	executor, err := node.NewExecutor(file.LaneCount, eval.Dialect(file.Dialect), logger)
	if err != nil {
		return err
	}

	result, err := executor.Execute(ctx, parameters, items)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// normalize gives TOML values the shapes of decoded JSON
func normalize(parameters map[string]interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal parameters: %w", err)
	}

	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	return out, nil
}

func initLogger(level zapcore.Level) (*zap.Logger, error) {
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

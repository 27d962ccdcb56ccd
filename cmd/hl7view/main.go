// hl7view parses a pipe-encoded HL7 v2.x message file and renders each
// segment's fields with their dictionary labels and operator annotations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arcward/hl7"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func newLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", "hl7view").Logger()
	if !verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}
	return logger
}

func main() {
	var (
		configPath    string
		jsonOut       bool
		knownSegments bool
		unconfigure   string
		verbose       bool
	)
	flag.StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	flag.BoolVar(&jsonOut, "json", false, "emit the parse tree as JSON")
	flag.BoolVar(&knownSegments, "known-segments", false, "list segment types with dictionary entries and exit")
	flag.StringVar(&unconfigure, "unconfigure", "", "remove the annotation at the given position (requires persistence_url)")
	flag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flag.Parse()

	logger := newLogger(verbose)

	if err := run(logger, configPath, jsonOut, knownSegments, unconfigure, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "hl7view: %v\n", err)
		os.Exit(1)
	}
}

func run(
	logger zerolog.Logger,
	configPath string,
	jsonOut bool,
	knownSegments bool,
	unconfigure string,
	args []string,
) error {
	dict, err := hl7.NewDictionary()
	if err != nil {
		return err
	}
	configTable, err := hl7.NewConfigTable(dict)
	if err != nil {
		return err
	}

	if knownSegments {
		for _, code := range dict.KnownSegments() {
			def, _ := dict.SegmentDefinition(code)
			fmt.Printf("%s\t%s\n", code, def.Name)
		}
		return nil
	}

	if unconfigure != "" {
		cfg := defaultViewerConfig()
		if configPath != "" {
			cfg, err = loadViewerConfig(configPath)
			if err != nil {
				return err
			}
		}
		if cfg.PersistenceURL == "" {
			return fmt.Errorf("--unconfigure requires persistence_url in the config file")
		}
		client := hl7.NewClient(cfg.PersistenceURL, logger)
		editor := hl7.NewEditor(dict, configTable, client, logger)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		return editor.Unconfigure(ctx, unconfigure)
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one message file argument")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	msg := hl7.ParseNamedMessage(string(raw), args[0])

	if jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(msg)
	}

	render(msg, dict, configTable)
	return nil
}

func render(msg *hl7.Message, dict *hl7.Dictionary, configTable *hl7.ConfigTable) {
	if msg.MessageType != "" || msg.Timestamp != "" {
		fmt.Printf("message type: %s  timestamp: %s\n\n", msg.MessageType, msg.Timestamp)
	}
	for _, segment := range msg.Segments {
		if def, ok := dict.SegmentDefinition(segment.Name); ok {
			fmt.Printf("%s  (%s)\n", segment.Name, def.Name)
		} else {
			fmt.Printf("%s\n", segment.Name)
		}
		for i, field := range segment.Fields {
			if i == 0 || field.Value == "" {
				continue
			}
			marker := " "
			if configTable.IsConfigurable(field.Position) {
				marker = "*"
			}
			fmt.Printf(
				"  %s %-10s %-32s %s\n",
				marker,
				field.Position,
				configTable.LabelFor(field.Position),
				field.Value,
			)
			if len(field.Components) > 1 {
				for _, component := range field.Components {
					if component.Value == "" {
						continue
					}
					fmt.Printf(
						"      %-10s %-30s %s\n",
						component.Position,
						configTable.LabelFor(component.Position),
						component.Value,
					)
				}
			}
		}
		fmt.Println()
	}
}

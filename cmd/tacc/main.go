package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/xplshn/tacc/pkg/cli"
	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/compiler"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/util"
)

func main() {
	app := cli.NewApp("tacc")
	app.Synopsis = "[options] <input.mini>"
	app.Description = "Checks a program written in the mini language and translates it into three-address code."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/tacc>"

	var (
		outFile     string
		format      string
		configPath  string
		dumpTokens  bool
		dumpStream  bool
		dumpSymbols bool
		printHash   bool
		noColor     bool
		verbose     bool
	)

	flags := app.FlagSet
	flags.String(&outFile, "output", "o", "", "Place the output into <file> instead of stdout.", "file")
	flags.String(&format, "format", "f", "", "Output format: "+strings.Join(codegen.Formats(), ", ")+".", "format")
	flags.String(&configPath, "config", "c", "", "Read settings from <file> (default: ./"+config.DefaultFileName+" if present).", "file")
	flags.Bool(&dumpTokens, "dump-tokens", "", false, "Print the token list and exit.")
	flags.Bool(&dumpStream, "dump-stream", "", false, "Print the instruction stream grouped by line and exit.")
	flags.Bool(&dumpSymbols, "dump-symbols", "", false, "Print the symbol slots after analysis and exit.")
	flags.Bool(&printHash, "hash", "", false, "Print the fingerprint of the generated code.")
	flags.Bool(&noColor, "no-color", "", false, "Disable coloured diagnostics.")
	flags.Bool(&verbose, "verbose", "v", false, "Report each compilation stage.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(flags)

	app.Action = func(inputFiles []string) error {
		util.SetColor(!noColor && term.IsTerminal(int(os.Stderr.Fd())))

		if err := loadConfig(cfg, configPath); err != nil {
			return err
		}
		// Command line flags override the project file.
		cfg.ApplyFlagGroups(warningFlags, featureFlags)
		if format != "" {
			cfg.Format = format
		}
		if outFile != "" {
			cfg.OutputPath = outFile
		}
		for _, key := range cfg.Unknown {
			util.WarnGlobal(cfg, config.WarnExtra, "unknown configuration key '%s'", key)
		}

		if len(inputFiles) != 1 {
			return fmt.Errorf("expected exactly one input file, got %d", len(inputFiles))
		}
		input := inputFiles[0]
		content, err := os.ReadFile(input)
		if err != nil {
			return fmt.Errorf("could not read '%s': %w", input, err)
		}
		src := string(content)
		util.SetSource(input, src)

		backend, err := codegen.SelectBackend(cfg.Format, src)
		if err != nil {
			return err
		}

		opts := compiler.Options{Config: cfg}
		if verbose {
			opts.OnStage = func(s compiler.Stage) { util.Info("tacc", "%s...", s) }
		}
		res, err := compiler.Compile(input, src, opts)
		if err != nil {
			util.Report(err)
			return err
		}

		switch {
		case dumpTokens:
			return writeOutput(cfg.OutputPath, formatTokens(res))
		case dumpStream:
			return writeOutput(cfg.OutputPath, codegen.FormatStream(res.Stream))
		case dumpSymbols:
			return writeOutput(cfg.OutputPath, formatSymbols(res))
		}

		buf, err := backend.Generate(res.Program, cfg)
		if err != nil {
			return fmt.Errorf("output generation failed: %w", err)
		}
		if err := writeOutput(cfg.OutputPath, buf.String()); err != nil {
			return err
		}
		if verbose {
			util.Info("tacc", "%d instruction(s), %d label(s)", len(res.Program.Instrs), res.Program.Labels)
		}
		if printHash {
			fmt.Fprintf(os.Stderr, "%016x  %s\n", res.Fingerprint(), input)
		}
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		var ce *util.CompileError
		if !errors.As(err, &ce) {
			fmt.Fprintf(os.Stderr, "tacc: %v\n", err)
		}
		os.Exit(1)
	}
}

func loadConfig(cfg *config.Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = config.DefaultFileName
	}
	err := cfg.LoadFile(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeOutput(path, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprint(os.Stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("could not write '%s': %w", path, err)
	}
	return nil
}

func formatTokens(res *compiler.Result) string {
	var sb strings.Builder
	for _, tok := range res.Tokens {
		fmt.Fprintf(&sb, "%d:%d\t%-18s %s\n", tok.Line, tok.Column, tok.Kind, tok.Text)
	}
	return sb.String()
}

func formatSymbols(res *compiler.Result) string {
	var sb strings.Builder
	for _, slot := range res.Symbols.Slots {
		scope := "-"
		if slot.Bound() {
			scope = fmt.Sprint(slot.Scope)
		}
		fmt.Fprintf(&sb, "%-4d %-12s line %-4d %-10s %-5s scope %-3s", slot.Tok, slot.Name, slot.Line, slot.Kind, slot.Type, scope)
		if slot.HasValue {
			fmt.Fprintf(&sb, " = %s", slot.Value)
		}
		if slot.IsCallable() {
			fmt.Fprintf(&sb, " params %v", slot.Params)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

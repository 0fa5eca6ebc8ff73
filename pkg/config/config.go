package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/xplshn/tacc/pkg/cli"
)

type Feature int

const (
	FeatShadowing Feature = iota
	FeatTreeTAC
	FeatStrictReturn
	FeatCount
)

type Warning int

const (
	WarnUninitialized Warning = iota
	WarnUnreachableCode
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features   map[Feature]Info
	Warnings   map[Warning]Info
	FeatureMap map[string]Feature
	WarningMap map[string]Warning
	Format     string
	OutputPath string
	// Unknown collects keys of a project file that matched nothing.
	Unknown []string
}

// DefaultFileName is looked up in the working directory when no --config is given.
const DefaultFileName = "tacc.toml"

func NewConfig() *Config {
	cfg := &Config{
		Features:   make(map[Feature]Info),
		Warnings:   make(map[Warning]Info),
		FeatureMap: make(map[string]Feature),
		WarningMap: make(map[string]Warning),
		Format:     "tac",
	}

	features := map[Feature]Info{
		FeatShadowing:    {"shadowing", false, "Allow inner blocks to shadow outer names; resolve innermost-first."},
		FeatTreeTAC:      {"tree-tac", false, "Decompose expressions following operator precedence instead of left to right."},
		FeatStrictReturn: {"strict-return", true, "Require every function body to contain a 'return'."},
	}

	warnings := map[Warning]Info{
		WarnUninitialized:   {"uninitialized", true, "Warn about variables declared without an initializer."},
		WarnUnreachableCode: {"unreachable-code", true, "Warn about statements after 'return', 'break' or 'continue'."},
		WarnExtra:           {"extra", true, "Enable extra miscellaneous warnings (e.g., unknown config keys)."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}
	return cfg
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		c.SetWarning(i, enabled)
	}
}

// ApplyFlag handles a single -W/-F style flag such as "-Wno-extra" or "-Ftree-tac".
func (c *Config) ApplyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	if len(trimmed) < 2 {
		return fmt.Errorf("malformed flag '%s'", flag)
	}
	prefix, name := trimmed[0], trimmed[1:]
	enable := !strings.HasPrefix(name, "no-")
	name = strings.TrimPrefix(name, "no-")

	switch prefix {
	case 'W':
		if name == "all" {
			c.SetAllWarnings(enable)
			return nil
		}
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
	case 'F':
		f, ok := c.FeatureMap[name]
		if !ok {
			return fmt.Errorf("unknown feature '%s'", name)
		}
		c.SetFeature(f, enable)
	default:
		return fmt.Errorf("malformed flag '%s'", flag)
	}
	return nil
}

// SetupFlagGroups registers -W<name>/-Wno-<name> and -F<name>/-Fno-<name> flags.
// The returned entries are indexed by Warning and Feature respectively.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	warningFlags := make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}
	featureFlags := make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}
	fs.AddFlagGroup("Warning Flags", "Enable or disable specific warnings.", "warning", "Available Warnings:", warningFlags)
	fs.AddFlagGroup("Feature Flags", "Enable or disable language and codegen features.", "feature", "Available Features:", featureFlags)
	return warningFlags, featureFlags
}

// ApplyFlagGroups copies the parsed group flags into the tables. Explicit
// -no- flags win over enabling ones.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i, entry := range warningFlags {
		if *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}

// LoadFile reads a TOML project file with [features], [warnings] and [output] tables.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.LoadBytes(data)
}

func (c *Config) LoadBytes(data []byte) error {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for _, key := range sortedKeys(tree) {
		switch key {
		case "features", "warnings":
			sub, ok := tree.Get(key).(*toml.Tree)
			if !ok {
				return fmt.Errorf("invalid config: '%s' must be a table", key)
			}
			if err := c.loadToggles(key, sub); err != nil {
				return err
			}
		case "output":
			sub, ok := tree.Get(key).(*toml.Tree)
			if !ok {
				return fmt.Errorf("invalid config: 'output' must be a table")
			}
			if err := c.loadOutput(sub); err != nil {
				return err
			}
		default:
			c.Unknown = append(c.Unknown, key)
		}
	}
	sort.Strings(c.Unknown)
	return nil
}

// sortedKeys returns the keys of tree in a stable order with "all" first, so a
// specific toggle always overrides the blanket one.
func sortedKeys(tree *toml.Tree) []string {
	keys := tree.Keys()
	sort.Slice(keys, func(i, j int) bool {
		if (keys[i] == "all") != (keys[j] == "all") {
			return keys[i] == "all"
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (c *Config) loadToggles(table string, tree *toml.Tree) error {
	for _, name := range sortedKeys(tree) {
		enabled, ok := tree.Get(name).(bool)
		if !ok {
			return fmt.Errorf("invalid config: %s.%s must be a boolean", table, name)
		}
		if table == "warnings" && name == "all" {
			c.SetAllWarnings(enabled)
			continue
		}
		if table == "warnings" {
			if w, ok := c.WarningMap[name]; ok {
				c.SetWarning(w, enabled)
				continue
			}
		} else if f, ok := c.FeatureMap[name]; ok {
			c.SetFeature(f, enabled)
			continue
		}
		c.Unknown = append(c.Unknown, table+"."+name)
	}
	return nil
}

func (c *Config) loadOutput(tree *toml.Tree) error {
	for _, name := range sortedKeys(tree) {
		value, ok := tree.Get(name).(string)
		if !ok {
			return fmt.Errorf("invalid config: output.%s must be a string", name)
		}
		switch name {
		case "format":
			c.Format = value
		case "path":
			c.OutputPath = value
		default:
			c.Unknown = append(c.Unknown, "output."+name)
		}
	}
	return nil
}

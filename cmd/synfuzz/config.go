package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
)

// TOML is a kong.ConfigurationLoader for TOML files.
//
// Keys are flag names, with either dashes or underscores:
//
//	rule = "json"
//	max-repeat = 5
//	max_depth = 8
//
// Values only apply to flags not given on the command line.
func TOML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if raw, ok := values[key]; ok {
				return fmt.Sprint(raw), nil
			}
		}
		return nil, nil
	}
	return f, nil
}

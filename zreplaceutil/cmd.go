/*
Copyright © 2019 the InMAP authors.
This file is part of zreplace.

zreplace is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

zreplace is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with zreplace.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package zreplaceutil holds the command-line interface for zreplace.
package zreplaceutil

import (
	"context"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/zreplace"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to zreplace.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "replacement",
			usage: `
              replacement is the value that matching cells are set to.
              It is required.`,
			shorthand:  "r",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{replaceCmd.Flags()},
		},
		{
			name: "old",
			usage: `
              old is the value to be replaced. Cells within 0.01 of old
              are replaced. If old is not set, negative values are
              replaced instead.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{replaceCmd.Flags()},
		},
		{
			name: "mode",
			usage: `
              mode selects the cells to be replaced: "negative" for all
              cells below zero or "exact" for cells matching old. If mode
              is empty it is "exact" when old is set and "negative" otherwise.`,
			shorthand:  "m",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{replaceCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If it is empty, log messages
              are only written to standard error.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{replaceCmd.Flags()},
		},
	}

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			default:
				panic("invalid argument type")
			}
		}
	}
	Cfg = newConfig()
}

// newConfig returns a configuration bound to the command-line flags.
func newConfig() *viper.Viper {
	cfg := viper.New()

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("ZREPLACE")
	cfg.AutomaticEnv()

	for _, option := range options {
		cfg.BindPFlag(option.name, option.flagsets[0].Lookup(option.name))
	}
	return cfg
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(replaceCmd)
	Root.AddCommand(infoCmd)

	// Diagnostics go to standard error; the caller decides how to
	// report errors.
	Root.SetOutput(os.Stderr)
	Root.SilenceErrors = true
	Root.SilenceUsage = true
	Root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &zreplace.UsageError{Msg: err.Error()}
	})
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("zreplace: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// floatOption returns the value of the named option and whether it
// has been set.
func floatOption(name string) (float32, bool, error) {
	v := Cfg.Get(name)
	if v == nil || v == "" {
		return 0, false, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, true, &zreplace.UsageError{Msg: fmt.Sprintf("bad number for --%s: %v", name, v)}
	}
	return float32(f), true, nil
}

// policy builds the replacement policy from the configuration.
func policy() (zreplace.Policy, error) {
	replacement, ok, err := floatOption("replacement")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &zreplace.UsageError{Msg: "the --replacement option is required"}
	}
	old, ok, err := floatOption("old")
	if err != nil {
		return nil, err
	}
	var oldPtr *float32
	if ok {
		oldPtr = &old
	}
	return zreplace.NewPolicy(Cfg.GetString("mode"), replacement, oldPtr)
}

// exactArgs is like cobra.ExactArgs but returns a *zreplace.UsageError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return &zreplace.UsageError{Msg: fmt.Sprintf("%s accepts %d arguments, received %d", cmd.Name(), n, len(args))}
		}
		return nil
	}
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "zreplace",
	Short: "Replace values in elevation grids.",
	Long: `zreplace replaces elevation values in gridded elevation and bathymetry
files in the CHRTR2 (.ch2) and netCDF (.nc) formats.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ZREPLACE_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of zreplace.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("zreplace v%s\n", zreplace.Version)
	},
	DisableAutoGenTag: true,
}

var replaceCmd = &cobra.Command{
	Use:   "replace INPUT OUTPUT",
	Short: "Replace values in a grid",
	Long: `replace copies the grid in INPUT to the new file OUTPUT, replacing
the values of the cells selected by the --mode and --old options with the
value of the --replacement option. Cells without data are copied unchanged.
The observed minimum and maximum elevation stored in the header of OUTPUT
are recomputed from the replaced values.

The file formats are determined from the file extensions, so INPUT and
OUTPUT may be in different formats. Either file may be a blob storage
location ('gs://bucket/key', 's3://bucket/key', or 'file://dir/key'), and
INPUT may also be an http(s) URL.`,
	Example: `  zreplace replace in.ch2 out.ch2 --replacement=0
  zreplace replace in.ch2 out.nc --old=10 --replacement=-9999`,
	Args: exactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := policy()
		if err != nil {
			return err
		}
		_, err = Replace(context.Background(), cmd.OutOrStderr(),
			os.ExpandEnv(args[0]),
			os.ExpandEnv(args[1]),
			os.ExpandEnv(Cfg.GetString("LogFile")),
			p,
		)
		return err
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Print the header of a grid",
	Long: `info prints the dimensions, observed elevation range, and metadata
of the grid in FILE to standard output in TOML format.`,
	Args: exactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Info(context.Background(), os.Stdout, os.ExpandEnv(args[0]))
	},
	DisableAutoGenTag: true,
}

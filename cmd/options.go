package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cmmoran/cxxbind/pkg/parser"
)

// addOptionFlags registers the flags every command that runs an analysis
// shares. Values are read back through viper so a config file or the
// environment can provide them too.
func addOptionFlags(flags *pflag.FlagSet) {
	defaults := parser.NewOptions()
	flags.StringP("input-directory", "i", defaults.InDir, "directory to scan for headers")
	flags.StringP("output-directory", "o", defaults.OutDir, "directory to write the report to")
	flags.StringP("output-file", "f", defaults.OutFile, "report file; the extension picks the format unless --format is given")
	flags.String("format", "", "report format (yaml, json, go)")
	flags.StringSlice("extensions", defaults.Extensions, "header file extensions")
	flags.StringSliceP("system-include", "I", nil, "directories holding system headers")
	flags.StringSlice("export-macros", defaults.ExportMacros, "visibility macros to blank before parsing")
	flags.StringSliceP("exclude", "x", nil, "regular expressions of names never surfaced")
	flags.StringSlice("ignore", nil, "regular expressions of classes skipped silently")
	flags.StringSlice("system-types", nil, "additional names with a native target equivalent")
	flags.StringSlice("implemented-generics", nil, "template specializations the bindings implement")
	flags.StringSliceP("export", "e", nil, "manual class kind overrides, ex: cv::Point=simple")
	flags.StringP("settings", "s", "", "settings file (yaml or toml) with exclusions, exports and specializations")
	flags.IntP("workers", "w", 0, "parallel parse and analysis workers, 0 for one per CPU")
	flags.Int("max-base-depth", defaults.MaxBaseDepth, "bound on inheritance chains and type nesting")
}

// bindOptionFlags makes viper read the flags of the command being run.
func bindOptionFlags(c *cobra.Command, _ []string) error {
	return viper.BindPFlags(c.Flags())
}

// loadOptions assembles normalized options from flags, config and the
// settings file.
func loadOptions() (opts *parser.Options, err error) {
	opts = parser.NewOptions()
	opts.InDir = viper.GetString("input-directory")
	opts.OutDir = viper.GetString("output-directory")
	opts.OutFile = viper.GetString("output-file")
	opts.Format = viper.GetString("format")
	opts.Extensions = viper.GetStringSlice("extensions")
	opts.SystemIncludeDirs = viper.GetStringSlice("system-include")
	opts.ExportMacros = viper.GetStringSlice("export-macros")
	opts.ExcludePatterns = viper.GetStringSlice("exclude")
	opts.IgnorePatterns = viper.GetStringSlice("ignore")
	opts.ImplementedGenerics = viper.GetStringSlice("implemented-generics")
	opts.Workers = viper.GetInt("workers")
	opts.MaxBaseDepth = viper.GetInt("max-base-depth")
	if extra := viper.GetStringSlice("system-types"); len(extra) > 0 {
		opts.SystemTypes = extra
	}

	if path := viper.GetString("settings"); path != "" {
		s, err := parser.LoadSettings(path)
		if err != nil {
			return nil, err
		}
		opts.Apply(s)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	opts.Normalize(viper.GetStringSlice("export")...)
	return opts, nil
}

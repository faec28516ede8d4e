/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
package cmd

import (
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/pikelsp/cmd/config"
	"bennypowers.dev/pikelsp/internal/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pikelsp",
	Short: "Incremental analysis core for the Pike language server",
	Long: `Parses, compiles and introspects Pike source trees on behalf of an
editor. The analyzer keeps compiled programs, stdlib modules and import
resolutions in LRU caches, tracks a dependency graph for precise
invalidation, and answers navigation, completion and hover queries.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	projectRoot := viper.GetString("projectRoot")
	if projectRoot == "" {
		projectRoot = config.DetectProjectRoot()
		viper.Set("projectRoot", projectRoot)
	}

	cfgFile := viper.GetString("configFile")
	if cfgFile == "" {
		cfgFile = filepath.Join(projectRoot, ".config", "pikelsp.yaml")
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err == nil {
		pterm.Debug.Println("Using config file: ", cfgFile)
	}
	viper.Set("configFile", cfgFile)

	viper.SetEnvPrefix("PIKELSP")
	viper.AutomaticEnv()

	logging.SetDebugEnabled(viper.GetBool("debug"))
	logging.SetQuietEnabled(viper.GetBool("quiet"))
	if viper.GetBool("debug") {
		pterm.EnableDebugMessages()
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("config", "", "config file (default is <projectRoot>/.config/pikelsp.yaml)")
	rootCmd.PersistentFlags().String("project-root", "", "Path to the workspace root (default: auto-detected from CWD)")
	rootCmd.PersistentFlags().StringSlice("include-path", nil, "System include root for #include <...> (repeatable)")
	rootCmd.PersistentFlags().StringSlice("module-path", nil, "Pike module root for dotted-name resolution (repeatable)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "debug logging output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress info output")
	cobra.CheckErr(viper.BindPFlag("configFile", rootCmd.PersistentFlags().Lookup("config")))
	cobra.CheckErr(viper.BindPFlag("projectRoot", rootCmd.PersistentFlags().Lookup("project-root")))
	cobra.CheckErr(viper.BindPFlag("includePaths", rootCmd.PersistentFlags().Lookup("include-path")))
	cobra.CheckErr(viper.BindPFlag("modulePaths", rootCmd.PersistentFlags().Lookup("module-path")))
	cobra.CheckErr(viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")))
	cobra.CheckErr(viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")))
}

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
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"bennypowers.dev/pikelsp/analyzer"
)

// Files that indicate project root, in order of preference
var projectFiles = []string{
	".config/pikelsp.yaml",
	".git",
	"Makefile",
}

// CacheConfig holds the per-store capacities
type CacheConfig struct {
	Programs    int `mapstructure:"programs" yaml:"programs"`
	Stdlib      int `mapstructure:"stdlib" yaml:"stdlib"`
	Imports     int `mapstructure:"imports" yaml:"imports"`
	Compilation int `mapstructure:"compilation" yaml:"compilation"`
}

// PikelspConfig is the analyzer's file/flag/env configuration surface
type PikelspConfig struct {
	ProjectRoot string `mapstructure:"projectRoot" yaml:"projectRoot"`
	ConfigFile  string `mapstructure:"configFile" yaml:"configFile"`
	// System include roots searched for #include <...>
	IncludePaths []string `mapstructure:"includePaths" yaml:"includePaths"`
	// Pike module roots searched for dotted module names
	ModulePaths []string `mapstructure:"modulePaths" yaml:"modulePaths"`
	// Runtime modules treated as pre-instantiated singletons
	BootstrapModules []string `mapstructure:"bootstrapModules" yaml:"bootstrapModules"`
	// Module prefixes swept when resolving a bare inherit name
	QualificationPrefixes []string    `mapstructure:"qualificationPrefixes" yaml:"qualificationPrefixes"`
	Cache                 CacheConfig `mapstructure:"cache" yaml:"cache"`
	Debug                 bool        `mapstructure:"debug" yaml:"debug"`
	Quiet                 bool        `mapstructure:"quiet" yaml:"quiet"`
}

// Load reads the layered viper state into a config value
func Load() (*PikelspConfig, error) {
	cfg := &PikelspConfig{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = DetectProjectRoot()
	}
	return cfg, nil
}

// AnalyzerConfig converts the file/flag configuration into the
// analyzer's startup shape
func (c *PikelspConfig) AnalyzerConfig() analyzer.Config {
	return analyzer.Config{
		ProjectRoot:           c.ProjectRoot,
		IncludePaths:          c.IncludePaths,
		ModulePaths:           c.ModulePaths,
		BootstrapModules:      c.BootstrapModules,
		QualificationPrefixes: c.QualificationPrefixes,
		ProgramCacheSize:      c.Cache.Programs,
		StdlibCacheSize:       c.Cache.Stdlib,
		ImportCacheSize:       c.Cache.Imports,
		CompilationCacheSize:  c.Cache.Compilation,
	}
}

// DetectProjectRoot ascends from the working directory looking for a
// project marker, falling back to the working directory itself. With a
// multi-root workspace the bridge passes projectRoot explicitly.
func DetectProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	dir := cwd
	for {
		for _, marker := range projectFiles {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd
		}
		dir = parent
	}
}

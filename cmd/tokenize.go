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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bennypowers.dev/pikelsp/analyzer"
	"bennypowers.dev/pikelsp/cmd/config"
)

// tokenizeCmd lexes one file and prints the token stream, for debugging
// extraction and rewriting behavior
var tokenizeCmd = &cobra.Command{
	Use:   "tokenize FILE",
	Short: "Print the token stream of a Pike source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		a := analyzer.New(nil, cfg.AnalyzerConfig())
		resp := a.HandleRequest(analyzer.Request{
			Op: "tokenize",
			Params: map[string]any{
				"code":     string(content),
				"filename": args[0],
			},
		})
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp.Result)
	},
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}

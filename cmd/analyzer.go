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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"bennypowers.dev/pikelsp/analyzer"
	"bennypowers.dev/pikelsp/cmd/config"
	"bennypowers.dev/pikelsp/internal/logging"
)

// analyzerCmd runs the request loop the language-server bridge talks to
var analyzerCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Run the analysis request loop on stdio",
	Long: `Reads newline-delimited JSON requests on stdin and writes one JSON
response per request on stdout. This is the process the editor-facing
bridge spawns; it owns all caches and serves one request at a time.

Request shape:  {"id": "...", "op": "introspect", "params": {...}}
Response shape: {"id": "...", "result": {...}} or {"id": "...", "error": {"code": -32000, "message": "..."}}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol; all logging goes to stderr
		pterm.SetDefaultOutput(os.Stderr)

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		a := analyzer.New(nil, cfg.AnalyzerConfig())
		logging.Info("analyzer ready, project root %s", cfg.ProjectRoot)
		return serve(a, os.Stdin, os.Stdout)
	},
}

// serve pumps the newline-delimited request loop. Malformed lines get
// an error response with an empty id rather than killing the loop.
func serve(a *analyzer.Analyzer, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req analyzer.Request
		if err := json.Unmarshal(line, &req); err != nil {
			if encodeErr := encoder.Encode(analyzer.Response{
				Error: &analyzer.Error{
					Code:    analyzer.InternalErrorCode,
					Message: fmt.Sprintf("malformed request: %v", err),
				},
			}); encodeErr != nil {
				return encodeErr
			}
			continue
		}
		if err := encoder.Encode(a.HandleRequest(req)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(analyzerCmd)
}

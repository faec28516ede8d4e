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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/pikelsp/analyzer"
	"bennypowers.dev/pikelsp/internal/platform"
)

func TestServe_RequestResponse(t *testing.T) {
	a := analyzer.New(platform.NewMapFS(nil), analyzer.Config{})
	in := strings.NewReader(
		`{"id":"1","op":"tokenize","params":{"code":"int x;"}}` + "\n" +
			`{"id":"2","op":"no_such_op"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, serve(a, in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first analyzer.Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "1", first.ID)
	assert.Nil(t, first.Error)
	assert.NotNil(t, first.Result)

	var second analyzer.Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "2", second.ID)
	require.NotNil(t, second.Error)
	assert.Equal(t, analyzer.InternalErrorCode, second.Error.Code)
}

func TestServe_MalformedLine(t *testing.T) {
	a := analyzer.New(platform.NewMapFS(nil), analyzer.Config{})
	in := strings.NewReader("this is not json\n" +
		`{"id":"after","op":"tokenize","params":{"code":";"}}` + "\n")
	var out bytes.Buffer

	require.NoError(t, serve(a, in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var errResp analyzer.Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &errResp))
	require.NotNil(t, errResp.Error)
	assert.Contains(t, errResp.Error.Message, "malformed request")

	var after analyzer.Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &after))
	assert.Equal(t, "after", after.ID, "loop survives malformed input")
}

func TestServe_BlankLinesIgnored(t *testing.T) {
	a := analyzer.New(platform.NewMapFS(nil), analyzer.Config{})
	in := strings.NewReader("\n\n" + `{"id":"x","op":"cache_stats"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, serve(a, in, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 1)
}

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
package resolver

import "sort"

type color int

const (
	white color = iota
	gray
	black
)

// CheckCircular runs a three-colour depth-first search over the graph
// and returns the first cycle found: the path slice from the revisited
// node to the current node, closed with the revisited node. Roots are
// visited in sorted order so results are deterministic.
func CheckCircular(graph map[string][]string) (bool, []string) {
	colors := make(map[string]color, len(graph))
	var stack []string

	roots := make([]string, 0, len(graph))
	for node := range graph {
		roots = append(roots, node)
	}
	sort.Strings(roots)

	var visit func(node string) []string
	visit = func(node string) []string {
		colors[node] = gray
		stack = append(stack, node)
		for _, neighbor := range graph[node] {
			switch colors[neighbor] {
			case gray:
				// cycle: slice the stack from the neighbor forward and
				// close the loop
				for i, n := range stack {
					if n == neighbor {
						cycle := make([]string, 0, len(stack)-i+1)
						cycle = append(cycle, stack[i:]...)
						return append(cycle, neighbor)
					}
				}
			case white:
				if cycle := visit(neighbor); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[node] = black
		return nil
	}

	for _, root := range roots {
		if colors[root] == white {
			if cycle := visit(root); cycle != nil {
				return true, cycle
			}
		}
	}
	return false, nil
}

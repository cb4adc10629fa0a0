// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import "strings"

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 3000
	DefaultChunkOverlap = 200
)

// SplitText splits text into overlapping windows of at most size
// characters, each window starting overlap characters before the end of
// the previous one. Whitespace-only windows are dropped. Invalid
// parameters fall back to the defaults.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 10
		}
	}

	// Window offsets are in runes so a boundary never lands inside a
	// multi-byte character.
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var windows []string
	step := size - overlap

	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		window := strings.TrimSpace(string(runes[start:end]))
		if len(window) > 0 {
			windows = append(windows, window)
		}

		if end == len(runes) {
			break
		}
	}

	return windows
}

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


package chunking

import (
	"fmt"

	"github.com/poiesic/corpusit/tokenizer"
)

// Panel is one overlapping token window of a document, sized to fit a
// model's context budget. Start and End are token offsets, End exclusive.
type Panel struct {
	Text  string
	Start int
	End   int
}

// Tokens returns the panel's token span length.
func (p Panel) Tokens() int {
	return p.End - p.Start
}

// BuildPanels slices a token sequence into overlapping panels of at most
// panelTokens tokens, each consecutive pair sharing overlapTokens tokens.
// The stride between panel starts is panelTokens-overlapTokens, clamped
// to 1 so progress is always made even when overlap >= size. The final
// panel always reaches the end of the sequence.
func BuildPanels(codec tokenizer.Codec, tokens []int, panelTokens, overlapTokens int) ([]Panel, error) {
	if panelTokens <= 0 {
		return nil, fmt.Errorf("%w: panel size %d", ErrInvalidPanelConfig, panelTokens)
	}
	if overlapTokens < 0 {
		return nil, fmt.Errorf("%w: overlap %d", ErrInvalidPanelConfig, overlapTokens)
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	stride := panelTokens - overlapTokens
	if stride < 1 {
		stride = 1
	}

	var panels []Panel
	for start := 0; ; start += stride {
		end := start + panelTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		panels = append(panels, Panel{
			Text:  codec.Decode(tokens[start:end]),
			Start: start,
			End:   end,
		})
		if end == len(tokens) {
			break
		}
	}
	return panels, nil
}

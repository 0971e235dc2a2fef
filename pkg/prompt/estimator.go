// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prompt builds a sectioned, token-budgeted prompt from a system
// instructions section, context notes, recalled memories, the tool
// catalogue, chat history, and the current user query.
package prompt

import (
	"github.com/pkoukk/tiktoken-go"
)

// Estimator maps text to an estimated token count. Pluggable so the
// assembler isn't tied to one model family's tokenizer.
type Estimator interface {
	EstimateTokens(text string) int
}

// CharDiv4Estimator is the default estimator: ceil(len(text)/4).
type CharDiv4Estimator struct{}

// EstimateTokens implements Estimator.
func (CharDiv4Estimator) EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// TiktokenEstimator estimates tokens using an actual BPE tokenizer, for
// deployments that want the more accurate count over CharDiv4Estimator.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the encoding for modelName (e.g. "gpt-4").
// Falls back to the cl100k_base encoding if the model is unrecognized.
func NewTiktokenEstimator(modelName string) (*TiktokenEstimator, error) {
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &TiktokenEstimator{enc: enc}, nil
}

// EstimateTokens implements Estimator.
func (t *TiktokenEstimator) EstimateTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

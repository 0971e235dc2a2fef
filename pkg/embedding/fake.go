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

package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// Fake is a deterministic, dependency-free Provider for tests and local
// development without AWS credentials configured. It hashes shingles of the
// input text into a fixed-dimension vector so that similar strings produce
// similar (not equal) vectors — enough to exercise recall ordering without
// a real embedding model.
type Fake struct {
	dim int
}

var _ Provider = (*Fake)(nil)

// NewFake creates a fake provider emitting vectors of the given dimension.
func NewFake(dim int) *Fake {
	if dim <= 0 {
		dim = 32
	}
	return &Fake{dim: dim}
}

func (f *Fake) Name() string   { return "fake" }
func (f *Fake) Dimension() int { return f.dim }

func (f *Fake) Embed(_ context.Context, text string) ([]float32, error) {
	return f.embed(text), nil
}

func (f *Fake) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.embed(t)
	}
	return out, nil
}

func (f *Fake) embed(text string) []float32 {
	vec := make([]float32, f.dim)
	if len(text) == 0 {
		return vec
	}
	const shingle = 3
	for i := 0; i < len(text); i++ {
		end := i + shingle
		if end > len(text) {
			end = len(text)
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(text[i:end]))
		idx := int(h.Sum32()) % f.dim
		if idx < 0 {
			idx += f.dim
		}
		vec[idx]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

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

// Package embedding defines the contract for turning text into fixed
// dimension vectors. The embedding model itself is an external
// collaborator; this package only fixes the shape callers rely on.
package embedding

import "context"

// Provider produces embedding vectors for text. Callers never depend on the
// dimension D; it is a property of the configured provider/model.
type Provider interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one round trip,
	// preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Name identifies the backing provider/model for logging and the
	// /status component report.
	Name() string

	// Dimension returns the fixed vector length this provider emits.
	Dimension() int
}

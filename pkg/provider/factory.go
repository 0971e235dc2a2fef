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

package provider

import (
	"context"
	"fmt"

	"github.com/teradata-labs/loom-assistant/pkg/types"
)

// Settings is the subset of server configuration the factory needs to build
// the active, fast, and utility providers named by configuration.
type Settings struct {
	ActiveProvider   string
	ProviderEndpoint string
	APIKey           string
	ModelName        string
	FastModel        string
	UtilityModel     string

	BedrockRegion string
}

// New builds the types.LLMProvider named by provider, using model as its
// model id override (empty keeps the provider's default).
func New(ctx context.Context, provider, model string, s Settings) (types.LLMProvider, error) {
	switch provider {
	case "", "anthropic":
		return NewAnthropic(AnthropicConfig{APIKey: s.APIKey, BaseURL: s.ProviderEndpoint, Model: model})
	case "bedrock":
		return NewBedrock(ctx, BedrockConfig{Region: s.BedrockRegion, ModelID: model})
	default:
		return nil, fmt.Errorf("provider: unknown active provider %q", provider)
	}
}

// NewFromSettings builds the server's primary (ModelName), fast
// (FastModel), and utility (UtilityModel) providers in one call, all from
// the same ActiveProvider. Fast falls back to the primary provider's model
// when unset; utility falls back to the fast model.
func NewFromSettings(ctx context.Context, s Settings) (active, fast, utility types.LLMProvider, err error) {
	active, err = New(ctx, s.ActiveProvider, s.ModelName, s)
	if err != nil {
		return nil, nil, nil, err
	}

	fastModel := s.FastModel
	if fastModel == "" {
		fastModel = s.ModelName
	}
	fast, err = New(ctx, s.ActiveProvider, fastModel, s)
	if err != nil {
		return nil, nil, nil, err
	}

	utilityModel := s.UtilityModel
	if utilityModel == "" {
		utilityModel = fastModel
	}
	utility, err = New(ctx, s.ActiveProvider, utilityModel, s)
	if err != nil {
		return nil, nil, nil, err
	}

	return active, fast, utility, nil
}

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

package chatengine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy governs retries of the pre-yield phase of a provider call: the
// round trip up to but not including the first streamed byte. Once a
// provider has yielded content, a failure is terminal — retrying after
// partial output would duplicate or corrupt what the user already saw.
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries three times with exponential backoff starting
// at 200ms, capped at 5s between attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTries:        3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// retryPreYield runs fn, retrying on error per the policy. fn must only be
// called before any content has been streamed to the caller.
func retryPreYield(ctx context.Context, policy RetryPolicy, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	}, backoff.WithBackOff(b), backoff.WithMaxTries(policy.MaxTries))
	return err
}

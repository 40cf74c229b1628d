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


package rebuild

import (
	"context"
	"sync"
)

// Coordinator serializes rebuild runs. Each Begin hands out a token and
// cancels the run holding the previous one, so the newest rebuild always
// wins and a superseded run sees its context canceled.
type Coordinator struct {
	mu     sync.Mutex
	token  uint64
	cancel context.CancelFunc
}

// Begin registers a new run. The returned context is canceled when a
// later run begins; the cleanup func must be deferred by the caller.
func (c *Coordinator) Begin(ctx context.Context) (context.Context, context.CancelFunc, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.token++
	return ctx, cancel, c.token
}

// Superseded reports whether a newer run has begun since token was issued.
func (c *Coordinator) Superseded(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return token != c.token
}

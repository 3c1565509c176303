// Copyright 2022 Sogang University
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

package main

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9rum/btree/btree"
)

func TestRun(t *testing.T) {
	for name, cfg := range map[string]config{
		"random":     {n: 2000, max: 4, seed: 1, workload: "random", erase: 0.2},
		"ascending":  {n: 2000, seed: 2, workload: "ascending", merge: 500},
		"descending": {n: 2000, max: 3, seed: 3, workload: "descending", arena: 16},
		"packed":     {n: 500, max: 5, seed: 4, workload: "random", workers: 4, batch: 16},
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, run(cfg))
		})
	}
}

func TestRunFailures(t *testing.T) {
	err := run(config{n: 10, workload: "sideways"})
	assert.Error(t, err)

	err = run(config{n: 10000, max: 3, seed: 1, workload: "random", limit: 4096})
	require.Error(t, err)
	assert.True(t, errors.Is(err, btree.ErrResourceExhausted))

	err = run(config{n: 10, max: 3, seed: 1, workload: "random", workers: 4, batch: 2})
	assert.Error(t, err)
}

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

package btree

import "github.com/cockroachdb/errors"

var (
	// ErrPreconditionViolated is returned (or raised, for dereferences) when
	// an operation is applied to a cursor or tree state it is not defined for,
	// such as erasing at End or stepping past the last element.
	ErrPreconditionViolated = errors.New("btree: precondition violated")

	// ErrResourceExhausted is returned when the allocator refuses to supply a
	// node.  The tree is left exactly as it was before the failed call.
	ErrResourceExhausted = errors.New("btree: resource exhausted")
)

// precondition panics with an error wrapping ErrPreconditionViolated.
func precondition(format string, args ...interface{}) {
	panic(errors.Wrapf(ErrPreconditionViolated, format, args...))
}

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

package conversation

import "github.com/poiesic/docchat/core"

// Monitor provides hooks to observe a request as it moves through the
// pipeline. Implement it to trace intermediate results.
type Monitor interface {
	Start(turns []core.Message)
	AfterCondense(standalone string)
	AfterRetrieval(sources []core.SourceDocument)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ []core.Message)                 {}
func (n *noopMonitor) AfterCondense(_ string)                 {}
func (n *noopMonitor) AfterRetrieval(_ []core.SourceDocument) {}

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


package vectorindex

import (
	"fmt"

	"github.com/poiesic/askit/vectorindex/local"
	"github.com/poiesic/askit/vectorindex/qdrant"
)

// Open constructs the vector index backend named by cfg.Backend.
func Open(cfg Config) (Index, error) {
	switch cfg.Backend {
	case BackendLocal:
		return local.OpenIndex(cfg.Path)
	case BackendQdrant:
		return qdrant.OpenIndex(cfg.Host, cfg.Port, cfg.VectorDim)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

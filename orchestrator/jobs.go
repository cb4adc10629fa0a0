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


package orchestrator

import (
	"sync"
	"time"

	"github.com/poiesic/askit/core"
)

// jobRegistry tracks ingestion jobs in process memory. Jobs are not
// persisted; chunk IDs are content-derived, so re-running a job after a
// restart converges on the same index state.
type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*core.IngestionJob
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*core.IngestionJob)}
}

// register adds a new job in the accepted state.
func (r *jobRegistry) register(id, fileRef, requesterRef string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = &core.IngestionJob{
		ID:           id,
		FileRef:      fileRef,
		RequesterRef: requesterRef,
		Status:       core.JobAccepted,
		AcceptedAt:   time.Now().UTC(),
	}
}

// setStatus moves a job into a non-terminal status.
func (r *jobRegistry) setStatus(id string, status core.JobStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = status
	}
}

// succeed marks a job terminal with its chunk count.
func (r *jobRegistry) succeed(id string, chunks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = core.JobSucceeded
		job.Chunks = chunks
		job.FinishedAt = time.Now().UTC()
	}
}

// fail marks a job terminal with its error detail.
func (r *jobRegistry) fail(id string, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Status = core.JobFailed
		job.ErrorDetail = detail
		job.FinishedAt = time.Now().UTC()
	}
}

// remove deletes a job, used when pool submission fails after registration.
func (r *jobRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

// get returns a copy of the job, or false if unknown.
func (r *jobRegistry) get(id string) (core.IngestionJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return core.IngestionJob{}, false
	}
	return *job, true
}

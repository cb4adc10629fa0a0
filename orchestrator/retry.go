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
	"context"
	"log/slog"
	"time"
)

// RetryWithBackoff runs operation until it succeeds, maxAttempts is
// exhausted, or ctx is cancelled. The delay starts at baseDelay and
// doubles after every failed attempt. Ingestion uses it to ride out
// transient vector index failures while committing chunks.
//
// Returns the error from the last attempt when all attempts fail.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	delay := baseDelay
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("commit succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == maxAttempts {
			return lastErr
		}

		slog.Debug("commit failed, backing off",
			"attempt", attempt, "maxAttempts", maxAttempts, "delay", delay, "error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

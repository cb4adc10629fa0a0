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


// Package notify delivers out-of-band completion messages for background
// ingestion jobs.
package notify

import "context"

// Notifier sends a message to the recipient identified by ref.
// The meaning of ref is implementation specific (a Telegram chat ID for
// the Telegram notifier). Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, ref, message string) error
}

// Noop discards all notifications. Used when no notifier is configured.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(ctx context.Context, ref, message string) error {
	return nil
}

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


package core

import "fmt"

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}

// ValidateTurn validates a Turn according to domain rules.
//
// Validation rules:
//   - SessionID must not be empty
//   - Content must not be empty
//   - Role must be valid (user or assistant)
//
// NOT validated:
//   - Timestamp (assigned by the history store)
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrValidation)
	}
	if turn.SessionID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptySessionID)
	}
	if turn.Content == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyContent)
	}
	if err := ValidateRole(turn.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// ValidateQuery validates the inputs of a query request.
func ValidateQuery(sessionID, query string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptySessionID)
	}
	if query == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyQuery)
	}
	return nil
}

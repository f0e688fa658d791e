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

import (
	"fmt"
	"strings"
)

// ValidateConversation validates a chat turn sequence.
//
// Validation rules:
//   - At least one message
//   - Every role is user or assistant
//   - The last message is a non-blank user question
//
// NOT validated:
//   - Alternation of roles in the history prefix
//   - Content of history messages (empty turns are tolerated)
func ValidateConversation(turns []Message) error {
	if len(turns) == 0 {
		return ErrEmptyConversation
	}

	for i, msg := range turns {
		if err := ValidateRole(msg.Role); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}

	last := turns[len(turns)-1]
	if last.Role != RoleUser {
		return fmt.Errorf("%w: got %q", ErrInvalidConversation, last.Role)
	}
	if strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConversation, ErrEmptyContent)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return nil
}

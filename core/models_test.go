package core

import (
	"testing"
)

func TestChunkIDDeterministic(t *testing.T) {
	id1 := ChunkID("notes.pdf", 3)
	id2 := ChunkID("notes.pdf", 3)

	if id1 != id2 {
		t.Errorf("ChunkID() produced different IDs for same source and index: %d vs %d", id1, id2)
	}
}

func TestChunkIDDistinct(t *testing.T) {
	tests := []struct {
		name             string
		sourceA, sourceB string
		indexA, indexB   int
	}{
		{name: "different index", sourceA: "notes.pdf", sourceB: "notes.pdf", indexA: 0, indexB: 1},
		{name: "different source", sourceA: "notes.pdf", sourceB: "slides.pdf", indexA: 0, indexB: 0},
		{name: "index not confused with source suffix", sourceA: "doc#1", sourceB: "doc", indexA: 2, indexB: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ChunkID(tt.sourceA, tt.indexA) == ChunkID(tt.sourceB, tt.indexB) {
				t.Errorf("ChunkID() collided for (%q,%d) and (%q,%d)", tt.sourceA, tt.indexA, tt.sourceB, tt.indexB)
			}
		})
	}
}

func TestRoleRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleAssistant} {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q) returned error: %v", role.String(), err)
		}
		if parsed != role {
			t.Errorf("ParseRole(%q) = %v, want %v", role.String(), parsed, role)
		}
	}

	if _, err := ParseRole("system"); err == nil {
		t.Error("ParseRole(\"system\") expected error, got nil")
	}
}

func TestJobStatusTerminal(t *testing.T) {
	terminal := map[JobStatus]bool{
		JobAccepted:    false,
		JobDownloading: false,
		JobProcessing:  false,
		JobCommitting:  false,
		JobSucceeded:   true,
		JobFailed:      true,
	}

	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%v.Terminal() = %v, want %v", status, got, want)
		}
	}
}

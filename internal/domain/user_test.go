package domain

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{name: "valid", username: "alice", wantErr: nil},
		{name: "max length", username: strings.Repeat("a", MaxUsernameLen), wantErr: nil},
		{name: "empty", username: "", wantErr: ErrUsernameEmpty},
		{name: "whitespace only", username: "   \t", wantErr: ErrUsernameEmpty},
		{name: "too long", username: strings.Repeat("a", MaxUsernameLen+1), wantErr: ErrUsernameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateUsername(tt.username); err != tt.wantErr {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

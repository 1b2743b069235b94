package usecase

import (
	"context"
	"fmt"
	"testing"
)

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: fmt.Errorf("%w: season must be positive", ErrInvalidInput), want: true},
		{err: fmt.Errorf("fetch season 2019: %w", ErrUnauthorized), want: true},
		{err: fmt.Errorf("%w: league=ESPN/77", ErrNotFound), want: true},
		{err: fmt.Errorf("%w: espn circuit open", ErrDependencyUnavailable), want: false},
		{err: context.DeadlineExceeded, want: false},
		{err: nil, want: false},
	}
	for _, tt := range tests {
		if got := IsPermanent(tt.err); got != tt.want {
			t.Fatalf("IsPermanent(%v)=%v want %v", tt.err, got, tt.want)
		}
	}
}

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestIsStreamError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{errors.New("hrana: stream not found"), true},
	}
	for _, tt := range tests {
		if got := IsStreamError(tt.err); got != tt.want {
			t.Errorf("IsStreamError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWithRetry_RetriesStreamErrors(t *testing.T) {
	calls := 0
	got, err := WithRetry(context.Background(), 3, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("stream not found")
		}
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Fatalf("WithRetry = %d, %v", got, err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithRetry_StopsOnOtherErrors(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), 3, func() (int, error) {
		calls++
		return 0, errors.New("syntax error")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithRetry_GivesUp(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), 2, func() (struct{}, error) {
		calls++
		return struct{}{}, errors.New("stream not found")
	})
	if !IsStreamError(err) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestNew_LocalFile(t *testing.T) {
	url := "file:" + filepath.Join(t.TempDir(), "abtest.db")
	c, err := New(context.Background(), url, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(context.Background(), "", "token"); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

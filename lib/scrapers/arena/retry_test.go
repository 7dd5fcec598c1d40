package arena

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExecutorRetriesTransient(t *testing.T) {
	exec := Executor{MaxRetries: 3, BaseDelay: time.Millisecond}

	calls := 0
	retries, err := exec.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls <= 3 {
			return &TransientError{Status: 503}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, retries)
	require.Equal(t, 4, calls)
}

func TestExecutorGivesUpAfterMaxRetries(t *testing.T) {
	exec := Executor{MaxRetries: 2, BaseDelay: time.Millisecond}

	calls := 0
	retries, err := exec.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &TransientError{Status: 500}
	})
	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	require.Equal(t, 2, retries)
	require.Equal(t, 3, calls)
}

func TestExecutorNeverRetriesAuthErrors(t *testing.T) {
	exec := Executor{MaxRetries: 5, BaseDelay: time.Millisecond}

	calls := 0
	retries, err := exec.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &AuthError{Status: 401, Reason: "expired"}
	})
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 0, retries)
	require.Equal(t, 1, calls)
}

func TestExecutorNeverRetriesParseErrors(t *testing.T) {
	exec := Executor{MaxRetries: 5, BaseDelay: time.Millisecond}

	calls := 0
	_, err := exec.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &ParseError{Err: context.Canceled}
	})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 1, calls)
}

func TestExecutorHonorsCancellation(t *testing.T) {
	exec := Executor{MaxRetries: 10, BaseDelay: time.Second * 10}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond * 10)
		cancel()
	}()

	_, err := exec.Do(ctx, func(ctx context.Context) error {
		return &TransientError{Status: 503}
	})
	require.ErrorIs(t, err, context.Canceled)
}

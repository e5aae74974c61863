package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	resp     Response
	err      error
	callCount int
}

func (f *fakeClient) Complete(ctx context.Context, req Request) (Response, error) {
	f.callCount++
	return f.resp, f.err
}

func TestFallbackClientUsesPrimaryOnSuccess(t *testing.T) {
	primary := &fakeClient{resp: Response{Text: "primary answer"}}
	fallback := &fakeClient{resp: Response{Text: "fallback answer"}}

	c := NewFallbackClient(primary, fallback, nil)
	resp, err := c.Complete(context.Background(), Request{Model: "m"})

	require.NoError(t, err)
	assert.Equal(t, "primary answer", resp.Text)
	assert.Equal(t, 1, primary.callCount)
	assert.Equal(t, 0, fallback.callCount)
}

func TestFallbackClientFallsBackOnPrimaryError(t *testing.T) {
	primary := &fakeClient{err: errors.New("primary unreachable")}
	fallback := &fakeClient{resp: Response{Text: "fallback answer"}}

	c := NewFallbackClient(primary, fallback, nil)
	resp, err := c.Complete(context.Background(), Request{Model: "m"})

	require.NoError(t, err)
	assert.Equal(t, "fallback answer", resp.Text)
	assert.Equal(t, 1, primary.callCount)
	assert.Equal(t, 1, fallback.callCount)
}

func TestFallbackClientReturnsFallbackErrorWhenBothFail(t *testing.T) {
	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("fallback down")
	primary := &fakeClient{err: primaryErr}
	fallback := &fakeClient{err: fallbackErr}

	c := NewFallbackClient(primary, fallback, nil)
	_, err := c.Complete(context.Background(), Request{Model: "m"})

	require.Error(t, err)
	assert.Equal(t, fallbackErr, err)
}

func TestFallbackClientReturnsPrimaryErrorWhenNoFallbackConfigured(t *testing.T) {
	primaryErr := errors.New("primary down")
	primary := &fakeClient{err: primaryErr}

	c := NewFallbackClient(primary, nil, nil)
	_, err := c.Complete(context.Background(), Request{Model: "m"})

	require.Error(t, err)
	assert.Equal(t, primaryErr, err)
}

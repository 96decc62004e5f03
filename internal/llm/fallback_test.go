package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
}

func (s *stubClient) Complete(ctx context.Context, req Request) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackClientPrimarySucceeds(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "primary"}}
	fallback := &stubClient{resp: Response{Text: "fallback"}}

	client := NewFallbackClient(primary, fallback, nil)
	resp, err := client.Complete(context.Background(), Request{})

	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackClientFallsBack(t *testing.T) {
	primary := &stubClient{err: errors.New("quota exceeded")}
	fallback := &stubClient{resp: Response{Text: "fallback"}}

	client := NewFallbackClient(primary, fallback, nil)
	resp, err := client.Complete(context.Background(), Request{})

	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackClientNoFallbackReturnsPrimaryError(t *testing.T) {
	primaryErr := errors.New("quota exceeded")
	primary := &stubClient{err: primaryErr}

	client := NewFallbackClient(primary, nil, nil)
	_, err := client.Complete(context.Background(), Request{})

	assert.ErrorIs(t, err, primaryErr)
}

func TestFallbackClientBothFailReturnsFallbackError(t *testing.T) {
	primary := &stubClient{err: errors.New("primary down")}
	fallbackErr := errors.New("fallback down")
	fallback := &stubClient{err: fallbackErr}

	client := NewFallbackClient(primary, fallback, nil)
	_, err := client.Complete(context.Background(), Request{})

	assert.ErrorIs(t, err, fallbackErr)
}

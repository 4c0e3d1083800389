package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/soundboard/soundboard/spotify"
)

// Operation is a resource read parameterised by the credential pair.
type Operation[T any] func(ctx context.Context, tokenType, accessToken string) spotify.Result[T]

// WithRefreshRetry runs op with the current credentials and applies the
// bounded recovery policy: when the result reports an expired access token,
// refresh exactly once, then retry op exactly once. A second consecutive
// expiry, or a failed refresh, is fatal for this call and is not retried
// again. Results with any other classification pass through untouched.
func WithRefreshRetry[T any](ctx context.Context, c *Controller, op Operation[T]) (spotify.Result[T], error) {
	var zero spotify.Result[T]

	tokenType, accessToken, err := c.Token(ctx)
	if err != nil {
		return zero, err
	}

	result := op(ctx, tokenType, accessToken)
	if result.Kind != spotify.KindExpiredAccessToken {
		return result, nil
	}

	if err := c.Refresh(ctx); err != nil {
		return result, errors.Wrap(err, "[WithRefreshRetry] refresh")
	}

	tokenType, accessToken, err = c.Token(ctx)
	if err != nil {
		return zero, err
	}

	result = op(ctx, tokenType, accessToken)
	if result.Kind == spotify.KindExpiredAccessToken {
		return result, ErrTokenStillExpired
	}
	return result, nil
}

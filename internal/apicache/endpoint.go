package apicache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"agency/internal/errors"
)

// Query is a typed read endpoint. Every read it issues is provided under Provides.
type Query[A, R any] struct {
	Name     string
	Provides []Tag
	// ArgKey renders the argument part of the cache key; defaults to %v.
	ArgKey func(A) string
	// Scope names the credentials a read is made under; reads of different
	// scopes never share an entry. Nil means every caller shares.
	Scope func(ctx context.Context) string
	Fetch func(ctx context.Context, arg A) (json.RawMessage, error)
}

// Key returns the cache key of arg as read by the caller of ctx.
func (q Query[A, R]) Key(ctx context.Context, arg A) Key {
	key := Key{Endpoint: q.Name}
	if q.ArgKey != nil {
		key.Arg = q.ArgKey(arg)
	} else {
		key.Arg = fmt.Sprintf("%v", arg)
	}
	if q.Scope != nil {
		key.Scope = q.Scope(ctx)
	}

	return key
}

// Subscribe subscribes to the read of arg.
func (q Query[A, R]) Subscribe(ctx context.Context, c *Cache, arg A) *QuerySubscription[R] {
	sub := c.Subscribe(ctx, q.Key(ctx, arg), q.Provides, func(ctx context.Context) (json.RawMessage, error) {
		return q.Fetch(ctx, arg)
	})

	return &QuerySubscription[R]{Subscription: sub}
}

// Get subscribes, waits for a settled result and unsubscribes.
func (q Query[A, R]) Get(ctx context.Context, c *Cache, arg A) (R, error) {
	sub := q.Subscribe(ctx, c, arg)
	defer sub.Unsubscribe()

	res, err := sub.Wait(ctx)
	if err != nil {
		var zero R

		return zero, err
	}
	if res.IsError {
		return res.Data, res.Err
	}

	return res.Data, nil
}

// Result is a typed State.
type Result[R any] struct {
	Data       R
	Err        error
	IsLoading  bool
	IsFetching bool
	IsSuccess  bool
	IsError    bool
	IsStale    bool
}

// QuerySubscription decodes the entry payload into R.
type QuerySubscription[R any] struct {
	*Subscription
}

// Wait blocks until the entry settles and decodes it. A payload that does not
// decode into R is reported as an error result.
func (s *QuerySubscription[R]) Wait(ctx context.Context) (Result[R], error) {
	st, err := s.Subscription.Wait(ctx)
	if err != nil {
		return Result[R]{}, err
	}

	return decodeState[R](st), nil
}

// Current decodes the entry without waiting.
func (s *QuerySubscription[R]) Current() Result[R] {
	return decodeState[R](s.State())
}

func decodeState[R any](st State) Result[R] {
	res := Result[R]{
		Err:        st.Err,
		IsLoading:  st.IsLoading,
		IsFetching: st.IsFetching,
		IsSuccess:  st.IsSuccess,
		IsError:    st.IsError,
		IsStale:    st.IsStale,
	}

	data, err := Decode[R](st.Data)
	if err != nil {
		res.Err = err
		res.IsError = true
		res.IsSuccess = false

		return res
	}
	res.Data = data

	return res
}

// Decode unmarshals payload into R. An empty or null payload is the zero R.
func Decode[R any](payload json.RawMessage) (R, error) {
	var out R
	if len(bytes.TrimSpace(payload)) == 0 || bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, errors.Wrapf(err, "decode %T", out)
	}

	return out, nil
}

// Mutation is a typed write endpoint that invalidates Invalidates on success.
type Mutation[A, R any] struct {
	Name        string
	Invalidates []Tag
	Do          func(ctx context.Context, arg A) (json.RawMessage, error)
}

// Run performs the write.
func (m Mutation[A, R]) Run(ctx context.Context, c *Cache, arg A) (R, error) {
	var zero R

	payload, err := c.Mutate(ctx, m.Invalidates, func(ctx context.Context) (json.RawMessage, error) {
		return m.Do(ctx, arg)
	})
	if err != nil {
		return zero, errors.Wrap(err, m.Name)
	}

	return Decode[R](payload)
}

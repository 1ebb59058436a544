package gtaw

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/jamesprial/go-twitter-api-wrapper/internal"
	"github.com/jamesprial/go-twitter-api-wrapper/pkg/types"
)

// Endpoint helpers are thin parameter marshaling over the execution engine:
// they build the request, state the authentication requirement, and decode
// the response into pkg/types shapes. Everything else (signing, sending,
// error classification, delivery style) is the engine's job.

// maxParallelTweetFetches bounds GetTweetsMultiple's fan-out.
const maxParallelTweetFetches = 8

// VerifyCredentials returns the authenticated user. It requires a
// user-context OAuth1 credential and is the usual smoke test after a
// completed handshake.
func (c *Client) VerifyCredentials(ctx context.Context) (*types.User, error) {
	exec := &internal.Exec{
		Method: http.MethodGet,
		Path:   "account/verify_credentials.json",
		Auth:   types.AuthOAuth1,
	}

	var user types.User
	if err := c.client.ExecuteJSON(ctx, exec, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetTweet retrieves a single tweet by ID, blocking until the outcome is
// available. The authentication requirement follows the currently configured
// credential, so the helper works in both user and app-only context.
func (c *Client) GetTweet(ctx context.Context, id string) (*types.Tweet, error) {
	exec, err := c.showTweetExec(id)
	if err != nil {
		return nil, err
	}

	var tweet types.Tweet
	if err := c.client.ExecuteJSON(ctx, exec, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// GetTweetAsync retrieves a single tweet by ID and delivers the outcome to
// cb exactly once, never inline with this call.
func (c *Client) GetTweetAsync(ctx context.Context, id string, cb func(*types.Tweet, error)) {
	exec, err := c.showTweetExec(id)
	if err != nil {
		// Delivery contract is uniform: even a local validation failure
		// arrives on a fresh goroutine.
		go cb(nil, err)
		return
	}

	c.client.ExecuteAsync(ctx, exec, func(resp *types.Response, err error) {
		if err != nil {
			cb(nil, err)
			return
		}
		var tweet types.Tweet
		if err := internal.DecodeJSON(resp, &tweet); err != nil {
			cb(nil, err)
			return
		}
		cb(&tweet, nil)
	})
}

// GetTweetFuture retrieves a single tweet by ID and returns a pending Future
// that settles with the raw Response. Decode the body yourself, or use
// GetTweet for a typed result.
func (c *Client) GetTweetFuture(ctx context.Context, id string) *types.Future {
	exec, err := c.showTweetExec(id)
	if err != nil {
		f, resolve := types.NewFuture()
		go resolve(nil, err)
		return f
	}
	return c.client.ExecuteFuture(ctx, exec)
}

// GetTweetsMultiple fetches several tweets in parallel and returns them in
// input order. The first failure cancels the remaining fetches and is
// returned.
func (c *Client) GetTweetsMultiple(ctx context.Context, ids []string) ([]*types.Tweet, error) {
	if len(ids) == 0 {
		return []*types.Tweet{}, nil
	}

	tweets := make([]*types.Tweet, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTweetFetches)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			tweet, err := c.GetTweet(gctx, id)
			if err != nil {
				return err
			}
			tweets[i] = tweet
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tweets, nil
}

// PostTweet posts a new status on behalf of the authenticated user. Requires
// a user-context OAuth1 credential.
func (c *Client) PostTweet(ctx context.Context, status string) (*types.Tweet, error) {
	exec := &internal.Exec{
		Method: http.MethodPost,
		Path:   "statuses/update.json",
		Form:   url.Values{"status": {status}},
		Auth:   types.AuthOAuth1,
	}

	var tweet types.Tweet
	if err := c.client.ExecuteJSON(ctx, exec, &tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// HomeTimeline returns statuses from the authenticated user's home timeline.
// Requires a user-context OAuth1 credential. A nil request uses the API's
// default paging.
func (c *Client) HomeTimeline(ctx context.Context, request *types.TimelineRequest) ([]*types.Tweet, error) {
	exec := &internal.Exec{
		Method: http.MethodGet,
		Path:   "statuses/home_timeline.json",
		Query:  timelineQuery(request),
		Auth:   types.AuthOAuth1,
	}

	var tweets []*types.Tweet
	if err := c.client.ExecuteJSON(ctx, exec, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

// Search runs a recent-tweet search. It works in app-only context, so it is
// usable with either credential mode; the requirement follows the currently
// configured credential.
func (c *Client) Search(ctx context.Context, query string, request *types.TimelineRequest) ([]*types.Tweet, error) {
	q := timelineQuery(request)
	q.Set("q", query)

	exec := &internal.Exec{
		Method: http.MethodGet,
		Path:   "search/tweets.json",
		Query:  q,
		Auth:   c.client.Credential().Mode(),
	}

	var result types.SearchResponse
	if err := c.client.ExecuteJSON(ctx, exec, &result); err != nil {
		return nil, err
	}
	return result.Statuses, nil
}

func (c *Client) showTweetExec(id string) (*internal.Exec, error) {
	if err := c.validator.ValidateTweetID(id); err != nil {
		return nil, err
	}
	return &internal.Exec{
		Method: http.MethodGet,
		Path:   "statuses/show.json",
		Query:  url.Values{"id": {id}},
		Auth:   c.client.Credential().Mode(),
	}, nil
}

func timelineQuery(request *types.TimelineRequest) url.Values {
	q := url.Values{}
	if request == nil {
		return q
	}
	if request.Count > 0 {
		q.Set("count", strconv.Itoa(request.Count))
	}
	if request.SinceID != "" {
		q.Set("since_id", request.SinceID)
	}
	if request.MaxID != "" {
		q.Set("max_id", request.MaxID)
	}
	return q
}

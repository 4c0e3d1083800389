package toptracks_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundboard/soundboard/session"
	"github.com/soundboard/soundboard/spotify"
	"github.com/soundboard/soundboard/spotify/apiclient"
	"github.com/soundboard/soundboard/store/storefakes"
	"github.com/soundboard/soundboard/toptracks"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeAuthClient struct {
	refreshResults []spotify.Result[spotify.TokenSet]
	refreshCalls   int
}

func (f *fakeAuthClient) BuildLoginRedirect() (string, error) {
	return "https://accounts.example.com/authorize", nil
}

func (f *fakeAuthClient) ExchangeCode(_ context.Context, _ string) spotify.Result[spotify.TokenSet] {
	return spotify.NewFailure[spotify.TokenSet](spotify.KindUncaught, "unexpected exchange", testNow)
}

func (f *fakeAuthClient) Refresh(_ context.Context, _ string) spotify.Result[spotify.TokenSet] {
	result := f.refreshResults[f.refreshCalls]
	f.refreshCalls++
	return result
}

// fakeTopItems serves a deterministic ranked catalog of catalogTotal tracks
// per time range, with track IDs prefixed by the range so resets are
// observable. expireNext makes the next call report an expired token first.
type fakeTopItems struct {
	catalogTotal int
	calls        []apiclient.TopItemsQuery
	expireNext   bool
}

func (f *fakeTopItems) GetTopItems(_ context.Context, _, _ string, _ spotify.ItemType, query apiclient.TopItemsQuery) spotify.Result[spotify.TopTracksPage] {
	if f.expireNext {
		f.expireNext = false
		return spotify.NewFailure[spotify.TopTracksPage](spotify.KindExpiredAccessToken, "Access token is expired.", testNow)
	}
	f.calls = append(f.calls, query)

	page := spotify.TopTracksPage{
		Limit:  query.Limit,
		Offset: query.Offset,
		Total:  f.catalogTotal,
	}
	for i := query.Offset; i < query.Offset+query.Limit && i < f.catalogTotal; i++ {
		page.Items = append(page.Items, spotify.Track{
			ID:   fmt.Sprintf("%s-%d", query.TimeRange, i),
			Name: fmt.Sprintf("Track %d", i),
		})
	}
	return spotify.NewSuccess(page, "acquired", testNow)
}

type fixture struct {
	auth *fakeAuthClient
	api  *fakeTopItems
	ctrl *toptracks.Controller
}

func newFixture(t *testing.T, catalogTotal int) *fixture {
	t.Helper()

	sessionStore := session.NewStore(storefakes.NewFakeStore())
	auth := &fakeAuthClient{}
	sessions, err := session.New(sessionStore, auth, session.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)

	tokens := spotify.TokenSet{AccessToken: "at-1", TokenType: "Bearer", ExpiresIn: 3600, RefreshToken: "rt-1"}
	require.NoError(t, sessionStore.SaveSession(session.NewStoredSession(tokens, testNow)))
	_, err = sessions.Resolve(context.Background(), session.Callback{})
	require.NoError(t, err)

	api := &fakeTopItems{catalogTotal: catalogTotal}
	ctrl, err := toptracks.New(sessions, api)
	require.NoError(t, err)

	return &fixture{auth: auth, api: api, ctrl: ctrl}
}

func trackIDs(tracks []spotify.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}
	return ids
}

func TestLoadInitialReplacesListing(t *testing.T) {
	f := newFixture(t, 42)

	require.NoError(t, f.ctrl.LoadInitial(context.Background(), ""))
	require.Equal(t, spotify.TimeRangeMedium, f.ctrl.TimeRange())
	require.Len(t, f.ctrl.Items(), 20)
	require.Equal(t, 0, f.ctrl.Offset())
	require.True(t, f.ctrl.HasMore())
	require.Equal(t, "medium_term-0", f.ctrl.Items()[0].ID)
}

func TestLoadMoreAppendsAndAdvances(t *testing.T) {
	f := newFixture(t, 42)
	require.NoError(t, f.ctrl.LoadInitial(context.Background(), ""))

	require.NoError(t, f.ctrl.LoadMore(context.Background()))
	items := f.ctrl.Items()
	require.Len(t, items, 40)
	require.Equal(t, 20, f.ctrl.Offset())
	require.True(t, f.ctrl.HasMore())

	// Accumulation keeps order: page two starts where page one ended.
	require.Equal(t, "medium_term-19", items[19].ID)
	require.Equal(t, "medium_term-20", items[20].ID)

	require.NoError(t, f.ctrl.LoadMore(context.Background()))
	require.Len(t, f.ctrl.Items(), 42)
	require.False(t, f.ctrl.HasMore())
}

func TestHasMoreStopsAtCatalogDepth(t *testing.T) {
	f := newFixture(t, 500)
	require.NoError(t, f.ctrl.LoadInitial(context.Background(), ""))

	for i := 0; i < 4; i++ {
		require.True(t, f.ctrl.HasMore())
		require.NoError(t, f.ctrl.LoadMore(context.Background()))
	}

	// 100 of 500 loaded: the ranking depth is exhausted even though the
	// listing total is not.
	require.Len(t, f.ctrl.Items(), 100)
	require.False(t, f.ctrl.HasMore())
}

func TestChangeTimeRangeResetsListing(t *testing.T) {
	f := newFixture(t, 42)
	require.NoError(t, f.ctrl.LoadInitial(context.Background(), ""))
	require.NoError(t, f.ctrl.LoadMore(context.Background()))
	require.Len(t, f.ctrl.Items(), 40)

	require.NoError(t, f.ctrl.ChangeTimeRange(context.Background(), spotify.TimeRangeShort))
	items := f.ctrl.Items()
	require.Len(t, items, 20)
	require.Equal(t, 0, f.ctrl.Offset())
	require.Equal(t, spotify.TimeRangeShort, f.ctrl.TimeRange())

	// Exactly the new range's first page, nothing carried over.
	require.Equal(t, "short_term-0", items[0].ID)
	require.NotContains(t, trackIDs(items), "medium_term-0")
}

func TestChangeTimeRangeSameRangeIsNoOp(t *testing.T) {
	f := newFixture(t, 42)
	require.NoError(t, f.ctrl.LoadInitial(context.Background(), ""))
	fetched := len(f.api.calls)

	require.NoError(t, f.ctrl.ChangeTimeRange(context.Background(), spotify.TimeRangeMedium))
	require.Equal(t, fetched, len(f.api.calls))
	require.Len(t, f.ctrl.Items(), 20)
}

func TestChangeTimeRangeRejectsUnknownRange(t *testing.T) {
	f := newFixture(t, 42)

	err := f.ctrl.ChangeTimeRange(context.Background(), "last_week")
	require.Error(t, err)
	require.Contains(t, err.Error(), "last_week")
}

func TestLoadMoreRetriesOnceThroughRefresh(t *testing.T) {
	f := newFixture(t, 42)
	require.NoError(t, f.ctrl.LoadInitial(context.Background(), ""))

	f.api.expireNext = true
	f.auth.refreshResults = []spotify.Result[spotify.TokenSet]{
		spotify.NewSuccess(spotify.TokenSet{AccessToken: "at-2", TokenType: "Bearer", ExpiresIn: 3600, RefreshToken: "rt-2"}, "Refresh access token acquired!", testNow),
	}

	require.NoError(t, f.ctrl.LoadMore(context.Background()))
	require.Equal(t, 1, f.auth.refreshCalls)
	require.Len(t, f.ctrl.Items(), 40)
}

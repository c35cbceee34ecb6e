package pollapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kamen/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, Opts{})
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com", Opts{})
	assert.Error(t, err)

	_, err = NewClient("://nope", Opts{})
	assert.Error(t, err)
}

func TestListPolls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"polls":[{"id":1,"question":"Камень мудрее?","endDate":"2025-11-15","totalVotes":290,
			"options":[{"id":1,"text":"Да","votes":156},{"id":2,"text":"Местно","votes":89},{"id":3,"text":"Обсудить","votes":45}]}]}`))
	})

	polls, err := c.ListPolls(context.Background())
	require.NoError(t, err)
	require.Len(t, polls, 1)
	p := polls[0]
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, "Камень мудрее?", p.Question)
	assert.Equal(t, "2025-11-15", p.EndDate)
	assert.Equal(t, 290, p.TotalVotes)
	require.Len(t, p.Options, 3)
	assert.Equal(t, domain.Option{ID: 2, Text: "Местно", Votes: 89}, p.Options[1])
}

func TestListPollsNonJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	})
	_, err := c.ListPolls(context.Background())
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestListPollsStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error":"Method not allowed"}`))
	})
	_, err := c.ListPolls(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusMethodNotAllowed, se.Code)
	assert.Equal(t, "Method not allowed", se.Message)
}

func TestListPollsBodyTooLarge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"polls":[],"pad":"` + strings.Repeat("x", maxBodySize) + `"}`))
	})
	_, err := c.ListPolls(context.Background())
	assert.ErrorContains(t, err, "too large")
}

func TestVote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req domain.VoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.VoteRequest{PollID: 1, OptionID: 2}, req)

		w.Write([]byte(`{"success":true,"options":[{"id":1,"text":"A","votes":10},{"id":2,"text":"B","votes":11}],"totalVotes":21}`))
	})

	res, err := c.Vote(context.Background(), domain.VoteRequest{PollID: 1, OptionID: 2})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 21, res.TotalVotes)
	assert.Equal(t, 11, res.Options[1].Votes)
}

func TestVoteWireFormat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{"poll_id": float64(3), "option_id": float64(9)}, raw)
		w.Write([]byte(`{"success":true,"options":[],"totalVotes":0}`))
	})
	_, err := c.Vote(context.Background(), domain.VoteRequest{PollID: 3, OptionID: 9})
	require.NoError(t, err)
}

func TestVoteRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	})
	res, err := c.Vote(context.Background(), domain.VoteRequest{PollID: 1, OptionID: 1})
	assert.ErrorIs(t, err, domain.ErrVoteRejected)
	require.NotNil(t, res)
	assert.False(t, res.Success)
}

func TestVoteBadRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"poll_id and option_id required"}`))
	})
	_, err := c.Vote(context.Background(), domain.VoteRequest{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "poll_id and option_id required", se.Message)
	assert.Contains(t, err.Error(), "400")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(srv.URL, Opts{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.ListPolls(context.Background())
	assert.Error(t, err)
}

func TestContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"polls":[]}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListPolls(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

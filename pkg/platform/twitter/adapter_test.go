package twitter

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/prospect/pkg/credentials"
	"github.com/entrhq/prospect/pkg/platform"
	"github.com/entrhq/prospect/pkg/platform/platformtest"
)

func testCreds() *credentials.Set {
	return credentials.FromMap(map[string]string{
		credentials.TwitterEmail:    "bot@example.com",
		credentials.TwitterPassword: "s3cret",
	})
}

func tweet(name, handle, text string) platform.Element {
	block := name
	if handle != "" {
		block = name + "\n" + handle
	}
	return &platformtest.Element{Values: map[string]string{
		userNameSelector:  block,
		tweetTextSelector: text,
	}}
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(&platformtest.Pager{}, credentials.FromMap(nil), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, platform.ErrAuthentication))
}

func TestExtractLeadsSplitsHandle(t *testing.T) {
	page := &platformtest.Page{
		Batches: [][]platform.Element{{
			tweet("Jane Doe", "@janedoe", "Looking for customer support tooling"),
			tweet("NoHandle", "", "plain"),
		}},
	}
	a, err := New(&platformtest.Pager{Page: page}, testCreds(), nil)
	require.NoError(t, err)
	a.SettleDelay = time.Millisecond

	out, err := a.ExtractLeads(context.Background(), platform.Query{Terms: "#smallbusiness"}, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "@janedoe", out[0].Identity)
	assert.Equal(t, "@janedoe", out[0].Attributes["handle"])
	assert.Equal(t, "#smallbusiness", out[0].Attributes["hashtag"])
	assert.Equal(t, "Looking for customer support tooling", out[0].Attributes["tweet_text"])

	assert.Equal(t, "NoHandle", out[1].Identity, "display name stands in for a missing handle")
}

func TestExtractLeadsTruncatesTweetText(t *testing.T) {
	long := strings.Repeat("x", 300)
	page := &platformtest.Page{
		Batches: [][]platform.Element{{tweet("A", "@a", long)}},
	}
	a, err := New(&platformtest.Pager{Page: page}, testCreds(), nil)
	require.NoError(t, err)
	a.SettleDelay = time.Millisecond

	out, err := a.ExtractLeads(context.Background(), platform.Query{Terms: "#x"}, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Attributes["tweet_text"], maxTweetPreview)
}

func TestExtractLeadsTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 300)
	page := &platformtest.Page{
		Batches: [][]platform.Element{{tweet("A", "@a", long)}},
	}
	a, err := New(&platformtest.Pager{Page: page}, testCreds(), nil)
	require.NoError(t, err)
	a.SettleDelay = time.Millisecond

	out, err := a.ExtractLeads(context.Background(), platform.Query{Terms: "#x"}, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)

	text := out[0].Attributes["tweet_text"]
	assert.True(t, utf8.ValidString(text), "truncation must not split a rune")
	assert.Equal(t, maxTweetPreview, utf8.RuneCountInString(text))
}

func TestExtractDoesNotAuthenticate(t *testing.T) {
	page := &platformtest.Page{Batches: [][]platform.Element{{tweet("A", "@a", "t")}}}
	a, err := New(&platformtest.Pager{Page: page}, testCreds(), nil)
	require.NoError(t, err)
	a.SettleDelay = time.Millisecond

	_, err = a.ExtractLeads(context.Background(), platform.Query{Terms: "#x"}, 10)
	require.NoError(t, err)
	assert.False(t, page.Did("fill"), "public search must not submit credentials")
}

func TestPublishAuthenticatesFirst(t *testing.T) {
	page := &platformtest.Page{}
	a, err := New(&platformtest.Pager{Page: page}, testCreds(), nil)
	require.NoError(t, err)

	result, pubErr := a.Publish(context.Background(), platform.PostRequest{
		Platform: platform.Twitter,
		Payload:  map[string]string{platform.FieldMessage: "hello world"},
	})
	require.NoError(t, pubErr)
	assert.True(t, result.Success)
	assert.True(t, page.Did("navigate"))
	assert.True(t, page.Did("click:"+sendSelector))
}

func TestPublishAuthFailureIsTerminal(t *testing.T) {
	page := &platformtest.Page{
		FailOn: map[string]error{"wait:" + composeSelector: errors.New("timeout")},
	}
	a, err := New(&platformtest.Pager{Page: page}, testCreds(), nil)
	require.NoError(t, err)

	result, pubErr := a.Publish(context.Background(), platform.PostRequest{
		Platform: platform.Twitter,
		Payload:  map[string]string{platform.FieldMessage: "hello"},
	})
	require.Error(t, pubErr)
	assert.True(t, errors.Is(pubErr, platform.ErrAuthentication))
	assert.False(t, result.Success)
	assert.False(t, page.Did("fill:"+textareaSelector), "no compose after failed login")
}

package meta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/prospect/pkg/credentials"
	"github.com/entrhq/prospect/pkg/platform"
	"github.com/entrhq/prospect/pkg/platform/platformtest"
)

func testCreds() *credentials.Set {
	return credentials.FromMap(map[string]string{credentials.MetaAccessToken: "tok"})
}

// graphStub serves canned Graph API responses and records form submissions.
type graphStub struct {
	mux      *http.ServeMux
	srv      *httptest.Server
	feedForm map[string]string
}

func newGraphStub(t *testing.T) *graphStub {
	t.Helper()
	s := &graphStub{mux: http.NewServeMux()}
	s.srv = httptest.NewServer(s.mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *graphStub) withAccounts(body string) *graphStub {
	s.mux.HandleFunc("/me/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
	return s
}

func TestFacebookPublish(t *testing.T) {
	stub := newGraphStub(t).withAccounts(`{"data":[{"id":"page1","access_token":"pagetok"}]}`)
	stub.mux.HandleFunc("/page1/feed", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		stub.feedForm = map[string]string{
			"message":      r.PostFormValue("message"),
			"access_token": r.PostFormValue("access_token"),
			"link":         r.PostFormValue("link"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"page1_99"}`))
	})

	a, err := NewFacebook(nil, testCreds(), stub.srv.URL, nil)
	require.NoError(t, err)

	result, err := a.Publish(context.Background(), platform.PostRequest{
		Platform: platform.Facebook,
		Payload:  map[string]string{platform.FieldMessage: "hello page"},
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "page1_99", result.RemoteID)
	assert.Equal(t, "hello page", stub.feedForm["message"])
	assert.Equal(t, "pagetok", stub.feedForm["access_token"], "feed post uses the page token")
}

func TestFacebookPublishNoPages(t *testing.T) {
	stub := newGraphStub(t).withAccounts(`{"data":[]}`)

	a, err := NewFacebook(nil, testCreds(), stub.srv.URL, nil)
	require.NoError(t, err)

	result, err := a.Publish(context.Background(), platform.PostRequest{Platform: platform.Facebook})
	require.Error(t, err)

	var stepErr *platform.PublishStepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "resolve page", stepErr.Step)
	assert.False(t, result.Success)
}

func TestFacebookPublishConnectivity(t *testing.T) {
	a, err := NewFacebook(nil, testCreds(), "http://127.0.0.1:1", nil)
	require.NoError(t, err)

	_, err = a.Publish(context.Background(), platform.PostRequest{Platform: platform.Facebook})
	assert.True(t, errors.Is(err, platform.ErrConnectivity))
}

func TestFacebookRequiresToken(t *testing.T) {
	_, err := NewFacebook(nil, credentials.FromMap(nil), "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, platform.ErrAuthentication))
}

func TestInstagramPublishTwoStep(t *testing.T) {
	stub := newGraphStub(t).withAccounts(`{"data":[{"id":"page1","instagram_business_account":{"id":"ig7"}}]}`)
	stub.mux.HandleFunc("/ig7/media", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"container5"}`))
	})
	stub.mux.HandleFunc("/ig7/media_publish", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "container5", r.PostFormValue("creation_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"media9"}`))
	})

	a, err := NewInstagram(testCreds(), stub.srv.URL, nil)
	require.NoError(t, err)

	result, err := a.Publish(context.Background(), platform.PostRequest{
		Platform: platform.Instagram,
		Payload: map[string]string{
			platform.FieldImageURL: "https://cdn.example/pic.jpg",
			platform.FieldCaption:  "caption",
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "media9", result.RemoteID)
}

func TestInstagramPublishReportsOrphanedContainer(t *testing.T) {
	stub := newGraphStub(t).withAccounts(`{"data":[{"id":"page1","instagram_business_account":{"id":"ig7"}}]}`)
	stub.mux.HandleFunc("/ig7/media", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"container5"}`))
	})
	stub.mux.HandleFunc("/ig7/media_publish", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"transient","type":"OAuthException","code":2}}`))
	})

	a, err := NewInstagram(testCreds(), stub.srv.URL, nil)
	require.NoError(t, err)

	result, err := a.Publish(context.Background(), platform.PostRequest{
		Platform: platform.Instagram,
		Payload:  map[string]string{platform.FieldImageURL: "https://cdn.example/pic.jpg"},
	})
	require.Error(t, err)

	var stepErr *platform.PublishStepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "publish container", stepErr.Step)
	assert.Equal(t, "container5", stepErr.PartialID, "orphaned container id is reported")
	assert.Contains(t, result.Error, "container5")
}

func TestInstagramPublishRequiresImage(t *testing.T) {
	a, err := NewInstagram(testCreds(), "http://127.0.0.1:1", nil)
	require.NoError(t, err)

	_, err = a.Publish(context.Background(), platform.PostRequest{
		Platform: platform.Instagram,
		Payload:  map[string]string{platform.FieldCaption: "no image"},
	})
	require.Error(t, err)

	var stepErr *platform.PublishStepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, "validate payload", stepErr.Step)
}

func TestInstagramNoLinkedAccount(t *testing.T) {
	stub := newGraphStub(t).withAccounts(`{"data":[{"id":"page1"}]}`)

	a, err := NewInstagram(testCreds(), stub.srv.URL, nil)
	require.NoError(t, err)

	_, err = a.Publish(context.Background(), platform.PostRequest{
		Platform: platform.Instagram,
		Payload:  map[string]string{platform.FieldImageURL: "https://cdn.example/p.jpg"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no instagram business account")
}

func TestExtractGroupPostTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ü", 300)
	el := &platformtest.Element{Values: map[string]string{messageSelector: long}}

	lead, err := extractGroupPost(el, "https://facebook.com/groups/biz")
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(lead.Identity), "truncation must not split a rune")
	assert.Equal(t, maxAuthorLen, utf8.RuneCountInString(lead.Identity))
	assert.Equal(t, maxPreviewLen, utf8.RuneCountInString(lead.Attributes["post_preview"]))
}

func TestFacebookExtractGroupPosts(t *testing.T) {
	post := func(message string) platform.Element {
		return &platformtest.Element{Values: map[string]string{messageSelector: message}}
	}
	page := &platformtest.Page{
		Batches: [][]platform.Element{{post("Anyone know a good chatbot vendor?"), post("Selling my couch")}},
	}

	a, err := NewFacebook(&platformtest.Pager{Page: page}, testCreds(), "", nil)
	require.NoError(t, err)
	a.SettleDelay = 1

	out, err := a.ExtractLeads(context.Background(), platform.Query{Terms: "https://facebook.com/groups/biz"}, 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Anyone know a good chatbot vendor?", out[0].Identity)
	assert.Equal(t, "https://facebook.com/groups/biz", out[0].Attributes["group_url"])
}

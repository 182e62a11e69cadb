package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/prospect/pkg/platform"
)

type fakePublisher struct {
	p     platform.Platform
	err   error
	calls int
}

func (f *fakePublisher) Platform() platform.Platform { return f.p }

func (f *fakePublisher) Publish(ctx context.Context, req platform.PostRequest) (platform.PostResult, error) {
	f.calls++
	result := platform.PostResult{Platform: f.p, Timestamp: time.Now().UTC()}
	if f.err != nil {
		result.Error = f.err.Error()
		return result, f.err
	}
	result.Success = true
	result.RemoteID = "remote-" + string(f.p)
	return result, nil
}

func request(p platform.Platform, message string) platform.PostRequest {
	return platform.PostRequest{Platform: p, Payload: map[string]string{platform.FieldMessage: message}}
}

func TestPublishAllIsolatesFailures(t *testing.T) {
	good := &fakePublisher{p: platform.LinkedIn}
	bad := &fakePublisher{p: platform.Twitter, err: errors.New("composer never opened")}

	reg := platform.NewRegistry()
	require.NoError(t, reg.Register(good))
	require.NoError(t, reg.Register(bad))

	results := New(reg, nil).PublishAll(context.Background(), []platform.PostRequest{
		request(platform.LinkedIn, "a"),
		request(platform.Twitter, "b"),
	})

	require.Len(t, results, 2, "one entry per requested platform")
	assert.True(t, results[platform.LinkedIn].Success)
	assert.False(t, results[platform.Twitter].Success)
	assert.Contains(t, results[platform.Twitter].Error, "composer")
	assert.Equal(t, 1, good.calls, "failure on one platform does not stop the other")
}

func TestPublishAllSkipsEmptyPayloadWithoutInvoking(t *testing.T) {
	pub := &fakePublisher{p: platform.LinkedIn}
	reg := platform.NewRegistry()
	require.NoError(t, reg.Register(pub))

	results := New(reg, nil).PublishAll(context.Background(), []platform.PostRequest{
		{Platform: platform.LinkedIn},
	})

	require.Len(t, results, 1)
	assert.False(t, results[platform.LinkedIn].Success)
	assert.Equal(t, "empty payload", results[platform.LinkedIn].Error)
	assert.Zero(t, pub.calls)
}

func TestPublishAllUnregisteredPlatform(t *testing.T) {
	reg := platform.NewRegistry()

	results := New(reg, nil).PublishAll(context.Background(), []platform.PostRequest{
		request(platform.Medium, "story"),
	})

	require.Len(t, results, 1)
	assert.False(t, results[platform.Medium].Success)
	assert.Contains(t, results[platform.Medium].Error, "no publishing adapter")
}

func TestPublishAllResultsAlwaysTimestamped(t *testing.T) {
	pub := &fakePublisher{p: platform.LinkedIn}
	reg := platform.NewRegistry()
	require.NoError(t, reg.Register(pub))

	results := New(reg, nil).PublishAll(context.Background(), []platform.PostRequest{
		request(platform.LinkedIn, "a"),
		{Platform: platform.Twitter},
	})

	for p, r := range results {
		assert.False(t, r.Timestamp.IsZero(), "missing timestamp for %s", p)
		assert.Equal(t, p, r.Platform)
	}
}

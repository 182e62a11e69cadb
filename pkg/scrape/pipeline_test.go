package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/prospect/pkg/platform"
)

// fakeElement serves canned field values; a nil values map simulates a
// malformed container.
type fakeElement struct {
	values map[string]string
}

func (e *fakeElement) Text(selector string) (string, error) {
	if e.values == nil {
		return "", errors.New("element detached")
	}
	return e.values[selector], nil
}

func (e *fakeElement) Attr(selector, name string) (string, error) {
	if e.values == nil {
		return "", errors.New("element detached")
	}
	return e.values[selector+"@"+name], nil
}

// fakeDoc scripts a listing page: batches[i] is the container set visible
// after i scrolls.
type fakeDoc struct {
	url         string
	landedURL   string
	batches     [][]platform.Element
	scrolls     int
	navErr      error
	waitErr     error
	navigations int
}

func (d *fakeDoc) Navigate(ctx context.Context, url string) error {
	d.navigations++
	if d.navErr != nil {
		return d.navErr
	}
	d.url = url
	if d.landedURL != "" {
		d.url = d.landedURL
	}
	return nil
}

func (d *fakeDoc) Fill(selector, value string) error  { return nil }
func (d *fakeDoc) Click(selector string) error        { return nil }
func (d *fakeDoc) Press(selector, key string) error   { return nil }
func (d *fakeDoc) Upload(selector, path string) error { return nil }
func (d *fakeDoc) URL() string                        { return d.url }

func (d *fakeDoc) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return d.waitErr
}

func (d *fakeDoc) Scroll(ctx context.Context, selector string) error {
	if d.scrolls < len(d.batches)-1 {
		d.scrolls++
	}
	return nil
}

func (d *fakeDoc) Containers(selector string) ([]platform.Element, error) {
	return d.batches[d.scrolls], nil
}

func element(name string) platform.Element {
	return &fakeElement{values: map[string]string{".name": name}}
}

func testSource() Source {
	return Source{
		Platform:          platform.GoogleMaps,
		URL:               "https://example.test/search",
		ContainerSelector: "[role=article]",
		ScrollBudget:      3,
		SettleDelay:       time.Millisecond,
		WaitTimeout:       time.Second,
		Extract: func(el platform.Element) (platform.Lead, error) {
			name, err := el.Text(".name")
			if err != nil {
				return platform.Lead{}, &platform.FieldError{Platform: platform.GoogleMaps, Field: "name", Err: err}
			}
			return platform.Lead{Platform: platform.GoogleMaps, Identity: name, DiscoveredAt: time.Now()}, nil
		},
	}
}

func TestRunCapsAtMaxResults(t *testing.T) {
	batch := make([]platform.Element, 20)
	for i := range batch {
		batch[i] = element("biz-" + string(rune('a'+i)))
	}
	doc := &fakeDoc{batches: [][]platform.Element{batch}}

	out, err := Run(context.Background(), nil, doc, testSource(), 5)
	require.NoError(t, err)
	assert.Len(t, out, 5)
	for _, l := range out {
		assert.True(t, l.Valid())
	}
}

func TestRunNonPositiveCap(t *testing.T) {
	doc := &fakeDoc{batches: [][]platform.Element{{element("one"), element("two")}}}

	for _, limit := range []int{0, -3} {
		out, err := Run(context.Background(), nil, doc, testSource(), limit)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
	assert.Zero(t, doc.navigations, "a non-positive cap never touches the page")
}

func TestRunIsolatesMalformedRecords(t *testing.T) {
	batch := make([]platform.Element, 0, 10)
	for i := 0; i < 10; i++ {
		if i == 4 {
			batch = append(batch, &fakeElement{values: nil})
			continue
		}
		batch = append(batch, element("biz-"+string(rune('a'+i))))
	}
	doc := &fakeDoc{batches: [][]platform.Element{batch}}

	out, err := Run(context.Background(), nil, doc, testSource(), 50)
	require.NoError(t, err)
	assert.Len(t, out, 9, "one malformed container among ten yields nine leads")
}

func TestRunAccumulatesAcrossScrolls(t *testing.T) {
	first := []platform.Element{element("one"), element("two")}
	second := append(append([]platform.Element{}, first...), element("three"))
	doc := &fakeDoc{batches: [][]platform.Element{first, second, second}}

	out, err := Run(context.Background(), nil, doc, testSource(), 50)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "one", out[0].Identity)
	assert.Equal(t, "three", out[2].Identity)
}

func TestRunNavigationFailure(t *testing.T) {
	doc := &fakeDoc{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED"), batches: [][]platform.Element{nil}}

	_, err := Run(context.Background(), nil, doc, testSource(), 5)
	assert.True(t, errors.Is(err, platform.ErrNavigation))
}

func TestRunDetectsLoginWall(t *testing.T) {
	doc := &fakeDoc{landedURL: "https://example.test/login?next=search", batches: [][]platform.Element{nil}}
	src := testSource()
	src.LoginWallHint = "/login"

	_, err := Run(context.Background(), nil, doc, src, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, platform.ErrNavigation))
	assert.Contains(t, err.Error(), "login wall")
}

func TestRunNoContainersEver(t *testing.T) {
	doc := &fakeDoc{waitErr: errors.New("timeout"), batches: [][]platform.Element{nil}}

	_, err := Run(context.Background(), nil, doc, testSource(), 5)
	assert.True(t, errors.Is(err, platform.ErrNavigation))
}

func TestRunSkipsEmptyIdentity(t *testing.T) {
	doc := &fakeDoc{batches: [][]platform.Element{{element(""), element("ok")}}}

	out, err := Run(context.Background(), nil, doc, testSource(), 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "ok", out[0].Identity)
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := &fakeDoc{batches: [][]platform.Element{{element("one")}, {element("one"), element("two")}}}
	src := testSource()
	src.SettleDelay = time.Minute

	out, err := Run(ctx, nil, doc, src, 50)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, out, 1, "returns what was extracted before cancellation")
}

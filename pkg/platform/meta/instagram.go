package meta

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/credentials"
	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
)

// Instagram publishes media posts through the Graph API's two-step
// container-create-then-confirm flow.
type Instagram struct {
	graph *GraphClient
	log   *zap.SugaredLogger
}

// NewInstagram constructs the adapter. A missing access token fails at
// construction time.
func NewInstagram(creds *credentials.Set, graphURL string, log *zap.SugaredLogger) (*Instagram, error) {
	vals, err := creds.Require(credentials.MetaAccessToken)
	if err != nil {
		return nil, errors.Wrapf(platform.ErrAuthentication, "instagram: %v", err)
	}
	return &Instagram{
		graph: NewGraphClient(vals[0], graphURL),
		log:   logging.OrNop(log).With("platform", platform.Instagram),
	}, nil
}

// Platform returns platform.Instagram.
func (a *Instagram) Platform() platform.Platform {
	return platform.Instagram
}

// Publish stages the payload image as a media container and confirms it.
// If confirmation fails after the container was created, the orphaned
// container id is reported in the error so the caller can see the partial
// remote state; it is not rolled back.
func (a *Instagram) Publish(ctx context.Context, req platform.PostRequest) (platform.PostResult, error) {
	result := platform.PostResult{Platform: platform.Instagram, Timestamp: time.Now().UTC()}

	fail := func(step, partialID string, err error) (platform.PostResult, error) {
		stepErr := &platform.PublishStepError{Platform: platform.Instagram, Step: step, PartialID: partialID, Err: err}
		result.Error = stepErr.Error()
		return result, stepErr
	}

	imageURL := req.Field(platform.FieldImageURL)
	if imageURL == "" {
		return fail("validate payload", "", errors.New("image_url is required for instagram posts"))
	}

	igID, err := a.graph.InstagramAccount(ctx)
	if err != nil {
		return fail("resolve account", "", err)
	}

	creationID, err := a.graph.CreateMediaContainer(ctx, igID, imageURL, req.Field(platform.FieldCaption))
	if err != nil {
		return fail("create container", "", err)
	}

	mediaID, err := a.graph.PublishMediaContainer(ctx, igID, creationID)
	if err != nil {
		return fail("publish container", creationID, err)
	}

	a.log.Infow("media published", "media_id", mediaID)
	result.Success = true
	result.RemoteID = mediaID
	return result, nil
}

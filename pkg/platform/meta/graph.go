// Package meta implements the social-graph adapters. Facebook group
// extraction drives the browser; Facebook feed posts and Instagram media
// posts go through the Meta Graph API with a bearer token.
package meta

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	"github.com/entrhq/prospect/pkg/platform"
)

// DefaultGraphURL is the production Graph API endpoint. Tests point the
// client at a local server instead.
const DefaultGraphURL = "https://graph.facebook.com/v18.0"

// GraphClient is a thin wrapper over the Graph API endpoints the adapters
// use.
type GraphClient struct {
	http  *resty.Client
	token string
}

// NewGraphClient creates a client authenticated with token. baseURL is the
// API root; empty means DefaultGraphURL.
func NewGraphClient(token, baseURL string) *GraphClient {
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	return &GraphClient{
		http:  resty.New().SetBaseURL(baseURL),
		token: token,
	}
}

type account struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
	Instagram   *struct {
		ID string `json:"id"`
	} `json:"instagram_business_account"`
}

type accountList struct {
	Data []account `json:"data"`
}

type createdObject struct {
	ID string `json:"id"`
}

// graphError decodes the error body the Graph API returns alongside non-2xx
// statuses.
func graphError(resp *resty.Response) error {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error.Message != "" {
		return errors.Newf("graph api: %s (type %s, code %d)", body.Error.Message, body.Error.Type, body.Error.Code)
	}
	return errors.Newf("graph api: unexpected status %d", resp.StatusCode())
}

// accounts lists the pages the token manages.
func (c *GraphClient) accounts(ctx context.Context, withInstagram bool) ([]account, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_token", c.token).
		SetResult(&accountList{})
	if withInstagram {
		req.SetQueryParam("fields", "instagram_business_account")
	}

	resp, err := req.Get("/me/accounts")
	if err != nil {
		return nil, errors.Wrapf(platform.ErrConnectivity, "listing accounts: %v", err)
	}
	if resp.IsError() {
		return nil, graphError(resp)
	}
	return resp.Result().(*accountList).Data, nil
}

// PageAccount returns the id and page token of the first managed page.
func (c *GraphClient) PageAccount(ctx context.Context) (id, pageToken string, err error) {
	accounts, err := c.accounts(ctx, false)
	if err != nil {
		return "", "", err
	}
	if len(accounts) == 0 {
		return "", "", errors.New("no managed pages for this token")
	}
	return accounts[0].ID, accounts[0].AccessToken, nil
}

// InstagramAccount returns the id of the first linked Instagram business
// account.
func (c *GraphClient) InstagramAccount(ctx context.Context) (string, error) {
	accounts, err := c.accounts(ctx, true)
	if err != nil {
		return "", err
	}
	for _, a := range accounts {
		if a.Instagram != nil && a.Instagram.ID != "" {
			return a.Instagram.ID, nil
		}
	}
	return "", errors.New("no instagram business account linked")
}

// PostFeed publishes a message (optionally with a link) to a page's feed and
// returns the post id.
func (c *GraphClient) PostFeed(ctx context.Context, pageID, pageToken, message, link string) (string, error) {
	form := map[string]string{
		"message":      message,
		"access_token": pageToken,
	}
	if link != "" {
		form["link"] = link
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&createdObject{}).
		Post("/" + pageID + "/feed")
	if err != nil {
		return "", errors.Wrapf(platform.ErrConnectivity, "posting to feed: %v", err)
	}
	if resp.IsError() {
		return "", graphError(resp)
	}
	return resp.Result().(*createdObject).ID, nil
}

// CreateMediaContainer stages an image with caption for publication and
// returns the container id.
func (c *GraphClient) CreateMediaContainer(ctx context.Context, igID, imageURL, caption string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"image_url":    imageURL,
			"caption":      caption,
			"access_token": c.token,
		}).
		SetResult(&createdObject{}).
		Post("/" + igID + "/media")
	if err != nil {
		return "", errors.Wrapf(platform.ErrConnectivity, "creating media container: %v", err)
	}
	if resp.IsError() {
		return "", graphError(resp)
	}
	return resp.Result().(*createdObject).ID, nil
}

// PublishMediaContainer confirms a staged container and returns the media id.
func (c *GraphClient) PublishMediaContainer(ctx context.Context, igID, creationID string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"creation_id":  creationID,
			"access_token": c.token,
		}).
		SetResult(&createdObject{}).
		Post("/" + igID + "/media_publish")
	if err != nil {
		return "", errors.Wrapf(platform.ErrConnectivity, "publishing media container: %v", err)
	}
	if resp.IsError() {
		return "", graphError(resp)
	}
	return resp.Result().(*createdObject).ID, nil
}

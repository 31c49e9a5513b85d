package dropbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zappavault/internal/logging"
	"zappavault/internal/services"
)

const (
	endpointGetMetadata      = "/files/get_metadata"
	endpointListSharedLinks  = "/sharing/list_shared_links"
	endpointCreateSharedLink = "/sharing/create_shared_link_with_settings"
)

type pathArg struct {
	Path string `json:"path"`
}

type listLinksArg struct {
	Path       string `json:"path"`
	DirectOnly bool   `json:"direct_only"`
}

type createLinkArg struct {
	Path     string       `json:"path"`
	Settings linkSettings `json:"settings"`
}

type linkSettings struct {
	RequestedVisibility tag `json:"requested_visibility"`
}

type tag struct {
	Tag string `json:".tag"`
}

type metadataResponse struct {
	Tag         string `json:".tag"`
	PathDisplay string `json:"path_display"`
}

type sharedLink struct {
	URL string `json:"url"`
}

type listLinksResponse struct {
	Links []sharedLink `json:"links"`
}

// ResolvePath finds the remote path for a recorded file path by trying each
// candidate until Dropbox reports metadata for one.
func (c *Client) ResolvePath(ctx context.Context, recorded string) (string, error) {
	candidates := c.paths.Candidates(recorded)
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrValidation, "dropbox", "resolve path", "empty path", nil)
	}
	for _, candidate := range candidates {
		var meta metadataResponse
		err := c.rpc(ctx, endpointGetMetadata, pathArg{Path: candidate}, &meta)
		if err == nil {
			return candidate, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			c.logger.Debug("candidate path not found", logging.String("path", candidate))
			continue
		}
		return "", err
	}
	return "", services.Wrap(services.ErrNotFound, "dropbox", "resolve path",
		fmt.Sprintf("file not found at any of: %s", strings.Join(candidates, ", ")), nil)
}

// GetOrCreateLink returns a direct link for the file recorded at path,
// reusing an existing shared link when there is one.
func (c *Client) GetOrCreateLink(ctx context.Context, recorded string) (string, error) {
	remote, err := c.ResolvePath(ctx, recorded)
	if err != nil {
		return "", err
	}
	image := IsImagePath(remote)

	if link, err := c.existingLink(ctx, remote); err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Conflict() {
			c.logger.Debug("list shared links failed",
				logging.String("path", remote),
				logging.Error(err))
		}
	} else if link != "" {
		return DirectLink(link, image), nil
	}

	var created sharedLink
	err = c.rpc(ctx, endpointCreateSharedLink, createLinkArg{
		Path:     remote,
		Settings: linkSettings{RequestedVisibility: tag{Tag: "public"}},
	}, &created)
	if err == nil && created.URL != "" {
		return DirectLink(created.URL, image), nil
	}
	var apiErr *APIError
	if err != nil && errors.As(err, &apiErr) && apiErr.Conflict() {
		// Another request created the link in the meantime.
		link, listErr := c.existingLink(ctx, remote)
		if listErr == nil && link != "" {
			return DirectLink(link, image), nil
		}
		if listErr != nil {
			err = listErr
		}
	}
	if err == nil {
		err = errors.New("response has no url")
	}
	return "", services.Wrap(services.ErrExternal, "dropbox", "create shared link", remote, err)
}

func (c *Client) existingLink(ctx context.Context, remote string) (string, error) {
	var listed listLinksResponse
	if err := c.rpc(ctx, endpointListSharedLinks, listLinksArg{Path: remote}, &listed); err != nil {
		return "", err
	}
	for _, link := range listed.Links {
		if link.URL != "" {
			return link.URL, nil
		}
	}
	return "", nil
}

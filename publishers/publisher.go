package publishers

import (
	"context"

	"NexoraPanel/models"
)

type PageResolver interface {
	ResolvePages(ctx context.Context, userToken string) (map[string]models.Page, error)
}

// PagePoster sends a single post to a page and returns the Graph object id.
type PagePoster interface {
	PostText(ctx context.Context, pageID, pageToken, message, link string) (string, error)
	PostPhoto(ctx context.Context, photo Photo) (string, error)
}

type Photo struct {
	PageID    string
	PageToken string
	Message   string
	Path      string
	MimeType  string
}

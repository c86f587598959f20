package publishers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"NexoraPanel/models"
	"NexoraPanel/utils"
)

// maxAccountPages bounds how many /me/accounts cursor pages are followed.
const maxAccountPages = 20

type FacebookClient struct {
	client  *http.Client
	baseURL string
	version string
}

type FacebookPageResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type FacebookPostResponse struct {
	ID string `json:"id"`
}

// NewFacebookClient creates a Graph API client. If nil is passed, a default
// client with a 30 second timeout is used.
func NewFacebookClient(client *http.Client, baseURL, version string) *FacebookClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FacebookClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

func (f *FacebookClient) endpoint(parts ...string) string {
	return f.baseURL + "/" + f.version + "/" + strings.Join(parts, "/")
}

// ResolvePages lists the pages managed by the user token, keyed by page id.
func (f *FacebookClient) ResolvePages(ctx context.Context, userToken string) (map[string]models.Page, error) {
	userToken = strings.TrimSpace(userToken)
	if userToken == "" {
		return nil, &AuthError{Message: "user access token is required"}
	}

	q := url.Values{}
	q.Set("fields", "id,name,access_token")
	q.Set("limit", "100")
	next := f.endpoint("me", "accounts") + "?" + q.Encode()

	pages := make(map[string]models.Page)
	for i := 0; next != "" && i < maxAccountPages; i++ {
		pageResp, err := f.fetchAccounts(ctx, next, userToken)
		if err != nil {
			return nil, err
		}
		for _, p := range pageResp.Data {
			pages[p.ID] = models.Page{ID: p.ID, Name: p.Name, AccessToken: p.AccessToken}
		}
		next = pageResp.Paging.Next
	}
	if next != "" {
		utils.Warnf("page directory truncated after %d cursor pages; %d pages resolved, remaining accounts skipped", maxAccountPages, len(pages))
	}
	return pages, nil
}

func (f *FacebookClient) fetchAccounts(ctx context.Context, rawURL, userToken string) (*FacebookPageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+userToken)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fbError := parseFacebookError(body)
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Code:       fbError.Error.Code,
			Message:    fbError.Error.Message,
			Body:       string(body),
		}
	}

	var pageResp FacebookPageResponse
	if err := json.Unmarshal(body, &pageResp); err != nil {
		return nil, fmt.Errorf("decode pages response: %w", err)
	}
	return &pageResp, nil
}

// PostText publishes to the page feed. A non-empty link is attached to the
// post.
func (f *FacebookClient) PostText(ctx context.Context, pageID, pageToken, message, link string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	if link != "" {
		form.Set("link", link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint(pageID, "feed"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+pageToken)

	return f.doPost(req)
}

// PostPhoto uploads the image as multipart field "source" with the message
// as caption.
func (f *FacebookClient) PostPhoto(ctx context.Context, photo Photo) (string, error) {
	file, err := os.Open(photo.Path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	mimeType := photo.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename="%s"`, filepath.Base(photo.Path)))
	h.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if photo.Message != "" {
		writer.WriteField("message", photo.Message)
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint(photo.PageID, "photos"), body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+photo.PageToken)

	return f.doPost(req)
}

// doPost treats a post as delivered only when Graph answers 2xx with an
// object id.
func (f *FacebookClient) doPost(req *http.Request) (string, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var postResp FacebookPostResponse
	if err := json.Unmarshal(body, &postResp); err != nil || postResp.ID == "" {
		return "", &DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return postResp.ID, nil
}

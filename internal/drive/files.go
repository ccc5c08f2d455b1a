package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// listPageSize is the maxResults value for files.list requests. 1000 is
// the maximum the v2 API allows.
const listPageSize = 1000

// fileResource mirrors the Drive v2 file resource JSON exactly.
// Unexported; callers use File via toFile() normalization.
type fileResource struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	MimeType    string            `json:"mimeType"`
	ExportLinks map[string]string `json:"exportLinks"`
	DownloadURL string            `json:"downloadUrl"`
	FileSize    string            `json:"fileSize"` // int64 serialized as string
	Labels      *labelsFacet      `json:"labels"`
}

type labelsFacet struct {
	Trashed bool `json:"trashed"`
}

type fileListResponse struct {
	Items         []fileResource `json:"items"`
	NextPageToken string         `json:"nextPageToken"`
}

// toFile normalizes a Drive v2 file resource into our File type.
func (r *fileResource) toFile(logger *slog.Logger) File {
	f := File{
		ID:          r.ID,
		Title:       r.Title,
		MimeType:    r.MimeType,
		ExportLinks: r.ExportLinks,
		DownloadURL: r.DownloadURL,
	}

	if r.Labels != nil {
		f.Trashed = r.Labels.Trashed
	}

	if r.FileSize != "" {
		size, err := strconv.ParseInt(r.FileSize, 10, 64)
		if err != nil {
			logger.Warn("unparseable fileSize, treating as unknown",
				slog.String("file_id", r.ID),
				slog.String("raw", r.FileSize),
			)
		} else {
			f.FileSize = size
		}
	}

	return f
}

// List returns all files matching the given query expression, handling
// pagination automatically. The query uses the Drive v2 search syntax,
// e.g. `'root' in parents and trashed=false`.
func (c *Client) List(ctx context.Context, query string) ([]File, error) {
	c.logger.Debug("listing files", slog.String("query", query))

	var files []File

	pageToken := ""

	for {
		page, next, err := c.listPage(ctx, query, pageToken)
		if err != nil {
			return nil, err
		}

		files = append(files, page...)
		if next == "" {
			break
		}

		pageToken = next
	}

	c.logger.Debug("listing complete",
		slog.String("query", query),
		slog.Int("total_files", len(files)),
	)

	return files, nil
}

// listPage fetches a single page of files.list results.
func (c *Client) listPage(ctx context.Context, query, pageToken string) ([]File, string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(listPageSize))

	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	resp, err := c.Do(ctx, http.MethodGet, "/files?"+params.Encode(), nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var list fileListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, "", fmt.Errorf("drive: decoding file list: %w", err)
	}

	files := make([]File, 0, len(list.Items))
	for i := range list.Items {
		files = append(files, list.Items[i].toFile(c.logger))
	}

	return files, list.NextPageToken, nil
}

// ListChildren returns all non-trashed direct children of a folder.
// folderID is an opaque Drive id; the pseudo-id "root" denotes the top of
// the user's Drive.
func (c *Client) ListChildren(ctx context.Context, folderID string) ([]File, error) {
	return c.List(ctx, fmt.Sprintf("'%s' in parents and trashed=false", folderID))
}

// FilesByTitle returns all files whose title matches exactly. Titles are
// not unique in Drive, so multiple results are expected, not an error.
// Apostrophes are escaped so the title is legal inside the query literal.
func (c *Client) FilesByTitle(ctx context.Context, title string) ([]File, error) {
	escaped := strings.ReplaceAll(title, `'`, `\'`)

	return c.List(ctx, fmt.Sprintf("title='%s'", escaped))
}

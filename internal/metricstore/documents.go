package metricstore

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/reelviewapp/reelview-server/internal/errors"
)

// document is a stored record plus the store-managed system fields. System
// fields are stripped before the record is treated as domain data.
type document struct {
	ID           string   `json:"$id"`
	CollectionID string   `json:"$collectionId"`
	DatabaseID   string   `json:"$databaseId"`
	CreatedAt    string   `json:"$createdAt"`
	UpdatedAt    string   `json:"$updatedAt"`
	Permissions  []string `json:"$permissions"`

	MetricRecord
}

type documentList struct {
	Total     int        `json:"total"`
	Documents []document `json:"documents"`
}

type createRequest struct {
	DocumentID string       `json:"documentId"`
	Data       MetricRecord `json:"data"`
}

type updateRequest struct {
	Data MetricRecord `json:"data"`
}

// Query clause syntax shared with the store: equal("attr", [values]),
// orderDesc("attr"), limit(n).

func queryEqual(attribute string, value any) string {
	encoded, _ := json.Marshal([]any{value})
	return fmt.Sprintf("equal(%q, %s)", attribute, encoded)
}

func queryOrderDesc(attribute string) string {
	return fmt.Sprintf("orderDesc(%q)", attribute)
}

func queryLimit(n int) string {
	return "limit(" + strconv.Itoa(n) + ")"
}

func (c *Client) documentsURL(id string) string {
	u := fmt.Sprintf("%s/databases/%s/collections/%s/documents",
		c.endpoint, url.PathEscape(c.databaseID), url.PathEscape(c.collectionID))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *Client) listDocuments(ctx context.Context, queries []string) (documentList, error) {
	params := url.Values{}
	for _, q := range queries {
		params.Add("queries[]", q)
	}

	var list documentList
	err := c.call(ctx, http.MethodGet, c.documentsURL("")+"?"+params.Encode(), nil, &list)
	return list, err
}

func (c *Client) createDocument(ctx context.Context, id string, record MetricRecord) error {
	return c.call(ctx, http.MethodPost, c.documentsURL(""), createRequest{
		DocumentID: id,
		Data:       record,
	}, nil)
}

func (c *Client) updateDocument(ctx context.Context, id string, record MetricRecord) error {
	return c.call(ctx, http.MethodPatch, c.documentsURL(id), updateRequest{
		Data: record,
	}, nil)
}

func (c *Client) call(ctx context.Context, method, callURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, callURL, reader)
	if err != nil {
		return errors.Transport(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Appwrite-Project", c.projectID)
	if c.apiKey != "" {
		req.Header.Set("X-Appwrite-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Transport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Remote(resp.StatusCode, storeMessage(resp.StatusCode, raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Transport(fmt.Errorf("malformed response: %w", err))
		}
	}
	return nil
}

func storeMessage(status int, raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}

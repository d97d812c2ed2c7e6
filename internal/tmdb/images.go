package tmdb

// Common image size tokens accepted by the image host.
const (
	SizeW342     = "w342"
	SizeW500     = "w500"
	SizeW780     = "w780"
	SizeOriginal = "original"
)

// ImageURL builds a full image URL from an API-returned path and a size
// token. A nil or empty path yields no URL; the caller substitutes a
// placeholder.
func (c *Client) ImageURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + size + *path
}

package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Upload stores data as bucket/name. With overwrite an existing object is replaced.
func (c *Client) Upload(ctx context.Context, bucket, name string, data []byte, contentType string, overwrite bool) error {
	header := http.Header{}
	header.Set("Content-Type", contentType)
	header.Set("Cache-Control", "max-age=3600")
	header.Set("x-upsert", strconv.FormatBool(overwrite))
	_, err := c.do(ctx, http.MethodPost, "/storage/v1/object/"+objectPath(bucket, name), data, header)
	return err
}

// PublicURL returns the URL of an object in a public bucket. It does not check the object exists.
func (c *Client) PublicURL(bucket, name string) string {
	return c.baseURL + "/storage/v1/object/public/" + objectPath(bucket, name)
}

func objectPath(bucket, name string) string {
	return url.PathEscape(bucket) + "/" + url.PathEscape(name)
}

package media

import "context"

// Uploader stores proof images on the external media host. Upload returns
// the public URL to keep on the transaction; Delete is best effort.
type Uploader interface {
	Upload(ctx context.Context, filename string, content []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

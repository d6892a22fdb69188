// Package storage holds content assets referenced by lessons and
// videos: images, worksheets, downloadable media.
package storage

import "io"

type AssetStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	URL(key string) (string, error) // fs returns "file://..." for dev
}

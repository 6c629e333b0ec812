package button

import (
	"fmt"
	"time"
)

// File is a file handed over by a picker, before it has been stored.
type File struct {
	Name         string
	Type         string // MIME type, e.g. "image/png"
	Size         int64
	LastModified time.Time
	Data         []byte
}

// DedupKey identifies the file by its metadata: name, last-modified time
// (millisecond precision), size and MIME type.
func (f *File) DedupKey() string {
	return dedupKey(f.Name, f.LastModified, f.Size, f.Type)
}

// Asset is a stored image.
type Asset struct {
	ID           int64 // assigned by the store, monotonic
	Name         string
	Type         string
	Size         int64
	LastModified time.Time
	ContentID    string // SHA-256 of Data, the key of the payload in the vault
	Encrypted    bool
	CreatedAt    time.Time
	Data         []byte
}

// NewAsset builds an unsaved asset from a picked file.
func NewAsset(f *File) *Asset {
	return &Asset{
		Name:         f.Name,
		Type:         f.Type,
		Size:         f.Size,
		LastModified: f.LastModified.Truncate(time.Millisecond),
		Data:         f.Data,
	}
}

// File returns the asset as a File, so stored and freshly picked images share
// the same reference space.
func (a *Asset) File() *File {
	return &File{
		Name:         a.Name,
		Type:         a.Type,
		Size:         a.Size,
		LastModified: a.LastModified,
		Data:         a.Data,
	}
}

// DedupKey returns the same key as File.DedupKey for the originating file.
func (a *Asset) DedupKey() string {
	return dedupKey(a.Name, a.LastModified, a.Size, a.Type)
}

func dedupKey(name string, lastModified time.Time, size int64, mimeType string) string {
	return fmt.Sprintf("%s\x00%d\x00%d\x00%s", name, lastModified.UnixMilli(), size, mimeType)
}

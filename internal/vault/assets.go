package vault

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/inkwell/internal/apperr"
)

// AssetKind selects the per-page subdirectory an upload lands in.
type AssetKind string

const (
	AssetImage AssetKind = "images"
	AssetVideo AssetKind = "videos"
)

// Upload limits, enforced before any disk write.
const (
	MaxImageSize = 10 << 20
	MaxVideoSize = 500 << 20
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".svg": true, ".bmp": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".webm": true, ".ogg": true, ".mov": true,
	".avi": true, ".mkv": true,
}

func allowedExts(kind AssetKind) map[string]bool {
	if kind == AssetVideo {
		return videoExts
	}
	return imageExts
}

func maxSize(kind AssetKind) int64 {
	if kind == AssetVideo {
		return MaxVideoSize
	}
	return MaxImageSize
}

// CheckAsset validates extension and size before the body is stored.
func CheckAsset(kind AssetKind, ext string, size int64) error {
	ext = strings.ToLower(ext)
	allowed := allowedExts(kind)
	if !allowed[ext] {
		names := make([]string, 0, len(allowed))
		for e := range allowed {
			names = append(names, e)
		}
		sort.Strings(names)
		return fmt.Errorf("%w: %s not in %s", apperr.ErrUnsupportedMedia, ext, strings.Join(names, ", "))
	}
	if size > maxSize(kind) {
		return fmt.Errorf("%w: limit %d bytes", apperr.ErrPayloadTooLarge, maxSize(kind))
	}
	return nil
}

// SaveAsset stores an already-validated upload under the page's images/ or
// videos/ subdirectory with a random filename, and returns the URL the
// client should embed.
func (v *Vault) SaveAsset(pageID string, kind AssetKind, ext string, data []byte) (url string, err error) {
	if err := CheckAsset(kind, ext, int64(len(data))); err != nil {
		return "", err
	}
	idx, err := v.LoadIndex()
	if err != nil {
		return "", err
	}
	if _, err := v.loadPage(pageID, idx); err != nil {
		return "", err
	}

	filename := uuid.NewString() + strings.ToLower(ext)
	dir := filepath.Join(v.pageDir(pageID, idx), string(kind))
	if err := v.assertInside(dir); err != nil {
		return "", err
	}
	if err := v.writeFileAtomic(filepath.Join(dir, filename), data); err != nil {
		return "", err
	}

	pageFolder := v.folderNameForPage(pageID, idx)
	catFolder := idx.folderNameForCategory(idx.CategoryMap[pageID])
	return v.AssetURLPrefix(pageFolder, catFolder) + string(kind) + "/" + filename, nil
}

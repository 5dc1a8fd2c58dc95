package vault

import (
	"strings"

	"github.com/starford/inkwell/internal/models"
)

// rewriteAssetURLs replaces every literal occurrence of oldPrefix with
// newPrefix in the page's block contents (recursing into children) and
// cover URL. Plain substring substitution, not URL-aware parsing: a
// false-positive match inside unrelated text is an accepted risk given
// prefixes are long path strings.
func rewriteAssetURLs(p *models.Page, oldPrefix, newPrefix string) {
	if oldPrefix == newPrefix {
		return
	}
	rewriteBlocks(p.Blocks, oldPrefix, newPrefix)
	if p.Cover != "" {
		p.Cover = strings.ReplaceAll(p.Cover, oldPrefix, newPrefix)
	}
}

func rewriteBlocks(blocks []models.Block, oldPrefix, newPrefix string) {
	for i := range blocks {
		if blocks[i].Content != "" {
			blocks[i].Content = strings.ReplaceAll(blocks[i].Content, oldPrefix, newPrefix)
		}
		rewriteBlocks(blocks[i].Children, oldPrefix, newPrefix)
	}
}

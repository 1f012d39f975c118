package catalog

import (
	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/db/models"
)

// BuildTree assembles the two-level category tree from a flat listing.
// Roots are categories without a parent, in input order. Children attach to
// their root in input order. Categories pointing at a parent that is not a
// root are dropped.
func BuildTree(categories []models.Category) []CategoryNode {
	roots := make([]CategoryNode, 0, len(categories))
	index := make(map[uuid.UUID]int, len(categories))

	for _, category := range categories {
		if !category.IsRoot() {
			continue
		}
		index[category.ID] = len(roots)
		roots = append(roots, CategoryNode{
			ID:       category.ID,
			Name:     category.Name,
			Slug:     category.Slug,
			ImageURL: category.ImageURL,
			Children: []CategoryNode{},
		})
	}

	for _, category := range categories {
		if category.IsRoot() {
			continue
		}
		pos, ok := index[*category.ParentID]
		if !ok {
			continue
		}
		roots[pos].Children = append(roots[pos].Children, CategoryNode{
			ID:       category.ID,
			Name:     category.Name,
			Slug:     category.Slug,
			ImageURL: category.ImageURL,
			Children: []CategoryNode{},
		})
	}

	return roots
}

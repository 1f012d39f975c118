package catalog

import (
	"testing"

	"github.com/google/uuid"

	"github.com/giftlypk/giftly-backend/pkg/db/models"
)

func category(name string, parentID *uuid.UUID) models.Category {
	return models.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     name,
		ParentID: parentID,
		IsActive: true,
	}
}

func TestBuildTreePartitionsRootsAndChildren(t *testing.T) {
	stickers := category("stickers", nil)
	gifts := category("gifts", nil)
	laptop := category("laptop-stickers", &stickers.ID)
	mugs := category("mugs", &gifts.ID)
	bottle := category("bottle-stickers", &stickers.ID)

	tree := BuildTree([]models.Category{stickers, gifts, laptop, mugs, bottle})

	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[0].ID != stickers.ID || tree[1].ID != gifts.ID {
		t.Fatalf("roots out of input order: %v", tree)
	}
	if len(tree[0].Children) != 2 {
		t.Fatalf("expected 2 sticker children, got %d", len(tree[0].Children))
	}
	if tree[0].Children[0].ID != laptop.ID || tree[0].Children[1].ID != bottle.ID {
		t.Fatalf("children out of input order: %v", tree[0].Children)
	}
	if len(tree[1].Children) != 1 || tree[1].Children[0].ID != mugs.ID {
		t.Fatalf("expected mugs under gifts, got %v", tree[1].Children)
	}
}

func TestBuildTreeDropsOrphans(t *testing.T) {
	missingParent := uuid.New()
	root := category("stickers", nil)
	orphan := category("lost", &missingParent)
	child := category("laptop-stickers", &root.ID)

	tree := BuildTree([]models.Category{root, orphan, child})

	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != child.ID {
		t.Fatalf("expected only the valid child, got %v", tree[0].Children)
	}
}

func TestBuildTreeEmptyInput(t *testing.T) {
	tree := BuildTree(nil)
	if len(tree) != 0 {
		t.Fatalf("expected empty tree, got %v", tree)
	}
}

func TestBuildTreeDeterministic(t *testing.T) {
	root := category("stickers", nil)
	childA := category("a", &root.ID)
	childB := category("b", &root.ID)
	input := []models.Category{root, childA, childB}

	first := BuildTree(input)
	second := BuildTree(input)

	if len(first) != len(second) {
		t.Fatalf("non-deterministic root count")
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("non-deterministic root order at %d", i)
		}
		for j := range first[i].Children {
			if first[i].Children[j].ID != second[i].Children[j].ID {
				t.Fatalf("non-deterministic child order at %d/%d", i, j)
			}
		}
	}
}

func TestBuildTreeChildrenNeverNest(t *testing.T) {
	root := category("stickers", nil)
	child := category("laptop-stickers", &root.ID)
	grandchild := category("mac", &child.ID)

	tree := BuildTree([]models.Category{root, child, grandchild})

	if len(tree) != 1 || len(tree[0].Children) != 1 {
		t.Fatalf("unexpected tree shape: %v", tree)
	}
	if len(tree[0].Children[0].Children) != 0 {
		t.Fatalf("expected grandchild dropped, got %v", tree[0].Children[0].Children)
	}
}

package vault

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/inkwell/internal/apperr"
)

func TestCreateCategory(t *testing.T) {
	v := newTestVault(t)
	cat, err := v.CreateCategory("Work", "")
	if err != nil {
		t.Fatal(err)
	}
	if cat.FolderName != "Work" {
		t.Errorf("folderName = %q", cat.FolderName)
	}
	if info, err := os.Stat(filepath.Join(v.Root(), "Work")); err != nil || !info.IsDir() {
		t.Errorf("category dir missing: %v", err)
	}
	idx, _ := v.LoadIndex()
	if len(idx.CategoryOrder) != 1 || idx.CategoryOrder[0] != cat.ID {
		t.Errorf("categoryOrder = %v", idx.CategoryOrder)
	}
}

func TestCreateCategoryDisambiguatesFolder(t *testing.T) {
	v := newTestVault(t)
	// Different display names that sanitize to the same folder name.
	a, err := v.CreateCategory("My Notes", "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := v.CreateCategory("My/Notes", "")
	if err != nil {
		t.Fatal(err)
	}
	c, err := v.CreateCategory("My  Notes", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.FolderName != "My_Notes" || b.FolderName != "My_Notes_2" || c.FolderName != "My_Notes_3" {
		t.Errorf("folders = %q, %q, %q", a.FolderName, b.FolderName, c.FolderName)
	}
}

func TestCreateNestedCategoryPhysicallyFlat(t *testing.T) {
	v := newTestVault(t)
	parent, _ := v.CreateCategory("Parent", "")
	child, err := v.CreateCategory("Child", parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	// Nested logically, flat on disk.
	if _, err := os.Stat(filepath.Join(v.Root(), "Child")); err != nil {
		t.Errorf("child dir not at vault root: %v", err)
	}
	idx, _ := v.LoadIndex()
	if len(idx.CategoryChildOrder[parent.ID]) != 1 || idx.CategoryChildOrder[parent.ID][0] != child.ID {
		t.Errorf("childOrder = %v", idx.CategoryChildOrder)
	}
	if len(idx.CategoryOrder) != 1 {
		t.Errorf("child should not be in top-level order: %v", idx.CategoryOrder)
	}
}

func TestCreateCategoryUnknownParent(t *testing.T) {
	v := newTestVault(t)
	_, err := v.CreateCategory("Orphan", "0a1b2c3d-0000-4000-8000-000000000000")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRenameCategoryRewritesPageURLs(t *testing.T) {
	v := newTestVault(t)
	cat, _ := v.CreateCategory("Work", "")
	page, _ := v.CreatePage("Draft", "", cat.ID)

	idx, _ := v.LoadIndex()
	folder := idx.FolderMap[page.ID]
	oldURL := v.AssetURLPrefix(folder, "Work") + "images/pic.png"
	page.Blocks[0].Content = oldURL
	if _, _, err := v.SavePage(*page); err != nil {
		t.Fatal(err)
	}

	renamed, updated, err := v.RenameCategory(cat.ID, "Projects")
	if err != nil {
		t.Fatal(err)
	}
	if !renamed || updated.FolderName != "Projects" || updated.Name != "Projects" {
		t.Errorf("renamed=%v category=%+v", renamed, updated)
	}
	if _, err := os.Stat(filepath.Join(v.Root(), "Work")); !os.IsNotExist(err) {
		t.Error("old category dir still present")
	}

	got, err := v.Page(page.ID)
	if err != nil {
		t.Fatal(err)
	}
	wantURL := v.AssetURLPrefix(folder, "Projects") + "images/pic.png"
	if got.Blocks[0].Content != wantURL {
		t.Errorf("content = %q, want %q", got.Blocks[0].Content, wantURL)
	}
}

func TestRenameCategorySameFolderName(t *testing.T) {
	v := newTestVault(t)
	cat, _ := v.CreateCategory("Work", "")
	renamed, updated, err := v.RenameCategory(cat.ID, "Work")
	if err != nil {
		t.Fatal(err)
	}
	if renamed {
		t.Error("expected no physical rename")
	}
	if updated.Name != "Work" {
		t.Errorf("name = %q", updated.Name)
	}
}

func TestDeleteCategoryRefusals(t *testing.T) {
	v := newTestVault(t)
	parent, _ := v.CreateCategory("Parent", "")
	child, _ := v.CreateCategory("Child", parent.ID)

	res, err := v.DeleteCategory(parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK || !res.HasChildren || res.Count != 1 {
		t.Errorf("res = %+v, want HasChildren refusal", res)
	}

	page, _ := v.CreatePage("Doc", "", child.ID)
	res, err = v.DeleteCategory(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK || !res.HasPages || res.Count != 1 {
		t.Errorf("res = %+v, want HasPages refusal", res)
	}

	// Detach the page, then deletion proceeds bottom-up.
	if _, _, err := v.MovePageToCategory(page.ID, ""); err != nil {
		t.Fatal(err)
	}
	res, err = v.DeleteCategory(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK {
		t.Fatalf("res = %+v", res)
	}
	res, err = v.DeleteCategory(parent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK {
		t.Fatalf("res = %+v", res)
	}

	idx, _ := v.LoadIndex()
	if len(idx.Categories) != 0 || len(idx.CategoryOrder) != 0 || len(idx.CategoryChildOrder) != 0 {
		t.Errorf("index not cleaned: %+v", idx)
	}
}

func TestMoveCategoryRejectsCycles(t *testing.T) {
	v := newTestVault(t)
	a, _ := v.CreateCategory("A", "")
	b, _ := v.CreateCategory("B", a.ID)
	c, _ := v.CreateCategory("C", b.ID)

	if err := v.MoveCategory(a.ID, a.ID); !errors.Is(err, ErrCategoryCycle) {
		t.Errorf("self move = %v, want ErrCategoryCycle", err)
	}
	if err := v.MoveCategory(a.ID, c.ID); !errors.Is(err, ErrCategoryCycle) {
		t.Errorf("move into descendant = %v, want ErrCategoryCycle", err)
	}
	// Sibling-ward moves stay legal.
	if err := v.MoveCategory(c.ID, a.ID); err != nil {
		t.Fatal(err)
	}

	idx, _ := v.LoadIndex()
	if got := idx.category(c.ID).ParentID; got != a.ID {
		t.Errorf("parent = %q, want %q", got, a.ID)
	}
	children := idx.CategoryChildOrder[a.ID]
	if len(children) != 2 || children[1] != c.ID {
		t.Errorf("childOrder = %v", children)
	}
	if _, ok := idx.CategoryChildOrder[b.ID]; ok {
		t.Error("empty child list should be deleted")
	}
}

func TestMoveCategoryToTopLevel(t *testing.T) {
	v := newTestVault(t)
	a, _ := v.CreateCategory("A", "")
	b, _ := v.CreateCategory("B", a.ID)

	if err := v.MoveCategory(b.ID, ""); err != nil {
		t.Fatal(err)
	}
	idx, _ := v.LoadIndex()
	if len(idx.CategoryOrder) != 2 || idx.CategoryOrder[1] != b.ID {
		t.Errorf("categoryOrder = %v", idx.CategoryOrder)
	}
	if idx.category(b.ID).ParentID != "" {
		t.Error("parentId not cleared")
	}
}

func TestReorderCategoryChildrenWholesale(t *testing.T) {
	v := newTestVault(t)
	parent, _ := v.CreateCategory("P", "")
	c1, _ := v.CreateCategory("C1", parent.ID)
	c2, _ := v.CreateCategory("C2", parent.ID)

	// Wholesale replacement: the supplied list is stored as-is.
	if err := v.ReorderCategoryChildren(parent.ID, []string{c2.ID, c1.ID}); err != nil {
		t.Fatal(err)
	}
	idx, _ := v.LoadIndex()
	got := idx.CategoryChildOrder[parent.ID]
	if len(got) != 2 || got[0] != c2.ID || got[1] != c1.ID {
		t.Errorf("childOrder = %v", got)
	}
}

func TestCategoryFolderFromHostileName(t *testing.T) {
	v := newTestVault(t)
	cat, err := v.CreateCategory("../../evil", "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(cat.FolderName, `/\`) {
		t.Errorf("separator survived sanitization: %q", cat.FolderName)
	}
	// The stripped name still lives directly under the vault root.
	if _, err := os.Stat(filepath.Join(v.Root(), cat.FolderName)); err != nil {
		t.Errorf("category dir missing: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(v.Root()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() == "evil" {
			t.Error("directory created outside the vault")
		}
	}
}

package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

const (
	defaultTemplateName = "Untitled Template"
	defaultTemplateIcon = "📄"
)

func (v *Vault) templatesPath() string {
	return filepath.Join(v.root, templatesDir)
}

func (v *Vault) templateFile(id string) string {
	return filepath.Join(v.templatesPath(), id+".json")
}

// EnsureTemplates seeds the built-in starter templates on first run. A
// non-empty _templates directory is left untouched, so deleting a default
// sticks.
func (v *Vault) EnsureTemplates() error {
	dir := v.templatesPath()
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: create templates dir: %w", err)
	}
	for _, t := range defaultTemplates() {
		if err := v.writeTemplate(&t); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vault) writeTemplate(t *models.Template) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: encode template: %w", err)
	}
	return v.writeFileAtomic(v.templateFile(t.ID), data)
}

// Templates returns all stored templates sorted by name.
func (v *Vault) Templates() ([]models.Template, error) {
	entries, err := os.ReadDir(v.templatesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Template{}, nil
		}
		return nil, fmt.Errorf("vault: read templates dir: %w", err)
	}
	out := make([]models.Template, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(v.templatesPath(), e.Name()))
		if err != nil {
			continue
		}
		var t models.Template
		if err := json.Unmarshal(data, &t); err != nil {
			v.log.Warn("vault: skipping malformed template", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CreateTemplate stores a new template with a generated ID.
func (v *Vault) CreateTemplate(name, icon, description string, content []models.Block) (*models.Template, error) {
	if strings.TrimSpace(name) == "" {
		name = defaultTemplateName
	}
	if icon == "" {
		icon = defaultTemplateIcon
	}
	if content == nil {
		content = []models.Block{}
	}
	t := &models.Template{
		ID:          uuid.NewString(),
		Name:        name,
		Icon:        icon,
		Description: description,
		Content:     content,
	}
	if err := v.writeTemplate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTemplate overwrites an existing template, keeping its ID.
func (v *Vault) UpdateTemplate(id, name, icon, description string, content []models.Block) (*models.Template, error) {
	if _, err := os.Stat(v.templateFile(id)); err != nil {
		return nil, fmt.Errorf("vault: template %s: %w", id, apperr.ErrNotFound)
	}
	if strings.TrimSpace(name) == "" {
		name = defaultTemplateName
	}
	if icon == "" {
		icon = defaultTemplateIcon
	}
	if content == nil {
		content = []models.Block{}
	}
	t := &models.Template{ID: id, Name: name, Icon: icon, Description: description, Content: content}
	if err := v.writeTemplate(t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTemplate removes a stored template.
func (v *Vault) DeleteTemplate(id string) error {
	path := v.templateFile(id)
	if err := v.assertInside(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("vault: template %s: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("vault: delete template: %w", err)
	}
	return nil
}

func tplBlock(typ, content string) models.Block {
	now := NowISO()
	return models.Block{
		ID:        uuid.NewString(),
		Type:      typ,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func defaultTemplates() []models.Template {
	return []models.Template{
		{
			ID:          uuid.NewString(),
			Name:        "Meeting Notes",
			Icon:        "📋",
			Description: "Agenda, attendees and action items",
			Content: []models.Block{
				tplBlock(models.BlockHeading2, "Attendees"),
				tplBlock(models.BlockBulletList, ""),
				tplBlock(models.BlockHeading2, "Agenda"),
				tplBlock(models.BlockOrderedList, ""),
				tplBlock(models.BlockHeading2, "Action Items"),
				tplBlock(models.BlockTaskList, ""),
			},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Project Plan",
			Icon:        "🗂️",
			Description: "Goals, milestones and risks",
			Content: []models.Block{
				tplBlock(models.BlockHeading2, "Goals"),
				tplBlock(models.BlockBulletList, ""),
				tplBlock(models.BlockHeading2, "Milestones"),
				tplBlock(models.BlockTaskList, ""),
				tplBlock(models.BlockHeading2, "Risks"),
				tplBlock(models.BlockParagraph, ""),
			},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Daily Journal",
			Icon:        "📅",
			Description: "A short daily reflection",
			Content: []models.Block{
				tplBlock(models.BlockHeading2, "Today's Focus"),
				tplBlock(models.BlockParagraph, ""),
				tplBlock(models.BlockHeading2, "Notes"),
				tplBlock(models.BlockParagraph, ""),
				tplBlock(models.BlockHeading2, "Gratitude"),
				tplBlock(models.BlockBulletList, ""),
			},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Reading Notes",
			Icon:        "📚",
			Description: "Summary and highlights for a book or article",
			Content: []models.Block{
				tplBlock(models.BlockHeading2, "Summary"),
				tplBlock(models.BlockParagraph, ""),
				tplBlock(models.BlockHeading2, "Highlights"),
				tplBlock(models.BlockQuote, ""),
				tplBlock(models.BlockHeading2, "Takeaways"),
				tplBlock(models.BlockBulletList, ""),
			},
		},
		{
			ID:          uuid.NewString(),
			Name:        "Goal Tracker",
			Icon:        "🎯",
			Description: "Objectives with measurable steps",
			Content: []models.Block{
				tplBlock(models.BlockHeading2, "Objective"),
				tplBlock(models.BlockParagraph, ""),
				tplBlock(models.BlockHeading2, "Steps"),
				tplBlock(models.BlockTaskList, ""),
				tplBlock(models.BlockHeading2, "Review"),
				tplBlock(models.BlockParagraph, ""),
			},
		},
	}
}

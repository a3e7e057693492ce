package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lmercadier/revoir/internal/domain"
	"github.com/lmercadier/revoir/internal/repository"
)

// frontmatter is the optional YAML header of a vault file.
type frontmatter struct {
	Title      string `yaml:"title"`
	Type       string `yaml:"type"`
	Importance string `yaml:"importance"`
}

// Importer mirrors a directory of markdown files into the note store.
// The note ID is the vault-relative path, so re-imports update in place.
type Importer struct {
	notes     repository.NoteRepo
	vaultRoot string
	logger    *slog.Logger
}

func NewImporter(notes repository.NoteRepo, vaultRoot string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{notes: notes, vaultRoot: vaultRoot, logger: logger}
}

// ImportAll walks the vault and upserts every markdown file. Returns
// the imported notes.
func (im *Importer) ImportAll(ctx context.Context, now time.Time) ([]*domain.Note, error) {
	var imported []*domain.Note

	err := filepath.WalkDir(im.vaultRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		note, impErr := im.ImportFile(ctx, path, now)
		if impErr != nil {
			im.logger.Warn("import: file failed",
				slog.String("path", path),
				slog.String("error", impErr.Error()))
			return nil
		}
		imported = append(imported, note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault: %w", err)
	}
	return imported, nil
}

// ImportFile upserts one markdown file into the note store.
func (im *Importer) ImportFile(ctx context.Context, path string, now time.Time) (*domain.Note, error) {
	rel, err := filepath.Rel(im.vaultRoot, path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	note := noteFromFile(rel, string(data), now)

	existing, err := im.notes.GetByID(ctx, note.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := im.notes.Create(ctx, note); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		note.CreatedAt = existing.CreatedAt
		if err := im.notes.Update(ctx, note); err != nil {
			return nil, err
		}
	}
	return note, nil
}

// Remove deletes the note backing a vault path. Missing notes are not
// an error.
func (im *Importer) Remove(ctx context.Context, path string) error {
	rel, err := filepath.Rel(im.vaultRoot, path)
	if err != nil {
		return err
	}
	if err := im.notes.Delete(ctx, rel); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// noteFromFile builds a note from a vault file. Type and importance
// come from the YAML frontmatter when present, else from the top-level
// directory name, else the defaults.
func noteFromFile(rel, raw string, now time.Time) *domain.Note {
	fm, body := splitFrontmatter(raw)

	note := &domain.Note{
		ID:         rel,
		Title:      strings.TrimSuffix(filepath.Base(rel), ".md"),
		Type:       domain.TypeOther,
		Importance: domain.ImportanceNormal,
		Content:    body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if fm.Title != "" {
		note.Title = fm.Title
	}

	typ := strings.ToLower(fm.Type)
	if typ == "" {
		typ = typeFromDir(topDir(rel))
	}
	if domain.ValidNoteTypes[typ] {
		note.Type = domain.NoteType(typ)
	}

	switch imp := domain.Importance(strings.ToLower(fm.Importance)); imp {
	case domain.ImportanceCritical, domain.ImportanceHigh, domain.ImportanceNormal,
		domain.ImportanceLow, domain.ImportanceArchive:
		note.Importance = imp
	}

	return note
}

// splitFrontmatter separates an optional leading "---" YAML block from
// the markdown body. Malformed frontmatter is kept in the body.
func splitFrontmatter(raw string) (frontmatter, string) {
	var fm frontmatter

	if !strings.HasPrefix(raw, "---\n") {
		return fm, raw
	}
	rest := raw[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end == -1 {
		return fm, raw
	}
	header := rest[:end]
	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return frontmatter{}, raw
	}
	return fm, body
}

// irregularDirs maps vault directory names whose plural is not just a
// trailing "s" to their note type.
var irregularDirs = map[string]string{
	"people":    "person",
	"entities":  "entity",
	"processes": "process",
	"memories":  "memory",
}

// typeFromDir derives a note type from a top-level vault directory:
// "projects/foo.md" -> "project", "people/ada.md" -> "person".
func typeFromDir(dir string) string {
	dir = strings.ToLower(dir)
	if irregular, ok := irregularDirs[dir]; ok {
		return irregular
	}
	if !domain.ValidNoteTypes[dir] {
		dir = strings.TrimSuffix(dir, "s")
	}
	return dir
}

func topDir(rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.IndexByte(rel, '/'); i > 0 {
		return rel[:i]
	}
	return ""
}

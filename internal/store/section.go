package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ayusman/panmotion/internal/section"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// SectionRepository provides CRUD operations for sections.
type SectionRepository struct {
	db *sql.DB
}

// Sections returns the section repository for this store.
func (s *Store) Sections() *SectionRepository {
	return &SectionRepository{db: s.db}
}

const sectionColumns = `id, x, y, width, height, crop_src, crop_x0, crop_y0, has_3d, model_src`

// Create appends a section after the existing ones.
func (r *SectionRepository) Create(sec *section.Section) error {
	if err := sec.Validate(); err != nil {
		return err
	}

	_, err := r.db.Exec(
		`INSERT INTO sections (`+sectionColumns+`, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM sections))`,
		sec.ID, sec.Rect.X, sec.Rect.Y, sec.Rect.Width, sec.Rect.Height,
		sec.CropSrc, sec.CropOrigin.X0, sec.CropOrigin.Y0, sec.Has3D, sec.ModelSrc,
	)
	if err != nil {
		return fmt.Errorf("failed to create section %s: %w", sec.ID, err)
	}

	return nil
}

// GetByID retrieves a section by its ID.
func (r *SectionRepository) GetByID(id string) (*section.Section, error) {
	sec, err := scanSection(r.db.QueryRow(
		`SELECT `+sectionColumns+` FROM sections WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sec, nil
}

// List retrieves all sections in hit-test order.
func (r *SectionRepository) List() ([]section.Section, error) {
	rows, err := r.db.Query(
		`SELECT ` + sectionColumns + ` FROM sections ORDER BY position ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []section.Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *sec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}

// Update replaces an existing section, keeping its position.
func (r *SectionRepository) Update(sec *section.Section) error {
	if err := sec.Validate(); err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE sections SET x = ?, y = ?, width = ?, height = ?, crop_src = ?,
		 crop_x0 = ?, crop_y0 = ?, has_3d = ?, model_src = ? WHERE id = ?`,
		sec.Rect.X, sec.Rect.Y, sec.Rect.Width, sec.Rect.Height, sec.CropSrc,
		sec.CropOrigin.X0, sec.CropOrigin.Y0, sec.Has3D, sec.ModelSrc, sec.ID,
	)
	if err != nil {
		return err
	}

	return checkAffected(result)
}

// Delete removes a section by its ID.
func (r *SectionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return err
	}

	return checkAffected(result)
}

// Count returns the number of stored sections.
func (r *SectionRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sections`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// SeedDefaults inserts defaults when the table is empty. It reports whether
// anything was inserted.
func (r *SectionRepository) SeedDefaults(defaults []section.Section) (bool, error) {
	n, err := r.Count()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	for i := range defaults {
		if err := r.Create(&defaults[i]); err != nil {
			return false, fmt.Errorf("failed to seed sections: %w", err)
		}
	}
	return len(defaults) > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSection(row rowScanner) (*section.Section, error) {
	sec := &section.Section{}
	err := row.Scan(
		&sec.ID, &sec.Rect.X, &sec.Rect.Y, &sec.Rect.Width, &sec.Rect.Height,
		&sec.CropSrc, &sec.CropOrigin.X0, &sec.CropOrigin.Y0, &sec.Has3D, &sec.ModelSrc,
	)
	if err != nil {
		return nil, err
	}
	return sec, nil
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

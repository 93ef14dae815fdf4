package app

import (
	"errors"
	"fmt"
	"log"

	"github.com/ayusman/panmotion/internal/section"
	"github.com/ayusman/panmotion/internal/store"
)

// loadSections reads the sections from the store, seeding the built-in ones
// into an empty database. Without a store the built-in ones are used.
func (a *App) loadSections() error {
	if a.config.Store == nil {
		a.sections = section.Defaults()
		return nil
	}

	repo := a.config.Store.Sections()
	seeded, err := repo.SeedDefaults(section.Defaults())
	if err != nil {
		return err
	}
	if seeded {
		log.Println("Seeded default sections")
	}

	sections, err := repo.List()
	if err != nil {
		return fmt.Errorf("failed to load sections: %w", err)
	}
	a.sections = sections
	log.Printf("Loaded %d sections", len(sections))
	return nil
}

// Sections returns a copy of the sections in hit-test order.
func (a *App) Sections() []section.Section {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]section.Section, len(a.sections))
	copy(out, a.sections)
	return out
}

// Section returns the section with the given id.
func (a *App) Section(id string) (section.Section, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s := section.ByID(id, a.sections); s != nil {
		return *s, nil
	}
	return section.Section{}, ErrUnknownSection
}

// SectionAt returns the section under the container point (x, y).
func (a *App) SectionAt(x, y float64) (section.Section, bool) {
	sections := a.Sections()
	if s := section.HitTest(x, y, a.engine.Transform(), sections); s != nil {
		return *s, true
	}
	return section.Section{}, false
}

// AddSection validates, stores and appends a section.
func (a *App) AddSection(s section.Section) error {
	if err := s.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if section.ByID(s.ID, a.sections) != nil {
		return fmt.Errorf("section %s already exists", s.ID)
	}
	if a.config.Store != nil {
		if err := a.config.Store.Sections().Create(&s); err != nil {
			return err
		}
	}

	// Copy on write; readers may still hold the old slice.
	next := make([]section.Section, 0, len(a.sections)+1)
	next = append(next, a.sections...)
	a.sections = append(next, s)
	return nil
}

// RemoveSection deletes a section.
func (a *App) RemoveSection(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i := range a.sections {
		if a.sections[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownSection
	}

	if a.config.Store != nil {
		if err := a.config.Store.Sections().Delete(id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	next := make([]section.Section, 0, len(a.sections)-1)
	next = append(next, a.sections[:idx]...)
	a.sections = append(next, a.sections[idx+1:]...)
	return nil
}

// SelectSection starts the transition into a section: the phase moves to
// MAIN_TRANSITION_OUT, the view animates to frame the section and the phase
// moves on to SECTION_ENTER when the animation lands.
func (a *App) SelectSection(id string) error {
	s, err := a.Section(id)
	if err != nil {
		return err
	}
	if err := a.flow.Select(id); err != nil {
		return err
	}

	target := section.Frame(s, a.engine.Container(), a.config.FramePadding, a.engine.Config())
	a.engine.AnimateTo(target, 0, func() {
		if err := a.flow.Enter(); err != nil {
			log.Printf("Failed to enter section %s: %v", id, err)
		}
	})
	return nil
}

package schedule

import (
	"errors"
	"fmt"
	"sort"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

// ErrInvalidConfiguration is returned for bad package-builder parameters.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Package bundles up to N mutually non-conflicting sections for bulk
// enrollment. Transient: consumed immediately, never persisted.
type Package struct {
	Sections []models.Section
	cells    CellSet
}

// Size returns the number of sections in the package.
func (p *Package) Size() int { return len(p.Sections) }

func (p *Package) accepts(secCells CellSet, maxSize int) bool {
	return len(p.Sections) < maxSize && !Conflicts(p.cells, secCells)
}

func (p *Package) add(sec models.Section, secCells CellSet) {
	p.Sections = append(p.Sections, sec)
	if p.cells == nil {
		p.cells = make(CellSet)
	}
	p.cells.Merge(secCells)
}

// BuildPackages partitions sections into packages of at most maxSize
// sections with no pairwise schedule conflict, first-fit greedy.
//
// Sections are processed in ascending order of their stable code so two
// runs over the same catalog produce identical packages. Each section goes
// into the first already-open package that has room and no conflict, else
// it opens a new one. The result is sorted by descending size, creation
// order breaking ties, so fuller bundles come first.
func BuildPackages(sections []models.Section, maxSize int) ([]*Package, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("%w: package size %d", ErrInvalidConfiguration, maxSize)
	}

	ordered := make([]models.Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Code() < ordered[j].Code()
	})

	var packages []*Package
	for _, sec := range ordered {
		secCells, err := OccupiedCells(sec.Schedule)
		if err != nil {
			return nil, err
		}
		placed := false
		for _, pkg := range packages {
			if pkg.accepts(secCells, maxSize) {
				pkg.add(sec, secCells)
				placed = true
				break
			}
		}
		if !placed {
			pkg := &Package{}
			pkg.add(sec, secCells)
			packages = append(packages, pkg)
		}
	}

	sort.SliceStable(packages, func(i, j int) bool {
		return packages[i].Size() > packages[j].Size()
	})
	return packages, nil
}

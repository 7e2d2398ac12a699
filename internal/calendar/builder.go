package calendar

import (
	"fmt"
)

// phase tracks how far a Builder has progressed.
type phase int

const (
	phaseInit phase = iota
	phaseMovable
	phaseFixed
	phaseResolved
	phaseFrozen
)

func (p phase) String() string {
	switch p {
	case phaseInit:
		return "init"
	case phaseMovable:
		return "movable blocks"
	case phaseFixed:
		return "fixed days"
	case phaseResolved:
		return "collisions"
	case phaseFrozen:
		return "frozen"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Builder owns the ledger of one year and fills it in a fixed sequence:
//
//	NewBuilder -> InsertMovableBlocks -> MergeFixedDays -> ResolveCollisions -> Freeze
//
// Each step runs exactly once and only after the previous one; anything
// else fails with ErrPhaseOrder. A Builder is not safe for concurrent use,
// but separate Builders share nothing.
type Builder struct {
	tables Tables
	ledger *ledger
	phase  phase
}

// NewBuilder creates a builder with an empty ledger for year.
func NewBuilder(year int, tables Tables) *Builder {
	return &Builder{
		tables: tables,
		ledger: newLedger(year),
		phase:  phaseInit,
	}
}

// advance moves the builder from phase from to phase to.
func (b *Builder) advance(from, to phase) error {
	if b.phase != from {
		return fmt.Errorf("%w: cannot run %s after %s", ErrPhaseOrder, to, b.phase)
	}
	b.phase = to
	return nil
}

// InsertMovableBlocks lays every block of MovablePlan onto the ledger.
func (b *Builder) InsertMovableBlocks() error {
	if err := b.advance(phaseInit, phaseMovable); err != nil {
		return err
	}
	for _, p := range MovablePlan(b.ledger.year) {
		block, err := b.tables.Block(p.Block)
		if err != nil {
			return fmt.Errorf("block %s: %w", p.Block, err)
		}
		if err := b.ledger.insert(p.Start, block, p.options()); err != nil {
			return fmt.Errorf("insert block %s: %w", p.Block, err)
		}
	}
	return nil
}

// MergeFixedDays appends the fixed-date identifiers to every day.
func (b *Builder) MergeFixedDays() error {
	if err := b.advance(phaseMovable, phaseFixed); err != nil {
		return err
	}
	b.ledger.mergeFixed(b.tables)
	return nil
}

// ResolveCollisions trims days that collected more than two identifiers.
func (b *Builder) ResolveCollisions() error {
	if err := b.advance(phaseFixed, phaseResolved); err != nil {
		return err
	}
	b.ledger.resolveCollisions()
	return nil
}

// Freeze hands the ledger over to an immutable LiturgicalYear. The builder
// cannot be used afterwards.
func (b *Builder) Freeze() (*LiturgicalYear, error) {
	if err := b.advance(phaseResolved, phaseFrozen); err != nil {
		return nil, err
	}
	y := newLiturgicalYear(b.ledger.year, b.ledger.entries)
	b.ledger = nil
	return y, nil
}

// Build runs every phase for year.
func Build(year int, tables Tables) (*LiturgicalYear, error) {
	b := NewBuilder(year, tables)
	if err := b.InsertMovableBlocks(); err != nil {
		return nil, fmt.Errorf("build %d: %w", year, err)
	}
	if err := b.MergeFixedDays(); err != nil {
		return nil, fmt.Errorf("build %d: %w", year, err)
	}
	if err := b.ResolveCollisions(); err != nil {
		return nil, fmt.Errorf("build %d: %w", year, err)
	}
	return b.Freeze()
}

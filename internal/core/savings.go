package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultJarCategory = "Загальне"
	DefaultJarColor    = "#4CAF50"
)

type (
	// SavingsJar is a labeled pot with a target. CurrentAmount only moves
	// through an atomic deposit; it is never overwritten directly.
	SavingsJar struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Color         string          `json:"color"`
		OwnerID       string          `json:"ownerId"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
		Active        bool            `json:"active"`
		Description   string          `json:"description"`
		Category      string          `json:"category"`
	}

	// JarDraft is the input for creating a jar.
	JarDraft struct {
		Name         string          `json:"name"`
		TargetAmount decimal.Decimal `json:"targetAmount"`
		Description  string          `json:"description"`
		Category     string          `json:"category"`
		Color        string          `json:"color"`
	}

	// JarPatch updates the fields that are set. Amounts are deliberately absent.
	JarPatch struct {
		Name         *string          `json:"name,omitempty"`
		TargetAmount *decimal.Decimal `json:"targetAmount,omitempty"`
		Description  *string          `json:"description,omitempty"`
		Category     *string          `json:"category,omitempty"`
		Color        *string          `json:"color,omitempty"`
		Active       *bool            `json:"active,omitempty"`
	}
)

// Normalize fills defaults and trims text fields.
func (d JarDraft) Normalize() JarDraft {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
	if strings.TrimSpace(d.Category) == "" {
		d.Category = DefaultJarCategory
	}
	if strings.TrimSpace(d.Color) == "" {
		d.Color = DefaultJarColor
	}
	return d
}

func (d JarDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if !d.TargetAmount.IsPositive() {
		return ErrInvalidTarget
	}
	return nil
}

func (p JarPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	if p.TargetAmount != nil && !p.TargetAmount.IsPositive() {
		return ErrInvalidTarget
	}
	return nil
}

// Apply returns j with the patch applied. UpdatedAt is left to the caller.
func (p JarPatch) Apply(j SavingsJar) SavingsJar {
	if p.Name != nil {
		j.Name = strings.TrimSpace(*p.Name)
	}
	if p.TargetAmount != nil {
		j.TargetAmount = *p.TargetAmount
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Category != nil {
		j.Category = *p.Category
	}
	if p.Color != nil {
		j.Color = *p.Color
	}
	if p.Active != nil {
		j.Active = *p.Active
	}
	return j
}

// Progress returns the share of the target reached, in [0, 1].
func (j SavingsJar) Progress() float64 {
	if !j.TargetAmount.IsPositive() {
		return 0
	}
	p, _ := j.CurrentAmount.Div(j.TargetAmount).Float64()
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

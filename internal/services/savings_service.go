package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"budgetik/internal/core"
	"budgetik/internal/log"
	"budgetik/internal/store"
)

// SavingsService manages savings jars.
type SavingsService struct {
	jars   store.JarStore
	clock  clockwork.Clock
	logger *log.Logger
}

func NewSavingsService(jars store.JarStore, clock clockwork.Clock, logger *log.Logger) *SavingsService {
	return &SavingsService{
		jars:   jars,
		clock:  clock,
		logger: logger.WithComponent(log.ComponentSavings),
	}
}

// Create opens a new active jar for owner with a zero balance.
func (s *SavingsService) Create(ctx context.Context, owner string, draft core.JarDraft) (core.SavingsJar, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return core.SavingsJar{}, fmt.Errorf("owner: %w", core.ErrEmptyName)
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return core.SavingsJar{}, err
	}

	now := s.clock.Now().UTC()
	jar := core.SavingsJar{
		ID:            uuid.NewString(),
		Name:          draft.Name,
		TargetAmount:  draft.TargetAmount,
		CurrentAmount: decimal.Zero,
		Color:         draft.Color,
		OwnerID:       owner,
		CreatedAt:     now,
		UpdatedAt:     now,
		Active:        true,
		Description:   draft.Description,
		Category:      draft.Category,
	}
	if err := s.jars.CreateJar(ctx, jar); err != nil {
		return core.SavingsJar{}, fmt.Errorf("create jar: %w", err)
	}
	s.logger.InfoContext(ctx, "Savings jar created", log.FieldJarID, jar.ID, log.FieldTarget, jar.TargetAmount.String())
	return jar, nil
}

// List returns owner's active jars, newest first, with their combined amount.
func (s *SavingsService) List(ctx context.Context, owner string) (core.SavingsSummary, error) {
	jars, err := s.jars.ListJars(ctx, owner)
	if err != nil {
		return core.SavingsSummary{}, fmt.Errorf("list jars: %w", err)
	}
	total := decimal.Zero
	for _, j := range jars {
		total = total.Add(j.CurrentAmount)
	}
	return core.SavingsSummary{Total: total, Jars: jars}, nil
}

// Update applies a partial patch. The current amount cannot be patched.
func (s *SavingsService) Update(ctx context.Context, id string, patch core.JarPatch) (core.SavingsJar, error) {
	if err := patch.Validate(); err != nil {
		return core.SavingsJar{}, err
	}
	jar, err := s.jars.UpdateJar(ctx, id, patch, s.clock.Now().UTC())
	if err != nil {
		return core.SavingsJar{}, fmt.Errorf("update jar: %w", err)
	}
	return jar, nil
}

// Deposit adds a positive amount to an active jar atomically.
func (s *SavingsService) Deposit(ctx context.Context, id string, amount decimal.Decimal) (core.SavingsJar, error) {
	if !amount.IsPositive() {
		return core.SavingsJar{}, core.ErrInvalidAmount
	}
	jar, err := s.jars.AddToJar(ctx, id, amount, s.clock.Now().UTC())
	if err != nil {
		return core.SavingsJar{}, fmt.Errorf("deposit: %w", err)
	}
	s.logger.InfoContext(ctx, "Savings deposit",
		log.FieldJarID, id,
		log.FieldAmount, amount.String(),
		log.FieldOperation, log.OpDeposit)
	return jar, nil
}

// Delete deactivates a jar. Jars are never physically removed.
func (s *SavingsService) Delete(ctx context.Context, id string) error {
	if err := s.jars.DeactivateJar(ctx, id, s.clock.Now().UTC()); err != nil {
		return fmt.Errorf("delete jar: %w", err)
	}
	s.logger.InfoContext(ctx, "Savings jar deactivated", log.FieldJarID, id)
	return nil
}

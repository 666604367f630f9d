package combat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/initiative-bot/internal/combat"
	"github.com/KirkDiggler/initiative-bot/internal/combat/attack"
	"github.com/KirkDiggler/initiative-bot/internal/dice"
	"github.com/KirkDiggler/initiative-bot/internal/domain/character"
	"github.com/KirkDiggler/initiative-bot/internal/effects"
	dnderr "github.com/KirkDiggler/initiative-bot/internal/errors"
	"github.com/KirkDiggler/initiative-bot/internal/logging"
	"github.com/KirkDiggler/initiative-bot/internal/repositories/initiative"
)

// Service is what chat commands call to run a combat.
type Service interface {
	// StartCombat rolls initiative for the named characters
	StartCombat(ctx context.Context, names []string) (*combat.StartReport, error)

	// NextTurn advances the turn order and processes effects
	NextTurn(ctx context.Context) (*combat.TurnReport, error)

	// EndCombat resets the tracker without touching characters
	EndCombat(ctx context.Context) error

	AddCombatant(ctx context.Context, name string) error
	RemoveCombatant(ctx context.Context, name string) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error

	// Status reports where the combat stands
	Status(ctx context.Context) *Status

	// ApplyEffect applies an effect to a character, timed against the
	// current round
	ApplyEffect(ctx context.Context, target string, effect character.Effect) (string, error)

	// RemoveEffect removes an effect by name
	RemoveEffect(ctx context.Context, target, effectName string) (string, error)

	// EffectSummary lists a character's active effects by category
	EffectSummary(ctx context.Context, name string) (string, error)

	// Roll evaluates a dice expression, optionally for a character
	Roll(ctx context.Context, input *RollInput) (*RollResult, error)

	// Attack resolves an attack roll against named targets
	Attack(ctx context.Context, input *AttackInput) (*AttackResult, error)

	SaveBattle(ctx context.Context, name, description string) (*initiative.Save, error)
	Quicksave(ctx context.Context) (*initiative.Save, error)

	// LoadBattle restores a saved turn order, ending any running combat
	LoadBattle(ctx context.Context, name string) (*initiative.Save, error)

	ListSaves(ctx context.Context) ([]*initiative.Save, error)
	DeleteSave(ctx context.Context, name string) error
	SetAutosave(enabled bool)
}

// Status is a snapshot of the tracker.
type Status struct {
	State    combat.State
	Round    int
	Current  string
	Order    []string
	Autosave bool
}

// RollInput contains data for a dice roll
type RollInput struct {
	Expression string
	// Character is optional; stat tokens need it.
	Character string
	Concise   bool
}

type RollResult struct {
	Total     int
	Formatted string
	Detail    string
}

// AttackInput contains data for an attack
type AttackInput struct {
	Attacker string
	Targets  []string
	Roll     string
	// Damage is a comma separated list such as "2d6+str slashing, 1d4 fire".
	Damage      string
	CritRange   int
	AoE         attack.AoEMode
	Reason      string
	ApplyDamage bool
}

type AttackResult struct {
	Message string
	Detail  string
}

type service struct {
	scheduler  *combat.Scheduler
	characters character.Store
	effects    *effects.Manager
	saves      initiative.Repository
	dice       *dice.Calculator
	attacks    *attack.Calculator
	logger     *slog.Logger
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Scheduler  *combat.Scheduler
	Characters character.Store
	Effects    *effects.Manager
	Saves      initiative.Repository
	Dice       *dice.Calculator
	Attacks    *attack.Calculator
	Logger     *slog.Logger
}

// NewService creates a new combat service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("service config is required")
	}
	if cfg.Scheduler == nil {
		panic("scheduler is required")
	}
	if cfg.Characters == nil {
		panic("character store is required")
	}
	if cfg.Saves == nil {
		panic("save repository is required")
	}

	svc := &service{
		scheduler:  cfg.Scheduler,
		characters: cfg.Characters,
		effects:    cfg.Effects,
		saves:      cfg.Saves,
		dice:       cfg.Dice,
		attacks:    cfg.Attacks,
		logger:     logging.Component(cfg.Logger, "combat"),
	}
	if svc.effects == nil {
		svc.effects = effects.NewManager(nil, cfg.Logger)
	}
	env := svc.effects.Registry().Env()
	if svc.dice == nil {
		svc.dice = env.Dice
	}
	if svc.attacks == nil {
		svc.attacks = env.Attacks
	}
	return svc
}

func (s *service) StartCombat(ctx context.Context, names []string) (*combat.StartReport, error) {
	return s.scheduler.StartCombat(ctx, names)
}

func (s *service) NextTurn(ctx context.Context) (*combat.TurnReport, error) {
	return s.scheduler.NextTurn(ctx)
}

func (s *service) EndCombat(ctx context.Context) error {
	return s.scheduler.EndCombat(ctx)
}

func (s *service) AddCombatant(ctx context.Context, name string) error {
	return s.scheduler.AddCombatant(ctx, name)
}

func (s *service) RemoveCombatant(ctx context.Context, name string) error {
	return s.scheduler.RemoveCombatant(ctx, name)
}

func (s *service) Pause(ctx context.Context) error {
	return s.scheduler.Pause(ctx)
}

func (s *service) Resume(ctx context.Context) error {
	return s.scheduler.Resume(ctx)
}

func (s *service) Status(_ context.Context) *Status {
	return &Status{
		State:    s.scheduler.State(),
		Round:    s.scheduler.Round(),
		Current:  s.scheduler.Current(),
		Order:    s.scheduler.Order(),
		Autosave: s.scheduler.Autosave(),
	}
}

func (s *service) ApplyEffect(ctx context.Context, target string, effect character.Effect) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", dnderr.InvalidArgument("target is required")
	}
	return s.scheduler.ApplyEffect(ctx, target, effect)
}

func (s *service) RemoveEffect(ctx context.Context, target, effectName string) (string, error) {
	if strings.TrimSpace(effectName) == "" {
		return "", dnderr.InvalidArgument("effect name is required")
	}
	return s.scheduler.RemoveEffect(ctx, target, effectName)
}

func (s *service) EffectSummary(ctx context.Context, name string) (string, error) {
	var summary string
	err := s.scheduler.Exclusive(ctx, func(ctx context.Context) error {
		c, err := s.characters.Get(ctx, name)
		if err != nil {
			return err
		}
		summary = effects.Summary(c)
		return nil
	})
	return summary, err
}

func (s *service) Roll(ctx context.Context, input *RollInput) (*RollResult, error) {
	if input == nil || strings.TrimSpace(input.Expression) == "" {
		return nil, dnderr.InvalidArgument("dice expression is required")
	}

	var result *RollResult
	err := s.scheduler.Exclusive(ctx, func(ctx context.Context) error {
		var c *character.Character
		if input.Character != "" {
			var err error
			if c, err = s.characters.Get(ctx, input.Character); err != nil {
				return err
			}
		}

		total, formatted, detail, err := s.dice.CalculateComplex(input.Expression, c, input.Concise)
		if err != nil {
			return err
		}
		result = &RollResult{Total: total, Formatted: formatted, Detail: detail}

		// Next-roll modifiers were consumed.
		if c != nil {
			if err := s.characters.Save(ctx, c); err != nil {
				return dnderr.Wrapf(err, "failed to save %s", c.Name)
			}
		}
		return nil
	})
	return result, err
}

func (s *service) Attack(ctx context.Context, input *AttackInput) (*AttackResult, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("attack input is required")
	}

	var result *AttackResult
	err := s.scheduler.Exclusive(ctx, func(ctx context.Context) error {
		params := &attack.Params{
			Roll:        input.Roll,
			Damage:      attack.ParseDamage(input.Damage),
			CritRange:   input.CritRange,
			AoE:         input.AoE,
			Reason:      input.Reason,
			ApplyDamage: input.ApplyDamage,
		}

		if input.Attacker != "" {
			attacker, err := s.characters.Get(ctx, input.Attacker)
			if err != nil {
				return err
			}
			params.Attacker = attacker
		}
		for _, name := range input.Targets {
			target, err := s.characters.Get(ctx, name)
			if err != nil {
				return err
			}
			params.Targets = append(params.Targets, target)
		}

		message, detail, err := s.attacks.ProcessAttack(ctx, params)
		if err != nil {
			return err
		}
		result = &AttackResult{Message: message, Detail: detail}

		if params.Attacker != nil {
			if err := s.characters.Save(ctx, params.Attacker); err != nil {
				return dnderr.Wrapf(err, "failed to save %s", params.Attacker.Name)
			}
		}
		return nil
	})
	return result, err
}

func (s *service) SaveBattle(ctx context.Context, name, description string) (*initiative.Save, error) {
	return s.scheduler.Save(ctx, name, description)
}

func (s *service) Quicksave(ctx context.Context) (*initiative.Save, error) {
	return s.scheduler.Quicksave(ctx)
}

func (s *service) LoadBattle(ctx context.Context, name string) (*initiative.Save, error) {
	save, err := s.saves.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.scheduler.Restore(ctx, save); err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("battle loaded", "save", save.Name, "round", save.RoundNumber)
	return save, nil
}

func (s *service) ListSaves(ctx context.Context) ([]*initiative.Save, error) {
	return s.saves.List(ctx)
}

func (s *service) DeleteSave(ctx context.Context, name string) error {
	return s.saves.Delete(ctx, name)
}

func (s *service) SetAutosave(enabled bool) {
	s.scheduler.SetAutosave(enabled)
	s.logger.Info("autosave toggled", "enabled", enabled)
}

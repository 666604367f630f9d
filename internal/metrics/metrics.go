package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scheduler metrics
var (
	TurnsAdvanced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTurnsAdvanced,
			Help: HelpTextTurnsAdvanced,
		},
	)

	TurnsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameTurnsSkipped,
			Help: HelpTextTurnsSkipped,
		},
	)

	RoundsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameRoundsStarted,
			Help: HelpTextRoundsStarted,
		},
	)

	CombatsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCombatsStarted,
			Help: HelpTextCombatsStarted,
		},
	)

	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameTurnDuration,
			Help:    HelpTextTurnDuration,
			Buckets: TurnLatencyBuckets,
		},
	)
)

// Effect metrics
var (
	EffectsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEffectsApplied,
			Help: HelpTextEffectsApplied,
		},
		[]string{LabelType},
	)

	EffectsExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEffectsExpired,
			Help: HelpTextEffectsExpired,
		},
		[]string{LabelType},
	)

	EffectFaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEffectFaults,
			Help: HelpTextEffectFaults,
		},
		[]string{LabelPhase},
	)
)

// Dice and attack metrics
var (
	DiceEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDiceEvaluations,
			Help: HelpTextDiceEvaluations,
		},
		[]string{LabelKind},
	)

	DiceErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDiceErrors,
			Help: HelpTextDiceErrors,
		},
	)

	AttackOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameAttackOutcomes,
			Help: HelpTextAttackOutcomes,
		},
		[]string{LabelOutcome},
	)

	DamageApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDamageApplied,
			Help: HelpTextDamageApplied,
		},
		[]string{LabelType},
	)
)

// Repository metrics
var (
	CharacterCacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCharacterCacheOp,
			Help: HelpTextCharacterCacheOp,
		},
		[]string{LabelResult},
	)
)

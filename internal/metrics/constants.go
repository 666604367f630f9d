package metrics

// Metric names
const (
	MetricNameTurnsAdvanced    = "initiative_turns_advanced_total"
	MetricNameTurnsSkipped     = "initiative_turns_skipped_total"
	MetricNameRoundsStarted    = "initiative_rounds_started_total"
	MetricNameCombatsStarted   = "initiative_combats_started_total"
	MetricNameEffectsApplied   = "effects_applied_total"
	MetricNameEffectsExpired   = "effects_expired_total"
	MetricNameEffectFaults     = "effect_processing_faults_total"
	MetricNameDiceEvaluations  = "dice_expressions_evaluated_total"
	MetricNameDiceErrors       = "dice_expression_errors_total"
	MetricNameAttackOutcomes   = "attack_outcomes_total"
	MetricNameDamageApplied    = "damage_applied_total"
	MetricNameTurnDuration     = "initiative_turn_processing_seconds"
	MetricNameCharacterCacheOp = "character_cache_operations_total"
)

// Help text
const (
	HelpTextTurnsAdvanced    = "Total number of turns advanced by the scheduler"
	HelpTextTurnsSkipped     = "Total number of turns skipped by effects"
	HelpTextRoundsStarted    = "Total number of combat rounds started"
	HelpTextCombatsStarted   = "Total number of combats started"
	HelpTextEffectsApplied   = "Total number of effects applied, by effect type"
	HelpTextEffectsExpired   = "Total number of effects removed after expiry, by effect type"
	HelpTextEffectFaults     = "Total number of effect lifecycle hooks that failed, by phase"
	HelpTextDiceEvaluations  = "Total number of dice expressions evaluated, by kind"
	HelpTextDiceErrors       = "Total number of rejected dice expressions"
	HelpTextAttackOutcomes   = "Total number of attack resolutions against a target, by outcome"
	HelpTextDamageApplied    = "Total damage applied to characters, by damage type"
	HelpTextTurnDuration     = "Time spent processing a next turn call"
	HelpTextCharacterCacheOp = "Character cache lookups, by result"
)

// Label names
const (
	LabelType    = "type"
	LabelPhase   = "phase"
	LabelKind    = "kind"
	LabelOutcome = "outcome"
	LabelResult  = "result"
)

// Label values
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
	OutcomeCrit = "crit"

	ResultHit  = "hit"
	ResultMiss = "miss"

	KindStandalone = "standalone"
	KindRoll       = "roll"
	KindMultihit   = "multihit"

	PhaseApply     = "apply"
	PhaseTurnStart = "turn_start"
	PhaseTurnEnd   = "turn_end"
	PhaseExpire    = "expire"
)

// TurnLatencyBuckets covers in-memory processing up to slow store writes.
var TurnLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

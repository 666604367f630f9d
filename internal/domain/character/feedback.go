package character

// EffectFeedback is a deferred expiry notice surfaced at the start of the
// character's next turn.
type EffectFeedback struct {
	EffectName    string `json:"effect_name"`
	ExpiryMessage string `json:"expiry_message"`
	RoundExpired  int    `json:"round_expired"`
	TurnExpired   string `json:"turn_expired"`
	Displayed     bool   `json:"displayed"`
}

// AddEffectFeedback queues a notice unless one for the same effect is
// already pending.
func (c *Character) AddEffectFeedback(effectName, message string, round int, turn string) {
	if c.HasPendingFeedback(effectName) {
		return
	}
	c.EffectFeedback = append(c.EffectFeedback, &EffectFeedback{
		EffectName:    effectName,
		ExpiryMessage: message,
		RoundExpired:  round,
		TurnExpired:   turn,
	})
}

// HasPendingFeedback reports an undisplayed notice for effectName.
func (c *Character) HasPendingFeedback(effectName string) bool {
	for _, fb := range c.EffectFeedback {
		if fb.EffectName == effectName && !fb.Displayed {
			return true
		}
	}
	return false
}

func (c *Character) PendingFeedback() []*EffectFeedback {
	var pending []*EffectFeedback
	for _, fb := range c.EffectFeedback {
		if !fb.Displayed {
			pending = append(pending, fb)
		}
	}
	return pending
}

func (c *Character) MarkFeedbackDisplayed() {
	for _, fb := range c.EffectFeedback {
		fb.Displayed = true
	}
}

// ClearOldFeedback forgets notices that were already shown.
func (c *Character) ClearOldFeedback() {
	kept := c.EffectFeedback[:0]
	for _, fb := range c.EffectFeedback {
		if !fb.Displayed {
			kept = append(kept, fb)
		}
	}
	c.EffectFeedback = kept
}

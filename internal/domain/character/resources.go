package character

// Resources tracks HP, MP and the temporary HP pool.
type Resources struct {
	CurrentHP     int `json:"current_hp"`
	MaxHP         int `json:"max_hp"`
	CurrentMP     int `json:"current_mp"`
	MaxMP         int `json:"max_mp"`
	CurrentTempHP int `json:"current_temp_hp"`
	MaxTempHP     int `json:"max_temp_hp"`
}

func NewResources(maxHP, maxMP int) Resources {
	return Resources{
		CurrentHP: maxHP,
		MaxHP:     maxHP,
		CurrentMP: maxMP,
		MaxMP:     maxMP,
	}
}

// TakeDamage removes HP after temp HP has already been accounted for.
// Returns the HP actually lost.
func (r *Resources) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := r.CurrentHP
	r.CurrentHP -= amount
	if r.CurrentHP < 0 {
		r.CurrentHP = 0
	}
	return before - r.CurrentHP
}

// Heal restores HP up to max and returns the amount restored.
func (r *Resources) Heal(amount int) int {
	if amount <= 0 || r.CurrentHP >= r.MaxHP {
		return 0
	}
	before := r.CurrentHP
	r.CurrentHP += amount
	if r.CurrentHP > r.MaxHP {
		r.CurrentHP = r.MaxHP
	}
	return r.CurrentHP - before
}

// SpendMP removes MP down to zero and returns the amount removed.
func (r *Resources) SpendMP(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := r.CurrentMP
	r.CurrentMP -= amount
	if r.CurrentMP < 0 {
		r.CurrentMP = 0
	}
	return before - r.CurrentMP
}

// RestoreMP adds MP up to max and returns the amount restored.
func (r *Resources) RestoreMP(amount int) int {
	if amount <= 0 || r.CurrentMP >= r.MaxMP {
		return 0
	}
	before := r.CurrentMP
	r.CurrentMP += amount
	if r.CurrentMP > r.MaxMP {
		r.CurrentMP = r.MaxMP
	}
	return r.CurrentMP - before
}

// AddTempHP grows the temp HP pool. Several shields stack into one pool.
func (r *Resources) AddTempHP(amount int) {
	if amount <= 0 {
		return
	}
	r.CurrentTempHP += amount
	r.MaxTempHP += amount
}

// AbsorbTempHP drains up to amount from the pool and returns
// (absorbed, remaining damage).
func (r *Resources) AbsorbTempHP(amount int) (int, int) {
	if amount <= 0 || r.CurrentTempHP <= 0 {
		return 0, amount
	}
	absorbed := min(r.CurrentTempHP, amount)
	r.CurrentTempHP -= absorbed
	if r.CurrentTempHP == 0 {
		r.MaxTempHP = 0
	}
	return absorbed, amount - absorbed
}

// RemoveTempHP shrinks the pool when a shield goes away.
func (r *Resources) RemoveTempHP(amount int) {
	if amount <= 0 {
		return
	}
	r.CurrentTempHP = max(0, r.CurrentTempHP-amount)
	r.MaxTempHP = max(r.CurrentTempHP, r.MaxTempHP-amount)
	if r.CurrentTempHP == 0 {
		r.MaxTempHP = 0
	}
}

func (r *Resources) ClearTempHP() {
	r.CurrentTempHP = 0
	r.MaxTempHP = 0
}

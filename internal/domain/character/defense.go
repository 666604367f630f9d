package character

import "sort"

// ACModifier is one contribution to armor class, keyed by effect ID.
type ACModifier struct {
	Amount   int `json:"amount"`
	Priority int `json:"priority"`
}

// ACManager derives current AC from a base and a set of modifiers.
// Modifiers apply in descending priority, ties broken by ID.
type ACManager struct {
	BaseAC    int                   `json:"base_ac"`
	Modifiers map[string]ACModifier `json:"modifiers,omitempty"`
}

func NewACManager(baseAC int) ACManager {
	return ACManager{BaseAC: baseAC}
}

// Set adds or replaces a modifier and returns the new AC.
func (m *ACManager) Set(id string, amount, priority int) int {
	if m.Modifiers == nil {
		m.Modifiers = make(map[string]ACModifier)
	}
	m.Modifiers[id] = ACModifier{Amount: amount, Priority: priority}
	return m.Calculate()
}

// Remove drops a modifier and returns the new AC.
func (m *ACManager) Remove(id string) int {
	delete(m.Modifiers, id)
	return m.Calculate()
}

func (m *ACManager) Clear() int {
	m.Modifiers = nil
	return m.BaseAC
}

// Calculate returns base AC plus every modifier.
func (m *ACManager) Calculate() int {
	ids := make([]string, 0, len(m.Modifiers))
	for id := range m.Modifiers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.Modifiers[ids[i]], m.Modifiers[ids[j]]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return ids[i] < ids[j]
	})

	ac := m.BaseAC
	for _, id := range ids {
		ac += m.Modifiers[id].Amount
	}
	return ac
}

// Defense holds AC and the natural and effect-sourced damage modifiers.
// All maps are keyed by damage type name and hold percentages.
type Defense struct {
	BaseAC                 int            `json:"base_ac"`
	CurrentAC              int            `json:"current_ac"`
	AC                     ACManager      `json:"ac_manager"`
	NaturalResistances     map[string]int `json:"natural_resistances,omitempty"`
	NaturalVulnerabilities map[string]int `json:"natural_vulnerabilities,omitempty"`
	DamageResistances      map[string]int `json:"damage_resistances,omitempty"`
	DamageVulnerabilities  map[string]int `json:"damage_vulnerabilities,omitempty"`
}

func NewDefense(baseAC int) Defense {
	return Defense{
		BaseAC:    baseAC,
		CurrentAC: baseAC,
		AC:        NewACManager(baseAC),
	}
}

// TotalResistance is natural plus effect resistance. Not capped.
func (d *Defense) TotalResistance(damageType string) int {
	return d.NaturalResistances[damageType] + d.DamageResistances[damageType]
}

// TotalVulnerability is natural plus effect vulnerability. Not capped.
func (d *Defense) TotalVulnerability(damageType string) int {
	return d.NaturalVulnerabilities[damageType] + d.DamageVulnerabilities[damageType]
}

// AddResistance adjusts the effect-sourced resistance for a type.
func (d *Defense) AddResistance(damageType string, percent int) {
	d.DamageResistances = adjust(d.DamageResistances, damageType, percent)
}

// AddVulnerability adjusts the effect-sourced vulnerability for a type.
func (d *Defense) AddVulnerability(damageType string, percent int) {
	d.DamageVulnerabilities = adjust(d.DamageVulnerabilities, damageType, percent)
}

// ModifyAC registers an AC modifier and refreshes CurrentAC.
func (d *Defense) ModifyAC(id string, amount, priority int) int {
	d.AC.BaseAC = d.BaseAC
	d.CurrentAC = d.AC.Set(id, amount, priority)
	return d.CurrentAC
}

// RemoveACModifier drops a modifier and refreshes CurrentAC.
func (d *Defense) RemoveACModifier(id string) int {
	d.AC.BaseAC = d.BaseAC
	d.CurrentAC = d.AC.Remove(id)
	return d.CurrentAC
}

// ResetCombatState drops effect-sourced modifiers and restores base AC.
func (d *Defense) ResetCombatState() {
	d.DamageResistances = nil
	d.DamageVulnerabilities = nil
	d.AC.BaseAC = d.BaseAC
	d.CurrentAC = d.AC.Clear()
}

func adjust(values map[string]int, key string, delta int) map[string]int {
	if values == nil {
		values = make(map[string]int)
	}
	values[key] += delta
	if values[key] == 0 {
		delete(values, key)
	}
	return values
}

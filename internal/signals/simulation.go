package signals

// SimulationStep is one stage of the attack a message would lead to
type SimulationStep struct {
	Step        int    `json:"step"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

const simulationThreshold = 50

var attackPath = []SimulationStep{
	{Step: 1, Title: "Fake Login Page", Description: "User is redirected to a fake login page."},
	{Step: 2, Title: "Credential Harvesting", Description: "Victim enters credentials captured by attacker."},
	{Step: 3, Title: "Account Takeover", Description: "Attacker accesses victim's real account."},
	{Step: 4, Title: "Financial/Data Loss", Description: "Sensitive data or funds are stolen."},
}

// AttackSimulation returns the likely attack path for risky messages and an empty list otherwise
func AttackSimulation(score float64) []SimulationStep {
	if score < simulationThreshold {
		return []SimulationStep{}
	}

	return append([]SimulationStep(nil), attackPath...)
}

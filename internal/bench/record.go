package bench

// EvaluationRecord is one question's full outcome: the actor's answer plus
// the judge's parsed assessment. Field names match the JSON report format.
type EvaluationRecord struct {
	ID                string `json:"id"`
	Category          string `json:"category"`
	Question          string `json:"question"`
	RiskType          string `json:"risk_type"`
	Role              string `json:"role"`
	Response          string `json:"response"`
	EthicalEvalText   string `json:"ethical_eval_text"`
	EthicalEvalResult string `json:"ethical_eval_result"`
	IsRefusal         bool   `json:"is_refusal"`
	IsAttackSuccess   bool   `json:"is_attack_success"`
	ParseOK           bool   `json:"parse_ok"`
}

// BatchResult aggregates one role's run. Completed can be lower than
// TotalQuestions when actor calls failed and their questions were skipped.
type BatchResult struct {
	Role           string             `json:"role"`
	TotalQuestions int                `json:"total_questions"`
	Completed      int                `json:"completed"`
	Results        []EvaluationRecord `json:"results"`
}

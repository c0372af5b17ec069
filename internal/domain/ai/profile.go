package ai

import "strings"

const (
	MsgNoSamples         = "Please upload at least one DNA report to analyze."
	MsgIncompleteProfile = "Please fill in all personal information fields for diet plan generation."
)

// ProfileInput holds the free-text numbers typed by the user.
type ProfileInput struct {
	Age    string `json:"age"`
	Weight string `json:"weight"`
	Height string `json:"height"`
}

// Validate only checks that every field is present.
func (p ProfileInput) Validate() error {
	if strings.TrimSpace(p.Age) == "" || strings.TrimSpace(p.Weight) == "" || strings.TrimSpace(p.Height) == "" {
		return &ValidationError{Message: MsgIncompleteProfile}
	}
	return nil
}

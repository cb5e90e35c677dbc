package parser

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// generateIndividualID derives a stable 15 character receiver id from name and
// account when the source row does not carry one.
func generateIndividualID(name, account string) string {
	input := fmt.Sprintf("%s-%s", strings.ToLower(strings.TrimSpace(name)), strings.TrimSpace(account))
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash)[:15]
}

package testsessions

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/medvane/wardboard/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	specialtyDivisor   = 20
	actionDivisor      = 20
	confidenceDivisor  = 10
)

// Constants for specialty distribution cases (out of specialtyDivisor).
const (
	cardiologyUpper    = 4  // 20% cardiology
	emergencyUpper     = 8  // 20% emergency
	endocrinologyUpper = 11 // 15% endocrinology
	oncologyUpper      = 13 // 10% oncology
	pediatricsUpper    = 15 // 10% pediatrics
	neurologyUpper     = 17 // 10% neurology
	// Remainder: unknown or blank specialties exercising the default profile.
)

// Constants for interaction action distribution (out of actionDivisor).
const (
	glanceUpper   = 12 // 60% open-then-close views
	scrollUpper   = 17 // 25% scrolled past
	openOnlyUpper = 20 // 15% views left open
)

// Constants for suggestion confidence bands (out of confidenceDivisor).
const (
	highConfidenceUpper = 3 // 30% in [0.7, 1.0]
	midConfidenceUpper  = 6 // 30% in [0.4, 0.7)
	lowConfidenceUpper  = 9 // 30% in [0.0, 0.4)
	// Remainder: no confidence value at all.
)

// sectionIDs is the tool's copy of the dashboard catalog, used to aim
// interactions and navigation at real sections.
var sectionIDs = []string{
	"vitals",
	"problem_list",
	"medications",
	"allergies",
	"lab_results",
	"clinical_notes",
	"orders",
	"imaging",
	"ecg",
	"immunizations",
	"care_plan",
	"appointments",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// generateSpecialty draws a specialty from the weighted distribution,
// including unknown and blank values to exercise the default profile.
func generateSpecialty() string {
	switch n := getRandomInt(specialtyDivisor); {
	case n < cardiologyUpper:
		return "cardiology"
	case n < emergencyUpper:
		return "emergency"
	case n < endocrinologyUpper:
		return "endocrinology"
	case n < oncologyUpper:
		return "oncology"
	case n < pediatricsUpper:
		return "pediatrics"
	case n < neurologyUpper:
		return "neurology"
	case n < neurologyUpper+1:
		return "dermatology" // not in the catalog, must fall back to defaults
	default:
		return ""
	}
}

// generateScript builds the interaction script for one session. Views the
// script closes immediately classify as quick glances; a share of views is
// deliberately left open and a share of sections is scrolled past.
func generateScript(steps int) []Step {
	script := make([]Step, 0, steps)
	for i := 0; i < steps; i++ {
		section := sectionIDs[getRandomInt(int64(len(sectionIDs)))]
		switch n := getRandomInt(actionDivisor); {
		case n < glanceUpper:
			script = append(script, Step{FeatureID: section, Action: "view_start", CloseView: true})
		case n < scrollUpper:
			script = append(script, Step{FeatureID: section, Action: "scrolled_past"})
		default:
			script = append(script, Step{FeatureID: section, Action: "view_start"})
		}
	}
	return script
}

// generateSessions creates session descriptors with specialties and scripts.
func generateSessions(ctx context.Context, config *Config) []Session {
	logger.Get().Info(ctx, "generating session scripts",
		logger.Int("numSessions", config.NumSessions),
		logger.Int("interactionsPerSession", config.Interactions))

	sessions := make([]Session, config.NumSessions)
	for i := range sessions {
		sessions[i] = Session{
			Specialty: generateSpecialty(),
			Script:    generateScript(config.Interactions),
		}
	}
	return sessions
}

// generateSuggestionBatch builds one suggestion batch with a varied
// confidence distribution, including entries without any confidence.
func generateSuggestionBatch(size int, sessionIndex int) []SuggestionItem {
	batch := make([]SuggestionItem, size)
	for i := range batch {
		item := SuggestionItem{
			ID:   "sug_" + strconv.Itoa(sessionIndex) + "_" + strconv.Itoa(i),
			Text: "synthetic suggestion " + strconv.Itoa(i),
		}
		switch n := getRandomInt(confidenceDivisor); {
		case n < highConfidenceUpper:
			c := 0.7 + getRandomFloat()*0.3
			item.Confidence = &c
		case n < midConfidenceUpper:
			c := 0.4 + getRandomFloat()*0.3
			item.Confidence = &c
		case n < lowConfidenceUpper:
			c := getRandomFloat() * 0.4
			item.Confidence = &c
		}
		batch[i] = item
	}
	return batch
}

// generateNavigationPair picks two distinct sections for a navigation event.
func generateNavigationPair() (string, string) {
	i := getRandomInt(int64(len(sectionIDs)))
	j := (i + 1 + getRandomInt(int64(len(sectionIDs)-1))) % int64(len(sectionIDs))
	return sectionIDs[i], sectionIDs[j]
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

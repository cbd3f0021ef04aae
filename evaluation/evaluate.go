package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"tippleai/services"
)

// Question is one labelled message in the evaluation dataset.
type Question struct {
	ID                int      `json:"id"`
	Message           string   `json:"message"`
	ExpectedIntent    string   `json:"expected_intent"`
	ExpectedTokens    []string `json:"expected_tokens,omitempty"`
	ExpectedReference string   `json:"expected_reference,omitempty"`
	Notes             string   `json:"notes,omitempty"`
}

type EvaluationResult struct {
	QuestionID     int      `json:"question_id"`
	Message        string   `json:"message"`
	ExpectedIntent string   `json:"expected_intent"`
	ActualIntent   string   `json:"actual_intent"`
	IntentCorrect  bool     `json:"intent_correct"`
	TokensMissed   []string `json:"tokens_missed,omitempty"`
	SlotsCorrect   bool     `json:"slots_correct"`
	ResponseTimeUs int64    `json:"response_time_us"`
}

type Metrics struct {
	TotalQuestions int     `json:"total_questions"`
	CorrectIntents int     `json:"correct_intents"`
	IntentAccuracy float64 `json:"intent_accuracy"`
	CorrectSlots   int     `json:"correct_slots"`
	SlotAccuracy   float64 `json:"slot_accuracy"`
	AvgResponseUs  float64 `json:"avg_response_us"`
	Timestamp      string  `json:"timestamp"`
}

type EvaluationReport struct {
	Metrics Metrics            `json:"metrics"`
	Results []EvaluationResult `json:"results"`
}

// Evaluator scores the classifier against a labelled dataset. It needs no
// catalog or backend: classification is pure.
type Evaluator struct {
	classifier *services.Classifier
}

func NewEvaluator() *Evaluator {
	return &Evaluator{classifier: services.NewClassifier()}
}

func LoadDataset(filepath string) ([]Question, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	return questions, nil
}

func (e *Evaluator) Evaluate(questions []Question) (*EvaluationReport, error) {
	results := make([]EvaluationResult, 0, len(questions))

	correctIntents := 0
	correctSlots := 0
	var totalResponseUs int64

	fmt.Println("Starting classifier evaluation...")
	fmt.Printf("Total questions: %d\n", len(questions))
	fmt.Println("---")

	for i, q := range questions {
		fmt.Printf("[%d/%d] %s\n", i+1, len(questions), q.Message)

		startTime := time.Now()
		intent := e.classifier.Classify(q.Message)
		elapsed := time.Since(startTime).Microseconds()

		intentCorrect := string(intent.Type) == q.ExpectedIntent

		missed := missingTokens(q.ExpectedTokens, intent.Tokens)
		slotsCorrect := len(missed) == 0 && referenceMatches(q.ExpectedReference, intent.Reference)

		result := EvaluationResult{
			QuestionID:     q.ID,
			Message:        q.Message,
			ExpectedIntent: q.ExpectedIntent,
			ActualIntent:   string(intent.Type),
			IntentCorrect:  intentCorrect,
			TokensMissed:   missed,
			SlotsCorrect:   slotsCorrect,
			ResponseTimeUs: elapsed,
		}
		results = append(results, result)

		totalResponseUs += elapsed
		if intentCorrect {
			correctIntents++
		}
		if intentCorrect && slotsCorrect {
			correctSlots++
		}

		fmt.Printf("  -> %s (expected %s)\n", intent.Type, q.ExpectedIntent)
	}

	total := len(results)
	intentAccuracy := 0.0
	slotAccuracy := 0.0
	avgResponse := 0.0
	if total > 0 {
		intentAccuracy = float64(correctIntents) / float64(total)
		slotAccuracy = float64(correctSlots) / float64(total)
		avgResponse = float64(totalResponseUs) / float64(total)
	}

	return &EvaluationReport{
		Metrics: Metrics{
			TotalQuestions: total,
			CorrectIntents: correctIntents,
			IntentAccuracy: intentAccuracy,
			CorrectSlots:   correctSlots,
			SlotAccuracy:   slotAccuracy,
			AvgResponseUs:  avgResponse,
			Timestamp:      time.Now().Format(time.RFC3339),
		},
		Results: results,
	}, nil
}

// missingTokens returns the expected tokens the classifier failed to
// extract (case-insensitive).
func missingTokens(expected, actual []string) []string {
	missed := []string{}
	for _, want := range expected {
		found := false
		for _, got := range actual {
			if strings.EqualFold(want, got) {
				found = true
				break
			}
		}
		if !found {
			missed = append(missed, want)
		}
	}
	return missed
}

func referenceMatches(expected, actual string) bool {
	if expected == "" {
		return true
	}
	return strings.EqualFold(expected, actual)
}

// save the evaluation report to a JSON file
func SaveReport(report *EvaluationReport, filepath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// print a summary of the evaluation results
func PrintSummary(report *EvaluationReport) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("CLASSIFIER EVALUATION SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total Questions:   %d\n", report.Metrics.TotalQuestions)
	fmt.Printf("Correct Intents:   %d\n", report.Metrics.CorrectIntents)
	fmt.Printf("Intent Accuracy:   %.2f%%\n", report.Metrics.IntentAccuracy*100)
	fmt.Printf("Slot Accuracy:     %.2f%%\n", report.Metrics.SlotAccuracy*100)
	fmt.Printf("Avg Classify Time: %.0f us\n", report.Metrics.AvgResponseUs)
	fmt.Println(strings.Repeat("=", 60) + "\n")

	for _, result := range report.Results {
		if !result.IntentCorrect {
			fmt.Printf("MISS: %q -> %s (expected %s)\n", result.Message, result.ActualIntent, result.ExpectedIntent)
		}
	}
}

package grading

import (
	"encoding/json"
	"strings"
)

// Answer key payload shapes, one per question type. Keys live in the
// question bank and are decoded here at grading time.
type choiceKey struct {
	Correct string `json:"correct"`
}

type booleanKey struct {
	Correct bool `json:"correct"`
}

type multiSelectKey struct {
	Correct []string `json:"correct"`
}

type shortTextKey struct {
	Accepted      []string `json:"accepted"`
	CaseSensitive bool     `json:"caseSensitive"`
	ExactMatch    bool     `json:"exactMatch"`
}

type numericKey struct {
	Value     float64  `json:"value"`
	Tolerance *float64 `json:"tolerance,omitempty"`
}

type matchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type matchingKey struct {
	Pairs []matchPair `json:"pairs"`
}

type orderingKey struct {
	Order []string `json:"order"`
}

type blanksKey struct {
	Blanks        []string `json:"blanks"`
	CaseSensitive bool     `json:"caseSensitive"`
}

// Submitted payload shapes. Pointer fields distinguish "absent" from the
// zero value so a missing field reads as malformed, not as an answer.
type choiceAnswer struct {
	Selected *string `json:"selected"`
}

type booleanAnswer struct {
	Selected *bool `json:"selected"`
}

type multiSelectAnswer struct {
	Selected []string `json:"selected"`
}

type textAnswer struct {
	Text *string `json:"text"`
}

type numericAnswer struct {
	Value *float64 `json:"value"`
}

type matchingAnswer struct {
	Pairs []matchPair `json:"pairs"`
}

type orderingAnswer struct {
	Order []string `json:"order"`
}

type blanksAnswer struct {
	Blanks []string `json:"blanks"`
}

const (
	feedbackMalformedKey     = "answer key is malformed"
	feedbackMalformedPayload = "submitted answer does not match the expected shape for this question type"
	feedbackManualGrading    = "requires manual grading"
)

func scoreSingleChoice(in Input) Result {
	var key choiceKey
	if json.Unmarshal(in.AnswerKey, &key) != nil || key.Correct == "" {
		return invalid(in, feedbackMalformedKey)
	}
	var ans choiceAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Selected == nil {
		return invalid(in, feedbackMalformedPayload)
	}
	return allOrNothing(in, *ans.Selected == key.Correct, "")
}

func scoreBoolean(in Input) Result {
	var key booleanKey
	if json.Unmarshal(in.AnswerKey, &key) != nil {
		return invalid(in, feedbackMalformedKey)
	}
	var ans booleanAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Selected == nil {
		return invalid(in, feedbackMalformedPayload)
	}
	return allOrNothing(in, *ans.Selected == key.Correct, "")
}

// scoreMultiSelect awards partial credit:
// fraction = max(0, (hits - misses) / correctCount).
func scoreMultiSelect(in Input) Result {
	var key multiSelectKey
	if json.Unmarshal(in.AnswerKey, &key) != nil || len(key.Correct) == 0 {
		return invalid(in, feedbackMalformedKey)
	}
	var ans multiSelectAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Selected == nil {
		return invalid(in, feedbackMalformedPayload)
	}

	correctSet := make(map[string]bool, len(key.Correct))
	for _, c := range key.Correct {
		correctSet[c] = true
	}

	hits, misses := 0, 0
	seen := make(map[string]bool, len(ans.Selected))
	for _, s := range ans.Selected {
		if seen[s] {
			continue
		}
		seen[s] = true
		if correctSet[s] {
			hits++
		} else {
			misses++
		}
	}

	fraction := float64(hits-misses) / float64(len(key.Correct))
	res := partial(in, fraction, "")
	res.IsCorrect = hits == len(key.Correct) && misses == 0
	return res
}

func scoreShortText(in Input) Result {
	var key shortTextKey
	if json.Unmarshal(in.AnswerKey, &key) != nil || len(key.Accepted) == 0 {
		return invalid(in, feedbackMalformedKey)
	}
	var ans textAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Text == nil {
		return invalid(in, feedbackMalformedPayload)
	}

	submitted := strings.TrimSpace(*ans.Text)
	if !key.CaseSensitive {
		submitted = strings.ToLower(submitted)
	}

	for _, accepted := range key.Accepted {
		accepted = strings.TrimSpace(accepted)
		if !key.CaseSensitive {
			accepted = strings.ToLower(accepted)
		}
		if key.ExactMatch {
			if submitted == accepted {
				return allOrNothing(in, true, "")
			}
			continue
		}
		// Loose match: either string contains the other.
		if submitted != "" && (strings.Contains(submitted, accepted) || strings.Contains(accepted, submitted)) {
			return allOrNothing(in, true, "")
		}
	}
	return allOrNothing(in, false, "")
}

func scoreNumeric(in Input) Result {
	var key numericKey
	if json.Unmarshal(in.AnswerKey, &key) != nil {
		return invalid(in, feedbackMalformedKey)
	}
	var ans numericAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Value == nil {
		return invalid(in, feedbackMalformedPayload)
	}

	tolerance := 0.0
	if key.Tolerance != nil {
		tolerance = *key.Tolerance
	}
	correct := *ans.Value >= key.Value-tolerance && *ans.Value <= key.Value+tolerance
	return allOrNothing(in, correct, "")
}

// scoreMatching awards fraction = matched pairs / correct pairs.
func scoreMatching(in Input) Result {
	var key matchingKey
	if json.Unmarshal(in.AnswerKey, &key) != nil || len(key.Pairs) == 0 {
		return invalid(in, feedbackMalformedKey)
	}
	var ans matchingAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Pairs == nil {
		return invalid(in, feedbackMalformedPayload)
	}

	correctRight := make(map[string]string, len(key.Pairs))
	for _, p := range key.Pairs {
		correctRight[p.Left] = p.Right
	}

	matched := 0
	seen := make(map[string]bool, len(ans.Pairs))
	for _, p := range ans.Pairs {
		if seen[p.Left] {
			continue
		}
		seen[p.Left] = true
		if right, ok := correctRight[p.Left]; ok && right == p.Right {
			matched++
		}
	}

	return partial(in, float64(matched)/float64(len(key.Pairs)), "")
}

// scoreOrdering awards fraction = positions in agreement / max sequence
// length, so extra trailing items cost points. Full credit requires the
// sequences to match length-for-length and value-for-value.
func scoreOrdering(in Input) Result {
	var key orderingKey
	if json.Unmarshal(in.AnswerKey, &key) != nil || len(key.Order) == 0 {
		return invalid(in, feedbackMalformedKey)
	}
	var ans orderingAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Order == nil {
		return invalid(in, feedbackMalformedPayload)
	}

	matched := 0
	for i, v := range key.Order {
		if i < len(ans.Order) && ans.Order[i] == v {
			matched++
		}
	}

	denom := len(key.Order)
	if len(ans.Order) > denom {
		denom = len(ans.Order)
	}
	res := partial(in, float64(matched)/float64(denom), "")
	res.IsCorrect = matched == len(key.Order) && len(ans.Order) == len(key.Order)
	return res
}

// scoreFillBlanks compares blank-for-blank. A blank-count mismatch is an
// invalid answer, not a wrong one.
func scoreFillBlanks(in Input) Result {
	var key blanksKey
	if json.Unmarshal(in.AnswerKey, &key) != nil || len(key.Blanks) == 0 {
		return invalid(in, feedbackMalformedKey)
	}
	var ans blanksAnswer
	if json.Unmarshal(in.Submitted, &ans) != nil || ans.Blanks == nil {
		return invalid(in, feedbackMalformedPayload)
	}
	if len(ans.Blanks) != len(key.Blanks) {
		return invalid(in, feedbackMalformedPayload)
	}

	correct := 0
	for i, want := range key.Blanks {
		got := strings.TrimSpace(ans.Blanks[i])
		want = strings.TrimSpace(want)
		if !key.CaseSensitive {
			got = strings.ToLower(got)
			want = strings.ToLower(want)
		}
		if got == want {
			correct++
		}
	}

	return partial(in, float64(correct)/float64(len(key.Blanks)), "")
}

// scoreFreeText never auto-finalizes: the result is flagged for human
// review with a zero score that does not count as incorrect.
func scoreFreeText(in Input) Result {
	return Result{
		IsCorrect:     false,
		Score:         0,
		MaxScore:      in.MaxScore,
		Feedback:      feedbackManualGrading,
		PendingManual: true,
	}
}

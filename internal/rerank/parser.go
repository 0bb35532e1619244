package rerank

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"FlowAdvisor/internal/domain"
)

// ExtractJSON returns the whole text when it is valid JSON, otherwise the
// first balanced top-level {...} object found in it.
func ExtractJSON(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}

	if blob, ok := firstBalancedObject(text); ok && json.Valid([]byte(blob)) {
		return []byte(blob), nil
	}
	return nil, domain.ErrNoValidJSON
}

// firstBalancedObject counts braces outside of string literals and
// returns the first object whose depth returns to zero.
func firstBalancedObject(s string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// Parse extracts and validates a ranking from raw model text.
// chosen.chosenEventId and chosen.reason are mandatory; ranking entries
// with unparseable identifiers are dropped.
func Parse(text string) (domain.RankingResult, error) {
	blob, err := ExtractJSON(text)
	if err != nil {
		return domain.RankingResult{}, err
	}

	var root any
	if err := json.Unmarshal(blob, &root); err != nil {
		return domain.RankingResult{}, domain.ErrNoValidJSON
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return domain.RankingResult{}, domain.ErrMalformedChosen
	}

	chosen, err := parseChosen(obj["chosen"])
	if err != nil {
		return domain.RankingResult{}, err
	}

	return domain.RankingResult{Chosen: chosen, Ranking: parseRanking(obj["ranking"])}, nil
}

func parseChosen(v any) (domain.Choice, error) {
	chosen, ok := v.(map[string]any)
	if !ok {
		return domain.Choice{}, domain.ErrMalformedChosen
	}
	id, ok := parseID(chosen["chosenEventId"])
	if !ok {
		return domain.Choice{}, domain.ErrMalformedChosen
	}
	reason, ok := chosen["reason"].(string)
	if !ok {
		return domain.Choice{}, domain.ErrMalformedChosen
	}
	return domain.Choice{TaskID: id, Reason: reason}, nil
}

func parseRanking(v any) []domain.RankedEntry {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	entries := make([]domain.RankedEntry, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := parseID(m["eventId"])
		if !ok {
			if id, ok = parseID(m["id"]); !ok {
				continue
			}
		}

		entry := domain.RankedEntry{TaskID: id}
		if score, ok := m["score"].(float64); ok {
			entry.Score = &score
		}
		entry.Reason, _ = m["reason"].(string)
		entries = append(entries, entry)
	}
	return entries
}

func parseID(v any) (uuid.UUID, bool) {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Resolve maps a parsed result back onto the candidates that were sent.
// An unknown chosen id invalidates the result; unknown ranking entries
// are dropped.
func Resolve(result domain.RankingResult, candidates []domain.Task) (domain.RankingResult, domain.Task, error) {
	chosen, ok := domain.FindTask(candidates, result.Chosen.TaskID)
	if !ok {
		return domain.RankingResult{}, domain.Task{}, domain.ErrUnknownChosenID
	}

	kept := make([]domain.RankedEntry, 0, len(result.Ranking))
	for _, e := range result.Ranking {
		if _, ok := domain.FindTask(candidates, e.TaskID); ok {
			kept = append(kept, e)
		}
	}
	result.Ranking = kept
	return result, chosen, nil
}

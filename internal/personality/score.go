package personality

import "fmt"

// Accumulator maps card ids to running totals.
type Accumulator map[string]int

// NewAccumulator returns totals with every card at zero.
func (e *Engine) NewAccumulator() Accumulator {
	acc := make(Accumulator, len(e.cards))
	for _, c := range e.cards {
		acc[c.ID] = 0
	}
	return acc
}

// ApplyAnswer returns a new accumulator with the scores of the chosen
// option added. acc is not modified.
func ApplyAnswer(acc Accumulator, q Question, optionIndex int) (Accumulator, error) {
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return nil, fmt.Errorf("%w: question %d option %d", ErrUnknownOption, q.ID, optionIndex)
	}
	out := make(Accumulator, len(acc))
	for id, v := range acc {
		out[id] = v
	}
	for id, pts := range q.Options[optionIndex].Scores {
		out[id] += pts
	}
	return out, nil
}

// Resolve returns the card with the highest total. Ties go to the card
// that comes first in catalog order.
func (e *Engine) Resolve(acc Accumulator) string {
	best, bestScore := e.cards[0].ID, acc[e.cards[0].ID]
	for _, c := range e.cards[1:] {
		if acc[c.ID] > bestScore {
			best, bestScore = c.ID, acc[c.ID]
		}
	}
	return best
}

// Tally folds answers into an accumulator. answers[i] is the option chosen
// for question i.
func (e *Engine) Tally(answers []int) (Accumulator, error) {
	if len(answers) != len(e.questions) {
		return nil, fmt.Errorf("%w: got %d of %d", ErrIncompleteAnswers, len(answers), len(e.questions))
	}
	acc := e.NewAccumulator()
	for i, a := range answers {
		next, err := ApplyAnswer(acc, e.questions[i], a)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

// Score returns the winning card id for a complete answer set.
func (e *Engine) Score(answers []int) (string, error) {
	acc, err := e.Tally(answers)
	if err != nil {
		return "", err
	}
	return e.Resolve(acc), nil
}

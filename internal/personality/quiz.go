package personality

import "errors"

var ErrQuizComplete = errors.New("quiz already complete")

// Quiz tracks one person's progress through the questions.
type Quiz struct {
	engine  *Engine
	answers []int
}

func (e *Engine) NewQuiz() *Quiz {
	return &Quiz{engine: e, answers: make([]int, 0, len(e.questions))}
}

// Step is the zero-based index of the current question.
func (q *Quiz) Step() int { return len(q.answers) }

func (q *Quiz) Total() int { return len(q.engine.questions) }

func (q *Quiz) Done() bool { return len(q.answers) == len(q.engine.questions) }

// Current returns the question awaiting an answer. ok is false once every
// question has been answered.
func (q *Quiz) Current() (question Question, ok bool) {
	if q.Done() {
		return Question{}, false
	}
	return q.engine.questions[len(q.answers)], true
}

func (q *Quiz) Answer(optionIndex int) error {
	cur, ok := q.Current()
	if !ok {
		return ErrQuizComplete
	}
	if optionIndex < 0 || optionIndex >= len(cur.Options) {
		return ErrUnknownOption
	}
	q.answers = append(q.answers, optionIndex)
	return nil
}

// Back drops the last answer. It reports false on the first question.
func (q *Quiz) Back() bool {
	if len(q.answers) == 0 {
		return false
	}
	q.answers = q.answers[:len(q.answers)-1]
	return true
}

func (q *Quiz) Restart() { q.answers = q.answers[:0] }

func (q *Quiz) Answers() []int { return append([]int(nil), q.answers...) }

func (q *Quiz) Result() (Card, error) {
	id, err := q.engine.Score(q.answers)
	if err != nil {
		return Card{}, err
	}
	return q.engine.Card(id)
}

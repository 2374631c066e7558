// Package tasks generates arithmetic exercises.
package tasks

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

// Task is one arithmetic exercise
type Task struct {
	ID       string   `json:"id"`
	Question string   `json:"frage"`
	Answer   string   `json:"korrekteLoesung"`
	Operator string   `json:"operator"`
	Choices  []string `json:"wahlAntworten,omitempty"`
	Grade    int      `json:"klasse,omitempty"`
	A        int      `json:"-"`
	B        int      `json:"-"`
}

// Generator produces tasks from a random source. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the clock
func NewGenerator() *Generator {
	seed := uint64(time.Now().UnixNano())
	return NewGeneratorWithRand(rand.New(rand.NewPCG(seed, seed>>1|1)))
}

// NewGeneratorWithRand creates a generator on a caller-supplied source,
// which makes sequences reproducible in tests.
func NewGeneratorWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// intn returns a uniform integer in [lo, hi]
func (g *Generator) intn(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// Next returns the next chat task: two operands in [1,10], always added.
// The configured operators do not influence chat tasks yet.
func (g *Generator) Next() Task {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, b := g.intn(1, 10), g.intn(1, 10)
	return Task{
		ID:       "t1",
		Question: fmt.Sprintf("%d + %d = ?", a, b),
		Answer:   strconv.Itoa(a + b),
		Operator: domain.OpAdd,
		A:        a,
		B:        b,
	}
}

// BatchRequest describes a set of multiple-choice tasks
type BatchRequest struct {
	Operators []string
	Grade     int
	Count     int
}

// MaxBatch caps the number of tasks per request
const MaxBatch = 50

// RangeForGrade returns the largest operand for a school grade
func RangeForGrade(grade int) int {
	switch grade {
	case 1:
		return 20
	case 2:
		return 50
	default:
		return 100
	}
}

// Batch generates multiple-choice tasks. Each task picks one of the
// requested operators at random; results are never negative and
// divisions always come out even.
func (g *Generator) Batch(req BatchRequest) []Task {
	ops := make([]string, 0, len(req.Operators))
	for _, op := range req.Operators {
		if domain.IsOperator(op) {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		ops = []string{domain.OpAdd}
	}
	count := min(max(req.Count, 1), MaxBatch)
	limit := RangeForGrade(req.Grade)

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Task, 0, count)
	for i := range count {
		op := ops[g.rng.IntN(len(ops))]
		a, b := g.intn(1, limit), g.intn(1, limit)
		var result int

		switch op {
		case domain.OpAdd:
			result = a + b
		case domain.OpSubtract:
			if b > a {
				a, b = b, a
			}
			result = a - b
		case domain.OpMultiply:
			result = a * b
		case domain.OpDivide:
			result = g.intn(2, 12)
			b = g.intn(2, 12)
			a = result * b
		}

		out = append(out, Task{
			ID:       fmt.Sprintf("t%d", i+1),
			Question: fmt.Sprintf("%d %s %d = ?", a, op, b),
			Answer:   strconv.Itoa(result),
			Operator: op,
			Choices:  g.choices(result),
			Grade:    req.Grade,
			A:        a,
			B:        b,
		})
	}
	return out
}

// choices returns four distinct non-negative answers in random order,
// one of them the solution.
func (g *Generator) choices(solution int) []string {
	set := []int{solution}
	for len(set) < 4 {
		fake := solution + g.intn(-10, 10)
		if fake < 0 {
			fake = -fake
		}
		if !slices.Contains(set, fake) {
			set = append(set, fake)
		}
	}
	g.rng.Shuffle(len(set), func(i, j int) { set[i], set[j] = set[j], set[i] })

	out := make([]string, len(set))
	for i, n := range set {
		out[i] = strconv.Itoa(n)
	}
	return out
}

package users

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Abraxas-365/userdesk/pkg/asyncx"
	"github.com/Abraxas-365/userdesk/pkg/kernel"
)

// DefaultCount is the size of the default mock user set.
const DefaultCount = 100

var (
	firstNames = []string{"John", "Jane", "Michael", "Sarah", "David", "Emma", "James", "Emily", "William", "Olivia"}
	surnames   = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez"}
	domains    = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com"}
)

// Generator produces mock users from a random source.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator whose output is fully determined by seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns n users with ids user-1 … user-n.
func (g *Generator) Generate(n int) []User {
	out := make([]User, 0, max(n, 0))
	for i := range n {
		out = append(out, g.user(i+1))
	}
	return out
}

func (g *Generator) user(seq int) User {
	r := g.rnd
	name := firstNames[r.IntN(len(firstNames))] + " " + surnames[r.IntN(len(surnames))]
	email := fmt.Sprintf("%s%d@%s",
		strings.Replace(strings.ToLower(name), " ", ".", 1),
		r.IntN(100),
		domains[r.IntN(len(domains))],
	)

	balance := float64(r.IntN(10000))

	// Month is zero-based and day 0 rolls back to the last day of the
	// previous month, which time.Date normalises for us.
	year := 2020 + r.IntN(4)
	month := time.Month(r.IntN(12) + 1)
	day := r.IntN(28)
	registerAt := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	return User{
		ID:         kernel.UserID(fmt.Sprintf("user-%d", seq)),
		Name:       name,
		Balance:    balance,
		Email:      email,
		RegisterAt: registerAt,
		Active:     r.Float64() > 0.3,
	}
}

// Generate returns n users drawn from rnd.
func Generate(n int, rnd *rand.Rand) []User {
	return (&Generator{rnd: rnd}).Generate(n)
}

var defaultSet = asyncx.Once(func() ([]User, error) {
	return NewGenerator(uint64(time.Now().UnixNano())).Generate(DefaultCount), nil
})

// Users returns the process-wide mock user set, generated on first use.
// Callers must not modify the returned slice.
func Users() []User {
	u, _ := defaultSet()
	return u
}

package seed

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/okian/wardwatch/internal/domain/calendar"
)

// Organisational vocabulary used by the generator.
var (
	areas       = []string{"mentenanta", "ssm", "psi", "calitate", "mediu"}
	subdomains  = map[string][]string{"mentenanta": {"lifturi", "hvac", "gaze-medicale"}, "psi": {"bloc-a", "bloc-b"}}
	departments = []string{"ATI", "Chirurgie", "Medicină internă", "Pediatrie", "Laborator", "Radiologie"}
	wasteTypes  = []string{"infecțios", "înțepător-tăietor", "anatomic", "chimic", "menajer"}
	firstNames  = []string{"Ana", "Ion", "Maria", "Andrei", "Elena", "Mihai", "Ioana", "Radu", "Cristina", "Vlad"}
	lastNames   = []string{"Popescu", "Ionescu", "Dumitru", "Stan", "Stoica", "Gheorghe", "Rusu", "Munteanu"}
	taskTitles  = []string{
		"Verificare stingătoare", "Revizie centrală termică", "Inspecție lift", "Calibrare autoclav",
		"Actualizare plan evacuare", "Control legionella", "Verificare grup electrogen", "Instruire personal nou",
	}
	priorities = []string{"low", "med", "high"}
)

// generator produces deterministic demo values relative to now.
type generator struct {
	rnd *rand.Rand
	now time.Time
}

func newGenerator(seed uint64, now time.Time) *generator {
	return &generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: now}
}

func pick[T any](g *generator, items []T) T {
	return items[g.rnd.IntN(len(items))]
}

// day renders now shifted by offset days.
func (g *generator) day(offset int) string {
	return g.now.AddDate(0, 0, offset).UTC().Format(calendar.DayLayout)
}

// dayBetween renders a random day in [from, to] days from now.
func (g *generator) dayBetween(from, to int) string {
	return g.day(from + g.rnd.IntN(to-from+1))
}

func (g *generator) person() string {
	return pick(g, firstNames) + " " + pick(g, lastNames)
}

// people returns n distinct names.
func (g *generator) people(n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for attempts := 0; len(out) < n && attempts < n*20; attempts++ {
		p := g.person()
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (g *generator) subdomain(area string) *string {
	subs := subdomains[area]
	if len(subs) == 0 || g.rnd.IntN(3) == 0 {
		return nil
	}
	s := pick(g, subs)
	return &s
}

// trainingCSV renders an attendance export for sessions in the current year.
func (g *generator) trainingCSV(sessions, employees int) string {
	var b strings.Builder
	b.WriteString("Nume;Secție;Instruire;Data\n")
	for i := 0; i < sessions; i++ {
		dept := pick(g, departments)
		title := pick(g, []string{"SSM periodic", "PSI", "Igiena mâinilor", "Gestionare deșeuri"})
		date := g.dayBetween(-60, 20)
		for _, name := range g.people(employees) {
			fmt.Fprintf(&b, "%s;%s;%s;%s\n", name, dept, title, date)
		}
	}
	return b.String()
}

func (g *generator) quantity(lo, spread float64) float64 {
	return float64(int((lo+g.rnd.Float64()*spread)*10)) / 10
}

package autopilot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"tycoon/internal/catalog"
	"tycoon/internal/game"
	"tycoon/internal/session"
	"tycoon/internal/store"
)

func newPilot(t *testing.T, rules game.Rules) (*Pilot, *session.Session) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.OpenFile(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	eng := game.NewEngine(nil, rules, game.NewRand(7), logger)
	sess, err := session.Open(context.Background(), eng, st, "pilot", logger)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return New(sess, logger), sess
}

func TestRunMonthFirstMonth(t *testing.T) {
	p, sess := newPilot(t, game.DefaultRules())
	m, err := p.RunMonth(context.Background())
	if err != nil {
		t.Fatalf("run month: %v", err)
	}
	if m.Age != 241 || m.Shifts != 1 || m.Trained != 15 {
		t.Fatalf("month=%+v", m)
	}
	if m.Paid != 1 || m.Unpaid != 0 || m.Cash != 1000 {
		t.Fatalf("month=%+v", m)
	}
	st := sess.State()
	if st.Warehouses["wh_small"] != 1 || st.Accommodation != "youth_apartment" {
		t.Fatalf("prepared warehouses=%v home=%q", st.Warehouses, st.Accommodation)
	}
	if lvl := st.Attributes[catalog.Knowledge]; lvl.Level != 2 || lvl.XP != 5 {
		t.Fatalf("knowledge=%+v", lvl)
	}
}

func TestRunMonthSettlesPendingMonth(t *testing.T) {
	p, sess := newPilot(t, game.DefaultRules())
	ctx := context.Background()
	if _, _, err := sess.Advance(ctx); err != nil {
		t.Fatalf("advance: %v", err)
	}
	m, err := p.RunMonth(ctx)
	if err != nil {
		t.Fatalf("run month: %v", err)
	}
	if m.Age != 241 || m.Shifts != 0 || m.Trained != 0 {
		t.Fatalf("month=%+v", m)
	}
	if sess.State().Warehouses["wh_small"] != 0 {
		t.Fatalf("pending month replayed the player turn")
	}
}

func TestRunMonthUntilRetirement(t *testing.T) {
	rules := game.DefaultRules()
	rules.RetirementAgeYears = rules.StartingAgeYears + 1
	p, _ := newPilot(t, rules)
	ctx := context.Background()

	var last Month
	for i := 0; i < 12; i++ {
		m, err := p.RunMonth(ctx)
		if err != nil {
			t.Fatalf("month %d: %v", i, err)
		}
		last = m
	}
	if !last.Finished || last.Title == "" || last.Age != rules.RetirementAge() {
		t.Fatalf("last=%+v", last)
	}
	if _, err := p.RunMonth(ctx); !errors.Is(err, ErrFinished) {
		t.Fatalf("err=%v want ErrFinished", err)
	}
}

func TestBestJobs(t *testing.T) {
	cat := catalog.Default()
	s := game.State{Attributes: map[catalog.Attribute]game.AttributeLevel{
		catalog.Knowledge: {Level: 3},
		catalog.Physical:  {Level: 1},
	}}
	jobs := BestJobs(cat, s)
	if len(jobs) < 2 || jobs[0].ID != "edu_1" {
		t.Fatalf("jobs=%+v", jobs)
	}
	for _, j := range jobs {
		if j.ID == "edu_2" || j.ID == "sport_1" {
			t.Fatalf("unqualified job %s offered", j.ID)
		}
	}
	if jobs[len(jobs)-1].Salary > jobs[0].Salary {
		t.Fatalf("not sorted by salary")
	}
}

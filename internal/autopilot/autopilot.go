package autopilot

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"tycoon/internal/catalog"
	"tycoon/internal/game"
	"tycoon/internal/session"
)

// ErrFinished is returned once the game has reached its terminal phase.
var ErrFinished = errors.New("game finished")

// Month is the outcome of one autopilot month.
type Month struct {
	Age      int
	Cash     float64
	Net      float64
	Shifts   int
	Trained  int
	Paid     int
	Unpaid   int
	Finished bool
	Title    string
}

// Pilot plays a session with a fixed policy: secure storage and housing,
// work the best paying job it qualifies for, train with leftover energy,
// then close the month paying whatever bills cash covers.
type Pilot struct {
	sess  *session.Session
	log   *slog.Logger
	Train catalog.Attribute
}

func New(sess *session.Session, logger *slog.Logger) *Pilot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pilot{sess: sess, log: logger, Train: catalog.Knowledge}
}

// RunMonth plays the rest of the current month and settles it. A month that
// was already advanced is settled without replaying the player turn.
func (p *Pilot) RunMonth(ctx context.Context) (Month, error) {
	var out Month
	st := p.sess.State()
	if st.GameOver {
		return out, ErrFinished
	}

	if _, pending := st.Phase.(game.PendingSettlement); !pending {
		if err := p.prepare(ctx); err != nil {
			return out, err
		}
		out.Shifts, out.Trained = p.spendEnergy(ctx)
		if _, _, err := p.sess.Advance(ctx); err != nil {
			return out, err
		}
		st = p.sess.State()
	}

	bills := game.PendingBills(st)
	paid := game.AffordableBills(bills, st.Cash)
	next, err := p.sess.Settle(ctx, paid)
	if err != nil {
		return out, err
	}

	out.Age = next.Age
	out.Cash = next.Cash
	out.Net = next.LastReport.Net()
	out.Paid = len(paid)
	out.Unpaid = next.UnpaidBillCount
	if t, ok := next.Phase.(game.Terminal); ok {
		out.Finished = true
		out.Title = t.Title
	}
	return out, nil
}

// prepare buys the cheapest warehouse and rents the cheapest home when the
// player lacks either. Rejections are logged and left for a later month.
func (p *Pilot) prepare(ctx context.Context) error {
	eng := p.sess.Engine()
	cat := eng.Catalog()
	st := p.sess.State()

	if eng.WarehouseCapacity(st) == 0 && len(cat.Warehouses) > 0 {
		cheapest := cat.Warehouses[0]
		for _, w := range cat.Warehouses[1:] {
			if w.Price < cheapest.Price {
				cheapest = w
			}
		}
		if err := p.try(ctx, "buy_warehouse", func(s game.State) (game.State, error) {
			return eng.BuyWarehouse(s, cheapest.ID)
		}); err != nil {
			return err
		}
	}

	if st.Accommodation == "" && len(cat.Housing) > 0 {
		cheapest := cat.Housing[0]
		for _, h := range cat.Housing[1:] {
			if h.Rent < cheapest.Rent {
				cheapest = h
			}
		}
		if err := p.try(ctx, "set_accommodation", func(s game.State) (game.State, error) {
			return eng.SetAccommodation(s, cheapest.ID)
		}); err != nil {
			return err
		}
	}
	return nil
}

// spendEnergy works shifts at the best job while energy lasts, then trains,
// keeping back enough energy that next month's recovery covers a shift.
func (p *Pilot) spendEnergy(ctx context.Context) (shifts, trained int) {
	eng := p.sess.Engine()
	jobs := BestJobs(eng.Catalog(), p.sess.State())
	for _, job := range jobs {
		for p.sess.State().Energy >= job.EnergyCost {
			if _, err := p.sess.Apply(ctx, "work", func(s game.State) (game.State, error) {
				return eng.WorkJob(s, job.ID)
			}); err != nil {
				break
			}
			shifts++
		}
		if shifts > 0 {
			break
		}
	}

	reserve := 0
	if len(jobs) > 0 {
		st := p.sess.State()
		recovered := int(float64(st.MaxEnergy) * eng.RecoveryRate(st))
		reserve = max(0, jobs[0].EnergyCost-recovered)
	}
	for p.sess.State().Energy-game.EnergyCostTrain >= reserve {
		if _, err := p.sess.Apply(ctx, "train", func(s game.State) (game.State, error) {
			return eng.TrainAttribute(s, p.Train)
		}); err != nil {
			break
		}
		trained++
	}
	return shifts, trained
}

// try applies fn and swallows rejections.
func (p *Pilot) try(ctx context.Context, name string, fn session.Action) error {
	_, err := p.sess.Apply(ctx, name, fn)
	if err != nil && game.IsRejection(err) {
		p.log.Debug("autopilot skipped action", "action", name, "err", err)
		return nil
	}
	return err
}

// BestJobs lists the jobs whose attribute requirements the player meets,
// highest salary first.
func BestJobs(cat *catalog.Catalog, s game.State) []catalog.Job {
	out := make([]catalog.Job, 0, len(cat.Jobs))
	for _, j := range cat.Jobs {
		ok := true
		for attr, need := range j.Requirements {
			if s.Attributes[attr].Level < need {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].Salary > out[k].Salary })
	return out
}

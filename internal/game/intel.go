package game

import (
	"fmt"

	"tycoon/internal/catalog"
)

// IntelRequest describes one chance at producing a signal. GoodID names the
// target when the trigger has one. A nil Probability uses the rules' rate for
// the trigger; Age defaults to the state's age.
type IntelRequest struct {
	Trigger     Trigger
	GoodID      string
	Probability *float64
	Age         int
}

type intelTemplate struct {
	source string
	up     string
	down   string
}

var intelTemplates = map[Trigger]intelTemplate{
	TriggerTrade: {
		source: "Trading floor",
		up:     "Big money is quietly accumulating %s. Expect a move soon.",
		down:   "A dealer lets slip that %s stockpiles are overflowing. Selling pressure ahead.",
	},
	TriggerHire: {
		source: "Staff gossip",
		up:     "A new hire mentions a major industry deal involving %s.",
		down:   "Word from a new hire's old employer: the %s supply chain is badly oversupplied.",
	},
	TriggerTrain: {
		source: "Study notes",
		up:     "The cycle theory from your studies says %s is entering an uptrend.",
		down:   "Your analysis shows %s bubble indicators at a peak. A correction looks likely.",
	},
	TriggerMonthly: {
		source: "Street rumor",
		up:     "A corner of a discarded newspaper reports force majeure hitting %s production.",
		down:   "Someone in a cafe loudly claims a substitute for %s is about to launch.",
	},
}

// GenerateIntel rolls the trigger's activation chance and, on success,
// appends one forward-looking signal to the state's intelligence log. It
// returns the updated state and the new signal, or the input state and nil.
func (e *Engine) GenerateIntel(s State, req IntelRequest) (State, *Intelligence) {
	in, ok := e.rollIntel(s, req)
	if !ok {
		return s, nil
	}
	next := s.Clone()
	next.Intelligence = append(next.Intelligence, in)
	e.logf(&next, "intel received about %s", intelSubject(e.cat, in))
	return next, &in
}

// maybeIntel is GenerateIntel for a state the caller already owns.
func (e *Engine) maybeIntel(s *State, req IntelRequest) {
	in, ok := e.rollIntel(*s, req)
	if !ok {
		return
	}
	s.Intelligence = append(s.Intelligence, in)
	e.logf(s, "intel received about %s", intelSubject(e.cat, in))
}

func (e *Engine) rollIntel(s State, req IntelRequest) (Intelligence, bool) {
	prob := e.rules.IntelProbability[req.Trigger]
	if req.Probability != nil {
		prob = *req.Probability
	}
	if e.nextFloat() >= prob {
		return Intelligence{}, false
	}

	var goodID, category string
	if g, ok := e.cat.Good(req.GoodID); ok {
		goodID = g.ID
	} else {
		goodID, category = e.pickIntelTarget()
	}
	if goodID == "" && category == "" {
		return Intelligence{}, false
	}

	dir := Down
	if e.nextFloat() >= 0.5 {
		dir = Up
	}
	delay := e.intn(2) + 1
	duration := e.intn(2) + 1

	age := req.Age
	if age == 0 {
		age = s.Age
	}
	in := Intelligence{
		ID:             e.newID(),
		GeneratedAt:    age,
		Label:          ageLabel(age),
		Trigger:        req.Trigger,
		TargetGoodID:   goodID,
		TargetCategory: category,
		Direction:      dir,
		StartMonth:     age + delay,
		EndMonth:       age + delay + duration - 1,
	}
	tpl, ok := intelTemplates[req.Trigger]
	if !ok {
		tpl = intelTemplates[TriggerMonthly]
	}
	in.Source = tpl.source
	text := tpl.down
	if dir == Up {
		text = tpl.up
	}
	in.Content = fmt.Sprintf(text, intelSubject(e.cat, in))
	return in, true
}

// pickIntelTarget picks a random category and, most of the time, narrows it
// to one good inside that category. Exactly one of the results is non-empty.
func (e *Engine) pickIntelTarget() (string, string) {
	categories := e.cat.IntelCategories
	if len(categories) == 0 {
		categories = e.cat.Categories()
	}
	if len(categories) == 0 {
		return "", ""
	}
	category := categories[e.intn(len(categories))]
	if e.nextFloat() < IntelNarrowingChance {
		goods := e.cat.GoodsInCategory(category)
		if len(goods) > 0 {
			return goods[e.intn(len(goods))].ID, ""
		}
	}
	return "", category
}

func intelSubject(cat *catalog.Catalog, in Intelligence) string {
	if in.TargetGoodID != "" {
		if g, ok := cat.Good(in.TargetGoodID); ok {
			return g.Name
		}
		return in.TargetGoodID
	}
	return in.TargetCategory + " goods"
}

// ActiveIntel returns the signals whose window contains age.
func ActiveIntel(intel []Intelligence, age int) []Intelligence {
	var out []Intelligence
	for _, in := range intel {
		if in.ActiveAt(age) {
			out = append(out, in)
		}
	}
	return out
}

// MarkIntelRead flags a signal as read. It is bookkeeping for the reader and
// is allowed in any phase.
func (e *Engine) MarkIntelRead(s State, id string) (State, error) {
	for i, in := range s.Intelligence {
		if in.ID != id {
			continue
		}
		if in.Read {
			return s, nil
		}
		next := s.Clone()
		next.Intelligence[i].Read = true
		return next, nil
	}
	return s, reject(ErrIntelNotFound, "%s", id)
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"dutch/internal/app"
	"dutch/internal/config"
	"dutch/internal/domain"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

const (
	actionDeck    = "Draw from the deck"
	actionDiscard = "Take the discard"
	actionDutch   = "Call Dutch"

	actionExchange = "Exchange with one of my cards"
	actionThrow    = "Discard it"
	actionSpecial  = "Play its power"
)

// table is one hot-seat game in progress.
type table struct {
	svc    *app.Service
	state  *domain.GameState
	ask    prompter
	logger *slog.Logger
}

func main() {
	cfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dutch: %v\n", err)
		os.Exit(1)
	}

	// Create a new slog handler with the default PTerm logger
	handler := pterm.NewSlogHandler(pterm.DefaultLogger.WithLevel(logLevel(cfg.LogLevel)))
	logger := slog.New(handler)

	rules := domain.DefaultRules()
	if cfg.ConfigPath != "" {
		gc, err := config.ReadGameConfig(cfg.ConfigPath)
		if err != nil {
			logger.Error("could not load rules", "path", cfg.ConfigPath, "error", err)
			os.Exit(1)
		}
		rules = gc.Rules()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debug("starting game", "players", cfg.Players, "seed", seed, "rules", rules)

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("D", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("utch", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		logger.Error(err.Error())
	}
	pterm.Print(title)

	t := &table{
		svc:    app.NewService(rand.New(rand.NewSource(seed)), rules),
		ask:    ptermPrompter{},
		logger: logger,
	}
	if err := t.run(cfg.Players); err != nil {
		logger.Error("game aborted", "error", err)
		os.Exit(1)
	}
}

func logLevel(s string) pterm.LogLevel {
	switch strings.ToLower(s) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	default:
		return pterm.LogLevelInfo
	}
}

// run plays rounds until a player reaches the game over score.
func (t *table) run(names []string) error {
	state, events, err := t.svc.StartRound(names)
	if err != nil {
		return err
	}
	t.state = state
	if err := t.report(events, -1); err != nil {
		return err
	}

	for {
		if t.state.RoundEnded {
			if domain.IsGameOver(t.state) {
				return nil
			}
			next, err := t.ask.Confirm("Deal the next round?", true)
			if err != nil {
				return err
			}
			if !next {
				renderStandings(domain.Standings(t.state))
				return nil
			}
			state, events, err := t.svc.NextRound(t.state)
			if err != nil {
				return err
			}
			t.state = state
			if err := t.report(events, -1); err != nil {
				return err
			}
			continue
		}
		if err := t.playTurn(); err != nil {
			return err
		}
	}
}

// playTurn asks the current player for one full action.
func (t *table) playTurn() error {
	actor := t.state.CurrentPlayer
	name := t.state.Players[actor].Name

	pterm.Println()
	renderTable(t.state)
	if _, err := t.ask.Confirm(fmt.Sprintf("Pass the device to %s. Ready?", pterm.LightCyan(name)), true); err != nil {
		return err
	}

	for {
		options := []string{actionDeck}
		sources := []domain.DrawSource{domain.SourceDeck}
		if top, ok := t.state.TopDiscard(); ok {
			options = append(options, fmt.Sprintf("%s (%s)", actionDiscard, cardLabel(top)))
			sources = append(sources, domain.SourceDiscard)
		}
		options = append(options, actionDutch)

		choice, err := t.ask.Select("Your move", options)
		if err != nil {
			return err
		}

		var events []app.Event
		if choice == len(options)-1 {
			confirm, err := t.ask.Confirm("End the round now?", false)
			if err != nil {
				return err
			}
			if !confirm {
				continue
			}
			events, err = t.svc.CallDutch(t.state, actor)
			if err != nil {
				pterm.Error.Printfln("Invalid action: %s", err.Error())
				continue
			}
			return t.report(events, actor)
		}

		events, err = t.svc.Draw(t.state, actor, sources[choice])
		if err != nil {
			pterm.Error.Printfln("Invalid action: %s", err.Error())
			continue
		}
		if err := t.report(events, actor); err != nil {
			return err
		}
		return t.resolveDraw(actor)
	}
}

// resolveDraw lets the actor decide what to do with the pending card.
func (t *table) resolveDraw(actor int) error {
	for {
		card := t.state.Pending.Card
		options := []string{actionExchange, actionThrow}
		if card.IsSpecial() {
			options = append(options, actionSpecial)
		}
		choice, err := t.ask.Select(fmt.Sprintf("You hold %s", cardLabel(card)), options)
		if err != nil {
			return err
		}

		var events []app.Event
		switch options[choice] {
		case actionExchange:
			slot, err := t.pickSlot(actor, "Which of your cards?")
			if err != nil {
				return err
			}
			events, err = t.svc.Exchange(t.state, actor, slot)
			if err != nil {
				pterm.Error.Printfln("Invalid action: %s", err.Error())
				continue
			}
		case actionThrow:
			events, err = t.svc.Discard(t.state, actor)
			if err != nil {
				pterm.Error.Printfln("Invalid action: %s", err.Error())
				continue
			}
		case actionSpecial:
			events, err = t.playSpecial(actor, card)
			if errors.Is(err, domain.ErrInvalidSlot) || errors.Is(err, domain.ErrInvalidPlayer) {
				pterm.Warning.Printfln("Invalid target: %s", err.Error())
				continue
			}
			if err != nil {
				return err
			}
		}
		return t.report(events, actor)
	}
}

// playSpecial collects the targets the card's power needs.
func (t *table) playSpecial(actor int, card domain.Card) ([]app.Event, error) {
	var err error
	slot, targetPlayer, targetSlot := 0, domain.NoTarget, domain.NoTarget
	switch card.Rank {
	case domain.Jack:
		if slot, err = t.pickSlot(actor, "Which of your cards to swap?"); err != nil {
			return nil, err
		}
		if targetPlayer, err = t.pickPlayer(actor, "Swap with whom?"); err != nil {
			return nil, err
		}
		if targetSlot, err = t.pickSlot(targetPlayer, "Which of their cards?"); err != nil {
			return nil, err
		}
	case domain.Queen:
		if slot, err = t.pickSlot(actor, "Which of your cards to look at?"); err != nil {
			return nil, err
		}
	case domain.Ace:
		if targetPlayer, err = t.pickPlayer(actor, "Who receives a card?"); err != nil {
			return nil, err
		}
	}
	t.logger.Debug("special card", "card", card.String(), "slot", slot, "target_player", targetPlayer, "target_slot", targetSlot)
	return t.svc.PlaySpecial(t.state, actor, slot, targetPlayer, targetSlot)
}

func (t *table) pickSlot(player int, prompt string) (int, error) {
	p, err := t.state.Player(player)
	if err != nil {
		return domain.NoTarget, err
	}
	options := make([]string, len(p.Hand))
	for i, c := range p.Hand {
		label := "face down"
		if c.IsZero() {
			label = "empty"
		}
		options[i] = fmt.Sprintf("Slot %d (%s)", i+1, label)
	}
	choice, err := t.ask.Select(prompt, options)
	if err != nil {
		return domain.NoTarget, err
	}
	return choice, nil
}

func (t *table) pickPlayer(actor int, prompt string) (int, error) {
	var options []string
	var players []int
	for i, p := range t.state.Players {
		if i == actor {
			continue
		}
		options = append(options, fmt.Sprintf("%d. %s", i+1, p.Name))
		players = append(players, i)
	}
	choice, err := t.ask.Select(prompt, options)
	if err != nil {
		return domain.NoTarget, err
	}
	if choice < 0 || choice >= len(players) {
		return domain.NoTarget, domain.ErrInvalidPlayer
	}
	return players[choice], nil
}

// report prints the events viewer may see. viewer -1 only sees broadcasts.
func (t *table) report(events []app.Event, viewer int) error {
	for _, ev := range events {
		if !visibleTo(ev, viewer) {
			continue
		}
		t.logger.Debug("event", "kind", string(ev.Kind), "round", ev.RoundID)

		switch p := ev.Payload.(type) {
		case app.RoundStartedPayload:
			pterm.DefaultSection.Printfln("New round, %d cards each", p.HandSize)
		case app.CardDrawnPayload:
			if p.Card.IsZero() {
				pterm.Info.Printfln("%s drew from the %s", t.name(p.Seat), p.Source)
			} else {
				pterm.Info.Printfln("%s drew %s from the %s", t.name(p.Seat), cardLabel(p.Card), p.Source)
			}
		case app.CardExchangedPayload:
			pterm.Info.Printfln("%s replaced slot %d and discarded %s", t.name(p.Seat), p.Slot+1, cardLabel(p.Displaced))
		case app.CardDiscardedPayload:
			pterm.Info.Printfln("%s discarded %s", t.name(p.Seat), cardLabel(p.Card))
		case app.SpecialPlayedPayload:
			if err := t.reportEffect(p); err != nil {
				return err
			}
		case app.TurnChangedPayload:
			t.logger.Debug("turn changed", "current_player", p.CurrentPlayer)
		case app.DutchCalledPayload:
			pterm.Warning.Printfln("%s calls Dutch!", t.name(p.Seat))
		case app.RoundScoredPayload:
			renderScores(t.state, p)
		case app.GameOverPayload:
			renderStandings(p.Standings)
		}
	}
	return nil
}

func (t *table) reportEffect(p app.SpecialPlayedPayload) error {
	eff := p.Effect
	switch eff.Kind {
	case domain.EffectSwap:
		pterm.Info.Printfln("Valet! %s swapped their slot %d with %s's slot %d",
			t.name(p.Seat), eff.From.Slot+1, t.name(eff.To.Player), eff.To.Slot+1)
	case domain.EffectPeek:
		pterm.Info.Printfln("Dame! Slot %d holds %s", eff.From.Slot+1, cardLabel(eff.Card))
		_, err := t.ask.Confirm("Memorised?", true)
		return err
	case domain.EffectGive:
		if eff.To.Slot == domain.NoTarget {
			pterm.Info.Printfln("As! %s had no room, nothing dealt", t.name(eff.To.Player))
			return nil
		}
		pterm.Info.Printfln("As! %s receives a card in slot %d", t.name(eff.To.Player), eff.To.Slot+1)
	default:
		pterm.Info.Printfln("%s played %s", t.name(p.Seat), cardLabel(p.Card))
	}
	return nil
}

func (t *table) name(player int) string {
	if player < 0 || player >= len(t.state.Players) {
		return "?"
	}
	return t.state.Players[player].Name
}

func visibleTo(ev app.Event, viewer int) bool {
	if len(ev.Recipients) == 0 {
		return true
	}
	for _, r := range ev.Recipients {
		if r == viewer {
			return true
		}
	}
	return false
}

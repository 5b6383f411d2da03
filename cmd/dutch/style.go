package main

import (
	"fmt"
	"strconv"

	"dutch/internal/app"
	"dutch/internal/domain"

	"github.com/pterm/pterm"
)

// cardLabel colours a face-up card by suit.
func cardLabel(c domain.Card) string {
	if c.IsZero() {
		return pterm.Gray("--")
	}
	if c.Suit.IsRed() {
		return pterm.Red(c.String())
	}
	return pterm.LightWhite(c.String())
}

// hiddenHand shows occupied slots face down.
func hiddenHand(hand []domain.Card) string {
	out := ""
	for i, c := range hand {
		if i > 0 {
			out += " "
		}
		if c.IsZero() {
			out += pterm.Gray(fmt.Sprintf("%d:--", i+1))
			continue
		}
		out += pterm.LightBlue(fmt.Sprintf("%d:??", i+1))
	}
	return out
}

func openHand(hand []domain.Card) string {
	out := ""
	for i, c := range hand {
		if i > 0 {
			out += " "
		}
		out += cardLabel(c)
	}
	return out
}

// renderTable prints every seat with face-down hands plus both piles.
func renderTable(state *domain.GameState) {
	data := pterm.TableData{{"", "Player", "Hand", "Score"}}
	for i, p := range state.Players {
		marker := ""
		if i == state.CurrentPlayer {
			marker = pterm.LightYellow("▶")
		}
		data = append(data, []string{marker, p.Name, hiddenHand(p.Hand), strconv.Itoa(p.Score)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()

	top, ok := state.TopDiscard()
	discard := pterm.Gray("empty")
	if ok {
		discard = cardLabel(top)
	}
	pterm.Printfln("Deck: %d cards   Discard: %s", len(state.Deck), discard)
}

// renderScores prints the revealed hands and the round breakdown.
func renderScores(state *domain.GameState, p app.RoundScoredPayload) {
	data := pterm.TableData{{"Player", "Hand", "Cards", "Penalty", "Dutch", "Total"}}
	for _, s := range p.Scores {
		dutch := ""
		if s.DutchPenalty > 0 {
			dutch = pterm.Red("+" + strconv.Itoa(s.DutchPenalty))
		}
		data = append(data, []string{
			state.Players[s.Player].Name,
			openHand(p.Hands[s.Player]),
			strconv.Itoa(s.HandTotal),
			strconv.Itoa(s.Penalty),
			dutch,
			strconv.Itoa(p.Totals[s.Player]),
		})
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	table, _ := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	pbox.WithTitle(pterm.LightYellow("|ROUND SCORES|")).WithTitleTopCenter().Println(table)
}

// renderStandings prints the final ranking, lowest score first.
func renderStandings(standings []domain.Standing) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	info := ""
	for i, s := range standings {
		line := fmt.Sprintf("%d. %s  %d", i+1, s.Name, s.Score)
		if s.Score == standings[0].Score {
			line = pterm.LightGreen(line)
		}
		info += line + "\n"
	}
	pbox.WithTitle(pterm.LightYellow("|GAME OVER|")).WithTitleTopCenter().Println(info)
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"encore/internal/sim"
	"encore/internal/store"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

var stdinReader = bufio.NewReader(os.Stdin)

func printSuccess(msg string) { success.Println(msg) }
func printWarn(msg string)    { warn.Println(msg) }
func printInfo(msg string)    { neutral.Println(msg) }

func promptRequired(label string) (string, error) {
	for {
		accent.Printf("%s: ", label)
		line, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		warn.Println("A value is required.")
	}
}

func promptOptional(label string) (string, error) {
	accent.Printf("%s: ", label)
	line, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptChoice(label string, options []string, fallback string) (string, error) {
	for {
		accent.Printf("%s [%s] (default %s): ", label, strings.Join(options, "/"), fallback)
		line, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			return fallback, nil
		}
		for _, opt := range options {
			if line == opt {
				return line, nil
			}
		}
		warn.Println("Pick one of the listed options.")
	}
}

func promptInt(label string, min int64) (int64, error) {
	for {
		accent.Printf("%s: ", label)
		line, err := stdinReader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		n, convErr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if convErr != nil || n < min {
			warn.Printf("Enter a number >= %d.\n", min)
			continue
		}
		return n, nil
	}
}

func formatMoney(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	var out strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	return "$" + out.String()
}

func renderSaves(saves []store.SaveHeader) {
	if len(saves) == 0 {
		printInfo("No careers yet. Run `enc new` to start one.")
		return
	}
	fmt.Printf("%-38s %-20s %s\n", "SAVE", "ARTIST", "LAST PLAYED")
	for _, h := range saves {
		fmt.Printf("%-38s %-20s %s\n", h.ID, h.Artist, h.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func renderSummary(s sim.Summary) {
	accent.Printf("%s - %s\n", s.Artist, s.Date)
	fmt.Printf("  %-16s %d\n", "Songs", s.Songs)
	fmt.Printf("  %-16s %d\n", "Releases", s.Releases)
	fmt.Printf("  %-16s %d\n", "Total streams", s.TotalStreams)
	fmt.Printf("  %-16s %d\n", "Award wins", s.AwardWins)
	if s.HotRank > 0 {
		success.Printf("  %-16s #%d on the Hot chart\n", "Charting", s.HotRank)
	}
	if s.PendingOffers > 0 {
		warn.Printf("  %d offers waiting, see `enc offers`.\n", s.PendingOffers)
	}
	if s.UnreadEmails > 0 {
		warn.Printf("  %d unread emails, see `enc inbox`.\n", s.UnreadEmails)
	}
}

func renderEmails(emails []*sim.Email) {
	for _, e := range emails {
		fmt.Println()
		accent.Printf("%s - %s\n", e.From, e.Subject)
		if e.Body != "" {
			printInfo(e.Body)
		}
	}
}

func renderInbox(emails []*sim.Email) {
	if len(emails) == 0 {
		printInfo("Inbox zero.")
		return
	}
	fmt.Printf("%-12s %-10s %-24s %s\n", "EMAIL", "DATE", "FROM", "SUBJECT")
	for _, e := range emails {
		marker := " "
		if !e.Read {
			marker = "*"
		}
		fmt.Printf("%-12s %-10s %-24s %s%s\n", e.ID, e.Date, e.From, marker, e.Subject)
	}
}

func renderSongs(songs []*sim.Song) {
	if len(songs) == 0 {
		printInfo("No songs recorded yet. Run `enc record`.")
		return
	}
	fmt.Printf("%-12s %-28s %-8s %4s %12s  %s\n", "SONG", "TITLE", "GENRE", "Q", "STREAMS", "STATUS")
	for _, song := range songs {
		status := "unreleased"
		if song.Released {
			status = "released " + song.ReleasedOn.String()
		} else if song.ReleaseID != "" {
			status = "on " + song.ReleaseID
		}
		fmt.Printf("%-12s %-28s %-8s %4d %12d  %s\n",
			song.ID, truncate(song.Title, 28), song.Genre, song.Quality, song.Streams, status)
	}
}

func renderChart(snap sim.ChartSnapshot) {
	accent.Printf("%s chart - %s\n", strings.ToUpper(string(snap.Kind)), snap.Date)
	if len(snap.Entries) == 0 {
		printInfo("Chart not computed yet. Advance a week first.")
		return
	}
	fmt.Printf("%3s %4s %4s %4s  %-30s %s\n", "#", "LW", "PEAK", "WKS", "TITLE", "ARTIST")
	for _, e := range snap.Entries {
		lw := "NEW"
		if e.LastWeek != nil {
			lw = strconv.Itoa(*e.LastWeek)
		}
		line := fmt.Sprintf("%3d %4s %4d %4d  %-30s %s",
			e.Rank, lw, e.Peak, e.WeeksOn, truncate(e.Title, 30), e.Artist)
		if e.Player {
			success.Println(line)
		} else {
			fmt.Println(line)
		}
	}
}

type offerRow struct {
	Kind  sim.OfferKind `json:"kind"`
	Offer struct {
		ID      string       `json:"id"`
		Offered sim.GameDate `json:"offered"`
		Expires sim.GameDate `json:"expires"`
		SongID  string       `json:"song_id"`
	} `json:"offer"`
}

func renderOffers(raw []json.RawMessage) {
	if len(raw) == 0 {
		printInfo("No pending offers.")
		return
	}
	fmt.Printf("%-12s %-20s %-10s %s\n", "OFFER", "KIND", "EXPIRES", "ABOUT")
	for _, msg := range raw {
		var row offerRow
		if err := json.Unmarshal(msg, &row); err != nil {
			danger.Printf("unreadable offer: %v\n", err)
			continue
		}
		fmt.Printf("%-12s %-20s %-10s %s\n", row.Offer.ID, row.Kind, row.Offer.Expires, row.Offer.SongID)
	}
}

func renderSubmissions(subs []*sim.Submission) {
	if len(subs) == 0 {
		printInfo("No label submissions yet. Accept a label offer first.")
		return
	}
	for _, sub := range subs {
		accent.Printf("%s - release %s\n", sub.ID, sub.ReleaseID)
		fmt.Printf("  budget %s, spent %s, remaining %s\n",
			formatMoney(sub.PromoBudget), formatMoney(sub.PromoSpent), formatMoney(sub.Remaining()))
		if len(sub.RecommendedSingles) > 0 {
			fmt.Printf("  recommended singles: %s\n", strings.Join(sub.RecommendedSingles, ", "))
		}
		for _, line := range sub.SpendLog {
			fmt.Printf("  %s  %-16s %-12s %s\n", line.Date, line.Action, line.SongID, formatMoney(line.Amount))
		}
	}
}

func renderCeremonies(ceremonies []*sim.Ceremony) {
	if len(ceremonies) == 0 {
		printInfo("No award seasons yet.")
		return
	}
	for _, c := range ceremonies {
		accent.Printf("%s %d - %s\n", c.Award, c.Year, c.Stage)
		for _, n := range c.Nominations {
			fmt.Printf("  nominated  %-24s %s\n", n.Category, n.ItemID)
		}
		for _, rec := range c.Records {
			if rec.Winner {
				success.Printf("  WON        %-24s %s\n", rec.Category, rec.ItemID)
			} else {
				fmt.Printf("  lost       %-24s %s\n", rec.Category, rec.ItemID)
			}
		}
	}
}

func renderTours(tours []*sim.Tour) {
	if len(tours) == 0 {
		printInfo("No tours. Run `enc tour book`.")
		return
	}
	for _, t := range tours {
		accent.Printf("%s %q - %s\n", t.ID, t.Name, t.Status)
		fmt.Printf("  %d tickets sold, %s grossed\n", t.TicketsSold, formatMoney(t.TotalRevenue))
		for _, v := range t.Venues {
			mark := " "
			if v.Played {
				mark = "x"
			}
			fmt.Printf("  %s %-24s %-16s %6d\n", mark, v.Name, v.City, v.Capacity)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "encore/internal/cli"
	"encore/internal/config"
	"encore/internal/sim"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "enc",
		Short:        "Encore CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newNewCmd(&apiBase),
		newSavesCmd(&apiBase),
		newUseCmd(&apiBase),
		newDropCmd(&apiBase),
		newStatusCmd(&apiBase),
		newWeekCmd(&apiBase),
		newRecordCmd(&apiBase),
		newSongsCmd(&apiBase),
		newReleaseCmd(&apiBase),
		newChartCmd(&apiBase),
		newInboxCmd(&apiBase),
		newOffersCmd(&apiBase),
		newSubsCmd(&apiBase),
		newPromoCmd(&apiBase),
		newPlanCmd(&apiBase),
		newAwardsCmd(&apiBase),
		newTourCmd(&apiBase),
		newWatchCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func activeSave() (cl.Session, error) {
	return cl.LoadSession()
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 60*time.Second)
}

func newNewCmd(apiBase *string) *cobra.Command {
	var seed int64
	c := &cobra.Command{
		Use:   "new",
		Short: "Start a new career",
		RunE: func(cmd *cobra.Command, args []string) error {
			artist, err := promptRequired("Artist name")
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			summary, err := newClient(apiBase).CreateSave(ctx, artist, seed)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{SaveID: summary.SaveID, Artist: summary.Artist}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Career started for %s (%s). Save %s is now active.",
				summary.Artist, summary.Date, summary.SaveID))
			return nil
		},
	}
	c.Flags().Int64Var(&seed, "seed", time.Now().UnixNano()%1_000_000, "world seed")
	return c
}

func newSavesCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "saves",
		Short: "List careers on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			saves, err := newClient(apiBase).ListSaves(ctx)
			if err != nil {
				return err
			}
			renderSaves(saves)
			return nil
		},
	}
}

func newUseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "use <save-id>",
		Short: "Switch the active career",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			summary, err := newClient(apiBase).Summary(ctx, args[0])
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{SaveID: summary.SaveID, Artist: summary.Artist}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Now playing as %s (%s).", summary.Artist, summary.Date))
			return nil
		},
	}
}

func newDropCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <save-id>",
		Short: "Delete a career permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, err := promptRequired(fmt.Sprintf("Type the save id to delete %s", args[0]))
			if err != nil {
				return err
			}
			if confirm != args[0] {
				printWarn("Save id mismatch, nothing deleted.")
				return nil
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient(apiBase).DeleteSave(ctx, args[0]); err != nil {
				return err
			}
			if sess, err := cl.LoadSession(); err == nil && sess.SaveID == args[0] {
				_ = cl.ClearSession()
			}
			printSuccess("Save deleted.")
			return nil
		},
	}
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current week at a glance",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			summary, err := newClient(apiBase).Summary(ctx, sess.SaveID)
			if err != nil {
				return err
			}
			renderSummary(summary)
			return nil
		},
	}
}

func newWeekCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "week [n]",
		Short: "Advance the clock by n weeks (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			weeks := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("weeks must be a positive number")
				}
				weeks = n
			}
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			res, err := newClient(apiBase).Advance(ctx, sess.SaveID, weeks)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("It is now %s.", res.Date))
			renderEmails(res.Emails)
			return nil
		},
	}
}

func newRecordCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record a new song",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			title, err := promptRequired("Song title")
			if err != nil {
				return err
			}
			genre, err := promptChoice("Genre",
				[]string{"pop", "rap", "rnb", "country", "rock", "edm", "indie"}, "pop")
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			song, err := newClient(apiBase).RecordSong(ctx, sess.SaveID, title, genre)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Recorded %q (%s, quality %d).", song.Title, song.Genre, song.Quality))
			return nil
		},
	}
}

func newSongsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "songs",
		Short: "List the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			songs, err := newClient(apiBase).ListSongs(ctx, sess.SaveID)
			if err != nil {
				return err
			}
			renderSongs(songs)
			return nil
		},
	}
}

func newReleaseCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Assemble songs into a single, EP or album",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			title, err := promptRequired("Release title")
			if err != nil {
				return err
			}
			kind, err := promptChoice("Kind", []string{"single", "ep", "album"}, "single")
			if err != nil {
				return err
			}
			idsRaw, err := promptRequired("Song ids (comma separated)")
			if err != nil {
				return err
			}
			var songIDs []string
			for _, id := range strings.Split(idsRaw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					songIDs = append(songIDs, id)
				}
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			rel, err := newClient(apiBase).AssembleRelease(ctx, sess.SaveID, title, kind, songIDs)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Assembled %s %q with %d tracks (%s).", rel.Kind, rel.Title, len(rel.SongIDs), rel.ID))
			return nil
		},
	}
}

func newChartCmd(apiBase *string) *cobra.Command {
	var genre string
	c := &cobra.Command{
		Use:   "chart [hot|albums]",
		Short: "Show this week's chart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "hot"
			if len(args) == 1 {
				kind = args[0]
			}
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			snap, err := newClient(apiBase).Chart(ctx, sess.SaveID, kind, genre)
			if err != nil {
				return err
			}
			renderChart(snap)
			return nil
		},
	}
	c.Flags().StringVarP(&genre, "genre", "g", "", "genre chart (pop, rap, ...)")
	return c
}

func newInboxCmd(apiBase *string) *cobra.Command {
	inbox := &cobra.Command{
		Use:   "inbox",
		Short: "Read your mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			emails, err := newClient(apiBase).Inbox(ctx, sess.SaveID)
			if err != nil {
				return err
			}
			renderInbox(emails)
			return nil
		},
	}
	inbox.AddCommand(&cobra.Command{
		Use:   "read <email-id>",
		Short: "Mark an email read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient(apiBase).MarkEmailRead(ctx, sess.SaveID, args[0]); err != nil {
				return err
			}
			printSuccess("Marked read.")
			return nil
		},
	})
	return inbox
}

func newOffersCmd(apiBase *string) *cobra.Command {
	offers := &cobra.Command{
		Use:   "offers",
		Short: "List pending offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			raw, err := newClient(apiBase).Offers(ctx, sess.SaveID)
			if err != nil {
				return err
			}
			renderOffers(raw)
			return nil
		},
	}
	offers.AddCommand(&cobra.Command{
		Use:   "accept <offer-id>",
		Short: "Accept an offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			res, err := newClient(apiBase).AcceptOffer(ctx, sess.SaveID, args[0])
			if err != nil {
				return err
			}
			printSuccess("Accepted.")
			renderEmails(res.Emails)
			return nil
		},
	})
	offers.AddCommand(&cobra.Command{
		Use:   "decline <offer-id>",
		Short: "Decline an offer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if _, err := newClient(apiBase).DeclineOffer(ctx, sess.SaveID, args[0]); err != nil {
				return err
			}
			printSuccess("Declined.")
			return nil
		},
	})
	offers.AddCommand(&cobra.Command{
		Use:   "answer <offer-id>",
		Short: "Answer a press question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			text, err := promptRequired("Your answer")
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if _, err := newClient(apiBase).AnswerQuestion(ctx, sess.SaveID, args[0], text); err != nil {
				return err
			}
			printSuccess("Quote sent.")
			return nil
		},
	})
	return offers
}

func newSubsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "subs",
		Short: "List label submissions and budgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			subs, err := newClient(apiBase).Submissions(ctx, sess.SaveID)
			if err != nil {
				return err
			}
			renderSubmissions(subs)
			return nil
		},
	}
}

func newPromoCmd(apiBase *string) *cobra.Command {
	var songID string
	c := &cobra.Command{
		Use:   "promo <submission-id> <action>",
		Short: "Spend promo budget (countdown_page, genius_placement, fallon_placement, press_run, tv_spot)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			sub, err := newClient(apiBase).SpendPromo(ctx, sess.SaveID, args[0], args[1], songID)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Booked. %s remaining on %s.", formatMoney(sub.Remaining()), sub.ID))
			return nil
		},
	}
	c.Flags().StringVar(&songID, "song", "", "song id for song-targeted actions")
	return c
}

func newPlanCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <submission-id>",
		Short: "Schedule the rollout for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			projectWeek, err := promptInt("Project drop week (1-52)", 1)
			if err != nil {
				return err
			}
			projectYear, err := promptInt("Project drop year", 2000)
			if err != nil {
				return err
			}
			project, err := sim.NewGameDate(int(projectWeek), int(projectYear))
			if err != nil {
				return err
			}
			var singles []sim.SinglePlan
			for {
				songID, err := promptOptional("Lead single song id (blank to finish)")
				if err != nil {
					return err
				}
				if songID == "" {
					break
				}
				week, err := promptInt("Single week", 1)
				if err != nil {
					return err
				}
				year, err := promptInt("Single year", 2000)
				if err != nil {
					return err
				}
				date, err := sim.NewGameDate(int(week), int(year))
				if err != nil {
					return err
				}
				singles = append(singles, sim.SinglePlan{SongID: songID, Date: date})
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient(apiBase).PlanRollout(ctx, sess.SaveID, args[0], project, singles); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Rollout locked: %d singles, project drops %s.", len(singles), project))
			return nil
		},
	}
}

func newAwardsCmd(apiBase *string) *cobra.Command {
	awards := &cobra.Command{
		Use:   "awards",
		Short: "Show award season status",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			ceremonies, err := newClient(apiBase).Ceremonies(ctx, sess.SaveID)
			if err != nil {
				return err
			}
			renderCeremonies(ceremonies)
			return nil
		},
	}
	awards.AddCommand(&cobra.Command{
		Use:   "submit <grammy|oscar>",
		Short: "Enter the open submission window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			var entries []sim.SubmittedEntry
			for {
				category, err := promptOptional("Category (blank to finish)")
				if err != nil {
					return err
				}
				if category == "" {
					break
				}
				itemID := ""
				if category != string(sim.CatBestNewArtist) {
					itemID, err = promptRequired("Song or release id")
					if err != nil {
						return err
					}
				}
				entries = append(entries, sim.SubmittedEntry{
					Category: sim.AwardCategory(category),
					ItemID:   itemID,
				})
			}
			if len(entries) == 0 {
				printWarn("No entries, nothing submitted.")
				return nil
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient(apiBase).SubmitAward(ctx, sess.SaveID, args[0], entries); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Submitted %d entries.", len(entries)))
			return nil
		},
	})
	return awards
}

func newTourCmd(apiBase *string) *cobra.Command {
	tour := &cobra.Command{
		Use:   "tour",
		Short: "List tours",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			tours, err := newClient(apiBase).Tours(ctx, sess.SaveID)
			if err != nil {
				return err
			}
			renderTours(tours)
			return nil
		},
	}
	tour.AddCommand(&cobra.Command{
		Use:   "book",
		Short: "Plan a tour",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			name, err := promptRequired("Tour name")
			if err != nil {
				return err
			}
			var venues []sim.Venue
			for {
				venue, err := promptOptional("Venue name (blank to finish)")
				if err != nil {
					return err
				}
				if venue == "" {
					break
				}
				city, err := promptRequired("City")
				if err != nil {
					return err
				}
				capacity, err := promptInt("Capacity", 100)
				if err != nil {
					return err
				}
				venues = append(venues, sim.Venue{Name: venue, City: city, Capacity: capacity})
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			planned, err := newClient(apiBase).PlanTour(ctx, sess.SaveID, name, venues)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Tour %q planned across %d venues (%s).", planned.Name, len(planned.Venues), planned.ID))
			return nil
		},
	})
	tour.AddCommand(&cobra.Command{
		Use:   "start <tour-id>",
		Short: "Put a planned tour on the road",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := activeSave()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext(cmd)
			defer cancel()
			if err := newClient(apiBase).StartTour(ctx, sess.SaveID, args[0]); err != nil {
				return err
			}
			printSuccess("Tour underway. One city per week.")
			return nil
		},
	})
	return tour
}

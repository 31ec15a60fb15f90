package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	pointsservice "github.com/Black-And-White-Club/poker-points/app/modules/points/application"
	"github.com/urfave/cli/v2"
)

// serviceFactory opens the points service for one command invocation.
type serviceFactory func(c *cli.Context) (pointsservice.Service, func() error, error)

func newApp(open serviceFactory, now func() time.Time) *cli.App {
	dates := newDateParser(now)

	withService := func(fn func(c *cli.Context, svc pointsservice.Service) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			svc, closeFn, err := open(c)
			if err != nil {
				return err
			}
			defer func() {
				if closeFn != nil {
					_ = closeFn()
				}
			}()
			return fn(c, svc)
		}
	}

	return &cli.App{
		Name:  "pointsctl",
		Usage: "manage poker club seasons and points",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Commands: []*cli.Command{
			{
				Name:  "season",
				Usage: "season management",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "create a season",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "starts", Value: "today", Usage: "start date (2026-01-31, \"next monday\", ...)"},
							&cli.StringFlag{Name: "ends", Usage: "optional end date"},
							&cli.BoolFlag{Name: "activate", Usage: "make the new season active"},
						},
						Action: withService(func(c *cli.Context, svc pointsservice.Service) error {
							starts, err := dates.Parse(c.String("starts"))
							if err != nil {
								return err
							}
							req := pointsservice.CreateSeasonRequest{
								Name:      c.String("name"),
								StartDate: starts,
								Activate:  c.Bool("activate"),
							}
							if raw := c.String("ends"); raw != "" {
								ends, err := dates.Parse(raw)
								if err != nil {
									return err
								}
								req.EndDate = &ends
							}
							season, err := svc.CreateSeason(c.Context, req)
							if err != nil {
								return err
							}
							printSeason(c, season)
							return nil
						}),
					},
					{
						Name:      "activate",
						Usage:     "make a season the active one",
						ArgsUsage: "<season-id>",
						Action: withService(func(c *cli.Context, svc pointsservice.Service) error {
							if c.NArg() != 1 {
								return fmt.Errorf("usage: pointsctl season activate <season-id>")
							}
							season, err := svc.ActivateSeason(c.Context, c.Args().First())
							if err != nil {
								return err
							}
							printSeason(c, season)
							return nil
						}),
					},
				},
			},
			{
				Name:      "leaderboard",
				Usage:     "print a season's standings",
				ArgsUsage: "[season-id]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
				},
				Action: withService(func(c *cli.Context, svc pointsservice.Service) error {
					board, err := svc.GetLeaderboard(c.Context, pointsservice.LeaderboardQuery{
						SeasonID: c.Args().First(),
						Page:     c.Int("page"),
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s (page %d of %d)\n", board.Season.Name, board.Page.Number, board.Page.TotalPages)
					tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "RANK\tMEMBERSHIP\tUSER\tPOINTS")
					for _, row := range board.Rows {
						fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", row.Rank, row.MembershipID, row.UserID, row.Points)
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "adjust",
				Usage:     "apply a manual points correction",
				ArgsUsage: "<membership-id> <delta> <reason>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "request-id", Usage: "skip the correction if this id was already applied"},
				},
				Action: withService(func(c *cli.Context, svc pointsservice.Service) error {
					if c.NArg() != 3 {
						return fmt.Errorf("usage: pointsctl adjust <membership-id> <delta> <reason>")
					}
					membershipID, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid membership id %q", c.Args().Get(0))
					}
					delta, err := strconv.Atoi(c.Args().Get(1))
					if err != nil {
						return fmt.Errorf("invalid delta %q", c.Args().Get(1))
					}
					res, err := svc.AdjustPoints(c.Context, pointsservice.AdjustmentRequest{
						MembershipID: membershipID,
						Delta:        delta,
						Reason:       c.Args().Get(2),
						RequestID:    c.String("request-id"),
					})
					if err != nil {
						return err
					}
					if res.AlreadyApplied {
						fmt.Fprintf(c.App.Writer, "request %s already applied\n", c.String("request-id"))
					}
					for _, a := range res.Applied {
						fmt.Fprintf(c.App.Writer, "membership %d: %+d, balance %d\n", a.MembershipID, a.Delta, a.Balance)
					}
					return nil
				}),
			},
			{
				Name:      "reconcile",
				Usage:     "compare a balance with its ledger",
				ArgsUsage: "<membership-id>",
				Action: withService(func(c *cli.Context, svc pointsservice.Service) error {
					membershipID, err := strconv.ParseInt(c.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid membership id %q", c.Args().First())
					}
					rec, err := svc.Reconcile(c.Context, membershipID)
					if err != nil {
						return err
					}
					status := "consistent"
					if !rec.Consistent {
						status = "MISMATCH"
					}
					fmt.Fprintf(c.App.Writer, "membership %d: balance %d, ledger %d, %s\n",
						rec.MembershipID, rec.Balance, rec.LedgerTotal, status)
					if !rec.Consistent {
						return fmt.Errorf("membership %d balance differs from ledger by %d", rec.MembershipID, rec.Balance-rec.LedgerTotal)
					}
					return nil
				}),
			},
		},
	}
}

func printSeason(c *cli.Context, s *pointsservice.SeasonView) {
	ends := "open"
	if s.EndDate != nil {
		ends = s.EndDate.Format(time.DateOnly)
	}
	fmt.Fprintf(c.App.Writer, "%s\t%s\t%s..%s\tactive=%t\n", s.ID, s.Name, s.StartDate.Format(time.DateOnly), ends, s.IsActive)
}

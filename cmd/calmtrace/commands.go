package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"calmtrace/internal/bootstrap"
	anomalydto "calmtrace/internal/modules/anomaly/dto"
	baselinedto "calmtrace/internal/modules/baseline/dto"
	reliefdto "calmtrace/internal/modules/relief/dto"
	riskdto "calmtrace/internal/modules/risk/dto"
	"calmtrace/internal/ui/table"
)

func newBaselineCmd(flags *rootFlags) *cobra.Command {
	var (
		user    string
		days    int
		version int
	)
	baseline := &cobra.Command{Use: "baseline", Short: "Personal calm baselines"}
	baseline.PersistentFlags().StringVar(&user, "user", "", "user id")

	printOne := func(cmd *cobra.Command, b baselinedto.BaselineOutput) error {
		if flags.jsonOut {
			return printJSON(cmd.OutOrStdout(), b)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), baselineTable([]baselinedto.BaselineOutput{b}))
		return nil
	}

	calculate := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate and activate a new baseline version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				b, err := app.BaselineCLI.Calculate(context.Background(), user, days)
				if err != nil {
					return err
				}
				return printOne(cmd, b)
			})
		},
	}
	calculate.Flags().IntVar(&days, "days", 0, "lookback days (default from config)")

	update := &cobra.Command{
		Use:   "update",
		Short: "Recalculate for a user that already has an active baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				b, err := app.BaselineCLI.Update(context.Background(), user, days)
				if err != nil {
					return err
				}
				return printOne(cmd, b)
			})
		},
	}
	update.Flags().IntVar(&days, "days", 0, "lookback days (default from config)")

	active := &cobra.Command{
		Use:   "active",
		Short: "Show the active baseline, or --version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				b, err := app.BaselineCLI.Show(context.Background(), user, version)
				if err != nil {
					return err
				}
				return printOne(cmd, b)
			})
		},
	}
	active.Flags().IntVar(&version, "version", 0, "baseline version")

	history := &cobra.Command{
		Use:   "history",
		Short: "List baseline versions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				items, err := app.BaselineCLI.History(context.Background(), user)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), items)
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), baselineTable(items))
				return nil
			})
		},
	}

	activate := &cobra.Command{
		Use:   "activate <version>",
		Short: "Make a version the active baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				b, err := app.BaselineCLI.Activate(context.Background(), user, v)
				if err != nil {
					return err
				}
				return printOne(cmd, b)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <version>",
		Short: "Delete an inactive baseline version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				if err := app.BaselineCLI.Delete(context.Background(), user, v); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted baseline v%d\n", v)
				return nil
			})
		},
	}

	var (
		hr, sdnn, rmssd, temp, movement, index float64
		activity                               string
	)
	assess := &cobra.Command{
		Use:   "assess",
		Short: "Score a reading against the active baseline, or classify --index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				var (
					out baselinedto.AssessOutput
					err error
				)
				if cmd.Flags().Changed("index") {
					out, err = app.BaselineCLI.Classify(context.Background(), user, index)
				} else {
					fs := cmd.Flags()
					out, err = app.BaselineCLI.Assess(context.Background(), baselinedto.AssessInput{
						UserID:            user,
						HeartRate:         changed(fs, "hr", hr),
						HRVSDNN:           changed(fs, "sdnn", sdnn),
						HRVRMSSD:          changed(fs, "rmssd", rmssd),
						ObjectTemp:        changed(fs, "temp", temp),
						MovementIntensity: changed(fs, "movement", movement),
						ActivityState:     activity,
					})
				}
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				t := table.New("STRESS INDEX", "LEVEL", "BASELINE").StyleColumn(1, levelStyle)
				t.Row(strconv.FormatFloat(out.StressIndex, 'f', 1, 64), strconv.Itoa(out.StressLevel), versionLabel(out.BaselineVersion))
				_, _ = fmt.Fprint(cmd.OutOrStdout(), t.Render())
				return nil
			})
		},
	}
	assess.Flags().Float64Var(&hr, "hr", 0, "heart rate")
	assess.Flags().Float64Var(&sdnn, "sdnn", 0, "HRV SDNN")
	assess.Flags().Float64Var(&rmssd, "rmssd", 0, "HRV RMSSD")
	assess.Flags().Float64Var(&temp, "temp", 0, "object temperature")
	assess.Flags().Float64Var(&movement, "movement", 0, "movement intensity")
	assess.Flags().StringVar(&activity, "activity", "", "activity state (STATIC or WALKING)")
	assess.Flags().Float64Var(&index, "index", 0, "classify an existing stress index instead")

	baseline.AddCommand(calculate, update, active, history, activate, del, assess)
	return baseline
}

func baselineTable(items []baselinedto.BaselineOutput) string {
	t := table.New("VERSION", "ACTIVE", "SAMPLES", "HR", "SDNN", "RMSSD", "TEMP", "THRESHOLDS", "DATA")
	for _, b := range items {
		active := "no"
		if b.Active {
			active = "yes"
		}
		t.Row(
			strconv.Itoa(b.Version),
			active,
			strconv.Itoa(b.SampleCount),
			metricLabel(b.HeartRate),
			metricLabel(b.HRVSDNN),
			metricLabel(b.HRVRMSSD),
			metricLabel(b.Temperature),
			fmt.Sprintf("%d/%d/%d", b.ThresholdLow, b.ThresholdMedium, b.ThresholdHigh),
			formatTime(b.DataStart)+" → "+formatTime(b.DataEnd),
		)
	}
	return t.Render()
}

func metricLabel(m baselinedto.MetricOutput) string {
	if m.Count == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f±%.1f", m.Mean, m.Std)
}

func versionLabel(v int) string {
	if v == 0 {
		return "fixed bands"
	}
	return "v" + strconv.Itoa(v)
}

func changed(fs *pflag.FlagSet, name string, v float64) *float64 {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}

func newAnomalyCmd(flags *rootFlags) *cobra.Command {
	var (
		user          string
		limit, offset int
	)
	anomaly := &cobra.Command{Use: "anomaly", Short: "Detected stress anomalies"}
	anomaly.PersistentFlags().StringVar(&user, "user", "", "user id")

	list := &cobra.Command{
		Use:   "list",
		Short: "List anomalies, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				events, err := app.AnomalyCLI.List(context.Background(), user, limit, offset)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), events)
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), anomalyTable(events))
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "page size")
	list.Flags().IntVar(&offset, "offset", 0, "rows to skip")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of the user's anomalies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid anomaly id %q", args[0])
			}
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				if err := app.AnomalyCLI.Delete(context.Background(), user, eventID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted anomaly %d\n", eventID)
				return nil
			})
		},
	}

	anomaly.AddCommand(list, del)
	return anomaly
}

func anomalyTable(events []anomalydto.EventOutput) string {
	t := table.New("ID", "SAMPLE", "DETECTED")
	for _, e := range events {
		t.Row(strconv.FormatInt(e.ID, 10), strconv.FormatInt(e.SampleID, 10), formatTime(e.DetectedAt))
	}
	return t.Render()
}

func newInterventionCmd(flags *rootFlags) *cobra.Command {
	intervention := &cobra.Command{Use: "intervention", Short: "Relief intervention catalog"}

	var in reliefdto.InterventionInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add or update an intervention",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.ReliefCLI.AddIntervention(context.Background(), in)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", out.Code, out.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&in.ID, "id", "", "intervention id (generated when empty)")
	add.Flags().StringVar(&in.Code, "code", "", "unique code (default derived from --name)")
	add.Flags().StringVar(&in.Name, "name", "", "display name")
	add.Flags().StringVar(&in.Kind, "kind", "", "kind, e.g. breathing")
	add.Flags().StringVar(&in.Description, "description", "", "description")
	add.Flags().IntVar(&in.DurationSeconds, "duration", 0, "suggested duration in seconds")

	list := &cobra.Command{
		Use:   "list",
		Short: "List interventions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				items, err := app.ReliefCLI.ListInterventions(context.Background())
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), items)
				}
				t := table.New("ID", "CODE", "NAME", "KIND", "SECONDS")
				for _, it := range items {
					t.Row(it.ID, it.Code, it.Name, it.Kind, strconv.Itoa(it.DurationSeconds))
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), t.Render())
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one intervention",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				it, err := app.ReliefCLI.ShowIntervention(context.Background(), args[0])
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), it)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  %ds\n%s\n", it.Code, it.Name, it.Kind, it.DurationSeconds, it.Description)
				return nil
			})
		},
	}

	intervention.AddCommand(add, list, show)
	return intervention
}

func newReliefCmd(flags *rootFlags) *cobra.Command {
	var user string
	relief := &cobra.Command{Use: "relief", Short: "Relief sessions and their stress effect"}
	relief.PersistentFlags().StringVar(&user, "user", "", "user id")

	printSessions := func(cmd *cobra.Command, sessions ...reliefdto.SessionOutput) error {
		if flags.jsonOut {
			if len(sessions) == 1 {
				return printJSON(cmd.OutOrStdout(), sessions[0])
			}
			return printJSON(cmd.OutOrStdout(), sessions)
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), sessionTable(sessions))
		return nil
	}

	var (
		interventionID, trigger, gesture, startedAt string
		anomalyID                                   int64
	)
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a relief session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireUser(user); err != nil {
				return err
			}
			at, err := optionalTime("at", startedAt)
			if err != nil {
				return err
			}
			input := reliefdto.StartInput{UserID: user, InterventionID: interventionID, TriggerType: trigger, StartedAt: at, GestureCode: gesture}
			if cmd.Flags().Changed("anomaly") {
				input.AnomalyID = &anomalyID
			}
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				s, err := app.ReliefCLI.Start(context.Background(), input)
				if err != nil {
					return err
				}
				return printSessions(cmd, s)
			})
		},
	}
	start.Flags().StringVar(&interventionID, "intervention", "", "intervention id")
	start.Flags().StringVar(&trigger, "trigger", "MANUAL", "AUTO_SUGGEST or MANUAL")
	start.Flags().StringVar(&gesture, "gesture", "", "gesture code")
	start.Flags().StringVar(&startedAt, "at", "", "start time, RFC3339 (default now)")
	start.Flags().Int64Var(&anomalyID, "anomaly", 0, "anomaly that prompted the session")

	var (
		endedAt string
		rating  int
	)
	end := &cobra.Command{
		Use:   "end <session-id>",
		Short: "End a relief session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := optionalTime("at", endedAt)
			if err != nil {
				return err
			}
			input := reliefdto.EndInput{UserID: user, SessionID: args[0], EndedAt: at}
			if cmd.Flags().Changed("rating") {
				input.UserRating = &rating
			}
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				s, err := app.ReliefCLI.End(context.Background(), input)
				if err != nil {
					return err
				}
				return printSessions(cmd, s)
			})
		},
	}
	end.Flags().StringVar(&endedAt, "at", "", "end time, RFC3339 (default now)")
	end.Flags().IntVar(&rating, "rating", 0, "user rating 1-5")

	show := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				s, err := app.ReliefCLI.Show(context.Background(), user, args[0])
				if err != nil {
					return err
				}
				return printSessions(cmd, s)
			})
		},
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions started in [from, to)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseTime("from", from)
			if err != nil {
				return err
			}
			t, err := parseTime("to", to)
			if err != nil {
				return err
			}
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				sessions, err := app.ReliefCLI.List(context.Background(), user, f, t)
				if err != nil {
					return err
				}
				return printSessions(cmd, sessions...)
			})
		},
	}
	list.Flags().StringVar(&from, "from", "", "range start, RFC3339")
	list.Flags().StringVar(&to, "to", "", "range end, RFC3339")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Per-intervention stress change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.ReliefCLI.Stats(context.Background(), user)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				t := table.New("INTERVENTION", "SESSIONS", "MEASURED", "AVG CHANGE")
				for _, s := range out.Interventions {
					t.Row(s.Name, strconv.Itoa(s.Sessions), strconv.Itoa(s.Measured), formatFloat(s.AvgChange))
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), t.Render())
				if out.MostUsed != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "most used: %s\n", out.MostUsed)
				}
				if out.MostEffective != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "most effective: %s\n", out.MostEffective)
				}
				return nil
			})
		},
	}

	relief.AddCommand(start, end, show, list, stats)
	return relief
}

func sessionTable(sessions []reliefdto.SessionOutput) string {
	t := table.New("ID", "INTERVENTION", "STATE", "BEFORE", "AFTER", "STARTED", "SECONDS", "RATING")
	for _, s := range sessions {
		seconds, rating := "-", "-"
		if s.DurationSeconds != nil {
			seconds = strconv.Itoa(*s.DurationSeconds)
		}
		if s.UserRating != nil {
			rating = strconv.Itoa(*s.UserRating)
		}
		t.Row(s.ID, s.InterventionID, s.State, formatFloat(s.BeforeStress), formatFloat(s.AfterStress), formatTime(s.StartedAt), seconds, rating)
	}
	return t.Render()
}

func newRiskCmd(flags *rootFlags) *cobra.Command {
	var user string
	risk := &cobra.Command{Use: "risk", Short: "Daily composite risk scores"}
	risk.PersistentFlags().StringVar(&user, "user", "", "user id")

	printScores := func(cmd *cobra.Command, scores ...riskdto.ScoreOutput) error {
		if flags.jsonOut {
			if len(scores) == 1 {
				return printJSON(cmd.OutOrStdout(), scores[0])
			}
			return printJSON(cmd.OutOrStdout(), scores)
		}
		t := table.New("DATE", "RISK", "DIARY", "MEASUREMENT", "ANOMALIES", "SAMPLES")
		for _, s := range scores {
			measurement := s.MeasurementComponent
			score := s.RiskScore
			t.Row(s.ScoreDate, formatFloat(&score), formatFloat(s.DiaryComponent), formatFloat(&measurement),
				strconv.Itoa(s.AnomalyCount), strconv.Itoa(s.MeasurementCount))
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	}

	var (
		date  string
		diary float64
	)
	compute := &cobra.Command{
		Use:   "compute",
		Short: "Compute and store one user-day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var diaryScore *float64
			if cmd.Flags().Changed("diary") {
				diaryScore = &diary
			}
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.RiskCLI.Compute(context.Background(), user, date, diaryScore)
				if err != nil {
					return err
				}
				return printScores(cmd, out)
			})
		},
	}
	compute.Flags().StringVar(&date, "date", "", "score date, YYYY-MM-DD")
	compute.Flags().Float64Var(&diary, "diary", 0, "diary depression score 0-100")

	var missingDate string
	missing := &cobra.Command{
		Use:   "compute-missing",
		Short: "Score every user without a row for the date (default yesterday)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.RiskCLI.ComputeMissing(context.Background(), missingDate)
				if err != nil {
					return err
				}
				if flags.jsonOut {
					return printJSON(cmd.OutOrStdout(), out)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: calculated %d, skipped %d, failed %d\n", out.Date, out.Calculated, out.Skipped, out.Failed)
				return nil
			})
		},
	}
	missing.Flags().StringVar(&missingDate, "date", "", "score date, YYYY-MM-DD")

	show := &cobra.Command{
		Use:   "show <date>",
		Short: "Show one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				out, err := app.RiskCLI.Show(context.Background(), user, args[0])
				if err != nil {
					return err
				}
				return printScores(cmd, out)
			})
		},
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List days in [from, to], or the last 30",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, cmd.ErrOrStderr(), func(app *bootstrap.App) error {
				scores, err := app.RiskCLI.List(context.Background(), user, from, to)
				if err != nil {
					return err
				}
				return printScores(cmd, scores...)
			})
		},
	}
	list.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD")
	list.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD")

	risk.AddCommand(compute, missing, show, list)
	return risk
}

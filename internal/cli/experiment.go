package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Manage experiments",
	Long:  `Create, list, update and delete decoding experiments.`,
}

var experimentCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new experiment",
	Long: `Create a new draft experiment. Without --words the default demo
vocabulary is used.

Examples:
  bcilab experiment create "Yes/No" --words yes,no
  bcilab experiment create "Needs" -d "basic needs" -w water,help,stop`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentCreate,
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiments",
	RunE:  runExperimentList,
}

var experimentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an experiment and its sessions",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentShow,
}

var experimentStatusCmd = &cobra.Command{
	Use:   "status <id> <draft|active|paused|completed>",
	Short: "Change the status of an experiment",
	Args:  cobra.ExactArgs(2),
	RunE:  runExperimentStatus,
}

var experimentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an experiment",
	Long:  `Delete an experiment together with its sessions and results. Fails while a session is active.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentDelete,
}

// Flags
var (
	expDescription string
	expWords       []string
)

func init() {
	rootCmd.AddCommand(experimentCmd)

	experimentCmd.AddCommand(experimentCreateCmd)
	experimentCmd.AddCommand(experimentListCmd)
	experimentCmd.AddCommand(experimentShowCmd)
	experimentCmd.AddCommand(experimentStatusCmd)
	experimentCmd.AddCommand(experimentDeleteCmd)

	experimentCreateCmd.Flags().StringVarP(&expDescription, "description", "d", "", "Description of the experiment")
	experimentCreateCmd.Flags().StringSliceVarP(&expWords, "words", "w", nil, "Target vocabulary (comma separated)")
}

func runExperimentCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	words := expWords
	if len(words) == 0 {
		words = defaultWords()
	}

	exp, err := app.Services.Experiments.Create(ctx, app.User, args[0], expDescription, words)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created experiment: %s\n", exp.Title)
	fmt.Fprintf(out, "  ID: %s\n", exp.ID)
	fmt.Fprintf(out, "  Vocabulary: %v\n", exp.Vocabulary)
	return nil
}

func runExperimentList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	exps, err := app.Services.Experiments.List(ctx, app.User)
	if err != nil {
		return err
	}
	printExperiments(cmd.OutOrStdout(), exps)
	return nil
}

func runExperimentShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	exp, err := app.Services.Experiments.Get(ctx, app.User, args[0])
	if err != nil {
		return err
	}
	sessions, err := app.Services.Sessions.ListByExperiment(ctx, app.User, exp.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Experiment: %s (%s)\n", exp.Title, exp.ID)
	if exp.Description != nil {
		fmt.Fprintf(out, "Description: %s\n", *exp.Description)
	}
	fmt.Fprintf(out, "Status: %s\n", exp.Status)
	fmt.Fprintf(out, "Vocabulary: %v\n", exp.Vocabulary)
	fmt.Fprintf(out, "Created: %s\n\n", util.FormatDateTime(exp.CreatedAt))
	printSessions(out, sessions)
	return nil
}

func runExperimentStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	exp, err := app.Services.Experiments.SetStatus(ctx, app.User, args[0], domain.ExperimentStatus(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Experiment %s is now %s\n", exp.Title, exp.Status)
	return nil
}

func runExperimentDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := app.Services.Experiments.Delete(ctx, app.User, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted experiment %s\n", args[0])
	return nil
}

func defaultWords() []string {
	return domain.DefaultVocabulary().Words()
}

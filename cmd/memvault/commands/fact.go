// ABOUTME: CLI commands for remembered facts
// ABOUTME: Set, list, update, delete, and reinforce facts through the gateway
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/models"
)

var (
	factConfidence   float64
	factSensitivity  int
	factConsent      string
	factSource       string
	factAllowHigh    bool
	factCategory     string
	factSensitive    bool
	factUpdateObject string
)

// NewFactCmd creates the fact command group
func NewFactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fact",
		Short: "Manage remembered facts",
		Long: `Manage facts stored as category/predicate/object triples.

Setting the same category and predicate again replaces the value, so
"location home_city Brooklyn" after "location home_city Philadelphia"
leaves one fact, not two.`,
	}

	set := &cobra.Command{
		Use:   "set [category] [predicate] [object]",
		Short: "Store or update a fact",
		Long: `Store a fact, replacing any previous value for the same
category and predicate.

Examples:
  memvault fact set location home_city "Brooklyn"
  memvault fact set preference editor vim --confidence 0.9
  memvault fact set health allergy "penicillin" --sensitivity 3 --allow-high-sensitivity`,
		Args: cobra.ExactArgs(3),
		RunE: runFactSet,
	}
	set.Flags().Float64Var(&factConfidence, "confidence", 0.8, "Confidence in [0,1]")
	set.Flags().IntVar(&factSensitivity, "sensitivity", 1, "Sensitivity 0-3")
	set.Flags().StringVar(&factConsent, "consent", "", "Consent scope: shareable or never_share")
	set.Flags().StringVar(&factSource, "source", "", "Message id the fact came from")
	set.Flags().BoolVar(&factAllowHigh, "allow-high-sensitivity", false, "Consent to store sensitivity-3 data")

	list := &cobra.Command{
		Use:   "list",
		Short: "List facts",
		RunE:  runFactList,
	}
	list.Flags().StringVar(&factCategory, "category", "", "Filter by category")
	list.Flags().BoolVar(&factSensitive, "sensitive", false, "Include sensitive facts")
	list.Flags().BoolVar(&factAllowHigh, "allow-high-sensitivity", false, "With --sensitive, include level-3 and never-share facts")

	update := &cobra.Command{
		Use:   "update [fact-id]",
		Short: "Update parts of a fact",
		Long: `Update a fact in place. Only flags you pass change.

Examples:
  memvault fact update 3f2a... --object "neovim"
  memvault fact update 3f2a... --confidence 0.95 --consent never_share`,
		Args: cobra.ExactArgs(1),
		RunE: runFactUpdate,
	}
	update.Flags().StringVar(&factUpdateObject, "object", "", "New value")
	update.Flags().Float64Var(&factConfidence, "confidence", 0, "New confidence in [0,1]")
	update.Flags().IntVar(&factSensitivity, "sensitivity", 0, "New sensitivity 0-3")
	update.Flags().StringVar(&factConsent, "consent", "", "New consent scope")
	update.Flags().BoolVar(&factAllowHigh, "allow-high-sensitivity", false, "Required when raising sensitivity to 3")

	del := &cobra.Command{
		Use:   "delete [fact-id]",
		Short: "Delete a fact",
		Args:  cobra.ExactArgs(1),
		RunE:  runFactDelete,
	}

	reinforce := &cobra.Command{
		Use:   "reinforce [fact-id]...",
		Short: "Mark facts as useful, boosting confidence",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runFactReinforce,
	}

	cmd.AddCommand(set, list, update, del, reinforce)
	return cmd
}

func runFactSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	params := gateway.SetFactParams{
		Category:             args[0],
		Predicate:            args[1],
		Object:               args[2],
		Sensitivity:          factSensitivity,
		ConsentScope:         factConsent,
		SourceMessageID:      factSource,
		AllowHighSensitivity: factAllowHigh,
	}
	if cmd.Flags().Changed("confidence") {
		params.Confidence = &factConfidence
	}

	data, err := unwrap(gw.SetFact(ctx, params))
	if err != nil {
		return err
	}
	if outputFormat == "json" {
		return printJSON(data)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Fact stored: %s\n", data.(map[string]string)["fact_id"])
	}
	return nil
}

func runFactList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.GetFacts(ctx, gateway.GetFactsParams{
		Category:             factCategory,
		IncludeSensitive:     factSensitive,
		AllowHighSensitivity: factAllowHigh,
	}))
	if err != nil {
		return err
	}
	facts := data.([]models.Fact)
	if outputFormat == "json" {
		return printJSON(facts)
	}
	if len(facts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No facts")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tPREDICATE\tVALUE\tCONF\tSENS")
	for _, f := range facts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%d\n",
			f.ID, f.Category, f.Predicate, truncate(f.Object, 30), f.Confidence, f.Sensitivity)
	}
	return w.Flush()
}

func runFactUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	params := gateway.UpdateFactParams{
		ID:                   args[0],
		AllowHighSensitivity: factAllowHigh,
	}
	if cmd.Flags().Changed("object") {
		params.Object = &factUpdateObject
	}
	if cmd.Flags().Changed("confidence") {
		params.Confidence = &factConfidence
	}
	if cmd.Flags().Changed("sensitivity") {
		params.Sensitivity = &factSensitivity
	}
	if cmd.Flags().Changed("consent") {
		params.ConsentScope = &factConsent
	}

	if _, err := unwrap(gw.UpdateFact(ctx, params)); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Fact updated")
	}
	return nil
}

func runFactDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := unwrap(gw.DeleteFact(ctx, gateway.DeleteFactParams{ID: args[0]})); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Fact deleted")
	}
	return nil
}

func runFactReinforce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.Reinforce(ctx, gateway.ReinforceParams{FactIDs: args}))
	if err != nil {
		return err
	}
	if outputFormat == "json" {
		return printJSON(data)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Reinforced %d facts\n", data.(map[string]int)["reinforced"])
	}
	return nil
}

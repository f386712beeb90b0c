package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/study-resource-bot/internal/dto"
	"github.com/noah-isme/study-resource-bot/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter the catalog once and print the matching links",
	Long: `search runs the same filter cascade as the chat bot. Pass structured filters,
a free-text --query (which needs a configured LLM provider), or both; explicit
filters win over whatever the query extraction produced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		var req dto.SearchRequest
		flags := cmd.Flags()
		req.Faculty, _ = flags.GetString("faculty")
		req.Subject, _ = flags.GetString("subject")
		req.SubjectCode, _ = flags.GetString("code")
		req.Semester, _ = flags.GetString("semester")
		req.Module, _ = flags.GetString("module")
		req.Query, _ = flags.GetString("query")
		asJSON, _ := flags.GetBool("json")

		var extractor *service.CriteriaExtractor
		if req.Query != "" {
			client, model, _, err := rt.llmClient(ctx)
			if err != nil {
				return err
			}
			extractor = rt.extractor(client, model)
		}

		result, err := service.NewSearchService(rt.catalog, extractor, nil, rt.metrics, rt.logger).Search(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		if result.Count == 0 {
			fmt.Fprintln(os.Stderr, "no matching resources")
			return nil
		}
		for _, r := range result.Resources {
			fmt.Fprintf(out, "%s\t%s\t%s\tsem %s\tmodule %s\t%s\n", r.ID, r.SubjectCode, r.Subject, r.Semester, r.Module, r.Link)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("faculty", "", "faculty name (substring match)")
	searchCmd.Flags().String("subject", "", "canonical subject name")
	searchCmd.Flags().String("code", "", "subject code")
	searchCmd.Flags().String("semester", "", "semester number")
	searchCmd.Flags().String("module", "", "module number")
	searchCmd.Flags().String("query", "", "free-text request, e.g. \"ai notes module 3\"")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func main() {
	var apiURL, token string

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Command line client for the game catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", envOr("API_URL", "http://localhost:8080"), "catalog API base URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("CATALOG_TOKEN"), "access token for protected endpoints")

	client := func() *APIClient {
		return NewAPIClient(strings.TrimRight(apiURL, "/"), token)
	}

	root.AddCommand(loginCmd(client))
	root.AddCommand(installerCmd(client))
	root.AddCommand(gamesCmd(client))
	root.AddCommand(libraryCmd(client))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loginCmd(client func() *APIClient) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and print an access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("CATALOG_PASSWORD")
			}
			result, err := client().Login(args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to $CATALOG_PASSWORD)")
	return cmd
}

func installerCmd(client func() *APIClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "installer",
		Short: "Fetch installer scripts",
	}

	var format string
	var clean bool
	get := &cobra.Command{
		Use:   "get <slug>",
		Short: "Print the installers a slug resolves to",
		Long: "With --format list (the default) the slug may be an installer, a game or a\n" +
			"default installer slug. yaml and json print one stored installer.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			switch format {
			case "list":
				data, err = client().Installers(args[0])
			case "yaml", "json":
				data, err = client().Installer(args[0], format, clean)
			default:
				return fmt.Errorf("unknown format %q: use list, yaml or json", format)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			out.Write(data)
			if len(data) > 0 && data[len(data)-1] != '\n' {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	get.Flags().StringVar(&format, "format", "list", "list, yaml or json")
	get.Flags().BoolVar(&clean, "clean", false, "strip catalog metadata (yaml and json only)")
	cmd.AddCommand(get)

	return cmd
}

func gamesCmd(client func() *APIClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Browse the game catalog",
	}

	var search string
	var withInstallers bool
	var page int
	list := &cobra.Command{
		Use:   "list",
		Short: "List games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client().ListGames(search, withInstallers, page)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range result.Results {
				year := "----"
				if g.Year != nil {
					year = fmt.Sprintf("%4d", *g.Year)
				}
				fmt.Fprintf(out, "%-40s %s  %s  %s\n", g.Slug, year, g.Name, strings.Join(g.Platforms, ","))
			}
			fmt.Fprintf(out, "%d games", result.Count)
			if result.Next != nil {
				fmt.Fprintf(out, " (more with --page %d)", page+1)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "only games whose slug contains this text")
	list.Flags().BoolVar(&withInstallers, "with-installers", false, "only games that can be installed")
	list.Flags().IntVar(&page, "page", 1, "page number")
	cmd.AddCommand(list)

	return cmd
}

func libraryCmd(client func() *APIClient) *cobra.Command {
	return &cobra.Command{
		Use:   "library <username>",
		Short: "Show a user's game library (requires --token)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			library, err := client().Library(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range library.Games {
				fmt.Fprintf(out, "%-40s %s\n", g.Slug, g.Name)
			}
			return nil
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

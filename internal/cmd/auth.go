package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thewaterfall/fluent-go/internal/config"
)

func newAuthCommand() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored profiles",
	}
	auth.AddCommand(newAuthLoginCommand())
	auth.AddCommand(newAuthLogoutCommand())
	auth.AddCommand(newAuthStatusCommand())
	auth.AddCommand(newAuthListCommand())
	return auth
}

func newAuthLoginCommand() *cobra.Command {
	var baseURL, bearer, basic string
	var headers []string

	cmd := &cobra.Command{
		Use:   "login [PROFILE]",
		Short: "Create or replace a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := config.Profile{BaseURL: baseURL, Bearer: bearer}

			if basic != "" {
				user, pass, ok := strings.Cut(basic, ":")
				if !ok {
					return fmt.Errorf("invalid --basic %q (want user:password)", basic)
				}
				profile.BasicUser, profile.BasicPass = user, pass
			}
			if bearer != "" && basic != "" {
				return fmt.Errorf("--bearer and --basic are mutually exclusive")
			}

			for _, h := range headers {
				name, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid --header %q (want 'Name: value')", h)
				}
				if profile.Headers == nil {
					profile.Headers = make(map[string]string)
				}
				profile.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}

			name := profileName(args)
			if err := config.Save(name, profile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "base URL prefixed to relative request URLs")
	cmd.Flags().StringVar(&bearer, "bearer", "", "bearer token stored with the profile")
	cmd.Flags().StringVar(&basic, "basic", "", "basic auth credentials as user:password")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "default header as 'Name: value' (repeatable)")
	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [PROFILE]",
		Short: "Delete a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := profileName(args)
			if err := config.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed profile %q\n", name)
			return nil
		},
	}
}

func newAuthStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status [PROFILE]",
		Short: "Show a profile with secrets redacted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := profileName(args)
			profile, err := config.Load(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Profile: %s\n", name)
			if profile.BaseURL != "" {
				fmt.Fprintf(out, "Base URL: %s\n", profile.BaseURL)
			}
			switch {
			case profile.Bearer != "":
				fmt.Fprintln(out, "Auth: bearer token (redacted)")
			case profile.BasicUser != "":
				fmt.Fprintf(out, "Auth: basic, user %s (password redacted)\n", profile.BasicUser)
			default:
				fmt.Fprintln(out, "Auth: none")
			}
			for name, value := range profile.Headers {
				fmt.Fprintf(out, "Header: %s: %s\n", name, value)
			}
			return nil
		},
	}
}

func newAuthListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := config.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func profileName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if flags.Profile != "" {
		return flags.Profile
	}
	return "default"
}

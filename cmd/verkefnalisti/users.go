package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManiEids/vef2hop2/domain"
)

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and store the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			session, err := a.client.Login(cmd.Context(), args[0], password)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintf(a.stdout, "Skráð(ur) inn sem %s\n", displayName(session.User))
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.stdout, "Útskráð(ur)")
			return nil
		},
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reg domain.Registration
			reg.Email, _ = cmd.Flags().GetString("email")
			reg.Username, _ = cmd.Flags().GetString("username")
			reg.Name, _ = cmd.Flags().GetString("name")
			reg.Password, _ = cmd.Flags().GetString("password")
			if reg.Name == "" {
				reg.Name = reg.Username
			}
			u, err := a.client.Register(cmd.Context(), reg)
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, u)
			}
			fmt.Fprintf(a.stdout, "Aðgangur %s stofnaður\n", displayName(u))
			return nil
		},
	}
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("username", "", "Username")
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().StringP("password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client.Me(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			if jsonOutput(cmd) {
				return printJSON(a.stdout, u)
			}
			role := "notandi"
			if u.Admin {
				role = "stjórnandi"
			}
			fmt.Fprintf(a.stdout, "%s <%s> (%s)\n", displayName(u), u.Email, role)
			return nil
		},
	}
}

func displayName(u domain.User) string {
	if u.Username != "" {
		return u.Username
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

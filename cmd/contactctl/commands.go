package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"CONTACTS_BACK-END/internal/client"
	"CONTACTS_BACK-END/internal/dto"
)

type options struct {
	apiURL    string
	tokenFile string
}

func (o *options) client() (*client.Client, error) {
	path := o.tokenFile
	if path == "" {
		p, err := client.DefaultTokenPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return client.New(o.apiURL, nil, client.NewSessionStore(path)), nil
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "contactctl",
		Short:         "Manage your contacts from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", envOr("CONTACTCTL_API_URL", client.DefaultBaseURL), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.tokenFile, "token-file", "", "Session token file (default $"+client.TokenFileEnv+" or the user config dir)")

	cmd.AddCommand(
		registerCmd(opts),
		loginCmd(opts),
		logoutCmd(opts),
		whoamiCmd(opts),
		contactsCmd(opts),
	)
	return cmd
}

func registerCmd(opts *options) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", resp.Message, resp.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func loginCmd(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.Profile(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := c.Session().Current()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nid: %s\nsession expires: %s\n",
				resp.User.Name, resp.User.Email, resp.User.ID, sess.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

func contactsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Add and list contacts",
	}
	cmd.AddCommand(contactsAddCmd(opts), contactsListCmd(opts))
	return cmd
}

func contactsAddCmd(opts *options) *cobra.Command {
	var req dto.CreateContactRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Save a contact",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.CreateContact(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", resp.Message, resp.Contact.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Contact name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Contact email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Contact phone")
	cmd.Flags().StringVar(&req.Type, "type", "", "personal or professional (default personal)")
	return cmd
}

func contactsListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			contacts, err := c.ListContacts(cmd.Context())
			if err != nil {
				return err
			}
			return printContacts(cmd.OutOrStdout(), contacts)
		},
	}
}

func printContacts(out io.Writer, contacts []dto.ContactResponse) error {
	if len(contacts) == 0 {
		_, err := fmt.Fprintln(out, "No contacts yet")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tPHONE\tTYPE")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Email, c.Phone, c.Type)
	}
	return tw.Flush()
}

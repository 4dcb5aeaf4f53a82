package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"comparecarts/internal/browse"
	"comparecarts/internal/client"
	"comparecarts/internal/model"
	"comparecarts/internal/session"
)

const defaultAPI = "http://localhost:5000/api"

type app struct {
	apiURL      string
	sessionPath string
}

func (a *app) store() (*session.Store, error) {
	if a.sessionPath != "" {
		return session.NewStore(a.sessionPath), nil
	}
	path, err := session.DefaultPath()
	if err != nil {
		return nil, err
	}
	return session.NewStore(path), nil
}

// client returns an API client carrying the saved token, if any.
func (a *app) client() (*client.Client, *session.Session, error) {
	store, err := a.store()
	if err != nil {
		return nil, nil, err
	}
	sess, err := store.Load()
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return nil, nil, err
	}
	token := ""
	if sess != nil {
		token = sess.Token
	}
	return client.New(a.apiURL, token), sess, nil
}

func newRootCommand() *cobra.Command {
	a := &app{}
	api := os.Getenv("COMPARECARTS_API")
	if api == "" {
		api = defaultAPI
	}

	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Browse and post CompareCarts product reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", api, "API base URL (env COMPARECARTS_API)")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (default: user config dir)")

	root.AddCommand(
		a.signupCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.reviewsCommand(),
		a.postCommand(),
		categoriesCommand(),
	)
	return root
}

func (a *app) signupCommand() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Signup(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			return a.remember(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (a *app) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.remember(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (a *app) remember(out io.Writer, resp *client.AuthResponse) error {
	store, err := a.store()
	if err != nil {
		return err
	}
	if err := store.Save(session.Session{User: resp.User, Token: resp.Token}); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s. Welcome, %s (%d credits)\n", resp.Message, resp.User.Name, resp.User.Credits)
	return nil
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user with current credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, sess, err := a.client()
			if err != nil {
				return err
			}
			if sess == nil {
				return session.ErrNoSession
			}
			me, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n%d credits\n", me.Name, me.Email, me.Credits)
			return nil
		},
	}
}

func (a *app) reviewsCommand() *cobra.Command {
	var q browse.Query
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List reviews, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := a.client()
			if err != nil {
				return err
			}
			reviews, err := c.ListReviews(cmd.Context())
			if err != nil {
				return err
			}
			printReviews(cmd.OutOrStdout(), browse.Apply(reviews, q))
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Search, "search", "", "match product name, title or body")
	cmd.Flags().StringVarP(&q.Category, "category", "c", browse.AllCategories,
		"category filter: "+strings.Join(browse.FilterOptions(), ", "))
	return cmd
}

func printReviews(out io.Writer, view browse.View) {
	if view.Total == 0 {
		fmt.Fprintln(out, "No reviews found")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RATING\tPRODUCT\tCATEGORY\tTITLE\tBY")
	for _, r := range view.Reviews {
		fmt.Fprintf(tw, "%.1f (%s)\t%s\t%s\t%s\t%s\n",
			r.Rating, browse.RatingTier(r.Rating), r.ProductName, r.Category, r.Title, r.UserName)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "%d reviews, average rating %s\n", view.Total, view.AverageDisplay())
}

func (a *app) postCommand() *cobra.Command {
	var in client.ReviewInput
	var rating float64
	var months int
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a review and earn credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, sess, err := a.client()
			if err != nil {
				return err
			}
			if sess == nil {
				return session.ErrNoSession
			}
			if cmd.Flags().Changed("rating") {
				in.Rating = &rating
			}
			if cmd.Flags().Changed("months") {
				in.MonthsUsed = &months
			}

			created, err := c.CreateReview(cmd.Context(), in)
			if err != nil {
				return err
			}

			sess.User = created.User
			store, err := a.store()
			if err != nil {
				return err
			}
			if err := store.Save(*sess); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Review posted. You now have %d credits\n", created.User.Credits)

			reviews, err := c.ListReviews(cmd.Context())
			if err != nil {
				return err
			}
			printReviews(out, browse.Apply(reviews, browse.Query{}))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.ProductName, "product", "", "product name")
	f.StringVarP(&in.Category, "category", "c", "", "category")
	f.Float64Var(&rating, "rating", 0, "rating from 1 to 5")
	f.StringVar(&in.Title, "title", "", "review title")
	f.StringVar(&in.Body, "body", "", "review text")
	f.StringVar(&in.Pros, "pros", "", "pros")
	f.StringVar(&in.Cons, "cons", "", "cons")
	f.StringVar(&in.PurchaseSource, "source", "", "where it was bought")
	f.IntVar(&months, "months", 0, "months used")
	f.StringVar(&in.ProductURL, "url", "", "product link")
	return cmd
}

func categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List review categories",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, c := range model.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
		},
	}
}

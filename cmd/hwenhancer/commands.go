package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func addOutputFlags(cmd *cobra.Command, out *outputFlags) {
	cmd.Flags().StringVar(&out.sort, "sort", "", "Sort the listing by salary_max, salary_min or hours")
	cmd.Flags().StringVarP(&out.out, "out", "o", "", "Write the resulting page to this HTML file")
}

func newOpenCmd(flags *rootFlags) *cobra.Command {
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "open <url|file...>",
		Short: "Load a listing page",
		Long: `Load a listing page. A crawl left unfinished in this session carries on
from this page; otherwise listings collected earlier replace the page's own.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			page, err := env.openPage(cmd.Context(), args)
			if err != nil {
				return err
			}
			enh := env.enhancer(page)
			if err := enh.Run(cmd.Context()); err != nil {
				return err
			}
			if enh.Board() == nil {
				if _, err := enh.ParseCurrentPage(); err != nil {
					return err
				}
			}
			return env.finish(enh, out)
		},
	}
	addOutputFlags(cmd, out)
	return cmd
}

func newFetchCmd(flags *rootFlags) *cobra.Command {
	out := &outputFlags{}
	var yes bool
	cmd := &cobra.Command{
		Use:   "fetch <url|file...>",
		Short: "Collect listings from every page of a search result",
		Long: `Collect listings from the given page and every following page, by
pressing the result's next button until there is none. Listings collected
earlier in this session are discarded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(flags, yes)
			if err != nil {
				return err
			}
			defer env.Close()

			page, err := env.openPage(cmd.Context(), args)
			if err != nil {
				return err
			}
			enh := env.enhancer(page)
			started, err := enh.StartAutoFetch(cmd.Context())
			if err != nil {
				return err
			}
			if !started {
				pterm.Info.Println("取り消しました")
				return nil
			}
			return env.finish(enh, out)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	addOutputFlags(cmd, out)
	return cmd
}

func newParseCmd(flags *rootFlags) *cobra.Command {
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "parse <url|file>",
		Short: "Read the listings of a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			page, err := env.openPage(cmd.Context(), args)
			if err != nil {
				return err
			}
			enh := env.enhancer(page)
			if _, err := enh.ParseCurrentPage(); err != nil {
				return err
			}
			return env.finish(enh, out)
		},
	}
	addOutputFlags(cmd, out)
	return cmd
}

func newResetCmd(flags *rootFlags) *cobra.Command {
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "reset [url|file...]",
		Short: "Forget the collected listings",
		Long: `Forget the listings collected in this session and stop a crawl left
unfinished. With a page given, the page is loaded again afterwards and shown
as it is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			if len(args) == 0 {
				if err := env.state.Discard(cmd.Context()); err != nil {
					return err
				}
				pterm.Success.Println("データをリセットしました")
				return nil
			}

			page, err := env.openPage(cmd.Context(), args)
			if err != nil {
				return err
			}
			enh := env.enhancer(page)
			if err := enh.Reset(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.Println("データをリセットしました")
			if _, err := enh.ParseCurrentPage(); err != nil {
				return err
			}
			return env.finish(enh, out)
		},
	}
	addOutputFlags(cmd, out)
	return cmd
}

func newSessionCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "Forget everything stored for the session, including a crawl in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.state.End(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.Printfln("セッション %q を終了しました", env.cfg.Session.ID)
			return nil
		},
	})
	return cmd
}

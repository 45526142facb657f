package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/horn/internal/config"
	"github.com/funvibe/horn/internal/session"
	"github.com/funvibe/horn/internal/syntax"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "horn",
	Short: "Horn-clause constraint solver back-end",
	Long: `horn is the fixpoint back-end for refinement-type front-ends.
Front-ends link the solver in-process; this binary exposes the
surrounding plumbing: solver probing, raw script checking and
configuration validation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			cfg = config.DefaultConfig()
			return nil
		}
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the horn version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("horn %s\n", Version)
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Spawn the configured solver and run a trivial round trip",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := session.New(cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		if sess.Version != "" {
			fmt.Printf("%s version %s\n", cfg.Solver, sess.Version)
		} else {
			fmt.Printf("%s (version not reported)\n", cfg.Solver)
		}

		err = sess.Bracket("probe", func() error {
			if err := sess.Declare("probe$x", nil, syntax.IntSort{}); err != nil {
				return err
			}
			if err := sess.Assert(syntax.EAtom{Op: syntax.Ge, L: syntax.ESym{Name: "probe$x"}, R: syntax.EInt{}}); err != nil {
				return err
			}
			sat, err := sess.CheckSatIsSat()
			if err != nil {
				return err
			}
			if !sat {
				return fmt.Errorf("solver rejected a satisfiable probe")
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Println("round trip ok")
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <file.smt2>",
	Short: "Feed a raw SMT-LIB2 script to the solver and print responses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		sess, err := session.New(cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := sc.Text()
			switch line {
			case "(check-sat)":
				res, err := sess.CheckSat()
				if err != nil {
					return err
				}
				fmt.Println(res)
			case "(push 1)":
				if err := sess.Push(); err != nil {
					return err
				}
			case "(pop 1)":
				if err := sess.Pop(); err != nil {
					return err
				}
			default:
				if err := sess.Raw(line); err != nil {
					return err
				}
			}
		}
		return sc.Err()
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Printf("config ok: solver=%s minimalSol=%t useElim=%t\n", cfg.Solver, cfg.MinimalSol, cfg.UseElim)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to horn.yaml")
	rootCmd.AddCommand(versionCmd, probeCmd, checkCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

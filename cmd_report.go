package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/beka-birhanu/vinom-search/infrastruture/csvstore"
	"github.com/beka-birhanu/vinom-search/report"
	"github.com/beka-birhanu/vinom-search/service"
	"github.com/spf13/cobra"
)

var reportOut string

// reportCmd charts a trials file written by run.
var reportCmd = &cobra.Command{
	Use:   "report <trials.csv>",
	Short: "Render the charts of a trials file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		trials, err := csvstore.ReadTrials(in)
		if err != nil {
			return err
		}

		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		out := reportOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".html"
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := report.Render(f, name, trials, service.Summarize(trials)); err != nil {
			return err
		}
		appLogger.WithField("file", out).Info("report written")
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default next to the input)")
}

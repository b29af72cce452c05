package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"dwisim/pkg/intensity"
	"dwisim/pkg/visualization"
)

func newBoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bound [image]",
		Short: "Estimate the contrast window of a slice",
		Long: `Estimate the intensity window [low, high] used to normalise an MRI slice.
low is the slice minimum; high is the upper edge of the brightest histogram
bin whose count exceeds rate times the count of the fullest bin.

Without an image argument the built-in phantom is used.

Examples:
  dwisim bound                        # Phantom at the configured rate
  dwisim bound slice.png --rate 0.05  # PNG or JPEG slice
  dwisim bound --render               # Also write original and rescaled PNGs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			rate := cfg.Intensity.Rate
			if cmd.Flags().Changed("rate") {
				rate, _ = cmd.Flags().GetFloat64("rate")
			}

			var data *mat.Dense
			source := "phantom"
			if len(args) == 1 {
				source = args[0]
				data, err = visualization.LoadSlice(source)
				if err != nil {
					return fmt.Errorf("failed to load slice: %w", err)
				}
			} else {
				data = intensity.DefaultPhantom()
			}

			low, high, err := intensity.Bounds(data, rate)
			if err != nil {
				return fmt.Errorf("failed to estimate bounds: %w", err)
			}
			logger.WithFields(logrus.Fields{
				"source": source,
				"rate":   rate,
				"low":    low,
				"high":   high,
			}).Debug("bounds estimated")

			out := cmd.OutOrStdout()
			if showHist, _ := cmd.Flags().GetBool("histogram"); showHist {
				h, err := intensity.NewHistogram(data, intensity.DefaultBins)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%3s  %10s  %10s  %8s\n", "bin", "lower", "upper", "count")
				for i, b := range h.Bins {
					fmt.Fprintf(out, "%3d  %10.3f  %10.3f  %8d\n", i, b.Lower, b.Upper, b.Count)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "low:  %g\nhigh: %g\n", low, high)

			if render, _ := cmd.Flags().GetBool("render"); render {
				if high <= low {
					logger.Warn("degenerate window, skipping rendering")
					return nil
				}
				if err := renderComparison(data, low, high, cfg.Intensity.OutLow, cfg.Intensity.OutHigh, cfg.Output.Dir); err != nil {
					return err
				}
				logger.WithField("dir", cfg.Output.Dir).Info("rendered original and rescaled slices")
			}

			return nil
		},
	}

	cmd.Flags().Float64("rate", 0, "Relative bin frequency threshold (overrides the config)")
	cmd.Flags().Bool("histogram", false, "Print the histogram")
	cmd.Flags().Bool("render", false, "Write original.png and rescaled.png to the output directory")

	return cmd
}

// renderComparison writes the slice with its own min/max window next to the
// slice rescaled through [low, high].
func renderComparison(data *mat.Dense, low, high, outLow, outHigh float64, dir string) error {
	original, err := visualization.NewViewer(data).RenderAuto()
	if err != nil {
		return err
	}
	if err := visualization.SaveSlice(original, filepath.Join(dir, "original.png")); err != nil {
		return fmt.Errorf("failed to save original slice: %w", err)
	}

	rescaled, err := intensity.Rescale(data, low, high, outLow, outHigh)
	if err != nil {
		return err
	}
	img, err := visualization.NewViewer(rescaled).Render(outLow, outHigh)
	if err != nil {
		return err
	}
	if err := visualization.SaveSlice(img, filepath.Join(dir, "rescaled.png")); err != nil {
		return fmt.Errorf("failed to save rescaled slice: %w", err)
	}
	return nil
}
